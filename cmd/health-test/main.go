// Command health-test probes a running CareBridge server's /health
// endpoint and exits non-zero when the service or its database is down.
// Intended for container healthchecks and deploy smoke tests.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Services  struct {
		Database struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		} `json:"database"`
	} `json:"services"`
}

func main() {
	url := "http://localhost:8080/health"
	if len(os.Args) > 1 {
		url = os.Args[1]
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fail("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fail("reading response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		fail("unhealthy: HTTP %d: %s", resp.StatusCode, body)
	}

	var health healthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		fail("malformed response %q: %v", body, err)
	}
	if health.Status != "ok" {
		fail("service status %q", health.Status)
	}
	if db := health.Services.Database; db.Status != "ok" {
		fail("database status %q: %s", db.Status, db.Error)
	}

	fmt.Printf("healthy: version=%s database=ok at %s\n", health.Version, health.Timestamp)
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
