package services

import (
	"testing"
	"time"
)

func TestParseWindow(t *testing.T) {
	now := time.Date(2025, time.March, 15, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		from   time.Time
		to     time.Time
		bucket Bucket
	}{
		{
			"today",
			time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC),
			BucketHour,
		},
		{
			"yesterday",
			time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
			BucketHour,
		},
		{
			"last7",
			time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC),
			BucketDay,
		},
		{
			"last30",
			time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC),
			BucketDay,
		},
		{
			"this_month",
			time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			BucketDay,
		},
		{
			"last_month",
			time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			BucketDay,
		},
		{
			"last6months",
			time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			BucketMonth,
		},
		{
			"this_year",
			time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			BucketMonth,
		},
		{
			"last_year",
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			BucketMonth,
		},
	}

	for _, tt := range tests {
		w, err := ParseWindow(tt.name, now)
		if err != nil {
			t.Errorf("ParseWindow(%q) = %v", tt.name, err)
			continue
		}
		if !w.From.Equal(tt.from) {
			t.Errorf("%s: From = %v, want %v", tt.name, w.From, tt.from)
		}
		if !w.To.Equal(tt.to) {
			t.Errorf("%s: To = %v, want %v", tt.name, w.To, tt.to)
		}
		if w.Bucket != tt.bucket {
			t.Errorf("%s: Bucket = %v, want %v", tt.name, w.Bucket, tt.bucket)
		}
	}
}

func TestParseWindowRejectsUnknown(t *testing.T) {
	if _, err := ParseWindow("fortnight", time.Now()); err == nil {
		t.Error("unknown window accepted")
	}
}

func TestBucketBoundsCoverWindow(t *testing.T) {
	w := Window{
		From:   time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC),
		Bucket: BucketDay,
	}
	bounds := bucketBounds(w)

	if len(bounds) != 8 {
		t.Fatalf("want 8 bounds for a 7-day window, got %d", len(bounds))
	}
	if !bounds[0].Equal(w.From) {
		t.Errorf("first bound = %v, want %v", bounds[0], w.From)
	}
	if !bounds[len(bounds)-1].Equal(w.To) {
		t.Errorf("last bound = %v, want %v", bounds[len(bounds)-1], w.To)
	}
	for i := 1; i < len(bounds); i++ {
		if !bounds[i].After(bounds[i-1]) {
			t.Errorf("bounds not increasing at %d: %v, %v", i, bounds[i-1], bounds[i])
		}
	}
}

func TestBucketBoundsHourly(t *testing.T) {
	w := Window{
		From:   time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC),
		Bucket: BucketHour,
	}
	bounds := bucketBounds(w)
	if len(bounds) != 25 {
		t.Fatalf("want 25 bounds for a hourly day window, got %d", len(bounds))
	}
}

func TestBucketBoundsClampToWindowEnd(t *testing.T) {
	// A 1.5-month window: the last monthly bucket is truncated at To.
	w := Window{
		From:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		To:     time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
		Bucket: BucketMonth,
	}
	bounds := bucketBounds(w)
	if !bounds[len(bounds)-1].Equal(w.To) {
		t.Errorf("last bound = %v, want clamped to %v", bounds[len(bounds)-1], w.To)
	}
}
