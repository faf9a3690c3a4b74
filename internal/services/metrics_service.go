package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/carebridge/backend/internal/authz"
	"github.com/carebridge/backend/internal/logger"
	"github.com/carebridge/backend/internal/models"
	"gorm.io/gorm"
)

// Bucket is the time-series granularity for a window: hourly for
// single-day windows, monthly for multi-month windows, daily otherwise.
type Bucket string

const (
	BucketHour  Bucket = "hour"
	BucketDay   Bucket = "day"
	BucketMonth Bucket = "month"
)

// Window is a half-open [From, To) reporting range.
type Window struct {
	Name   string    `json:"name"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Bucket Bucket    `json:"bucket"`
}

// ParseWindow resolves a window name relative to now. Recognized names:
// today, yesterday, last7, last14, last30, this_month, last_month,
// last6months, this_year, last_year.
func ParseWindow(name string, now time.Time) (Window, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	startOfYear := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())

	w := Window{Name: name}
	switch name {
	case "today":
		w.From, w.To, w.Bucket = startOfDay, startOfDay.AddDate(0, 0, 1), BucketHour
	case "yesterday":
		w.From, w.To, w.Bucket = startOfDay.AddDate(0, 0, -1), startOfDay, BucketHour
	case "last7":
		w.From, w.To, w.Bucket = startOfDay.AddDate(0, 0, -6), startOfDay.AddDate(0, 0, 1), BucketDay
	case "last14":
		w.From, w.To, w.Bucket = startOfDay.AddDate(0, 0, -13), startOfDay.AddDate(0, 0, 1), BucketDay
	case "last30":
		w.From, w.To, w.Bucket = startOfDay.AddDate(0, 0, -29), startOfDay.AddDate(0, 0, 1), BucketDay
	case "this_month":
		w.From, w.To, w.Bucket = startOfMonth, startOfMonth.AddDate(0, 1, 0), BucketDay
	case "last_month":
		w.From, w.To, w.Bucket = startOfMonth.AddDate(0, -1, 0), startOfMonth, BucketDay
	case "last6months":
		w.From, w.To, w.Bucket = startOfMonth.AddDate(0, -5, 0), startOfMonth.AddDate(0, 1, 0), BucketMonth
	case "this_year":
		w.From, w.To, w.Bucket = startOfYear, startOfYear.AddDate(1, 0, 0), BucketMonth
	case "last_year":
		w.From, w.To, w.Bucket = startOfYear.AddDate(-1, 0, 0), startOfYear, BucketMonth
	default:
		return Window{}, fmt.Errorf("unknown window %q", name)
	}
	return w, nil
}

// Stats are the dashboard headline counts for one window.
type Stats struct {
	TotalLeads  int64 `json:"totalLeads"`
	NewLeads    int64 `json:"newLeads"`
	HotLeads    int64 `json:"hotLeads"`
	CalledLeads int64 `json:"calledLeads"`
}

// SeriesPoint is one time bucket of the status chart.
type SeriesPoint struct {
	Bucket    time.Time `json:"bucket"`
	New       int64     `json:"new"`
	Contacted int64     `json:"contacted"`
	Converted int64     `json:"converted"`
}

// MetricsService derives dashboard aggregates with independent
// range-filtered queries. No caching: every window change is a full
// recompute.
type MetricsService struct {
	db *gorm.DB
}

func NewMetricsService(db *gorm.DB) *MetricsService {
	return &MetricsService{db: db}
}

// Stats computes the headline counts, scoped to the actor's visibility.
// Query failures are logged and degrade to zero rather than failing the
// dashboard.
func (ms *MetricsService) Stats(actor authz.Actor, w Window) Stats {
	var stats Stats

	leads := func() *gorm.DB {
		return authz.LeadScope(actor, ms.db.Model(&models.Lead{})).
			Where("leads.created_at >= ? AND leads.created_at < ?", w.From, w.To)
	}

	if err := leads().Count(&stats.TotalLeads).Error; err != nil {
		logger.WithError(err, "metrics").Error("total lead count failed")
	}
	if err := leads().Where("status = ?", models.LeadStatusNew).Count(&stats.NewLeads).Error; err != nil {
		logger.WithError(err, "metrics").Error("new lead count failed")
	}
	stats.HotLeads = ms.tagCount(actor, w, models.TagHot)
	stats.CalledLeads = ms.tagCount(actor, w, models.TagCalled)

	return stats
}

func (ms *MetricsService) tagCount(actor authz.Actor, w Window, tag models.LeadTagKind) int64 {
	q := ms.db.Model(&models.LeadTag{}).
		Joins("JOIN leads ON leads.id = lead_tags.lead_id").
		Where("lead_tags.tag = ?", tag).
		Where("lead_tags.created_at >= ? AND lead_tags.created_at < ?", w.From, w.To)
	q = authz.LeadScope(actor, q)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		logger.WithError(err, "metrics").Error("tag count failed")
		return 0
	}
	return count
}

// Series computes the per-bucket {new, contacted, converted} counts. The
// bucket queries run concurrently and are awaited together; a failed bucket
// is logged and left zero-filled.
func (ms *MetricsService) Series(actor authz.Actor, w Window) []SeriesPoint {
	bounds := bucketBounds(w)
	points := make([]SeriesPoint, len(bounds)-1)

	var wg sync.WaitGroup
	for i := 0; i < len(bounds)-1; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			from, to := bounds[i], bounds[i+1]
			points[i].Bucket = from
			points[i].New = ms.statusCount(actor, from, to, models.LeadStatusNew)
			points[i].Contacted = ms.statusCount(actor, from, to, models.LeadStatusContacted)
			points[i].Converted = ms.statusCount(actor, from, to, models.LeadStatusConverted)
		}(i)
	}
	wg.Wait()

	return points
}

func (ms *MetricsService) statusCount(actor authz.Actor, from, to time.Time, status models.LeadStatus) int64 {
	q := authz.LeadScope(actor, ms.db.Model(&models.Lead{})).
		Where("status = ?", status).
		Where("leads.created_at >= ? AND leads.created_at < ?", from, to)

	var count int64
	if err := q.Count(&count).Error; err != nil {
		logger.WithError(err, "metrics").Error("series bucket count failed")
		return 0
	}
	return count
}

// bucketBounds returns len(points)+1 boundaries covering the window.
func bucketBounds(w Window) []time.Time {
	bounds := []time.Time{w.From}
	cur := w.From
	for cur.Before(w.To) {
		switch w.Bucket {
		case BucketHour:
			cur = cur.Add(time.Hour)
		case BucketMonth:
			cur = cur.AddDate(0, 1, 0)
		default:
			cur = cur.AddDate(0, 0, 1)
		}
		if cur.After(w.To) {
			cur = w.To
		}
		bounds = append(bounds, cur)
	}
	return bounds
}
