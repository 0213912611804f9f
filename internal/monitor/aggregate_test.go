package monitor

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pingmaster-dev/pingmaster/internal/models"
	"github.com/pingmaster-dev/pingmaster/internal/types"
)

func fp(v float64) *float64 { return &v }

func TestCalculatePeriodStats_EmptyWindow(t *testing.T) {
	got := CalculatePeriodStats(nil, types.Period24h)

	if got.UptimePercentage != 0 {
		t.Fatalf("want uptime 0, got %v", got.UptimePercentage)
	}
	if got.AvgResponseTime != 0 {
		t.Fatalf("want avg latency 0, got %v", got.AvgResponseTime)
	}
	if got.StatusCounts.Up != 0 || got.StatusCounts.Down != 0 {
		t.Fatalf("want zero counts, got %+v", got.StatusCounts)
	}
	if len(got.Timestamps) != 0 || len(got.ResponseTimes) != 0 {
		t.Fatal("want empty series")
	}
	if got.Timestamps == nil || got.ResponseTimes == nil {
		t.Fatal("series must be empty, not absent")
	}
}

func TestCalculatePeriodStats_AlternatingUptime(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	serviceID := uuid.New()

	var stats []models.ServiceStat
	for i, up := range []bool{true, false, true, false, true} {
		stats = append(stats, models.ServiceStat{
			ServiceID:    serviceID,
			Status:       up,
			ResponseTime: fp(100),
			PingDate:     base.Add(time.Duration(i) * time.Minute),
		})
	}

	got := CalculatePeriodStats(stats, types.Period24h)

	if got.UptimePercentage < 59 || got.UptimePercentage > 61 {
		t.Fatalf("want uptime ~60, got %v", got.UptimePercentage)
	}
	if got.StatusCounts.Up != 3 || got.StatusCounts.Down != 2 {
		t.Fatalf("want 3 up / 2 down, got %+v", got.StatusCounts)
	}
	if len(got.Timestamps) != 5 {
		t.Fatalf("24h window keeps individual timestamps, got %d buckets", len(got.Timestamps))
	}
}

func TestCalculatePeriodStats_HourWindowBuckets(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	stats := []models.ServiceStat{
		{Status: true, ResponseTime: fp(100), PingDate: base},                          // bucket 10:00
		{Status: true, ResponseTime: fp(200), PingDate: base.Add(5 * time.Minute)},     // bucket 10:00
		{Status: false, ResponseTime: nil, PingDate: base.Add(9*time.Minute + 59*time.Second)}, // bucket 10:00
		{Status: true, ResponseTime: fp(300), PingDate: base.Add(10 * time.Minute)},    // bucket 10:10, boundary belongs right
		{Status: true, ResponseTime: fp(50), PingDate: base.Add(25 * time.Minute)},     // bucket 10:20
	}

	got := CalculatePeriodStats(stats, types.Period1h)

	wantBuckets := []time.Time{base, base.Add(10 * time.Minute), base.Add(20 * time.Minute)}
	if len(got.Timestamps) != len(wantBuckets) {
		t.Fatalf("want %d buckets, got %d (%v)", len(wantBuckets), len(got.Timestamps), got.Timestamps)
	}
	for i, want := range wantBuckets {
		if !got.Timestamps[i].Equal(want) {
			t.Fatalf("bucket %d: want %v, got %v", i, want, got.Timestamps[i])
		}
	}

	// First bucket averages 100 and 200; the down sample has no latency.
	if got.ResponseTimes[0] != 150 {
		t.Fatalf("want first bucket avg 150, got %v", got.ResponseTimes[0])
	}
	if got.ResponseTimes[1] != 300 {
		t.Fatalf("want second bucket avg 300, got %v", got.ResponseTimes[1])
	}

	if got.StatusCounts.Up != 4 || got.StatusCounts.Down != 1 {
		t.Fatalf("want 4 up / 1 down, got %+v", got.StatusCounts)
	}
	if got.UptimePercentage != 80 {
		t.Fatalf("want uptime 80, got %v", got.UptimePercentage)
	}

	// Overall average covers all non-nil latencies: (100+200+300+50)/4.
	if got.AvgResponseTime != 162.5 {
		t.Fatalf("want avg 162.5, got %v", got.AvgResponseTime)
	}
}

func TestCalculatePeriodStats_DailyBuckets(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	stats := []models.ServiceStat{
		{Status: true, ResponseTime: fp(100), PingDate: base.Add(3 * time.Hour)},
		{Status: false, PingDate: base.Add(20 * time.Hour)},
		{Status: true, ResponseTime: fp(200), PingDate: base.Add(30 * time.Hour)}, // next day
	}

	got := CalculatePeriodStats(stats, types.Period7d)

	if len(got.Timestamps) != 2 {
		t.Fatalf("want 2 daily buckets, got %d", len(got.Timestamps))
	}
	if !got.Timestamps[0].Equal(base) || !got.Timestamps[1].Equal(base.Add(24*time.Hour)) {
		t.Fatalf("unexpected bucket keys: %v", got.Timestamps)
	}
}

func TestCalculatePeriodStats_BucketWithoutLatencyReportsZero(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	stats := []models.ServiceStat{
		{Status: false, ResponseTime: nil, PingDate: base},
		{Status: true, ResponseTime: fp(80), PingDate: base.Add(15 * time.Minute)},
	}

	got := CalculatePeriodStats(stats, types.Period1h)

	if len(got.ResponseTimes) != 2 {
		t.Fatalf("want 2 buckets, got %d", len(got.ResponseTimes))
	}
	if got.ResponseTimes[0] != 0 {
		t.Fatalf("bucket with no latency samples must report 0, got %v", got.ResponseTimes[0])
	}
	if got.ResponseTimes[1] != 80 {
		t.Fatalf("want 80, got %v", got.ResponseTimes[1])
	}
}
