package monitor

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pingmaster-dev/pingmaster/internal/models"
	"github.com/pingmaster-dev/pingmaster/internal/repo"
	"github.com/pingmaster-dev/pingmaster/internal/types"
)

type bucket struct {
	up            int
	down          int
	responseTimes []float64
}

// PeriodStats loads a service's observations from start onward and
// aggregates them for the named period.
func PeriodStats(ctx context.Context, store repo.StatStore, serviceID uuid.UUID, start time.Time, period string) (types.AggregatedStats, error) {
	stats, err := store.StatsSince(ctx, serviceID, start)
	if err != nil {
		return types.AggregatedStats{}, err
	}
	return CalculatePeriodStats(stats, period), nil
}

// CalculatePeriodStats buckets raw observations and summarizes uptime and
// latency. Granularity depends on the period: 10-minute buckets for 1h,
// individual timestamps for 24h, daily buckets otherwise. An empty input
// yields a zeroed result with empty series.
func CalculatePeriodStats(stats []models.ServiceStat, period string) types.AggregatedStats {
	if len(stats) == 0 {
		return types.AggregatedStats{
			Period:        period,
			StatusCounts:  types.StatusCounts{},
			Timestamps:    []time.Time{},
			ResponseTimes: []float64{},
		}
	}

	buckets := make(map[time.Time]*bucket)
	for _, stat := range stats {
		key := bucketKey(stat.PingDate, period)
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		if stat.ResponseTime != nil {
			b.responseTimes = append(b.responseTimes, *stat.ResponseTime)
		}
		if stat.Status {
			b.up++
		} else {
			b.down++
		}
	}

	keys := make([]time.Time, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	totalUp, totalDown := 0, 0
	var allResponseTimes []float64
	for _, b := range buckets {
		totalUp += b.up
		totalDown += b.down
		allResponseTimes = append(allResponseTimes, b.responseTimes...)
	}

	uptime := 0.0
	if total := totalUp + totalDown; total > 0 {
		uptime = round2(float64(totalUp) / float64(total) * 100)
	}

	avgResponseTime := 0.0
	if len(allResponseTimes) > 0 {
		avgResponseTime = round2(mean(allResponseTimes))
	}

	responseTimes := make([]float64, len(keys))
	for i, key := range keys {
		if b := buckets[key]; len(b.responseTimes) > 0 {
			responseTimes[i] = round2(mean(b.responseTimes))
		}
	}

	return types.AggregatedStats{
		Period:           period,
		UptimePercentage: uptime,
		AvgResponseTime:  avgResponseTime,
		StatusCounts:     types.StatusCounts{Up: totalUp, Down: totalDown},
		Timestamps:       keys,
		ResponseTimes:    responseTimes,
	}
}

// bucketKey assigns an observation to its bucket. Bucket intervals are
// half-open: [bucket_start, bucket_start+granularity), so a sample landing
// exactly on a boundary belongs to the bucket that starts there.
func bucketKey(ts time.Time, period string) time.Time {
	switch period {
	case types.Period1h:
		return ts.Truncate(10 * time.Minute)
	case types.Period24h:
		return ts
	default:
		return ts.Truncate(24 * time.Hour)
	}
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
