package types

import (
	"time"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type StatusCounts struct {
	Up   int `json:"up"`
	Down int `json:"down"`
}

// AggregatedStats summarizes a service's observations over a named window.
// Timestamps and ResponseTimes are parallel slices ordered ascending by
// bucket time; a bucket with no latency samples carries a 0.
type AggregatedStats struct {
	Period           string       `json:"period"`
	UptimePercentage float64      `json:"uptime_percentage"`
	AvgResponseTime  float64      `json:"avg_response_time"`
	StatusCounts     StatusCounts `json:"status_counts"`
	Timestamps       []time.Time  `json:"timestamps"`
	ResponseTimes    []float64    `json:"response_times"`
}
