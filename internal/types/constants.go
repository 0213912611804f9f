package types

import (
	"os"
	"strings"
	"time"
)

const ContextUserKey = "user"

// Refresh frequencies a service can be scheduled at.
const (
	FrequencyOneMinute  = "1 minute"
	FrequencyTenMinutes = "10 minutes"
	FrequencyOneHour    = "1 hour"
)

// Alert cadences for a persistently-down service.
const (
	AlertAlways = "always"
	AlertDaily  = "daily"
)

// Notification delivery methods. Slack-style webhooks are the only
// variant today; email and SMS would slot in here.
const (
	MethodSlack = "slack"
)

// Monitoring pipeline limits.
const (
	MaxConcurrentRequests = 20               // simultaneous in-flight probes
	RequestTimeout        = 10 * time.Second // per-probe timeout
	BatchSize             = 50               // services per batch
	BatchPause            = 1 * time.Second  // pause between batches
	CheckInterval         = 1 * time.Minute  // monitoring cycle cadence
)

// Aggregation periods accepted by the stats endpoint.
const (
	Period1h  = "1h"
	Period24h = "24h"
	Period7d  = "7d"
	Period30d = "30d"
)

// FrequencyInterval maps a refresh frequency to its check interval.
// Unrecognized values fall back to one hour.
func FrequencyInterval(frequency string) time.Duration {
	switch frequency {
	case FrequencyOneMinute:
		return 1 * time.Minute
	case FrequencyTenMinutes:
		return 10 * time.Minute
	case FrequencyOneHour:
		return 1 * time.Hour
	default:
		return 1 * time.Hour
	}
}

// ValidFrequency reports whether frequency is one of the supported values.
func ValidFrequency(frequency string) bool {
	switch frequency {
	case FrequencyOneMinute, FrequencyTenMinutes, FrequencyOneHour:
		return true
	}
	return false
}

// PeriodWindow returns the length of a named aggregation window,
// or false when the period is not recognized.
func PeriodWindow(period string) (time.Duration, bool) {
	switch period {
	case Period1h:
		return 1 * time.Hour, true
	case Period24h:
		return 24 * time.Hour, true
	case Period7d:
		return 7 * 24 * time.Hour, true
	case Period30d:
		return 30 * 24 * time.Hour, true
	}
	return 0, false
}

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
