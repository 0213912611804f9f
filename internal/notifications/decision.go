package notifications

import (
	"time"

	"github.com/pingmaster-dev/pingmaster/internal/models"
	"github.com/pingmaster-dev/pingmaster/internal/types"
)

// ShouldNotify is the alert decision function. It is pure: given the
// service's preference, the previous and current observations and the
// current time, it reports whether an alert should be dispatched.
//
// Rules, in priority order:
//   - no preference configured: never notify
//   - recovery (down -> up): notify iff notify_on_recovery
//   - current status up otherwise: never notify
//   - first-ever down (no previous observation): always notify
//   - still down, cadence "always": notify every time
//   - still down, cadence "daily": notify when no alert has fired in the
//     last 24 hours
func ShouldNotify(pref *models.NotificationPreference, previous, current *models.ServiceStat, now time.Time) bool {
	if pref == nil || current == nil {
		return false
	}

	if previous != nil && !previous.Status && current.Status {
		return pref.NotifyOnRecovery
	}

	if current.Status {
		return false
	}

	if previous == nil {
		return true
	}

	switch pref.AlertFrequency {
	case types.AlertAlways:
		return true
	case types.AlertDaily:
		if pref.LastAlertTime == nil {
			return true
		}
		return now.Sub(*pref.LastAlertTime) > 24*time.Hour
	}

	return false
}
