// Package repo defines the persistence interfaces the monitoring core
// depends on. The gormrepo package implements them against Postgres and
// the memory package implements them for tests.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pingmaster-dev/pingmaster/internal/models"
)

type ServiceStore interface {
	// ListServices returns every registered service.
	ListServices(ctx context.Context) ([]models.Service, error)
}

type StatStore interface {
	// LatestStat returns the most recent observation for a service,
	// or nil when the service has never been checked.
	LatestStat(ctx context.Context, serviceID uuid.UUID) (*models.ServiceStat, error)

	// BulkInsertStats writes a batch of observations in one transaction.
	// Every record is validated at this boundary; a future-dated timestamp
	// or negative latency rejects the whole batch.
	BulkInsertStats(ctx context.Context, stats []models.ServiceStat) error

	// StatsSince returns a service's observations with ping_date >= since.
	StatsSince(ctx context.Context, serviceID uuid.UUID, since time.Time) ([]models.ServiceStat, error)
}

type PreferenceStore interface {
	// PreferenceByService returns the service's notification preference,
	// or nil when none is configured.
	PreferenceByService(ctx context.Context, serviceID uuid.UUID) (*models.NotificationPreference, error)

	// SavePreference persists a preference, updating it in place when it
	// already exists.
	SavePreference(ctx context.Context, pref *models.NotificationPreference) error
}

type Store interface {
	ServiceStore
	StatStore
	PreferenceStore
}
