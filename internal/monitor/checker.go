package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pingmaster-dev/pingmaster/internal/models"
	"github.com/pingmaster-dev/pingmaster/internal/repo"
	"github.com/pingmaster-dev/pingmaster/internal/types"
)

// Notifier decides whether a new observation warrants an alert and, if so,
// dispatches it. It must never fail the check pipeline: delivery problems
// are its own concern.
type Notifier interface {
	NotifyServiceStatus(ctx context.Context, service models.Service, previous, current *models.ServiceStat)
}

// Broadcaster is notified after a batch of observations has been persisted,
// so live dashboards can refresh.
type Broadcaster interface {
	BroadcastRefresh(userID uuid.UUID)
}

// Checker runs one monitoring cycle: it selects due services, probes them
// with bounded concurrency in sequential batches, routes each result
// through the notifier and persists every batch in one transaction.
type Checker struct {
	logger      *zap.Logger
	store       repo.Store
	prober      Prober
	notifier    Notifier
	broadcaster Broadcaster

	concurrency int
	batchSize   int
	pause       time.Duration
}

func NewChecker(logger *zap.Logger, store repo.Store, prober Prober, notifier Notifier) *Checker {
	return &Checker{
		logger:      logger,
		store:       store,
		prober:      prober,
		notifier:    notifier,
		concurrency: types.MaxConcurrentRequests,
		batchSize:   types.BatchSize,
		pause:       types.BatchPause,
	}
}

// SetBroadcaster attaches an optional live-update sink.
func (c *Checker) SetBroadcaster(b Broadcaster) {
	c.broadcaster = b
}

// ShouldCheck reports whether a service is due at now. A service with no
// prior observation is always due; otherwise it is due once its refresh
// interval has elapsed since the last observation.
func ShouldCheck(service models.Service, last *models.ServiceStat, now time.Time) bool {
	if last == nil {
		return true
	}
	next := last.PingDate.Add(types.FrequencyInterval(service.RefreshFrequency))
	return !now.Before(next)
}

// CheckServices performs one scheduling cycle. A batch persistence error
// aborts the cycle and is returned to the caller; individual probe
// failures never do.
func (c *Checker) CheckServices(ctx context.Context, now time.Time) error {
	services, err := c.store.ListServices(ctx)
	if err != nil {
		return fmt.Errorf("listing services: %w", err)
	}

	var due []models.Service
	for _, service := range services {
		last, err := c.store.LatestStat(ctx, service.ID)
		if err != nil {
			return fmt.Errorf("fetching latest stat for %s: %w", service.ID, err)
		}
		if ShouldCheck(service, last, now) {
			due = append(due, service)
		}
	}

	if len(due) == 0 {
		c.logger.Info("no services need checking",
			zap.Int("evaluated", len(services)))
		return nil
	}

	sem := make(chan struct{}, c.concurrency)
	processed := 0

	for start := 0; start < len(due); start += c.batchSize {
		end := start + c.batchSize
		if end > len(due) {
			end = len(due)
		}
		batch := due[start:end]

		stats := c.processBatch(ctx, batch, sem)
		if err := c.store.BulkInsertStats(ctx, stats); err != nil {
			return fmt.Errorf("persisting batch: %w", err)
		}
		processed += len(stats)
		c.logger.Info("processed batch", zap.Int("services", len(stats)))

		c.broadcastBatch(batch)

		// Brief pause between batches so probe traffic is not bursty.
		if end < len(due) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.pause):
			}
		}
	}

	c.logger.Info("monitoring cycle complete",
		zap.Int("evaluated", len(services)),
		zap.Int("skipped", len(services)-len(due)),
		zap.Int("processed", processed))
	return nil
}

// processBatch probes every service in the batch concurrently, capped by
// sem. A service whose probe panics is logged and excluded from the
// returned slice; it must not block or corrupt the rest of the batch.
func (c *Checker) processBatch(ctx context.Context, batch []models.Service, sem chan struct{}) []models.ServiceStat {
	results := make([]*models.ServiceStat, len(batch))
	var wg sync.WaitGroup

	for i, service := range batch {
		wg.Add(1)
		go func(i int, service models.Service) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("probe panicked",
						zap.String("service", service.Name),
						zap.Any("panic", r))
				}
			}()

			sem <- struct{}{}
			defer func() { <-sem }()

			stat, err := c.processService(ctx, service)
			if err != nil {
				c.logger.Error("failed to process service",
					zap.String("service", service.Name),
					zap.Error(err))
				return
			}
			results[i] = stat
		}(i, service)
	}
	wg.Wait()

	stats := make([]models.ServiceStat, 0, len(batch))
	for _, stat := range results {
		if stat != nil {
			stats = append(stats, *stat)
		}
	}
	return stats
}

func (c *Checker) processService(ctx context.Context, service models.Service) (*models.ServiceStat, error) {
	// The previous observation is read before probing so the notifier can
	// detect a down->up or up->down transition.
	previous, err := c.store.LatestStat(ctx, service.ID)
	if err != nil {
		return nil, err
	}

	up, latency := c.prober.Probe(ctx, service.URL)

	stat := &models.ServiceStat{
		ServiceID:    service.ID,
		Status:       up,
		ResponseTime: latency,
		PingDate:     time.Now().UTC(),
	}

	if c.notifier != nil {
		c.notifier.NotifyServiceStatus(ctx, service, previous, stat)
	}

	return stat, nil
}

func (c *Checker) broadcastBatch(batch []models.Service) {
	if c.broadcaster == nil {
		return
	}
	seen := make(map[uuid.UUID]bool)
	for _, service := range batch {
		if !seen[service.UserID] {
			seen[service.UserID] = true
			c.broadcaster.BroadcastRefresh(service.UserID)
		}
	}
}
