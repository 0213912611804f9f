// Package memory provides an in-memory Store used by tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pingmaster-dev/pingmaster/internal/models"
)

type Store struct {
	mu       sync.Mutex
	services []models.Service
	stats    map[uuid.UUID][]models.ServiceStat
	prefs    map[uuid.UUID]models.NotificationPreference
}

func NewStore() *Store {
	return &Store{
		stats: make(map[uuid.UUID][]models.ServiceStat),
		prefs: make(map[uuid.UUID]models.NotificationPreference),
	}
}

// AddService registers a service, assigning an ID when absent.
func (s *Store) AddService(svc models.Service) models.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc.ID == uuid.Nil {
		svc.ID = uuid.New()
	}
	s.services = append(s.services, svc)
	return svc
}

// AddStat appends an observation without write-boundary validation,
// so tests can seed historical data directly.
func (s *Store) AddStat(stat models.ServiceStat) models.ServiceStat {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stat.ID == uuid.Nil {
		stat.ID = uuid.New()
	}
	s.stats[stat.ServiceID] = append(s.stats[stat.ServiceID], stat)
	return stat
}

// SetPreference seeds a notification preference.
func (s *Store) SetPreference(pref models.NotificationPreference) models.NotificationPreference {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pref.ID == uuid.Nil {
		pref.ID = uuid.New()
	}
	s.prefs[pref.ServiceID] = pref
	return pref
}

// StatCount returns the number of persisted observations across all services.
func (s *Store) StatCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, ss := range s.stats {
		n += len(ss)
	}
	return n
}

func (s *Store) ListServices(ctx context.Context) ([]models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Service, len(s.services))
	copy(out, s.services)
	return out, nil
}

func (s *Store) LatestStat(ctx context.Context, serviceID uuid.UUID) (*models.ServiceStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.stats[serviceID]
	if len(stats) == 0 {
		return nil, nil
	}
	latest := stats[0]
	for _, st := range stats[1:] {
		if st.PingDate.After(latest.PingDate) {
			latest = st
		}
	}
	return &latest, nil
}

func (s *Store) BulkInsertStats(ctx context.Context, stats []models.ServiceStat) error {
	now := time.Now().UTC()
	validated := make([]models.ServiceStat, len(stats))
	for i, stat := range stats {
		if err := stat.Validate(now); err != nil {
			return fmt.Errorf("invalid observation for service %s: %w", stat.ServiceID, err)
		}
		if stat.ResponseTime != nil {
			rounded := models.RoundResponseTime(*stat.ResponseTime)
			stat.ResponseTime = &rounded
		}
		if stat.ID == uuid.Nil {
			stat.ID = uuid.New()
		}
		validated[i] = stat
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stat := range validated {
		s.stats[stat.ServiceID] = append(s.stats[stat.ServiceID], stat)
	}
	return nil
}

func (s *Store) StatsSince(ctx context.Context, serviceID uuid.UUID, since time.Time) ([]models.ServiceStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ServiceStat
	for _, stat := range s.stats[serviceID] {
		if !stat.PingDate.Before(since) {
			out = append(out, stat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PingDate.After(out[j].PingDate) })
	return out, nil
}

func (s *Store) PreferenceByService(ctx context.Context, serviceID uuid.UUID) (*models.NotificationPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pref, ok := s.prefs[serviceID]
	if !ok {
		return nil, nil
	}
	p := pref
	return &p, nil
}

func (s *Store) SavePreference(ctx context.Context, pref *models.NotificationPreference) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pref.ID == uuid.Nil {
		pref.ID = uuid.New()
	}
	s.prefs[pref.ServiceID] = *pref
	return nil
}
