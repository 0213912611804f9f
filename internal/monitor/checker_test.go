package monitor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pingmaster-dev/pingmaster/internal/models"
	"github.com/pingmaster-dev/pingmaster/internal/notifications"
	"github.com/pingmaster-dev/pingmaster/internal/repo/memory"
	"github.com/pingmaster-dev/pingmaster/internal/types"
)

// fakeProber records peak concurrent in-flight probes and returns a
// scripted result.
type fakeProber struct {
	mu      sync.Mutex
	current int
	peak    int
	calls   int

	up      bool
	latency float64
	delay   time.Duration

	panicOn string // URL that triggers a panic
}

func (p *fakeProber) Probe(ctx context.Context, url string) (bool, *float64) {
	p.mu.Lock()
	p.calls++
	p.current++
	if p.current > p.peak {
		p.peak = p.current
	}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.current--
		p.mu.Unlock()
	}()

	if url == p.panicOn {
		panic("probe exploded")
	}

	if p.delay > 0 {
		time.Sleep(p.delay)
	}

	latency := p.latency
	return p.up, &latency
}

type countingNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *countingNotifier) NotifyServiceStatus(ctx context.Context, service models.Service, previous, current *models.ServiceStat) {
	n.mu.Lock()
	n.calls++
	n.mu.Unlock()
}

func newTestChecker(store *memory.Store, prober Prober, notifier Notifier) *Checker {
	c := NewChecker(zap.NewNop(), store, prober, notifier)
	c.pause = 10 * time.Millisecond // keep multi-batch tests fast
	return c
}

func TestShouldCheck(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := func(frequency string) models.Service {
		return models.Service{Name: "svc", RefreshFrequency: frequency}
	}
	stat := func(age time.Duration) *models.ServiceStat {
		return &models.ServiceStat{PingDate: now.Add(-age)}
	}

	tests := []struct {
		name string
		svc  models.Service
		last *models.ServiceStat
		want bool
	}{
		{"no history is always due", svc(types.FrequencyOneHour), nil, true},
		{"one minute, overdue", svc(types.FrequencyOneMinute), stat(2 * time.Minute), true},
		{"one minute, exactly due", svc(types.FrequencyOneMinute), stat(1 * time.Minute), true},
		{"one minute, not due", svc(types.FrequencyOneMinute), stat(30 * time.Second), false},
		{"ten minutes, not due", svc(types.FrequencyTenMinutes), stat(5 * time.Minute), false},
		{"one hour, not due", svc(types.FrequencyOneHour), stat(30 * time.Minute), false},
		{"one hour, due", svc(types.FrequencyOneHour), stat(61 * time.Minute), true},
		{"unknown frequency falls back to one hour", svc("weekly"), stat(30 * time.Minute), false},
		{"unknown frequency due after an hour", svc("weekly"), stat(2 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldCheck(tt.svc, tt.last, now); got != tt.want {
				t.Fatalf("ShouldCheck() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckServices_FirstCycleInsertsOneObservation(t *testing.T) {
	store := memory.NewStore()
	store.AddService(models.Service{Name: "fresh", URL: "https://fresh.test", RefreshFrequency: types.FrequencyOneHour})

	prober := &fakeProber{up: true, latency: 42.5}
	checker := newTestChecker(store, prober, nil)

	if err := checker.CheckServices(context.Background(), time.Now().UTC()); err != nil {
		t.Fatal(err)
	}

	if got := store.StatCount(); got != 1 {
		t.Fatalf("want exactly 1 observation, got %d", got)
	}
	if prober.calls != 1 {
		t.Fatalf("want exactly 1 probe, got %d", prober.calls)
	}
}

func TestCheckServices_SkipsServicesNotDue(t *testing.T) {
	store := memory.NewStore()
	now := time.Now().UTC()

	due := store.AddService(models.Service{Name: "due", URL: "https://due.test", RefreshFrequency: types.FrequencyOneMinute})
	fresh := store.AddService(models.Service{Name: "fresh", URL: "https://fresh.test", RefreshFrequency: types.FrequencyOneHour})

	store.AddStat(models.ServiceStat{ServiceID: due.ID, Status: true, PingDate: now.Add(-5 * time.Minute)})
	store.AddStat(models.ServiceStat{ServiceID: fresh.ID, Status: true, PingDate: now.Add(-5 * time.Minute)})

	prober := &fakeProber{up: true, latency: 10}
	checker := newTestChecker(store, prober, nil)

	if err := checker.CheckServices(context.Background(), now); err != nil {
		t.Fatal(err)
	}

	if prober.calls != 1 {
		t.Fatalf("want only the due service probed, got %d probes", prober.calls)
	}
	if got := store.StatCount(); got != 3 {
		t.Fatalf("want 3 observations (2 seeded + 1 new), got %d", got)
	}
}

func TestCheckServices_ConcurrencyCap(t *testing.T) {
	store := memory.NewStore()
	for i := 0; i < 100; i++ {
		store.AddService(models.Service{
			Name:             fmt.Sprintf("svc-%d", i),
			URL:              fmt.Sprintf("https://svc-%d.test", i),
			RefreshFrequency: types.FrequencyOneMinute,
		})
	}

	prober := &fakeProber{up: true, latency: 5, delay: 5 * time.Millisecond}
	notifier := &countingNotifier{}
	checker := newTestChecker(store, prober, notifier)

	if err := checker.CheckServices(context.Background(), time.Now().UTC()); err != nil {
		t.Fatal(err)
	}

	if prober.calls != 100 {
		t.Fatalf("want all 100 services probed, got %d", prober.calls)
	}
	if got := store.StatCount(); got != 100 {
		t.Fatalf("want 100 observations persisted, got %d", got)
	}
	if prober.peak > types.MaxConcurrentRequests {
		t.Fatalf("concurrency cap exceeded: peak %d > %d", prober.peak, types.MaxConcurrentRequests)
	}
	if notifier.calls != 100 {
		t.Fatalf("want the notifier consulted per service, got %d", notifier.calls)
	}
}

func TestCheckServices_PanickingProbeIsIsolated(t *testing.T) {
	store := memory.NewStore()
	for i := 0; i < 10; i++ {
		store.AddService(models.Service{
			Name:             fmt.Sprintf("svc-%d", i),
			URL:              fmt.Sprintf("https://svc-%d.test", i),
			RefreshFrequency: types.FrequencyOneMinute,
		})
	}

	prober := &fakeProber{up: true, latency: 5, panicOn: "https://svc-3.test"}
	checker := newTestChecker(store, prober, nil)

	if err := checker.CheckServices(context.Background(), time.Now().UTC()); err != nil {
		t.Fatal(err)
	}

	if got := store.StatCount(); got != 9 {
		t.Fatalf("want 9 observations (panicking probe excluded), got %d", got)
	}
}

// scriptedProber flips services between up and down per cycle.
type scriptedProber struct {
	mu sync.Mutex
	up bool
}

func (p *scriptedProber) Probe(ctx context.Context, url string) (bool, *float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	latency := 12.0
	return p.up, &latency
}

func TestCheckServices_AlertScenarioAcrossCycles(t *testing.T) {
	var mu sync.Mutex
	delivered := 0
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		delivered++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer webhook.Close()

	deliveredCount := func() int {
		mu.Lock()
		defer mu.Unlock()
		return delivered
	}

	store := memory.NewStore()
	svc := store.AddService(models.Service{
		Name:             "flappy",
		URL:              "https://flappy.test",
		RefreshFrequency: types.FrequencyOneMinute,
	})
	store.SetPreference(models.NotificationPreference{
		ServiceID:          svc.ID,
		NotificationMethod: types.MethodSlack,
		AlertFrequency:     types.AlertAlways,
		WebhookURL:         webhook.URL,
		NotifyOnRecovery:   true,
	})

	prober := &scriptedProber{up: false}
	notifier := notifications.NewNotifier(zap.NewNop(), store)
	checker := newTestChecker(store, prober, notifier)

	// cycle 1: first-ever observation is down -> one alert
	now := time.Now().UTC()
	if err := checker.CheckServices(context.Background(), now); err != nil {
		t.Fatal(err)
	}
	if got := deliveredCount(); got != 1 {
		t.Fatalf("cycle 1: want 1 alert, got %d", got)
	}

	// cycle 2: still down, cadence always -> second alert
	if err := checker.CheckServices(context.Background(), now.Add(2*time.Minute)); err != nil {
		t.Fatal(err)
	}
	if got := deliveredCount(); got != 2 {
		t.Fatalf("cycle 2: want 2 alerts, got %d", got)
	}

	// cycle 3: recovers -> one recovery alert
	prober.mu.Lock()
	prober.up = true
	prober.mu.Unlock()
	if err := checker.CheckServices(context.Background(), now.Add(4*time.Minute)); err != nil {
		t.Fatal(err)
	}
	if got := deliveredCount(); got != 3 {
		t.Fatalf("cycle 3: want 3 alerts total, got %d", got)
	}

	// cycle 4: still up -> no further alerts
	if err := checker.CheckServices(context.Background(), now.Add(6*time.Minute)); err != nil {
		t.Fatal(err)
	}
	if got := deliveredCount(); got != 3 {
		t.Fatalf("cycle 4: want no new alert, got %d total", got)
	}
}
