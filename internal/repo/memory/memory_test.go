package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pingmaster-dev/pingmaster/internal/models"
)

func fp(v float64) *float64 { return &v }

func TestBulkInsertStats_RoundTrip(t *testing.T) {
	store := NewStore()
	svc := store.AddService(models.Service{Name: "api", URL: "https://api.test"})

	pingDate := time.Now().UTC().Add(-time.Minute)
	err := store.BulkInsertStats(context.Background(), []models.ServiceStat{
		{ServiceID: svc.ID, Status: true, ResponseTime: fp(200.5), PingDate: pingDate},
	})
	if err != nil {
		t.Fatal(err)
	}

	stats, err := store.StatsSince(context.Background(), svc.ID, pingDate.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 1 {
		t.Fatalf("want 1 stat, got %d", len(stats))
	}
	if !stats[0].Status {
		t.Fatal("status lost in round trip")
	}
	if stats[0].ResponseTime == nil || *stats[0].ResponseTime != 200.5 {
		t.Fatalf("want response time 200.5, got %v", stats[0].ResponseTime)
	}
}

func TestBulkInsertStats_RoundsToOneDecimal(t *testing.T) {
	store := NewStore()
	svc := store.AddService(models.Service{Name: "api", URL: "https://api.test"})

	err := store.BulkInsertStats(context.Background(), []models.ServiceStat{
		{ServiceID: svc.ID, Status: true, ResponseTime: fp(123.456), PingDate: time.Now().UTC().Add(-time.Second)},
	})
	if err != nil {
		t.Fatal(err)
	}

	latest, err := store.LatestStat(context.Background(), svc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if *latest.ResponseTime != 123.5 {
		t.Fatalf("want 123.5, got %v", *latest.ResponseTime)
	}
}

func TestBulkInsertStats_RejectsFutureObservation(t *testing.T) {
	store := NewStore()
	svc := store.AddService(models.Service{Name: "api", URL: "https://api.test"})

	err := store.BulkInsertStats(context.Background(), []models.ServiceStat{
		{ServiceID: svc.ID, Status: true, PingDate: time.Now().UTC().Add(time.Hour)},
	})
	if !errors.Is(err, models.ErrFutureObservation) {
		t.Fatalf("want ErrFutureObservation, got %v", err)
	}
	if store.StatCount() != 0 {
		t.Fatal("rejected batch must not be partially written")
	}
}

func TestBulkInsertStats_RejectsNegativeLatency(t *testing.T) {
	store := NewStore()
	svc := store.AddService(models.Service{Name: "api", URL: "https://api.test"})

	err := store.BulkInsertStats(context.Background(), []models.ServiceStat{
		{ServiceID: svc.ID, Status: true, ResponseTime: fp(-5), PingDate: time.Now().UTC()},
	})
	if !errors.Is(err, models.ErrNegativeLatency) {
		t.Fatalf("want ErrNegativeLatency, got %v", err)
	}
}

func TestLatestStat_OrderedByPingDate(t *testing.T) {
	store := NewStore()
	svc := store.AddService(models.Service{Name: "api", URL: "https://api.test"})
	now := time.Now().UTC()

	store.AddStat(models.ServiceStat{ServiceID: svc.ID, Status: false, PingDate: now.Add(-2 * time.Hour)})
	store.AddStat(models.ServiceStat{ServiceID: svc.ID, Status: true, PingDate: now.Add(-time.Minute)})
	store.AddStat(models.ServiceStat{ServiceID: svc.ID, Status: false, PingDate: now.Add(-time.Hour)})

	latest, err := store.LatestStat(context.Background(), svc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if latest == nil || !latest.Status {
		t.Fatalf("want the most recent (up) stat, got %+v", latest)
	}
}

func TestLatestStat_NoHistory(t *testing.T) {
	store := NewStore()
	svc := store.AddService(models.Service{Name: "api", URL: "https://api.test"})

	latest, err := store.LatestStat(context.Background(), svc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if latest != nil {
		t.Fatalf("want nil for unchecked service, got %+v", latest)
	}
}
