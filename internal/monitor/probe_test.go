package monitor

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestHTTPProber_Up(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewHTTPProber(zap.NewNop(), 5*time.Second)
	up, latency := p.Probe(context.Background(), srv.URL)

	if !up {
		t.Fatal("expected service to be up")
	}
	if latency == nil {
		t.Fatal("expected a latency measurement")
	}
	if *latency < 0 {
		t.Fatalf("negative latency: %v", *latency)
	}
	if math.Round(*latency*10)/10 != *latency {
		t.Fatalf("latency not rounded to one decimal: %v", *latency)
	}
}

func TestHTTPProber_ErrorStatusIsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewHTTPProber(zap.NewNop(), 5*time.Second)
	up, latency := p.Probe(context.Background(), srv.URL)

	if up {
		t.Fatal("expected 500 to read as down")
	}
	if latency == nil {
		t.Fatal("a reachable but failing service still has a latency")
	}
}

func TestHTTPProber_NotFoundIsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewHTTPProber(zap.NewNop(), 5*time.Second)
	if up, _ := p.Probe(context.Background(), srv.URL); up {
		t.Fatal("status 404 must count as down")
	}
}

func TestHTTPProber_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewHTTPProber(zap.NewNop(), 1*time.Second)
	up, latency := p.Probe(context.Background(), url)

	if up {
		t.Fatal("expected connection error to read as down")
	}
	if latency != nil {
		t.Fatalf("expected nil latency on failure, got %v", *latency)
	}
}

func TestHTTPProber_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	p := NewHTTPProber(zap.NewNop(), 50*time.Millisecond)
	up, latency := p.Probe(context.Background(), srv.URL)

	if up {
		t.Fatal("expected timeout to read as down")
	}
	if latency != nil {
		t.Fatalf("expected nil latency on timeout, got %v", *latency)
	}
}
