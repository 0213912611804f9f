package monitor

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pingmaster-dev/pingmaster/internal/models"
)

// Prober issues a single availability check against a URL.
type Prober interface {
	// Probe returns whether the target is up and the observed latency in
	// milliseconds, rounded to one decimal. The latency is nil when the
	// request failed outright (timeout, DNS error, connection refused).
	// Probe never returns an error: every failure is an observation.
	Probe(ctx context.Context, url string) (bool, *float64)
}

type HTTPProber struct {
	client *http.Client
	logger *zap.Logger
}

func NewHTTPProber(logger *zap.Logger, timeout time.Duration) *HTTPProber {
	return &HTTPProber{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (p *HTTPProber) Probe(ctx context.Context, url string) (bool, *float64) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		p.logger.Warn("invalid probe target", zap.String("url", url), zap.Error(err))
		return false, nil
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("probe failed", zap.String("url", url), zap.Error(err))
		return false, nil
	}
	defer resp.Body.Close()

	latency := models.RoundResponseTime(time.Since(start).Seconds() * 1000)

	// A reachable service that answers 4xx/5xx is down but still has a
	// measurable latency.
	return resp.StatusCode < 400, &latency
}
