package loom

import (
	"context"
	"sync"
	"time"

	"github.com/danpasecinic/loom/internal/keys"
)

type HealthStatus string

const (
	HealthStatusUp   HealthStatus = "up"
	HealthStatusDown HealthStatus = "down"
)

type HealthReport struct {
	Key     string
	Status  HealthStatus
	Error   error
	Latency time.Duration
}

// HealthChecker is implemented by constructed singletons that want to
// participate in container health checks.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Live returns the first failing health check among materialized
// singletons, or nil when everything reports up.
func (c *Container) Live(ctx context.Context) error {
	for _, r := range c.Health(ctx) {
		if r.Status == HealthStatusDown {
			return &Error{
				Code:    ErrCodeProviderFailure,
				Key:     keys.Key(r.Key),
				Message: "health check failed",
				Cause:   r.Error,
			}
		}
	}
	return nil
}

// Health runs every materialized singleton's health check
// concurrently and reports per-key status.
func (c *Container) Health(ctx context.Context) []HealthReport {
	var (
		reports []HealthReport
		mu      sync.Mutex
		wg      sync.WaitGroup
	)

	for _, key := range c.internal.Keys() {
		instance, ok := c.internal.Instance(key)
		if !ok {
			continue
		}
		checker, ok := instance.(HealthChecker)
		if !ok {
			continue
		}

		wg.Add(1)
		go func(k keys.Key, hc HealthChecker) {
			defer wg.Done()

			start := time.Now()
			err := hc.HealthCheck(ctx)

			report := HealthReport{
				Key:     k.String(),
				Status:  HealthStatusUp,
				Latency: time.Since(start),
			}
			if err != nil {
				report.Status = HealthStatusDown
				report.Error = err
			}

			mu.Lock()
			reports = append(reports, report)
			mu.Unlock()
		}(key, checker)
	}

	wg.Wait()
	return reports
}
