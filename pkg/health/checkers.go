package health

import (
	"context"
	"time"

	"github.com/AkashThoriya/universal-learning-platform-sub005/pkg/database"
)

// ProviderChecker reports the health of a storage provider from its
// connection status. A connected provider in offline mode is degraded, not
// unhealthy: reads may still be served from cache and writes are queued.
type ProviderChecker struct {
	name     string
	provider database.Provider
	timeout  time.Duration
}

// NewProviderChecker creates a health checker for a storage provider.
func NewProviderChecker(name string, provider database.Provider, timeout time.Duration) *ProviderChecker {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ProviderChecker{name: name, provider: provider, timeout: timeout}
}

func (c *ProviderChecker) Name() string { return c.name }

func (c *ProviderChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	status := c.provider.Status(checkCtx)
	result := CheckResult{
		Name:      c.name,
		Timestamp: time.Now(),
		Duration:  time.Since(start),
	}
	switch {
	case !status.Connected:
		result.Status = StatusUnhealthy
		result.Message = "provider disconnected"
	case status.Offline:
		result.Status = StatusDegraded
		result.Message = "provider in offline mode"
	default:
		result.Status = StatusHealthy
		result.Message = "OK"
	}
	return result
}

// PingChecker always reports healthy. Useful as a liveness probe.
type PingChecker struct {
	name string
}

// NewPingChecker creates a new ping checker
func NewPingChecker(name string) *PingChecker {
	return &PingChecker{name: name}
}

func (c *PingChecker) Name() string { return c.name }

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	return CheckResult{
		Name:      c.name,
		Status:    StatusHealthy,
		Message:   "Service is alive",
		Timestamp: time.Now(),
	}
}
