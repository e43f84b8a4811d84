package connectivity

import (
	"context"
	"log/slog"
	"time"
)

// HealthChecker is the reachability signal source
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Prober polls a HealthChecker and feeds the result into a Monitor
type Prober struct {
	checker  HealthChecker
	monitor  *Monitor
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
}

// NewProber creates a prober. Zero interval or timeout get defaults of 15s and 5s.
func NewProber(checker HealthChecker, monitor *Monitor, interval, timeout time.Duration, logger *slog.Logger) *Prober {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Prober{
		checker:  checker,
		monitor:  monitor,
		logger:   logger,
		interval: interval,
		timeout:  timeout,
	}
}

// Probe performs one health check and updates the monitor
func (p *Prober) Probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.checker.Health(ctx)
	if err != nil {
		p.logger.Debug("Health check failed", "error", err)
	}
	online := err == nil
	p.monitor.Set(online)
	return online
}

// Run probes immediately and then on every tick until ctx is done
func (p *Prober) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Probe(ctx)
		}
	}
}
