package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/coloringbook/internal/colorbook"
	"github.com/five82/coloringbook/internal/state"
)

const (
	defaultHealthInterval = 15 * time.Second
	maxBackoff            = 2 * time.Minute
	probeTimeout          = 10 * time.Second
)

// StartHealthMonitor probes the server in the background and records results
// in health. After failures the delay doubles up to maxBackoff. serverURL is
// read before every probe so a changed server is picked up. It returns
// immediately.
func StartHealthMonitor(ctx context.Context, health *state.Health, checker colorbook.HealthChecker, serverURL func() string, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultHealthInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "health")

	go func() {
		for {
			probe(ctx, health, checker, serverURL(), logger)
			if ctx.Err() != nil {
				return
			}

			timer := time.NewTimer(calculateBackoff(health.Snapshot().ConsecutiveFailures, interval))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}()
}

func probe(ctx context.Context, health *state.Health, checker colorbook.HealthChecker, baseURL string, logger *slog.Logger) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	status, err := checker.Health(probeCtx, baseURL)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		health.Update(nil, err)
		snap := health.Snapshot()
		if snap.ConsecutiveFailures == 1 {
			logger.Warn("health probe failed", "server", baseURL, "error", err)
		} else {
			logger.Debug("health probe failed", "server", baseURL, "failures", snap.ConsecutiveFailures, "error", err)
		}
		return
	}

	recovered := health.Snapshot().ConsecutiveFailures > 0
	health.Update(&status, nil)
	if recovered {
		logger.Info("server reachable again", "server", baseURL)
	}
	logger.Debug("health probe ok", "server", baseURL, "status", status.Status, "images", status.ImagesCount)
}

// calculateBackoff returns base doubled once per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
