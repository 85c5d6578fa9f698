package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	defaultPollInterval = 15 * time.Second
	maxBackoff          = 30 * time.Second
)

// refresher performs one full read of server state.
type refresher interface {
	Refresh(ctx context.Context) error
}

// Poller refreshes in the background and can be asked to refresh right away.
type Poller struct {
	kick chan struct{}
}

// StartPoller launches a background goroutine that refreshes at interval,
// backing off while refreshes fail. It returns immediately.
func StartPoller(ctx context.Context, r refresher, log *zap.Logger, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &Poller{kick: make(chan struct{}, 1)}
	go func() {
		failures := 0
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			case <-p.kick:
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
			}

			if err := r.Refresh(ctx); err != nil {
				failures++
			} else {
				failures = 0
			}
			wait := calculateBackoff(failures, interval)
			if failures > 0 {
				log.Debug("poll backing off", zap.Int("failures", failures), zap.Duration("wait", wait))
			}
			timer.Reset(wait)
		}
	}()
	return p
}

// RefreshNow requests an immediate refresh. Requests made while one is
// already queued are merged.
func (p *Poller) RefreshNow() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff (or base, when base is already longer).
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	ceiling := max(maxBackoff, base)
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= ceiling {
			return ceiling
		}
	}
	return wait
}
