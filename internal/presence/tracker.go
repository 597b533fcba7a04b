// Package presence drives periodic activity heartbeats for a connected
// session. A Tracker is a lifecycle-scoped task: started with a context when
// the session opens, it reports online/away transitions until the context is
// canceled, then sends a final departure.
package presence

import (
	"context"
	"log/slog"
	"time"

	"github.com/Calcifer04/GGZA-sub001/internal/models"
)

// Sink receives the tracker's presence updates. In production this is backed
// by the activity service; bots and gateway bridges provide their own.
type Sink interface {
	SendHeartbeat(ctx context.Context, status models.ActivityStatus) error
	SendDepart(ctx context.Context) error
}

// Config controls tracker timing. Zero values fall back to defaults.
type Config struct {
	// HeartbeatInterval is how often a heartbeat is sent regardless of
	// state transitions.
	HeartbeatInterval time.Duration

	// IdleThreshold is how long without input before the session is
	// reported as away.
	IdleThreshold time.Duration

	// DepartTimeout bounds the final departure call, which runs after the
	// tracker's own context is already canceled.
	DepartTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = 30 * time.Second
	}
	if c.IdleThreshold <= 0 {
		c.IdleThreshold = 120 * time.Second
	}
	if c.DepartTimeout <= 0 {
		c.DepartTimeout = 5 * time.Second
	}
}

type trackerState int

const (
	stateActive trackerState = iota
	stateIdle
)

// Tracker maintains the active/idle state machine for one session.
type Tracker struct {
	sink   Sink
	config Config
	logger *slog.Logger

	input chan struct{}
}

func NewTracker(sink Sink, config Config, logger *slog.Logger) *Tracker {
	config.applyDefaults()
	return &Tracker{
		sink:   sink,
		config: config,
		logger: logger,
		input:  make(chan struct{}, 1),
	}
}

// Input records user activity. Safe to call from any goroutine; signals are
// coalesced, so high-frequency callers never block.
func (t *Tracker) Input() {
	select {
	case t.input <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is canceled. It sends an immediate online heartbeat,
// then one per interval, flips to away after the idle threshold, and flips
// back to online the moment input arrives. Cancellation triggers a final
// best-effort departure on a detached context.
func (t *Tracker) Run(ctx context.Context) {
	state := stateActive
	t.beat(ctx, models.StatusOnline)

	ticker := time.NewTicker(t.config.HeartbeatInterval)
	defer ticker.Stop()

	idle := time.NewTimer(t.config.IdleThreshold)
	defer idle.Stop()

	for {
		select {
		case <-ctx.Done():
			t.depart()
			return

		case <-t.input:
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(t.config.IdleThreshold)

			// Returning from idle is reported immediately, not on the
			// next tick, so watchers see the session come back at once.
			if state == stateIdle {
				state = stateActive
				t.beat(ctx, models.StatusOnline)
			}

		case <-idle.C:
			if state == stateActive {
				state = stateIdle
				t.beat(ctx, models.StatusAway)
			}

		case <-ticker.C:
			status := models.StatusOnline
			if state == stateIdle {
				status = models.StatusAway
			}
			t.beat(ctx, status)
		}
	}
}

func (t *Tracker) beat(ctx context.Context, status models.ActivityStatus) {
	if err := t.sink.SendHeartbeat(ctx, status); err != nil {
		t.logger.Warn("heartbeat failed", "status", status, "error", err)
	}
}

func (t *Tracker) depart() {
	ctx, cancel := context.WithTimeout(context.Background(), t.config.DepartTimeout)
	defer cancel()

	if err := t.sink.SendDepart(ctx); err != nil {
		t.logger.Warn("departure failed", "error", err)
	}
}
