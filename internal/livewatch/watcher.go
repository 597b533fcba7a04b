// Package livewatch keeps a live view of the activity stats snapshot fresh.
// Two signal sources feed one debounced refresh: a slow poll ticker that
// works even without pub/sub, and Redis notifications that make changes show
// up near-instantly. The debounce collapses notification bursts (a hub of
// users heartbeating at once) into a single fetch.
package livewatch

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Calcifer04/GGZA-sub001/internal/events"
	"github.com/Calcifer04/GGZA-sub001/internal/services"
)

// Config controls watcher timing. Zero values fall back to defaults.
type Config struct {
	PollInterval time.Duration
	Debounce     time.Duration
}

func (c *Config) applyDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = 15 * time.Second
	}
	if c.Debounce <= 0 {
		c.Debounce = time.Second
	}
}

// Watcher refreshes the activity snapshot and hands each result to onUpdate.
type Watcher struct {
	activityService services.ActivityService
	redisClient     *redis.Client
	config          Config
	onUpdate        func(*services.ActivityStatsResponse)
	logger          *slog.Logger

	connected atomic.Bool
	kick      chan struct{}
}

func NewWatcher(
	activityService services.ActivityService,
	redisClient *redis.Client,
	config Config,
	onUpdate func(*services.ActivityStatsResponse),
	logger *slog.Logger,
) *Watcher {
	config.applyDefaults()
	return &Watcher{
		activityService: activityService,
		redisClient:     redisClient,
		config:          config,
		onUpdate:        onUpdate,
		logger:          logger,
		kick:            make(chan struct{}, 1),
	}
}

// Connected reports whether the pub/sub subscription is live. When false the
// watcher still works, degraded to poll latency.
func (w *Watcher) Connected() bool {
	return w.connected.Load()
}

// Kick requests a refresh outside the normal signal sources. Coalesced like
// every other signal.
func (w *Watcher) Kick() {
	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is canceled. The first refresh happens immediately so
// consumers never start from an empty view.
func (w *Watcher) Run(ctx context.Context) {
	var notifications <-chan *redis.Message
	if w.redisClient != nil {
		sub := w.redisClient.Subscribe(ctx, events.ActivityChannel)
		defer sub.Close()

		// Receive forces the SUBSCRIBE round trip so Connected reflects
		// reality before the loop starts.
		if _, err := sub.Receive(ctx); err != nil {
			w.logger.Warn("activity subscription failed, polling only", "error", err)
		} else {
			w.connected.Store(true)
			notifications = sub.Channel()
		}
		defer w.connected.Store(false)
	}

	w.refresh(ctx)

	poll := time.NewTicker(w.config.PollInterval)
	defer poll.Stop()

	// The debounce timer is created stopped; any signal (re)arms it, and
	// only its expiry triggers a fetch. Every new signal pushes the expiry
	// out again, so the fetch lands after the trailing edge of a burst.
	debounce := time.NewTimer(w.config.Debounce)
	if !debounce.Stop() {
		<-debounce.C
	}
	defer debounce.Stop()
	armed := false

	arm := func() {
		if armed && !debounce.Stop() {
			<-debounce.C
		}
		debounce.Reset(w.config.Debounce)
		armed = true
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-poll.C:
			arm()

		case <-w.kick:
			arm()

		case msg, ok := <-notifications:
			if !ok {
				w.connected.Store(false)
				notifications = nil
				continue
			}
			w.logger.Debug("activity notification", "payload", msg.Payload)
			arm()

		case <-debounce.C:
			armed = false
			w.refresh(ctx)
		}
	}
}

func (w *Watcher) refresh(ctx context.Context) {
	stats, err := w.activityService.Stats(ctx)
	if err != nil {
		w.logger.Error("failed to refresh activity stats", "error", err)
		return
	}
	if w.onUpdate != nil {
		w.onUpdate(stats)
	}
}
