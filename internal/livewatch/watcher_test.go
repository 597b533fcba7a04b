package livewatch

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Calcifer04/GGZA-sub001/internal/events"
	"github.com/Calcifer04/GGZA-sub001/internal/services"
)

type countingActivityService struct {
	mu    sync.Mutex
	calls int
}

func (c *countingActivityService) Heartbeat(ctx context.Context, userID uint, req *services.HeartbeatRequest) (*services.HeartbeatResponse, error) {
	return nil, nil
}

func (c *countingActivityService) Depart(ctx context.Context, userID uint) error { return nil }

func (c *countingActivityService) Stats(ctx context.Context) (*services.ActivityStatsResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return &services.ActivityStatsResponse{TotalOnline: c.calls}, nil
}

func (c *countingActivityService) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type updateRecorder struct {
	mu      sync.Mutex
	updates []*services.ActivityStatsResponse
}

func (u *updateRecorder) record(stats *services.ActivityStatsResponse) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.updates = append(u.updates, stats)
}

func (u *updateRecorder) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.updates)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestWatcher_PollingWithoutRedis(t *testing.T) {
	svc := &countingActivityService{}
	rec := &updateRecorder{}

	watcher := NewWatcher(svc, nil, Config{
		PollInterval: 20 * time.Millisecond,
		Debounce:     5 * time.Millisecond,
	}, rec.record, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	// Initial refresh plus at least one poll-driven one.
	waitFor(t, time.Second, func() bool { return rec.count() >= 2 })

	if watcher.Connected() {
		t.Error("Connected should be false without redis")
	}
}

func TestWatcher_NotificationTriggersRefresh(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	svc := &countingActivityService{}
	rec := &updateRecorder{}

	watcher := NewWatcher(svc, client, Config{
		PollInterval: time.Hour,
		Debounce:     5 * time.Millisecond,
	}, rec.record, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	waitFor(t, time.Second, func() bool { return rec.count() >= 1 })
	waitFor(t, time.Second, func() bool { return watcher.Connected() })

	before := rec.count()
	if err := client.Publish(ctx, events.ActivityChannel, "activity.updated").Err(); err != nil {
		t.Fatalf("publish: %v", err)
	}

	waitFor(t, time.Second, func() bool { return rec.count() > before })
}

func TestWatcher_DebounceCollapsesBursts(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	svc := &countingActivityService{}
	rec := &updateRecorder{}

	watcher := NewWatcher(svc, client, Config{
		PollInterval: time.Hour,
		Debounce:     100 * time.Millisecond,
	}, rec.record, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	waitFor(t, time.Second, func() bool { return rec.count() >= 1 })
	waitFor(t, time.Second, func() bool { return watcher.Connected() })

	before := rec.count()
	// A stream of notifications spaced inside the debounce window. Each one
	// pushes the expiry out, so nothing fires until the stream ends.
	for i := 0; i < 8; i++ {
		if err := client.Publish(ctx, events.ActivityChannel, "activity.updated").Err(); err != nil {
			t.Fatalf("publish: %v", err)
		}
		time.Sleep(25 * time.Millisecond)
	}

	if got := rec.count(); got != before {
		t.Errorf("refresh fired mid-stream: %d extra", got-before)
	}

	waitFor(t, time.Second, func() bool { return rec.count() > before })
	// Give any stray debounce expiries a chance to fire.
	time.Sleep(250 * time.Millisecond)

	if got := rec.count() - before; got != 1 {
		t.Errorf("burst produced %d refreshes, want 1", got)
	}
}

func TestWatcher_KickTriggersRefresh(t *testing.T) {
	svc := &countingActivityService{}
	rec := &updateRecorder{}

	watcher := NewWatcher(svc, nil, Config{
		PollInterval: time.Hour,
		Debounce:     5 * time.Millisecond,
	}, rec.record, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	waitFor(t, time.Second, func() bool { return rec.count() >= 1 })

	before := rec.count()
	watcher.Kick()
	waitFor(t, time.Second, func() bool { return rec.count() > before })
}
