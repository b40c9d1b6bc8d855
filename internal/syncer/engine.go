package syncer

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"taskmarket/internal/idgen"
	"taskmarket/internal/localstore"
	"taskmarket/internal/logging"
	"taskmarket/internal/remote"
)

// Config holds the timing knobs of the sync engine.
type Config struct {
	// ProbeAttempts and ProbeInterval bound the startup readiness check so
	// the application never blocks on an unreachable remote.
	ProbeAttempts int
	ProbeInterval time.Duration
	// ProbeTimeout caps a single ping.
	ProbeTimeout time.Duration

	// MonitorInterval is how often an offline engine re-probes the remote.
	MonitorInterval time.Duration

	// OutboxInterval is how often the outbox drain runs.
	OutboxInterval time.Duration
	// OutboxMaxRetries caps retries of a single remote call inside one
	// drain pass before the task is put back for the next pass.
	OutboxMaxRetries uint64

	// PushInterval is how often local-only records are pushed up.
	PushInterval time.Duration
}

// DefaultConfig returns the timings used unless configuration overrides them.
func DefaultConfig() Config {
	return Config{
		ProbeAttempts:    5,
		ProbeInterval:    time.Second,
		ProbeTimeout:     time.Second,
		MonitorInterval:  15 * time.Second,
		OutboxInterval:   3 * time.Second,
		OutboxMaxRetries: 3,
		PushInterval:     30 * time.Second,
	}
}

// Engine coordinates the local store, the remote store and the read cache.
// All application reads and writes go through it; the remote side is applied
// asynchronously and never blocks a local operation.
type Engine struct {
	local *localstore.Store
	// raw carries real errors for the outbox retry schedule; soft degrades
	// failures to empty results for migration, reads and the push loop.
	raw  remote.Store
	soft remote.Store

	cache *ReadCache
	log   logging.Logger
	cfg   Config

	// nextID produces local record ids. Swappable in tests.
	nextID func() (int64, error)

	// mu serializes read-modify-write cycles on collection snapshots.
	mu sync.Mutex

	available atomic.Bool
	migrated  atomic.Bool

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New builds an engine. The raw store may be nil when no remote is
// configured; the engine then works purely locally and the monitor loop
// stays off.
func New(local *localstore.Store, raw remote.Store, cfg Config, log logging.Logger) *Engine {
	e := &Engine{
		local:  local,
		raw:    raw,
		cache:  NewReadCache(),
		log:    log.With("component", "syncer"),
		cfg:    cfg,
		nextID: idgen.NextID,
	}
	if raw != nil {
		e.soft = remote.NewFailSoft(raw, log)
	}
	return e
}

// Available reports whether the remote store answered a probe this session.
func (e *Engine) Available() bool {
	return e.available.Load()
}

// Start probes the remote, runs the startup migration when it is reachable
// and launches the background workers. It returns once the probe phase is
// over; migration runs before return so the first read sees migrated data.
func (e *Engine) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.cancel = cancel
	e.started = true

	if e.raw == nil {
		e.log.Info(ctx, "no remote configured, running local-only")
		return nil
	}

	if e.probe(ctx) {
		e.goOnline(ctx)
	} else {
		e.log.Warn(ctx, "remote unavailable, starting offline")
	}

	e.wg.Add(1)
	go e.runMonitor(runCtx)
	return nil
}

// Close stops the background workers and waits for them to finish.
func (e *Engine) Close() {
	if !e.started {
		return
	}
	e.cancel()
	e.wg.Wait()
}

// probe pings the remote up to cfg.ProbeAttempts times. The whole phase is
// bounded by attempts*(timeout+interval), a few seconds with defaults.
func (e *Engine) probe(ctx context.Context) bool {
	for i := 0; i < e.cfg.ProbeAttempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, e.cfg.ProbeTimeout)
		err := e.raw.Ping(pingCtx)
		cancel()
		if err == nil {
			return true
		}
		e.log.Debug(ctx, "remote probe failed", "attempt", i+1, "error", err)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(e.cfg.ProbeInterval):
		}
	}
	return false
}

// goOnline flips the engine to available and runs the startup migration.
// Availability never flips back within a session; individual remote failures
// are absorbed by retries and the fail-soft wrapper instead. A failed
// migration clears the flag so the monitor loop tries again.
func (e *Engine) goOnline(ctx context.Context) {
	if e.available.CompareAndSwap(false, true) {
		e.log.Info(ctx, "remote available")
	}

	if e.migrated.CompareAndSwap(false, true) {
		if err := e.migrate(ctx); err != nil {
			e.migrated.Store(false)
			e.log.Error(ctx, "startup migration failed", "error", err)
		}
	}
}

// runMonitor re-probes an offline remote and upgrades the engine when it
// comes back. Once online it drives the outbox and push schedules.
func (e *Engine) runMonitor(ctx context.Context) {
	defer e.wg.Done()

	monitor := time.NewTicker(e.cfg.MonitorInterval)
	outbox := time.NewTicker(e.cfg.OutboxInterval)
	push := time.NewTicker(e.cfg.PushInterval)
	defer monitor.Stop()
	defer outbox.Stop()
	defer push.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-monitor.C:
			if e.Available() {
				// Already online; retry migration if a previous run failed.
				if !e.migrated.Load() {
					e.goOnline(ctx)
				}
				continue
			}
			pingCtx, cancel := context.WithTimeout(ctx, e.cfg.ProbeTimeout)
			err := e.raw.Ping(pingCtx)
			cancel()
			if err == nil {
				e.goOnline(ctx)
			}
		case <-outbox.C:
			if !e.Available() {
				continue
			}
			if err := e.drainOutbox(ctx); err != nil {
				e.log.Warn(ctx, "outbox drain incomplete", "error", err)
			}
		case <-push.C:
			if !e.Available() {
				continue
			}
			e.pushMissing(ctx)
		}
	}
}
