// Package cycle orchestrates the discover-query-render-reconcile loop and
// owns all state that survives between cycles.
package cycle

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"herald/internal/board"
	"herald/internal/discovery"
	"herald/internal/models"
)

// snapshotBuilder is the board snapshot pipeline as the runner consumes it.
type snapshotBuilder interface {
	Build(ctx context.Context, servers []models.ServerRef) []models.BoardItem
}

// historyRecorder receives one sample per rendered server per cycle.
type historyRecorder interface {
	RecordCycle(items []models.BoardItem) error
}

// Config wires a Runner.
type Config struct {
	Provider   discovery.Provider
	Builder    snapshotBuilder
	Surfaces   []board.Surface
	History    historyRecorder // optional
	OnSnapshot func([]models.BoardItem)
	Interval   time.Duration
	ClearLimit int
}

// Runner drives the update loop. It is the sole owner of the cross-cycle
// mutable state: the current server set and the per-surface slot lists. The
// re-entrancy guard serializes cycle bodies, so none of that state needs a
// lock.
type Runner struct {
	cfg     Config
	servers []models.ServerRef
	slots   map[string][]string
	running atomic.Bool
}

// New creates a runner with empty remembered state.
func New(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		slots: make(map[string][]string),
	}
}

// Initialize discovers the initial server set and clears recent messages on
// every surface, best-effort. A discovery failure is logged; the first cycle
// will retry it.
func (r *Runner) Initialize(ctx context.Context) {
	r.refresh(ctx)

	for _, s := range r.cfg.Surfaces {
		board.ClearRecent(s, r.cfg.ClearLimit)
	}
}

// Run executes one cycle immediately, then once per interval until the
// context is canceled.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	r.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce executes one cycle body unless the previous one is still running,
// in which case the invocation is skipped entirely. The guard is released in
// a defer so no failure inside the pipeline can wedge the loop.
func (r *Runner) RunOnce(ctx context.Context) {
	if !r.running.CompareAndSwap(false, true) {
		log.Warn().Msg("Previous cycle still running, skipping this tick")
		return
	}
	defer r.running.Store(false)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("Cycle failed")
		}
	}()

	start := time.Now()
	r.refresh(ctx)

	items := r.cfg.Builder.Build(ctx, r.servers)

	contents := make([]string, len(items))
	for i, item := range items {
		contents[i] = item.Content
	}

	// Surfaces are reconciled sequentially so a failing surface cannot
	// corrupt another surface's slot list.
	for _, s := range r.cfg.Surfaces {
		r.slots[s.ID()] = board.Reconcile(s, contents, r.slots[s.ID()])
	}

	if r.cfg.History != nil {
		if err := r.cfg.History.RecordCycle(items); err != nil {
			log.Error().Err(err).Msg("Failed to record history samples")
		}
	}

	if r.cfg.OnSnapshot != nil {
		r.cfg.OnSnapshot(items)
	}

	log.Info().
		Int("servers", len(r.servers)).
		Int("displayed", len(items)).
		Dur("duration", time.Since(start)).
		Msg("Cycle completed")
}

// refresh replaces the server set from the discovery provider. On failure
// the previous set is kept so the board can keep serving last-known-good
// data.
func (r *Runner) refresh(ctx context.Context) {
	servers, err := r.cfg.Provider.Servers(ctx)
	if err != nil {
		log.Error().Err(err).Int("previous", len(r.servers)).Msg("Discovery failed, keeping previous server set")
		return
	}

	r.servers = servers
}
