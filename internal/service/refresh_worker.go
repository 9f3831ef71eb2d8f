package service

import (
	"context"
	"sync"
	"time"

	"github.com/dafibh/fieldops/fieldops-backend/internal/domain"
	"github.com/dafibh/fieldops/fieldops-backend/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RefreshWorker periodically recomputes every workspace's outstanding report and
// notifies connected clients when the figures move
type RefreshWorker struct {
	outstanding    *OutstandingService
	workspaceRepo  domain.WorkspaceRepository
	eventPublisher websocket.EventPublisher
	logger         zerolog.Logger
	interval       time.Duration

	lastMu sync.Mutex
	last   map[int32]reportFingerprint
	// generation of the newest computation started per workspace
	gen map[int32]uint64

	// stopCh and doneCh belong to the current run and are replaced by Start
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

type reportFingerprint struct {
	grandTotal   decimal.Decimal
	projectCount int
}

// RefreshWorkerConfig holds configuration for the refresh worker
type RefreshWorkerConfig struct {
	Interval time.Duration
}

// DefaultRefreshWorkerConfig returns the production defaults
func DefaultRefreshWorkerConfig() RefreshWorkerConfig {
	return RefreshWorkerConfig{Interval: 15 * time.Minute}
}

// RefreshStats summarizes one pass over all workspaces
type RefreshStats struct {
	Workspaces int
	Changed    int
	Errors     int
}

// NewRefreshWorker creates a new refresh worker
func NewRefreshWorker(
	outstanding *OutstandingService,
	workspaceRepo domain.WorkspaceRepository,
	publisher websocket.EventPublisher,
	logger zerolog.Logger,
	config RefreshWorkerConfig,
) *RefreshWorker {
	if config.Interval <= 0 {
		config.Interval = DefaultRefreshWorkerConfig().Interval
	}
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}

	return &RefreshWorker{
		outstanding:    outstanding,
		workspaceRepo:  workspaceRepo,
		eventPublisher: publisher,
		logger:         logger.With().Str("component", "refresh_worker").Logger(),
		interval:       config.Interval,
		last:           make(map[int32]reportFingerprint),
		gen:            make(map[int32]uint64),
	}
}

// Start begins the background loop. Calling Start on a running worker is a no-op.
// A worker whose loop ended, through Stop or context cancellation, can be started again.
func (w *RefreshWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	// Fresh channels per run; the previous run closed its doneCh
	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	w.stopCh = stopCh
	w.doneCh = doneCh
	w.mu.Unlock()

	w.logger.Info().Dur("interval", w.interval).Msg("Starting refresh worker")

	go w.run(ctx, stopCh, doneCh)
}

// Stop signals the loop to exit and waits for it. Safe to call repeatedly.
func (w *RefreshWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping refresh worker")
	w.stopOnce(stopCh)
	<-doneCh
	w.logger.Info().Msg("Refresh worker stopped")
}

// stopOnce closes stopCh unless a concurrent Stop already did
func (w *RefreshWorker) stopOnce(stopCh chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-stopCh:
	default:
		close(stopCh)
	}
}

// IsRunning returns whether the worker loop is active
func (w *RefreshWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *RefreshWorker) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan struct{}) {
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(doneCh)
	}()

	w.refreshAll(ctx, stopCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			w.refreshAll(ctx, stopCh)
		}
	}
}

// RefreshAll recomputes every workspace's report once. A failing workspace is logged and skipped.
func (w *RefreshWorker) RefreshAll(ctx context.Context) RefreshStats {
	return w.refreshAll(ctx, nil)
}

func (w *RefreshWorker) refreshAll(ctx context.Context, stopCh <-chan struct{}) RefreshStats {
	start := time.Now()
	var stats RefreshStats

	workspaces, err := w.workspaceRepo.GetAllWorkspaces()
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to list workspaces for refresh")
		stats.Errors++
		return stats
	}

	for _, ws := range workspaces {
		select {
		case <-ctx.Done():
			return stats
		case <-stopCh:
			return stats
		default:
		}

		stats.Workspaces++
		changed, err := w.RefreshWorkspace(ctx, ws.ID)
		if err != nil {
			w.logger.Error().Err(err).Int32("workspace_id", ws.ID).Msg("Failed to refresh outstanding report")
			stats.Errors++
			continue
		}
		if changed {
			stats.Changed++
		}
	}

	w.logger.Info().
		Int("workspaces", stats.Workspaces).
		Int("changed", stats.Changed).
		Int("errors", stats.Errors).
		Dur("elapsed", time.Since(start)).
		Msg("Completed outstanding refresh")

	return stats
}

// RefreshWorkspace recomputes one workspace and publishes outstanding.refreshed when the
// grand total or project count differs from the previous run. The first observation only
// records a baseline. A result superseded by a newer refresh of the same workspace is discarded.
func (w *RefreshWorker) RefreshWorkspace(ctx context.Context, workspaceID int32) (bool, error) {
	w.lastMu.Lock()
	w.gen[workspaceID]++
	myGen := w.gen[workspaceID]
	w.lastMu.Unlock()

	report, err := w.outstanding.GetReport(ctx, workspaceID)
	if err != nil {
		return false, err
	}

	current := reportFingerprint{grandTotal: report.GrandTotal, projectCount: report.ProjectCount}

	w.lastMu.Lock()
	if w.gen[workspaceID] != myGen {
		w.lastMu.Unlock()
		w.logger.Debug().Int32("workspace_id", workspaceID).Msg("Discarding superseded outstanding refresh")
		return false, nil
	}
	previous, seen := w.last[workspaceID]
	w.last[workspaceID] = current
	w.lastMu.Unlock()

	if !seen || (previous.grandTotal.Equal(current.grandTotal) && previous.projectCount == current.projectCount) {
		return false, nil
	}

	w.eventPublisher.Publish(workspaceID, websocket.OutstandingRefreshed(map[string]interface{}{
		"grandTotal":         report.GrandTotal.StringFixed(2),
		"previousGrandTotal": previous.grandTotal.StringFixed(2),
		"projectCount":       report.ProjectCount,
		"generatedAt":        report.GeneratedAt.Format(time.RFC3339),
	}))

	w.logger.Debug().
		Int32("workspace_id", workspaceID).
		Str("grand_total", report.GrandTotal.StringFixed(2)).
		Int("project_count", report.ProjectCount).
		Msg("Outstanding report changed")

	return true, nil
}
