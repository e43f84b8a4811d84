// Package sync reconciles locally queued work with the remote service.
// The action queue and the capture collection are drained independently,
// each behind its own single-flight gate.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/iudanet/cropaid/internal/client/connectivity"
	"github.com/iudanet/cropaid/internal/client/events"
	"github.com/iudanet/cropaid/internal/client/storage"
	"github.com/iudanet/cropaid/internal/models"
)

// CaptureSource is the part of the capture store the reconciler drives
type CaptureSource interface {
	GetUnsyncedCaptures(ctx context.Context) ([]*models.CaptureRecord, error)
	MarkSynced(ctx context.Context, ref models.CaptureRef) error
	RecordSyncFailure(ctx context.Context, ref models.CaptureRef) error
	Notify(name events.Name, data map[string]any)
}

const (
	stateIdle int32 = iota
	stateDraining
)

// gate is an idle/draining state machine. Only the goroutine that moved it
// to draining may move it back.
type gate struct {
	state atomic.Int32
}

func (g *gate) enter() bool {
	return g.state.CompareAndSwap(stateIdle, stateDraining)
}

func (g *gate) leave() {
	g.state.Store(stateIdle)
}

// DrainResult summarizes one drain pass
type DrainResult struct {
	Total     int  // размер пакета на момент начала
	Succeeded int  // отправлено и удалено/отмечено
	Failed    int  // оставлено до следующего запуска
	Dropped   int  // неизвестный тип действия
	Abandoned int  // достигнут лимит попыток
	Skipped   bool // другой проход уже выполняется или нет сети
}

// Config holds reconciler settings
type Config struct {
	// MaxAttempts moves a queue entry to abandoned after that many failures. 0 means unlimited.
	MaxAttempts int
}

// Reconciler drains the action queue and the capture collection
type Reconciler struct {
	queue      storage.QueueStorage
	captures   CaptureSource
	dispatcher Dispatcher
	uploader   Uploader
	online     func() bool
	events     *events.Bus
	logger     *slog.Logger
	cfg        Config

	queueGate   gate
	captureGate gate

	// mu упорядочивает wg.Add в слушателе относительно Wait и Stop
	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// NewReconciler creates a reconciler. online may be nil, meaning always online;
// captures or uploader may be nil to disable the capture drain.
func NewReconciler(
	queue storage.QueueStorage,
	captures CaptureSource,
	dispatcher Dispatcher,
	uploader Uploader,
	online func() bool,
	cfg Config,
	logger *slog.Logger,
) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if online == nil {
		online = func() bool { return true }
	}
	return &Reconciler{
		queue:      queue,
		captures:   captures,
		dispatcher: dispatcher,
		uploader:   uploader,
		online:     online,
		events:     events.NewBus(logger),
		logger:     logger,
		cfg:        cfg,
	}
}

// Subscribe registers a listener for queue sync events
func (r *Reconciler) Subscribe(fn events.Listener) func() {
	return r.events.Subscribe(fn)
}

// DrainActionQueue sends every pending entry, in ID order, to the dispatcher.
// The batch is read once at the start. A successful entry is removed; a
// failed one gets its attempt counter bumped and the drain moves on.
// A call made while another drain is running returns immediately with
// Skipped set.
func (r *Reconciler) DrainActionQueue(ctx context.Context) (DrainResult, error) {
	if !r.online() {
		r.logger.Debug("Offline, action queue drain skipped")
		return DrainResult{Skipped: true}, nil
	}
	if !r.queueGate.enter() {
		r.logger.Debug("Action queue drain already in progress")
		return DrainResult{Skipped: true}, nil
	}
	defer r.queueGate.leave()

	entries, err := r.queue.ListPending(ctx)
	if err != nil {
		return DrainResult{}, fmt.Errorf("failed to list pending actions: %w", err)
	}

	result := DrainResult{Total: len(entries)}
	if len(entries) == 0 {
		return result, nil
	}

	r.logger.Info("Draining action queue", "count", len(entries))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		r.process(ctx, entry, &result)
	}

	r.logger.Info("Action queue drain finished",
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"dropped", result.Dropped,
		"abandoned", result.Abandoned)

	if result.Succeeded > 0 {
		r.events.Publish(events.QueueSyncComplete, map[string]any{
			"synced": result.Succeeded,
			"failed": result.Failed,
		})
	}

	return result, nil
}

func (r *Reconciler) process(ctx context.Context, entry *models.QueueEntry, result *DrainResult) {
	err := r.dispatcher.Dispatch(ctx, entry)
	switch {
	case err == nil:
		result.Succeeded++
		if rmErr := r.queue.Remove(ctx, entry.ID); rmErr != nil {
			// запись будет отправлена повторно при следующем проходе
			r.logger.Error("Failed to remove synced action", "entry_id", entry.ID, "error", rmErr)
		}
		r.logger.Debug("Action synced", "entry_id", entry.ID, "type", entry.Type)

	case errors.Is(err, ErrUnknownAction):
		result.Dropped++
		r.logger.Warn("Dropping action of unknown type", "entry_id", entry.ID, "type", entry.Type)
		if rmErr := r.queue.Remove(ctx, entry.ID); rmErr != nil {
			r.logger.Error("Failed to remove action", "entry_id", entry.ID, "error", rmErr)
		}

	default:
		result.Failed++
		r.logger.Warn("Action sync failed", "entry_id", entry.ID, "type", entry.Type, "error", err)
		updated, mfErr := r.queue.MarkFailed(ctx, entry.ID, r.cfg.MaxAttempts)
		if mfErr != nil {
			r.logger.Error("Failed to record failed attempt", "entry_id", entry.ID, "error", mfErr)
			return
		}
		if updated.Status == models.QueueStatusAbandoned {
			result.Abandoned++
			r.logger.Warn("Action abandoned", "entry_id", entry.ID, "attempts", updated.Attempts)
		}
	}
}

// DrainCaptures uploads every unsynced capture. Failures are counted on the
// record and left for the next trigger. Lifecycle events go to the capture
// store's listeners.
func (r *Reconciler) DrainCaptures(ctx context.Context) (DrainResult, error) {
	if r.captures == nil || r.uploader == nil {
		return DrainResult{Skipped: true}, nil
	}
	if !r.online() {
		r.logger.Debug("Offline, capture drain skipped")
		return DrainResult{Skipped: true}, nil
	}
	if !r.captureGate.enter() {
		r.logger.Debug("Capture drain already in progress")
		return DrainResult{Skipped: true}, nil
	}
	defer r.captureGate.leave()

	records, err := r.captures.GetUnsyncedCaptures(ctx)
	if err != nil {
		r.captures.Notify(events.SyncError, map[string]any{"error": err.Error()})
		return DrainResult{}, fmt.Errorf("failed to get unsynced captures: %w", err)
	}

	result := DrainResult{Total: len(records)}
	if len(records) == 0 {
		return result, nil
	}

	r.captures.Notify(events.SyncStarted, map[string]any{"total": len(records)})

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		ref := record.Ref()
		if err := r.uploader.UploadCapture(ctx, record); err != nil {
			result.Failed++
			r.logger.Warn("Capture upload failed", "capture", ref.String(), "error", err)
			if incErr := r.captures.RecordSyncFailure(ctx, ref); incErr != nil {
				r.logger.Error("Failed to record capture attempt", "capture", ref.String(), "error", incErr)
			}
			continue
		}

		if err := r.captures.MarkSynced(ctx, ref); err != nil {
			// загружено, но не отмечено: следующий проход повторит загрузку
			result.Failed++
			r.logger.Error("Failed to mark capture synced", "capture", ref.String(), "error", err)
			continue
		}

		result.Succeeded++
		r.captures.Notify(events.SyncProgress, map[string]any{
			"synced": result.Succeeded,
			"total":  len(records),
		})
	}

	r.logger.Info("Capture drain finished", "synced", result.Succeeded, "failed", result.Failed)
	r.captures.Notify(events.SyncCompleted, map[string]any{
		"synced": result.Succeeded,
		"failed": result.Failed,
	})

	return result, nil
}

// SyncAll runs the action queue drain and then the capture drain
func (r *Reconciler) SyncAll(ctx context.Context) error {
	_, qErr := r.DrainActionQueue(ctx)
	_, cErr := r.DrainCaptures(ctx)
	return errors.Join(qErr, cErr)
}

// Start performs one pass if the device is online at startup
func (r *Reconciler) Start(ctx context.Context) error {
	if !r.online() {
		return nil
	}
	return r.SyncAll(ctx)
}

// Attach triggers SyncAll in the background on every offline to online
// transition of monitor. Transitions seen after Stop are ignored.
// The returned function detaches the reconciler.
func (r *Reconciler) Attach(ctx context.Context, monitor *connectivity.Monitor) func() {
	return monitor.Subscribe(func(state connectivity.State) {
		if state != connectivity.Online {
			return
		}
		if !r.track() {
			r.logger.Debug("Reconciler stopped, reconnect ignored")
			return
		}
		go func() {
			defer r.wg.Done()
			if err := r.SyncAll(ctx); err != nil {
				r.logger.Error("Sync after reconnect failed", "error", err)
			}
		}()
	})
}

// track registers a background drain unless the reconciler is stopped
func (r *Reconciler) track() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return false
	}
	r.wg.Add(1)
	return true
}

// Wait blocks until background drains started by Attach have finished.
// Reconnects arriving meanwhile are held until it returns.
func (r *Reconciler) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wg.Wait()
}

// Stop makes later reconnects a no-op and waits for running drains
func (r *Reconciler) Stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()
	r.Wait()
}
