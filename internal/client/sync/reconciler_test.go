package sync

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cropaid/internal/client/capture"
	"github.com/iudanet/cropaid/internal/client/connectivity"
	"github.com/iudanet/cropaid/internal/client/events"
	"github.com/iudanet/cropaid/internal/client/storage"
	"github.com/iudanet/cropaid/internal/client/storage/boltdb"
	"github.com/iudanet/cropaid/internal/client/storage/fallback"
	"github.com/iudanet/cropaid/internal/models"
)

func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError,
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func newTestStorage(t *testing.T) *boltdb.Storage {
	t.Helper()
	st, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func enqueueTasks(t *testing.T, st storage.QueueStorage, titles ...string) []*models.QueueEntry {
	t.Helper()
	entries := make([]*models.QueueEntry, 0, len(titles))
	for _, title := range titles {
		entry, err := st.Enqueue(context.Background(), models.ActionCreateTask, map[string]any{"title": title})
		require.NoError(t, err)
		entries = append(entries, entry)
	}
	return entries
}

func countEvents(r *Reconciler, name events.Name) *atomic.Int32 {
	var n atomic.Int32
	r.Subscribe(func(e events.Event) {
		if e.Name == name {
			n.Add(1)
		}
	})
	return &n
}

func TestRegistry_Dispatch(t *testing.T) {
	reg := NewRegistry()

	var got map[string]any
	reg.Register(models.ActionCreatePost, func(ctx context.Context, payload map[string]any) error {
		got = payload
		return nil
	})

	err := reg.Dispatch(context.Background(), &models.QueueEntry{
		Type:    models.ActionCreatePost,
		Payload: map[string]any{"title": "Leaf spots"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Leaf spots", got["title"])

	err = reg.Dispatch(context.Background(), &models.QueueEntry{Type: "LIKE_POST"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestDrainActionQueue_AllSucceed(t *testing.T) {
	ctx := context.Background()
	st := newTestStorage(t)
	enqueueTasks(t, st, "A", "B", "C")

	dispatcher := &DispatcherMock{
		DispatchFunc: func(ctx context.Context, entry *models.QueueEntry) error { return nil },
	}
	r := NewReconciler(st, nil, dispatcher, nil, nil, Config{}, setupTestLogger())
	completed := countEvents(r, events.QueueSyncComplete)

	result, err := r.DrainActionQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, DrainResult{Total: 3, Succeeded: 3}, result)

	pending, err := st.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	calls := dispatcher.DispatchCalls()
	require.Len(t, calls, 3)
	for i, title := range []string{"A", "B", "C"} {
		assert.Equal(t, title, calls[i].Entry.PayloadString("title"))
	}
	assert.Equal(t, int32(1), completed.Load())
}

func TestDrainActionQueue_OneFailure(t *testing.T) {
	ctx := context.Background()
	st := newTestStorage(t)
	entries := enqueueTasks(t, st, "A", "B", "C", "D")

	dispatcher := &DispatcherMock{
		DispatchFunc: func(ctx context.Context, entry *models.QueueEntry) error {
			if entry.ID == entries[1].ID {
				return errors.New("connection reset")
			}
			return nil
		},
	}
	r := NewReconciler(st, nil, dispatcher, nil, nil, Config{}, setupTestLogger())

	result, err := r.DrainActionQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Succeeded)
	assert.Equal(t, 1, result.Failed)

	pending, err := st.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, entries[1].ID, pending[0].ID)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, models.QueueStatusFailed, pending[0].Status)
}

func TestDrainActionQueue_NoSuccessNoSignal(t *testing.T) {
	st := newTestStorage(t)
	enqueueTasks(t, st, "A")

	dispatcher := &DispatcherMock{
		DispatchFunc: func(ctx context.Context, entry *models.QueueEntry) error {
			return errors.New("timeout")
		},
	}
	r := NewReconciler(st, nil, dispatcher, nil, nil, Config{}, setupTestLogger())
	completed := countEvents(r, events.QueueSyncComplete)

	_, err := r.DrainActionQueue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, completed.Load())

	// пустая очередь тоже не дает сигнала
	empty := NewReconciler(newTestStorage(t), nil, dispatcher, nil, nil, Config{}, setupTestLogger())
	emptyCompleted := countEvents(empty, events.QueueSyncComplete)
	result, err := empty.DrainActionQueue(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Total)
	assert.Zero(t, emptyCompleted.Load())
}

func TestDrainActionQueue_SingleFlight(t *testing.T) {
	ctx := context.Background()
	st := newTestStorage(t)
	enqueueTasks(t, st, "A", "B", "C")

	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	dispatcher := &DispatcherMock{
		DispatchFunc: func(ctx context.Context, entry *models.QueueEntry) error {
			once.Do(func() {
				close(started)
				<-release
			})
			return nil
		},
	}
	r := NewReconciler(st, nil, dispatcher, nil, nil, Config{}, setupTestLogger())

	done := make(chan DrainResult)
	go func() {
		result, err := r.DrainActionQueue(ctx)
		assert.NoError(t, err)
		done <- result
	}()

	<-started
	second, err := r.DrainActionQueue(ctx)
	require.NoError(t, err)
	assert.True(t, second.Skipped)

	close(release)
	first := <-done
	assert.Equal(t, 3, first.Succeeded)
	assert.Len(t, dispatcher.DispatchCalls(), 3)

	// после завершения гейт снова открыт
	third, err := r.DrainActionQueue(ctx)
	require.NoError(t, err)
	assert.False(t, third.Skipped)
}

func TestDrainActionQueue_UnknownActionDropped(t *testing.T) {
	ctx := context.Background()
	st := newTestStorage(t)

	_, err := st.Enqueue(ctx, "SHARE_POST", nil)
	require.NoError(t, err)
	enqueueTasks(t, st, "A")

	reg := NewRegistry()
	reg.Register(models.ActionCreateTask, func(context.Context, map[string]any) error { return nil })

	r := NewReconciler(st, nil, reg, nil, nil, Config{}, setupTestLogger())
	result, err := r.DrainActionQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Dropped)
	assert.Equal(t, 1, result.Succeeded)

	count, err := st.PendingCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDrainActionQueue_MaxAttempts(t *testing.T) {
	ctx := context.Background()
	st := newTestStorage(t)
	entries := enqueueTasks(t, st, "A")

	dispatcher := &DispatcherMock{
		DispatchFunc: func(ctx context.Context, entry *models.QueueEntry) error {
			return errors.New("validation failed")
		},
	}
	r := NewReconciler(st, nil, dispatcher, nil, nil, Config{MaxAttempts: 2}, setupTestLogger())

	result, err := r.DrainActionQueue(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Abandoned)

	result, err = r.DrainActionQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Abandoned)

	pending, err := st.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	abandoned, err := st.ListAbandoned(ctx)
	require.NoError(t, err)
	require.Len(t, abandoned, 1)
	assert.Equal(t, entries[0].ID, abandoned[0].ID)
	assert.Equal(t, 2, abandoned[0].Attempts)

	// брошенные записи больше не отправляются
	_, err = r.DrainActionQueue(ctx)
	require.NoError(t, err)
	assert.Len(t, dispatcher.DispatchCalls(), 2)
}

func TestDrainActionQueue_Offline(t *testing.T) {
	queue := &storage.QueueStorageMock{}
	r := NewReconciler(queue, nil, &DispatcherMock{}, nil, func() bool { return false }, Config{}, setupTestLogger())

	result, err := r.DrainActionQueue(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Empty(t, queue.ListPendingCalls())
}

func TestDrainActionQueue_StorageErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("list fails", func(t *testing.T) {
		queue := &storage.QueueStorageMock{
			ListPendingFunc: func(ctx context.Context) ([]*models.QueueEntry, error) {
				return nil, storage.ErrStorageClosed
			},
		}
		r := NewReconciler(queue, nil, &DispatcherMock{}, nil, nil, Config{}, setupTestLogger())

		_, err := r.DrainActionQueue(ctx)
		assert.ErrorIs(t, err, storage.ErrStorageClosed)

		// гейт освобожден после ошибки
		_, err = r.DrainActionQueue(ctx)
		assert.ErrorIs(t, err, storage.ErrStorageClosed)
		assert.Len(t, queue.ListPendingCalls(), 2)
	})

	t.Run("remove and mark fail", func(t *testing.T) {
		queue := &storage.QueueStorageMock{
			ListPendingFunc: func(ctx context.Context) ([]*models.QueueEntry, error) {
				return []*models.QueueEntry{{ID: 1}, {ID: 2}, {ID: 3}}, nil
			},
			RemoveFunc: func(ctx context.Context, id uint64) error {
				return errors.New("disk full")
			},
			MarkFailedFunc: func(ctx context.Context, id uint64, maxAttempts int) (*models.QueueEntry, error) {
				return nil, errors.New("disk full")
			},
		}
		dispatcher := &DispatcherMock{
			DispatchFunc: func(ctx context.Context, entry *models.QueueEntry) error {
				if entry.ID == 2 {
					return errors.New("refused")
				}
				return nil
			},
		}
		r := NewReconciler(queue, nil, dispatcher, nil, nil, Config{MaxAttempts: 5}, setupTestLogger())

		result, err := r.DrainActionQueue(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Succeeded)
		assert.Equal(t, 1, result.Failed)
		assert.Len(t, queue.RemoveCalls(), 2)
		require.Len(t, queue.MarkFailedCalls(), 1)
		assert.Equal(t, 5, queue.MarkFailedCalls()[0].MaxAttempts)
	})
}

func TestDrainActionQueue_ContextCanceled(t *testing.T) {
	st := newTestStorage(t)
	enqueueTasks(t, st, "A", "B")

	ctx, cancel := context.WithCancel(context.Background())
	dispatcher := &DispatcherMock{
		DispatchFunc: func(context.Context, *models.QueueEntry) error {
			cancel()
			return nil
		},
	}
	r := NewReconciler(st, nil, dispatcher, nil, nil, Config{}, setupTestLogger())

	_, err := r.DrainActionQueue(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, dispatcher.DispatchCalls(), 1)

	count, err := st.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func newCaptureStore(t *testing.T) *capture.Store {
	t.Helper()
	return capture.NewStore(newTestStorage(t), nil, setupTestLogger())
}

func TestDrainCaptures(t *testing.T) {
	ctx := context.Background()
	store := newCaptureStore(t)

	var refs []models.CaptureRef
	for _, payload := range []string{"a", "b", "c"} {
		ref, err := store.SaveCapture(ctx, &models.CaptureRecord{Payload: payload})
		require.NoError(t, err)
		refs = append(refs, ref)
	}

	var mu sync.Mutex
	var got []events.Event
	store.AddListener(func(e events.Event) {
		mu.Lock()
		defer mu.Unlock()
		if e.Name != events.CaptureSaved {
			got = append(got, e)
		}
	})

	uploader := &UploaderMock{
		UploadCaptureFunc: func(ctx context.Context, record *models.CaptureRecord) error {
			if record.Payload == "b" {
				return errors.New("503")
			}
			return nil
		},
	}
	r := NewReconciler(&storage.QueueStorageMock{}, store, &DispatcherMock{}, uploader, nil, Config{}, setupTestLogger())

	result, err := r.DrainCaptures(ctx)
	require.NoError(t, err)
	assert.Equal(t, DrainResult{Total: 3, Succeeded: 2, Failed: 1}, result)

	unsynced, err := store.GetUnsyncedCaptures(ctx)
	require.NoError(t, err)
	require.Len(t, unsynced, 1)
	assert.Equal(t, refs[1], unsynced[0].Ref())
	assert.Equal(t, 1, unsynced[0].SyncAttempts)

	names := make([]events.Name, 0, len(got))
	for _, e := range got {
		names = append(names, e.Name)
	}
	assert.Equal(t, []events.Name{
		events.SyncStarted,
		events.SyncProgress,
		events.SyncProgress,
		events.SyncCompleted,
	}, names)
	assert.Equal(t, 3, got[0].Data["total"])
	assert.Equal(t, 2, got[3].Data["synced"])

	// следующий проход отправляет только оставшуюся запись
	uploader.UploadCaptureFunc = func(ctx context.Context, record *models.CaptureRecord) error { return nil }
	result, err = r.DrainCaptures(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Len(t, uploader.UploadCaptureCalls(), 4)
}

func TestDrainCaptures_ClosedPrimary(t *testing.T) {
	ctx := context.Background()
	primary := newTestStorage(t)
	fb, err := fallback.New(filepath.Join(t.TempDir(), "captures.jsonl"))
	require.NoError(t, err)
	store := capture.NewStore(primary, fb, setupTestLogger())

	require.NoError(t, primary.Close())
	ref, err := store.SaveCapture(ctx, &models.CaptureRecord{Payload: "offline"})
	require.NoError(t, err)
	require.Equal(t, models.OriginFallback, ref.Origin)

	uploader := &UploaderMock{
		UploadCaptureFunc: func(ctx context.Context, record *models.CaptureRecord) error { return nil },
	}
	r := NewReconciler(&storage.QueueStorageMock{}, store, &DispatcherMock{}, uploader, nil, Config{}, setupTestLogger())

	result, err := r.DrainCaptures(ctx)
	require.NoError(t, err)
	assert.Equal(t, DrainResult{Total: 1, Succeeded: 1}, result)
	require.Len(t, uploader.UploadCaptureCalls(), 1)
	assert.Equal(t, "offline", uploader.UploadCaptureCalls()[0].Record.Payload)

	rec, err := store.GetCapture(ctx, ref)
	require.NoError(t, err)
	assert.True(t, rec.Synced)
}

func TestDrainCaptures_Disabled(t *testing.T) {
	r := NewReconciler(&storage.QueueStorageMock{}, nil, &DispatcherMock{}, nil, nil, Config{}, setupTestLogger())

	result, err := r.DrainCaptures(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Skipped)
}

// Офлайн-устройство создает три задачи, затем появляется сеть:
// A и C доходят до сервера, B падает и остается в очереди.
func TestReconnectScenario(t *testing.T) {
	ctx := context.Background()
	st := newTestStorage(t)
	monitor := connectivity.NewMonitor(false, setupTestLogger())

	entries := enqueueTasks(t, st, "A", "B", "C")

	pending, err := st.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	for i, title := range []string{"A", "B", "C"} {
		assert.Equal(t, title, pending[i].PayloadString("title"))
	}

	reg := NewRegistry()
	var dispatched []string
	reg.Register(models.ActionCreateTask, func(ctx context.Context, payload map[string]any) error {
		title, _ := payload["title"].(string)
		dispatched = append(dispatched, title)
		if title == "B" {
			return errors.New("server unavailable")
		}
		return nil
	})

	r := NewReconciler(st, nil, reg, nil, monitor.IsOnline, Config{}, setupTestLogger())
	completed := countEvents(r, events.QueueSyncComplete)

	// офлайн: ручной запуск ничего не делает
	result, err := r.DrainActionQueue(ctx)
	require.NoError(t, err)
	assert.True(t, result.Skipped)

	detach := r.Attach(ctx, monitor)
	defer detach()

	monitor.Set(true)
	monitor.Set(true)
	r.Wait()

	assert.Equal(t, []string{"A", "B", "C"}, dispatched)

	pending, err = st.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, entries[1].ID, pending[0].ID)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, int32(1), completed.Load())
}

func TestStart(t *testing.T) {
	ctx := context.Background()
	st := newTestStorage(t)
	enqueueTasks(t, st, "A")

	dispatcher := &DispatcherMock{
		DispatchFunc: func(context.Context, *models.QueueEntry) error { return nil },
	}

	offline := NewReconciler(st, nil, dispatcher, nil, func() bool { return false }, Config{}, setupTestLogger())
	require.NoError(t, offline.Start(ctx))
	assert.Empty(t, dispatcher.DispatchCalls())

	online := NewReconciler(st, nil, dispatcher, nil, nil, Config{}, setupTestLogger())
	require.NoError(t, online.Start(ctx))
	assert.Len(t, dispatcher.DispatchCalls(), 1)
}

func TestAttach_IgnoresOffline(t *testing.T) {
	monitor := connectivity.NewMonitor(true, setupTestLogger())
	queue := &storage.QueueStorageMock{}
	r := NewReconciler(queue, nil, &DispatcherMock{}, nil, monitor.IsOnline, Config{}, setupTestLogger())

	detach := r.Attach(context.Background(), monitor)
	monitor.Set(false)
	r.Wait()
	detach()

	monitor.Set(true)
	r.Wait()

	assert.Empty(t, queue.ListPendingCalls())
}

func TestAttach_StoppedIgnoresReconnect(t *testing.T) {
	ctx := context.Background()
	st := newTestStorage(t)
	enqueueTasks(t, st, "A")

	monitor := connectivity.NewMonitor(false, setupTestLogger())
	dispatcher := &DispatcherMock{
		DispatchFunc: func(context.Context, *models.QueueEntry) error { return nil },
	}
	r := NewReconciler(st, nil, dispatcher, nil, monitor.IsOnline, Config{}, setupTestLogger())

	detach := r.Attach(ctx, monitor)
	defer detach()

	r.Stop()
	monitor.Set(true)
	r.Wait()

	assert.Empty(t, dispatcher.DispatchCalls())
	pending, err := st.ListPending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
