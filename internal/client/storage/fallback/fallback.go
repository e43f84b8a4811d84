// Package fallback implements the secondary capture store used when the
// primary bbolt write fails. Records are appended to a JSON-lines journal;
// deletes and sync marks are appended as separate operations and folded on
// read. There are no indexes: every query replays the whole journal.
package fallback

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/iudanet/cropaid/internal/client/storage"
	"github.com/iudanet/cropaid/internal/models"
)

type opKind string

const (
	opPut     opKind = "put"
	opDelete  opKind = "delete"
	opSynced  opKind = "synced"
	opAttempt opKind = "attempt"
	opClear   opKind = "clear"
)

// journalLine одна строка журнала
type journalLine struct {
	At     *time.Time            `json:"at,omitempty"`
	Record *models.CaptureRecord `json:"record,omitempty"`
	Op     opKind                `json:"op"`
	ID     uint64                `json:"id,omitempty"`
}

// Store is an append-only capture journal on the local file system
type Store struct {
	path   string
	mu     sync.Mutex
	nextID uint64
}

// Compile-time check that Store implements CaptureStorage
var _ storage.CaptureStorage = (*Store)(nil)

// New opens (or creates) the journal at path
func New(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create fallback dir: %w", err)
	}

	s := &Store{path: path, nextID: 1}

	// Восстанавливаем счетчик ID по существующему журналу
	lines, err := s.readLines()
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if line.Op == opPut && line.Record != nil && line.Record.ID >= s.nextID {
			s.nextID = line.Record.ID + 1
		}
	}

	return s, nil
}

// Path returns the journal location
func (s *Store) Path() string {
	return s.path
}

func (s *Store) append(line journalLine) error {
	data, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("failed to marshal journal line: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("failed to open fallback journal: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	// Если предыдущая запись оборвана, начинаем с новой строки,
	// иначе новая строка склеится с мусором и потеряется
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat fallback journal: %w", err)
	}
	if size := info.Size(); size > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, size-1); err != nil {
			return fmt.Errorf("failed to read fallback journal: %w", err)
		}
		if last[0] != '\n' {
			data = append([]byte{'\n'}, data...)
		}
	}

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to append to fallback journal: %w", err)
	}
	return nil
}

// readLines returns decodable journal lines. A torn last line from an
// interrupted write is skipped.
func (s *Store) readLines() ([]journalLine, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open fallback journal: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var lines []journalLine
	reader := bufio.NewReader(f)
	for {
		raw, err := reader.ReadBytes('\n')
		if len(raw) > 0 {
			var line journalLine
			if jerr := json.Unmarshal(raw, &line); jerr == nil {
				lines = append(lines, line)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read fallback journal: %w", err)
		}
	}
	return lines, nil
}

// fold replays the journal into the current set of records in ID order
func (s *Store) fold() ([]*models.CaptureRecord, error) {
	lines, err := s.readLines()
	if err != nil {
		return nil, err
	}

	byID := make(map[uint64]*models.CaptureRecord)
	var order []uint64

	for _, line := range lines {
		switch line.Op {
		case opPut:
			if line.Record == nil {
				continue
			}
			if _, ok := byID[line.Record.ID]; !ok {
				order = append(order, line.Record.ID)
			}
			byID[line.Record.ID] = line.Record
		case opDelete:
			delete(byID, line.ID)
		case opSynced:
			if rec, ok := byID[line.ID]; ok && line.At != nil {
				rec.MarkSynced(*line.At)
			}
		case opAttempt:
			if rec, ok := byID[line.ID]; ok {
				rec.SyncAttempts++
			}
		case opClear:
			byID = make(map[uint64]*models.CaptureRecord)
			order = nil
		}
	}

	records := make([]*models.CaptureRecord, 0, len(byID))
	seen := make(map[uint64]bool, len(order))
	for _, id := range order {
		if rec, ok := byID[id]; ok && !seen[id] {
			seen[id] = true
			records = append(records, rec)
		}
	}
	return records, nil
}

// AddCapture appends the record and assigns it the next journal ID
func (s *Store) AddCapture(ctx context.Context, record *models.CaptureRecord) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := *record
	rec.ID = s.nextID
	rec.Origin = models.OriginFallback

	if err := s.append(journalLine{Op: opPut, Record: &rec}); err != nil {
		return 0, err
	}

	s.nextID++
	record.ID = rec.ID
	record.Origin = rec.Origin
	return rec.ID, nil
}

// GetCapture retrieves a record by ID
func (s *Store) GetCapture(ctx context.Context, id uint64) (*models.CaptureRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.fold()
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, storage.ErrRecordNotFound
}

// GetAllCaptures returns every live record
func (s *Store) GetAllCaptures(ctx context.Context) ([]*models.CaptureRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.fold()
}

// GetUnsyncedCaptures filters live records by the synced flag (full scan)
func (s *Store) GetUnsyncedCaptures(ctx context.Context) ([]*models.CaptureRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.fold()
	if err != nil {
		return nil, err
	}

	unsynced := make([]*models.CaptureRecord, 0, len(records))
	for _, rec := range records {
		if !rec.Synced {
			unsynced = append(unsynced, rec)
		}
	}
	return unsynced, nil
}

// DeleteCapture appends a delete marker
func (s *Store) DeleteCapture(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.append(journalLine{Op: opDelete, ID: id})
}

// MarkCaptureSynced appends a sync marker; replay keeps the first one
func (s *Store) MarkCaptureSynced(ctx context.Context, id uint64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.append(journalLine{Op: opSynced, ID: id, At: &at})
}

// IncrementSyncAttempts appends an attempt marker
func (s *Store) IncrementSyncAttempts(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.append(journalLine{Op: opAttempt, ID: id})
}

// ClearCaptures appends a clear marker
func (s *Store) ClearCaptures(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.append(journalLine{Op: opClear})
}
