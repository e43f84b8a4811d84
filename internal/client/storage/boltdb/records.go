package boltdb

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/iudanet/cropaid/internal/client/storage"
)

// indexedRecord is a JSON-serializable record with a store-assigned
// sequential ID and a single secondary index value.
type indexedRecord[T any] interface {
	*T
	RecordID() uint64
	SetRecordID(id uint64)
	IndexKey() string
}

// recordStore is the shared durable substrate for the action queue and the
// capture collection: records live in one bucket keyed by big-endian ID
// (so cursor order equals creation order) and a second bucket holds
// "<index value>\x00<id>" keys for status scans.
type recordStore[T any, P indexedRecord[T]] struct {
	s      *Storage
	bucket []byte
	index  []byte
}

func newRecordStore[T any, P indexedRecord[T]](s *Storage, bucket, index []byte) *recordStore[T, P] {
	return &recordStore[T, P]{s: s, bucket: bucket, index: index}
}

// itob encodes id as 8-byte big-endian key
func itob(id uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, id)
	return b
}

func indexKey(value string, id uint64) []byte {
	key := make([]byte, 0, len(value)+1+8)
	key = append(key, value...)
	key = append(key, 0)
	return append(key, itob(id)...)
}

func indexPrefix(value string) []byte {
	return append([]byte(value), 0)
}

func (r *recordStore[T, P]) view(fn func(data, idx *bbolt.Bucket) error) error {
	if r.s.db == nil {
		return storage.ErrStorageClosed
	}
	return r.s.db.View(func(tx *bbolt.Tx) error {
		data, idx := tx.Bucket(r.bucket), tx.Bucket(r.index)
		if data == nil || idx == nil {
			return fmt.Errorf("%s bucket not found", r.bucket)
		}
		return fn(data, idx)
	})
}

func (r *recordStore[T, P]) update(fn func(data, idx *bbolt.Bucket) error) error {
	if r.s.db == nil {
		return storage.ErrStorageClosed
	}
	return r.s.db.Update(func(tx *bbolt.Tx) error {
		data, idx := tx.Bucket(r.bucket), tx.Bucket(r.index)
		if data == nil || idx == nil {
			return fmt.Errorf("%s bucket not found", r.bucket)
		}
		return fn(data, idx)
	})
}

func decode[T any, P indexedRecord[T]](raw []byte) (P, error) {
	rec := P(new(T))
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return rec, nil
}

func (r *recordStore[T, P]) put(data, idx *bbolt.Bucket, rec P) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := data.Put(itob(rec.RecordID()), raw); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	if err := idx.Put(indexKey(rec.IndexKey(), rec.RecordID()), nil); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}
	return nil
}

// Add assigns the next sequence value as ID and stores the record and its
// index key in a single transaction.
func (r *recordStore[T, P]) Add(rec P) (uint64, error) {
	var id uint64
	err := r.update(func(data, idx *bbolt.Bucket) error {
		seq, err := data.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to allocate id: %w", err)
		}
		rec.SetRecordID(seq)
		if err := r.put(data, idx, rec); err != nil {
			return err
		}
		id = seq
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns storage.ErrRecordNotFound for unknown IDs.
func (r *recordStore[T, P]) Get(id uint64) (P, error) {
	var rec P
	err := r.view(func(data, _ *bbolt.Bucket) error {
		raw := data.Get(itob(id))
		if raw == nil {
			return storage.ErrRecordNotFound
		}
		var err error
		rec, err = decode[T, P](raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// All returns every record in ascending ID order.
func (r *recordStore[T, P]) All() ([]P, error) {
	var records []P
	err := r.view(func(data, _ *bbolt.Bucket) error {
		return data.ForEach(func(_, v []byte) error {
			rec, err := decode[T, P](v)
			if err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ByIndex returns records whose index value is one of values, in ascending ID order.
func (r *recordStore[T, P]) ByIndex(values ...string) ([]P, error) {
	var records []P
	err := r.view(func(data, idx *bbolt.Bucket) error {
		c := idx.Cursor()
		for _, value := range values {
			prefix := indexPrefix(value)
			for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
				raw := data.Get(k[len(prefix):])
				if raw == nil {
					// индекс без записи - пропускаем
					continue
				}
				rec, err := decode[T, P](raw)
				if err != nil {
					return err
				}
				records = append(records, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(values) > 1 {
		sort.Slice(records, func(i, j int) bool {
			return records[i].RecordID() < records[j].RecordID()
		})
	}
	return records, nil
}

// CountByIndex counts index keys for the given values without decoding records.
func (r *recordStore[T, P]) CountByIndex(values ...string) (int, error) {
	count := 0
	err := r.view(func(_, idx *bbolt.Bucket) error {
		c := idx.Cursor()
		for _, value := range values {
			prefix := indexPrefix(value)
			for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
				count++
			}
		}
		return nil
	})
	return count, err
}

// Update loads the record, applies fn and writes it back with a refreshed
// index key, all inside one transaction.
func (r *recordStore[T, P]) Update(id uint64, fn func(rec P) error) (P, error) {
	var rec P
	err := r.update(func(data, idx *bbolt.Bucket) error {
		raw := data.Get(itob(id))
		if raw == nil {
			return storage.ErrRecordNotFound
		}
		current, err := decode[T, P](raw)
		if err != nil {
			return err
		}

		oldKey := indexKey(current.IndexKey(), id)
		if err := fn(current); err != nil {
			return err
		}
		// ID не должен меняться внутри fn
		current.SetRecordID(id)

		if err := idx.Delete(oldKey); err != nil {
			return fmt.Errorf("failed to delete index: %w", err)
		}
		if err := r.put(data, idx, current); err != nil {
			return err
		}
		rec = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes the record and its index key. Unknown IDs are ignored.
func (r *recordStore[T, P]) Delete(id uint64) error {
	return r.update(func(data, idx *bbolt.Bucket) error {
		raw := data.Get(itob(id))
		if raw == nil {
			return nil
		}
		rec, err := decode[T, P](raw)
		if err != nil {
			return err
		}
		if err := idx.Delete(indexKey(rec.IndexKey(), id)); err != nil {
			return fmt.Errorf("failed to delete index: %w", err)
		}
		if err := data.Delete(itob(id)); err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}
		return nil
	})
}

// Clear removes all records and index keys. The ID sequence is preserved so
// IDs are never reused.
func (r *recordStore[T, P]) Clear() error {
	return r.update(func(data, idx *bbolt.Bucket) error {
		for _, b := range []*bbolt.Bucket{data, idx} {
			var keys [][]byte
			if err := b.ForEach(func(k, _ []byte) error {
				keys = append(keys, append([]byte(nil), k...))
				return nil
			}); err != nil {
				return err
			}
			for _, k := range keys {
				if err := b.Delete(k); err != nil {
					return fmt.Errorf("failed to clear %s: %w", r.bucket, err)
				}
			}
		}
		return nil
	})
}
