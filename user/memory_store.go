package user

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"
)

var _ Store = &MemoryStore{}

// MemoryStore keeps records in memory with the same uniqueness rules as the
// Mongo collection indexes. It is safe for concurrent use.
type MemoryStore struct {
	mutex   sync.Mutex
	records map[string]*Record
	closed  bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

var errStoreClosed = errors.New("store closed")

func (ms *MemoryStore) Insert(_ context.Context, rec *Record) (any, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	return ms.insert(rec)
}

func (ms *MemoryStore) InsertMany(_ context.Context, recs []*Record) (int, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	var errs []error
	inserted := 0
	for _, rec := range recs {
		if _, err := ms.insert(rec); err != nil {
			errs = append(errs, err)
			continue
		}
		inserted++
	}
	return inserted, errors.Join(errs...)
}

func (ms *MemoryStore) insert(rec *Record) (any, error) {
	if ms.closed {
		return nil, fmt.Errorf("%w: %w", ErrConnection, errStoreClosed)
	}
	if rec.Token == "" {
		return nil, fmt.Errorf("%w: record has no GUID", ErrValidation)
	}
	for _, existing := range ms.records {
		switch {
		case existing.Token == rec.Token:
			return nil, fmt.Errorf("%w: GUID %s", ErrDuplicate, rec.Token)
		case existing.Username == rec.Username:
			return nil, fmt.Errorf("%w: username %s", ErrDuplicate, rec.Username)
		case existing.Email == rec.Email:
			return nil, fmt.Errorf("%w: email %s", ErrDuplicate, rec.Email)
		}
	}
	stored := rec.Clone()
	id := stored.AssignOID()
	ms.records[stored.Token] = stored
	return id, nil
}

func (ms *MemoryStore) Exists(_ context.Context, username, email string) (bool, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	if ms.closed {
		return false, fmt.Errorf("%w: %w", ErrConnection, errStoreClosed)
	}
	for _, rec := range ms.records {
		if rec.Username == username || rec.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (ms *MemoryStore) Find(_ context.Context, key Key) (*Record, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	if ms.closed {
		return nil, fmt.Errorf("%w: %w", ErrConnection, errStoreClosed)
	}
	if rec := ms.lookup(key); rec != nil {
		return rec.Clone(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
}

func (ms *MemoryStore) Update(_ context.Context, guid string, upd Update, at time.Time) (UpdateCount, error) {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	if ms.closed {
		return UpdateCount{}, fmt.Errorf("%w: %w", ErrConnection, errStoreClosed)
	}
	rec, found := ms.records[guid]
	if !found {
		return UpdateCount{}, fmt.Errorf("%w: %s", ErrNotFound, ByGUID(guid))
	}
	if upd.Email != nil && *upd.Email != rec.Email {
		for _, other := range ms.records {
			if other.Email == *upd.Email {
				return UpdateCount{Matched: 1}, fmt.Errorf("%w: email %s", ErrDuplicate, *upd.Email)
			}
		}
	}

	changed := rec.Clone()
	upd.Apply(changed, at)
	modified := int64(0)
	if !reflect.DeepEqual(changed, rec) {
		modified = 1
	}
	ms.records[guid] = changed
	return UpdateCount{Matched: 1, Modified: modified}, nil
}

func (ms *MemoryStore) Delete(_ context.Context, key Key) error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	if ms.closed {
		return fmt.Errorf("%w: %w", ErrConnection, errStoreClosed)
	}
	rec := ms.lookup(key)
	if rec == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	delete(ms.records, rec.Token)
	return nil
}

func (ms *MemoryStore) Close(_ context.Context) error {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	ms.closed = true
	return nil
}

// Len returns the number of stored records.
func (ms *MemoryStore) Len() int {
	ms.mutex.Lock()
	defer ms.mutex.Unlock()
	return len(ms.records)
}

func (ms *MemoryStore) lookup(key Key) *Record {
	for _, rec := range ms.records {
		if key.Matches(rec) {
			return rec
		}
	}
	return nil
}
