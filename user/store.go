package user

import (
	"context"
	"time"
)

// Store persists user records.
// Errors are classified with the package error kinds where possible.
type Store interface {
	// Insert adds a record and returns the storage ID assigned to it.
	// A record that shares a GUID, username or email with another fails with ErrDuplicate.
	Insert(ctx context.Context, rec *Record) (any, error)

	// InsertMany adds records independently of each other and returns how many were added.
	InsertMany(ctx context.Context, recs []*Record) (int, error)

	// Exists reports whether the username or the email is already in use.
	Exists(ctx context.Context, username, email string) (bool, error)

	// Find returns the record named by the key or ErrNotFound.
	Find(ctx context.Context, key Key) (*Record, error)

	// Update changes the record with the GUID, ErrNotFound when there is none.
	Update(ctx context.Context, guid string, upd Update, at time.Time) (UpdateCount, error)

	// Delete removes the record named by the key, ErrNotFound when there is none.
	Delete(ctx context.Context, key Key) error

	// Close releases the store.
	Close(ctx context.Context) error
}

// UpdateCount reports what an update touched.
type UpdateCount struct {
	Matched  int64
	Modified int64
}
