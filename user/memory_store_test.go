package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madkins23/mongo-users/mdbid"
)

func newStoredRecord(username, email string) *Record {
	rec := &Record{Username: username, Password: "hash", Email: email}
	rec.AssignGUID()
	return rec
}

func TestMemoryStoreInsertFind(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rec := newStoredRecord("mshallop", "mshallop@linux.com")
	id, err := store.Insert(ctx, rec)
	require.NoError(t, err)
	assert.NotNil(t, id)
	assert.True(t, rec.ID().IsZero(), "caller's record is not changed")

	found, err := store.Find(ctx, ByGUID(rec.Token))
	require.NoError(t, err)
	assert.Equal(t, id, found.ID())
	assert.Equal(t, "mshallop", found.Username)

	found.Username = "changed"
	again, err := store.Find(ctx, ByEmail("mshallop@linux.com"))
	require.NoError(t, err)
	assert.Equal(t, "mshallop", again.Username, "found records are copies")

	_, err = store.Find(ctx, ByEmail("nobody@linux.com"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	first := newStoredRecord("mshallop", "mshallop@linux.com")
	_, err := store.Insert(ctx, first)
	require.NoError(t, err)

	sameGUID := newStoredRecord("other", "other@linux.com")
	sameGUID.Token = first.Token
	for _, rec := range []*Record{
		sameGUID,
		newStoredRecord("mshallop", "other@linux.com"),
		newStoredRecord("other", "mshallop@linux.com"),
	} {
		_, err := store.Insert(ctx, rec)
		assert.ErrorIs(t, err, ErrDuplicate)
	}
	assert.Equal(t, 1, store.Len())

	_, err = store.Insert(ctx, &Record{Username: "noguid", Email: "noguid@linux.com"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMemoryStoreInsertMany(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	inserted, err := store.InsertMany(ctx, []*Record{
		newStoredRecord("one", "one@linux.com"),
		newStoredRecord("two", "one@linux.com"),
		newStoredRecord("three", "three@linux.com"),
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, 2, inserted)
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStoreExists(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_, err := store.Insert(ctx, newStoredRecord("mshallop", "mshallop@linux.com"))
	require.NoError(t, err)
	for _, check := range []struct {
		username, email string
		exists          bool
	}{
		{"mshallop", "x@linux.com", true},
		{"x", "mshallop@linux.com", true},
		{"x", "x@linux.com", false},
	} {
		exists, err := store.Exists(ctx, check.username, check.email)
		require.NoError(t, err)
		assert.Equal(t, check.exists, exists, "%s/%s", check.username, check.email)
	}
}

func TestMemoryStoreUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rec := newStoredRecord("mshallop", "mshallop@linux.com")
	_, err := store.Insert(ctx, rec)
	require.NoError(t, err)
	other := newStoredRecord("other", "other@linux.com")
	_, err = store.Insert(ctx, other)
	require.NoError(t, err)

	at := time.Now()
	name := "Sterling Archer"
	count, err := store.Update(ctx, rec.Token, Update{FullName: &name}, at)
	require.NoError(t, err)
	assert.Equal(t, UpdateCount{Matched: 1, Modified: 1}, count)
	found, err := store.Find(ctx, ByGUID(rec.Token))
	require.NoError(t, err)
	assert.Equal(t, name, found.FullName)
	assert.Equal(t, at, found.LastUpdated)

	_, err = store.Update(ctx, mdbid.NewGUID(), Update{FullName: &name}, at)
	assert.ErrorIs(t, err, ErrNotFound)

	taken := "other@linux.com"
	_, err = store.Update(ctx, rec.Token, Update{Email: &taken}, at)
	assert.ErrorIs(t, err, ErrDuplicate)

	// Setting the current email is not a conflict with itself.
	same := "mshallop@linux.com"
	_, err = store.Update(ctx, rec.Token, Update{Email: &same}, at.Add(time.Second))
	assert.NoError(t, err)
}

func TestMemoryStoreDeleteClose(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	rec := newStoredRecord("mshallop", "mshallop@linux.com")
	_, err := store.Insert(ctx, rec)
	require.NoError(t, err)

	assert.ErrorIs(t, store.Delete(ctx, ByEmail("nobody@linux.com")), ErrNotFound)
	assert.NoError(t, store.Delete(ctx, ByEmail("mshallop@linux.com")))
	assert.ErrorIs(t, store.Delete(ctx, ByGUID(rec.Token)), ErrNotFound)

	require.NoError(t, store.Close(ctx))
	_, err = store.Find(ctx, ByGUID(rec.Token))
	assert.ErrorIs(t, err, ErrConnection)
	_, err = store.Insert(ctx, newStoredRecord("late", "late@linux.com"))
	assert.ErrorIs(t, err, ErrConnection)
}
