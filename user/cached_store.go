package user

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/madkins23/mongo-users/cache"
)

// DefaultCacheTTL is used by NewCachedStore when no time to live is given.
var DefaultCacheTTL = 5 * time.Minute

var _ Store = &CachedStore{}

// CachedStore puts a read-through cache in front of another Store.
// Found records are cached as extended JSON under both their GUID and email keys,
// updates and deletes drop both entries. Cache failures are logged and otherwise ignored.
type CachedStore struct {
	Store
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedStore(store Store, c cache.Cache, ttl time.Duration, logger *zap.Logger) *CachedStore {
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedStore{Store: store, cache: c, ttl: ttl, logger: logger}
}

func cacheKey(key Key) string {
	return "user:" + key.String()
}

func (cs *CachedStore) Find(ctx context.Context, key Key) (*Record, error) {
	if rec := cs.cached(ctx, key); rec != nil {
		return rec, nil
	}

	rec, err := cs.Store.Find(ctx, key)
	if err != nil {
		return nil, err
	}

	data, err := bson.MarshalExtJSON(rec, true, false)
	if err != nil {
		cs.logger.Warn("Encode cached user", zap.String("guid", rec.Token), zap.Error(err))
		return rec, nil
	}
	for _, k := range []Key{ByGUID(rec.Token), ByEmail(rec.Email)} {
		if err := cs.cache.Set(ctx, cacheKey(k), data, cs.ttl); err != nil {
			cs.logger.Warn("Cache user", zap.Stringer("key", k), zap.Error(err))
		}
	}
	return rec, nil
}

func (cs *CachedStore) Update(ctx context.Context, guid string, upd Update, at time.Time) (UpdateCount, error) {
	cs.invalidate(ctx, ByGUID(guid))
	return cs.Store.Update(ctx, guid, upd, at)
}

func (cs *CachedStore) Delete(ctx context.Context, key Key) error {
	cs.invalidate(ctx, key)
	return cs.Store.Delete(ctx, key)
}

func (cs *CachedStore) cached(ctx context.Context, key Key) *Record {
	data, err := cs.cache.Get(ctx, cacheKey(key))
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			cs.logger.Warn("Read cached user", zap.Stringer("key", key), zap.Error(err))
		}
		return nil
	}
	rec := new(Record)
	if err := bson.UnmarshalExtJSON(data, true, rec); err != nil {
		cs.logger.Warn("Decode cached user", zap.Stringer("key", key), zap.Error(err))
		return nil
	}
	return rec
}

// invalidate drops the entry for the key and, through the cached record, its twin entry.
func (cs *CachedStore) invalidate(ctx context.Context, key Key) {
	keys := []string{cacheKey(key)}
	if rec := cs.cached(ctx, key); rec != nil {
		keys = append(keys, cacheKey(ByGUID(rec.Token)), cacheKey(ByEmail(rec.Email)))
	}
	if err := cs.cache.Delete(ctx, keys...); err != nil {
		cs.logger.Warn("Invalidate cached user", zap.Stringer("key", key), zap.Error(err))
	}
}
