package mdb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection wraps a Mongo collection together with the Access that acquired it.
type Collection struct {
	*Access
	*mongo.Collection
}

// ContextWithTimeout derives a context from ctx bounded by the collection timeout.
func (c *Collection) ContextWithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = c.Access.Context()
	}
	return context.WithTimeout(ctx, c.Access.config.Timeout.Collection)
}

// Count documents in collection matching filter.
func (c *Collection) Count(ctx context.Context, filter bson.D) (int64, error) {
	ctx, cancel := c.ContextWithTimeout(ctx)
	defer cancel()
	count, err := c.Collection.CountDocuments(ctx, filterOrEmpty(filter))
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}

	return count, nil
}

// Create item in DB, returning the ID assigned by the server.
func (c *Collection) Create(ctx context.Context, item interface{}) (interface{}, error) {
	ctx, cancel := c.ContextWithTimeout(ctx)
	defer cancel()
	result, err := c.InsertOne(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	return result.InsertedID, nil
}

// CreateMany items in DB with a single unordered insert.
// IDs of the items that were inserted are returned even when some of the items failed.
func (c *Collection) CreateMany(ctx context.Context, items []interface{}) ([]interface{}, error) {
	ctx, cancel := c.ContextWithTimeout(ctx)
	defer cancel()
	result, err := c.InsertMany(ctx, items, options.InsertMany().SetOrdered(false))
	var ids []interface{}
	if result != nil {
		ids = result.InsertedIDs
	}
	if err != nil {
		return ids, fmt.Errorf("insert items: %w", err)
	}

	return ids, nil
}

// ErrNoItemMatch is returned when a filter used to delete or update matched nothing.
var ErrNoItemMatch = errors.New("no matching item")

// Delete item from DB.
// Set idempotent to true to avoid errors if the item does not exist.
func (c *Collection) Delete(ctx context.Context, filter bson.D, idempotent bool) error {
	ctx, cancel := c.ContextWithTimeout(ctx)
	defer cancel()
	result, err := c.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if result.DeletedCount == 0 && !idempotent {
		return fmt.Errorf("delete '%v': %w", filter, ErrNoItemMatch)
	}

	return nil
}

// DeleteAll items from this collection.
func (c *Collection) DeleteAll(ctx context.Context) error {
	ctx, cancel := c.ContextWithTimeout(ctx)
	defer cancel()
	if _, err := c.DeleteMany(ctx, NoFilter()); err != nil {
		return fmt.Errorf("delete all: %w", err)
	}
	return nil
}

// Drop collection.
func (c *Collection) Drop(ctx context.Context) error {
	ctx, cancel := c.ContextWithTimeout(ctx)
	defer cancel()
	return c.Collection.Drop(ctx)
}

// Update the item referenced by filter by applying update operator expressions.
// If the filter matches more than one document Mongo will choose one to update.
// An update that matches an item without changing it is not an error,
// the result is returned so the caller can see the matched and modified counts.
func (c *Collection) Update(
	ctx context.Context, filter, operators interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	ctx, cancel := c.ContextWithTimeout(ctx)
	defer cancel()
	result, err := c.UpdateOne(ctx, filter, operators, opts...)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	} else if result.MatchedCount < 1 && result.UpsertedCount < 1 {
		return result, fmt.Errorf("update '%v': %w", filter, ErrNoItemMatch)
	}

	return result, nil
}

////////////////////////////////////////////////////////////////////////////////

// NoFilter returns an empty bson.D object for use as an empty filter.
func NoFilter() bson.D {
	return bson.D{}
}

func filterOrEmpty(filter bson.D) bson.D {
	if filter == nil {
		return NoFilter()
	}
	return filter
}
