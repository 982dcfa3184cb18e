package mdb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// TypedCollection decodes documents returned from Mongo into items of type T.
type TypedCollection[T any] struct {
	Collection
}

func NewTypedCollection[T any](collection *Collection) *TypedCollection[T] {
	return &TypedCollection[T]{
		Collection: *collection,
	}
}

// ConnectTypedCollection acquires the collection described by the definition as a TypedCollection.
func ConnectTypedCollection[T any](access *Access, definition *CollectionDefinition) (*TypedCollection[T], error) {
	collection, err := ConnectCollection(access, definition)
	if err != nil {
		return nil, err
	}
	return NewTypedCollection[T](collection), nil
}

// Find an item in the database.
func (c *TypedCollection[T]) Find(ctx context.Context, filter bson.D) (*T, error) {
	ctx, cancel := c.ContextWithTimeout(ctx)
	defer cancel()
	item := new(T)
	if err := c.FindOne(ctx, filter).Decode(item); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("no item '%v': %w", filter, err)
		}
		return nil, fmt.Errorf("find item '%v': %w", filter, err)
	}

	return item, nil
}

// Iterate over a set of items, applying the specified function to each one.
// Each call receives a freshly decoded item.
func (c *TypedCollection[T]) Iterate(ctx context.Context, filter bson.D, fn func(item *T) error) error {
	if ctx == nil {
		ctx = c.Access.Context()
	}
	cursor, err := c.Collection.Collection.Find(ctx, filterOrEmpty(filter))
	if err != nil {
		return fmt.Errorf("find items: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	for cursor.Next(ctx) {
		item := new(T)
		if err := cursor.Decode(item); err != nil {
			return fmt.Errorf("decode item: %w", err)
		}

		if err := fn(item); err != nil {
			return fmt.Errorf("apply function: %w", err)
		}
	}

	return cursor.Err()
}

// All returns every item matching the filter.
func (c *TypedCollection[T]) All(ctx context.Context, filter bson.D) ([]*T, error) {
	items := make([]*T, 0)
	err := c.Iterate(ctx, filter, func(item *T) error {
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
