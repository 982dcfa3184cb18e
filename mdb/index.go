package mdb

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// IndexDescription names the ascending keys of an index and whether it is unique.
type IndexDescription struct {
	unique bool
	keys   []string
}

// NewIndexDescription creates a new index description.
func NewIndexDescription(unique bool, keys ...string) *IndexDescription {
	return &IndexDescription{
		unique: unique,
		keys:   keys,
	}
}

func (id *IndexDescription) AsBSON() bson.D {
	asBSON := bson.D{}
	for _, key := range id.keys {
		asBSON = append(asBSON, bson.E{Key: key, Value: 1})
	}
	return asBSON
}

// Name returns the name Mongo gives the index by default.
func (id *IndexDescription) Name() string {
	parts := make([]string, 0, len(id.keys))
	for _, key := range id.keys {
		parts = append(parts, key+"_1")
	}
	return strings.Join(parts, "_")
}

// Keys returns the indexed fields in order.
func (id *IndexDescription) Keys() []string {
	return append([]string(nil), id.keys...)
}

// Unique reports whether the index rejects duplicate keys.
func (id *IndexDescription) Unique() bool {
	return id.unique
}

// Finisher returns a function that can be used as a CollectionFinisher for creating this index.
func (id *IndexDescription) Finisher() CollectionFinisher {
	return func(access *Access, collection *Collection) error {
		return access.Index(collection, id)
	}
}

// Index creates the described index on the collection.
// Creating an index that already exists with the same options is not an error.
func (a *Access) Index(collection *Collection, description *IndexDescription) error {
	ctx, cancel := a.ContextWithTimeout(a.config.Timeout.Index)
	defer cancel()
	name, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    description.AsBSON(),
		Options: options.Index().SetUnique(description.unique),
	})
	if err != nil {
		return fmt.Errorf("create index on %v: %w", description.keys, err)
	}

	a.Logger().Debug("Index ready",
		zap.String("collection", collection.Name()), zap.String("index", name))

	return nil
}

type indexModel struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique bool   `bson:"unique"`
}

// IndexDescriptions returns descriptions of the indexes on the collection keyed by index name.
// Only ascending keys are described, other index kinds are skipped.
func (c *Collection) IndexDescriptions(ctx context.Context) (map[string]*IndexDescription, error) {
	ctx, cancel := c.ContextWithTimeout(ctx)
	defer cancel()
	cursor, err := c.Collection.Indexes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	var models []indexModel
	if err := cursor.All(ctx, &models); err != nil {
		return nil, fmt.Errorf("read indexes: %w", err)
	}

	descriptions := make(map[string]*IndexDescription, len(models))
	for _, model := range models {
		if description, ok := describeIndex(model); ok {
			descriptions[model.Name] = description
		}
	}
	return descriptions, nil
}

func describeIndex(model indexModel) (*IndexDescription, bool) {
	keys := make([]string, 0, len(model.Key))
	for _, elem := range model.Key {
		switch direction := elem.Value.(type) {
		case int32:
			if direction != 1 {
				return nil, false
			}
		case int64:
			if direction != 1 {
				return nil, false
			}
		case float64:
			if direction != 1 {
				return nil, false
			}
		default:
			return nil, false
		}
		keys = append(keys, elem.Key)
	}
	return NewIndexDescription(model.Unique, keys...), true
}
