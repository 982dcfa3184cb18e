package mdb

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var errMissingCollectionName = errors.New("no collection name")

// CollectionFinisher configures a collection after it is acquired, usually by adding an index.
type CollectionFinisher func(access *Access, collection *Collection) error

// CollectionDefinition describes a collection to be acquired by ConnectCollection.
type CollectionDefinition struct {
	Name string

	// ValidationJSON is an extended JSON validator applied when the collection is created.
	ValidationJSON string

	Finishers []CollectionFinisher
}

// ConnectCollection acquires the collection described by the definition.
func ConnectCollection(access *Access, definition *CollectionDefinition) (*Collection, error) {
	collection, err := access.Collection(definition.Name, definition.ValidationJSON, definition.Finishers...)
	if err != nil {
		return nil, fmt.Errorf("collection %s: %w", definition.Name, err)
	}
	return collection, nil
}

// CollectionExists reports whether the database already has the named collection.
func (a *Access) CollectionExists(name string) (bool, error) {
	if name == "" {
		return false, errMissingCollectionName
	}

	ctx, cancel := a.ContextWithTimeout(a.config.Timeout.Collection)
	defer cancel()
	names, err := a.database.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return false, fmt.Errorf("list collection names: %w", err)
	}
	return len(names) > 0, nil
}

// Collection acquires the named collection, creating it with the validator if it does not exist.
// Finishers always run since a collection created by an earlier insert has no indexes yet.
func (a *Access) Collection(name string, validatorJSON string, finishers ...CollectionFinisher) (*Collection, error) {
	exists, err := a.CollectionExists(name)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := a.createCollection(name, validatorJSON); err != nil {
			return nil, err
		}
		a.Info("Created collection", zap.String("collection", name))
	}

	collection := &Collection{Access: a, Collection: a.database.Collection(name)}
	for i, finisher := range finishers {
		if err := finisher(a, collection); err != nil {
			return nil, fmt.Errorf("finisher %d: %w", i, err)
		}
	}
	return collection, nil
}

func (a *Access) createCollection(name string, validatorJSON string) error {
	opts := options.CreateCollection()
	if validatorJSON != "" {
		var validator bson.D
		if err := bson.UnmarshalExtJSON([]byte(validatorJSON), false, &validator); err != nil {
			return fmt.Errorf("parse validator: %w", err)
		}
		opts.SetValidator(validator)
	}

	ctx, cancel := a.ContextWithTimeout(a.config.Timeout.Collection)
	defer cancel()
	if err := a.database.CreateCollection(ctx, name, opts); err != nil {
		// Another process may have created it since the existence check.
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Name == "NamespaceExists" {
			return nil
		}
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}
