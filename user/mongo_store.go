package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/madkins23/mongo-users/mdb"
	"github.com/madkins23/mongo-users/mdbconf"
	"github.com/madkins23/mongo-users/mdbid"
	"github.com/madkins23/mongo-users/mdbson"
)

// UsersValidatorJSON is the schema validator applied when the users collection is created.
var UsersValidatorJSON = `{
	"$jsonSchema": {
		"bsonType": "object",
		"required": ["token", "username", "password", "email", "created"],
		"properties": {
			"token": {
				"bsonType": "string",
				"minLength": 36,
				"maxLength": 36
			},
			"username": {
				"bsonType": "string",
				"minLength": 1
			},
			"password": {
				"bsonType": "string"
			},
			"email": {
				"bsonType": "string",
				"minLength": 3
			},
			"flName": {
				"bsonType": "string"
			},
			"phones": {
				"bsonType": "object"
			},
			"created": {
				"bsonType": "date"
			},
			"last_updated": {
				"bsonType": "date"
			}
		}
	}
}`

// UsersIndexes are the unique indexes that back the duplicate checks.
func UsersIndexes() []*mdb.IndexDescription {
	return []*mdb.IndexDescription{
		mdb.NewIndexDescription(true, "email"),
		mdb.NewIndexDescription(true, "username"),
		mdb.NewIndexDescription(true, mdbid.GUIDField),
	}
}

// UsersCollection describes the named users collection with its validator and indexes.
func UsersCollection(name string) *mdb.CollectionDefinition {
	definition := &mdb.CollectionDefinition{
		Name:           name,
		ValidationJSON: UsersValidatorJSON,
	}
	for _, index := range UsersIndexes() {
		definition.Finishers = append(definition.Finishers, index.Finisher())
	}
	return definition
}

////////////////////////////////////////////////////////////////////////////////

var _ Store = &MongoStore{}

// MongoStore keeps records in a Mongo collection.
type MongoStore struct {
	access *mdb.Access
	users  *mdb.TypedCollection[Record]
}

// NewMongoStore acquires the users collection, creating it and its indexes as needed.
func NewMongoStore(access *mdb.Access, table string) (*MongoStore, error) {
	users, err := mdb.ConnectTypedCollection[Record](access, UsersCollection(table))
	if err != nil {
		return nil, classify(err)
	}
	return &MongoStore{access: access, users: users}, nil
}

// Collection returns the underlying users collection.
func (ms *MongoStore) Collection() *mdb.TypedCollection[Record] {
	return ms.users
}

func (ms *MongoStore) Insert(ctx context.Context, rec *Record) (any, error) {
	id, err := ms.users.Create(ctx, rec)
	if err != nil {
		return nil, classify(err)
	}
	return id, nil
}

func (ms *MongoStore) InsertMany(ctx context.Context, recs []*Record) (int, error) {
	items := make([]interface{}, len(recs))
	for i, rec := range recs {
		items[i] = rec
	}
	if _, err := ms.users.CreateMany(ctx, items); err != nil {
		var bulkErr mongo.BulkWriteException
		if errors.As(err, &bulkErr) {
			return len(recs) - len(bulkErr.WriteErrors), classify(err)
		}
		return 0, classify(err)
	}
	return len(recs), nil
}

func (ms *MongoStore) Exists(ctx context.Context, username, email string) (bool, error) {
	count, err := ms.users.Count(ctx, bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "username", Value: username}},
		bson.D{{Key: "email", Value: email}},
	}}})
	if err != nil {
		return false, classify(err)
	}
	return count > 0, nil
}

func (ms *MongoStore) Find(ctx context.Context, key Key) (*Record, error) {
	rec, err := ms.users.Find(ctx, key.Filter())
	if err != nil {
		return nil, classify(err)
	}
	return rec, nil
}

func (ms *MongoStore) Update(ctx context.Context, guid string, upd Update, at time.Time) (UpdateCount, error) {
	result, err := ms.users.Update(ctx, mdbid.GUIDFilter(guid), mdbson.Set(upd.Fields(at)))
	if err != nil {
		return UpdateCount{}, classify(err)
	}
	return UpdateCount{Matched: result.MatchedCount, Modified: result.ModifiedCount}, nil
}

func (ms *MongoStore) Delete(ctx context.Context, key Key) error {
	if err := ms.users.Delete(ctx, key.Filter(), false); err != nil {
		return classify(err)
	}
	return nil
}

func (ms *MongoStore) Close(_ context.Context) error {
	if err := ms.access.Disconnect(); err != nil {
		return classify(err)
	}
	return nil
}

// classify wraps Mongo errors with the matching error kind.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case mdb.IsDuplicate(err):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	case mdb.IsNotFound(err), errors.Is(err, mdb.ErrNoItemMatch):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case mdb.IsValidationFailure(err):
		return fmt.Errorf("%w: %w", ErrValidation, err)
	case mdb.IsUnreachable(err):
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return err
}

////////////////////////////////////////////////////////////////////////////////

var _ Connector = &MongoConnector{}

// MongoConnector dials Mongo and returns a MongoStore on the configured table.
type MongoConnector struct {
	// Config is passed to mdb.ConnectTo, the client options come from the connection.
	Config mdb.Config
}

func (mc *MongoConnector) Connect(ctx context.Context, conn *mdbconf.Connection) (Store, error) {
	config := mc.Config
	config.Ctx = ctx
	access, err := mdb.ConnectTo(conn, &config)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	store, err := NewMongoStore(access, conn.Table())
	if err != nil {
		_ = access.Disconnect()
		if !errors.Is(err, ErrConnection) {
			err = fmt.Errorf("%w: %w", ErrConnection, err)
		}
		return nil, err
	}
	access.Info("Users collection ready",
		zap.String("database", conn.Database()), zap.String("table", conn.Table()))
	return store, nil
}
