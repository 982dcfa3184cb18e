package mdb

import (
	"context"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

const AccessTestDBname = "db-test"

// AccessTestSuite connects to the test database for the duration of a suite
// and drops the database afterwards.
type AccessTestSuite struct {
	suite.Suite
	access *Access
}

func (suite *AccessTestSuite) Access() *Access {
	return suite.access
}

func (suite *AccessTestSuite) SetupSuite() {
	suite.SetupSuiteConfig(&Config{Logger: zaptest.NewLogger(suite.T())})
}

func (suite *AccessTestSuite) SetupSuiteConfig(config *Config) {
	var err error
	suite.access, err = Connect(AccessTestDBname, config)
	suite.Require().NoError(err, "connect to mongo")
	suite.access.Info("Suite setup")
}

func (suite *AccessTestSuite) TearDownSuite() {
	suite.access.Info("Suite teardown")
	suite.NoError(suite.access.Database().Drop(context.Background()), "drop test database")
	suite.NoError(suite.access.Disconnect(), "disconnect from mongo")
}

// ConnectCollection connects to the specified collection and adds any provided indexes
// as necessary in a SetupSuite() with test checks so that any errors blow up the test.
func (suite *AccessTestSuite) ConnectCollection(
	definition *CollectionDefinition, indexDescriptions ...*IndexDescription) *Collection {
	collection, err := ConnectCollection(suite.access, definition)
	suite.Require().NoError(err)
	suite.NotNil(collection)
	suite.Require().NoError(collection.DeleteAll(context.Background()))
	for _, indexDescription := range indexDescriptions {
		suite.Require().NoError(suite.access.Index(collection, indexDescription))
	}
	return collection
}

// ConnectTypedCollectionHelper is similar to AccessTestSuite.ConnectCollection().
// Go doesn't support generic methods so this can't be a method on AccessTestSuite.
func ConnectTypedCollectionHelper[T any](
	suite *AccessTestSuite, definition *CollectionDefinition, indexDescriptions ...*IndexDescription) *TypedCollection[T] {
	collection, err := ConnectTypedCollection[T](suite.access, definition)
	suite.Require().NoError(err)
	suite.NotNil(collection)
	suite.Require().NoError(collection.DeleteAll(context.Background()))
	for _, indexDescription := range indexDescriptions {
		suite.Require().NoError(suite.access.Index(&collection.Collection, indexDescription))
	}
	return collection
}

// AssertIndexes checks that the collection has exactly the described indexes besides the _id index.
func (suite *AccessTestSuite) AssertIndexes(collection *Collection, descriptions ...*IndexDescription) {
	found, err := collection.IndexDescriptions(context.Background())
	suite.Require().NoError(err)
	suite.Len(found, len(descriptions)+1)
	suite.Contains(found, "_id_")
	for _, description := range descriptions {
		if suite.Contains(found, description.Name(), "index %s", description.Name()) {
			suite.Equal(description.Unique(), found[description.Name()].Unique(), "unique %s", description.Name())
			suite.Equal(description.Keys(), found[description.Name()].Keys(), "keys %s", description.Name())
		}
	}
}
