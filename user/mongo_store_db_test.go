//go:build database

package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"

	"github.com/madkins23/mongo-users/mdb"
	"github.com/madkins23/mongo-users/mdbconf"
	"github.com/madkins23/mongo-users/mdbid"
)

type mongoStoreTestSuite struct {
	mdb.AccessTestSuite
	store *MongoStore
	ctx   context.Context
}

func TestMongoStoreSuite(t *testing.T) {
	suite.Run(t, new(mongoStoreTestSuite))
}

func (suite *mongoStoreTestSuite) SetupSuite() {
	suite.AccessTestSuite.SetupSuite()
	suite.ctx = context.Background()
	var err error
	suite.store, err = NewMongoStore(suite.Access(), "test-users")
	suite.Require().NoError(err)
	suite.AssertIndexes(&suite.store.Collection().Collection, UsersIndexes()...)
}

func (suite *mongoStoreTestSuite) TearDownTest() {
	suite.NoError(suite.store.Collection().DeleteAll(suite.ctx))
}

func (suite *mongoStoreTestSuite) newRecord(username, email string) *Record {
	rec := newStoredRecord(username, email)
	rec.Password = "$2a$04$0123456789012345678901uFakeHashForSchemaOnly000000000"
	rec.Created = time.Now().UTC().Truncate(time.Millisecond)
	return rec
}

func (suite *mongoStoreTestSuite) TestInsertFind() {
	rec := suite.newRecord("mshallop", "mshallop@linux.com")
	rec.Phones = map[string]string{"home": "555-1212"}
	id, err := suite.store.Insert(suite.ctx, rec)
	suite.Require().NoError(err)
	suite.NotNil(id)

	found, err := suite.store.Find(suite.ctx, ByEmail("mshallop@linux.com"))
	suite.Require().NoError(err)
	suite.Equal(rec.Token, found.Token)
	suite.Equal(id, found.ID())
	suite.Equal(rec.Phones, found.Phones)
	suite.True(rec.Created.Equal(found.Created))

	_, err = suite.store.Find(suite.ctx, ByGUID(mdbid.NewGUID()))
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *mongoStoreTestSuite) TestDuplicates() {
	_, err := suite.store.Insert(suite.ctx, suite.newRecord("mshallop", "mshallop@linux.com"))
	suite.Require().NoError(err)
	_, err = suite.store.Insert(suite.ctx, suite.newRecord("other", "mshallop@linux.com"))
	suite.ErrorIs(err, ErrDuplicate)
	_, err = suite.store.Insert(suite.ctx, suite.newRecord("mshallop", "other@linux.com"))
	suite.ErrorIs(err, ErrDuplicate)

	exists, err := suite.store.Exists(suite.ctx, "nobody", "mshallop@linux.com")
	suite.Require().NoError(err)
	suite.True(exists)
	exists, err = suite.store.Exists(suite.ctx, "nobody", "nobody@linux.com")
	suite.Require().NoError(err)
	suite.False(exists)
}

func (suite *mongoStoreTestSuite) TestSchemaValidation() {
	rec := suite.newRecord("mshallop", "mshallop@linux.com")
	rec.Token = "short"
	_, err := suite.store.Insert(suite.ctx, rec)
	suite.ErrorIs(err, ErrValidation)
}

func (suite *mongoStoreTestSuite) TestInsertMany() {
	inserted, err := suite.store.InsertMany(suite.ctx, []*Record{
		suite.newRecord("one", "one@linux.com"),
		suite.newRecord("two", "one@linux.com"),
		suite.newRecord("three", "three@linux.com"),
	})
	suite.ErrorIs(err, ErrDuplicate)
	suite.Equal(2, inserted)
}

func (suite *mongoStoreTestSuite) TestUpdate() {
	rec := suite.newRecord("mshallop", "mshallop@linux.com")
	_, err := suite.store.Insert(suite.ctx, rec)
	suite.Require().NoError(err)

	name := "Sterling Archer"
	count, err := suite.store.Update(suite.ctx, rec.Token, Update{FullName: &name}, time.Now().UTC())
	suite.Require().NoError(err)
	suite.Equal(UpdateCount{Matched: 1, Modified: 1}, count)

	found, err := suite.store.Find(suite.ctx, ByGUID(rec.Token))
	suite.Require().NoError(err)
	suite.Equal(name, found.FullName)
	suite.Equal("mshallop@linux.com", found.Email)
	suite.False(found.LastUpdated.IsZero())

	_, err = suite.store.Update(suite.ctx, mdbid.NewGUID(), Update{FullName: &name}, time.Now())
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *mongoStoreTestSuite) TestDelete() {
	rec := suite.newRecord("mshallop", "mshallop@linux.com")
	_, err := suite.store.Insert(suite.ctx, rec)
	suite.Require().NoError(err)
	suite.NoError(suite.store.Delete(suite.ctx, ByEmail("mshallop@linux.com")))
	suite.ErrorIs(suite.store.Delete(suite.ctx, ByEmail("mshallop@linux.com")), ErrNotFound)
}

func (suite *mongoStoreTestSuite) TestConnector() {
	conn := mdbconf.MustBuild(mdbconf.Raw{Database: mdb.AccessTestDBname, Table: "test-users-connector"})
	connector := &MongoConnector{Config: mdb.Config{Logger: zaptest.NewLogger(suite.T())}}
	store, err := connector.Connect(suite.ctx, conn)
	suite.Require().NoError(err)
	suite.NoError(store.Close(suite.ctx))
}
