//go:build database

package mdb

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type accessTestSuite struct {
	AccessTestSuite
}

func TestAccessSuite(t *testing.T) {
	suite.Run(t, new(accessTestSuite))
}

func (suite *accessTestSuite) TestPing() {
	suite.NoError(suite.access.Ping())
}

func (suite *accessTestSuite) TestContext() {
	suite.Require().NotNil(suite.access.Context())
}

func (suite *accessTestSuite) TestDatabase() {
	suite.Equal(AccessTestDBname, suite.access.Database().Name())
	suite.NotNil(suite.access.Client())
}

func (suite *accessTestSuite) TestCollectionExists() {
	exists, err := suite.access.CollectionExists("mdb-not-there")
	suite.Require().NoError(err)
	suite.False(exists)

	_, err = suite.access.CollectionExists("")
	suite.Error(err)

	_, err = suite.access.Collection("mdb-there", "")
	suite.Require().NoError(err)
	exists, err = suite.access.CollectionExists("mdb-there")
	suite.Require().NoError(err)
	suite.True(exists)
}
