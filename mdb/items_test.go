package mdb

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/madkins23/mongo-users/mdbid"
)

var testValidatorJSON = `{
	"$jsonSchema": {
		"bsonType": "object",
		"required": ["alpha", "bravo"],
		"properties": {
			"alpha": {
				"bsonType": "string"
			},
			"bravo": {
				"bsonType": "int"
			},
			"charlie": {
				"bsonType": "string"
			}
		}
	}
}`

var testCollectionDefinition = &CollectionDefinition{
	Name:           "test-collection",
	ValidationJSON: testValidatorJSON,
}

type testItem struct {
	mdbid.OIDmixin `bson:",inline"`
	Alpha          string `bson:"alpha"`
	Bravo          int    `bson:"bravo"`
	Charlie        string `bson:"charlie,omitempty"`
}

func (ti *testItem) KeyFilter() bson.D {
	return bson.D{
		{Key: "alpha", Value: ti.Alpha},
		{Key: "bravo", Value: ti.Bravo},
	}
}

func newTestItem(alpha string, bravo int, charlie string) *testItem {
	return &testItem{Alpha: alpha, Bravo: bravo, Charlie: charlie}
}
