// Package mdbid provides mixins giving stored items a Mongo ObjectID and a GUID.
package mdbid

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OIDField is the document field holding the ObjectID.
const OIDField = "_id"

// ObjectIDer is implemented by items with a Mongo ObjectID.
type ObjectIDer interface {
	ID() primitive.ObjectID
	Filter() bson.D
}

// OIDmixin implements ObjectIDer.
// The ID is omitted when zero so that Mongo assigns one on insert.
type OIDmixin struct {
	OID primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
}

func (om *OIDmixin) ID() primitive.ObjectID {
	return om.OID
}

// Filter matches the item by ObjectID.
func (om *OIDmixin) Filter() bson.D {
	return OIDFilter(om.OID)
}

// AssignOID sets a new ObjectID unless the item already has one.
func (om *OIDmixin) AssignOID() primitive.ObjectID {
	if om.OID.IsZero() {
		om.OID = primitive.NewObjectID()
	}
	return om.OID
}

func OIDFilter(oid primitive.ObjectID) bson.D {
	return bson.D{{Key: OIDField, Value: oid}}
}
