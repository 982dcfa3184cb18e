package mdbid

import (
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
)

// GUIDField is the document field holding the GUID.
const GUIDField = "token"

// GUIDer provides an interface to items keyed by a GUID string.
type GUIDer interface {
	GUID() string
	GUIDFilter() bson.D
}

// GUIDmixin instantiates the GUIDer interface.
// The method names differ from OIDmixin so that both can be embedded in one item.
type GUIDmixin struct {
	Token string `bson:"token" json:"guid"`
}

// GUID returns the item's GUID.
func (gm *GUIDmixin) GUID() string {
	return gm.Token
}

// GUIDFilter returns a Mongo filter object for the item's GUID.
func (gm *GUIDmixin) GUIDFilter() bson.D {
	return GUIDFilter(gm.Token)
}

// AssignGUID sets a new GUID unless the item already has one.
func (gm *GUIDmixin) AssignGUID() string {
	if gm.Token == "" {
		gm.Token = NewGUID()
	}
	return gm.Token
}

// NewGUID returns a random 36 character GUID in upper case.
func NewGUID() string {
	return strings.ToUpper(uuid.NewString())
}

// IsGUID checks that the string is a 36 character GUID in upper case.
func IsGUID(guid string) bool {
	if len(guid) != 36 || strings.ToUpper(guid) != guid {
		return false
	}
	_, err := uuid.Parse(guid)
	return err == nil
}

// GUIDFilter returns a Mongo filter object for the specified GUID.
func GUIDFilter(guid string) bson.D {
	return bson.D{{Key: GUIDField, Value: guid}}
}
