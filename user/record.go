package user

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/madkins23/mongo-users/mdbid"
)

// Record is a stored user account.
// Password always holds a bcrypt hash.
type Record struct {
	mdbid.OIDmixin  `bson:",inline"`
	mdbid.GUIDmixin `bson:",inline"`
	Username        string            `bson:"username" json:"username"`
	Password        string            `bson:"password" json:"-"`
	Email           string            `bson:"email" json:"email"`
	FullName        string            `bson:"flName,omitempty" json:"flName,omitempty"`
	Phones          map[string]string `bson:"phones,omitempty" json:"phones,omitempty"`
	Created         time.Time         `bson:"created" json:"created"`
	LastUpdated     time.Time         `bson:"last_updated,omitempty" json:"last_updated,omitempty"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	clone := *r
	if r.Phones != nil {
		clone.Phones = make(map[string]string, len(r.Phones))
		for label, number := range r.Phones {
			clone.Phones[label] = number
		}
	}
	return &clone
}

// NewUser is the candidate data for a new account.
// Password is plaintext here and is replaced by its hash before storage.
type NewUser struct {
	Username string `validate:"required"`
	Password string `validate:"required,min=8,max=16"`
	Email    string `validate:"required,email"`
}

// Record converts the candidate into a record carrying the hashed password.
func (nu NewUser) Record(hash string) *Record {
	return &Record{
		Username: nu.Username,
		Password: hash,
		Email:    nu.Email,
	}
}

// Update lists the fields to change, nil fields are left alone.
// Phones replaces the whole label map when set.
type Update struct {
	FullName *string           `validate:"omitempty,min=1"`
	Password *string           `validate:"omitempty,min=8,max=16"`
	Email    *string           `validate:"omitempty,email"`
	Phones   map[string]string `validate:"omitempty,dive,keys,required,endkeys,required"`
}

// IsEmpty reports whether the update changes nothing.
func (u Update) IsEmpty() bool {
	return u.FullName == nil && u.Password == nil && u.Email == nil && u.Phones == nil
}

// Fields returns the $set document for the update stamped with the update time.
func (u Update) Fields(at time.Time) bson.D {
	fields := bson.D{}
	if u.FullName != nil {
		fields = append(fields, bson.E{Key: "flName", Value: *u.FullName})
	}
	if u.Password != nil {
		fields = append(fields, bson.E{Key: "password", Value: *u.Password})
	}
	if u.Email != nil {
		fields = append(fields, bson.E{Key: "email", Value: *u.Email})
	}
	if u.Phones != nil {
		fields = append(fields, bson.E{Key: "phones", Value: u.Phones})
	}
	return append(fields, bson.E{Key: "last_updated", Value: at})
}

// Apply makes the same change as Fields directly on a record.
func (u Update) Apply(rec *Record, at time.Time) {
	if u.FullName != nil {
		rec.FullName = *u.FullName
	}
	if u.Password != nil {
		rec.Password = *u.Password
	}
	if u.Email != nil {
		rec.Email = *u.Email
	}
	if u.Phones != nil {
		rec.Phones = make(map[string]string, len(u.Phones))
		for label, number := range u.Phones {
			rec.Phones[label] = number
		}
	}
	rec.LastUpdated = at
}

////////////////////////////////////////////////////////////////////////////////

// Key identifies a single record by GUID or by email.
type Key struct {
	field string
	value string
}

// ByGUID keys a record by its GUID, case is normalized.
func ByGUID(guid string) Key {
	return Key{field: mdbid.GUIDField, value: strings.ToUpper(strings.TrimSpace(guid))}
}

// ByEmail keys a record by its email address.
func ByEmail(email string) Key {
	return Key{field: "email", value: strings.TrimSpace(email)}
}

// Field returns the document field the key matches.
func (k Key) Field() string { return k.field }

// Value returns the value the key matches.
func (k Key) Value() string { return k.value }

// IsZero reports whether the key was left empty.
func (k Key) IsZero() bool { return k.field == "" || k.value == "" }

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.field, k.value)
}

// Filter returns the Mongo filter for the key.
func (k Key) Filter() bson.D {
	return bson.D{{Key: k.field, Value: k.value}}
}

// Matches reports whether the record is the one the key names.
func (k Key) Matches(rec *Record) bool {
	switch k.field {
	case mdbid.GUIDField:
		return rec.Token == k.value
	case "email":
		return rec.Email == k.value
	}
	return false
}
