// Package test holds fixtures shared by tests in several packages.
package test

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/madkins23/mongo-users/user"
)

// HashCost keeps bcrypt fast in tests.
const HashCost = bcrypt.MinCost

// SampleGUID is a well formed GUID that no fixture record uses.
const SampleGUID = "AC9C0E60-F9C4-37D0-7DB1-03DCE3A9AD96"

// SampleUser returns the standard new account candidate.
func SampleUser() user.NewUser {
	return user.NewUser{
		Username: "mshallop",
		Password: "letmein!",
		Email:    "mshallop@linux.com",
	}
}

// OtherUser returns a second candidate that conflicts with nothing in SampleUser.
func OtherUser() user.NewUser {
	return user.NewUser{
		Username: "sarcher",
		Password: "Guest1234",
		Email:    "sarcher@isis.example.com",
	}
}

// SampleUpdate returns the standard account update.
func SampleUpdate() user.Update {
	name := "Sterling Archer"
	password := "SerenityValley!"
	return user.Update{
		FullName: &name,
		Password: &password,
		Phones: map[string]string{
			"home": "555-1212",
			"work": "555-1211",
		},
	}
}

// HashedRecord returns a record for the candidate with its password hashed.
func HashedRecord(candidate user.NewUser) *user.Record {
	hash, err := user.HashPassword(candidate.Password, HashCost)
	if err != nil {
		panic(err)
	}
	return candidate.Record(hash)
}
