package test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/madkins23/mongo-users/mdbid"
	"github.com/madkins23/mongo-users/user"
)

func TestFixtures(t *testing.T) {
	assert.True(t, mdbid.IsGUID(SampleGUID))
	assert.NotEqual(t, SampleUser().Email, OtherUser().Email)
	assert.False(t, SampleUpdate().IsEmpty())

	rec := HashedRecord(SampleUser())
	assert.Equal(t, "mshallop", rec.Username)
	assert.NotEqual(t, SampleUser().Password, rec.Password)
	assert.True(t, user.VerifyPassword(rec.Password, SampleUser().Password))
}
