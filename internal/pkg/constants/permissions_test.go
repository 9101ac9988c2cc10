package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedUserType(t *testing.T) {
	assert.True(t, AllowedUserType(MakeOffer, UserTypeCollector))
	assert.False(t, AllowedUserType(MakeOffer, UserTypeSeller))
	assert.True(t, AllowedUserType(CreateListing, UserTypeSeller))
	assert.False(t, AllowedUserType("unknown", UserTypeSeller))
	assert.False(t, AllowedUserType(ViewCollected, ""))
}

func TestIsValidUserType(t *testing.T) {
	assert.True(t, IsValidUserType("user"))
	assert.True(t, IsValidUserType("collector"))
	assert.False(t, IsValidUserType("admin"))
}
