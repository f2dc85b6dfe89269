package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileDetailsScan(t *testing.T) {
	var p ProfileDetails
	require.NoError(t, p.Scan([]byte(`{"goals":["Read",3,"Write"],"progress_percentage":40,"photo_url":"","profile_info":{"school":"Oak"}}`)))
	assert.Equal(t, []string{"Read", "Write"}, p.Goals())
	progress, ok := p.ProgressPercentage()
	assert.True(t, ok)
	assert.Equal(t, 40, progress)
	assert.Nil(t, p.PhotoURL())
	assert.Equal(t, "Oak", p.ProfileInfo()["school"])

	require.NoError(t, p.Scan(nil))
	assert.NotNil(t, p)
	assert.Empty(t, p)

	require.NoError(t, p.Scan("null"))
	assert.NotNil(t, p)

	assert.Error(t, p.Scan(42))
	assert.Error(t, p.Scan([]byte(`[1,2]`)))
}

func TestProfileDetailsAbsentKeys(t *testing.T) {
	p := ProfileDetails{"progress_percentage": "high"}
	assert.Nil(t, p.Goals())
	_, ok := p.ProgressPercentage()
	assert.False(t, ok)
	assert.Nil(t, p.NextSession())
	assert.Nil(t, p.ProfileInfo())
}

func TestProfileDetailsValue(t *testing.T) {
	v, err := ProfileDetails(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)

	v, err = ProfileDetails{"goals": []string{"Read"}}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"goals":["Read"]}`, string(v.([]byte)))
}

func TestStudentRowTherapist(t *testing.T) {
	assert.Nil(t, StudentRow{}.Therapist())

	id := int64(9)
	first := "Ana"
	ref := StudentRow{TherapistID: &id, TherapistFirstName: &first}.Therapist()
	require.NotNil(t, ref)
	assert.Equal(t, TherapistRef{ID: 9, FirstName: "Ana"}, *ref)
}

func TestJWTClaimsUserID(t *testing.T) {
	claims := &JWTClaims{}
	claims.Subject = "17"
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(17), id)
	assert.True(t, claims.Active())

	claims.Subject = "abc"
	_, err = claims.UserID()
	assert.Error(t, err)

	inactive := false
	claims.IsActive = &inactive
	assert.False(t, claims.Active())
}
