package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct horse", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	ok, err := Verify(hash, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify(hash, "wrong horse")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyMalformedHash(t *testing.T) {
	_, err := Verify("not-a-bcrypt-hash", "x")
	assert.Error(t, err)
}

func TestHashFallsBackToDefaultCost(t *testing.T) {
	hash, err := Hash("pw", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
