package security

import (
	"testing"

	"github.com/orderdesk/orderdesk-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher(testPasswordConfig())

	hash, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := hasher.Verify("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_HashIsSalted(t *testing.T) {
	hasher := NewPasswordHasher(testPasswordConfig())

	first, err := hasher.Hash("same input")
	require.NoError(t, err)
	second, err := hasher.Hash("same input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestPasswordHasher_RejectsEmptyPassword(t *testing.T) {
	hasher := NewPasswordHasher(testPasswordConfig())

	_, err := hasher.Hash("")
	assert.Error(t, err)
}

func TestPasswordHasher_RejectsMalformedHash(t *testing.T) {
	hasher := NewPasswordHasher(testPasswordConfig())

	_, err := hasher.Verify("anything", "not-a-real-hash")
	assert.Error(t, err)
}
