package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/biblioteka-go/config"
)

// testHashConfig uses low cost parameters to keep the suite fast.
func testHashConfig() *config.HashConfig {
	return &config.HashConfig{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher(testHashConfig())

	encoded, err := hasher.Hash("pw123")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v="), "hash should be in PHC format, got %q", encoded)
	assert.True(t, hasher.Verify(encoded, "pw123"))
	assert.False(t, hasher.Verify(encoded, "pw124"))
	assert.False(t, hasher.Verify(encoded, ""))
}

func TestPasswordHasher_HashIsSalted(t *testing.T) {
	hasher := NewPasswordHasher(testHashConfig())

	first, err := hasher.Hash("same password")
	require.NoError(t, err)
	second, err := hasher.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "two hashes of the same password must differ by salt")
	assert.True(t, hasher.Verify(first, "same password"))
	assert.True(t, hasher.Verify(second, "same password"))
}

func TestPasswordHasher_VerifyMalformedHash(t *testing.T) {
	hasher := NewPasswordHasher(testHashConfig())

	tests := []struct {
		name    string
		encoded string
	}{
		{name: "empty string", encoded: ""},
		{name: "not a hash at all", encoded: "plaintext"},
		{name: "wrong algorithm", encoded: "$bcrypt$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5"},
		{name: "wrong version", encoded: "$argon2id$v=18$m=1024,t=1,p=1$c2FsdHNhbHQ$a2V5a2V5"},
		{name: "missing sections", encoded: "$argon2id$v=19$m=1024,t=1,p=1"},
		{name: "garbage parameters", encoded: "$argon2id$v=19$m=a,t=b,p=c$c2FsdHNhbHQ$a2V5a2V5"},
		{name: "zero cost parameters", encoded: "$argon2id$v=19$m=0,t=0,p=0$c2FsdHNhbHQ$a2V5a2V5"},
		{name: "invalid base64 salt", encoded: "$argon2id$v=19$m=1024,t=1,p=1$!!!!$a2V5a2V5"},
		{name: "invalid base64 key", encoded: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHQ$!!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, hasher.Verify(tt.encoded, "anything"))
		})
	}
}

func TestPasswordHasher_VerifyAcrossParameters(t *testing.T) {
	// A hash made with one parameter set must still verify with a hasher
	// configured differently, because the parameters travel in the hash.
	oldHasher := NewPasswordHasher(testHashConfig())
	encoded, err := oldHasher.Hash("pw123")
	require.NoError(t, err)

	newHasher := NewPasswordHasher(&config.HashConfig{
		Memory:      2048,
		Iterations:  2,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	})
	assert.True(t, newHasher.Verify(encoded, "pw123"))
}
