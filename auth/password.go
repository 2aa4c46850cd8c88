package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/user/biblioteka-go/config"
)

// PasswordHasher hashes and verifies passwords with argon2id. Each hash
// gets a fresh random salt and is stored in PHC string format, so the
// parameters travel with the hash and can be tuned without invalidating
// existing credentials.
type PasswordHasher struct {
	cfg *config.HashConfig
}

// NewPasswordHasher creates a hasher with the given cost parameters.
func NewPasswordHasher(cfg *config.HashConfig) *PasswordHasher {
	return &PasswordHasher{cfg: cfg}
}

// Hash derives an argon2id hash of plaintext with a random salt and
// returns it encoded as $argon2id$v=19$m=...,t=...,p=...$salt$key.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.cfg.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, h.cfg.Iterations, h.cfg.Memory, h.cfg.Parallelism, h.cfg.KeyLength)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.cfg.Memory, h.cfg.Iterations, h.cfg.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify reports whether plaintext matches the encoded hash. The hash
// is recomputed with the parameters embedded in the encoded string and
// compared in constant time. A malformed hash verifies as false rather
// than failing.
func (h *PasswordHasher) Verify(encoded, plaintext string) bool {
	salt, key, memory, iterations, parallelism, ok := decodeHash(encoded)
	if !ok {
		return false
	}

	candidate := argon2.IDKey([]byte(plaintext), salt, iterations, memory, parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1
}

// decodeHash parses a PHC argon2id string into its salt, key and cost
// parameters.
func decodeHash(encoded string) (salt, key []byte, memory, iterations uint32, parallelism uint8, ok bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, 0, 0, 0, false
	}

	var p uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &p); err != nil {
		return nil, nil, 0, 0, 0, false
	}
	if memory == 0 || iterations == 0 || p == 0 {
		return nil, nil, 0, 0, 0, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, 0, 0, 0, false
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return nil, nil, 0, 0, 0, false
	}

	return salt, key, memory, iterations, p, true
}
