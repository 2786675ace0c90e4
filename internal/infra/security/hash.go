package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Changing them only affects newly hashed passwords;
// verification derives the key length from the stored hash.
const (
	hashSaltLen       = 16
	hashTime   uint32 = 1
	hashMemory uint32 = 64 * 1024
	hashLanes  uint8  = 4
	hashKeyLen uint32 = 32
)

var errMalformedHash = errors.New("malformed password hash")

// HashPassword derives an Argon2id hash of the password and encodes it as
// "salt:key", both parts base64.
func HashPassword(password string) (string, error) {
	salt := make([]byte, hashSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, hashTime, hashMemory, hashLanes, hashKeyLen)

	return base64.StdEncoding.EncodeToString(salt) + ":" + base64.StdEncoding.EncodeToString(key), nil
}

// VerifyPassword reports whether the password matches the stored "salt:key"
// encoding. A malformed encoding is an error, a mismatch is not.
func VerifyPassword(password, encoded string) (bool, error) {
	if password == "" || encoded == "" {
		return false, nil
	}

	saltPart, keyPart, ok := strings.Cut(encoded, ":")
	if !ok {
		return false, errMalformedHash
	}

	salt, err := base64.StdEncoding.DecodeString(saltPart)
	if err != nil {
		return false, fmt.Errorf("%w: %v", errMalformedHash, err)
	}
	stored, err := base64.StdEncoding.DecodeString(keyPart)
	if err != nil {
		return false, fmt.Errorf("%w: %v", errMalformedHash, err)
	}

	computed := argon2.IDKey([]byte(password), salt, hashTime, hashMemory, hashLanes, uint32(len(stored)))

	return subtle.ConstantTimeCompare(computed, stored) == 1, nil
}
