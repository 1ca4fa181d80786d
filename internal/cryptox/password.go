// Package cryptox implements the credential encoding used for account
// passwords: salted PBKDF2-HMAC-SHA256 stored as
//
//	{iterations}:{base64(salt)}:{base64(derivedKey)}
//
// The format is shared with hashes already stored in the users table, so the
// parameters and the padded standard base64 alphabet must not change.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/unidesk/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

// Reference parameters of the credential encoding.
const (
	Iterations = 65536
	SaltLength = 16 // bytes
	KeyLength  = 32 // bytes (256 bits)

	// maxIterations bounds the work a stored encoding can demand from Verify.
	maxIterations = 10_000_000

	fieldSeparator = ":"
)

// randRead is a seam for tests simulating an unavailable random source.
var randRead = rand.Read

// PasswordHasher hashes and verifies passwords. The zero value is not usable;
// construct it with NewPasswordHasher.
type PasswordHasher struct {
	Iterations int
	SaltLength int
	KeyLength  int
}

// NewPasswordHasher returns a hasher with the reference parameters.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{
		Iterations: Iterations,
		SaltLength: SaltLength,
		KeyLength:  KeyLength,
	}
}

var defaultHasher = NewPasswordHasher()

// HashPassword hashes password with the reference parameters.
func HashPassword(password string) (string, error) {
	return defaultHasher.Hash(password)
}

// VerifyPassword checks password against encoded using the reference parameters.
func VerifyPassword(password, encoded string) bool {
	return defaultHasher.Verify(password, encoded)
}

// Hash derives a key from password with a fresh random salt and returns the
// encoding. Every call yields a different string for the same password.
//
// An empty password is rejected with common.ErrorEmptyPassword. A failing
// random source yields an error wrapping common.ErrCryptoUnavailable.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", common.ErrorEmptyPassword
	}

	salt := make([]byte, h.SaltLength)
	if _, err := randRead(salt); err != nil {
		return "", fmt.Errorf("%w: reading salt: %v", common.ErrCryptoUnavailable, err)
	}

	key := pbkdf2.Key([]byte(password), salt, h.Iterations, h.KeyLength, sha256.New)

	return strings.Join([]string{
		strconv.Itoa(h.Iterations),
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(key),
	}, fieldSeparator), nil
}

// Verify reports whether password matches encoded. It never panics: empty
// input, a malformed encoding or a derived key of unexpected length all
// yield false. The iteration count is taken from the encoding.
func (h *PasswordHasher) Verify(password, encoded string) bool {
	if password == "" || encoded == "" {
		return false
	}

	iterations, salt, expected, ok := h.parse(encoded)
	if !ok {
		return false
	}

	computed := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)

	return subtle.ConstantTimeCompare(computed, expected) == 1
}

func (h *PasswordHasher) parse(encoded string) (iterations int, salt, key []byte, ok bool) {
	parts := strings.Split(encoded, fieldSeparator)
	if len(parts) != 3 {
		return 0, nil, nil, false
	}

	iterations, err := strconv.Atoi(parts[0])
	if err != nil || iterations <= 0 || iterations > maxIterations {
		return 0, nil, nil, false
	}

	salt, err = base64.StdEncoding.DecodeString(parts[1])
	if err != nil || len(salt) == 0 {
		return 0, nil, nil, false
	}

	key, err = base64.StdEncoding.DecodeString(parts[2])
	if err != nil || len(key) != h.KeyLength {
		return 0, nil, nil, false
	}

	return iterations, salt, key, true
}
