// Package auth holds the credential primitives: password hashing and the
// signed, time-limited identity tokens handed to clients.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Supported password hashing algorithms.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

const argon2idPrefix = "$argon2id$"

// ErrPasswordTooLong is returned for passwords bcrypt cannot represent.
var ErrPasswordTooLong = errors.New("password must be at most 72 bytes")

// PasswordHasher hashes and verifies passwords. Hashes are self-describing:
// algorithm, parameters and salt are all embedded in the returned string.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Argon2idParams configures argon2id hashing.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2idParams follows the OWASP baseline (19 MiB, t=2, p=1).
var DefaultArgon2idParams = Argon2idParams{
	MemoryKiB:   19 * 1024,
	Iterations:  2,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hasher hashes new passwords with the configured algorithm and verifies
// hashes of either supported algorithm.
type Hasher struct {
	algorithm  string
	bcryptCost int
	argon      Argon2idParams
}

// NewHasher creates a Hasher. bcryptCost outside bcrypt's range falls back to bcrypt.DefaultCost.
func NewHasher(algorithm string, bcryptCost int) (*Hasher, error) {
	switch algorithm {
	case AlgorithmBcrypt, AlgorithmArgon2id:
	default:
		return nil, fmt.Errorf("unsupported password hasher %q", algorithm)
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Hasher{algorithm: algorithm, bcryptCost: bcryptCost, argon: DefaultArgon2idParams}, nil
}

// Hash returns a salted one-way hash of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if h.algorithm == AlgorithmArgon2id {
		return h.hashArgon2id(plaintext)
	}
	if len(plaintext) > 72 {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plaintext matches hash. Malformed hashes never match.
func (h *Hasher) Verify(plaintext, hash string) bool {
	if strings.HasPrefix(hash, argon2idPrefix) {
		return verifyArgon2id(plaintext, hash)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

func (h *Hasher) hashArgon2id(plaintext string) (string, error) {
	p := h.argon
	salt := make([]byte, p.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, p.Iterations, p.MemoryKiB, p.Parallelism, p.KeyLength)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.MemoryKiB, p.Iterations, p.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

func verifyArgon2id(plaintext, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return false
	}

	var mem, iter uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iter, &par); err != nil {
		return false
	}
	// refuse parameters far beyond what this service would ever produce
	if mem == 0 || iter == 0 || par == 0 || mem > 4*DefaultArgon2idParams.MemoryKiB || iter > 10 {
		return false
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) < 8 {
		return false
	}
	expected, err := b64.DecodeString(parts[5])
	if err != nil || len(expected) < 16 || len(expected) > 128 {
		return false
	}

	key := argon2.IDKey([]byte(plaintext), salt, iter, mem, par, uint32(len(expected))) // #nosec G115 -- bounded above
	return subtle.ConstantTimeCompare(key, expected) == 1
}
