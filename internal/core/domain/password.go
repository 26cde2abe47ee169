package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

// Three generations of transaction-password hashing coexist in the wallet
// table. The stored (hash, salt) pair discriminates which one applies:
//
//   - Adaptive: the hash carries the "$argon2id$" prefix; salt column unused.
//   - SaltedIterated: a salt is present; PBKDF2-SHA512, fixed iteration
//     count and output length.
//   - Legacy: no salt; a bare unsalted SHA-256 hex digest.
//
// New wallets always receive Adaptive hashes.

// PasswordHash verifies a candidate password against one stored generation.
type PasswordHash interface {
	Verify(candidate string) (bool, error)
}

const adaptivePrefix = "$argon2id$"

// PBKDF2 parameters of the salted-iterated generation.
const (
	pbkdf2Iterations = 100_000
	pbkdf2KeyLen     = 64
)

// Argon2id parameters of the adaptive generation.
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

// ParsePasswordHash inspects the stored hash and salt and returns the
// matching generation. The dispatch happens exactly once, here; call sites
// only ever see the Verify method.
func ParsePasswordHash(hash, salt string) (PasswordHash, error) {
	switch {
	case hash == "":
		return nil, fmt.Errorf("empty password hash")
	case strings.HasPrefix(hash, adaptivePrefix):
		return adaptiveHash(hash), nil
	case salt != "":
		return saltedIteratedHash{digest: hash, salt: salt}, nil
	default:
		return legacyHash(hash), nil
	}
}

// legacyHash is an unsalted SHA-256 hex digest.
type legacyHash string

func (h legacyHash) Verify(candidate string) (bool, error) {
	sum := sha256.Sum256([]byte(candidate))
	digest := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(digest), []byte(string(h))) == 1, nil
}

// saltedIteratedHash is a PBKDF2-SHA512 hex digest with a per-wallet salt.
type saltedIteratedHash struct {
	digest string
	salt   string
}

func (h saltedIteratedHash) Verify(candidate string) (bool, error) {
	key := pbkdf2.Key([]byte(candidate), []byte(h.salt), pbkdf2Iterations, pbkdf2KeyLen, sha512.New)
	digest := hex.EncodeToString(key)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(h.digest)) == 1, nil
}

// adaptiveHash is a self-describing argon2id encoded hash.
type adaptiveHash string

func (h adaptiveHash) Verify(candidate string) (bool, error) {
	salt, digest, params, err := decodeArgon2Hash(string(h))
	if err != nil {
		return false, err
	}
	other := argon2.IDKey([]byte(candidate), salt, params.time, params.memory, params.threads, params.keyLen)
	return subtle.ConstantTimeCompare(digest, other) == 1, nil
}

// HashPassword produces an Adaptive hash for new or rotated passwords.
// Format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
func HashPassword(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	digest := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf(
		"%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		adaptivePrefix,
		argon2.Version,
		argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

func decodeArgon2Hash(encodedHash string) (salt, hash []byte, params argon2Params, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, params, fmt.Errorf("invalid hash format: expected 6 parts, got %d", len(parts))
	}
	if parts[1] != "argon2id" {
		return nil, nil, params, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, params, fmt.Errorf("parsing version: %w", err)
	}
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.time, &params.threads); err != nil {
		return nil, nil, params, fmt.Errorf("parsing params: %w", err)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, params, fmt.Errorf("decoding salt: %w", err)
	}
	hash, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, params, fmt.Errorf("decoding hash: %w", err)
	}
	params.keyLen = uint32(len(hash))

	return salt, hash, params, nil
}
