package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize     = 32     // Salt size in bytes
	KeySize      = 32     // Derived key size
	DefaultIters = 210000 // Default PBKDF2 iterations (OWASP minimum)
	MinIters     = 1000   // Lowest iteration count accepted from a stored record

	hashScheme = "pbkdf2-sha256"
)

var (
	ErrInvalidHash = errors.New("invalid pin hash record")
)

// KDF handles key derivation from PINs
type KDF struct {
	Salt       []byte
	Iterations int
}

// NewKDF creates a new KDF with a random salt
func NewKDF() (*KDF, error) {
	salt, err := GenerateRandom(SaltSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	return &KDF{
		Salt:       salt,
		Iterations: DefaultIters,
	}, nil
}

// DeriveKey derives a key from a PIN
func (k *KDF) DeriveKey(pin []byte) []byte {
	return pbkdf2.Key(pin, k.Salt, k.Iterations, KeySize, sha256.New)
}

// PINHash is a salted, stretched PIN
type PINHash struct {
	Salt       []byte
	Iterations int
	Key        []byte
}

// HashPIN hashes a PIN with a fresh salt
func HashPIN(pin []byte) (*PINHash, error) {
	return HashPINWithIterations(pin, DefaultIters)
}

// HashPINWithIterations is HashPIN with an explicit work factor
func HashPINWithIterations(pin []byte, iters int) (*PINHash, error) {
	if iters < MinIters {
		return nil, fmt.Errorf("iteration count %d below minimum %d", iters, MinIters)
	}
	kdf, err := NewKDF()
	if err != nil {
		return nil, err
	}
	kdf.Iterations = iters
	return &PINHash{
		Salt:       kdf.Salt,
		Iterations: kdf.Iterations,
		Key:        kdf.DeriveKey(pin),
	}, nil
}

// Verify reports whether pin matches the hash
func (h *PINHash) Verify(pin []byte) bool {
	kdf := KDF{Salt: h.Salt, Iterations: h.Iterations}
	key := kdf.DeriveKey(pin)
	defer ClearBytes(key)
	return ConstantTimeCompare(key, h.Key)
}

// String encodes the hash for storage
func (h *PINHash) String() string {
	return strings.Join([]string{
		hashScheme,
		strconv.Itoa(h.Iterations),
		hex.EncodeToString(h.Salt),
		hex.EncodeToString(h.Key),
	}, "$")
}

// ParsePINHash decodes a stored hash record
func ParsePINHash(s string) (*PINHash, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 4 || parts[0] != hashScheme {
		return nil, ErrInvalidHash
	}

	iters, err := strconv.Atoi(parts[1])
	if err != nil || iters < MinIters {
		return nil, fmt.Errorf("%w: bad iteration count", ErrInvalidHash)
	}

	salt, err := hex.DecodeString(parts[2])
	if err != nil || len(salt) == 0 {
		return nil, fmt.Errorf("%w: bad salt", ErrInvalidHash)
	}

	key, err := hex.DecodeString(parts[3])
	if err != nil || len(key) != KeySize {
		return nil, fmt.Errorf("%w: bad key", ErrInvalidHash)
	}

	return &PINHash{Salt: salt, Iterations: iters, Key: key}, nil
}

// ClearBytes securely clears a byte slice
func ClearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ConstantTimeCompare performs a constant-time comparison of two byte slices
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// GenerateRandom generates n random bytes
func GenerateRandom(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
