package host

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// HashSize is the byte length of every HashValue.
const HashSize = 64

// HashValue is a SHA3-512 digest.
type HashValue [HashSize]byte

// NewHashValue hashes data with SHA3-512.
func NewHashValue(data []byte) HashValue {
	return sha3.Sum512(data)
}

// HashValueFromBytes copies b into a HashValue. b must be exactly HashSize bytes.
func HashValueFromBytes(b []byte) (HashValue, error) {
	var h HashValue
	if len(b) != HashSize {
		return h, fmt.Errorf("hash value must be %d bytes, got %d", HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// ParseHashValue decodes a hex string produced by HashValue.String.
func ParseHashValue(s string) (HashValue, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return HashValue{}, fmt.Errorf("parse hash value: %w", err)
	}
	return HashValueFromBytes(b)
}

// Bytes returns the raw digest.
func (h HashValue) Bytes() []byte {
	return h[:]
}

func (h HashValue) String() string {
	return hex.EncodeToString(h[:])
}
