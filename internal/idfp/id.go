// Package idfp implements the opaque 16-byte IDs and content-hash
// fingerprints used throughout the artifact store.
//
// An ID is equal to another iff their underlying byte strings are equal. A
// zero-value ID is the sentinel for "no ID" and is never a valid primary
// key. Fingerprints are plain byte strings produced by external tools; this
// package only parses and compares them, it never hashes content itself.
package idfp

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// ID is an opaque 16-byte identifier, presented as lowercase hex.
type ID [16]byte

// Nil is the sentinel "no ID" value.
var Nil = ID{}

// New draws a fresh random ID. Sixteen cryptographically random bytes have
// no format requirement beyond their length, so a v4 UUID's raw bytes are
// as good a source as any.
func New() ID {
	return ID(uuid.New())
}

// Parse decodes a lowercase (or mixed-case) hex string into an ID. An empty
// string parses to Nil.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return Nil, fmt.Errorf("idfp: invalid ID %q: %w", s, err)
	}
	if len(b) != 16 {
		return Nil, fmt.Errorf("idfp: ID %q is %d bytes, want 16", s, len(b))
	}
	var id ID
	copy(id[:], b)
	return id, nil
}

// MustParse is like Parse but panics on error; reserved for constants and
// tests where the input is known-good.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ID) String() string {
	if id.IsNil() {
		return ""
	}
	return hex.EncodeToString(id[:])
}

// IsNil reports whether id is the sentinel "no ID" value.
func (id ID) IsNil() bool {
	return id == Nil
}

// HasPrefix reports whether the hex encoding of id starts with prefix
// (case-insensitive), for CLI prefix-matching convenience.
func (id ID) HasPrefix(prefix string) bool {
	full := id.String()
	if len(prefix) > len(full) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if lowerHexDigit(prefix[i]) != lowerHexDigit(full[i]) {
			return false
		}
	}
	return true
}

func lowerHexDigit(c byte) byte {
	if c >= 'A' && c <= 'F' {
		return c - 'A' + 'a'
	}
	return c
}

// Value implements driver.Valuer so an ID can be stored as a BLOB/bytea
// column directly by GORM.
func (id ID) Value() (driver.Value, error) {
	if id.IsNil() {
		return nil, nil
	}
	return id[:], nil
}

// Scan implements sql.Scanner.
func (id *ID) Scan(src interface{}) error {
	if src == nil {
		*id = Nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("idfp: cannot scan %T into ID", src)
	}
	if len(b) != 16 {
		return fmt.Errorf("idfp: scanned %d bytes, want 16", len(b))
	}
	copy(id[:], b)
	return nil
}

// GetKey returns a value suitable as a sort key so a slice of IDs can be
// placed into deterministic order.
func (id ID) GetKey() string {
	return id.String()
}
