package idfp

import (
	"bytes"
	"database/sql/driver"
	"encoding/hex"
	"fmt"
)

// Fingerprint is a content hash as reported by an external tool's meta
// JSON. Its length and algorithm are whatever the tool used; this package
// never computes one, it only parses and compares.
type Fingerprint []byte

// ParseFingerprint decodes a hex string into a Fingerprint. An empty or nil
// input yields a nil Fingerprint, matching the optional "not yet computed"
// state of Graph.fingerprint and Layout.fingerprint.
func ParseFingerprint(s *string) (Fingerprint, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(*s)
	if err != nil {
		return nil, fmt.Errorf("idfp: invalid fingerprint %q: %w", *s, err)
	}
	return Fingerprint(b), nil
}

func (f Fingerprint) String() string {
	if len(f) == 0 {
		return ""
	}
	return hex.EncodeToString(f)
}

// Equal reports whether two fingerprints are byte-identical. Two empty/nil
// fingerprints are never considered equal: "not yet computed" is never a
// match for anything, including another not-yet-computed row.
func (f Fingerprint) Equal(other Fingerprint) bool {
	if len(f) == 0 || len(other) == 0 {
		return false
	}
	return bytes.Equal(f, other)
}

func (f Fingerprint) Value() (driver.Value, error) {
	if len(f) == 0 {
		return nil, nil
	}
	return []byte(f), nil
}

func (f *Fingerprint) Scan(src interface{}) error {
	if src == nil {
		*f = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("idfp: cannot scan %T into Fingerprint", src)
	}
	*f = Fingerprint(append([]byte(nil), b...))
	return nil
}
