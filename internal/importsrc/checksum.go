package importsrc

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"

	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// verifyChecksum streams r through the algorithm named in the
// "algo:hexdigest" checksum spec (the format the original driver's
// imports.cfg used) while copying it into w, failing Sanity if the digest
// doesn't match. When checksum is empty, r is copied into w without
// verification.
func verifyChecksum(r io.Reader, w io.Writer, checksum string) error {
	if checksum == "" {
		_, err := io.Copy(w, r)
		if err != nil {
			return xerrors.WrapRecoverable(err, "copying archive data")
		}
		return nil
	}
	algo, expectedHex, ok := strings.Cut(checksum, ":")
	if !ok {
		return xerrors.Fatalf("invalid checksum spec %q", checksum)
	}
	expected, err := hex.DecodeString(expectedHex)
	if err != nil {
		return xerrors.Fatalf("invalid hex-encoded message digest %q", expectedHex)
	}
	h, err := newHasher(algo)
	if err != nil {
		return err
	}
	tee := io.TeeReader(r, h)
	if _, err := io.Copy(w, tee); err != nil {
		return xerrors.WrapRecoverable(err, "copying archive data")
	}
	if !hashEqual(h.Sum(nil), expected) {
		return xerrors.Sanityf("archive has wrong %s checksum", strings.ToUpper(algo))
	}
	return nil
}

func newHasher(algo string) (hash.Hash, error) {
	switch strings.ToLower(algo) {
	case "sha256":
		return sha256.New(), nil
	case "sha3-256":
		return sha3.New256(), nil
	case "sha3-512":
		return sha3.New512(), nil
	case "blake2b-256":
		h, _ := blake2b.New256(nil)
		return h, nil
	case "blake2b-512":
		h, _ := blake2b.New512(nil)
		return h, nil
	default:
		return nil, xerrors.Fatalf("unknown cryptographic hash function %q", algo)
	}
}

func hashEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
