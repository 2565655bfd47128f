package store

import (
	"context"
	"crypto/rand"
	"strings"

	"github.com/5gon12eder/graphstudy-go/internal/idfp"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// MatchBy selects which column IDMatch resolves a hex prefix against.
type MatchBy int

const (
	ByID MatchBy = iota
	ByFingerprint
)

// IDMatch resolves a hex prefix to the unique Graph or Layout row whose
// id (or, for Layouts, fingerprint) starts with it. Fails on an empty or
// ambiguous match, matching the original driver's idmatch_curs.
func IDMatch[T interface{ matchKey(MatchBy) (idfp.ID, idfp.Fingerprint) }](
	ctx context.Context, s *Store, rows []T, prefix string, by MatchBy,
) (T, error) {
	var zero T
	prefix = strings.ToLower(prefix)
	var matches []T
	for _, row := range rows {
		id, fp := row.matchKey(by)
		switch by {
		case ByID:
			if id.HasPrefix(prefix) {
				matches = append(matches, row)
			}
		case ByFingerprint:
			if strings.HasPrefix(fp.String(), prefix) {
				matches = append(matches, row)
			}
		}
	}
	switch len(matches) {
	case 0:
		return zero, xerrors.Wrapf(xerrors.Recoverable, xerrors.ErrNotFound, "no row matches prefix %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return zero, xerrors.Recoverablef("prefix %q is ambiguous: %d matching rows", prefix, len(matches))
	}
}

func (g Graph) matchKey(by MatchBy) (idfp.ID, idfp.Fingerprint) {
	return g.ID, g.Fingerprint
}

func (l Layout) matchKey(by MatchBy) (idfp.ID, idfp.Fingerprint) {
	return l.ID, l.Fingerprint
}

// AllocateUniqueLayoutID draws a fresh random ID, retrying up to a small
// bound if it collides with an existing Layout row, mirroring the
// original driver's make_unique_layout_id.
func (s *Store) AllocateUniqueLayoutID(ctx context.Context) (idfp.ID, error) {
	const maxAttempts = 100
	for attempt := 0; attempt < maxAttempts; attempt++ {
		var buf [16]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return idfp.Nil, xerrors.WrapFatal(err, "drawing random layout id")
		}
		id := idfp.ID(buf)
		var count int64
		if err := s.db.WithContext(ctx).Model(&Layout{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return idfp.Nil, xerrors.WrapFatal(err, "checking layout id uniqueness")
		}
		if count == 0 {
			return id, nil
		}
	}
	return idfp.Nil, xerrors.Fatalf("could not allocate a unique layout id after %d attempts", maxAttempts)
}
