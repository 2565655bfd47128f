package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/5gon12eder/graphstudy-go/internal/enums"
	"github.com/5gon12eder/graphstudy-go/internal/idfp"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

func TestIDMatchUniquePrefix(t *testing.T) {
	rows := []Graph{
		{ID: idfp.MustParse("aa111111111111111111111111111111"), Generator: enums.GenGRID},
		{ID: idfp.MustParse("bb111111111111111111111111111111"), Generator: enums.GenGRID},
	}
	got, err := IDMatch(context.Background(), nil, rows, "aa", ByID)
	require.NoError(t, err)
	require.Equal(t, rows[0].ID, got.ID)
}

func TestIDMatchAmbiguous(t *testing.T) {
	rows := []Graph{
		{ID: idfp.MustParse("aa111111111111111111111111111111")},
		{ID: idfp.MustParse("aa222222222222222222222222222222")},
	}
	_, err := IDMatch(context.Background(), nil, rows, "aa", ByID)
	require.Error(t, err)
	require.True(t, xerrors.Is(err, xerrors.Recoverable), "ambiguous prefix should fail Recoverable, got %v", err)
}

func TestIDMatchNotFound(t *testing.T) {
	rows := []Graph{{ID: idfp.MustParse("aa111111111111111111111111111111")}}
	_, err := IDMatch(context.Background(), nil, rows, "zz", ByID)
	require.Error(t, err, "IDMatch with no matching prefix should fail")
}

func TestIDMatchByFingerprint(t *testing.T) {
	fp1 := idfp.Fingerprint{0xde, 0xad}
	fp2 := idfp.Fingerprint{0xbe, 0xef}
	rows := []Layout{
		{ID: idfp.MustParse("11111111111111111111111111111111"), Fingerprint: fp1},
		{ID: idfp.MustParse("22222222222222222222222222222222"), Fingerprint: fp2},
	}
	got, err := IDMatch(context.Background(), nil, rows, "dead", ByFingerprint)
	require.NoError(t, err)
	require.True(t, got.Fingerprint.Equal(fp1), "IDMatch by fingerprint matched %v, want %v", got.Fingerprint, fp1)
}
