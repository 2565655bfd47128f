package features

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/5gon12eder/graphstudy-go/internal/config"
	"github.com/5gon12eder/graphstudy-go/internal/enums"
	"github.com/5gon12eder/graphstudy-go/internal/idfp"
	"github.com/5gon12eder/graphstudy-go/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(dir, store.OpenOptions{Backend: store.SQLite, Create: true}, nil)
	require.NoError(t, err)
	return st
}

func TestIlogClampsNearZero(t *testing.T) {
	require.Equal(t, math.Log(1.0/math.E), ilog(0))
	require.Equal(t, 0.0, ilog(1.0))
}

func TestMaybePuncturedReplacesWithNaN(t *testing.T) {
	require.True(t, math.IsNaN(maybePunctured(3.5, true)))
	require.Equal(t, 3.5, maybePunctured(3.5, false))
}

func TestAliasForDiscVsContAndVicinity(t *testing.T) {
	require.Equal(t, "Angular:D", aliasFor(enums.PropAngular, nil, enums.KernelDisc))
	v := uint(8)
	require.Equal(t, "Angular:8:C", aliasFor(enums.PropAngular, &v, enums.KernelCont))
}

func TestNamesAndValues(t *testing.T) {
	fs := []Feature{{"a", 1.0}, {"b", 2.0}}
	require.Equal(t, []string{"a", "b"}, Names(fs))
	require.Equal(t, []float64{1.0, 2.0}, Values(fs))
}

func TestSameSchema(t *testing.T) {
	require.True(t, SameSchema([]string{"a", "b"}, []string{"a", "b"}))
	require.False(t, SameSchema([]string{"a", "b"}, []string{"a"}), "different lengths should not match")
	require.False(t, SameSchema([]string{"a", "b"}, []string{"b", "a"}), "different order should not match")
}

func TestPropertySetFromSizesAndPuncture(t *testing.T) {
	sizes := map[enums.Property]config.SizeSet{enums.PropAngular: {}, enums.PropTension: {}}
	set := PropertySetFromSizes(sizes)
	require.True(t, set[enums.PropAngular])
	require.True(t, set[enums.PropTension])

	pu := config.Puncture{enums.PropEdgeLength: {}}
	puSet := PropertySetFromPuncture(pu)
	require.True(t, puSet[enums.PropEdgeLength])
}

func TestSortedPropertyNamesIsDeterministic(t *testing.T) {
	set := PropertySet{enums.PropTension: true, enums.PropAngular: true, enums.PropRDFGlobal: false}
	names := SortedPropertyNames(set)
	require.Len(t, names, 2, "off properties should be excluded")
	require.Less(t, names[0], names[1], "names should be in ascending canonical order")
}

func TestGraphFeaturesMissingGraphYieldsNaN(t *testing.T) {
	st := openTestStore(t)
	fs, err := GraphFeatures(context.Background(), st, idfp.ID{})
	require.NoError(t, err)
	require.Len(t, fs, 2)
	require.True(t, math.IsNaN(fs[0].Value))
	require.True(t, math.IsNaN(fs[1].Value))
}

func TestLayoutFeaturesMissingLayoutYieldsNaNColumns(t *testing.T) {
	st := openTestStore(t)
	propsDisc := PropertySet{enums.PropAngular: true}
	propsCont := PropertySet{}
	puncture := PropertySet{}
	fs, err := LayoutFeatures(context.Background(), st, idfp.ID{}, propsDisc, propsCont, puncture)
	require.NoError(t, err)
	require.NotEmpty(t, fs, "LayoutFeatures should still emit columns for a missing layout")
	for _, f := range fs {
		require.True(t, math.IsNaN(f.Value), "column %s = %v, want NaN for a nonexistent layout", f.Name, f.Value)
	}
}

func TestLayoutFeaturesPuncturedColumnsAreNaN(t *testing.T) {
	st := openTestStore(t)
	propsDisc := PropertySet{enums.PropAngular: true}
	propsCont := PropertySet{}
	puncture := PropertySet{enums.PropAngular: true}
	fsPunctured, err := LayoutFeatures(context.Background(), st, idfp.ID{}, propsDisc, propsCont, puncture)
	require.NoError(t, err)
	for _, f := range fsPunctured {
		require.True(t, math.IsNaN(f.Value), "punctured column %s = %v, want NaN", f.Name, f.Value)
	}
}
