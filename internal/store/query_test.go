package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/5gon12eder/graphstudy-go/internal/enums"
	"github.com/5gon12eder/graphstudy-go/internal/idfp"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := Open(dir, OpenOptions{Backend: SQLite, Create: true}, nil)
	require.NoError(t, err)
	return st
}

func TestSelectEqualityMatch(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	g := Graph{ID: idfp.New(), Generator: enums.GenGRID, Nodes: 10, Edges: 9}
	require.NoError(t, st.DB().WithContext(ctx).Create(&g).Error)

	rows, err := Select[Graph](ctx, st.DB(), map[string]interface{}{"id": g.ID[:]})
	require.NoError(t, err)
	require.Len(t, rows, 1, "Select by id should return exactly the row created above")
	require.Equal(t, g.ID, rows[0].ID)
}

func TestSelectIsNullAndIsNotNull(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	graphID := idfp.New()
	st.DB().Create(&Graph{ID: graphID, Generator: enums.GenGRID})

	native := idfp.New()
	st.DB().Create(&Layout{ID: native, GraphID: graphID, Layout: nil})
	kind := enums.LayoutFMMM
	proper := idfp.New()
	st.DB().Create(&Layout{ID: proper, GraphID: graphID, Layout: &kind})

	nulls, err := Select[Layout](ctx, st.DB(), map[string]interface{}{"layout": nil})
	require.NoError(t, err)
	require.Len(t, nulls, 1, "Select(layout IS NULL) should return just the derived layout")
	require.Equal(t, native, nulls[0].ID)

	notNulls, err := Select[Layout](ctx, st.DB(), map[string]interface{}{"layout": Any})
	require.NoError(t, err)
	require.Len(t, notNulls, 1, "Select(layout IS NOT NULL) should return just the proper layout")
	require.Equal(t, proper, notNulls[0].ID)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")
	err := st.WithTx(ctx, func(tx *gorm.DB) error {
		tx.Create(&Graph{ID: idfp.New(), Generator: enums.GenGRID})
		return boom
	})
	require.Error(t, err, "WithTx should propagate the callback's error")

	rows, selErr := Select[Graph](ctx, st.DB(), nil)
	require.NoError(t, selErr)
	require.Empty(t, rows, "a failed transaction should have rolled back its insert")
}
