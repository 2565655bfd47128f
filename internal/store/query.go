package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// WithTx runs fn inside a single database transaction, the one
// transactional-cursor entry point every stage writes through
// (spec.md §4.1).
func (s *Store) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(tx)
	})
}

// Any is the sentinel value meaning "column IS NOT NULL" in a Select
// where-clause, mirroring the original driver's use of the bare `object`
// sentinel in sql_select_curs.
var Any = struct{}{}

// Select runs a generic equality/NULL-aware query against model,
// matching the original driver's sql_select semantics: a nil value in
// where means "IS NULL", store.Any means "IS NOT NULL", and a key simply
// absent from where means the column isn't constrained at all.
func Select[T any](ctx context.Context, db *gorm.DB, where map[string]interface{}) ([]T, error) {
	q := db.WithContext(ctx)
	for col, val := range where {
		switch val {
		case nil:
			q = q.Where(col + " IS NULL")
		case Any:
			q = q.Where(col + " IS NOT NULL")
		default:
			q = q.Where(col+" = ?", val)
		}
	}
	var out []T
	if err := q.Find(&out).Error; err != nil {
		return nil, xerrors.WrapFatal(err, "querying store")
	}
	return out, nil
}
