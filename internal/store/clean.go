package store

import (
	"context"
	"os"

	"gorm.io/gorm"

	"github.com/5gon12eder/graphstudy-go/internal/enums"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// cleanOrder lists the pipeline stages from most- to least-dependent, so
// Clean(act) can drop act and everything listed before it in one pass —
// the reverse-dependency-order requirement from spec.md's "Ownership &
// lifecycle" section.
var cleanOrder = []enums.Action{
	enums.ActionModel, enums.ActionMetrics, enums.ActionProperties,
	enums.ActionLayWorse, enums.ActionLayInter, enums.ActionLayouts, enums.ActionGraphs,
}

// Clean drops the rows and files owned by act and by every stage that
// depends on it, matching the original driver's clean_graphs/
// clean_layouts/clean_inter/clean_worse/clean_properties/clean_metrics/
// clean_model family.
func (s *Store) Clean(ctx context.Context, act enums.Action) error {
	start := -1
	for i, a := range cleanOrder {
		if a == act {
			start = i
			break
		}
	}
	if start < 0 {
		return xerrors.Sanityf("clean: unknown action %v", act)
	}
	return s.WithTx(ctx, func(tx *gorm.DB) error {
		for _, a := range cleanOrder[:start+1] {
			if err := s.cleanOne(tx, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) cleanOne(tx *gorm.DB, act enums.Action) error {
	switch act {
	case enums.ActionModel:
		return removeAll(s.ModelDir())
	case enums.ActionMetrics:
		return tx.Where("1 = 1").Delete(&Metric{}).Error
	case enums.ActionProperties:
		if err := tx.Where("1 = 1").Delete(&Histogram{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&SlidingAverage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&MajorAxis{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&MinorAxis{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&PropertyDisc{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&PropertyCont{}).Error; err != nil {
			return err
		}
		return removeAll(s.DataDir + "/properties")
	case enums.ActionLayWorse:
		return tx.Where("1 = 1").Delete(&WorseLayout{}).Error
	case enums.ActionLayInter:
		return tx.Where("1 = 1").Delete(&InterLayout{}).Error
	case enums.ActionLayouts:
		if err := tx.Where("1 = 1").Delete(&TestScore{}).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&Layout{}).Error; err != nil {
			return err
		}
		return removeAll(s.DataDir + "/layouts")
	case enums.ActionGraphs:
		if err := tx.Where("1 = 1").Delete(&Graph{}).Error; err != nil {
			return err
		}
		return removeAll(s.DataDir + "/graphs")
	default:
		return xerrors.Sanityf("clean: unhandled action %v", act)
	}
}

func removeAll(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dir, 0o755)
		}
		return xerrors.WrapFatal(err, "listing %s", dir)
	}
	for _, e := range entries {
		if err := os.RemoveAll(dir + "/" + e.Name()); err != nil {
			return xerrors.WrapFatal(err, "removing %s/%s", dir, e.Name())
		}
	}
	return nil
}
