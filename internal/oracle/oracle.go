// Package oracle serves trained-model predictions over arbitrary
// layout pairs (spec.md §4.12, action C14): it loads the persisted
// discriminator model, its architecture, and its feature normalizers
// once, then answers Predict calls by recomputing and normalizing each
// pair's features the same way the training pipeline did. This mirrors
// the original driver's Oracle class in model.py.
package oracle

import (
	"context"
	"math"

	"github.com/5gon12eder/graphstudy-go/internal/config"
	"github.com/5gon12eder/graphstudy-go/internal/corpus"
	"github.com/5gon12eder/graphstudy-go/internal/features"
	"github.com/5gon12eder/graphstudy-go/internal/idfp"
	"github.com/5gon12eder/graphstudy-go/internal/nn"
	"github.com/5gon12eder/graphstudy-go/internal/platform/logger"
	"github.com/5gon12eder/graphstudy-go/internal/store"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// Pair identifies an ordered pair of layouts to compare. Both layouts
// must belong to the same graph.
type Pair struct {
	LHS, RHS idfp.ID
}

// Oracle answers layout-comparison queries with the persisted
// discriminator model.
type Oracle struct {
	st     *store.Store
	log    *logger.Logger
	model  *nn.Model
	schema *corpus.FeatureSchema

	propsDisc features.PropertySet
	propsCont features.PropertySet
}

// New loads the persisted model, architecture, and feature schema from
// st, failing Fatal if any of them is missing or if the persisted
// feature schema's ordered names disagree with what the current
// configuration's discrete/continuous property sets would produce —
// the feature-schema check of spec.md §4.10/§4.12.
func New(ctx context.Context, st *store.Store, cfg *config.Configuration, log *logger.Logger) (*Oracle, error) {
	if log == nil {
		log = logger.NewNop()
	}
	arch, err := nn.LoadArchitecture(st)
	if err != nil {
		return nil, err
	}
	if arch == nil {
		return nil, xerrors.Fatalf("there is no trained discriminator model to serve predictions from")
	}
	model, err := nn.LoadWeights(st, arch)
	if err != nil {
		return nil, err
	}
	schema, err := corpus.LoadFeatureSchema(st)
	if err != nil {
		return nil, err
	}
	if schema == nil {
		return nil, xerrors.Fatalf("there are no persisted feature normalizers to serve predictions with")
	}

	propsDisc := features.PropertySetFromSizes(cfg.DesiredPropertiesDisc)
	propsCont := features.PropertySetFromSizes(cfg.DesiredPropertiesCont)
	puncture := features.PropertySetFromPuncture(cfg.Puncture)
	for p := range puncture {
		delete(propsDisc, p)
		delete(propsCont, p)
	}

	o := &Oracle{st: st, log: log, model: model, schema: schema, propsDisc: propsDisc, propsCont: propsCont}
	if err := o.checkSchema(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

// checkSchema recomputes the feature names the current configuration
// would produce and compares them against the persisted schema —
// mirroring _restore_features's "stored data was fitted to a different
// model" guard. LayoutFeatures' and GraphFeatures' column names depend
// only on propsDisc/propsCont (and which properties/columns exist at
// all), never on the queried id's actual stored values, so probing with
// the zero ID is enough to recover the current schema even when the
// store has no matching row.
func (o *Oracle) checkSchema(ctx context.Context) error {
	probeLayout, err := features.LayoutFeatures(ctx, o.st, idfp.ID{}, o.propsDisc, o.propsCont, nil)
	if err != nil {
		return err
	}
	probeGraph, err := features.GraphFeatures(ctx, o.st, idfp.ID{})
	if err != nil {
		return err
	}
	layoutNames := features.Names(probeLayout)
	graphNames := features.Names(probeGraph)
	if !features.SameSchema(layoutNames, o.schema.LayoutNames) {
		return xerrors.Fatalf("persisted layout feature schema does not match the currently used model")
	}
	if !features.SameSchema(graphNames, o.schema.GraphNames) {
		return xerrors.Fatalf("persisted graph feature schema does not match the currently used model")
	}
	if len(o.schema.LayoutNormalizers) != len(layoutNames) {
		return xerrors.Fatalf("persisted layout normalizer count %d does not match feature schema size %d",
			len(o.schema.LayoutNormalizers), len(layoutNames))
	}
	if len(o.schema.GraphNormalizers) != len(graphNames) {
		return xerrors.Fatalf("persisted graph normalizer count %d does not match feature schema size %d",
			len(o.schema.GraphNormalizers), len(graphNames))
	}
	return nil
}

// Predict scores every pair in pairs: positive means rhs is the better
// layout. When bidirectional is true, the reverse comparisons are
// additionally computed and returned alongside the forward ones.
func (o *Oracle) Predict(ctx context.Context, pairs []Pair, bidirectional bool) ([]float64, []float64, error) {
	forward := make([]float64, len(pairs))
	var backward []float64
	if bidirectional {
		backward = make([]float64, len(pairs))
	}
	graphCache := make(map[idfp.ID][]float64)

	for i, p := range pairs {
		graphID, err := sameGraphID(ctx, o.st, p.LHS, p.RHS)
		if err != nil {
			return nil, nil, err
		}
		lhsRaw, err := features.LayoutFeatures(ctx, o.st, p.LHS, o.propsDisc, o.propsCont, nil)
		if err != nil {
			return nil, nil, err
		}
		rhsRaw, err := features.LayoutFeatures(ctx, o.st, p.RHS, o.propsDisc, o.propsCont, nil)
		if err != nil {
			return nil, nil, err
		}
		auxRaw, ok := graphCache[graphID]
		if !ok {
			gf, err := features.GraphFeatures(ctx, o.st, graphID)
			if err != nil {
				return nil, nil, err
			}
			auxRaw = features.Values(gf)
			graphCache[graphID] = auxRaw
		}

		lhs := corpus.Normalize(o.schema.LayoutNormalizers, [][]float64{features.Values(lhsRaw)})[0]
		rhs := corpus.Normalize(o.schema.LayoutNormalizers, [][]float64{features.Values(rhsRaw)})[0]
		aux := corpus.Normalize(o.schema.GraphNormalizers, [][]float64{auxRaw})[0]

		forward[i] = o.model.Predict(lhs, rhs, aux)
		if bidirectional {
			backward[i] = o.model.Predict(rhs, lhs, aux)
		}
	}
	return forward, backward, nil
}

func sameGraphID(ctx context.Context, st *store.Store, lhs, rhs idfp.ID) (idfp.ID, error) {
	lhsRows, err := store.Select[store.Layout](ctx, st.DB(), map[string]interface{}{"id": lhs[:]})
	if err != nil {
		return idfp.ID{}, err
	}
	if len(lhsRows) == 0 {
		return idfp.ID{}, xerrors.Sanityf("oracle: layout %s does not exist", lhs)
	}
	rhsRows, err := store.Select[store.Layout](ctx, st.DB(), map[string]interface{}{"id": rhs[:]})
	if err != nil {
		return idfp.ID{}, err
	}
	if len(rhsRows) == 0 {
		return idfp.ID{}, xerrors.Sanityf("oracle: layout %s does not exist", rhs)
	}
	if lhsRows[0].GraphID != rhsRows[0].GraphID {
		return idfp.ID{}, xerrors.Sanityf("oracle: layouts %s and %s belong to different graphs", lhs, rhs)
	}
	return lhsRows[0].GraphID, nil
}

var _ = math.NaN
