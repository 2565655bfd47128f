// Package features extracts fixed-length, deterministically-ordered
// real-valued feature vectors from stored graphs and layouts (spec.md
// §4.8, SPEC_FULL.md §6.4, action C10). The column order is a pure
// function of the caller's desired-property sets, so changing
// properties.cfg invalidates any previously trained model — exactly
// mirroring the original driver's get_graph_features/get_layout_features.
package features

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/5gon12eder/graphstudy-go/internal/config"
	"github.com/5gon12eder/graphstudy-go/internal/enums"
	"github.com/5gon12eder/graphstudy-go/internal/idfp"
	"github.com/5gon12eder/graphstudy-go/internal/store"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// Feature is one named column of an extracted feature vector. Name is
// stable and deterministic for a given configuration, used as the
// persisted feature schema to detect a stale model (SPEC_FULL.md §6.7).
type Feature struct {
	Name  string
	Value float64
}

// na is the sentinel emitted for any value that is missing, not yet
// computed, or deliberately punctured. Normalization later replaces it
// with zero after mean-centering/scaling (spec.md §4.8).
const na = math.NaN()

// propertyAliases gives each Property its camel-case feature-name
// component, mirroring the original driver's _PROPERTY_ALIASES (built
// there by capitalizing each underscore-separated word of the enum
// name; PRINCOMP1ST/2ND get an explicit override there too).
var propertyAliases = map[enums.Property]string{
	enums.PropRDFGlobal:  "RdfGlobal",
	enums.PropRDFLocal:   "RdfLocal",
	enums.PropAngular:    "Angular",
	enums.PropEdgeLength: "EdgeLength",
	enums.PropPrinComp1:  "PrinComp1st",
	enums.PropPrinComp2:  "PrinComp2nd",
	enums.PropTension:    "Tension",
}

// ilog mirrors the original driver's _ilog: log(max(1/e, n)).
func ilog(n float64) float64 {
	return math.Log(math.Max(1.0/math.E, n))
}

// GraphFeatures extracts the two graph-level features (logNodes,
// logEdges) for graphID. A missing graph yields both columns as na
// rather than an error, matching _emit_graph_features' `row is not None`
// guard.
func GraphFeatures(ctx context.Context, st *store.Store, graphID idfp.ID) ([]Feature, error) {
	rows, err := store.Select[store.Graph](ctx, st.DB(), map[string]interface{}{"id": graphID[:]})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []Feature{{"logNodes", na}, {"logEdges", na}}, nil
	}
	g := rows[0]
	return []Feature{
		{"logNodes", ilog(float64(g.Nodes))},
		{"logEdges", ilog(float64(g.Edges))},
	}, nil
}

// PropertySet is a membership set of properties, used for both the
// desired-disc/desired-cont sets and the puncture set.
type PropertySet map[enums.Property]bool

// PropertySetFromSizes collapses a property->SizeSet configuration map
// (properties.cfg's desired-disc or desired-cont table) down to plain
// membership: a property is "desired" here regardless of which sizes it
// applies to, since LayoutFeatures is always called for one already-known
// layout whose graph size was the caller's concern, not this package's.
func PropertySetFromSizes(m map[enums.Property]config.SizeSet) PropertySet {
	out := make(PropertySet, len(m))
	for p := range m {
		out[p] = true
	}
	return out
}

// PropertySetFromPuncture converts a parsed puncture.cfg into a
// PropertySet.
func PropertySetFromPuncture(pu config.Puncture) PropertySet {
	out := make(PropertySet, len(pu))
	for p := range pu {
		out[p] = true
	}
	return out
}

// LayoutFeatures extracts the layout-level feature vector for layoutID.
// propsDisc/propsCont select, per property, which kernel(s) it is
// desired under; puncture forces every column belonging to a named
// property to na regardless of what was actually measured — the
// ablation hook described by spec.md §4.8.
func LayoutFeatures(ctx context.Context, st *store.Store, layoutID idfp.ID, propsDisc, propsCont, puncture PropertySet) ([]Feature, error) {
	var out []Feature

	for _, pair := range []struct {
		prop enums.Property
		name string
	}{
		{enums.PropPrinComp1, "Major"},
		{enums.PropPrinComp2, "Minor"},
	} {
		if !propsDisc[pair.prop] && !propsCont[pair.prop] {
			continue
		}
		x, y, err := axisOf(ctx, st, pair.prop, layoutID)
		if err != nil {
			return nil, err
		}
		punctured := puncture[pair.prop]
		out = append(out,
			Feature{pair.name + "Axis:x", maybePunctured(x, punctured)},
			Feature{pair.name + "Axis:y", maybePunctured(y, punctured)},
		)
	}

	for _, prop := range enums.AllProperties() {
		var kinds []enums.Kernel
		if propsDisc[prop] {
			kinds = append(kinds, enums.KernelDisc)
		}
		if propsCont[prop] {
			kinds = append(kinds, enums.KernelCont)
		}
		if len(kinds) == 0 {
			continue
		}
		punctured := puncture[prop]
		for _, kind := range kinds {
			cols, err := propertyKindFeatures(ctx, st, prop, kind, layoutID, punctured)
			if err != nil {
				return nil, err
			}
			out = append(out, cols...)
		}
	}
	return out, nil
}

func maybePunctured(v float64, punctured bool) float64 {
	if punctured {
		return na
	}
	return v
}

func axisOf(ctx context.Context, st *store.Store, prop enums.Property, layoutID idfp.ID) (float64, float64, error) {
	switch prop {
	case enums.PropPrinComp1:
		rows, err := store.Select[store.MajorAxis](ctx, st.DB(), map[string]interface{}{"layout_id": layoutID[:]})
		if err != nil || len(rows) == 0 {
			return na, na, err
		}
		return rows[0].X, rows[0].Y, nil
	case enums.PropPrinComp2:
		rows, err := store.Select[store.MinorAxis](ctx, st.DB(), map[string]interface{}{"layout_id": layoutID[:]})
		if err != nil || len(rows) == 0 {
			return na, na, err
		}
		return rows[0].X, rows[0].Y, nil
	default:
		return na, na, xerrors.Sanityf("features: %s has no principal-component axis", prop)
	}
}

// propertyKindFeatures emits one property/kernel combination's columns:
// the outer summary statistics at each vicinity (or a single pass for
// non-localized properties), plus, for the continuous kernel only, a
// last-value-filled entropy column per vicinity. Mirrors the
// _emit_layout_features loop body for one value of `kind`.
func propertyKindFeatures(ctx context.Context, st *store.Store, prop enums.Property, kind enums.Kernel, layoutID idfp.ID, punctured bool) ([]Feature, error) {
	vicinities := []*uint{nil}
	if prop.Localized() {
		vicinities = make([]*uint, len(enums.VICINITIES))
		for i, v := range enums.VICINITIES {
			u := uint(v)
			vicinities[i] = &u
		}
	}

	var out []Feature
	lastEntropy := na
	haveLastEntropy := false

	for _, vicinity := range vicinities {
		alias := aliasFor(prop, vicinity, kind)

		switch kind {
		case enums.KernelDisc:
			row, err := selectPropertyDisc(ctx, st, layoutID, prop, vicinity)
			if err != nil {
				return nil, err
			}
			mean, rms, entropyIntercept, entropySlope := na, na, na, na
			if row != nil {
				mean, rms, entropyIntercept, entropySlope = row.Mean, row.RMS, row.EntropyIntercept, row.EntropySlope
			}
			if prop != enums.PropEdgeLength {
				out = append(out, Feature{alias + ":mean", maybePunctured(mean, punctured)})
			}
			out = append(out,
				Feature{alias + ":rms", maybePunctured(rms, punctured)},
				Feature{alias + ":entropyIntercept", maybePunctured(entropyIntercept, punctured)},
				Feature{alias + ":entropySlope", maybePunctured(entropySlope, punctured)},
			)
			// The disc kernel's per-bincount inner rows (Histograms)
			// carry no feature of their own: the outer
			// entropyIntercept/entropySlope columns already summarize
			// how entropy scales with bincount, so nothing further is
			// emitted here, mirroring the original's empty
			// _INNER_COLUMNS_DISC.

		case enums.KernelCont:
			row, err := selectPropertyCont(ctx, st, layoutID, prop, vicinity)
			mean, rms := na, na
			if err != nil {
				return nil, err
			}
			if row != nil {
				mean, rms = row.Mean, row.RMS
			}
			if prop != enums.PropEdgeLength {
				out = append(out, Feature{alias + ":mean", maybePunctured(mean, punctured)})
			}
			out = append(out, Feature{alias + ":rms", maybePunctured(rms, punctured)})

			entropy := na
			if row != nil {
				avgs, err := store.Select[store.SlidingAverage](ctx, st.DB(), map[string]interface{}{"property_cont_id": row.ID})
				if err != nil {
					return nil, err
				}
				if len(avgs) > 0 && avgs[0].Entropy != nil {
					entropy = *avgs[0].Entropy
				}
			}
			if !math.IsNaN(entropy) {
				lastEntropy = entropy
				haveLastEntropy = true
			}
			carried := na
			if haveLastEntropy {
				carried = lastEntropy
			}
			out = append(out, Feature{alias + ":entropy", maybePunctured(carried, punctured)})
		}
	}
	return out, nil
}

func aliasFor(prop enums.Property, vicinity *uint, kind enums.Kernel) string {
	name := propertyAliases[prop]
	kindLetter := "D"
	if kind == enums.KernelCont {
		kindLetter = "C"
	}
	if vicinity != nil {
		return fmt.Sprintf("%s:%d:%s", name, *vicinity, kindLetter)
	}
	return fmt.Sprintf("%s:%s", name, kindLetter)
}

func selectPropertyDisc(ctx context.Context, st *store.Store, layoutID idfp.ID, prop enums.Property, vicinity *uint) (*store.PropertyDisc, error) {
	where := map[string]interface{}{"layout_id": layoutID[:], "property": prop}
	if vicinity != nil {
		where["vicinity"] = *vicinity
	} else {
		where["vicinity"] = nil
	}
	rows, err := store.Select[store.PropertyDisc](ctx, st.DB(), where)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

func selectPropertyCont(ctx context.Context, st *store.Store, layoutID idfp.ID, prop enums.Property, vicinity *uint) (*store.PropertyCont, error) {
	where := map[string]interface{}{"layout_id": layoutID[:], "property": prop}
	if vicinity != nil {
		where["vicinity"] = *vicinity
	} else {
		where["vicinity"] = nil
	}
	rows, err := store.Select[store.PropertyCont](ctx, st.DB(), where)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// Names returns just the Name field of each feature, in order — the
// persisted "feature schema" an oracle checks a loaded model against
// before serving predictions.
func Names(fs []Feature) []string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = f.Name
	}
	return names
}

// Values returns just the Value field of each feature, in order.
func Values(fs []Feature) []float64 {
	values := make([]float64, len(fs))
	for i, f := range fs {
		values[i] = f.Value
	}
	return values
}

// SameSchema reports whether two feature-name lists are identical,
// column for column.
func SameSchema(a, b []string) bool {
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

// SortedPropertyNames is a small helper for deterministic config
// logging/diagnostics: the property set's names in canonical enum
// order, not map iteration order.
func SortedPropertyNames(set PropertySet) []string {
	var props []enums.Property
	for p, on := range set {
		if on {
			props = append(props, p)
		}
	}
	sort.Slice(props, func(i, j int) bool { return props[i] < props[j] })
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.String()
	}
	return names
}
