package config

import (
	"github.com/5gon12eder/graphstudy-go/internal/enums"
)

// SizeSet is a small set of graph-size categories, used wherever a
// configuration line selects which sizes a rule applies to.
type SizeSet map[enums.GraphSize]struct{}

// AllSizes returns a SizeSet containing every category.
func AllSizes() SizeSet {
	s := make(SizeSet)
	for _, z := range enums.AllSizes() {
		s[z] = struct{}{}
	}
	return s
}

// NoSizes returns an empty SizeSet.
func NoSizes() SizeSet {
	return make(SizeSet)
}

// Contains reports whether z is a member.
func (s SizeSet) Contains(z enums.GraphSize) bool {
	_, ok := s[z]
	return ok
}

func (s SizeSet) add(z enums.GraphSize) {
	s[z] = struct{}{}
}

// Sorted returns the set's members in ascending order.
func (s SizeSet) Sorted() []enums.GraphSize {
	var out []enums.GraphSize
	for _, z := range enums.AllSizes() {
		if s.Contains(z) {
			out = append(out, z)
		}
	}
	return out
}

// parseSizeSpecs implements the "TINY ... LARGE" / "MEDIUM ..." / "...
// MEDIUM" / "LARGE TINY" range grammar shared by the layouts, properties,
// and metrics configuration files. A lone "..." token is represented by a
// nil *enums.GraphSize in specs.
func parseSizeSpecs(r *Reader, words []string) (SizeSet, error) {
	specs := make([]*enums.GraphSize, 0, len(words))
	for _, w := range words {
		if w == "..." {
			specs = append(specs, nil)
			continue
		}
		z, ok := parseSizeName(w)
		if !ok {
			return nil, r.Failuref("unknown graph size: %s", w)
		}
		specs = append(specs, &z)
	}
	result := NoSizes()
	if len(specs) == 0 {
		return result, nil
	}
	allAsc := enums.AllSizes()
	if specs[0] == nil {
		lo := allAsc[0]
		specs = append([]*enums.GraphSize{&lo}, specs...)
	}
	if specs[len(specs)-1] == nil {
		hi := allAsc[len(allAsc)-1]
		specs = append(specs, &hi)
	}
	for i, spec := range specs {
		if spec != nil {
			result.add(*spec)
			continue
		}
		lo, hi := *specs[i-1], *specs[i+1]
		if lo > hi {
			return nil, r.Failuref("%s ... %s is not a valid range", lo, hi)
		}
		for _, z := range allAsc {
			if z >= lo && z <= hi {
				result.add(z)
			}
		}
	}
	return result, nil
}

var sizeNames = map[string]enums.GraphSize{
	"TINY": enums.SizeTiny, "SMALL": enums.SizeSmall, "MEDIUM": enums.SizeMedium,
	"LARGE": enums.SizeLarge, "HUGE": enums.SizeHuge,
}

func parseSizeName(w string) (enums.GraphSize, bool) {
	z, ok := sizeNames[w]
	return z, ok
}
