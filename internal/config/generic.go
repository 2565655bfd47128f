package config

import (
	"fmt"
	"strconv"
	"strings"
)

type stringer interface {
	comparable
	fmt.Stringer
}

// parseBySize implements the shared grammar of layouts.cfg,
// properties-{disc,cont}.cfg, and metrics.cfg: one row per enum member
// naming the graph sizes (or size ranges) it applies to.
func parseBySize[T stringer](r *Reader, names map[string]T, whatname string) (map[T]SizeSet, error) {
	desired := make(map[T]SizeSet)
	for {
		line, ok := r.Next()
		if !ok {
			break
		}
		words := strings.Fields(line)
		head, tail := words[0], words[1:]
		thing, ok := names[head]
		if !ok {
			return nil, r.Failuref("unknown %s: %s", whatname, head)
		}
		if _, dup := desired[thing]; dup {
			return nil, r.Failuref("duplicate row for %s: %s", whatname, thing)
		}
		sizes, err := parseSizeSpecs(r, tail)
		if err != nil {
			return nil, err
		}
		desired[thing] = sizes
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return desired, nil
}

// parseByRate implements the shared grammar of interpolation.cfg and
// worsening.cfg: one row per enum member naming zero or more
// transformation rates in the unit interval.
func parseByRate[T stringer](r *Reader, names map[string]T) (map[T][]float64, error) {
	desired := make(map[T][]float64)
	for {
		line, ok := r.Next()
		if !ok {
			break
		}
		words := strings.Fields(line)
		head, tail := words[0], words[1:]
		method, ok := names[head]
		if !ok {
			return nil, r.Failuref("unknown method: %s", head)
		}
		if _, dup := desired[method]; dup {
			return nil, r.Failuref("duplicate row for method %s", method)
		}
		rates := make([]float64, 0, len(tail))
		for _, w := range tail {
			rate, err := strconv.ParseFloat(w, 64)
			if err != nil {
				return nil, r.Failuref("not a floating-point value: %s", w)
			}
			if rate < 0.0 || rate > 1.0 {
				return nil, r.Failuref("transformation rates must be in the unit interval (note: %v)", rate)
			}
			rates = append(rates, rate)
		}
		desired[method] = rates
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return desired, nil
}
