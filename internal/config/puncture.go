package config

import (
	"strings"

	"github.com/5gon12eder/graphstudy-go/internal/enums"
)

// Puncture is the set of properties zeroed out of feature vectors ahead
// of model training and inference, used for leave-one-out ablation
// studies.
type Puncture map[enums.Property]struct{}

// Contains reports whether p is punctured.
func (pu Puncture) Contains(p enums.Property) bool {
	_, ok := pu[p]
	return ok
}

// Len reports how many properties are punctured.
func (pu Puncture) Len() int {
	return len(pu)
}

// ParsePuncture reads puncture.cfg: exactly one property name per line.
func ParsePuncture(r *Reader) (Puncture, error) {
	out := make(Puncture)
	for {
		line, ok := r.Next()
		if !ok {
			break
		}
		fields := strings.Fields(line)
		if len(fields) != 1 {
			return nil, r.Failuref("only one token per line, please")
		}
		p, ok := propertyCfgNames[fields[0]]
		if !ok {
			return nil, r.Failuref("unknown property: %s", fields[0])
		}
		out[p] = struct{}{}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// DefaultPuncture is the empty set: no property punctured.
func DefaultPuncture() Puncture {
	return make(Puncture)
}
