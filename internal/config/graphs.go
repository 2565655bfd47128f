package config

import (
	"strconv"
	"strings"

	"github.com/5gon12eder/graphstudy-go/internal/enums"
)

// GraphDesire is one (generator, size, count) cell from graphs.cfg: grow
// Count graphs of Size using Gen. A nil Count (the '*' wildcard) means
// "as many as the import source offers", valid only for import
// generators.
type GraphDesire struct {
	Gen   enums.Generator
	Size  enums.GraphSize
	Count *int
}

// ParseGraphs reads graphs.cfg: a header row of size-category names
// followed by one row per generator giving the desired count for each
// header column.
func ParseGraphs(r *Reader) ([]GraphDesire, error) {
	var desired []GraphDesire
	var sizes []enums.GraphSize
	for {
		line, ok := r.Next()
		if !ok {
			break
		}
		words := strings.Fields(line)
		if sizes == nil {
			for _, w := range words {
				z, ok := parseSizeName(w)
				if !ok {
					return nil, r.Failuref("unknown graph size: %s", w)
				}
				sizes = append(sizes, z)
			}
			continue
		}
		head, tail := words[0], words[1:]
		gen, ok := generatorCfgNames[head]
		if !ok {
			return nil, r.Failuref("unknown graph generator: %s", head)
		}
		if len(tail) != len(sizes) {
			return nil, r.Failuref("expected %d columns but found %d", len(sizes), len(tail))
		}
		for i, word := range tail {
			var count *int
			if word != "*" {
				n, err := strconv.Atoi(word)
				if err != nil {
					return nil, r.Failuref("not a valid integer: %s", word)
				}
				if n < 0 {
					return nil, r.Failuref("number of graphs cannot be negative")
				}
				count = &n
			}
			desired = append(desired, GraphDesire{Gen: gen, Size: sizes[i], Count: count})
		}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return desired, nil
}

// DefaultGraphs mirrors the original driver's built-in graphs.cfg
// default: three SMALL and two MEDIUM graphs from every non-import
// generator, plus five extra SMALL graphs imported from the Rome corpus.
func DefaultGraphs() []GraphDesire {
	three, two, five := 3, 2, 5
	var desired []GraphDesire
	for name, gen := range generatorCfgNames {
		_ = name
		if gen.Imported() {
			continue
		}
		desired = append(desired, GraphDesire{Gen: gen, Size: enums.SizeSmall, Count: &three})
		desired = append(desired, GraphDesire{Gen: gen, Size: enums.SizeMedium, Count: &two})
	}
	desired = append(desired, GraphDesire{Gen: enums.GenROME, Size: enums.SizeSmall, Count: &five})
	return desired
}
