package config

import "github.com/5gon12eder/graphstudy-go/internal/enums"

// ParseLayouts reads layouts.cfg.
func ParseLayouts(r *Reader) (map[enums.Layout]SizeSet, error) {
	return parseBySize(r, layoutCfgNames, "layout")
}

// DefaultLayouts mirrors the original driver's built-in layouts.cfg
// default: FMMM for MEDIUM and up, STRESS below MEDIUM, NATIVE and
// PHANTOM at every size.
func DefaultLayouts() map[enums.Layout]SizeSet {
	all := AllSizes()
	atLeastMedium, belowMedium := NoSizes(), NoSizes()
	for _, z := range enums.AllSizes() {
		if z >= enums.SizeMedium {
			atLeastMedium[z] = struct{}{}
		} else {
			belowMedium[z] = struct{}{}
		}
	}
	return map[enums.Layout]SizeSet{
		enums.LayoutNative:  all,
		enums.LayoutFMMM:    atLeastMedium,
		enums.LayoutStress:  belowMedium,
		enums.LayoutPhantom: all,
	}
}
