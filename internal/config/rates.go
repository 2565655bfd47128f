package config

import "github.com/5gon12eder/graphstudy-go/internal/enums"

// ParseLayInter reads interpolation.cfg.
func ParseLayInter(r *Reader) (map[enums.LayInter][]float64, error) {
	return parseByRate(r, layInterCfgNames)
}

// DefaultLayInter mirrors the original driver's default interpolation
// rates: 15% and 85% of the way between two layouts, for every method.
func DefaultLayInter() map[enums.LayInter][]float64 {
	return map[enums.LayInter][]float64{
		enums.InterLinear:  {0.15, 0.85},
		enums.InterXLinear: {0.15, 0.85},
	}
}

// ParseLayWorse reads worsening.cfg.
func ParseLayWorse(r *Reader) (map[enums.LayWorse][]float64, error) {
	return parseByRate(r, layWorseCfgNames)
}

// DefaultLayWorse mirrors the original driver's default worsening rates.
func DefaultLayWorse() map[enums.LayWorse][]float64 {
	return map[enums.LayWorse][]float64{
		enums.WorseFlipNodes: {0.1, 0.2, 0.5},
		enums.WorseFlipEdges: {0.1, 0.2, 0.5},
		enums.WorseMovLSQ:    {0.1, 0.2, 0.5},
		enums.WorsePerturb:   {0.1, 0.2, 0.5},
	}
}
