package layouts

import "math"

// ratePrecision, quantizeRate and dequantizeRate mirror the original
// driver's c2d/d2c closures: rates are compared as integers scaled by
// 1000 so that floating-point jitter between a desired rate list and an
// already-computed InterLayout/WorseLayout row never causes the same
// rate to be recomputed forever.
const ratePrecision = 1000.0

func quantizeRate(x float64) int64 {
	return int64(math.Round(ratePrecision * x))
}

func dequantizeRate(x int64) float64 {
	return float64(x) / ratePrecision
}

// missingRates returns, in no particular order, the subset of want not
// already present (after quantization) in have.
func missingRates(want []float64, have []float64) []float64 {
	haveSet := make(map[int64]struct{}, len(have))
	for _, r := range have {
		haveSet[quantizeRate(r)] = struct{}{}
	}
	wantSet := make(map[int64]struct{}, len(want))
	for _, r := range want {
		wantSet[quantizeRate(r)] = struct{}{}
	}
	var need []float64
	for q := range wantSet {
		if _, ok := haveSet[q]; !ok {
			need = append(need, dequantizeRate(q))
		}
	}
	return need
}
