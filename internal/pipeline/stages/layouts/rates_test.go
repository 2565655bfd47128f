package layouts

import "testing"

func TestQuantizeDequantizeRoundTrip(t *testing.T) {
	for _, x := range []float64{0.0, 0.25, 0.5, 0.999, 1.0} {
		q := quantizeRate(x)
		if got := dequantizeRate(q); got != x {
			t.Errorf("dequantizeRate(quantizeRate(%v)) = %v, want %v", x, got, x)
		}
	}
}

func TestQuantizeRateAbsorbsJitter(t *testing.T) {
	a := quantizeRate(0.3)
	b := quantizeRate(0.3000001)
	if a != b {
		t.Errorf("quantizeRate should treat 0.3 and 0.3000001 as equal, got %d and %d", a, b)
	}
}

func TestMissingRatesFindsGaps(t *testing.T) {
	want := []float64{0.0, 0.25, 0.5, 0.75, 1.0}
	have := []float64{0.0, 0.5, 1.0}
	missing := missingRates(want, have)
	if len(missing) != 2 {
		t.Fatalf("missingRates() returned %d rates, want 2: %v", len(missing), missing)
	}
	seen := map[float64]bool{}
	for _, r := range missing {
		seen[r] = true
	}
	if !seen[0.25] || !seen[0.75] {
		t.Errorf("missingRates() = %v, want to include 0.25 and 0.75", missing)
	}
}

func TestMissingRatesEmptyWhenAllPresent(t *testing.T) {
	want := []float64{0.0, 1.0}
	have := []float64{1.0, 0.0}
	if missing := missingRates(want, have); len(missing) != 0 {
		t.Errorf("missingRates() = %v, want none missing", missing)
	}
}

func TestMissingRatesAllMissingWhenHaveEmpty(t *testing.T) {
	want := []float64{0.1, 0.2}
	if missing := missingRates(want, nil); len(missing) != 2 {
		t.Errorf("missingRates(want, nil) returned %d rates, want 2", len(missing))
	}
}
