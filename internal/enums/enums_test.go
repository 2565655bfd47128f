package enums

import "testing"

func TestGeneratorImportedSplitsOnSign(t *testing.T) {
	if !GenIMPORT.Imported() {
		t.Errorf("GenIMPORT should be Imported")
	}
	if !GenROME.Imported() {
		t.Errorf("GenROME (negative) should be Imported")
	}
	if GenGRID.Imported() {
		t.Errorf("GenGRID (positive) should not be Imported")
	}
}

func TestGeneratorStringAndParseRoundTrip(t *testing.T) {
	for g := range generatorNames {
		name := g.String()
		got, ok := ParseGenerator(name)
		if !ok || got != g {
			t.Errorf("ParseGenerator(%q) = (%v, %v), want (%v, true)", name, got, ok, g)
		}
	}
}

func TestParseGeneratorUnknownName(t *testing.T) {
	if _, ok := ParseGenerator("nonsense"); ok {
		t.Errorf("ParseGenerator(\"nonsense\") should fail")
	}
}

func TestClassifyGraphSizeBoundaries(t *testing.T) {
	cases := []struct {
		nodes int
		want  GraphSize
	}{
		{0, SizeTiny},
		{9, SizeTiny},
		{10, SizeSmall},
		{99, SizeSmall},
		{100, SizeMedium},
		{999, SizeMedium},
		{1000, SizeLarge},
		{99999, SizeLarge},
		{100000, SizeHuge},
		{10000000, SizeHuge},
	}
	for _, c := range cases {
		if got := ClassifyGraphSize(c.nodes); got != c.want {
			t.Errorf("ClassifyGraphSize(%d) = %v, want %v", c.nodes, got, c.want)
		}
	}
}

func TestGraphSizeTargetFallsWithinRange(t *testing.T) {
	for _, s := range AllSizes() {
		target := s.Target()
		if target < s.LowEnd() {
			t.Errorf("%v.Target() = %d, want >= LowEnd() = %d", s, target, s.LowEnd())
		}
	}
}

func TestAllSizesAscending(t *testing.T) {
	sizes := AllSizes()
	for i := 1; i < len(sizes); i++ {
		if sizes[i] <= sizes[i-1] {
			t.Errorf("AllSizes() not strictly ascending at index %d: %v", i, sizes)
		}
	}
}

func TestLayoutGarbageAndProper(t *testing.T) {
	if !LayoutRandomUniform.Garbage() {
		t.Errorf("LayoutRandomUniform should be Garbage")
	}
	if LayoutRandomUniform.Proper() {
		t.Errorf("LayoutRandomUniform should not be Proper")
	}
	if !LayoutFMMM.Proper() {
		t.Errorf("LayoutFMMM should be Proper")
	}
}

func TestParseLayoutRoundTrip(t *testing.T) {
	for l := range layoutNames {
		got, ok := ParseLayout(l.String())
		if !ok || got != l {
			t.Errorf("ParseLayout(%q) = (%v, %v), want (%v, true)", l.String(), got, ok, l)
		}
	}
}

func TestAllProperLayoutsExcludesGarbage(t *testing.T) {
	for _, l := range AllProperLayouts() {
		if l.Garbage() {
			t.Errorf("AllProperLayouts() includes garbage layout %v", l)
		}
	}
}

func TestPropertyLocalizedOnlyRDFLocal(t *testing.T) {
	if !PropRDFLocal.Localized() {
		t.Errorf("PropRDFLocal should be Localized")
	}
	for _, p := range AllProperties() {
		if p != PropRDFLocal && p.Localized() {
			t.Errorf("%v should not be Localized", p)
		}
	}
}

func TestParsePropertyRoundTrip(t *testing.T) {
	for p := range propertyNames {
		got, ok := ParseProperty(p.String())
		if !ok || got != p {
			t.Errorf("ParseProperty(%q) = (%v, %v), want (%v, true)", p.String(), got, ok, p)
		}
	}
}

func TestHuangMetricsAreFour(t *testing.T) {
	if len(HuangMetrics()) != 4 {
		t.Errorf("HuangMetrics() has %d entries, want 4", len(HuangMetrics()))
	}
}

func TestParseMetricRoundTrip(t *testing.T) {
	for m := range metricNames {
		got, ok := ParseMetric(m.String())
		if !ok || got != m {
			t.Errorf("ParseMetric(%q) = (%v, %v), want (%v, true)", m.String(), got, ok, m)
		}
	}
}

func TestTestIsAlternative(t *testing.T) {
	if TestNNForward.IsAlternative() {
		t.Errorf("TestNNForward should not be an alternative (learned model test)")
	}
	if !TestHuang.IsAlternative() {
		t.Errorf("TestHuang should be an alternative baseline")
	}
}

func TestUnknownEnumValuesStringToUnknown(t *testing.T) {
	if got := Generator(999).String(); got != "unknown" {
		t.Errorf("Generator(999).String() = %q, want \"unknown\"", got)
	}
	if got := Property(999).String(); got != "unknown" {
		t.Errorf("Property(999).String() = %q, want \"unknown\"", got)
	}
}
