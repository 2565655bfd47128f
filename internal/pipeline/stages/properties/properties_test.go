package properties

import (
	"testing"

	"github.com/5gon12eder/graphstudy-go/internal/enums"
)

func floatp(x float64) *float64 { return &x }

func TestRoundaboutAcceptsIntegral(t *testing.T) {
	got, err := roundabout(floatp(4.0))
	if err != nil || got == nil || *got != 4 {
		t.Errorf("roundabout(4.0) = (%v, %v), want (4, nil)", got, err)
	}
}

func TestRoundaboutRejectsFractional(t *testing.T) {
	if _, err := roundabout(floatp(4.3)); err == nil {
		t.Errorf("roundabout(4.3) should fail: not an integral vicinity")
	}
}

func TestRoundaboutNilPassesThrough(t *testing.T) {
	got, err := roundabout(nil)
	if got != nil || err != nil {
		t.Errorf("roundabout(nil) = (%v, %v), want (nil, nil)", got, err)
	}
}

func TestUintPtrConverts(t *testing.T) {
	i := 7
	got := uintPtr(&i)
	if got == nil || *got != 7 {
		t.Errorf("uintPtr(7) = %v, want pointer to 7", got)
	}
}

func TestUintPtrNil(t *testing.T) {
	if got := uintPtr(nil); got != nil {
		t.Errorf("uintPtr(nil) = %v, want nil", got)
	}
}

func TestPersistentNameRelocatesUnderDirectory(t *testing.T) {
	got := persistentName("/tmp/work/abc/hist.dat", "/tmp/work", "/data/properties")
	want := "/data/properties/abc/hist.dat"
	if got != want {
		t.Errorf("persistentName = %q, want %q", got, want)
	}
}

func TestPersistentNameFallsBackOnUnrelatedPaths(t *testing.T) {
	got := persistentName("/other/hist.dat", "/tmp/work", "/data/properties")
	want := "/data/properties/hist.dat"
	if got != want {
		t.Errorf("persistentName fallback = %q, want %q", got, want)
	}
}

func TestMetaFloatPtr(t *testing.T) {
	if p := metaFloatPtr(map[string]interface{}{"rms": 1.5}, "rms"); p == nil || *p != 1.5 {
		t.Errorf("metaFloatPtr(rms=1.5) = %v, want pointer to 1.5", p)
	}
	if p := metaFloatPtr(map[string]interface{}{}, "rms"); p != nil {
		t.Errorf("metaFloatPtr on missing key = %v, want nil", p)
	}
}

func TestKernelNameMapsDiscToBoxed(t *testing.T) {
	if got := kernelName(enums.KernelDisc); got != "BOXED" {
		t.Errorf("kernelName(KernelDisc) = %q, want %q", got, "BOXED")
	}
	if got := kernelName(enums.KernelCont); got != "GAUSSIAN" {
		t.Errorf("kernelName(KernelCont) = %q, want %q", got, "GAUSSIAN")
	}
}

func TestToolPath(t *testing.T) {
	s := &Stage{toolsDir: "/tools"}
	if got := s.toolPath("properties", "histogram"); got != "/tools/properties/histogram" {
		t.Errorf("toolPath = %q, want %q", got, "/tools/properties/histogram")
	}
	bare := &Stage{}
	if got := bare.toolPath("properties", "histogram"); got != "histogram" {
		t.Errorf("toolPath with empty toolsDir = %q, want %q", got, "histogram")
	}
}
