package layouts

import "testing"

func TestMetaFloatPtrPresent(t *testing.T) {
	p := metaFloatPtr(map[string]interface{}{"rate": 0.5}, "rate")
	if p == nil || *p != 0.5 {
		t.Errorf("metaFloatPtr(rate=0.5) = %v, want pointer to 0.5", p)
	}
}

func TestMetaFloatPtrAbsent(t *testing.T) {
	if p := metaFloatPtr(map[string]interface{}{}, "rate"); p != nil {
		t.Errorf("metaFloatPtr on missing field = %v, want nil", p)
	}
}

func TestMetaSeedDecodesHex(t *testing.T) {
	b := metaSeed(map[string]interface{}{"seed": "cafe"})
	if len(b) != 2 {
		t.Errorf("metaSeed(\"cafe\") length = %d, want 2", len(b))
	}
}

func TestToolPathJoinsSubdir(t *testing.T) {
	s := &Stage{toolsDir: "/tools"}
	if got := s.toolPath("layouts", "force"); got != "/tools/layouts/force" {
		t.Errorf("toolPath = %q, want %q", got, "/tools/layouts/force")
	}
}

func TestToolPathFallsBackToBareName(t *testing.T) {
	s := &Stage{}
	if got := s.toolPath("layouts", "force"); got != "force" {
		t.Errorf("toolPath with empty toolsDir = %q, want %q", got, "force")
	}
}

func TestAllDesirableLayoutsIncludesNative(t *testing.T) {
	found := false
	for _, l := range allDesirableLayouts() {
		if l.String() == "native" {
			found = true
		}
	}
	if !found {
		t.Errorf("allDesirableLayouts() should include NATIVE")
	}
}

func TestLayoutProgramsAndFlagsAgreeOnKeys(t *testing.T) {
	for k := range layoutPrograms {
		if _, ok := layoutFlags[k]; !ok {
			t.Errorf("layout %v has a program but no flags entry", k)
		}
	}
}
