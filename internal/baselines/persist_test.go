package baselines

import (
	"testing"

	"github.com/5gon12eder/graphstudy-go/internal/enums"
)

func TestSaveAndLoadHuangParamsRoundTrip(t *testing.T) {
	st := openTestStoreForHuang(t)
	ctx := NewHuangContext()
	ctx.Weights[enums.MetricCrossCount] = 0.9

	if err := SaveHuangParams(st, ctx); err != nil {
		t.Fatalf("SaveHuangParams: %v", err)
	}
	loaded, err := LoadHuangParams(st)
	if err != nil {
		t.Fatalf("LoadHuangParams: %v", err)
	}
	if loaded == nil || loaded.Weights[enums.MetricCrossCount] != 0.9 {
		t.Errorf("LoadHuangParams = %+v, want CrossCount weight 0.9", loaded)
	}
}

func TestLoadHuangParamsMissingReturnsNilNil(t *testing.T) {
	st := openTestStoreForHuang(t)
	loaded, err := LoadHuangParams(st)
	if err != nil {
		t.Fatalf("LoadHuangParams: %v", err)
	}
	if loaded != nil {
		t.Errorf("LoadHuangParams with nothing persisted = %v, want nil", loaded)
	}
}
