package baselines

import (
	"bytes"
	"encoding/gob"
	"os"
	"time"

	"github.com/5gon12eder/graphstudy-go/internal/enums"
	"github.com/5gon12eder/graphstudy-go/internal/store"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// huangParams is the persisted shape of a HuangContext's weights, the
// gob-encoded equivalent of the original driver's pickled
// AlternativeContextHuang (get_alternative_context/pickle_objects).
type huangParams struct {
	SavedAt time.Time
	Weights map[enums.Metric]float64
}

// SaveHuangParams writes ctx's weights to the store's Huang parameter
// file.
func SaveHuangParams(st *store.Store, ctx *HuangContext) error {
	if err := os.MkdirAll(st.ModelDir(), 0o755); err != nil {
		return xerrors.WrapFatal(err, "creating model directory")
	}
	params := huangParams{SavedAt: time.Now(), Weights: ctx.Weights}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&params); err != nil {
		return xerrors.WrapFatal(err, "encoding huang parameters")
	}
	if err := os.WriteFile(st.AltHuangParamsFile(), buf.Bytes(), 0o644); err != nil {
		return xerrors.WrapFatal(err, "writing %s", st.AltHuangParamsFile())
	}
	return nil
}

// LoadHuangParams restores a previously trained HuangContext's weights,
// or returns (nil, nil) if none has been persisted yet — mirroring
// get_alternative_context's "not new and os.path.exists(...)" guard.
func LoadHuangParams(st *store.Store) (*HuangContext, error) {
	data, err := os.ReadFile(st.AltHuangParamsFile())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, xerrors.WrapFatal(err, "reading %s", st.AltHuangParamsFile())
	}
	var params huangParams
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&params); err != nil {
		return nil, xerrors.WrapFatal(err, "decoding %s", st.AltHuangParamsFile())
	}
	ctx := NewHuangContext()
	for m, w := range params.Weights {
		ctx.Weights[m] = w
	}
	return ctx, nil
}
