package nn

import (
	"bytes"
	"encoding/gob"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/5gon12eder/graphstudy-go/internal/store"
	"github.com/5gon12eder/graphstudy-go/internal/xerrors"
)

// Architecture is the human-readable description of a Model's shape,
// persisted as YAML alongside its binary weights — mirroring the
// original driver's use of Keras's model.to_yaml() for the same purpose
// (original_source/driver/model.py:_save_weighted_model).
type Architecture struct {
	LayoutDims int       `yaml:"layoutDims"`
	GraphDims  int       `yaml:"graphDims"`
	Hidden1    int       `yaml:"hidden1"`
	Hidden2    int       `yaml:"hidden2"`
	SavedAt    time.Time `yaml:"savedAt"`
}

// Architecture describes m's shape.
func (m *Model) Architecture() Architecture {
	return Architecture{LayoutDims: m.LayoutDims, GraphDims: m.GraphDims, Hidden1: m.Hidden1, Hidden2: m.Hidden2}
}

// SaveArchitecture writes m's shape as YAML to the store's model
// architecture file.
func SaveArchitecture(st *store.Store, m *Model) error {
	arch := m.Architecture()
	arch.SavedAt = time.Now()
	if err := os.MkdirAll(st.ModelDir(), 0o755); err != nil {
		return xerrors.WrapFatal(err, "creating model directory")
	}
	data, err := yaml.Marshal(&arch)
	if err != nil {
		return xerrors.WrapFatal(err, "marshaling model architecture")
	}
	if err := os.WriteFile(st.ModelArchitectureFile(), data, 0o644); err != nil {
		return xerrors.WrapFatal(err, "writing %s", st.ModelArchitectureFile())
	}
	return nil
}

// LoadArchitecture restores a previously saved Architecture, or returns
// (nil, nil) if none has been persisted yet.
func LoadArchitecture(st *store.Store) (*Architecture, error) {
	data, err := os.ReadFile(st.ModelArchitectureFile())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, xerrors.WrapFatal(err, "reading %s", st.ModelArchitectureFile())
	}
	var arch Architecture
	if err := yaml.Unmarshal(data, &arch); err != nil {
		return nil, xerrors.WrapFatal(err, "parsing %s", st.ModelArchitectureFile())
	}
	return &arch, nil
}

// weightsBlob is the raw binary payload of every trainable parameter,
// encoded as float32 to keep the persisted file compact — spec.md §4.10
// calls for "weights as a binary blob"; the original's own weight files
// are likewise single-precision.
type weightsBlob struct {
	W1, W2, WAux, WOut [][]float32
	B1, B2, BAux, BOut []float32
}

// SaveWeights writes m's trainable parameters as a gob-encoded blob to
// the store's model weights file.
func SaveWeights(st *store.Store, m *Model) error {
	if err := os.MkdirAll(st.ModelDir(), 0o755); err != nil {
		return xerrors.WrapFatal(err, "creating model directory")
	}
	blob := weightsBlob{
		W1: toFloat32Matrix(m.Dense1.W), B1: toFloat32Vector(m.Dense1.B),
		W2: toFloat32Matrix(m.Dense2.W), B2: toFloat32Vector(m.Dense2.B),
		WAux: toFloat32Matrix(m.DenseAux.W), BAux: toFloat32Vector(m.DenseAux.B),
		WOut: toFloat32Matrix(m.DenseOut.W), BOut: toFloat32Vector(m.DenseOut.B),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&blob); err != nil {
		return xerrors.WrapFatal(err, "encoding model weights")
	}
	if err := os.WriteFile(st.ModelWeightsFile(), buf.Bytes(), 0o644); err != nil {
		return xerrors.WrapFatal(err, "writing %s", st.ModelWeightsFile())
	}
	return nil
}

// LoadWeights restores a Model of the shape described by arch from the
// store's persisted weights file.
func LoadWeights(st *store.Store, arch *Architecture) (*Model, error) {
	data, err := os.ReadFile(st.ModelWeightsFile())
	if err != nil {
		return nil, xerrors.WrapFatal(err, "reading %s", st.ModelWeightsFile())
	}
	var blob weightsBlob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&blob); err != nil {
		return nil, xerrors.WrapFatal(err, "decoding %s", st.ModelWeightsFile())
	}
	m := &Model{
		LayoutDims: arch.LayoutDims, GraphDims: arch.GraphDims, Hidden1: arch.Hidden1, Hidden2: arch.Hidden2,
		Dense1:   &dense{W: toFloat64Matrix(blob.W1), B: toFloat64Vector(blob.B1)},
		Dense2:   &dense{W: toFloat64Matrix(blob.W2), B: toFloat64Vector(blob.B2)},
		DenseAux: &dense{W: toFloat64Matrix(blob.WAux), B: toFloat64Vector(blob.BAux)},
		DenseOut: &dense{W: toFloat64Matrix(blob.WOut), B: toFloat64Vector(blob.BOut)},
	}
	return m, nil
}

func toFloat32Matrix(m [][]float64) [][]float32 {
	out := make([][]float32, len(m))
	for i, row := range m {
		out[i] = toFloat32Vector(row)
	}
	return out
}

func toFloat32Vector(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func toFloat64Matrix(m [][]float32) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = toFloat64Vector(row)
	}
	return out
}

func toFloat64Vector(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
