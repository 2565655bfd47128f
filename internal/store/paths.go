package store

import (
	"fmt"
	"path/filepath"

	"github.com/5gon12eder/graphstudy-go/internal/enums"
	"github.com/5gon12eder/graphstudy-go/internal/idfp"
)

// GraphFileSuffix and LayoutFileSuffix are the on-disk extensions for
// compressed graph/layout XML documents, matching the original driver's
// GRAPH_FILE_SUFFIX/LAYOUT_FILE_SUFFIX constants.
const (
	GraphFileSuffix  = ".xml.gz"
	LayoutFileSuffix = ".xml.gz"
)

// GraphFilePath returns the canonical path for a graph file:
// graphs/{id}-{generator}.xml.gz.
func (s *Store) GraphFilePath(id idfp.ID, gen enums.Generator) string {
	return filepath.Join(s.DataDir, "graphs", fmt.Sprintf("%s-%s%s", id, gen, GraphFileSuffix))
}

// LayoutFilePath returns the canonical path for a layout file:
// layouts/{graph-id}/{layout-id}[-{kind}].xml.gz. kind is empty for
// proper layouts named by their enums.Layout, or a short derived-layout
// tag ("inter"/"worse") otherwise.
func (s *Store) LayoutFilePath(graphID, layoutID idfp.ID, kind string) string {
	name := layoutID.String()
	if kind != "" {
		name += "-" + kind
	}
	return filepath.Join(s.DataDir, "layouts", graphID.String(), name+LayoutFileSuffix)
}

// PropertyDir returns the canonical directory for a layout's property
// data: properties/{id[:2]}/{id[2:]}/{property}/, sharded by the first
// byte of the layout id to keep any one directory from growing
// unbounded.
func (s *Store) PropertyDir(layoutID idfp.ID, prop enums.Property) string {
	full := layoutID.String()
	return filepath.Join(s.DataDir, "properties", full[:2], full[2:], prop.String())
}

// HistogramFileName returns the conventional basename for one bincount's
// histogram data file.
func HistogramFileName(bincount uint) string {
	return fmt.Sprintf("histogram-%d.dat.gz", bincount)
}

// SlidingAverageFileName returns the conventional basename for one
// sigma's sliding-average data file.
func SlidingAverageFileName(sigma float64) string {
	return fmt.Sprintf("gaussian-%g.dat.gz", sigma)
}

// ModelDir, ModelFeaturesFile, ModelWeightsFile, ModelNormalizersFile,
// and AltHuangParamsFile are the canonical paths for the discriminator
// model's persisted artifacts, mirroring the original driver's
// Manager.nndir/nn_features/nn_model/nn_weights/alt_huang_params
// properties.
func (s *Store) ModelDir() string { return filepath.Join(s.DataDir, "model") }

func (s *Store) ModelArchitectureFile() string { return filepath.Join(s.ModelDir(), "architecture.yaml") }
func (s *Store) ModelWeightsFile() string      { return filepath.Join(s.ModelDir(), "weights.gob") }
func (s *Store) ModelNormalizersFile() string  { return filepath.Join(s.ModelDir(), "normalizers.gob") }
func (s *Store) ModelFeaturesFile() string     { return filepath.Join(s.ModelDir(), "features.gob") }
func (s *Store) AltHuangParamsFile() string    { return filepath.Join(s.ModelDir(), "huang-params.gob") }
