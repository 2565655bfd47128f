package config

import "github.com/5gon12eder/graphstudy-go/internal/enums"

// ParseProperties reads properties-disc.cfg or properties-cont.cfg; both
// share the same grammar.
func ParseProperties(r *Reader) (map[enums.Property]SizeSet, error) {
	return parseBySize(r, propertyCfgNames, "property")
}

// DefaultPropertiesDisc mirrors the original driver: every property, at
// every size, measured with the discrete (histogram) kernel.
func DefaultPropertiesDisc() map[enums.Property]SizeSet {
	all := AllSizes()
	out := make(map[enums.Property]SizeSet)
	for _, p := range enums.AllProperties() {
		out[p] = all
	}
	return out
}

// DefaultPropertiesCont mirrors the original driver: no property is
// measured with the continuous (sliding-average) kernel unless
// configured explicitly.
func DefaultPropertiesCont() map[enums.Property]SizeSet {
	return make(map[enums.Property]SizeSet)
}

// ParseMetrics reads metrics.cfg.
func ParseMetrics(r *Reader) (map[enums.Metric]SizeSet, error) {
	return parseBySize(r, metricCfgNames, "metric")
}

// DefaultMetrics mirrors the original driver: every metric, at every
// size.
func DefaultMetrics() map[enums.Metric]SizeSet {
	all := AllSizes()
	out := make(map[enums.Metric]SizeSet)
	for m := range metricCfgNames {
		out[metricCfgNames[m]] = all
	}
	return out
}
