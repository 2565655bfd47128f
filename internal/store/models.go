// Package store implements the artifact store (spec.md §4.1): a single
// embedded SQL database (SQLite by default, Postgres as an alternative)
// plus a file tree rooted at a tag-marked data directory. Every entity
// from spec.md §3 is modeled here as a GORM type; Store provides the
// generic Select/IDMatch/AllocateUniqueLayoutID operations and the
// file-naming rules the rest of the pipeline builds on.
package store

import (
	"time"

	"github.com/5gon12eder/graphstudy-go/internal/enums"
	"github.com/5gon12eder/graphstudy-go/internal/idfp"
)

// Graph is a grown or imported graph instance, the root of everything
// else in the store.
type Graph struct {
	ID          idfp.ID `gorm:"primaryKey;type:blob;size:16"`
	Generator   enums.Generator
	File        string
	Nodes       uint
	Edges       uint
	Native      bool
	Seed        []byte
	Fingerprint idfp.Fingerprint `gorm:"type:blob"`
	Poisoned    bool
	CreatedAt   time.Time
}

func (Graph) TableName() string { return "graphs" }

// Layout is either a proper (algorithm-produced) or derived (interpolated
// or worsened) drawing of a Graph. Layout is non-nil iff this is a
// proper layout.
type Layout struct {
	ID          idfp.ID `gorm:"primaryKey;type:blob;size:16"`
	GraphID     idfp.ID `gorm:"type:blob;size:16;index"`
	Layout      *enums.Layout
	File        string
	Width       *float64
	Height      *float64
	Seed        []byte
	Fingerprint idfp.Fingerprint `gorm:"type:blob"`
	CreatedAt   time.Time
}

func (Layout) TableName() string { return "layouts" }

// IsProper reports whether this layout was produced directly by a named
// algorithm rather than derived from other layouts.
func (l Layout) IsProper() bool { return l.Layout != nil }

// InterLayout records that Layout ID was produced by interpolating
// between Parent1st and Parent2nd at Rate using Method.
type InterLayout struct {
	ID        idfp.ID `gorm:"primaryKey;type:blob;size:16"`
	Parent1st idfp.ID `gorm:"type:blob;size:16;index"`
	Parent2nd idfp.ID `gorm:"type:blob;size:16;index"`
	Method    enums.LayInter
	Rate      float64
}

func (InterLayout) TableName() string { return "inter_layouts" }

// WorseLayout records that Layout ID was produced by worsening Parent at
// Rate using Method.
type WorseLayout struct {
	ID     idfp.ID `gorm:"primaryKey;type:blob;size:16"`
	Parent idfp.ID `gorm:"type:blob;size:16;index"`
	Method enums.LayWorse
	Rate   float64
}

func (WorseLayout) TableName() string { return "worse_layouts" }

// PropertyDisc is one discrete-kernel (histogram) measurement of a
// Property on a Layout.
type PropertyDisc struct {
	ID               uint `gorm:"primaryKey;autoIncrement"`
	LayoutID         idfp.ID `gorm:"type:blob;size:16;index"`
	Property         enums.Property
	Vicinity         *uint
	Size             float64
	Minimum          float64
	Maximum          float64
	Mean             float64
	RMS              float64
	EntropyIntercept float64
	EntropySlope     float64
}

func (PropertyDisc) TableName() string { return "properties_disc" }

// PropertyCont is one continuous-kernel (sliding-average) measurement of
// a Property on a Layout.
type PropertyCont struct {
	ID       uint    `gorm:"primaryKey;autoIncrement"`
	LayoutID idfp.ID `gorm:"type:blob;size:16;index"`
	Property enums.Property
	Vicinity *uint
	Size     float64
	Minimum  float64
	Maximum  float64
	Mean     float64
	RMS      float64
}

func (PropertyCont) TableName() string { return "properties_cont" }

// Histogram is one bincount's worth of inner data for a PropertyDisc row.
type Histogram struct {
	ID             uint `gorm:"primaryKey;autoIncrement"`
	PropertyDiscID uint `gorm:"index"`
	Bincount       uint
	Binwidth       float64
	Binning        enums.Kernel
	Entropy        *float64
	File           *string
}

func (Histogram) TableName() string { return "histograms" }

// SlidingAverage is one sigma's worth of inner data for a PropertyCont
// row.
type SlidingAverage struct {
	ID             uint `gorm:"primaryKey;autoIncrement"`
	PropertyContID uint `gorm:"index"`
	Sigma          float64
	Points         uint
	Entropy        *float64
	File           *string
}

func (SlidingAverage) TableName() string { return "sliding_averages" }

// MajorAxis and MinorAxis record the principal-component orientation of
// a layout's embedding, emitted alongside PRINCOMP1ST/PRINCOMP2ND
// property rows.
type MajorAxis struct {
	LayoutID idfp.ID `gorm:"primaryKey;type:blob;size:16"`
	X        float64
	Y        float64
}

func (MajorAxis) TableName() string { return "major_axes" }

type MinorAxis struct {
	LayoutID idfp.ID `gorm:"primaryKey;type:blob;size:16"`
	X        float64
	Y        float64
}

func (MinorAxis) TableName() string { return "minor_axes" }

// Metric is one scalar-valued quality measurement of a Layout.
type Metric struct {
	ID       uint `gorm:"primaryKey;autoIncrement"`
	LayoutID idfp.ID `gorm:"type:blob;size:16;index"`
	Metric   enums.Metric
	Value    float64
}

func (Metric) TableName() string { return "metrics" }

// TestScore is one comparator's scalar judgment of an ordered pair of
// layouts: the ground-truth label (TestExpected) or a model/baseline
// prediction.
type TestScore struct {
	ID    uint `gorm:"primaryKey;autoIncrement"`
	LHS   idfp.ID `gorm:"type:blob;size:16;index"`
	RHS   idfp.ID `gorm:"type:blob;size:16;index"`
	Test  enums.Test
	Value float64
}

func (TestScore) TableName() string { return "test_scores" }

// ToolPerformance is the ambient observability record of one successful
// subprocess invocation, per spec.md §4.1.
type ToolPerformance struct {
	ID             uint `gorm:"primaryKey;autoIncrement"`
	Tool           string
	ElapsedSeconds float64
	RecordedAt     time.Time
}

func (ToolPerformance) TableName() string { return "tool_performances" }

// AllModels lists every GORM model for AutoMigrate, in dependency order
// (a row may only reference a row in a table listed before it).
func AllModels() []interface{} {
	return []interface{}{
		&Graph{},
		&Layout{},
		&InterLayout{},
		&WorseLayout{},
		&PropertyDisc{},
		&PropertyCont{},
		&Histogram{},
		&SlidingAverage{},
		&MajorAxis{},
		&MinorAxis{},
		&Metric{},
		&TestScore{},
		&ToolPerformance{},
	}
}
