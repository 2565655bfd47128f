package layouts

import "github.com/5gon12eder/graphstudy-go/internal/enums"

// layoutPrograms and layoutFlags mirror the original driver's
// _LAYOUT_PROGS / _LAYOUT_FLAGS tables (original_source/driver/layouts.py).
// NATIVE has no program: it is produced by symlinking the graph file
// itself rather than invoking a subprocess.
var layoutPrograms = map[enums.Layout]string{
	enums.LayoutFMMM:             "force",
	enums.LayoutStress:           "force",
	enums.LayoutDavidsonHarel:    "force",
	enums.LayoutSpringEmbedderKK: "force",
	enums.LayoutPivotMDS:         "force",
	enums.LayoutSugiyama:         "sugiyama",
	enums.LayoutPhantom:          "phantom",
	enums.LayoutRandomUniform:    "random",
	enums.LayoutRandomNormal:     "random",
}

var layoutFlags = map[enums.Layout][]string{
	enums.LayoutFMMM:             {"--algorithm=FMMM"},
	enums.LayoutStress:           {"--algorithm=STRESS"},
	enums.LayoutDavidsonHarel:    {"--algorithm=DAVIDSON_HAREL"},
	enums.LayoutSpringEmbedderKK: {"--algorithm=SPRING_EMBEDDER_KK"},
	enums.LayoutPivotMDS:         {"--algorithm=PIVOT_MDS"},
	enums.LayoutSugiyama:         nil,
	enums.LayoutPhantom:          nil,
	enums.LayoutRandomUniform:    {"--distribution=UNIFORM"},
	enums.LayoutRandomNormal:     {"--distribution=NORMAL"},
}

// allDesirableLayouts lists every enums.Layout that do_layouts may be
// asked to produce, in a stable order so progress logging and
// iteration order don't depend on Go's random map order. This is wider
// than enums.AllProperLayouts(): PHANTOM and the two RANDOM_* kinds are
// still produced by invoking a subprocess even though they're flagged
// as garbage/derived layouts for interpolation/worsening purposes.
func allDesirableLayouts() []enums.Layout {
	return []enums.Layout{
		enums.LayoutNative,
		enums.LayoutFMMM, enums.LayoutStress, enums.LayoutDavidsonHarel,
		enums.LayoutSpringEmbedderKK, enums.LayoutPivotMDS, enums.LayoutSugiyama,
		enums.LayoutPhantom, enums.LayoutRandomUniform, enums.LayoutRandomNormal,
	}
}
