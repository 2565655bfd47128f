package graphs

import "github.com/5gon12eder/graphstudy-go/internal/enums"

// genPrograms and genFlags mirror the original driver's _GEN_PROGS /
// _GEN_FLAGS tables (original_source/driver/graphs.py): the external
// generator binary invoked for each non-import generator, plus any fixed
// flags that distinguish generators sharing one binary.
var genPrograms = map[enums.Generator]string{
	enums.GenLINDENMAYER: "lindenmayer",
	enums.GenQUASI3D:     "quasi",
	enums.GenQUASI4D:     "quasi",
	enums.GenQUASI5D:     "quasi",
	enums.GenQUASI6D:     "quasi",
	enums.GenGRID:        "grid",
	enums.GenTORUS1:      "grid",
	enums.GenTORUS2:      "grid",
	enums.GenMOSAIC1:     "mosaic",
	enums.GenMOSAIC2:     "mosaic",
	enums.GenBOTTLE:      "bottle",
	enums.GenTREE:        "tree",
	enums.GenRANDGEO:     "randgeo",
}

var genFlags = map[enums.Generator][]string{
	enums.GenLINDENMAYER: nil,
	enums.GenQUASI3D:     {"--hyperdim=3"},
	enums.GenQUASI4D:     {"--hyperdim=4"},
	enums.GenQUASI5D:     {"--hyperdim=5"},
	enums.GenQUASI6D:     {"--hyperdim=6"},
	enums.GenGRID:        nil,
	enums.GenTORUS1:      {"--torus=1"},
	enums.GenTORUS2:      {"--torus=2"},
	enums.GenMOSAIC1:     nil,
	enums.GenMOSAIC2:     {"--symmetric"},
	enums.GenBOTTLE:      nil,
	enums.GenTREE:        nil,
	enums.GenRANDGEO:     nil,
}
