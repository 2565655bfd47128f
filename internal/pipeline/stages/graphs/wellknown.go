package graphs

import (
	"github.com/5gon12eder/graphstudy-go/internal/config"
	"github.com/5gon12eder/graphstudy-go/internal/enums"
)

// wellKnownSources mirrors the original driver's bundled imports.json
// resource (`get_well_known_import_sources` in original_source's
// imports.py): fixed archive locations for the import generators that
// ship with the system, as opposed to the user-configurable generic
// IMPORT generator whose sources come from the configuration directory's
// own imports.json.
var wellKnownSources = map[enums.Generator]config.ImportSourceSpec{
	enums.GenROME: {
		Kind: "tar", Format: "graphml",
		URL: "https://www.graphdrawing.org/data/rome.tgz", Pattern: "*.graphml",
	},
	enums.GenNORTH: {
		Kind: "tar", Format: "graphml",
		URL: "https://www.graphdrawing.org/data/north.tgz", Pattern: "*.graphml",
	},
	enums.GenRANDDAG: {
		Kind: "tar", Format: "graphml",
		URL: "https://www.graphdrawing.org/data/randdag.tgz", Pattern: "*.graphml",
	},
	enums.GenSMTAPE: {
		Kind: "tar", Format: "matrix-market",
		URL: "https://sparse.tamu.edu/mat/HB/bcsstm27.tar.gz", Pattern: "*.mtx",
	},
	enums.GenPSADMIT: {
		Kind: "tar", Format: "matrix-market",
		URL: "https://sparse.tamu.edu/mat/HB/psadmit.tar.gz", Pattern: "*.mtx",
	},
	enums.GenGRENOBLE: {
		Kind: "tar", Format: "matrix-market",
		URL: "https://sparse.tamu.edu/mat/Grenoble/grenoble.tar.gz", Pattern: "*.mtx",
	},
	enums.GenBCSPWR: {
		Kind: "tar", Format: "matrix-market",
		URL: "https://sparse.tamu.edu/mat/HB/bcspwr.tar.gz", Pattern: "*.mtx",
	},
}
