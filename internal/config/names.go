package config

import "github.com/5gon12eder/graphstudy-go/internal/enums"

// The configuration file grammar uses the enum members' original
// upper-case names, independent of the lower-case kebab names used for
// JSON and for the Stringer implementations in package enums.

var generatorCfgNames = map[string]enums.Generator{
	"SMTAPE": enums.GenSMTAPE, "PSADMIT": enums.GenPSADMIT, "GRENOBLE": enums.GenGRENOBLE,
	"BCSPWR": enums.GenBCSPWR, "RANDDAG": enums.GenRANDDAG, "NORTH": enums.GenNORTH, "ROME": enums.GenROME,
	"IMPORT": enums.GenIMPORT, "LINDENMAYER": enums.GenLINDENMAYER, "QUASI3D": enums.GenQUASI3D,
	"QUASI4D": enums.GenQUASI4D, "QUASI5D": enums.GenQUASI5D, "QUASI6D": enums.GenQUASI6D,
	"GRID": enums.GenGRID, "TORUS1": enums.GenTORUS1, "TORUS2": enums.GenTORUS2,
	"MOSAIC1": enums.GenMOSAIC1, "MOSAIC2": enums.GenMOSAIC2, "BOTTLE": enums.GenBOTTLE,
	"TREE": enums.GenTREE, "RANDGEO": enums.GenRANDGEO,
}

var layoutCfgNames = map[string]enums.Layout{
	"NATIVE": enums.LayoutNative, "FMMM": enums.LayoutFMMM, "STRESS": enums.LayoutStress,
	"DAVIDSON_HAREL": enums.LayoutDavidsonHarel, "SPRING_EMBEDDER_KK": enums.LayoutSpringEmbedderKK,
	"PIVOT_MDS": enums.LayoutPivotMDS, "SUGIYAMA": enums.LayoutSugiyama,
	"RANDOM_UNIFORM": enums.LayoutRandomUniform, "RANDOM_NORMAL": enums.LayoutRandomNormal,
	"PHANTOM": enums.LayoutPhantom,
}

var layInterCfgNames = map[string]enums.LayInter{
	"LINEAR": enums.InterLinear, "XLINEAR": enums.InterXLinear,
}

var layWorseCfgNames = map[string]enums.LayWorse{
	"FLIP_NODES": enums.WorseFlipNodes, "FLIP_EDGES": enums.WorseFlipEdges,
	"MOVLSQ": enums.WorseMovLSQ, "PERTURB": enums.WorsePerturb,
}

var propertyCfgNames = map[string]enums.Property{
	"RDF_GLOBAL": enums.PropRDFGlobal, "RDF_LOCAL": enums.PropRDFLocal, "ANGULAR": enums.PropAngular,
	"EDGE_LENGTH": enums.PropEdgeLength, "PRINCOMP1ST": enums.PropPrinComp1, "PRINCOMP2ND": enums.PropPrinComp2,
	"TENSION": enums.PropTension,
}

var metricCfgNames = map[string]enums.Metric{
	"STRESS_KK": enums.MetricStressKK, "STRESS_FIT_NODESEP": enums.MetricStressFitNodesep,
	"STRESS_FIT_SCALE": enums.MetricStressFitScale, "CROSS_COUNT": enums.MetricCrossCount,
	"CROSS_RESOLUTION": enums.MetricCrossResolution, "ANGULAR_RESOLUTION": enums.MetricAngularRes,
	"EDGE_LENGTH_STDEV": enums.MetricEdgeLengthStdev,
}
