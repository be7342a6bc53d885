package tools

import (
	"flag"
	"io"
)

type ClassifierFlags struct {
	Input                     *string  `json:"input"`
	Output                    *string  `json:"output"`
	Config                    *string  `json:"config"`
	ZOffset                   *float64 `json:"z_offset"`
	Recenter                  *bool    `json:"recenter"`
	FolderProcessing          *bool    `json:"folder"`
	RecursiveFolderProcessing *bool    `json:"recursive"`
	GridResolution            *float64 `json:"grid_resolution"`
	EigenNeighbors            *int     `json:"eigen_neighbors"`
	RadiusNeighbors           *float64 `json:"radius_neighbors"`
	RadiusDTM                 *float64 `json:"radius_dtm"`
	ColorFeatures             *bool    `json:"color_features"`
	Strategy                  *string  `json:"strategy"`
	GraphCutNeighbors         *int     `json:"graph_cut_neighbors"`
	Smoothness                *float64 `json:"smoothness"`
	Subdivisions              *int     `json:"subdivisions"`
	MaxIterations             *int     `json:"max_iterations"`
	Workers                   *int     `json:"workers"`
	Report                    *string  `json:"report"`
}

type FlagsForClassifier struct {
	ClassifierFlags
	Silent       *bool
	LogTimestamp *bool
	Verbosity    *int
	Help         *bool
	Version      *bool
	Args         []string // positional arguments left after the flags

	set     map[string]bool
	flagSet *flag.FlagSet
}

// Prints the usage of every flag to w
func (f *FlagsForClassifier) PrintDefaults(w io.Writer) {
	f.flagSet.SetOutput(w)
	f.flagSet.PrintDefaults()
}

// Returns true if the flag, or its shorthand, was given on the command line
func (f *FlagsForClassifier) IsSet(name string) bool {
	return f.set[name]
}

func ParseFlagsForClassifier(args []string) FlagsForClassifier {
	flagCommand := flag.NewFlagSet("classifier", flag.ExitOnError)

	input := defineStringFlagCommand(flagCommand, "input", "i", "", "Specifies the input ply/xyz file or folder. Can also be given as the first positional argument.")
	output := defineStringFlagCommand(flagCommand, "output", "o", "classification.ply", "Specifies the output ply file, or the output folder when folder processing is enabled.")
	config := defineStringFlagCommand(flagCommand, "config", "c", "", "JSON classification configuration. Flags given on the command line override its values.")
	zOffset := defineFloat64FlagCommand(flagCommand, "zoffset", "z", 0, "Vertical offset to apply to points, in meters.")
	recenter := defineBoolFlagCommand(flagCommand, "recenter", "", false, "Moves the cloud origin to its bounding box minimum while classifying. Output keeps the input coordinates.")
	folderProcessing := defineBoolFlagCommand(flagCommand, "folder", "f", false, "Enables processing of all ply/xyz files from input folder. Input must be a folder if specified")
	recursiveFolderProcessing := defineBoolFlagCommand(flagCommand, "recursive", "r", false, "Enables recursive lookup for all ply/xyz files inside the subfolders")
	gridResolution := defineFloat64FlagCommand(flagCommand, "grid-resolution", "g", 0.34, "Size in meters of the planimetric grid cells.")
	eigenNeighbors := defineIntFlagCommand(flagCommand, "eigen-neighbors", "k", 6, "Number of nearest neighbors of the local eigen analysis.")
	radiusNeighbors := defineFloat64FlagCommand(flagCommand, "radius-neighbors", "", 1.7, "Radius in meters of the vertical dispersion and of the local smoothing.")
	radiusDTM := defineFloat64FlagCommand(flagCommand, "radius-dtm", "", 15.0, "Radius in meters of the terrain model used by the elevation feature.")
	colorFeatures := defineBoolFlagCommand(flagCommand, "color-features", "", false, "Adds hue, saturation and value features when the input has colors.")
	strategy := defineStringFlagCommand(flagCommand, "strategy", "", "LOCAL_SMOOTHING", "Classification strategy, can be 'RAW', 'LOCAL_SMOOTHING' or 'GRAPH_CUT'.")
	graphCutNeighbors := defineIntFlagCommand(flagCommand, "graph-cut-neighbors", "", 12, "Number of nearest neighbors linked to each point by the graph cut.")
	smoothness := defineFloat64FlagCommand(flagCommand, "smoothness", "", 0.2, "Graph cut penalty paid by neighbors with different labels.")
	subdivisions := defineIntFlagCommand(flagCommand, "subdivisions", "", 0, "Number of planimetric tiles solved independently by the graph cut, 0 means the default of 4.")
	maxIterations := defineIntFlagCommand(flagCommand, "max-iterations", "", 10, "Maximum number of alpha expansion cycles of the graph cut.")
	workers := defineIntFlagCommand(flagCommand, "workers", "w", 0, "Number of worker goroutines, 0 means one per CPU.")
	report := defineStringFlagCommand(flagCommand, "report", "", "", "Writes a JSON classification report to the given file.")

	silent := defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages.")
	logTimestamp := defineBoolFlagCommand(flagCommand, "timestamp", "t", false, "Adds timestamp to log messages.")
	verbosity := defineIntFlagCommand(flagCommand, "verbosity", "", 0, "Verbosity of the solver logs, 2 logs every graph cut tile.")
	help := defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help.")
	version := defineBoolFlagCommand(flagCommand, "version", "v", false, "Displays the version of the classifier.")

	flagCommand.Parse(args)

	shorthands := map[string]string{
		"i": "input", "o": "output", "c": "config", "z": "zoffset", "f": "folder", "r": "recursive",
		"g": "grid-resolution", "k": "eigen-neighbors", "w": "workers", "s": "silent", "t": "timestamp",
		"h": "help", "v": "version",
	}
	set := make(map[string]bool)
	flagCommand.Visit(func(f *flag.Flag) {
		if long, ok := shorthands[f.Name]; ok {
			set[long] = true
		} else {
			set[f.Name] = true
		}
	})

	return FlagsForClassifier{
		ClassifierFlags: ClassifierFlags{
			Input:                     input,
			Output:                    output,
			Config:                    config,
			ZOffset:                   zOffset,
			Recenter:                  recenter,
			FolderProcessing:          folderProcessing,
			RecursiveFolderProcessing: recursiveFolderProcessing,
			GridResolution:            gridResolution,
			EigenNeighbors:            eigenNeighbors,
			RadiusNeighbors:           radiusNeighbors,
			RadiusDTM:                 radiusDTM,
			ColorFeatures:             colorFeatures,
			Strategy:                  strategy,
			GraphCutNeighbors:         graphCutNeighbors,
			Smoothness:                smoothness,
			Subdivisions:              subdivisions,
			MaxIterations:             maxIterations,
			Workers:                   workers,
			Report:                    report,
		},
		Silent:       silent,
		LogTimestamp: logTimestamp,
		Verbosity:    verbosity,
		Help:         help,
		Version:      version,
		Args:         flagCommand.Args(),
		set:          set,
		flagSet:      flagCommand,
	}
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineFloat64FlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flagCommand.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
