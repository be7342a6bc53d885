package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ecopia-map/cloud_classifier/internal/classification"
	"github.com/ecopia-map/cloud_classifier/internal/config"
	"github.com/ecopia-map/cloud_classifier/pkg"
	"github.com/ecopia-map/cloud_classifier/pkg/algorithm_manager/std_algorithm_manager"
	"github.com/ecopia-map/cloud_classifier/tools"
	"github.com/golang/glog"
)

const VERSION = "1.0.0"

func main() {
	flags := tools.ParseFlagsForClassifier(os.Args[1:])
	setupGlog(&flags)
	defer glog.Flush()

	// Prints the command line flag description
	if *flags.Help {
		showHelp(&flags)
		return
	}

	if *flags.Version {
		printVersion()
		return
	}

	// set logging and timestamp logging
	if *flags.Silent {
		tools.DisableLogger()
	}
	if !*flags.LogTimestamp {
		tools.DisableLoggerTimestamp()
	}

	glog.Infoln("flags", tools.FmtJSONString(flags.ClassifierFlags))

	opts, err := buildOptions(&flags)
	if err != nil {
		glog.Fatal("Error parsing input parameters: ", err)
	}

	// Validate ClassifierOptions
	if msg, res := validateOptions(opts); !res {
		glog.Fatal("Error parsing input parameters: " + msg)
	}

	// Starts the classifier
	timer := tools.NewTimer()
	classifier := pkg.NewClassifier(tools.NewStandardFileFinder(), std_algorithm_manager.NewAlgorithmManager(opts))
	if _, err := classifier.RunClassifier(opts); err != nil {
		glog.Fatal("Error while classifying: ", err)
	}
	tools.LogOutput(tools.FormatDone("Classification", timer.Elapsed()))
}

// glog flags live on the default flag set, they are driven by the classifier flags
func setupGlog(flags *tools.FlagsForClassifier) {
	_ = flag.CommandLine.Parse(nil)
	if *flags.Silent {
		_ = flag.Set("stderrthreshold", "ERROR")
	} else {
		_ = flag.Set("logtostderr", "true")
	}
	_ = flag.Set("v", strconv.Itoa(*flags.Verbosity))
}

// Merges the default options, the configuration file and the command line flags, in this order
func buildOptions(flags *tools.FlagsForClassifier) (*classification.ClassifierOptions, error) {
	opts := classification.DefaultOptions()

	configPath := *flags.Config
	if configPath == "" {
		if defaultPath := filepath.Join(tools.GetRootFolder(), config.DefaultConfigPath); tools.IsRegularFile(defaultPath) {
			configPath = defaultPath
		}
	}
	if configPath != "" {
		cfg, err := config.LoadClassificationConfig(configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.ApplyTo(opts); err != nil {
			return nil, err
		}
		glog.Infoln("configuration loaded from", configPath)
	}

	applyFlags(flags, opts)
	return opts, nil
}

func applyFlags(flags *tools.FlagsForClassifier, opts *classification.ClassifierOptions) {
	// the input file can be given as first positional argument, the reference data set is used otherwise
	switch {
	case flags.IsSet("input"):
		opts.Input = *flags.Input
	case len(flags.Args) > 0:
		opts.Input = flags.Args[0]
	}

	if flags.IsSet("output") {
		opts.Output = *flags.Output
	}
	if flags.IsSet("zoffset") {
		opts.ZOffset = *flags.ZOffset
	}
	if flags.IsSet("recenter") {
		opts.Recenter = *flags.Recenter
	}
	if flags.IsSet("folder") {
		opts.FolderProcessing = *flags.FolderProcessing
	}
	if flags.IsSet("recursive") {
		opts.Recursive = *flags.RecursiveFolderProcessing
	}
	if flags.IsSet("grid-resolution") {
		opts.GridResolution = *flags.GridResolution
	}
	if flags.IsSet("eigen-neighbors") {
		opts.EigenNeighbors = *flags.EigenNeighbors
	}
	if flags.IsSet("radius-neighbors") {
		opts.RadiusNeighbors = *flags.RadiusNeighbors
	}
	if flags.IsSet("radius-dtm") {
		opts.RadiusDTM = *flags.RadiusDTM
	}
	if flags.IsSet("color-features") {
		opts.ColorFeatures = *flags.ColorFeatures
	}
	if flags.IsSet("strategy") {
		opts.Strategy = classification.ParseStrategy(*flags.Strategy)
	}
	if flags.IsSet("graph-cut-neighbors") {
		opts.GraphCut.Neighbors = *flags.GraphCutNeighbors
	}
	if flags.IsSet("smoothness") {
		opts.GraphCut.Smoothness = *flags.Smoothness
	}
	if flags.IsSet("subdivisions") {
		opts.GraphCut.Subdivisions = *flags.Subdivisions
	}
	if flags.IsSet("max-iterations") {
		opts.GraphCut.MaxIterations = *flags.MaxIterations
	}
	if flags.IsSet("workers") {
		opts.Workers = *flags.Workers
	}
	if flags.IsSet("report") {
		opts.ReportPath = *flags.Report
	}
}

// Validates the input options provided to the command line tool checking
// that the input file/folder exists
func validateOptions(opts *classification.ClassifierOptions) (string, bool) {
	if _, err := os.Stat(opts.Input); os.IsNotExist(err) {
		return "Input file/folder not found: " + opts.Input, false
	}

	if opts.Strategy == "" {
		return "strategy should be one of RAW, LOCAL_SMOOTHING or GRAPH_CUT", false
	}

	if err := opts.Validate(); err != nil {
		return err.Error(), false
	}

	return "", true
}

func showHelp(flags *tools.FlagsForClassifier) {
	fmt.Println("***")
	fmt.Println("cloud_classifier assigns a semantic label (ground, vegetation, roof...) to every point of a PLY/XYZ point cloud")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Usage: classifier [flags] [input-file]")
	fmt.Println("")
	fmt.Println("Command line flags: ")
	flags.PrintDefaults(os.Stdout)
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
