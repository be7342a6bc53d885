package pkg

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/ecopia-map/cloud_classifier/internal/classification"
	"github.com/ecopia-map/cloud_classifier/internal/converters"
	"github.com/ecopia-map/cloud_classifier/internal/data"
	"github.com/ecopia-map/cloud_classifier/internal/eigen"
	"github.com/ecopia-map/cloud_classifier/internal/feature"
	"github.com/ecopia-map/cloud_classifier/internal/io"
	"github.com/ecopia-map/cloud_classifier/internal/label"
	"github.com/ecopia-map/cloud_classifier/internal/spatial/planimetric_grid"
	"github.com/ecopia-map/cloud_classifier/internal/spatial/point_neighborhood"
	"github.com/ecopia-map/cloud_classifier/internal/weighted_classifier"
	"github.com/ecopia-map/cloud_classifier/pkg/algorithm_manager"
	"github.com/ecopia-map/cloud_classifier/tools"
	"github.com/golang/glog"
)

type IClassifier interface {
	RunClassifier(opts *classification.ClassifierOptions) ([]*ClassificationReport, error)
}

type CloudClassifier struct {
	fileFinder       tools.FileFinder
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewClassifier(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager) IClassifier {
	return &CloudClassifier{
		fileFinder:       fileFinder,
		algorithmManager: algorithmManager,
	}
}

// ClassificationResult holds the label of every point of a cloud together with the structures that produced it
type ClassificationResult struct {
	Labels       *label.LabelSet
	Features     *feature.FeatureSet
	Classifier   *weighted_classifier.Classifier
	LabelIndices []int
	Report       *ClassificationReport
}

// Starts the classification process
func (c *CloudClassifier) RunClassifier(opts *classification.ClassifierOptions) ([]*ClassificationReport, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	glog.Infoln("Preparing list of files to process...")

	// Prepare list of files to process
	files, err := c.fileFinder.GetPointCloudFilesToProcess(opts)
	if err != nil {
		return nil, fmt.Errorf("cannot list input files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no point cloud file found in %s", opts.Input)
	}
	for i, filePath := range files {
		glog.Infof("file path %d [%s]", i+1, filePath)
	}

	if opts.FolderProcessing {
		if err := tools.CreateDirectoryIfDoesNotExist(opts.Output); err != nil {
			return nil, fmt.Errorf("cannot create output folder: %w", err)
		}
	}

	reports := make([]*ClassificationReport, 0, len(files))
	for i, filePath := range files {
		tools.LogOutput("Processing file " + strconv.Itoa(i+1) + "/" + strconv.Itoa(len(files)))
		report, err := c.processFile(filePath, c.getOutputPath(filePath, opts), opts)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}

	if opts.ReportPath != "" {
		if err := WriteReports(opts.ReportPath, reports); err != nil {
			return reports, err
		}
	}

	return reports, nil
}

func (c *CloudClassifier) getOutputPath(filePath string, opts *classification.ClassifierOptions) string {
	if !opts.FolderProcessing {
		return opts.Output
	}
	return filepath.Join(opts.Output, tools.GetFilenameWithoutExtension(filePath)+tools.ClassifiedFileSuffix+".ply")
}

func (c *CloudClassifier) processFile(filePath string, outputPath string, opts *classification.ClassifierOptions) (*ClassificationReport, error) {
	timer := tools.NewTimer()

	glog.Infoln("> reading data from file...", filepath.Base(filePath))
	cloud, err := io.ReadPointCloudFile(filePath)
	if err != nil {
		return nil, err
	}
	tools.LogOutput(fmt.Sprintf("%d points read from %s", cloud.Len(), filepath.Base(filePath)))
	readTime := timer.Done("Reading")

	result, err := c.ClassifyCloud(cloud, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot classify %s: %w", filePath, err)
	}
	timer.Reset()

	glog.Infoln("> writing classified points...", outputPath)
	points, err := io.NewLabelColorizer(result.Labels).Colorize(cloud, result.LabelIndices)
	if err != nil {
		return nil, err
	}
	if err := io.WritePointCloudFile(outputPath, c.algorithmManager.GetPointWriter(), points); err != nil {
		return nil, err
	}
	writeTime := timer.Done("Writing")

	report := result.Report
	report.Input = filePath
	report.Output = outputPath
	report.Stages = append([]StageTiming{{Stage: "reading", Seconds: secondsOf(readTime)}}, report.Stages...)
	report.AddStage("writing", writeTime)
	for _, line := range report.Lines() {
		tools.LogOutput(line)
	}

	glog.Infoln("> done processing", filepath.Base(filePath))
	return report, nil
}

// Classifies the cloud in memory. The elevation correction is applied to the points of the cloud, the
// coordinate conversion is undone before returning.
func (c *CloudClassifier) ClassifyCloud(cloud *data.PointCloud, opts *classification.ClassifierOptions) (result *ClassificationResult, err error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	labels, err := buildLabelSet(opts.Labels)
	if err != nil {
		return nil, err
	}

	if err := cloud.CheckFinite(); err != nil {
		return nil, err
	}

	converters.CorrectCloudElevation(c.algorithmManager.GetElevationCorrectionAlgorithm(), cloud)
	if err := cloud.CheckFinite(); err != nil {
		return nil, fmt.Errorf("elevation correction: %w", err)
	}

	if opts.Recenter {
		converter := c.algorithmManager.GetCoordinateConverterAlgorithm()
		if err := converter.ConvertToLocal(cloud); err != nil {
			return nil, err
		}
		defer func() {
			if convErr := converter.ConvertToSource(cloud); convErr != nil && err == nil {
				result, err = nil, convErr
			}
		}()
	}

	timer := tools.NewTimer()
	report := &ClassificationReport{Strategy: opts.Strategy.String()}

	if cloud.Len() == 0 {
		glog.Warningf("empty point cloud, nothing to classify")
		features := feature.NewFeatureSet(0, opts.Workers)
		summary := NewClassificationReport(labels, []int{})
		summary.Strategy = report.Strategy
		return &ClassificationResult{
			Labels:       labels,
			Features:     features,
			Classifier:   weighted_classifier.NewClassifier(labels, features),
			LabelIndices: []int{},
			Report:       summary,
		}, nil
	}

	glog.Infoln("> computing features...")
	features, neighborhood, err := computeFeatures(cloud, opts, timer, report)
	if err != nil {
		return nil, err
	}

	classifier, err := configureClassifier(labels, features, opts)
	if err != nil {
		return nil, err
	}

	glog.Infoln("> classifying with", opts.Strategy.String(), "...")
	classificationStrategy, err := c.algorithmManager.GetStrategyAlgorithm(cloud.Points, neighborhood)
	if err != nil {
		return nil, err
	}
	labelIndices, err := classificationStrategy.Classify(classifier)
	if err != nil {
		return nil, err
	}
	report.AddStage("classification", timer.Done("Classification"))

	summary := NewClassificationReport(labels, labelIndices)
	summary.Strategy = report.Strategy
	summary.Stages = report.Stages
	summary.AddFeatures(classifier)

	return &ClassificationResult{
		Labels:       labels,
		Features:     features,
		Classifier:   classifier,
		LabelIndices: labelIndices,
		Report:       summary,
	}, nil
}

func computeFeatures(cloud *data.PointCloud, opts *classification.ClassifierOptions, timer *tools.Timer, report *ClassificationReport) (*feature.FeatureSet, *point_neighborhood.Neighborhood, error) {
	points := cloud.Points

	grid, err := planimetric_grid.NewGrid(points, cloud.BoundingBox(), opts.GridResolution)
	if err != nil {
		return nil, nil, err
	}
	neighborhood := point_neighborhood.NewNeighborhood(points)
	glog.Infof("planimetric grid: %d x %d cells of %v m", grid.Columns(), grid.Rows(), grid.CellSize())
	report.AddStage("neighborhood", timer.Done("Neighborhood computation"))

	analysis, err := eigen.Create(points, neighborhood.KNeighborQuery(opts.EigenNeighbors, false), opts.Workers)
	if err != nil {
		return nil, nil, err
	}
	report.AddStage("eigen_analysis", timer.Done("Eigen analysis"))

	definitions := []feature.Definition{
		feature.NewDistanceToPlane(points, analysis),
		feature.NewVerticalDispersion(grid, opts.RadiusNeighbors),
		feature.NewElevation(grid, opts.RadiusDTM),
		feature.NewVerticality(analysis),
	}
	if opts.ColorFeatures {
		if cloud.HasColor {
			for _, channel := range []feature.Channel{feature.Hue, feature.Saturation, feature.Value} {
				definitions = append(definitions, feature.NewColorChannel(cloud, channel))
			}
		} else {
			glog.Warningf("color features requested but the cloud has no colors")
		}
	}

	features := feature.NewFeatureSet(cloud.Len(), opts.Workers)
	features.BeginParallelAdditions()
	for _, definition := range definitions {
		if _, err := features.Add(definition); err != nil {
			// drain the computations already started
			_ = features.EndParallelAdditions()
			return nil, nil, err
		}
	}
	if err := features.EndParallelAdditions(); err != nil {
		return nil, nil, err
	}
	glog.Infof("%d features computed", features.Len())
	report.AddStage("features", timer.Done("Features computation"))

	return features, neighborhood, nil
}

func buildLabelSet(options []classification.LabelOptions) (*label.LabelSet, error) {
	labels := label.NewLabelSet()
	for _, l := range options {
		if _, err := labels.AddWithAttributes(l.Name, l.Color, l.StandardIndex); err != nil {
			return nil, err
		}
	}
	return labels, nil
}

// Sets weights and effects on a new classifier. Settings naming a feature that was not computed are skipped.
func configureClassifier(labels *label.LabelSet, features *feature.FeatureSet, opts *classification.ClassifierOptions) (*weighted_classifier.Classifier, error) {
	classifier := weighted_classifier.NewClassifier(labels, features)

	for name, weight := range opts.Weights {
		if err := classifier.SetWeightByName(name, weight); err != nil {
			if errors.Is(err, feature.ErrUnknownFeature) {
				glog.Warningf("weight of feature %s ignored: feature not computed", name)
				continue
			}
			return nil, err
		}
	}

	for _, e := range opts.Effects {
		if err := classifier.SetEffectByName(e.Label, e.Feature, e.Effect); err != nil {
			if errors.Is(err, feature.ErrUnknownFeature) {
				glog.Warningf("effect of feature %s on %s ignored: feature not computed", e.Feature, e.Label)
				continue
			}
			return nil, err
		}
	}

	return classifier, nil
}
