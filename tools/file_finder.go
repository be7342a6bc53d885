package tools

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/ecopia-map/cloud_classifier/internal/classification"
	"github.com/ecopia-map/cloud_classifier/internal/io"
)

type FileFinder interface {
	GetPointCloudFilesToProcess(opts *classification.ClassifierOptions) ([]string, error)
}

type StandardFileFinder struct{}

func NewStandardFileFinder() FileFinder {
	return &StandardFileFinder{}
}

func (f *StandardFileFinder) GetPointCloudFilesToProcess(opts *classification.ClassifierOptions) ([]string, error) {
	// If folder processing is not enabled then the file is given by -input flag, otherwise look for point clouds
	// in -input folder eventually excluding nested folders if Recursive flag is disabled
	if !opts.FolderProcessing {
		return []string{opts.Input}, nil
	}

	return f.getPointCloudFilesFromInputFolder(opts)
}

func (f *StandardFileFinder) getPointCloudFilesFromInputFolder(opts *classification.ClassifierOptions) ([]string, error) {
	var files = make([]string, 0)

	baseInfo, err := os.Stat(opts.Input)
	if err != nil {
		return nil, err
	}
	err = filepath.Walk(
		opts.Input,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() && !opts.Recursive && !os.SameFile(info, baseInfo) {
				return filepath.SkipDir
			} else if !info.IsDir() && io.IsSupportedFile(info.Name()) {
				files = append(files, path)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
