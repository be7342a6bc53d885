package io

import (
	"errors"
	"fmt"
	goio "io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ecopia-map/cloud_classifier/internal/data"
)

var ErrUnsupportedFormat = errors.New("unsupported point cloud format")

// PointReader decodes a point cloud from a stream
type PointReader interface {
	Read(r goio.Reader) (*data.PointCloud, error)
}

// PointWriter encodes points with their colors to a stream
type PointWriter interface {
	Write(w goio.Writer, points []data.Point) error
}

// Returns the reader handling the extension of the given file, ErrUnsupportedFormat if there is none
func GetReaderForFile(path string) (PointReader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ply":
		return NewPlyReader(), nil
	case ".xyz", ".txt":
		return NewXyzReader(), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// Returns true if the file extension is handled by one of the readers
func IsSupportedFile(path string) bool {
	_, err := GetReaderForFile(path)
	return err == nil
}

// Reads the point cloud stored in the given file
func ReadPointCloudFile(path string) (*data.PointCloud, error) {
	reader, err := GetReaderForFile(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer file.Close()

	cloud, err := reader.Read(file)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	return cloud, nil
}

// Writes the points to the given file using the given writer
func WritePointCloudFile(path string, writer PointWriter, points []data.Point) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}

	if err := writer.Write(file, points); err != nil {
		file.Close()
		return fmt.Errorf("cannot write %s: %w", path, err)
	}

	return file.Close()
}
