package io

import (
	"bufio"
	"fmt"
	goio "io"
	"strconv"
	"strings"

	"github.com/ecopia-map/cloud_classifier/internal/data"
)

// XyzReader reads text files holding one "x y z" or "x y z r g b" point per line. Fields are separated by
// spaces, tabs or commas, blank lines and lines starting with # are ignored. The first point decides whether
// the cloud has colors.
type XyzReader struct{}

func NewXyzReader() PointReader {
	return &XyzReader{}
}

func (r *XyzReader) Read(in goio.Reader) (*data.PointCloud, error) {
	scanner := bufio.NewScanner(in)
	points := make([]data.Point, 0)
	fieldsPerPoint := 0

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.FieldsFunc(line, func(c rune) bool {
			return c == ' ' || c == '\t' || c == ','
		})
		if fieldsPerPoint == 0 {
			if len(fields) != 3 && len(fields) != 6 {
				return nil, fmt.Errorf("%w: line %d has %d fields, expected 3 or 6", ErrUnsupportedFormat, lineNumber, len(fields))
			}
			fieldsPerPoint = len(fields)
		}
		if len(fields) != fieldsPerPoint {
			return nil, fmt.Errorf("line %d has %d fields, expected %d", lineNumber, len(fields), fieldsPerPoint)
		}

		var values [6]float64
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid value %q", lineNumber, field)
			}
			values[i] = v
		}

		point := data.NewPoint(values[0], values[1], values[2], 0, 0, 0)
		if !point.IsFinite() {
			return nil, fmt.Errorf("line %d: %w", lineNumber, data.ErrNonFiniteCoordinate)
		}
		if fieldsPerPoint == 6 {
			point.R = toColorComponent(values[3], "uchar")
			point.G = toColorComponent(values[4], "uchar")
			point.B = toColorComponent(values[5], "uchar")
		}
		points = append(points, point)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return data.NewPointCloud(points, fieldsPerPoint == 6), nil
}
