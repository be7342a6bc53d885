package io

import (
	"bufio"
	"encoding/binary"
	"fmt"
	goio "io"
	"math"

	"github.com/ecopia-map/cloud_classifier/internal/data"
)

const plyVertexRecordSize = 3*8 + 3

// PlyWriter writes binary little endian PLY files with double coordinates and 8 bit colors
type PlyWriter struct {
	Comments []string
}

func NewPlyWriter(comments ...string) PointWriter {
	return &PlyWriter{
		Comments: comments,
	}
}

func (w *PlyWriter) Write(out goio.Writer, points []data.Point) error {
	writer := bufio.NewWriter(out)

	header := "ply\nformat binary_little_endian 1.0\n"
	for _, comment := range w.Comments {
		header += "comment " + comment + "\n"
	}
	header += fmt.Sprintf("element %s %d\n", plyVertexElement, len(points))
	header += "property double x\nproperty double y\nproperty double z\n"
	header += "property uchar red\nproperty uchar green\nproperty uchar blue\n"
	header += "end_header\n"
	if _, err := writer.WriteString(header); err != nil {
		return err
	}

	var record [plyVertexRecordSize]byte
	for _, p := range points {
		binary.LittleEndian.PutUint64(record[0:8], math.Float64bits(p.X))
		binary.LittleEndian.PutUint64(record[8:16], math.Float64bits(p.Y))
		binary.LittleEndian.PutUint64(record[16:24], math.Float64bits(p.Z))
		record[24] = p.R
		record[25] = p.G
		record[26] = p.B
		if _, err := writer.Write(record[:]); err != nil {
			return err
		}
	}

	return writer.Flush()
}
