package io

import (
	"bufio"
	"encoding/binary"
	"fmt"
	goio "io"
	"math"
	"strconv"
	"strings"

	"github.com/ecopia-map/cloud_classifier/internal/data"
)

type plyFormat int

const (
	plyAscii plyFormat = iota
	plyBinaryLittleEndian
	plyBinaryBigEndian
)

const plyVertexElement = "vertex"

type plyProperty struct {
	name      string
	valueType string
	isList    bool
	countType string
}

type plyElement struct {
	name       string
	count      int
	properties []plyProperty
}

type plyHeader struct {
	format   plyFormat
	elements []plyElement
}

// PlyReader reads the vertex element of ascii and binary PLY files. Coordinates are taken from the x, y and
// z properties, colors from the optional red, green and blue ones. Every other property and element is
// skipped.
type PlyReader struct{}

func NewPlyReader() PointReader {
	return &PlyReader{}
}

func (r *PlyReader) Read(in goio.Reader) (*data.PointCloud, error) {
	reader := bufio.NewReader(in)

	header, err := readPlyHeader(reader)
	if err != nil {
		return nil, err
	}

	var decoder plyDecoder
	switch header.format {
	case plyAscii:
		decoder = &plyAsciiDecoder{reader: reader}
	case plyBinaryLittleEndian:
		decoder = &plyBinaryDecoder{reader: reader, order: binary.LittleEndian}
	case plyBinaryBigEndian:
		decoder = &plyBinaryDecoder{reader: reader, order: binary.BigEndian}
	}

	for _, element := range header.elements {
		if element.name != plyVertexElement {
			if err := skipPlyElement(decoder, element); err != nil {
				return nil, err
			}
			continue
		}
		return readPlyVertices(decoder, element)
	}

	return nil, fmt.Errorf("%w: ply file has no %s element", ErrUnsupportedFormat, plyVertexElement)
}

func readPlyHeader(reader *bufio.Reader) (*plyHeader, error) {
	magic, err := readHeaderLine(reader)
	if err != nil {
		return nil, err
	}
	if magic != "ply" {
		return nil, fmt.Errorf("%w: missing ply magic number", ErrUnsupportedFormat)
	}

	header := &plyHeader{format: -1}
	for {
		line, err := readHeaderLine(reader)
		if err != nil {
			return nil, err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "end_header":
			if header.format < 0 {
				return nil, fmt.Errorf("%w: ply header has no format", ErrUnsupportedFormat)
			}
			return header, nil
		case "comment", "obj_info":
		case "format":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: malformed format line %q", ErrUnsupportedFormat, line)
			}
			switch fields[1] {
			case "ascii":
				header.format = plyAscii
			case "binary_little_endian":
				header.format = plyBinaryLittleEndian
			case "binary_big_endian":
				header.format = plyBinaryBigEndian
			default:
				return nil, fmt.Errorf("%w: ply format %s", ErrUnsupportedFormat, fields[1])
			}
		case "element":
			if len(fields) != 3 {
				return nil, fmt.Errorf("%w: malformed element line %q", ErrUnsupportedFormat, line)
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: invalid element count %q", ErrUnsupportedFormat, fields[2])
			}
			header.elements = append(header.elements, plyElement{name: fields[1], count: count})
		case "property":
			if len(header.elements) == 0 {
				return nil, fmt.Errorf("%w: property before any element", ErrUnsupportedFormat)
			}
			property, err := parsePlyProperty(fields)
			if err != nil {
				return nil, err
			}
			current := &header.elements[len(header.elements)-1]
			current.properties = append(current.properties, property)
		default:
			return nil, fmt.Errorf("%w: unknown header keyword %s", ErrUnsupportedFormat, fields[0])
		}
	}
}

func readHeaderLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil {
		if err == goio.EOF {
			return "", fmt.Errorf("%w: truncated ply header", ErrUnsupportedFormat)
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func parsePlyProperty(fields []string) (plyProperty, error) {
	if len(fields) == 5 && fields[1] == "list" {
		if plyTypeSize(fields[2]) == 0 || plyTypeSize(fields[3]) == 0 {
			return plyProperty{}, fmt.Errorf("%w: invalid list property %s", ErrUnsupportedFormat, fields[4])
		}
		return plyProperty{name: fields[4], countType: fields[2], valueType: fields[3], isList: true}, nil
	}
	if len(fields) != 3 || plyTypeSize(fields[1]) == 0 {
		return plyProperty{}, fmt.Errorf("%w: invalid property %s", ErrUnsupportedFormat, strings.Join(fields, " "))
	}
	return plyProperty{name: fields[2], valueType: fields[1]}, nil
}

// Returns the size in bytes of a PLY scalar type, 0 if the type is unknown
func plyTypeSize(valueType string) int {
	switch valueType {
	case "char", "int8", "uchar", "uint8":
		return 1
	case "short", "int16", "ushort", "uint16":
		return 2
	case "int", "int32", "uint", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	}
	return 0
}

func isPlyFloatType(valueType string) bool {
	switch valueType {
	case "float", "float32", "double", "float64":
		return true
	}
	return false
}

func skipPlyElement(decoder plyDecoder, element plyElement) error {
	for i := 0; i < element.count; i++ {
		for _, property := range element.properties {
			if _, err := readPlyProperty(decoder, property); err != nil {
				return fmt.Errorf("element %s: %w", element.name, err)
			}
		}
		if err := decoder.endRecord(); err != nil {
			return err
		}
	}
	return nil
}

func readPlyProperty(decoder plyDecoder, property plyProperty) (float64, error) {
	if !property.isList {
		return decoder.readValue(property.valueType)
	}

	count, err := decoder.readValue(property.countType)
	if err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, fmt.Errorf("negative list length in property %s", property.name)
	}
	for j := 0; j < int(count); j++ {
		if _, err := decoder.readValue(property.valueType); err != nil {
			return 0, err
		}
	}
	return 0, nil
}

func readPlyVertices(decoder plyDecoder, element plyElement) (*data.PointCloud, error) {
	slots := map[string]int{"x": -1, "y": -1, "z": -1, "red": -1, "green": -1, "blue": -1}
	for i, property := range element.properties {
		if _, ok := slots[property.name]; ok && !property.isList {
			slots[property.name] = i
		}
	}
	if slots["x"] < 0 || slots["y"] < 0 || slots["z"] < 0 {
		return nil, fmt.Errorf("%w: vertex element needs x, y and z properties", ErrUnsupportedFormat)
	}
	hasColor := slots["red"] >= 0 && slots["green"] >= 0 && slots["blue"] >= 0

	values := make([]float64, len(element.properties))
	points := make([]data.Point, element.count)
	for i := range points {
		for j, property := range element.properties {
			v, err := readPlyProperty(decoder, property)
			if err != nil {
				return nil, fmt.Errorf("vertex %d: %w", i, err)
			}
			values[j] = v
		}
		if err := decoder.endRecord(); err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}

		points[i].X = values[slots["x"]]
		points[i].Y = values[slots["y"]]
		points[i].Z = values[slots["z"]]
		if !points[i].IsFinite() {
			return nil, fmt.Errorf("vertex %d: %w", i, data.ErrNonFiniteCoordinate)
		}
		if hasColor {
			points[i].R = toColorComponent(values[slots["red"]], element.properties[slots["red"]].valueType)
			points[i].G = toColorComponent(values[slots["green"]], element.properties[slots["green"]].valueType)
			points[i].B = toColorComponent(values[slots["blue"]], element.properties[slots["blue"]].valueType)
		}
	}

	return data.NewPointCloud(points, hasColor), nil
}

// Converts a color value to 8 bits: floats are expected in [0, 1], 16 bit integers are scaled down
func toColorComponent(v float64, valueType string) uint8 {
	switch {
	case isPlyFloatType(valueType):
		v *= 255
	case plyTypeSize(valueType) == 2:
		v /= 257
	}
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}

type plyDecoder interface {
	readValue(valueType string) (float64, error)
	endRecord() error
}

type plyAsciiDecoder struct {
	reader *bufio.Reader
	tokens []string
}

func (d *plyAsciiDecoder) readValue(valueType string) (float64, error) {
	for len(d.tokens) == 0 {
		line, err := d.reader.ReadString('\n')
		if err != nil && (err != goio.EOF || line == "") {
			if err == goio.EOF {
				return 0, goio.ErrUnexpectedEOF
			}
			return 0, err
		}
		d.tokens = strings.Fields(line)
	}

	token := d.tokens[0]
	d.tokens = d.tokens[1:]
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", valueType, token)
	}
	return v, nil
}

// Records are one per line, the remaining tokens of the current line are dropped
func (d *plyAsciiDecoder) endRecord() error {
	d.tokens = nil
	return nil
}

type plyBinaryDecoder struct {
	reader *bufio.Reader
	order  binary.ByteOrder
	buffer [8]byte
}

func (d *plyBinaryDecoder) readValue(valueType string) (float64, error) {
	size := plyTypeSize(valueType)
	buf := d.buffer[:size]
	if _, err := goio.ReadFull(d.reader, buf); err != nil {
		if err == goio.EOF {
			return 0, goio.ErrUnexpectedEOF
		}
		return 0, err
	}

	switch valueType {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(d.order.Uint16(buf))), nil
	case "ushort", "uint16":
		return float64(d.order.Uint16(buf)), nil
	case "int", "int32":
		return float64(int32(d.order.Uint32(buf))), nil
	case "uint", "uint32":
		return float64(d.order.Uint32(buf)), nil
	case "float", "float32":
		return float64(math.Float32frombits(d.order.Uint32(buf))), nil
	case "double", "float64":
		return math.Float64frombits(d.order.Uint64(buf)), nil
	}
	return 0, fmt.Errorf("%w: ply type %s", ErrUnsupportedFormat, valueType)
}

func (d *plyBinaryDecoder) endRecord() error {
	return nil
}
