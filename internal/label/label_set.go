package label

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateLabel = errors.New("label already defined")
	ErrUnknownLabel   = errors.New("unknown label")
)

// Unassigned is the label index of a point no strategy has classified yet
const Unassigned = -1

// NoStandardIndex marks a label without a standard classification code
const NoStandardIndex = -1

// Color is the display color of a label
type Color struct {
	R uint8
	G uint8
	B uint8
}

// Label is a class a point can be assigned to. Labels are immutable once added to a LabelSet.
type Label struct {
	name          string
	color         *Color
	standardIndex int
}

func (l *Label) Name() string {
	return l.name
}

// Returns the display color of the label, or nil when none was given
func (l *Label) Color() *Color {
	return l.color
}

// Returns the standard classification code (e.g. ASPRS class) of the label, or NoStandardIndex
func (l *Label) StandardIndex() int {
	return l.standardIndex
}

// LabelSet keeps labels in insertion order. The index of a label is stable for the lifetime of the set.
type LabelSet struct {
	labels []*Label
	byName map[string]int
}

func NewLabelSet() *LabelSet {
	return &LabelSet{
		byName: make(map[string]int),
	}
}

// Adds a label without color nor standard index and returns its index
func (s *LabelSet) Add(name string) (int, error) {
	return s.AddWithAttributes(name, nil, NoStandardIndex)
}

// Adds a label and returns its index. Names must be unique.
func (s *LabelSet) AddWithAttributes(name string, color *Color, standardIndex int) (int, error) {
	if name == "" {
		return -1, errors.New("label name must not be empty")
	}
	if _, ok := s.byName[name]; ok {
		return -1, fmt.Errorf("%w: %s", ErrDuplicateLabel, name)
	}

	var c *Color
	if color != nil {
		copied := *color
		c = &copied
	}

	index := len(s.labels)
	s.labels = append(s.labels, &Label{
		name:          name,
		color:         c,
		standardIndex: standardIndex,
	})
	s.byName[name] = index

	return index, nil
}

func (s *LabelSet) Len() int {
	return len(s.labels)
}

func (s *LabelSet) At(index int) *Label {
	return s.labels[index]
}

// Returns the index of the label with the given name
func (s *LabelSet) Index(name string) (int, error) {
	index, ok := s.byName[name]
	if !ok {
		return -1, fmt.Errorf("%w: %s", ErrUnknownLabel, name)
	}
	return index, nil
}

// Returns the label names in insertion order
func (s *LabelSet) Names() []string {
	names := make([]string, len(s.labels))
	for i, l := range s.labels {
		names[i] = l.name
	}
	return names
}
