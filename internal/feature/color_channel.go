package feature

import (
	"fmt"
	"math"
	"strings"

	"github.com/ecopia-map/cloud_classifier/internal/data"
)

// Channel is a component of the HSV representation of a point color
type Channel int

const (
	Hue Channel = iota
	Saturation
	Value
)

func (c Channel) String() string {
	switch c {
	case Hue:
		return "hue"
	case Saturation:
		return "saturation"
	case Value:
		return "value"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// Parses a channel from its name
func ParseChannel(name string) (Channel, error) {
	switch strings.ToLower(name) {
	case "hue", "h":
		return Hue, nil
	case "saturation", "s":
		return Saturation, nil
	case "value", "v":
		return Value, nil
	}
	return 0, fmt.Errorf("unknown color channel %q", name)
}

// ColorChannel is one HSV channel of the point color: hue in [0, 360], saturation and value in [0, 100].
// Clouds without color yield 0 for every point.
type ColorChannel struct {
	cloud   *data.PointCloud
	channel Channel
}

func NewColorChannel(cloud *data.PointCloud, channel Channel) *ColorChannel {
	return &ColorChannel{
		cloud:   cloud,
		channel: channel,
	}
}

func (c *ColorChannel) Name() string {
	return "color_" + c.channel.String()
}

func (c *ColorChannel) Range() Range {
	if c.channel == Hue {
		return Range{Min: 0, Max: 360}
	}
	return Range{Min: 0, Max: 100}
}

func (c *ColorChannel) Compute(workers int) ([]float64, error) {
	values := make([]float64, c.cloud.Len())
	if !c.cloud.HasColor {
		return values, nil
	}

	for i, p := range c.cloud.Points {
		h, s, v := ToHSV(p.R, p.G, p.B)
		switch c.channel {
		case Hue:
			values[i] = h
		case Saturation:
			values[i] = s
		default:
			values[i] = v
		}
	}

	return values, nil
}

// Converts an RGB color to hue [0, 360), saturation [0, 100] and value [0, 100]
func ToHSV(r, g, b uint8) (float64, float64, float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	hi := math.Max(rf, math.Max(gf, bf))
	lo := math.Min(rf, math.Min(gf, bf))
	delta := hi - lo

	var h float64
	switch {
	case delta == 0:
		h = 0
	case hi == rf:
		h = 60 * math.Mod((gf-bf)/delta, 6)
	case hi == gf:
		h = 60 * ((bf-rf)/delta + 2)
	default:
		h = 60 * ((rf-gf)/delta + 4)
	}
	if h < 0 {
		h += 360
	}

	s := 0.0
	if hi > 0 {
		s = delta / hi * 100
	}

	return h, s, hi * 100
}
