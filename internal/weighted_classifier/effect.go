package weighted_classifier

import (
	"fmt"
	"strings"
)

// Effect is the direction in which a feature pushes the score of a label
type Effect int

const (
	Penalizing Effect = -1
	Neutral    Effect = 0
	Favoring   Effect = 1
)

func (e Effect) String() string {
	switch e {
	case Penalizing:
		return "penalizing"
	case Neutral:
		return "neutral"
	case Favoring:
		return "favoring"
	}
	return fmt.Sprintf("effect(%d)", int(e))
}

// Returns the sign applied to the feature value in the score
func (e Effect) Sign() float64 {
	return float64(e)
}

func (e Effect) isValid() bool {
	return e == Penalizing || e == Neutral || e == Favoring
}

func ParseEffect(name string) (Effect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "penalizing":
		return Penalizing, nil
	case "neutral", "":
		return Neutral, nil
	case "favoring":
		return Favoring, nil
	}
	return Neutral, fmt.Errorf("unknown effect %q", name)
}
