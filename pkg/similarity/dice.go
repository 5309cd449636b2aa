package similarity

import (
	"fmt"
	"math"
	"strings"
)

// Dice returns the Sørensen–Dice coefficient of the bigram multisets of the
// normalized forms of a and b, in [0,1]. A bigram instance is matched at most
// once, so repeated bigrams are not double counted. Inputs that normalize to
// the empty string score 0.
func Dice(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	ba, bb := Bigrams(na), Bigrams(nb)

	counts := make(map[string]int, len(ba))
	for _, g := range ba {
		counts[g]++
	}

	var overlap int
	for _, g := range bb {
		if counts[g] > 0 {
			counts[g]--
			overlap++
		}
	}
	return float64(2*overlap) / float64(len(ba)+len(bb))
}

// Rounding selects how a score is turned into a display percentage.
type Rounding int

const (
	// RoundHalfUp rounds x.5 away from zero (47.5 -> 48).
	RoundHalfUp Rounding = iota
	// RoundHalfEven rounds x.5 to the nearest even integer (47.5 -> 48, 48.5 -> 48).
	RoundHalfEven
)

// ParseRounding maps a config value to a Rounding. Empty means half_up.
func ParseRounding(s string) (Rounding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "half_up":
		return RoundHalfUp, nil
	case "half_even":
		return RoundHalfEven, nil
	default:
		return RoundHalfUp, fmt.Errorf("unknown rounding mode %q (want half_up or half_even)", s)
	}
}

func (r Rounding) String() string {
	if r == RoundHalfEven {
		return "half_even"
	}
	return "half_up"
}

// Percent converts a score in [0,1] to an integer percentage in [0,100].
func (r Rounding) Percent(score float64) int {
	x := score * 100
	var p float64
	if r == RoundHalfEven {
		p = math.RoundToEven(x)
	} else {
		p = math.Floor(x + 0.5)
	}
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return int(p)
}
