package catalog

import (
	"fmt"
	"math"
	"strings"
)

// Rating is a DPS letter grade, A (best) through G (worst).
type Rating string

const (
	RatingA Rating = "A"
	RatingB Rating = "B"
	RatingC Rating = "C"
	RatingD Rating = "D"
	RatingE Rating = "E"
	RatingF Rating = "F"
	RatingG Rating = "G"
)

// Ratings lists every letter in scale order.
func Ratings() []Rating {
	return []Rating{RatingA, RatingB, RatingC, RatingD, RatingE, RatingF, RatingG}
}

// ParseRating normalizes a letter grade. The second return is false when the
// value is not one of A-G.
func ParseRating(value string) (Rating, bool) {
	r := Rating(strings.ToUpper(strings.TrimSpace(value)))
	switch r {
	case RatingA, RatingB, RatingC, RatingD, RatingE, RatingF, RatingG:
		return r, true
	default:
		return "", false
	}
}

// Rank returns the zero-based position of the letter on the scale, or -1.
func (r Rating) Rank() int {
	for i, candidate := range Ratings() {
		if candidate == r {
			return i
		}
	}
	return -1
}

func (r Rating) String() string { return string(r) }

// Step is one row of the rating scale. MaxDB is an inclusive upper bound;
// the last step of a scale is open-ended and its MaxDB is informational.
type Step struct {
	Rating      Rating
	MaxDB       float64
	Example     string
	Color       string
	Description string
}

// Scale maps mean sound levels to letter grades.
type Scale struct {
	steps []Step
}

// NewScale validates and copies the supplied steps. Steps must be ordered by
// strictly ascending MaxDB.
func NewScale(steps []Step) (Scale, error) {
	if len(steps) == 0 {
		return Scale{}, fmt.Errorf("rating scale: at least one step required")
	}
	for i := 1; i < len(steps); i++ {
		if steps[i].MaxDB <= steps[i-1].MaxDB {
			return Scale{}, fmt.Errorf("rating scale: step %s bound %.1f not above %s bound %.1f",
				steps[i].Rating, steps[i].MaxDB, steps[i-1].Rating, steps[i-1].MaxDB)
		}
	}
	cp := make([]Step, len(steps))
	copy(cp, steps)
	return Scale{steps: cp}, nil
}

// DefaultScale returns the official DPS scale.
func DefaultScale() Scale {
	return Scale{steps: []Step{
		{Rating: RatingA, MaxDB: 20, Example: "Conversation à voix basse, chambre à coucher", Color: "#00A651", Description: "Logement extrêmement performant"},
		{Rating: RatingB, MaxDB: 30, Example: "Bureau calme", Color: "#92D050", Description: "Très bon confort acoustique"},
		{Rating: RatingC, MaxDB: 45, Example: "Machine à laver", Color: "#FFFF00", Description: "Confort acoustique acceptable"},
		{Rating: RatingD, MaxDB: 60, Example: "Centre commercial, aspirateur, automobile", Color: "#FFC000", Description: "Confort acoustique moyen"},
		{Rating: RatingE, MaxDB: 80, Example: "Automobile, moto", Color: "#FF6600", Description: "Confort acoustique insuffisant"},
		{Rating: RatingF, MaxDB: 100, Example: "Musique puissance maximale", Color: "#FF0000", Description: "Passoire phonique"},
		{Rating: RatingG, MaxDB: 120, Example: "Concert, marteau-piqueur, avion", Color: "#C00000", Description: "Logement très peu performant"},
	}}
}

// Classify returns the first letter whose bound is at or above db. Values
// above every bound, and NaN, fall through to G.
func (s Scale) Classify(db float64) Rating {
	if math.IsNaN(db) {
		return RatingG
	}
	// The last step is open-ended.
	for _, step := range s.bounded() {
		if db <= step.MaxDB {
			return step.Rating
		}
	}
	return RatingG
}

func (s Scale) bounded() []Step {
	if len(s.steps) == 0 {
		return DefaultScale().steps[:6]
	}
	if s.steps[len(s.steps)-1].Rating == RatingG {
		return s.steps[:len(s.steps)-1]
	}
	return s.steps
}

// Steps returns a copy of the scale rows in ascending order.
func (s Scale) Steps() []Step {
	src := s.steps
	if len(src) == 0 {
		src = DefaultScale().steps
	}
	cp := make([]Step, len(src))
	copy(cp, src)
	return cp
}

// Step returns the row for the given letter.
func (s Scale) Step(r Rating) (Step, bool) {
	for _, step := range s.Steps() {
		if step.Rating == r {
			return step, true
		}
	}
	return Step{}, false
}
