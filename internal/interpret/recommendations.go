package interpret

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"sonalyze/internal/analysis"
	"sonalyze/internal/catalog"
	"sonalyze/internal/textutil"
)

// Element identifies a building element covered by the recommendations.
type Element string

const (
	ElementWindow      Element = "fenetre"
	ElementWall        Element = "mur"
	ElementDoor        Element = "porte"
	ElementCeiling     Element = "plafond"
	ElementFloor       Element = "sol"
	ElementVentilation Element = "aeration"
)

// Elements lists the building elements in report order.
func Elements() []Element {
	return []Element{ElementWindow, ElementWall, ElementDoor, ElementCeiling, ElementFloor, ElementVentilation}
}

// Label returns the French display name of the element.
func (e Element) Label() string {
	switch e {
	case ElementWindow:
		return "Fenêtres"
	case ElementWall:
		return "Murs"
	case ElementDoor:
		return "Portes"
	case ElementCeiling:
		return "Plafond"
	case ElementFloor:
		return "Sol"
	case ElementVentilation:
		return "Aération"
	default:
		return textutil.DisplayName(string(e))
	}
}

// Euros is a whole-euro amount. It decodes from JSON numbers and from numeric
// strings such as "1500" or "1 500 €", which models occasionally emit.
type Euros int

func (e *Euros) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		*e = 0
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "€", "", ",", ".").Replace(unquoted)
		if raw == "" {
			*e = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("euros: invalid amount %s", data)
	}
	*e = Euros(math.Round(v))
	return nil
}

// Solution is one remediation option with its cost bracket.
type Solution struct {
	Name        string `json:"nom"`
	Description string `json:"description"`
	CostMin     Euros  `json:"cout_min"`
	CostMax     Euros  `json:"cout_max"`
	Impact      string `json:"impact"`
	Difficulty  string `json:"difficulte"`
}

// Advice is the recommendation block for one building element.
type Advice struct {
	Priority  string     `json:"priorite"`
	Positives string     `json:"points_positifs"`
	Problem   string     `json:"probleme"`
	Solutions []Solution `json:"solutions"`
}

func (a Advice) empty() bool {
	return a.Priority == "" && a.Positives == "" && a.Problem == "" && len(a.Solutions) == 0
}

// Recommendations holds one Advice per building element. Field order is the
// JSON key order.
type Recommendations struct {
	Window      Advice `json:"fenetre"`
	Wall        Advice `json:"mur"`
	Door        Advice `json:"porte"`
	Ceiling     Advice `json:"plafond"`
	Floor       Advice `json:"sol"`
	Ventilation Advice `json:"aeration"`
}

// Get returns the advice for e.
func (r Recommendations) Get(e Element) Advice {
	if p := r.slot(e); p != nil {
		return *p
	}
	return Advice{}
}

func (r *Recommendations) slot(e Element) *Advice {
	switch e {
	case ElementWindow:
		return &r.Window
	case ElementWall:
		return &r.Wall
	case ElementDoor:
		return &r.Door
	case ElementCeiling:
		return &r.Ceiling
	case ElementFloor:
		return &r.Floor
	case ElementVentilation:
		return &r.Ventilation
	default:
		return nil
	}
}

// CostRange is the sum of every solution's bracket.
type CostRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// TotalCosts sums the cost brackets of every solution in r.
func TotalCosts(r Recommendations) CostRange {
	var total CostRange
	for _, e := range Elements() {
		for _, s := range r.Get(e).Solutions {
			total.Min += int(s.CostMin)
			total.Max += int(s.CostMax)
		}
	}
	return total
}

// familyShares extracts the global family percentages the recommendation
// rules look at.
type familyShares struct {
	circulation  float64
	neighborhood float64
	construction float64
}

func sharesOf(summary *analysis.Summary) familyShares {
	get := func(f catalog.Family) float64 {
		stat, _ := summary.Sounds.Families.Get(f)
		return stat.Percentage
	}
	return familyShares{
		circulation:  get(catalog.FamilyCirculation),
		neighborhood: get(catalog.FamilyNeighborhood),
		construction: get(catalog.FamilyConstruction),
	}
}

func (s familyShares) mainIssues() []string {
	var issues []string
	if s.circulation > 30 {
		issues = append(issues, "bruit de circulation important")
	}
	if s.neighborhood > 20 {
		issues = append(issues, "bruits de voisinage")
	}
	if s.construction > 10 {
		issues = append(issues, "bruits de travaux")
	}
	return issues
}

func isGood(r catalog.Rating) bool   { return r.Rank() >= 0 && r.Rank() <= catalog.RatingC.Rank() }
func isSevere(r catalog.Rating) bool { return r.Rank() >= catalog.RatingE.Rank() }

// DefaultRecommendations builds the rule-based recommendations used when no
// model response is available. Heavy traffic (over 30% circulation) raises
// the window priority; frequent neighbourhood noise (over 20%) raises the wall
// and ceiling priorities; severe grades (E-G) add heavy works.
func DefaultRecommendations(rating catalog.Rating, summary *analysis.Summary) Recommendations {
	shares := familyShares{}
	if summary != nil {
		shares = sharesOf(summary)
	}
	traffic := shares.circulation > 30
	neighbours := shares.neighborhood > 20
	good := isGood(rating)
	severe := isSevere(rating)

	window := []Solution{
		{Name: "Joints d'étanchéité", Description: "Remplacement des joints usés autour des fenêtres", CostMin: 50, CostMax: 100, Impact: "-5 à -10 dB", Difficulty: "facile"},
		{Name: "Rideaux phoniques", Description: "Installation de rideaux épais à propriétés acoustiques", CostMin: 100, CostMax: 200, Impact: "-3 à -5 dB", Difficulty: "facile"},
	}
	if severe {
		window = append(window, Solution{Name: "Double ou triple vitrage", Description: "Remplacement complet des fenêtres par du vitrage performant", CostMin: 3000, CostMax: 6000, Impact: "-15 à -25 dB", Difficulty: "difficile"})
	}

	wall := []Solution{
		{Name: "Panneaux acoustiques décoratifs", Description: "Panneaux muraux absorbants, faciles à installer", CostMin: 100, CostMax: 300, Impact: "-3 à -5 dB", Difficulty: "facile"},
	}
	if severe {
		wall = append(wall, Solution{Name: "Doublage isolant", Description: "Ajout d'une contre-cloison avec isolant acoustique", CostMin: 2000, CostMax: 5000, Impact: "-10 à -15 dB", Difficulty: "difficile"})
	}

	ceiling := []Solution{{Name: "Aucune intervention nécessaire", Description: "Le plafond offre une isolation satisfaisante", Impact: "-", Difficulty: "-"}}
	if neighbours || severe {
		ceiling = []Solution{{Name: "Faux plafond acoustique", Description: "Installation d'un plafond suspendu avec isolant", CostMin: 3000, CostMax: 8000, Impact: "-15 à -25 dB", Difficulty: "difficile"}}
	}

	windowPriority := "basse"
	switch {
	case traffic:
		windowPriority = "haute"
	case !good:
		windowPriority = "moyenne"
	}
	windowProblem := "Transmission du bruit extérieur à améliorer"
	switch {
	case good:
		windowProblem = "Légère transmission du bruit extérieur"
	case severe:
		windowProblem = "Transmission importante du bruit extérieur nécessitant une intervention"
	}

	return Recommendations{
		Window: Advice{
			Priority: windowPriority,
			Positives: textutil.Ternary(good,
				"Vos fenêtres offrent déjà une isolation correcte pour ce type de logement.",
				"La structure des fenêtres permet d'envisager des améliorations simples et efficaces."),
			Problem:   windowProblem,
			Solutions: window,
		},
		Wall: Advice{
			Priority: textutil.Ternary(neighbours, "moyenne", "basse"),
			Positives: textutil.Ternary(good,
				"Les murs présentent une masse suffisante pour bloquer la majorité des bruits.",
				"La configuration des murs permet d'ajouter des solutions d'absorption efficaces."),
			Problem:   textutil.Ternary(neighbours, "Transmission latérale modérée", "Isolation murale standard, améliorable si besoin"),
			Solutions: wall,
		},
		Door: Advice{
			Priority:  "moyenne",
			Positives: "Les portes assurent une séparation correcte entre les pièces.",
			Problem:   "Passage du son par les interstices",
			Solutions: []Solution{
				{Name: "Bas de porte", Description: "Installation d'un joint bas de porte", CostMin: 20, CostMax: 50, Impact: "-3 à -5 dB", Difficulty: "facile"},
				{Name: "Porte acoustique", Description: "Remplacement par une porte à isolation renforcée", CostMin: 500, CostMax: 1500, Impact: "-10 à -20 dB", Difficulty: "moyen"},
			},
		},
		Ceiling: Advice{
			Priority: textutil.Ternary(neighbours, "haute", "basse"),
			Positives: textutil.Ternary(neighbours,
				"La hauteur sous plafond permet d'envisager une solution d'isolation.",
				"Le plafond ne présente pas de transmission excessive de bruits d'impact."),
			Problem:   textutil.Ternary(neighbours, "Bruits d'impact du dessus à traiter", "Aucun problème majeur détecté"),
			Solutions: ceiling,
		},
		Floor: Advice{
			Priority:  "basse",
			Positives: "Le revêtement de sol actuel contribue à l'absorption des bruits intérieurs.",
			Problem:   "Transmission possible vers le dessous",
			Solutions: []Solution{
				{Name: "Tapis épais", Description: "Ajout de tapis ou moquette pour absorber les bruits d'impact", CostMin: 100, CostMax: 300, Impact: "-3 à -5 dB", Difficulty: "facile"},
				{Name: "Sous-couche acoustique", Description: "Installation sous le revêtement existant", CostMin: 500, CostMax: 1500, Impact: "-10 à -15 dB", Difficulty: "moyen"},
			},
		},
		Ventilation: Advice{
			Priority:  "basse",
			Positives: "Le système de ventilation fonctionne correctement.",
			Problem:   "Les entrées d'air peuvent laisser passer le bruit extérieur",
			Solutions: []Solution{
				{Name: "Entrées d'air acoustiques", Description: "Remplacement par des grilles à chicanes acoustiques", CostMin: 50, CostMax: 150, Impact: "-5 à -10 dB", Difficulty: "moyen"},
			},
		},
	}
}

// mergeRecommendations fills elements the model left out with the rule-based
// defaults. It reports how many elements came from the model.
func mergeRecommendations(model, defaults Recommendations) (Recommendations, int) {
	merged := model
	provided := 0
	for _, e := range Elements() {
		slot := merged.slot(e)
		if slot.empty() {
			*slot = defaults.Get(e)
			continue
		}
		provided++
	}
	return merged, provided
}
