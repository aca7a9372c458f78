package catalog

import (
	"fmt"
	"strings"
)

// UnknownLabel is the dominant label assigned to segments without detections.
const UnknownLabel = "unknown"

// Definition is the raw material a Catalog is built from.
type Definition struct {
	Scale       Scale
	Families    []FamilyInfo
	Normal      []string
	Problematic []string
	Rooms       map[string]RoomThreshold
}

// Catalog is the read-only lookup surface shared by the loader and aggregator.
type Catalog struct {
	scale       Scale
	families    []FamilyInfo
	byID        map[Family]int
	labelFamily map[string]Family
	normal      map[string]struct{}
	problematic map[string]struct{}
	rooms       map[string]RoomThreshold
}

// Default builds the catalog used in production.
func Default() *Catalog {
	cat, err := New(Definition{
		Scale:       DefaultScale(),
		Families:    defaultFamilies(),
		Normal:      defaultNormalSounds,
		Problematic: defaultProblematicSounds,
		Rooms:       defaultRooms(),
	})
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid built-in definition: %v", err))
	}
	return cat
}

// New validates a definition and freezes it into a Catalog. The family list
// must end with, or contain, FamilyOther so unknown labels have a home; it is
// appended when missing.
func New(def Definition) (*Catalog, error) {
	cat := &Catalog{
		scale:       def.Scale,
		byID:        make(map[Family]int, len(def.Families)+1),
		labelFamily: make(map[string]Family),
		normal:      toSet(def.Normal),
		problematic: toSet(def.Problematic),
		rooms:       make(map[string]RoomThreshold, len(def.Rooms)+1),
	}
	if len(cat.scale.steps) == 0 {
		cat.scale = DefaultScale()
	}

	for _, fam := range def.Families {
		if strings.TrimSpace(string(fam.ID)) == "" {
			return nil, fmt.Errorf("catalog: family with empty id")
		}
		if _, dup := cat.byID[fam.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate family %q", fam.ID)
		}
		members := make([]string, len(fam.Members))
		copy(members, fam.Members)
		fam.Members = members
		cat.byID[fam.ID] = len(cat.families)
		cat.families = append(cat.families, fam)
		for _, label := range members {
			if prev, taken := cat.labelFamily[label]; taken {
				return nil, fmt.Errorf("catalog: label %q mapped to both %q and %q", label, prev, fam.ID)
			}
			cat.labelFamily[label] = fam.ID
		}
	}
	if _, ok := cat.byID[FamilyOther]; !ok {
		cat.byID[FamilyOther] = len(cat.families)
		cat.families = append(cat.families, FamilyInfo{ID: FamilyOther, Label: "autres", Character: CharacterNeutral, Color: "#95A5A6"})
	}

	for room, t := range def.Rooms {
		cat.rooms[normalizeRoom(room)] = t
	}
	if _, ok := cat.rooms[defaultRoom]; !ok {
		cat.rooms[defaultRoom] = defaultRooms()[defaultRoom]
	}
	return cat, nil
}

// Scale returns the rating scale.
func (c *Catalog) Scale() Scale { return c.scale }

// Classify is shorthand for c.Scale().Classify(db).
func (c *Catalog) Classify(db float64) Rating { return c.scale.Classify(db) }

// Families returns the family list in enumeration order.
func (c *Catalog) Families() []FamilyInfo {
	out := make([]FamilyInfo, len(c.families))
	copy(out, c.families)
	return out
}

// FamilyIndex returns the enumeration position of a family, or -1.
func (c *Catalog) FamilyIndex(f Family) int {
	if idx, ok := c.byID[f]; ok {
		return idx
	}
	return -1
}

// Family returns the description of a family.
func (c *Catalog) Family(f Family) (FamilyInfo, bool) {
	idx, ok := c.byID[f]
	if !ok {
		return FamilyInfo{}, false
	}
	return c.families[idx], true
}

// FamilyOf maps a detected label to its family; unmapped labels are "autres".
func (c *Catalog) FamilyOf(label string) Family {
	if fam, ok := c.labelFamily[label]; ok {
		return fam
	}
	return FamilyOther
}

// IsProblematic reports whether the label is a known nuisance.
func (c *Catalog) IsProblematic(label string) bool {
	_, ok := c.problematic[label]
	return ok
}

// IsNormal reports whether the label is an everyday, acceptable sound.
func (c *Catalog) IsNormal(label string) bool {
	_, ok := c.normal[label]
	return ok
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
