package catalog

import "strings"

// RoomStatus is the comfort verdict for a room given its mean level.
type RoomStatus string

const (
	RoomGood         RoomStatus = "bon"
	RoomAverage      RoomStatus = "moyen"
	RoomInsufficient RoomStatus = "insuffisant"
)

// RoomThreshold holds the inclusive upper bounds for the good and average
// verdicts. Insufficient is informational: anything above Average is
// insufficient.
type RoomThreshold struct {
	Good         float64
	Average      float64
	Insufficient float64
}

const defaultRoom = "default"

func defaultRooms() map[string]RoomThreshold {
	return map[string]RoomThreshold{
		"chambre":       {Good: 25, Average: 35, Insufficient: 45},
		"salon":         {Good: 35, Average: 45, Insufficient: 55},
		"bureau":        {Good: 35, Average: 45, Insufficient: 55},
		"cuisine":       {Good: 45, Average: 55, Insufficient: 65},
		"salle_de_bain": {Good: 45, Average: 55, Insufficient: 65},
		defaultRoom:     {Good: 40, Average: 50, Insufficient: 60},
	}
}

// RoomThreshold returns the thresholds for a room type, falling back to the
// default profile for unknown rooms.
func (c *Catalog) RoomThreshold(room string) RoomThreshold {
	key := normalizeRoom(room)
	if t, ok := c.rooms[key]; ok {
		return t
	}
	return c.rooms[defaultRoom]
}

// RoomStatus classifies a mean level against the thresholds of a room type.
func (c *Catalog) RoomStatus(db float64, room string) RoomStatus {
	t := c.RoomThreshold(room)
	switch {
	case db <= t.Good:
		return RoomGood
	case db <= t.Average:
		return RoomAverage
	default:
		return RoomInsufficient
	}
}

func normalizeRoom(room string) string {
	key := strings.ToLower(strings.TrimSpace(room))
	key = strings.ReplaceAll(key, " ", "_")
	if key == "" {
		return defaultRoom
	}
	return key
}
