package catalog

// Family is a coarse grouping of detected sound labels.
type Family string

const (
	FamilyCirculation  Family = "circulation"
	FamilyTransport    Family = "transport"
	FamilyNeighborhood Family = "voisinage"
	FamilyMusic        Family = "musique"
	FamilyInterior     Family = "interieur"
	FamilyAppliances   Family = "electromenager"
	FamilyNature       Family = "nature"
	FamilyConstruction Family = "travaux"
	FamilyAlerts       Family = "alertes"
	FamilyAnimals      Family = "animaux"
	FamilyOther        Family = "autres"
)

// Character is the qualitative tag attached to a family for presentation.
type Character string

const (
	CharacterProblematic Character = "problematic"
	CharacterModerate    Character = "moderate"
	CharacterNeutral     Character = "neutral"
	CharacterPositive    Character = "positive"
)

// FamilyInfo describes one family: its identifier, human label, character
// tag, chart colour, and the detected labels that belong to it.
type FamilyInfo struct {
	ID        Family
	Label     string
	Character Character
	Color     string
	Members   []string
}

func defaultFamilies() []FamilyInfo {
	return []FamilyInfo{
		{ID: FamilyCirculation, Label: "circulation", Character: CharacterProblematic, Color: "#E74C3C", Members: []string{
			"Vehicle", "Car", "Engine", "Motorcycle", "Truck", "Traffic noise, roadway noise",
			"Accelerating, revving, vroom", "Motor vehicle (road)", "Bus", "Car passing by",
			"Race car, auto racing", "Tire squeal", "Skidding", "Vehicle horn, car horn, honking",
			"Emergency vehicle", "Ambulance (siren)", "Police car (siren)", "Fire engine, fire truck (siren)",
		}},
		{ID: FamilyTransport, Label: "transport", Character: CharacterProblematic, Color: "#9B59B6", Members: []string{
			"Train", "Rail transport", "Train whistle", "Train horn", "Subway, metro, underground",
			"Aircraft", "Aircraft engine", "Jet engine", "Helicopter", "Fixed-wing aircraft, airplane",
		}},
		{ID: FamilyNeighborhood, Label: "voisinage", Character: CharacterModerate, Color: "#F39C12", Members: []string{
			"Speech", "Male speech, man speaking", "Female speech, woman speaking", "Child speech, kid speaking",
			"Conversation", "Narration, monologue", "Shout", "Yell", "Screaming", "Children shouting",
			"Laughter", "Crying, sobbing", "Baby cry, infant cry", "Crowd", "Chatter",
			"Hubbub, speech noise, speech babble", "Children playing", "Walk, footsteps", "Run",
			"Clapping", "Applause",
		}},
		{ID: FamilyMusic, Label: "musique", Character: CharacterModerate, Color: "#3498DB", Members: []string{
			"Music", "Singing", "Musical instrument", "Pop music", "Rock music", "Hip hop music",
			"Classical music", "Jazz", "Electronic music", "Guitar", "Piano", "Drum", "Drum kit", "Bass guitar",
		}},
		{ID: FamilyInterior, Label: "intérieur", Character: CharacterNeutral, Color: "#1ABC9C", Members: []string{
			"Inside, small room", "Inside, large room or hall", "Inside, public space", "Door", "Knock",
			"Slam", "Sliding door", "Cupboard open or close", "Drawer open or close", "Squeak", "Creak",
		}},
		{ID: FamilyAppliances, Label: "électroménager", Character: CharacterNeutral, Color: "#34495E", Members: []string{
			"Vacuum cleaner", "Blender", "Microwave oven", "Hair dryer", "Mechanical fan", "Air conditioning",
			"Washing machine", "Dishes, pots, and pans", "Cutlery, silverware", "Chopping (food)",
			"Frying (food)", "Water tap, faucet", "Toilet flush", "Boiling",
		}},
		{ID: FamilyNature, Label: "nature", Character: CharacterPositive, Color: "#27AE60", Members: []string{
			"Bird", "Bird vocalization, bird call, bird song", "Chirp, tweet", "Rain", "Raindrop",
			"Rain on surface", "Thunder", "Thunderstorm", "Wind", "Rustling leaves", "Water", "Stream",
			"Ocean", "Waves, surf",
		}},
		{ID: FamilyConstruction, Label: "travaux", Character: CharacterProblematic, Color: "#D35400", Members: []string{
			"Drill", "Hammer", "Sawing", "Power tool", "Jackhammer", "Sanding", "Filing (rasp)",
			"Chainsaw", "Lawn mower",
		}},
		{ID: FamilyAlerts, Label: "alertes", Character: CharacterProblematic, Color: "#C0392B", Members: []string{
			"Alarm", "Alarm clock", "Siren", "Smoke detector, smoke alarm", "Fire alarm", "Car alarm",
			"Buzzer", "Telephone bell ringing", "Ringtone",
		}},
		{ID: FamilyAnimals, Label: "animaux", Character: CharacterModerate, Color: "#8E44AD", Members: []string{
			"Dog", "Bark", "Cat", "Meow", "Purr", "Domestic animals, pets",
		}},
		{ID: FamilyOther, Label: "autres", Character: CharacterNeutral, Color: "#95A5A6"},
	}
}

var defaultNormalSounds = []string{
	"Bird", "Bird vocalization, bird call, bird song", "Chirp, tweet", "Rain", "Raindrop", "Wind",
	"Rustling leaves", "Music", "Singing", "Speech", "Conversation", "Water", "Stream", "Clock", "Tick-tock",
}

var defaultProblematicSounds = []string{
	"Vehicle", "Car", "Truck", "Motorcycle", "Traffic noise, roadway noise", "Aircraft", "Jet engine",
	"Train", "Drill", "Jackhammer", "Hammer", "Power tool", "Chainsaw", "Alarm", "Siren", "Car alarm",
	"Smoke detector, smoke alarm", "Screaming", "Shout", "Children shouting", "Baby cry, infant cry",
	"Dog", "Bark",
}
