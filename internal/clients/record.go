package clients

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Status tracks a client through the diagnostic workflow.
type Status string

const (
	StatusPending    Status = "en_attente"
	StatusInProgress Status = "analyse_en_cours"
	StatusDone       Status = "termine"
)

// Statuses lists every status in workflow order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusDone}
}

// ParseStatus accepts the stored identifier of a status.
func ParseStatus(value string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, candidate := range Statuses() {
		if s == candidate {
			return s, true
		}
	}
	return "", false
}

// Label returns the French display label.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "En attente"
	case StatusInProgress:
		return "Analyse en cours"
	case StatusDone:
		return "Terminé"
	default:
		return string(s)
	}
}

// ClientInfo identifies the person who ordered the diagnostic.
type ClientInfo struct {
	LastName  string `json:"nom" validate:"required,max=100"`
	FirstName string `json:"prenom" validate:"required,max=100"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string `json:"telephone,omitempty" validate:"omitempty,max=30"`
}

// FullName joins last and first name.
func (c ClientInfo) FullName() string {
	return strings.TrimSpace(c.LastName + " " + c.FirstName)
}

// HousingInfo describes the dwelling.
type HousingInfo struct {
	Name       string   `json:"nom_logement,omitempty" validate:"max=200"`
	Address    string   `json:"adresse,omitempty" validate:"max=300"`
	PostalCode string   `json:"code_postal,omitempty" validate:"omitempty,numeric,len=5"`
	City       string   `json:"ville,omitempty" validate:"max=100"`
	Type       string   `json:"type_logement,omitempty" validate:"omitempty,oneof=Appartement Maison"`
	Floor      string   `json:"etage,omitempty" validate:"omitempty,oneof=RDC 1 2 3 4 5 6+"`
	Layout     string   `json:"typologie,omitempty" validate:"omitempty,oneof=Studio T1 T2 T3 T4 T5 T6+"`
	SurfaceM2  *float64 `json:"surface_totale_m2,omitempty" validate:"omitempty,gt=0,lte=10000"`
}

// Room is one room declared by the client.
type Room struct {
	Name      string   `json:"nom" validate:"required"`
	Type      string   `json:"type,omitempty"`
	SurfaceM2 *float64 `json:"surface_m2,omitempty" validate:"omitempty,gt=0,lte=500"`
}

// Surroundings captures the client's own rating (0-5) of outdoor noise.
type Surroundings struct {
	RoadNoise          int  `json:"bruit_circulation_routiere" validate:"min=0,max=5"`
	RailNoise          int  `json:"bruit_ferroviaire" validate:"min=0,max=5"`
	AirNoise           int  `json:"bruit_aerien" validate:"min=0,max=5"`
	NightlifeNearby    bool `json:"zones_festives_proximite"`
	NightclubDistanceM *int `json:"distance_boites_nuit_m,omitempty" validate:"omitempty,min=0"`
}

// Metadata tracks workflow state.
type Metadata struct {
	CreatedAt       Time   `json:"date_creation"`
	UpdatedAt       Time   `json:"date_modification"`
	Status          Status `json:"statut" validate:"client_status"`
	MeasurementFile string `json:"fichier_json_boitier"`
	Source          string `json:"source,omitempty"`
}

// Record is one client file.
type Record struct {
	ID           string        `json:"id" validate:"required,uuid"`
	Client       ClientInfo    `json:"informations_client"`
	Housing      HousingInfo   `json:"informations_logement"`
	Rooms        []Room        `json:"pieces,omitempty" validate:"dive"`
	Surroundings *Surroundings `json:"environnement_exterieur,omitempty"`
	Comments     string        `json:"commentaires,omitempty"`
	Metadata     Metadata      `json:"metadata"`

	file string
}

// FileName returns the base name of the file backing the record, or "" for
// a record that was never saved.
func (r Record) FileName() string { return r.file }

// HasMeasurement reports whether a sensor export is attached.
func (r Record) HasMeasurement() bool { return strings.TrimSpace(r.Metadata.MeasurementFile) != "" }

// Matches reports whether query appears, case-insensitively, in the client
// name, city, or address.
func (r Record) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{r.Client.LastName, r.Client.FirstName, r.Housing.City, r.Housing.Address} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Time is a timestamp that tolerates the ISO layouts older client files
// were written with, including ones without a zone offset.
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// NewTime wraps t truncated to the second.
func NewTime(t time.Time) Time { return Time{Time: t.Truncate(time.Second)} }

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", raw)
}
