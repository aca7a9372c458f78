package measurement

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"sonalyze/internal/catalog"
	"sonalyze/internal/logging"
)

const (
	// MinLevelDB and MaxLevelDB bound every sound level field.
	MinLevelDB = 0.0
	MaxLevelDB = 130.0

	defaultDayStartHour   = 7
	defaultNightStartHour = 22
)

// Raw field names of the sensor export.
const (
	FieldBoxID         = "box_id"
	FieldTimestamp     = "timestamp"
	FieldLevel         = "LAeq_segment_dB"
	FieldRating        = "LAeq_rating"
	FieldMin           = "Lmin_dB"
	FieldMax           = "Lmax_dB"
	FieldLabels        = "top_5_labels"
	FieldProbabilities = "top_5_probs"
)

// Loader parses and validates sensor exports.
type Loader struct {
	catalog        *catalog.Catalog
	dayStartHour   int
	nightStartHour int
	logger         *slog.Logger
}

// Option customizes a Loader.
type Option func(*Loader)

// WithDayWindow sets the first day hour and the first night hour. A record is
// night when its hour is >= nightStart or < dayStart.
func WithDayWindow(dayStart, nightStart int) Option {
	return func(l *Loader) {
		l.dayStartHour = dayStart
		l.nightStartHour = nightStart
	}
}

// WithLogger routes data quality warnings to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader builds a loader bound to an immutable catalog.
func NewLoader(cat *catalog.Catalog, opts ...Option) *Loader {
	if cat == nil {
		cat = catalog.Default()
	}
	l := &Loader{
		catalog:        cat,
		dayStartHour:   defaultDayStartHour,
		nightStartHour: defaultNightStartHour,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.NewComponentLogger(l.logger, "loader")
	return l
}

// IsNight reports whether hour falls in the night window.
func (l *Loader) IsNight(hour int) bool {
	if l.nightStartHour > l.dayStartHour {
		return hour >= l.nightStartHour || hour < l.dayStartHour
	}
	return hour >= l.nightStartHour && hour < l.dayStartHour
}

// LoadFile reads and validates the export at path.
func (l *Loader) LoadFile(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read measurements: %w", err)
	}
	return l.load(path, data)
}

// LoadReader reads and validates an export from r.
func (l *Loader) LoadReader(r io.Reader) (*Collection, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read measurements: %w", err)
	}
	return l.load("-", data)
}

// Load validates raw JSON bytes.
func (l *Loader) Load(raw []byte) (*Collection, error) {
	return l.load("", raw)
}

func (l *Loader) load(source string, raw []byte) (*Collection, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &MalformedInputError{Index: -1, Reason: "top-level value must be an array of segments"}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, &MalformedInputError{Index: -1, Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if len(entries) == 0 {
		return nil, &EmptyInputError{Source: source}
	}

	records := make([]Record, 0, len(entries))
	var warnings []Warning
	for i, entry := range entries {
		rec, recWarnings, err := l.parseRecord(i, entry)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		warnings = append(warnings, recWarnings...)
	}

	for _, w := range warnings {
		logging.WarnWithContext(l.logger, "data quality warning", string(w.Kind),
			logging.Int("segment", w.Index),
			logging.String("field", w.Field),
			logging.String("detail", w.Message),
			logging.String(logging.FieldErrorHint, "inspect the sensor export"),
			logging.String(logging.FieldImpact, "segment kept with corrected values"),
		)
	}
	l.logger.Debug("measurements loaded",
		logging.String("source", source),
		logging.Int("segments", len(records)),
		logging.Int("warnings", len(warnings)),
	)

	return &Collection{source: source, records: records, warnings: warnings}, nil
}

func (l *Loader) parseRecord(index int, entry json.RawMessage) (Record, []Warning, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(entry, &fields); err != nil || fields == nil {
		return Record{}, nil, &MalformedInputError{Index: index, Reason: "segment must be an object"}
	}

	var rec Record
	var warnings []Warning
	warn := func(kind WarningKind, field, format string, args ...any) {
		warnings = append(warnings, Warning{Index: index, Kind: kind, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if _, err := optionalField(fields, index, FieldBoxID, &rec.BoxID); err != nil {
		return Record{}, nil, err
	}

	var rawTS string
	ok, err := optionalField(fields, index, FieldTimestamp, &rawTS)
	if err != nil {
		return Record{}, nil, err
	}
	if !ok {
		return Record{}, nil, &MalformedInputError{Index: index, Field: FieldTimestamp, Reason: "required field missing"}
	}
	ts, err := parseTimestamp(rawTS)
	if err != nil {
		return Record{}, nil, &MalformedInputError{Index: index, Field: FieldTimestamp, Reason: err.Error()}
	}
	rec.Timestamp = ts

	ok, err = optionalField(fields, index, FieldLevel, &rec.LevelDB)
	if err != nil {
		return Record{}, nil, err
	}
	if !ok {
		return Record{}, nil, &MalformedInputError{Index: index, Field: FieldLevel, Reason: "required field missing"}
	}
	if err := checkRange(index, FieldLevel, rec.LevelDB, MinLevelDB, MaxLevelDB); err != nil {
		return Record{}, nil, err
	}

	for _, bound := range []struct {
		name string
		dst  **float64
	}{{FieldMin, &rec.MinDB}, {FieldMax, &rec.MaxDB}} {
		var value float64
		ok, err := optionalField(fields, index, bound.name, &value)
		if err != nil {
			return Record{}, nil, err
		}
		if !ok {
			continue
		}
		if err := checkRange(index, bound.name, value, MinLevelDB, MaxLevelDB); err != nil {
			return Record{}, nil, err
		}
		*bound.dst = &value
	}

	if _, err := optionalField(fields, index, FieldLabels, &rec.Labels); err != nil {
		return Record{}, nil, err
	}
	if _, err := optionalField(fields, index, FieldProbabilities, &rec.Probabilities); err != nil {
		return Record{}, nil, err
	}
	for _, p := range rec.Probabilities {
		if err := checkRange(index, FieldProbabilities, p, 0, 1); err != nil {
			return Record{}, nil, err
		}
	}
	if len(rec.Labels) != len(rec.Probabilities) {
		n := min(len(rec.Labels), len(rec.Probabilities))
		warn(WarnLengthMismatch, FieldLabels, "%d labels but %d probabilities, truncated to %d", len(rec.Labels), len(rec.Probabilities), n)
		rec.Labels = rec.Labels[:n]
		rec.Probabilities = rec.Probabilities[:n]
	}
	if rec.Labels == nil {
		rec.Labels = []string{}
	}
	if rec.Probabilities == nil {
		rec.Probabilities = []float64{}
	}

	if rec.MinDB != nil && rec.MaxDB != nil {
		if *rec.MinDB > *rec.MaxDB {
			warn(WarnMinAboveMax, FieldMin, "Lmin %.1f dB above Lmax %.1f dB", *rec.MinDB, *rec.MaxDB)
		} else if rec.LevelDB < *rec.MinDB || rec.LevelDB > *rec.MaxDB {
			warn(WarnLevelOutside, FieldLevel, "LAeq %.1f dB outside [%.1f, %.1f]", rec.LevelDB, *rec.MinDB, *rec.MaxDB)
		}
	}

	var rawRating string
	ok, err = optionalField(fields, index, FieldRating, &rawRating)
	if err != nil {
		return Record{}, nil, err
	}
	rec.Rating = l.catalog.Classify(rec.LevelDB)
	if ok {
		if rating, valid := catalog.ParseRating(rawRating); valid {
			rec.Rating = rating
		} else {
			warn(WarnInvalidRating, FieldRating, "invalid rating %q, recomputed as %s", rawRating, rec.Rating)
		}
	}

	l.enrich(&rec)
	return rec, warnings, nil
}

func (l *Loader) enrich(rec *Record) {
	rec.Hour = rec.Timestamp.Hour()
	rec.Night = l.IsNight(rec.Hour)
	rec.DominantLabel = catalog.UnknownLabel
	if len(rec.Labels) > 0 && rec.Labels[0] != "" {
		rec.DominantLabel = rec.Labels[0]
	}
	if len(rec.Probabilities) > 0 {
		rec.DominantProbability = rec.Probabilities[0]
	}
}

// optionalField decodes fields[name] into dst. It reports false when the
// field is absent or null.
func optionalField[T any](fields map[string]json.RawMessage, index int, name string, dst *T) (bool, error) {
	raw, ok := fields[name]
	if !ok || string(bytes.TrimSpace(raw)) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, &MalformedInputError{Index: index, Field: name, Reason: fmt.Sprintf("unexpected type: %s", typeName(raw))}
	}
	return true, nil
}

func checkRange(index int, field string, value, lo, hi float64) error {
	if math.IsNaN(value) || value < lo || value > hi {
		return &OutOfRangeError{Index: index, Field: field, Value: value, Min: lo, Max: hi}
	}
	return nil
}

func typeName(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "empty"
	}
	switch trimmed[0] {
	case '"':
		return "string"
	case '[':
		return "array"
	case '{':
		return "object"
	case 't', 'f':
		return "boolean"
	default:
		return "number"
	}
}
