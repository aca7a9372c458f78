package analysis

import (
	"log/slog"
	"time"

	"sonalyze/internal/catalog"
	"sonalyze/internal/logging"
	"sonalyze/internal/measurement"
)

const (
	defaultTopN              = 5
	defaultClassificationN   = 30
	defaultClassificationCap = 10
	defaultHeatmapSize       = 20
	defaultMinConsecutive    = 3
	defaultSegmentSeconds    = 9
	defaultMaxEvents         = 50

	dateLayout = "2006-01-02 15:04"
)

// Aggregator computes summaries against an immutable catalog. It holds no
// mutable state and may be shared between goroutines.
type Aggregator struct {
	catalog        *catalog.Catalog
	topN           int
	heatmapSize    int
	minConsecutive int
	segmentSeconds int
	maxEvents      int
	logger         *slog.Logger
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithTopN sets the length of the label rankings.
func WithTopN(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.topN = n
		}
	}
}

// WithHeatmapSize sets how many labels the hour heatmap tracks.
func WithHeatmapSize(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.heatmapSize = n
		}
	}
}

// WithEventDetection sets the minimum run length of an event, the nominal
// segment duration in seconds, and the maximum number of reported events.
func WithEventDetection(minConsecutive, segmentSeconds, maxEvents int) Option {
	return func(a *Aggregator) {
		if minConsecutive > 0 {
			a.minConsecutive = minConsecutive
		}
		if segmentSeconds > 0 {
			a.segmentSeconds = segmentSeconds
		}
		if maxEvents > 0 {
			a.maxEvents = maxEvents
		}
	}
}

// WithLogger attaches a logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// New builds an aggregator bound to cat.
func New(cat *catalog.Catalog, opts ...Option) *Aggregator {
	if cat == nil {
		cat = catalog.Default()
	}
	a := &Aggregator{
		catalog:        cat,
		topN:           defaultTopN,
		heatmapSize:    defaultHeatmapSize,
		minConsecutive: defaultMinConsecutive,
		segmentSeconds: defaultSegmentSeconds,
		maxEvents:      defaultMaxEvents,
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.NewComponentLogger(a.logger, "aggregator")
	return a
}

// Catalog returns the catalog the aggregator classifies against.
func (a *Aggregator) Catalog() *catalog.Catalog { return a.catalog }

// Aggregate computes the summary of col. The collection must come from a
// successful load; ranges are not re-validated.
func (a *Aggregator) Aggregate(col *measurement.Collection) (*Summary, error) {
	if col == nil || col.Len() == 0 {
		return nil, &EmptyPartitionError{Partition: "global"}
	}
	records := col.Records()

	var day, night []measurement.Record
	for _, r := range records {
		if r.Night {
			night = append(night, r)
		} else {
			day = append(day, r)
		}
	}

	global, err := a.global(records)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Global: global,
		DayNight: DayNight{
			Day:   a.periodStats(day),
			Night: a.periodStats(night),
		},
		Sounds: Sounds{
			Top:           a.ranking(records, a.topN),
			TopDay:        a.ranking(day, a.topN),
			TopNight:      a.ranking(night, a.topN),
			FamiliesDay:   a.families(day),
			FamiliesNight: a.families(night),
			Families:      a.families(records),
		},
		Ratings: ratingHistogram(records),
		Hourly:  a.hourly(records),
		Heatmap: a.heatmap(records),
		Events:  a.events(records),
	}
	summary.Sounds.Classification = a.classify(records)

	a.logger.Debug("summary computed",
		logging.Int("segments", global.TotalSegments),
		logging.Float64("db_mean", global.MeanDB),
		logging.String("rating", string(global.Rating)),
		logging.Int("day_segments", len(day)),
		logging.Int("night_segments", len(night)),
		logging.Int("events", len(summary.Events)),
	)
	return summary, nil
}

// RatePartition classifies the mean level of records. It fails when records
// is empty because no single value can represent it.
func (a *Aggregator) RatePartition(name string, records []measurement.Record) (catalog.Rating, error) {
	if len(records) == 0 {
		return "", &EmptyPartitionError{Partition: name}
	}
	var acc accumulator
	for _, r := range records {
		acc.add(r.LevelDB, 0)
	}
	return a.catalog.Classify(acc.meanDB()), nil
}

func (a *Aggregator) global(records []measurement.Record) (Global, error) {
	rating, err := a.RatePartition("global", records)
	if err != nil {
		return Global{}, err
	}
	var acc accumulator
	levels := make([]float64, len(records))
	first, last := records[0].Timestamp, records[0].Timestamp
	for i, r := range records {
		acc.add(r.LevelDB, 0)
		levels[i] = r.LevelDB
		if r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}
	return Global{
		TotalSegments: len(records),
		DurationHours: roundTo(last.Sub(first).Hours(), 2),
		DateStart:     formatDate(first),
		DateEnd:       formatDate(last),
		MeanDB:        round1(acc.meanDB()),
		MinDB:         round1(acc.minDB),
		MaxDB:         round1(acc.maxDB),
		MedianDB:      round1(median(levels)),
		Rating:        rating,
	}, nil
}

func (a *Aggregator) periodStats(records []measurement.Record) PeriodStats {
	if len(records) == 0 {
		return PeriodStats{}
	}
	var acc accumulator
	for _, r := range records {
		acc.add(r.LevelDB, 0)
	}
	return PeriodStats{
		Mean:  ptr(round1(acc.meanDB())),
		Min:   ptr(round1(acc.minDB)),
		Max:   ptr(round1(acc.maxDB)),
		Count: acc.count,
		Note:  a.catalog.Classify(acc.meanDB()),
	}
}

func ratingHistogram(records []measurement.Record) Ratings {
	out := Ratings{
		Distribution: make(map[catalog.Rating]int, 7),
		Percentages:  make(map[catalog.Rating]float64, 7),
	}
	for _, r := range catalog.Ratings() {
		out.Distribution[r] = 0
	}
	for _, rec := range records {
		out.Distribution[rec.Rating]++
	}
	for _, r := range catalog.Ratings() {
		out.Percentages[r] = percentage(out.Distribution[r], len(records))
	}
	return out
}

func formatDate(ts time.Time) string {
	return ts.Format(dateLayout)
}
