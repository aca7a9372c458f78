package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"sonalyze/internal/fileutil"
	"sonalyze/internal/logging"
	"sonalyze/internal/services"
	"sonalyze/internal/textutil"
)

const (
	lockFileName   = ".clients.lock"
	fileTimeLayout = "20060102_150405"
	lockRetryDelay = 50 * time.Millisecond
)

// legacyNamespace seeds ids derived from file names of records without one.
var legacyNamespace = uuid.MustParse("6f1d3b1e-5c1a-4d55-9a43-0d1c7c2f9b10")

// Store reads and writes client records under one directory.
type Store struct {
	dir      string
	logger   *slog.Logger
	lock     *flock.Flock
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for timestamps and file names.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns a store rooted at dir. The directory is created on the
// first write.
func NewStore(dir string, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		dir:      dir,
		logger:   logging.NewComponentLogger(logger, "clients"),
		lock:     flock.New(filepath.Join(dir, lockFileName)),
		validate: newValidator(),
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the directory the store manages.
func (s *Store) Dir() string { return s.dir }

// List returns every readable record, newest first. Unreadable files are
// skipped with a warning.
func (s *Store) List() ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read clients directory: %w", err)
	}

	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		rec, err := s.read(entry.Name())
		if err != nil {
			logging.WarnWithContext(s.logger, "skipping unreadable client file", "client_file_invalid",
				logging.String("file", entry.Name()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "fix or remove the file"),
				logging.String(logging.FieldImpact, "client is missing from listings"),
			)
			continue
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i].Metadata.CreatedAt.Time, records[j].Metadata.CreatedAt.Time
		if !a.Equal(b) {
			return a.After(b)
		}
		return records[i].file < records[j].file
	})
	return records, nil
}

// Get finds a record by id, by file name, or by file name without the
// .json suffix.
func (s *Store) Get(ref string) (Record, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Record{}, services.Wrap(services.ErrValidation, "clients", "get", "client reference required", nil)
	}
	if name := fileNameFor(ref); name != "" {
		rec, err := s.read(name)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return Record{}, err
		}
	}
	records, err := s.List()
	if err != nil {
		return Record{}, err
	}
	for _, rec := range records {
		if strings.EqualFold(rec.ID, ref) {
			return rec, nil
		}
	}
	return Record{}, services.Wrap(services.ErrNotFound, "clients", "get", fmt.Sprintf("no client matches %q", ref), nil)
}

// Create assigns an id, timestamps, and a file name to rec, then saves it.
// A new record starts in the pending state unless rec sets a status.
func (s *Store) Create(ctx context.Context, rec Record) (Record, error) {
	now := NewTime(s.now())
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = s.newID()
	}
	if rec.Metadata.CreatedAt.IsZero() {
		rec.Metadata.CreatedAt = now
	}
	rec.Metadata.UpdatedAt = now
	if rec.Metadata.Status == "" {
		rec.Metadata.Status = StatusPending
	}
	if err := validateRecord(s.validate, rec); err != nil {
		return Record{}, err
	}

	err := s.withLock(ctx, func() error {
		name, err := s.freeFileName(rec, now.Time)
		if err != nil {
			return err
		}
		rec.file = name
		return s.write(rec)
	})
	if err != nil {
		return Record{}, err
	}
	logging.WithContext(services.WithClientID(ctx, rec.ID), s.logger).Info("client record created",
		logging.String("file", rec.file),
		logging.String("client_name", rec.Client.FullName()),
	)
	return rec, nil
}

// Import reads a client form document, such as the JSON produced by the
// intake form, and stores it as a new record.
func (s *Store) Import(ctx context.Context, r io.Reader) (Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Record{}, fmt.Errorf("read client form: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Record{}, services.Wrap(services.ErrValidation, "clients", "import", "client form is not a JSON object", err)
	}
	for _, key := range []string{"informations_client", "informations_logement"} {
		if _, ok := fields[key]; !ok {
			return Record{}, services.Wrap(services.ErrValidation, "clients", "import", "missing section "+key, nil)
		}
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, services.Wrap(services.ErrValidation, "clients", "import", "decode client form", err)
	}
	if rec.Metadata.Source == "" {
		rec.Metadata.Source = "import"
	}
	return s.Create(ctx, rec)
}

// Save validates and rewrites an existing record.
func (s *Store) Save(ctx context.Context, rec Record) (Record, error) {
	if rec.file == "" {
		return Record{}, services.Wrap(services.ErrValidation, "clients", "save", "record was never stored; use Create", nil)
	}
	rec.Metadata.UpdatedAt = NewTime(s.now())
	if err := validateRecord(s.validate, rec); err != nil {
		return Record{}, err
	}
	if err := s.withLock(ctx, func() error { return s.write(rec) }); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// AttachMeasurement links a sensor export to the client. A pending client
// moves to in progress.
func (s *Store) AttachMeasurement(ctx context.Context, ref, measurementFile string) (Record, error) {
	measurementFile = strings.TrimSpace(measurementFile)
	if measurementFile == "" {
		return Record{}, services.Wrap(services.ErrValidation, "clients", "attach", "measurement file required", nil)
	}
	return s.update(ctx, ref, func(rec *Record) {
		rec.Metadata.MeasurementFile = measurementFile
		if rec.Metadata.Status == StatusPending {
			rec.Metadata.Status = StatusInProgress
		}
	})
}

// SetStatus changes the workflow status of a client.
func (s *Store) SetStatus(ctx context.Context, ref string, status Status) (Record, error) {
	if _, ok := ParseStatus(string(status)); !ok {
		return Record{}, services.Wrap(services.ErrValidation, "clients", "status", fmt.Sprintf("unknown status %q", status), nil)
	}
	return s.update(ctx, ref, func(rec *Record) { rec.Metadata.Status = status })
}

// Stats counts clients per status.
type Stats struct {
	Total           int `json:"total"`
	Pending         int `json:"en_attente"`
	InProgress      int `json:"analyse_en_cours"`
	Done            int `json:"termine"`
	WithMeasurement int `json:"avec_json_boitier"`
}

// Stats summarizes every readable record.
func (s *Store) Stats() (Stats, error) {
	records, err := s.List()
	if err != nil {
		return Stats{}, err
	}
	var st Stats
	for _, rec := range records {
		st.Total++
		switch rec.Metadata.Status {
		case StatusPending:
			st.Pending++
		case StatusInProgress:
			st.InProgress++
		case StatusDone:
			st.Done++
		}
		if rec.HasMeasurement() {
			st.WithMeasurement++
		}
	}
	return st, nil
}

func (s *Store) update(ctx context.Context, ref string, mutate func(*Record)) (Record, error) {
	current, err := s.Get(ref)
	if err != nil {
		return Record{}, err
	}
	var out Record
	err = s.withLock(ctx, func() error {
		// Re-read under the lock so concurrent writers are not overwritten.
		rec, err := s.read(current.file)
		if err != nil {
			return err
		}
		mutate(&rec)
		rec.Metadata.UpdatedAt = NewTime(s.now())
		if err := validateRecord(s.validate, rec); err != nil {
			return err
		}
		out = rec
		return s.write(rec)
	})
	if err != nil {
		return Record{}, err
	}
	logging.WithContext(services.WithClientID(ctx, out.ID), s.logger).Info("client record updated",
		logging.String("file", out.file),
		logging.String("status", string(out.Metadata.Status)),
	)
	return out, nil
}

func (s *Store) withLock(ctx context.Context, fn func() error) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create clients directory: %w", err)
	}
	ok, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire clients lock: %w", err)
	}
	if !ok {
		return services.Wrap(services.ErrTimeout, "clients", "lock", "clients directory is locked by another process", nil)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release clients lock",
				logging.String(logging.FieldEventType, "clients_unlock_failed"),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove "+lockFileName+" if no sonalyze process is running"),
				logging.String(logging.FieldImpact, "later writes may wait for the lock"))
		}
	}()
	return fn()
}

func (s *Store) read(name string) (Record, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("parse %s: %w", name, err)
	}
	rec.file = name
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = uuid.NewSHA1(legacyNamespace, []byte(name)).String()
	}
	if rec.Metadata.Status == "" {
		rec.Metadata.Status = StatusPending
	}
	return rec, nil
}

// write stores rec atomically via a temp file. Callers hold the lock.
func (s *Store) write(rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal client record: %w", err)
	}
	path := filepath.Join(s.dir, rec.file)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *Store) freeFileName(rec Record, created time.Time) (string, error) {
	base := fmt.Sprintf("%s_%s_%s",
		textutil.SanitizeToken(rec.Client.LastName),
		textutil.SanitizeToken(rec.Client.FirstName),
		created.Format(fileTimeLayout))
	name, err := fileutil.FreeName(s.dir, base+".json")
	if err != nil {
		return "", fmt.Errorf("choose client file name: %w", err)
	}
	return name, nil
}

// fileNameFor maps a reference to a candidate file name, or "" when ref
// cannot be one.
func fileNameFor(ref string) string {
	if strings.ContainsAny(ref, `/\`) {
		return ""
	}
	if strings.HasSuffix(ref, ".json") {
		return ref
	}
	return ref + ".json"
}
