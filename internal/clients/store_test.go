package clients

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"sonalyze/internal/services"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newRecord(last, first string) Record {
	return Record{
		Client: ClientInfo{LastName: last, FirstName: first, Email: "client@example.com"},
		Housing: HousingInfo{
			Address:    "12 rue des Lilas",
			PostalCode: "69003",
			City:       "Lyon",
			Type:       "Appartement",
			Floor:      "3",
			Layout:     "T3",
		},
	}
}

func TestCreateAndGet(t *testing.T) {
	dir := t.TempDir()
	created := time.Date(2025, 12, 4, 10, 30, 15, 0, time.UTC)
	store := NewStore(dir, nil, WithClock(fixedClock(created)))

	rec, err := store.Create(context.Background(), newRecord("Dupré", "Hélène"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec.FileName() != "dupre_helene_20251204_103015.json" {
		t.Fatalf("unexpected file name %q", rec.FileName())
	}
	if _, err := uuid.Parse(rec.ID); err != nil {
		t.Fatalf("expected uuid id, got %q", rec.ID)
	}
	if rec.Metadata.Status != StatusPending || !rec.Metadata.CreatedAt.Equal(created) {
		t.Fatalf("unexpected metadata %+v", rec.Metadata)
	}

	for _, ref := range []string{rec.ID, rec.FileName(), strings.TrimSuffix(rec.FileName(), ".json")} {
		found, err := store.Get(ref)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", ref, err)
		}
		if found.ID != rec.ID || found.Client.FirstName != "Hélène" || found.Housing.City != "Lyon" {
			t.Fatalf("Get(%q) returned %+v", ref, found)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, rec.FileName()+".tmp")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("temp file should not remain, stat err = %v", err)
	}
}

func TestCreateAvoidsFileNameCollision(t *testing.T) {
	store := NewStore(t.TempDir(), nil, WithClock(fixedClock(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))))
	first, err := store.Create(context.Background(), newRecord("Martin", "Paul"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := store.Create(context.Background(), newRecord("Martin", "Paul"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if first.FileName() == second.FileName() {
		t.Fatalf("expected distinct file names, both %q", first.FileName())
	}
	if second.FileName() != "martin_paul_20250102_030405_2.json" {
		t.Fatalf("unexpected second file name %q", second.FileName())
	}
}

func TestValidatorChecksStatus(t *testing.T) {
	v := newValidator()
	rec := newRecord("Martin", "Paul")
	rec.ID = "3f1c2b7e-9a4d-4c1e-8f2a-1b2c3d4e5f60"
	rec.Metadata.Status = StatusPending
	if err := validateRecord(v, rec); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}
	rec.Metadata.Status = Status("archive")
	err := validateRecord(v, rec)
	var verr *ValidationError
	if !errors.As(err, &verr) || !verr.Has("metadata.statut") {
		t.Fatalf("expected metadata.statut failure, got %v", err)
	}
}

func TestCreateRejectsInvalidRecord(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	rec := newRecord("", "Paul")
	rec.Client.Email = "not-an-email"
	rec.Housing.PostalCode = "ABCDE"
	rec.Housing.Layout = "T9"

	_, err := store.Create(context.Background(), rec)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	for _, field := range []string{"informations_client.nom", "informations_client.email", "informations_logement.code_postal", "informations_logement.typologie"} {
		if !verr.Has(field) {
			t.Errorf("expected %s in %v", field, verr.Fields)
		}
	}
	entries, _ := os.ReadDir(store.Dir())
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".json") {
			t.Fatalf("invalid record should not be written, found %s", e.Name())
		}
	}
}

func TestListOrdersNewestFirstAndSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	store := NewStore(dir, nil, WithClock(func() time.Time { return clock }))

	if _, err := store.Create(context.Background(), newRecord("Ancien", "Jean")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	clock = clock.Add(24 * time.Hour)
	if _, err := store.Create(context.Background(), newRecord("Recent", "Anne")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write broken file: %v", err)
	}

	records, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Client.LastName != "Recent" || records[1].Client.LastName != "Ancien" {
		t.Fatalf("unexpected order: %s, %s", records[0].Client.LastName, records[1].Client.LastName)
	}
}

func TestListMissingDirectory(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent"), nil)
	records, err := store.List()
	if err != nil || len(records) != 0 {
		t.Fatalf("List on missing dir = %v, %v", records, err)
	}
}

func TestLegacyFileGetsStableID(t *testing.T) {
	dir := t.TempDir()
	legacy := `{
  "informations_client": {"nom": "Client", "prenom": "Test"},
  "informations_logement": {"adresse": "Adresse test", "ville": "Paris"},
  "metadata": {"date_creation": "2025-12-04T10:00:00.123456", "statut": "en_attente", "fichier_json_boitier": ""}
}`
	if err := os.WriteFile(filepath.Join(dir, "client_test_20251204_100000.json"), []byte(legacy), 0o644); err != nil {
		t.Fatalf("write legacy file: %v", err)
	}
	store := NewStore(dir, nil)

	first, err := store.Get("client_test_20251204_100000")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	second, err := store.Get(first.ID)
	if err != nil {
		t.Fatalf("Get by derived id failed: %v", err)
	}
	if first.ID == "" || first.ID != second.ID {
		t.Fatalf("expected stable derived id, got %q and %q", first.ID, second.ID)
	}
	if first.Metadata.CreatedAt.Hour() != 10 {
		t.Fatalf("expected naive timestamp to parse, got %v", first.Metadata.CreatedAt)
	}
}

func TestAttachMeasurementAdvancesStatus(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	rec, err := store.Create(context.Background(), newRecord("Durand", "Luc"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := store.AttachMeasurement(context.Background(), rec.ID, "box_pi3_20251204.json")
	if err != nil {
		t.Fatalf("AttachMeasurement failed: %v", err)
	}
	if updated.Metadata.MeasurementFile != "box_pi3_20251204.json" || updated.Metadata.Status != StatusInProgress {
		t.Fatalf("unexpected metadata %+v", updated.Metadata)
	}

	reloaded, err := store.Get(rec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !reloaded.HasMeasurement() || reloaded.Metadata.Status != StatusInProgress {
		t.Fatalf("attachment not persisted: %+v", reloaded.Metadata)
	}

	if _, err := store.AttachMeasurement(context.Background(), rec.ID, "  "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty file, got %v", err)
	}
}

func TestAttachKeepsDoneStatus(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	rec, err := store.Create(context.Background(), newRecord("Petit", "Zoé"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.SetStatus(context.Background(), rec.ID, StatusDone); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	updated, err := store.AttachMeasurement(context.Background(), rec.ID, "box.json")
	if err != nil {
		t.Fatalf("AttachMeasurement failed: %v", err)
	}
	if updated.Metadata.Status != StatusDone {
		t.Fatalf("done status should be kept, got %s", updated.Metadata.Status)
	}
}

func TestSetStatusRejectsUnknown(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	rec, err := store.Create(context.Background(), newRecord("Roux", "Marc"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.SetStatus(context.Background(), rec.ID, Status("archive")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetNotFound(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	if _, err := store.Get("nobody"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.Get(" "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty ref, got %v", err)
	}
}

func TestStats(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	ctx := context.Background()
	a, _ := store.Create(ctx, newRecord("A", "Un"))
	b, _ := store.Create(ctx, newRecord("B", "Deux"))
	if _, err := store.Create(ctx, newRecord("C", "Trois")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.AttachMeasurement(ctx, a.ID, "a.json"); err != nil {
		t.Fatalf("AttachMeasurement failed: %v", err)
	}
	if _, err := store.SetStatus(ctx, b.ID, StatusDone); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	st, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	want := Stats{Total: 3, Pending: 1, InProgress: 1, Done: 1, WithMeasurement: 1}
	if st != want {
		t.Fatalf("Stats = %+v, want %+v", st, want)
	}
}

func TestImportRequiresSections(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	_, err := store.Import(context.Background(), strings.NewReader(`{"informations_client": {"nom": "X", "prenom": "Y"}}`))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	form := `{
  "informations_client": {"nom": "Leroy", "prenom": "Ana", "email": "ana@example.com"},
  "informations_logement": {"adresse": "3 place Bellecour", "code_postal": "69002", "ville": "Lyon", "type_logement": "Maison", "typologie": "T4"},
  "pieces": [{"nom": "Chambre parentale", "type": "Chambre", "surface_m2": 14.5}],
  "environnement_exterieur": {"bruit_circulation_routiere": 4, "bruit_ferroviaire": 0, "bruit_aerien": 1, "zones_festives_proximite": false},
  "metadata": {"date_creation": "2025-12-01T08:00:00.000Z", "statut": "en_attente", "fichier_json_boitier": "", "source": "formulaire_client"}
}`
	rec, err := store.Import(context.Background(), strings.NewReader(form))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if rec.Metadata.Source != "formulaire_client" || len(rec.Rooms) != 1 || rec.Surroundings.RoadNoise != 4 {
		t.Fatalf("unexpected imported record %+v", rec)
	}
	if rec.Metadata.CreatedAt.Year() != 2025 || rec.Metadata.CreatedAt.Month() != time.December {
		t.Fatalf("creation date should be kept, got %v", rec.Metadata.CreatedAt)
	}
}

func TestSurroundingsRange(t *testing.T) {
	store := NewStore(t.TempDir(), nil)
	rec := newRecord("Blanc", "Eva")
	rec.Surroundings = &Surroundings{RoadNoise: 7}
	_, err := store.Create(context.Background(), rec)
	var verr *ValidationError
	if !errors.As(err, &verr) || !verr.Has("environnement_exterieur.bruit_circulation_routiere") {
		t.Fatalf("expected road noise range error, got %v", err)
	}
}

func TestRecordMatches(t *testing.T) {
	rec := newRecord("Dupont", "Jean")
	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"dupont", true},
		{"LYON", true},
		{"lilas", true},
		{"marseille", false},
	}
	for _, tt := range tests {
		if got := rec.Matches(tt.query); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if s, ok := ParseStatus(" Termine "); !ok || s != StatusDone {
		t.Fatalf("ParseStatus = %q, %v", s, ok)
	}
	if _, ok := ParseStatus("archive"); ok {
		t.Fatal("expected unknown status to be rejected")
	}
	if StatusInProgress.Label() != "Analyse en cours" {
		t.Fatalf("unexpected label %q", StatusInProgress.Label())
	}
}
