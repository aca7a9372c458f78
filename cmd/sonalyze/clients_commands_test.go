package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sonalyze/internal/services"
	"sonalyze/internal/testsupport"
)

// addClient creates a client through the CLI and returns its id.
func addClient(t *testing.T, env *cliTestEnv, extra ...string) string {
	t.Helper()
	args := append([]string{"clients", "add", "--nom", "Dupont", "--prenom", "Jean", "--ville", "Lyon", "--type", "Appartement", "--etage", "2"}, extra...)
	out, _, err := runCLI(t, args, env.configPath)
	if err != nil {
		t.Fatalf("clients add: %v", err)
	}
	var id, file string
	if _, err := fmt.Sscanf(out, "Created client %s %s", &id, &file); err != nil {
		t.Fatalf("parse add output %q: %v", out, err)
	}
	return id
}

func TestClientsLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)
	id := addClient(t, env)

	out, _, err := runCLI(t, []string{"clients", "list", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("clients list: %v", err)
	}
	var records []struct {
		ID       string `json:"id"`
		Metadata struct {
			Status string `json:"statut"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal([]byte(out), &records); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(records) != 1 || records[0].ID != id || records[0].Metadata.Status != "en_attente" {
		t.Fatalf("unexpected records: %+v", records)
	}

	measurement := testsupport.WriteMeasurements(t, filepath.Join(env.baseDir, "incoming"), testsupport.ScenarioSegments())
	out, _, err = runCLI(t, []string{"clients", "attach", id, measurement}, env.configPath)
	if err != nil {
		t.Fatalf("clients attach: %v", err)
	}
	requireContains(t, out, "Analyse en cours")
	if _, err := os.Stat(filepath.Join(env.cfg.Paths.DataDir, filepath.Base(measurement))); err != nil {
		t.Fatalf("expected measurement copied into data dir: %v", err)
	}

	out, _, err = runCLI(t, []string{"clients", "show", id}, env.configPath)
	if err != nil {
		t.Fatalf("clients show: %v", err)
	}
	for _, want := range []string{"Dupont Jean", "Lyon", filepath.Base(measurement)} {
		requireContains(t, out, want)
	}

	if _, _, err := runCLI(t, []string{"clients", "status", id, "termine"}, env.configPath); err != nil {
		t.Fatalf("clients status: %v", err)
	}
	out, _, err = runCLI(t, []string{"clients", "stats", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("clients stats: %v", err)
	}
	var stats map[string]int
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats["total"] != 1 || stats["termine"] != 1 || stats["avec_json_boitier"] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestClientsListSearch(t *testing.T) {
	env := setupCLITestEnv(t)
	addClient(t, env)

	out, _, err := runCLI(t, []string{"clients", "list", "--search", "lyon"}, env.configPath)
	if err != nil {
		t.Fatalf("clients list: %v", err)
	}
	requireContains(t, out, "Dupont Jean")

	out, _, err = runCLI(t, []string{"clients", "list", "--search", "marseille"}, env.configPath)
	if err != nil {
		t.Fatalf("clients list: %v", err)
	}
	requireContains(t, out, "No clients found")
}

func TestClientsAttachRejectsInvalidExport(t *testing.T) {
	env := setupCLITestEnv(t)
	id := addClient(t, env)
	bad := filepath.Join(env.baseDir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"not":"a list"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := runCLI(t, []string{"clients", "attach", id, bad}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	entries, err := os.ReadDir(env.cfg.Paths.DataDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("invalid export should not be copied, found %d files", len(entries))
	}
}

func TestClientsAddValidation(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"clients", "add", "--nom", "Dupont", "--prenom", "Jean", "--code-postal", "69A"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "code_postal") {
		t.Fatalf("expected field name in error, got %v", err)
	}
}

func TestClientsImport(t *testing.T) {
	env := setupCLITestEnv(t)
	form := filepath.Join(env.baseDir, "form.json")
	content := `{
  "informations_client": {"nom": "Martin", "prenom": "Hélène", "email": "helene@example.com"},
  "informations_logement": {"ville": "Nantes", "type_logement": "Maison"},
  "environnement_exterieur": {"bruit_circulation_routiere": 3, "bruit_ferroviaire": 0, "bruit_aerien": 1, "zones_festives_proximite": false}
}`
	if err := os.WriteFile(form, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, []string{"clients", "import", form}, env.configPath)
	if err != nil {
		t.Fatalf("clients import: %v", err)
	}
	requireContains(t, out, "Imported client")

	out, _, err = runCLI(t, []string{"clients", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("clients list: %v", err)
	}
	requireContains(t, out, "Martin Hélène")
}

func TestClientsStatusRejectsUnknown(t *testing.T) {
	env := setupCLITestEnv(t)
	id := addClient(t, env)
	_, _, err := runCLI(t, []string{"clients", "status", id, "archived"}, env.configPath)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
