package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "millflow.yaml")
	yml := `
server:
  port: 8100
workflow:
  honor_priority_lead_time: true
rules:
  materials:
    rules:
      - keywords: [cotton]
        value: Cotton Yarn
    fallback: Raw Material
    skip_empty: true
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MILLFLOW_DB", filepath.Join(dir, "test.db"))
	t.Setenv("MILLFLOW_COMPANY_NAME", "Loomworks")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8100 {
		t.Errorf("port = %d, want 8100", cfg.Server.Port)
	}
	if cfg.Server.DBPath != filepath.Join(dir, "test.db") {
		t.Errorf("db path not taken from env: %s", cfg.Server.DBPath)
	}
	if cfg.Company.Name != "Loomworks" {
		t.Errorf("company = %q", cfg.Company.Name)
	}
	if !cfg.Workflow.HonorPriorityLeadTime {
		t.Error("honor_priority_lead_time should be true")
	}
	if cfg.Workflow.LeadTimeDays["Medium"] != 14 {
		t.Error("unset yaml keys should keep defaults")
	}
	if got, _ := cfg.Rules.Materials.Lookup("Combed cotton 40s"); got != "Cotton Yarn" {
		t.Errorf("custom material rule not applied, got %q", got)
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MILLFLOW_PORT", "not-a-port")
	if _, err := Load(""); err == nil {
		t.Error("expected error for bad MILLFLOW_PORT")
	}
}

func TestLoadMissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, added in Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
