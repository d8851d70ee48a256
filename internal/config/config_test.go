package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alertworker.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeTempConfig(t, `
stream: lsst
registry:
  base_url: http://registry.example:8081
store:
  uri: mongodb://localhost:27017
  database: alerts
crossmatch:
  catalogs: [gaia, ps1]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Stream != "lsst" {
		t.Fatalf("Stream = %q, want lsst", cfg.Stream)
	}
	if len(cfg.Crossmatch.Catalogs) != 2 {
		t.Fatalf("Catalogs = %v, want 2 entries", cfg.Crossmatch.Catalogs)
	}
	if cfg.Magnitude.MissingScienceFluxNanojansky != 1000.0 {
		t.Fatalf("MissingScienceFluxNanojansky = %v, want default 1000.0", cfg.Magnitude.MissingScienceFluxNanojansky)
	}
}

func TestLoadMissingRequiredFieldErrors(t *testing.T) {
	path := writeTempConfig(t, `
registry:
  base_url: http://registry.example:8081
store:
  uri: mongodb://localhost:27017
  database: alerts
`)

	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for missing stream label")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
