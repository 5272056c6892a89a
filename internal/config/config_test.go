package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guardian.yaml")
	doc := `
port: 9000
scale: city
seed: 42
random_positions: false
admin_key: hunter2
batch_limit: 25
log_level: debug
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9000 || cfg.Scale != "city" || cfg.Seed != 42 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.RandomPositions {
		t.Error("random_positions should be off")
	}
	if cfg.AdminKey != "hunter2" || cfg.BatchLimit != 25 || cfg.LogLevel != "debug" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"bad scale": "scale: galaxy\n",
		"bad port":  "port: 0\n",
		"bad level": "log_level: loud\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "guardian.yaml")
			if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLoadClampsBatchLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guardian.yaml")
	if err := os.WriteFile(path, []byte("batch_limit: 100000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BatchLimit != MaxBatchRuns {
		t.Errorf("batch limit = %d, want %d", cfg.BatchLimit, MaxBatchRuns)
	}
}
