package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/meetcost/internal/pipeline"
)

func withConfigHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvTheme, "")
	t.Setenv(EnvDB, "")
	t.Setenv(EnvAnnualHours, "")
	return dir
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	withConfigHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AnnualHours() != 2000 || cfg.General.DefaultRate != 50 {
		t.Fatalf("defaults = %+v", cfg.General)
	}
	if len(cfg.RealityCheckTable()) != len(pipeline.DefaultRealityChecks) {
		t.Fatal("empty reality checks should fall back to the built-in table")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	withConfigHome(t)

	cfg := DefaultConfig()
	cfg.General.AnnualHours = 1800
	cfg.Appearance.Theme = "tokyo-night"
	cfg.RolePresets = map[string]float64{"Staff Engineer": 110}
	cfg.RealityChecks = []pipeline.RealityCheck{
		{Threshold: 20, Label: "Pizza"},
		{Threshold: 5, Label: "Coffee"},
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("config file missing after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.AnnualHours() != 1800 || got.Appearance.Theme != "tokyo-night" {
		t.Fatalf("loaded = %+v", got)
	}
	table := got.RealityCheckTable()
	if len(table) != 2 || table[0].Label != "Coffee" {
		t.Fatalf("reality checks not sorted: %+v", table)
	}
	if v, ok := got.LookupPreset("staff engineer"); !ok || v != 110 {
		t.Fatalf("preset = %v, %v", v, ok)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	withConfigHome(t)
	t.Setenv(EnvTheme, "catppuccin-mocha")
	t.Setenv(EnvDB, "/tmp/x.db")
	t.Setenv(EnvAnnualHours, "1950")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Appearance.Theme != "catppuccin-mocha" || cfg.General.StateDB != "/tmp/x.db" || cfg.AnnualHours() != 1950 {
		t.Fatalf("env not applied: %+v", cfg)
	}

	t.Setenv(EnvAnnualHours, "lots")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a bad annual hours override")
	}
}

func TestLoad_ParseError(t *testing.T) {
	dir := withConfigHome(t)
	path := filepath.Join(dir, "meetcost", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[general\nannual_hours ="), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestPresets(t *testing.T) {
	if NormalizeRoleName("  Senior_Dev ") != "senior-dev" {
		t.Fatalf("normalize = %q", NormalizeRoleName("  Senior_Dev "))
	}
	if RoleTitle("product-owner") != "Product Owner" {
		t.Fatalf("title = %q", RoleTitle("product-owner"))
	}

	cfg := DefaultConfig()
	cfg.RolePresets = map[string]float64{"Manager": 95, "ghost": -1}
	if v, _ := cfg.LookupPreset("manager"); v != 95 {
		t.Fatalf("override not applied: %v", v)
	}
	if _, ok := cfg.LookupPreset("ghost"); ok {
		t.Fatal("negative preset should be ignored")
	}
	names := cfg.PresetNames()
	if names[0] != "intern" || names[len(names)-1] != "director" {
		t.Fatalf("names = %v", names)
	}
}
