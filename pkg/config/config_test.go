package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/countygis/parcels/pkg/generate"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Listen != DefaultListen {
		t.Errorf("Expected listen %q, got %q", DefaultListen, cfg.Listen)
	}
	if !cfg.Watch {
		t.Error("Expected watch enabled by default")
	}
	if cfg.WatchDebounce.Duration != DefaultWatchDebounce {
		t.Errorf("Expected debounce %v, got %v", DefaultWatchDebounce, cfg.WatchDebounce.Duration)
	}
	if cfg.Search.MaxResults != 200 || cfg.Search.MaxPrefixLen != 24 || cfg.Search.CacheSize != 512 {
		t.Errorf("Unexpected search defaults: %+v", cfg.Search)
	}
	if filepath.Base(cfg.SnapshotPath) != DefaultSnapshotName {
		t.Errorf("Expected default snapshot name, got %s", cfg.SnapshotPath)
	}
	if len(cfg.Generator.Counties) != len(generate.DefaultCounties) {
		t.Errorf("Expected default counties, got %v", cfg.Generator.Counties)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
snapshot_path = "/srv/parcels/index.json.zst"
listen = "0.0.0.0:9000"
watch = false
watch_debounce = "2s"
debug_services = ["search"]

[search]
max_results = 50
min_score = 300
max_prefix_len = 12
cache_size = -1

[generator]
source_dir = "/srv/exports"
counties = ["teton_county_wy"]
workers = 2
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.SnapshotPath != "/srv/parcels/index.json.zst" {
		t.Errorf("Unexpected snapshot path %s", cfg.SnapshotPath)
	}
	if cfg.Listen != "0.0.0.0:9000" || cfg.Watch {
		t.Errorf("Unexpected server settings: listen=%s watch=%t", cfg.Listen, cfg.Watch)
	}
	if cfg.WatchDebounce.Duration != 2*time.Second {
		t.Errorf("Expected 2s debounce, got %v", cfg.WatchDebounce.Duration)
	}

	opts := cfg.SearchOptions()
	if opts.MaxResults != 50 || opts.MinScore != 300 || opts.MaxPrefixLen != 12 || opts.CacheSize != -1 {
		t.Errorf("Unexpected search options: %+v", opts)
	}
	if opts.SnapshotPath != cfg.SnapshotPath {
		t.Errorf("Search options should load %s, got %s", cfg.SnapshotPath, opts.SnapshotPath)
	}

	gen := cfg.GeneratorOptions()
	if gen.SourceDir != "/srv/exports" || gen.Workers != 2 || len(gen.Counties) != 1 {
		t.Errorf("Unexpected generator options: %+v", gen)
	}
	if gen.Output != cfg.SnapshotPath {
		t.Errorf("Generator should write %s, got %s", cfg.SnapshotPath, gen.Output)
	}
}

func TestLoadConfigExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadConfig(writeConfig(t, `snapshot_path = "~/data/index.db"`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SnapshotPath != filepath.Join(home, "data", "index.db") {
		t.Errorf("Expected expanded path, got %s", cfg.SnapshotPath)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid toml", `listen = `},
		{"invalid duration", `watch_debounce = "soon"`},
		{"prefix too short", "[search]\nmax_prefix_len = 2"},
		{"negative workers", "[generator]\nworkers = -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.body)); err == nil {
				t.Error("Expected error but got none")
			}
		})
	}
}

func TestSaveTemplateConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := &Config{SnapshotPath: "/var/lib/parcels/search_index.json"}

	if err := cfg.SaveTemplateConfig(path); err != nil {
		t.Fatalf("SaveTemplateConfig: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read template: %v", err)
	}
	if !strings.Contains(string(data), `snapshot_path = "/var/lib/parcels/search_index.json"`) {
		t.Errorf("Expected snapshot path substituted, got:\n%s", data)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("Template does not load: %v", err)
	}
	if loaded.SnapshotPath != cfg.SnapshotPath || loaded.Search.MaxResults != 200 {
		t.Errorf("Unexpected config from template: %+v", loaded)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	cfg, err := GetDefaultConfig()
	if err != nil {
		t.Fatalf("GetDefaultConfig: %v", err)
	}
	cfg.Search.MinScore = 300

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := cfg.SaveConfig(path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Search.MinScore != 300 || loaded.WatchDebounce.Duration != DefaultWatchDebounce {
		t.Errorf("Unexpected round trip: %+v", loaded)
	}
}
