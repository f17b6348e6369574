package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/countygis/parcels/pkg/generate"
	"github.com/countygis/parcels/pkg/index"
	"github.com/countygis/parcels/pkg/search"
	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

// samplePathPlaceholder is the snapshot_path written in config.toml.sample.
const samplePathPlaceholder = "/home/user/.local/share/parcels/search_index.json"

const (
	DefaultListen        = "localhost:8000"
	DefaultWatchDebounce = 500 * time.Millisecond
	DefaultSnapshotName  = "search_index.json"
)

type Config struct {
	SnapshotPath  string          `toml:"snapshot_path"`
	Listen        string          `toml:"listen"`
	Watch         bool            `toml:"watch"`
	WatchDebounce Duration        `toml:"watch_debounce"`
	DebugServices []string        `toml:"debug_services,omitempty"`
	Search        SearchConfig    `toml:"search"`
	Generator     GeneratorConfig `toml:"generator"`
}

type SearchConfig struct {
	MaxResults   int `toml:"max_results"`
	MinScore     int `toml:"min_score"`
	MaxPrefixLen int `toml:"max_prefix_len"`
	// CacheSize is the per-dataset query cache size. Negative disables it.
	CacheSize int `toml:"cache_size"`
}

type GeneratorConfig struct {
	SourceDir string   `toml:"source_dir"`
	Counties  []string `toml:"counties"`
	Workers   int      `toml:"workers"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func GetDefaultConfig() (*Config, error) {
	snapshotPath, err := GetDefaultSnapshotPath()
	if err != nil {
		return nil, fmt.Errorf("getting default snapshot path: %w", err)
	}
	c := &Config{
		SnapshotPath: snapshotPath,
		Watch:        true,
	}
	c.applyDefaults()
	return c, nil
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// watch defaults to true when the key is absent
	config := Config{Watch: true}
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if config.SnapshotPath == "" {
		snapshotPath, err := GetDefaultSnapshotPath()
		if err != nil {
			return nil, fmt.Errorf("getting default snapshot path: %w", err)
		}
		config.SnapshotPath = snapshotPath
	}
	config.SnapshotPath = expandHome(config.SnapshotPath)
	config.Generator.SourceDir = expandHome(config.Generator.SourceDir)
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.WatchDebounce.Duration == 0 {
		c.WatchDebounce = Duration{DefaultWatchDebounce}
	}
	if c.Search.MaxResults == 0 {
		c.Search.MaxResults = search.DefaultMaxResults
	}
	if c.Search.MaxPrefixLen == 0 {
		c.Search.MaxPrefixLen = index.DefaultMaxPrefixLen
	}
	if c.Search.CacheSize == 0 {
		c.Search.CacheSize = search.DefaultCacheSize
	}
	if len(c.Generator.Counties) == 0 {
		c.Generator.Counties = append([]string(nil), generate.DefaultCounties...)
	}
	if c.Generator.Workers == 0 {
		c.Generator.Workers = 4
	}
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if c.Search.MaxResults < 0 {
		return fmt.Errorf("search.max_results must be positive, got %d", c.Search.MaxResults)
	}
	if c.Search.MaxPrefixLen < index.MinPrefixLen {
		return fmt.Errorf("search.max_prefix_len must be at least %d, got %d", index.MinPrefixLen, c.Search.MaxPrefixLen)
	}
	if c.Generator.Workers < 0 {
		return fmt.Errorf("generator.workers must be positive, got %d", c.Generator.Workers)
	}
	if c.WatchDebounce.Duration < 0 {
		return fmt.Errorf("watch_debounce must not be negative")
	}
	return nil
}

// SearchOptions returns the search service options for this config.
func (c *Config) SearchOptions() search.Options {
	return search.Options{
		SnapshotPath: c.SnapshotPath,
		MaxResults:   c.Search.MaxResults,
		MinScore:     c.Search.MinScore,
		MaxPrefixLen: c.Search.MaxPrefixLen,
		CacheSize:    c.Search.CacheSize,
	}
}

// GeneratorOptions returns the snapshot generator options for this config.
// The generator writes to the snapshot the service loads.
func (c *Config) GeneratorOptions() generate.Options {
	return generate.Options{
		SourceDir: c.Generator.SourceDir,
		Counties:  c.Generator.Counties,
		Workers:   c.Generator.Workers,
		Output:    c.SnapshotPath,
	}
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template, err := c.generateConfigTemplate()
	if err != nil {
		return fmt.Errorf("generating config template: %w", err)
	}
	return os.WriteFile(configPath, []byte(template), 0644)
}

func (c *Config) generateConfigTemplate() (string, error) {
	snapshotPath := c.SnapshotPath
	if snapshotPath == "" {
		var err error
		snapshotPath, err = GetDefaultSnapshotPath()
		if err != nil {
			return "", fmt.Errorf("getting default snapshot path: %w", err)
		}
	}

	// Replace the placeholder snapshot_path with the actual path
	template := strings.Replace(configTemplate, samplePathPlaceholder, snapshotPath, 1)
	return template, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// GetDefaultDataDir returns the default directory for snapshots
func GetDefaultDataDir() (string, error) {
	// Use XDG_DATA_HOME if set, otherwise use ~/.local/share
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "parcels"), nil
}

// GetDefaultSnapshotPath returns the default snapshot path in the user's data directory
func GetDefaultSnapshotPath() (string, error) {
	dataDir, err := GetDefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, DefaultSnapshotName), nil
}

// GetConfigDir returns the configuration directory for parcels
func GetConfigDir() (string, error) {
	// Use XDG_CONFIG_HOME if set, otherwise use ~/.config
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "parcels"), nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
