package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/commsift/config.yaml"

// Config holds all commsift configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Filter  FilterConfig  `yaml:"filter"`
	Output  OutputConfig  `yaml:"output"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig describes how to reach the vendor timeline endpoints. Session
// material (cookie header, CSRF token) is never stored in the file; it is
// read from the named environment variables at startup.
type APIConfig struct {
	BaseURL        string `yaml:"base_url"`
	WorkspaceID    string `yaml:"workspace_id"`
	TeamID         string `yaml:"team_id"`
	ChunkDays      int    `yaml:"chunk_days"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	CookieEnv      string `yaml:"cookie_env"`
	CSRFTokenEnv   string `yaml:"csrf_token_env"`
}

// FilterConfig carries the noise-filtering vocabularies and thresholds.
type FilterConfig struct {
	InternalDomain         string   `yaml:"internal_domain"`
	SenderDenylist         []string `yaml:"sender_denylist"`
	AutomatedSenderMarkers []string `yaml:"automated_sender_markers"`
	AutoReplyMarkers       []string `yaml:"auto_reply_markers"`
	TemplateMarkers        []string `yaml:"template_markers"`
	SimilarityThreshold    float64  `yaml:"similarity_threshold"`
	DedupThreshold         float64  `yaml:"dedup_threshold"`
	BlastWindowHours       int      `yaml:"blast_window_hours"`
	HighVolumeMinMessages  int      `yaml:"high_volume_min_messages"`
	HighVolumeTemplateRate float64  `yaml:"high_volume_template_rate"`
}

// OutputConfig controls markdown rendering.
type OutputConfig struct {
	Dir            string `yaml:"dir"`
	EmailsPerBatch int    `yaml:"emails_per_batch"`
}

// StorageConfig locates the local run ledger.
type StorageConfig struct {
	Path       string `yaml:"path"`
	SQLiteFile string `yaml:"sqlite_file"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read or contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := ExpandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}

// DatabasePath resolves the full path to the SQLite run ledger.
func (c *Config) DatabasePath() (string, error) {
	dir, err := ExpandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}
