// Package config handles loading and managing enronvault configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the enronvault configuration.
type Config struct {
	Data   DataConfig   `toml:"data"`
	Ingest IngestConfig `toml:"ingest"`
	Server ServerConfig `toml:"server"`

	// Computed paths (not from config file)
	HomeDir string `toml:"-"`
}

// DataConfig holds corpus storage configuration.
type DataConfig struct {
	DataDir      string `toml:"data_dir"`      // defaults to the home dir
	DatabasePath string `toml:"database_path"` // overrides DataDir/enron.db
	MaildirRoot  string `toml:"maildir_root"`  // default corpus location for ingest
}

// IngestConfig holds ingestion configuration.
type IngestConfig struct {
	Workers       int  `toml:"workers"`        // 0 means min(4, NumCPU)
	MetadataOnly  bool `toml:"metadata_only"`  // skip message bodies
	ProgressEvery int  `toml:"progress_every"` // files between progress reports
}

// ServerConfig holds HTTP API server configuration.
type ServerConfig struct {
	APIPort  int    `toml:"api_port"`  // HTTP server port (default: 8080)
	BindAddr string `toml:"bind_addr"` // listen address (default: 127.0.0.1)
	APIKey   string `toml:"api_key"`   // optional API authentication key
}

// DefaultHome returns the default enronvault home directory.
// Respects the ENRONVAULT_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("ENRONVAULT_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".enronvault"
	}
	return filepath.Join(home, ".enronvault")
}

// Load reads the configuration from the specified file.
// If path is empty, uses the default location (~/.enronvault/config.toml).
// A missing config file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	homeDir := DefaultHome()

	if path == "" {
		path = filepath.Join(homeDir, "config.toml")
	}

	cfg := &Config{
		HomeDir: homeDir,
		Data: DataConfig{
			DataDir: homeDir,
		},
		Ingest: IngestConfig{
			ProgressEvery: 1000,
		},
		Server: ServerConfig{
			APIPort:  8080,
			BindAddr: "127.0.0.1",
		},
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Data.DataDir = expandPath(cfg.Data.DataDir)
	cfg.Data.DatabasePath = expandPath(cfg.Data.DatabasePath)
	cfg.Data.MaildirRoot = expandPath(cfg.Data.MaildirRoot)

	return cfg, nil
}

// DatabasePath returns the path to the SQLite corpus database.
// Precedence: ENRONVAULT_DB env var, then the config file's
// database_path, then DataDir/enron.db.
func (c *Config) DatabasePath() string {
	if p := os.Getenv("ENRONVAULT_DB"); p != "" {
		return p
	}
	if c.Data.DatabasePath != "" {
		return c.Data.DatabasePath
	}
	return filepath.Join(c.Data.DataDir, "enron.db")
}

// EnsureHomeDir creates the home directory if it doesn't exist.
func (c *Config) EnsureHomeDir() error {
	return os.MkdirAll(c.HomeDir, 0o755)
}

// ExportsDir returns the path to the Parquet exports directory.
func (c *Config) ExportsDir() string {
	return filepath.Join(c.Data.DataDir, "exports")
}

// ListenAddr returns the address:port the API server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddr, c.Server.APIPort)
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
