package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"assembly/crypto"
)

type Config struct {
	DataDir                  string   `toml:"DataDir"`
	RPCAddress               string   `toml:"RPCAddress"`
	Environment              string   `toml:"Environment"`
	ProgramID                string   `toml:"ProgramID"`
	TokenProgramID           string   `toml:"TokenProgramID,omitempty"`
	AssociatedTokenProgramID string   `toml:"AssociatedTokenProgramID,omitempty"`
	PayerKeystorePath        string   `toml:"PayerKeystorePath"`
	PausedModules            []string `toml:"PausedModules"`
	AllowMigrate             bool     `toml:"AllowMigrate"`

	Log       Log       `toml:"Log"`
	Telemetry Telemetry `toml:"Telemetry"`
	Policy    Policy    `toml:"Policy"`
}

// Log selects the log handler.
type Log struct {
	Format     string `toml:"Format"`
	Level      string `toml:"Level"`
	File       string `toml:"File,omitempty"`
	MaxSizeMB  int    `toml:"MaxSizeMB,omitempty"`
	MaxBackups int    `toml:"MaxBackups,omitempty"`
}

// Telemetry configures the OTLP exporters.
type Telemetry struct {
	Endpoint string `toml:"Endpoint"`
	Insecure bool   `toml:"Insecure"`
	Headers  string `toml:"Headers,omitempty"`
	Traces   bool   `toml:"Traces"`
	Metrics  bool   `toml:"Metrics"`
}

// Policy toggles the optional distribution invariants.
type Policy struct {
	RequireOrderedWindows bool `toml:"RequireOrderedWindows"`
	SingleRedemption      bool `toml:"SingleRedemption"`
}

// Load loads the configuration from the given path, writing a default file
// and payer keypair when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s: unknown key %s", path, undecoded[0])
	}

	if err := ensureKeystore(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./assembly-data"
	}
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = "127.0.0.1:8899"
	}
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = "local"
	}
	if cfg.PausedModules == nil {
		cfg.PausedModules = []string{}
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func ensureKeystore(configPath string, cfg *Config) error {
	keystorePath := cfg.PayerKeystorePath
	if keystorePath == "" {
		keystorePath = defaultKeystorePath(configPath)
	}

	if _, err := os.Stat(keystorePath); os.IsNotExist(err) {
		key, genErr := crypto.GeneratePrivateKey()
		if genErr != nil {
			return genErr
		}
		if err := crypto.SaveToKeystore(keystorePath, key); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	if cfg.PayerKeystorePath != keystorePath {
		cfg.PayerKeystorePath = keystorePath
		return persist(configPath, cfg)
	}
	return nil
}

// createDefault creates and saves a default configuration file. The program
// ID of a fresh local ledger is a random address.
func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	program, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}

	keystorePath := defaultKeystorePath(path)
	if err := crypto.SaveToKeystore(keystorePath, key); err != nil {
		return nil, err
	}

	cfg := &Config{
		ProgramID:         program.Address().String(),
		PayerKeystorePath: keystorePath,
	}
	applyDefaults(cfg)

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func defaultKeystorePath(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "payer.json")
}

// Program returns the configured distribution program ID.
func (c *Config) Program() (crypto.Address, error) {
	return crypto.DecodeAddress(c.ProgramID)
}

// TokenPrograms returns the token and associated-account program IDs. Empty
// values are returned as the zero address so callers can fall back to the
// well-known defaults.
func (c *Config) TokenPrograms() (tokenProgram, associated crypto.Address, err error) {
	if s := strings.TrimSpace(c.TokenProgramID); s != "" {
		if tokenProgram, err = crypto.DecodeAddress(s); err != nil {
			return crypto.Address{}, crypto.Address{}, fmt.Errorf("TokenProgramID: %w", err)
		}
	}
	if s := strings.TrimSpace(c.AssociatedTokenProgramID); s != "" {
		if associated, err = crypto.DecodeAddress(s); err != nil {
			return crypto.Address{}, crypto.Address{}, fmt.Errorf("AssociatedTokenProgramID: %w", err)
		}
	}
	return tokenProgram, associated, nil
}
