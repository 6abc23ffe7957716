package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"assembly/crypto"
)

func TestLoadCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	if _, err := cfg.Program(); err != nil {
		t.Fatalf("default program id: %v", err)
	}
	key, err := crypto.LoadFromKeystore(cfg.PayerKeystorePath)
	if err != nil {
		t.Fatalf("load payer keystore: %v", err)
	}
	if key.Address() == crypto.ZeroAddress {
		t.Fatalf("expected generated payer")
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.ProgramID != cfg.ProgramID || again.PayerKeystorePath != cfg.PayerKeystorePath {
		t.Fatalf("reload changed identity: %+v vs %+v", again, cfg)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadParsesSections(t *testing.T) {
	path := writeConfig(t, `
ProgramID = "BRoaarTnfSMiGF2obhUczyHDkuHM2QX13UKgC5aru5PJ"
DataDir = "/var/lib/assembly"
PausedModules = ["distribution"]

[Log]
Format = "text"
Level = "debug"

[Telemetry]
Endpoint = "otel:4318"
Traces = true

[Policy]
SingleRedemption = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/var/lib/assembly" || cfg.Log.Format != "text" || !cfg.Telemetry.Traces {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.Policy.SingleRedemption || cfg.Policy.RequireOrderedWindows {
		t.Fatalf("unexpected policy %+v", cfg.Policy)
	}
	if cfg.RPCAddress == "" || cfg.Environment != "local" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if len(cfg.PausedModules) != 1 || cfg.PausedModules[0] != "distribution" {
		t.Fatalf("unexpected paused modules %v", cfg.PausedModules)
	}
	if !strings.HasSuffix(cfg.PayerKeystorePath, "payer.json") {
		t.Fatalf("expected default keystore path, got %s", cfg.PayerKeystorePath)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"bad program":    `ProgramID = "not-base58-0OIl"`,
		"unknown module": "ProgramID = \"BRoaarTnfSMiGF2obhUczyHDkuHM2QX13UKgC5aru5PJ\"\nPausedModules = [\"swap\"]",
		"unknown key":    "ProgramID = \"BRoaarTnfSMiGF2obhUczyHDkuHM2QX13UKgC5aru5PJ\"\nValidatorKey = \"x\"",
		"telemetry":      "ProgramID = \"BRoaarTnfSMiGF2obhUczyHDkuHM2QX13UKgC5aru5PJ\"\n[Telemetry]\nMetrics = true",
		"log level":      "ProgramID = \"BRoaarTnfSMiGF2obhUczyHDkuHM2QX13UKgC5aru5PJ\"\n[Log]\nLevel = \"loud\"",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected %s to be rejected", name)
			}
		})
	}
}
