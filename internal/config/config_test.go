package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.toml")
	body := `
[server]
name = "test-world"

[network]
tick_rate = "50ms"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Name != "test-world" {
		t.Fatalf("expected overridden name, got %q", cfg.Server.Name)
	}
	if cfg.Network.TickRate != 50*time.Millisecond {
		t.Fatalf("expected overridden tick rate, got %v", cfg.Network.TickRate)
	}
	if cfg.RateLimit.WebSocketPacketsPerSecond != 200 {
		t.Fatalf("expected default rate limit to survive merge, got %d", cfg.RateLimit.WebSocketPacketsPerSecond)
	}
	if cfg.Server.StartTime == 0 {
		t.Fatalf("expected StartTime to be stamped")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
