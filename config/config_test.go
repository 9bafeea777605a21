package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Addr != ":8735" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Notify.CheckInterval.Std() != 10*time.Second {
		t.Errorf("check interval = %v", cfg.Notify.CheckInterval)
	}
	if cfg.Locale != "en-US" {
		t.Errorf("locale = %q", cfg.Locale)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  addr: ":9000"
  static_dir: /srv/timeflow/web
sync:
  journal: /var/lib/timeflow/sync.jsonl
  poll_interval: 250ms
data_dir: /var/lib/timeflow
locale: de-DE
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.StaticDir != "/srv/timeflow/web" {
		t.Errorf("static dir = %q", cfg.Server.StaticDir)
	}
	if cfg.Sync.Journal != "/var/lib/timeflow/sync.jsonl" {
		t.Errorf("journal = %q", cfg.Sync.Journal)
	}
	if cfg.Sync.PollInterval.Std() != 250*time.Millisecond {
		t.Errorf("poll interval = %v", cfg.Sync.PollInterval)
	}
	if cfg.Locale != "de-DE" {
		t.Errorf("locale = %q", cfg.Locale)
	}
	// Untouched keys keep their defaults.
	if cfg.Notify.CheckInterval.Std() != 10*time.Second {
		t.Errorf("check interval = %v", cfg.Notify.CheckInterval)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
