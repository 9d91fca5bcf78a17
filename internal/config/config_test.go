package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"
)

func withXDG(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return root
}

func TestLoadDefaults(t *testing.T) {
	root := withXDG(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != BackendBolt || cfg.Library.MaxItems != 5000 || !cfg.Library.DedupeConsecutive {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if want := filepath.Join(root, "config", "otterboard", "config.toml"); Path() != want {
		t.Fatalf("unexpected config path: got=%q want=%q", Path(), want)
	}
	p, err := cfg.StoragePath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(root, "data", "otterboard", "library.db"); p != want {
		t.Fatalf("unexpected storage path: got=%q want=%q", p, want)
	}
	if d, _ := cfg.PollInterval(); d != 350*time.Millisecond {
		t.Fatalf("unexpected poll interval %s", d)
	}
}

func TestLoadFromTOML(t *testing.T) {
	withXDG(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	if err := os.MkdirAll(filepath.Dir(Path()), 0o700); err != nil {
		t.Fatal(err)
	}
	content := `
[storage]
backend = "sqlite"
path = "~/boards/lib.sqlite"

[clipboard]
poll_interval = "1s"
drop_dir = "~/drop"
ignore_patterns = ["token=", "password"]

[library]
max_items = 10

[logging]
level = "debug"
`
	if err := os.WriteFile(Path(), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != BackendSQLite || cfg.Library.MaxItems != 10 || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.Clipboard.IgnorePatterns) != 2 {
		t.Fatalf("unexpected ignore patterns %v", cfg.Clipboard.IgnorePatterns)
	}
	if !cfg.Library.DedupeConsecutive {
		t.Fatalf("unset keys keep their defaults")
	}
	p, _ := cfg.StoragePath()
	if !strings.HasPrefix(p, home) {
		t.Fatalf("expected ~ expanded to %s, got %s", home, p)
	}
	drop, _ := cfg.DropDir()
	if drop != filepath.Join(home, "drop") {
		t.Fatalf("unexpected drop dir %q", drop)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"backend":  "[storage]\nbackend = \"redis\"\n",
		"level":    "[logging]\nlevel = \"loud\"\n",
		"interval": "[clipboard]\npoll_interval = \"soon\"\n",
		"syntax":   "[storage\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			p := filepath.Join(dir, name+".toml")
			if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(p); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}
