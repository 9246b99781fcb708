package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, k := range []string{"HELIX_ADDR", "DATABASE_URL", "TOKEN_KEY", "TLS_CERT", "TLS_KEY", "LOG_LEVEL", "RATE_LIMIT", "RATE_BURST"} {
		t.Setenv(k, kv[k])
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{"TOKEN_KEY": "secret", "DATABASE_URL": "postgres://u@localhost/helix"})
	c, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Addr != ":8443" || c.LogLevel != slog.LevelInfo || c.RateLimit != 1 || c.RateBurst != 3 || c.TLS() {
		t.Errorf("defaults = %+v", c)
	}
	if d, dsn := c.Database(); d != "postgres" || dsn != "postgres://u@localhost/helix" {
		t.Errorf("Database() = %q %q", d, dsn)
	}
}

func TestLoadFileDoesNotOverrideEnv(t *testing.T) {
	setEnv(t, map[string]string{"TOKEN_KEY": "from-env"})
	path := filepath.Join(t.TempDir(), ".env")
	content := "TOKEN_KEY=from-file\nDATABASE_URL=sqlite:helix.db\nLOG_LEVEL=debug\nRATE_BURST=10\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.TokenKey != "from-env" || c.LogLevel != slog.LevelDebug || c.RateBurst != 10 {
		t.Errorf("config = %+v", c)
	}
	if d, dsn := c.Database(); d != "sqlite" || dsn != "helix.db" {
		t.Errorf("Database() = %q %q", d, dsn)
	}
}

func TestLoadEmptyExportFallsBackToFile(t *testing.T) {
	setEnv(t, map[string]string{"TOKEN_KEY": "k"})
	t.Setenv("DATABASE_URL", "")
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DATABASE_URL=postgres://db/helix\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.DatabaseURL != "postgres://db/helix" {
		t.Errorf("DatabaseURL = %q", c.DatabaseURL)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		t.Errorf("environment changed to %q", v)
	}
}

func TestLoadRejects(t *testing.T) {
	base := map[string]string{"TOKEN_KEY": "k", "DATABASE_URL": "sqlite::memory:"}
	cases := map[string]map[string]string{
		"no token":  {"DATABASE_URL": "x"},
		"no db":     {"TOKEN_KEY": "k"},
		"half tls":  {"TLS_CERT": "server.crt"},
		"bad level": {"LOG_LEVEL": "loud"},
		"bad rate":  {"RATE_LIMIT": "-1"},
		"bad burst": {"RATE_BURST": "many"},
	}
	for name, override := range cases {
		kv := map[string]string{}
		if name != "no token" && name != "no db" {
			for k, v := range base {
				kv[k] = v
			}
		}
		for k, v := range override {
			kv[k] = v
		}
		setEnv(t, kv)
		if _, err := Load(filepath.Join(t.TempDir(), "none")); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, slog.LevelWarn)
	log.Info("hidden")
	log.Warn("shown", "n", 3)
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("output %q", buf.String())
	}
}
