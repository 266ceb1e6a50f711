package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileYieldsEmptyConfig(t *testing.T) {
	t.Setenv("ORIGINS_CONFIG_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *cfg != (Config{}) {
		t.Fatalf("expected empty config; got %+v", cfg)
	}
}

func TestSaveLoad_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ORIGINS_CONFIG_DIR", dir)

	want := &Config{
		BaseURL: "https://hms.example.org/api",
		Token:   "tok",
		UserID:  "usr-1",
		Role:    "manager",
	}
	if err := Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != *want {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}

	// The token lands on disk; keep the file private.
	st, err := os.Stat(filepath.Join(dir, "config.json"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 config file; got %v", st.Mode().Perm())
	}
}

func TestCachePath_UnderConfigDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ORIGINS_CONFIG_DIR", dir)

	p, err := CachePath()
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if filepath.Dir(p) != dir {
		t.Fatalf("expected cache under config dir; got %q", p)
	}
}
