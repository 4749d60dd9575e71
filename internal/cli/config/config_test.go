package config

import (
	"os"
	"path/filepath"
	"testing"
)

func useTempConfig(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), dirName, fileName)
	t.Setenv(PathEnv, p)
	return p
}

func TestPath(t *testing.T) {
	t.Run("honors override", func(t *testing.T) {
		want := useTempConfig(t)
		got, err := Path()
		if err != nil || got != want {
			t.Fatalf("expected %s, got %s (%v)", want, got, err)
		}
	})

	t.Run("defaults to user config dir", func(t *testing.T) {
		t.Setenv(PathEnv, "")
		userConfigDir, err := os.UserConfigDir()
		if err != nil {
			t.Skipf("no user config dir: %v", err)
		}
		got, err := Path()
		if err != nil {
			t.Fatalf("Path() returned error: %v", err)
		}
		if got != filepath.Join(userConfigDir, dirName, fileName) {
			t.Fatalf("unexpected path %s", got)
		}
	})
}

func TestLoadSaveClear(t *testing.T) {
	p := useTempConfig(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if cfg.ServerURL != DefaultURL || cfg.HasToken() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}

	cfg.Token = "jwt"
	cfg.ServerURL = "https://files.example.com"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() returned error: %v", err)
	}

	info, err := os.Stat(p)
	if err != nil {
		t.Fatalf("expected config file: %v", err)
	}
	if info.Mode().Perm() != filePerms {
		t.Errorf("expected permissions %o, got %o", filePerms, info.Mode().Perm())
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if loaded.Token != "jwt" || loaded.ServerURL != "https://files.example.com" {
		t.Fatalf("unexpected config %+v", loaded)
	}

	if err := Clear(); err != nil {
		t.Fatalf("Clear() returned error: %v", err)
	}
	if err := Clear(); err != nil {
		t.Fatalf("second Clear() returned error: %v", err)
	}
	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Fatalf("expected config file removed, got %v", err)
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	p := useTempConfig(t)
	if err := os.MkdirAll(filepath.Dir(p), dirPerms); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("{not json"), filePerms); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(); err == nil {
		t.Fatal("expected error for corrupt config")
	}
}
