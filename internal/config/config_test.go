package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenFileAbsent(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Global.Ninja != "ninja" {
		t.Errorf("Global.Ninja = %q, want %q", cfg.Global.Ninja, "ninja")
	}
	if cfg.Global.KeepBuildDir {
		t.Errorf("Global.KeepBuildDir = true, want false")
	}
}

func TestLoadReadsTOMLOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	toml := "ninja = \"custom-ninja\"\nkeep_build_dir = true\n\n[cc]\nexe = \"clang\"\n"
	if err := os.WriteFile(filepath.Join(home, "opflow.toml"), []byte(toml), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Global.Ninja != "custom-ninja" {
		t.Errorf("Global.Ninja = %q, want %q", cfg.Global.Ninja, "custom-ninja")
	}
	if !cfg.Global.KeepBuildDir {
		t.Errorf("Global.KeepBuildDir = false, want true")
	}

	val, ok := cfg.Get("cc.exe")
	if !ok || val != "clang" {
		t.Errorf("Get(\"cc.exe\") = (%q, %v), want (\"clang\", true)", val, ok)
	}
	if _, ok := cfg.Get("no.such.key"); ok {
		t.Errorf("Get(\"no.such.key\") reported present")
	}
}

func TestSetKeepBuildDirOverridesGetAndGlobal(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.SetKeepBuildDir(true)
	if !cfg.Global.KeepBuildDir {
		t.Errorf("Global.KeepBuildDir = false after SetKeepBuildDir(true)")
	}
	val, ok := cfg.Get("keep_build_dir")
	if !ok || val != "true" {
		t.Errorf("Get(\"keep_build_dir\") = (%q, %v), want (\"true\", true)", val, ok)
	}
}

func TestMissingConfigErrorMessage(t *testing.T) {
	err := &MissingConfigError{Key: "cc.exe"}
	if got, want := err.Error(), "missing config key: cc.exe"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
