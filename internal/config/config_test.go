package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BasePath:      "/home/user/Desktop",
		BaseDir:       "/home/user/.local/share/sfm",
		LogDir:        "/home/user/.local/share/sfm/log",
		OperationLog:  "/home/user/.local/share/sfm/file_logs.json",
		BackupDirName: "Backup",
		Categories: []CategoryConfig{
			{Name: "Docs", Extensions: []string{".txt", ".md"}},
			{Name: "Pics", Extensions: []string{".png"}},
		},
		Encryption: EncryptionConfig{
			Enabled:        true,
			PublicKeyPath:  "/home/user/.local/share/sfm/keys/sfm.pub",
			PrivateKeyPath: "/home/user/.local/share/sfm/keys/sfm.key",
		},
		Database: DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/sfm/db"},
		Filesystem: FilesystemConfig{
			Ignore: []string{"*.tmp", ".git"},
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BasePath != original.BasePath {
		t.Errorf("BasePath = %q, want %q", got.BasePath, original.BasePath)
	}
	if got.OperationLog != original.OperationLog {
		t.Errorf("OperationLog = %q, want %q", got.OperationLog, original.OperationLog)
	}
	if len(got.Categories) != 2 {
		t.Fatalf("len(Categories) = %d, want 2", len(got.Categories))
	}
	if got.Categories[0].Name != "Docs" || len(got.Categories[0].Extensions) != 2 {
		t.Errorf("Categories[0] = %+v", got.Categories[0])
	}
	if !got.Encryption.Enabled {
		t.Error("Encryption.Enabled = false, want true")
	}
	if got.Encryption.PrivateKeyPath != original.Encryption.PrivateKeyPath {
		t.Errorf("Encryption.PrivateKeyPath = %q, want %q", got.Encryption.PrivateKeyPath, original.Encryption.PrivateKeyPath)
	}
	if got.Database.DataDir != original.Database.DataDir {
		t.Errorf("Database.DataDir = %q, want %q", got.Database.DataDir, original.Database.DataDir)
	}
	if len(got.Filesystem.Ignore) != 2 {
		t.Fatalf("len(Filesystem.Ignore) = %d, want 2", len(got.Filesystem.Ignore))
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/sfm")

	checks := []struct {
		name, got, want string
	}{
		{"BasePath", cfg.BasePath, DefaultBasePath},
		{"LogDir", cfg.LogDir, "/data/sfm/log"},
		{"OperationLog", cfg.OperationLog, "/data/sfm/file_logs.json"},
		{"BackupDirName", cfg.BackupDirName, "Backup"},
		{"Database.Type", cfg.Database.Type, "sqlite"},
		{"Database.DataDir", cfg.Database.DataDir, "/data/sfm"},
		{"Encryption.PublicKeyPath", cfg.Encryption.PublicKeyPath, "/data/sfm/keys/sfm.pub"},
		{"Encryption.PrivateKeyPath", cfg.Encryption.PrivateKeyPath, "/data/sfm/keys/sfm.key"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}
	if cfg.Encryption.Enabled {
		t.Error("Encryption.Enabled = true by default, want false")
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "sfm.toml")

		if err := Init(path, NewConfig(dir)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "sfm.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}
		if err := Init(path, cfg); err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "sfm.toml")
		cfg := NewConfig(dir)
		cfg.BasePath = "/srv/inbox"

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.BasePath != "/srv/inbox" {
			t.Errorf("BasePath = %q, want %q", got.BasePath, "/srv/inbox")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		if _, err := ReadFromFile("/nonexistent/path/sfm.toml"); err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		dir := t.TempDir()
		cfg, err := Load(filepath.Join(dir, "absent.toml"), dir)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.BaseDir != dir {
			t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, dir)
		}
		if cfg.BackupDirName != "Backup" {
			t.Errorf("BackupDirName = %q, want Backup", cfg.BackupDirName)
		}
	})

	t.Run("partial file is completed", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "sfm.toml")
		body := "base_path = \"/srv/inbox\"\n\n[filesystem]\nignore = [\"*.part\"]\n"
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path, dir)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.BasePath != "/srv/inbox" {
			t.Errorf("BasePath = %q", cfg.BasePath)
		}
		if cfg.LogDir != filepath.Join(dir, "log") {
			t.Errorf("LogDir = %q", cfg.LogDir)
		}
		if len(cfg.Filesystem.Ignore) != 1 {
			t.Errorf("Filesystem.Ignore = %v", cfg.Filesystem.Ignore)
		}
	})

	t.Run("invalid category is rejected", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "sfm.toml")
		body := "[[categories]]\nname = \"Empty\"\nextensions = []\n"
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := Load(path, dir)
		if err == nil || !strings.Contains(err.Error(), "Empty") {
			t.Errorf("Load() error = %v, want category error", err)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "sfm.toml")
		if err := os.WriteFile(path, []byte("base_path = [\n"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path, dir); err == nil {
			t.Error("Load() expected error for malformed file")
		}
	})
}

func TestValidate_BackupDirName(t *testing.T) {
	cfg := NewConfig(t.TempDir())
	cfg.BackupDirName = filepath.Join("a", "b")
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted a nested backup_dir_name")
	}
}
