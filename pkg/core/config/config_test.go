package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"milliseconds", "100ms", 100 * time.Millisecond, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestDuration_MarshalText(t *testing.T) {
	d := Duration{5 * time.Minute}
	result, err := d.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	if string(result) != "5m0s" {
		t.Errorf("MarshalText() = %v, want 5m0s", string(result))
	}
}

func TestConfig_applyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.General.Name != "nucmd" {
		t.Errorf("General.Name = %v, want nucmd", cfg.General.Name)
	}
	if cfg.General.LogLevel != "info" {
		t.Errorf("General.LogLevel = %v, want info", cfg.General.LogLevel)
	}
	if cfg.Shell.Prompt != "> " {
		t.Errorf("Shell.Prompt = %q, want \"> \"", cfg.Shell.Prompt)
	}
	if cfg.Shell.HistoryPath != filepath.Join("./data", "history.db") {
		t.Errorf("Shell.HistoryPath = %v", cfg.Shell.HistoryPath)
	}
	if cfg.Shell.HistoryLimit != 1000 {
		t.Errorf("Shell.HistoryLimit = %v, want 1000", cfg.Shell.HistoryLimit)
	}
	if cfg.Server.Port != 8765 || cfg.Server.Path != "/ws" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Server.ReadTimeout.Duration != 60*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 60s", cfg.Server.ReadTimeout.Duration)
	}
	if cfg.GRPC.Port != 9765 {
		t.Errorf("GRPC.Port = %v, want 9765", cfg.GRPC.Port)
	}
}

func TestConfig_applyDefaults_PreservesExisting(t *testing.T) {
	cfg := &Config{
		General: GeneralConfig{Name: "custom", DataDir: "/var/nucmd"},
		Shell:   ShellConfig{HistoryLimit: 5},
		Server:  ServerConfig{Port: 1234},
	}
	cfg.applyDefaults()

	if cfg.General.Name != "custom" {
		t.Errorf("General.Name = %v, want custom", cfg.General.Name)
	}
	if cfg.Shell.HistoryPath != filepath.Join("/var/nucmd", "history.db") {
		t.Errorf("Shell.HistoryPath = %v, want it under the data dir", cfg.Shell.HistoryPath)
	}
	if cfg.Shell.HistoryLimit != 5 || cfg.Server.Port != 1234 {
		t.Errorf("overwritten values: %+v %+v", cfg.Shell, cfg.Server)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[general]
name = "test"
log_level = "debug"

[shell]
prompt = "nucmd> "
history_limit = 50

[server]
port = 9000
read_timeout = "5s"
allowed_origins = ["http://localhost"]

[grpc]
enable_reflection = true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.General.Name != "test" || cfg.General.LogLevel != "debug" {
		t.Errorf("General = %+v", cfg.General)
	}
	if cfg.Shell.Prompt != "nucmd> " || cfg.Shell.HistoryLimit != 50 {
		t.Errorf("Shell = %+v", cfg.Shell)
	}
	if cfg.Server.Port != 9000 || cfg.Server.ReadTimeout.Duration != 5*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if !reflect.DeepEqual(cfg.Server.AllowedOrigins, []string{"http://localhost"}) {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if !cfg.GRPC.EnableReflection || cfg.GRPC.Port != 9765 {
		t.Errorf("GRPC = %+v", cfg.GRPC)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
general:
  name: yaml-test
shell:
  script_dir: /tmp/scripts
server:
  ping_interval: 1m
grpc:
  port: 7000
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.General.Name != "yaml-test" || cfg.Shell.ScriptDir != "/tmp/scripts" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Server.PingInterval.Duration != time.Minute || cfg.GRPC.Port != 7000 {
		t.Errorf("Server = %+v, GRPC = %+v", cfg.Server, cfg.GRPC)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "config.toml", `
[general]
log_level = "debug"
[server]
port = 9000
`)
	t.Setenv("NUCMD_LOG_LEVEL", "warn")
	t.Setenv("NUCMD_WS_PORT", "9100")
	t.Setenv("NUCMD_GRPC_KEEPALIVE_TIME", "2m")
	t.Setenv("NUCMD_DATA_DIR", "/srv/nucmd")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.General.LogLevel != "warn" {
		t.Errorf("LogLevel = %v, want warn", cfg.General.LogLevel)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %v, want 9100", cfg.Server.Port)
	}
	if cfg.GRPC.KeepaliveTime.Duration != 2*time.Minute {
		t.Errorf("KeepaliveTime = %v, want 2m", cfg.GRPC.KeepaliveTime.Duration)
	}
	if cfg.Shell.HistoryPath != filepath.Join("/srv/nucmd", "history.db") {
		t.Errorf("HistoryPath = %v", cfg.Shell.HistoryPath)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	path := writeFile(t, "config.toml", "")
	t.Setenv("NUCMD_WS_PORT", "not-a-port")

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Errorf("Load() error = %v, want env parse error", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.toml"); err == nil {
		t.Error("Load() should fail for non-existent file")
	}

	bad := writeFile(t, "config.toml", "[general\nname = ")
	if _, err := Load(bad); err == nil {
		t.Error("Load() should fail for invalid TOML")
	}

	invalid := writeFile(t, "config.toml", "[shell]\nname_prefix = \"--\"\n")
	if _, err := Load(invalid); err == nil {
		t.Error("Load() should reject a multi-character name prefix")
	}
}

func TestLoad_ExpandsEnvInPaths(t *testing.T) {
	t.Setenv("NUCMD_TEST_HOME", "/home/tester")
	path := writeFile(t, "config.toml", "[shell]\nscript_dir = \"${NUCMD_TEST_HOME}/scripts\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Shell.ScriptDir != "/home/tester/scripts" {
		t.Errorf("ScriptDir = %v", cfg.Shell.ScriptDir)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Run("explicit file", func(t *testing.T) {
		path := writeFile(t, "config.toml", "[general]\nname = \"from-env\"\n")
		t.Setenv("NUCMD_CONFIG", path)

		cfg, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() error = %v", err)
		}
		if cfg.General.Name != "from-env" {
			t.Errorf("Name = %v, want from-env", cfg.General.Name)
		}
	})

	t.Run("defaults without file", func(t *testing.T) {
		t.Setenv("NUCMD_CONFIG", "")
		t.Setenv("HOME", t.TempDir())
		wd, _ := os.Getwd()
		t.Cleanup(func() { _ = os.Chdir(wd) })
		if err := os.Chdir(t.TempDir()); err != nil {
			t.Fatal(err)
		}

		cfg, err := LoadFromEnv()
		if err != nil {
			t.Fatalf("LoadFromEnv() error = %v", err)
		}
		if cfg.General.Name != "nucmd" {
			t.Errorf("Name = %v, want nucmd", cfg.General.Name)
		}
	})
}

func TestAddresses(t *testing.T) {
	cfg := Default()
	if got := cfg.WebsocketAddress(); got != "127.0.0.1:8765" {
		t.Errorf("WebsocketAddress() = %v", got)
	}
	if got := cfg.GRPCAddress(); got != "127.0.0.1:9765" {
		t.Errorf("GRPCAddress() = %v", got)
	}
}
