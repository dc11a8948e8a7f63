package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GOOGLE_API_KEY",
		"ENABLE_ORACLE", "ORACLE_TIMEOUT", "OPENAI_MODEL", "ANTHROPIC_MODEL",
		"GOOGLE_MODEL", "OLLAMA_HOST", "OLLAMA_MODEL", "REDIS_URL",
		"NEO4J_URI", "NEO4J_USER", "NEO4J_PASSWORD",
		"LISTEN_ADDR", "TEAMGATE_CATALOG",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadFromDirDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFromDir: %v", err)
	}
	if cfg.ListenAddr != ":8000" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.Oracle.Enabled {
		t.Error("oracle should be disabled by default")
	}
	if cfg.Oracle.Timeout != 20*time.Second {
		t.Errorf("Timeout = %v", cfg.Oracle.Timeout)
	}
	if cfg.HasGraphStore() {
		t.Error("graph store should be unconfigured")
	}
}

func TestLoadFromDirFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	content := `
api_keys:
  openai: sk-from-file
oracle:
  enabled: true
  timeout_seconds: 5
  ollama_host: http://localhost:11434
redis:
  url: redis://localhost:6379/0
neo4j:
  uri: bolt://localhost:7687
  user: neo4j
  password: secret
listen_addr: ":9000"
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir: %v", err)
	}
	if cfg.OpenAIAPIKey != "sk-from-file" {
		t.Errorf("OpenAIAPIKey = %q", cfg.OpenAIAPIKey)
	}
	if !cfg.Oracle.Enabled || cfg.Oracle.Timeout != 5*time.Second {
		t.Errorf("oracle config = %+v", cfg.Oracle)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
	if !cfg.HasGraphStore() {
		t.Error("graph store should be configured")
	}
	if cfg.ListenAddr != ":9000" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	content := "api_keys:\n  openai: sk-from-file\noracle:\n  enabled: true\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("OPENAI_API_KEY", "sk-from-env")
	t.Setenv("ENABLE_ORACLE", "0")
	t.Setenv("ORACLE_TIMEOUT", "3")
	t.Setenv("LISTEN_ADDR", ":7070")

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir: %v", err)
	}
	if cfg.OpenAIAPIKey != "sk-from-env" {
		t.Errorf("env should win: %q", cfg.OpenAIAPIKey)
	}
	if cfg.Oracle.Enabled {
		t.Error("ENABLE_ORACLE=0 should disable the oracle")
	}
	if cfg.Oracle.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v", cfg.Oracle.Timeout)
	}
	if cfg.ListenAddr != ":7070" {
		t.Errorf("LISTEN_ADDR should win: %q", cfg.ListenAddr)
	}
}

func TestEnvTruthy(t *testing.T) {
	for _, val := range []string{"1", "true", "YES", " on "} {
		if !envTruthy(val) {
			t.Errorf("envTruthy(%q) = false", val)
		}
	}
	for _, val := range []string{"0", "false", "off", "", "maybe"} {
		if envTruthy(val) {
			t.Errorf("envTruthy(%q) = true", val)
		}
	}
}

func TestOracleSettings(t *testing.T) {
	clearEnv(t)

	cfg := &Config{
		OpenAIAPIKey: "sk-x",
		Oracle:       OracleConfig{Enabled: true, OllamaHost: "http://host"},
	}
	s := cfg.OracleSettings()
	if !s.Enabled || s.OpenAIAPIKey != "sk-x" || s.OllamaHost != "http://host" {
		t.Fatalf("unexpected settings %+v", s)
	}
}
