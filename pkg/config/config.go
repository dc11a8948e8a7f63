// Package config loads teamgate configuration from a YAML file and
// environment variables, with the environment taking precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/zen-systems/teamgate/pkg/adapter"
	"gopkg.in/yaml.v3"
)

const (
	defaultListenAddr    = ":8000"
	defaultOracleTimeout = 20 * time.Second
)

// Config holds the application configuration.
type Config struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string

	Oracle OracleConfig
	Neo4j  Neo4jConfig

	RedisURL    string
	ListenAddr  string
	CatalogPath string
	ConfigDir   string
}

// OracleConfig controls the optional generative backend used for expert
// selection.
type OracleConfig struct {
	Enabled        bool
	Timeout        time.Duration
	OpenAIModel    string
	AnthropicModel string
	GoogleModel    string
	OllamaHost     string
	OllamaModel    string
}

// Neo4jConfig holds long-term store connection settings. All fields empty
// means the graph store is disabled.
type Neo4jConfig struct {
	URI      string
	User     string
	Password string
}

// FileConfig represents the structure of ~/.teamgate/config.yaml
type FileConfig struct {
	APIKeys     APIKeysConfig    `yaml:"api_keys"`
	Oracle      OracleFileConfig `yaml:"oracle"`
	Redis       RedisFileConfig  `yaml:"redis"`
	Neo4j       Neo4jFileConfig  `yaml:"neo4j"`
	ListenAddr  string           `yaml:"listen_addr"`
	CatalogPath string           `yaml:"catalog_path"`
}

// APIKeysConfig holds API key configuration from file.
type APIKeysConfig struct {
	Anthropic string `yaml:"anthropic"`
	OpenAI    string `yaml:"openai"`
	Google    string `yaml:"google"`
}

// OracleFileConfig holds oracle configuration from file.
type OracleFileConfig struct {
	Enabled        bool   `yaml:"enabled"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	OpenAIModel    string `yaml:"openai_model"`
	AnthropicModel string `yaml:"anthropic_model"`
	GoogleModel    string `yaml:"google_model"`
	OllamaHost     string `yaml:"ollama_host"`
	OllamaModel    string `yaml:"ollama_model"`
}

// RedisFileConfig holds short-term store configuration from file.
type RedisFileConfig struct {
	URL string `yaml:"url"`
}

// Neo4jFileConfig holds long-term store configuration from file.
type Neo4jFileConfig struct {
	URI      string `yaml:"uri"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// Load reads configuration from ~/.teamgate and environment variables.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	return LoadFromDir(configDir)
}

// LoadFromDir reads configuration from a specific directory. Environment
// variables take precedence over file configuration.
func LoadFromDir(configDir string) (*Config, error) {
	fileConfig := loadFileConfig(filepath.Join(configDir, "config.yaml"))

	timeout := defaultOracleTimeout
	if fileConfig.Oracle.TimeoutSeconds > 0 {
		timeout = time.Duration(fileConfig.Oracle.TimeoutSeconds) * time.Second
	}
	if raw := os.Getenv("ORACLE_TIMEOUT"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}

	enabled := fileConfig.Oracle.Enabled
	if raw := os.Getenv("ENABLE_ORACLE"); raw != "" {
		enabled = envTruthy(raw)
	}

	cfg := &Config{
		AnthropicAPIKey: getEnvOrDefault("ANTHROPIC_API_KEY", fileConfig.APIKeys.Anthropic),
		OpenAIAPIKey:    getEnvOrDefault("OPENAI_API_KEY", fileConfig.APIKeys.OpenAI),
		GoogleAPIKey:    getEnvOrDefault("GOOGLE_API_KEY", fileConfig.APIKeys.Google),
		Oracle: OracleConfig{
			Enabled:        enabled,
			Timeout:        timeout,
			OpenAIModel:    getEnvOrDefault("OPENAI_MODEL", fileConfig.Oracle.OpenAIModel),
			AnthropicModel: getEnvOrDefault("ANTHROPIC_MODEL", fileConfig.Oracle.AnthropicModel),
			GoogleModel:    getEnvOrDefault("GOOGLE_MODEL", fileConfig.Oracle.GoogleModel),
			OllamaHost:     getEnvOrDefault("OLLAMA_HOST", fileConfig.Oracle.OllamaHost),
			OllamaModel:    getEnvOrDefault("OLLAMA_MODEL", fileConfig.Oracle.OllamaModel),
		},
		Neo4j: Neo4jConfig{
			URI:      getEnvOrDefault("NEO4J_URI", fileConfig.Neo4j.URI),
			User:     getEnvOrDefault("NEO4J_USER", fileConfig.Neo4j.User),
			Password: getEnvOrDefault("NEO4J_PASSWORD", fileConfig.Neo4j.Password),
		},
		RedisURL:    getEnvOrDefault("REDIS_URL", fileConfig.Redis.URL),
		ListenAddr:  getEnvOrDefault("LISTEN_ADDR", fileConfig.ListenAddr),
		CatalogPath: getEnvOrDefault("TEAMGATE_CATALOG", fileConfig.CatalogPath),
		ConfigDir:   configDir,
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}

	return cfg, nil
}

// OracleSettings maps the configuration to adapter detection settings.
func (c *Config) OracleSettings() adapter.Settings {
	return adapter.Settings{
		Enabled:         c.Oracle.Enabled,
		AnthropicAPIKey: c.AnthropicAPIKey,
		AnthropicModel:  c.Oracle.AnthropicModel,
		OpenAIAPIKey:    c.OpenAIAPIKey,
		OpenAIModel:     c.Oracle.OpenAIModel,
		GoogleAPIKey:    c.GoogleAPIKey,
		GoogleModel:     c.Oracle.GoogleModel,
		OllamaHost:      c.Oracle.OllamaHost,
		OllamaModel:     c.Oracle.OllamaModel,
		EchoPrefix:      "[echo] ",
	}
}

// HasGraphStore reports whether the long-term graph store is configured.
func (c *Config) HasGraphStore() bool {
	return c.Neo4j.URI != "" && c.Neo4j.User != "" && c.Neo4j.Password != ""
}

// loadFileConfig reads the config file, returning empty config if not found.
func loadFileConfig(path string) *FileConfig {
	cfg := &FileConfig{}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg // Return empty config if file doesn't exist
	}

	_ = yaml.Unmarshal(data, cfg) // Ignore parse errors, use defaults
	return cfg
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

// envTruthy interprets the usual truthy spellings.
func envTruthy(val string) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".teamgate")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
