// Package config loads swissarmyhammer.yaml from the repo root and applies
// environment variable overrides on top of built-in defaults. Precedence is
// YAML file > environment variable > default, matching the rest of the
// ecosystem's config loaders.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"swissarmyhammer/internal/logging"
)

// Config is the root configuration document. Unknown YAML keys do not fail
// the load; Load prints a warning naming them to stderr.
type Config struct {
	BaseBranch string `yaml:"base_branch"`

	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Watcher   WatcherConfig   `yaml:"watcher"`
	Workflow  WorkflowConfig  `yaml:"workflow"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// EmbeddingConfig selects and configures an embedding backend.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"`        // "ollama" or "genai"
	OllamaEndpoint string `yaml:"ollama_endpoint"`
	OllamaModel    string `yaml:"ollama_model"`
	GenAIAPIKey    string `yaml:"genai_api_key"`
	GenAIModel     string `yaml:"genai_model"`
	TaskType       string `yaml:"task_type"`
	BatchTimeout   string `yaml:"batch_timeout"`
}

// IndexConfig controls where the vector index lives and how indexing batches.
type IndexConfig struct {
	DatabasePath       string `yaml:"database_path"`
	Concurrency        int    `yaml:"concurrency"`
	ExcludePatterns    []string `yaml:"exclude_patterns"`
	RequireVecExtension bool   `yaml:"require_vec_extension"`
}

// WatcherConfig controls the filesystem watcher's debounce behavior.
type WatcherConfig struct {
	DebounceMillis int `yaml:"debounce_ms"`
}

// WorkflowConfig controls executor-wide defaults.
type WorkflowConfig struct {
	ShellActionTimeoutSeconds   int `yaml:"shell_action_timeout_seconds"`
	ShellActionTimeoutCeilingSeconds int `yaml:"shell_action_timeout_ceiling_seconds"`
}

// LoggingConfig mirrors the fields internal/logging.Initialize needs.
type LoggingConfig struct {
	DebugMode bool   `yaml:"debug_mode"`
	Level     string `yaml:"level"`
	JSON      bool   `yaml:"json"`
}

// DefaultConfig returns the built-in defaults, before YAML or env overrides.
func DefaultConfig() *Config {
	return &Config{
		BaseBranch: "main",
		Embedding: EmbeddingConfig{
			Provider:       "ollama",
			OllamaEndpoint: "http://localhost:11434",
			OllamaModel:    "nomic-embed-text",
			GenAIModel:     "gemini-embedding-001",
			TaskType:       "SEMANTIC_SIMILARITY",
			BatchTimeout:   "60s",
		},
		Index: IndexConfig{
			DatabasePath: filepath.Join(".swissarmyhammer", "index.db"),
			Concurrency:  4,
			ExcludePatterns: []string{
				".git/**", "node_modules/**", "vendor/**", ".swissarmyhammer/**",
			},
		},
		Watcher: WatcherConfig{
			DebounceMillis: 200,
		},
		Workflow: WorkflowConfig{
			ShellActionTimeoutSeconds:        300,
			ShellActionTimeoutCeilingSeconds: 3600,
		},
		Logging: LoggingConfig{
			DebugMode: false,
			Level:     "info",
			JSON:      false,
		},
	}
}

// Load starts from the defaults, applies environment variable overrides,
// then reads swissarmyhammer.yaml from repoRoot (if present) on top, so a
// key set in the file wins over the environment.
func Load(repoRoot string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	path := filepath.Join(repoRoot, "swissarmyhammer.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	// Decode again in strict mode only to report unknown keys.
	strict := yaml.NewDecoder(bytes.NewReader(data))
	strict.KnownFields(true)
	if err := strict.Decode(&Config{}); err != nil && err != io.EOF {
		fmt.Fprintf(os.Stderr, "warning: config %s: %v\n", path, err)
	}
	return cfg, nil
}

// applyEnvOverrides layers recognized environment variables on top of the
// built-in defaults; Load applies the YAML file after it.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SWISSARMYHAMMER_BASE_BRANCH"); v != "" {
		c.BaseBranch = v
	}
	if v := os.Getenv("RUST_LOG"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SWISSARMYHAMMER_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("GENAI_API_KEY"); v != "" {
		c.Embedding.GenAIAPIKey = v
	}
	if v := os.Getenv("OLLAMA_ENDPOINT"); v != "" {
		c.Embedding.OllamaEndpoint = v
	}
}

// NoColor reports whether ANSI color output should be suppressed, per the
// NO_COLOR convention (https://no-color.org/).
func NoColor() bool {
	_, set := os.LookupEnv("NO_COLOR")
	return set
}

// ShellActionTimeout returns the configured default shell action timeout.
func (c *Config) ShellActionTimeout() time.Duration {
	if c.Workflow.ShellActionTimeoutSeconds <= 0 {
		return 300 * time.Second
	}
	return time.Duration(c.Workflow.ShellActionTimeoutSeconds) * time.Second
}

// ShellActionTimeoutCeiling returns the hard cap a per-action timeout may not exceed.
func (c *Config) ShellActionTimeoutCeiling() time.Duration {
	if c.Workflow.ShellActionTimeoutCeilingSeconds <= 0 {
		return 3600 * time.Second
	}
	return time.Duration(c.Workflow.ShellActionTimeoutCeilingSeconds) * time.Second
}

// WatcherDebounce returns the configured debounce window.
func (c *Config) WatcherDebounce() time.Duration {
	if c.Watcher.DebounceMillis <= 0 {
		return 200 * time.Millisecond
	}
	return time.Duration(c.Watcher.DebounceMillis) * time.Millisecond
}

// Validate checks the configuration for internally-inconsistent values.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case "ollama", "genai":
	default:
		return fmt.Errorf("config: invalid embedding provider %q (want ollama or genai)", c.Embedding.Provider)
	}
	if c.Index.Concurrency <= 0 {
		return fmt.Errorf("config: index.concurrency must be positive, got %d", c.Index.Concurrency)
	}
	return nil
}

// InitLogging wires this config's logging section into the logging package.
// Call once at startup after Load.
func (c *Config) InitLogging(repoRoot string) error {
	return logging.Initialize(repoRoot, c.Logging.DebugMode, c.Logging.Level, c.Logging.JSON)
}
