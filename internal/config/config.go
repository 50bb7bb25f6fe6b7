// Package config loads macrobot configuration from an optional YAML file
// overlaid with environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Synthesis strategy providers.
const (
	ProviderRule   = "rule"
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB profile persistence
	Persist     bool
	DBURL       string
	DBNamespace string
	DBDatabase  string
	DBUser      string
	DBPass      string
	DBAuthLevel string

	// Capture
	BridgeURL     string
	FrameInterval time.Duration

	// Synthesis
	SynthProvider string
	SynthSeed     int64
	OllamaHost    string
	OllamaModel   string
	OpenAIAPIKey  string
	OpenAIModel   string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// fileConfig is the YAML overlay shape. Every field is optional; env vars
// win over file values.
type fileConfig struct {
	Persist       *bool  `yaml:"persist"`
	DBURL         string `yaml:"db_url"`
	DBNamespace   string `yaml:"db_namespace"`
	DBDatabase    string `yaml:"db_database"`
	DBUser        string `yaml:"db_user"`
	DBPass        string `yaml:"db_pass"`
	DBAuthLevel   string `yaml:"db_auth_level"`
	BridgeURL     string `yaml:"bridge_url"`
	FrameInterval string `yaml:"frame_interval"`
	SynthProvider string `yaml:"synth_provider"`
	SynthSeed     *int64 `yaml:"synth_seed"`
	OllamaHost    string `yaml:"ollama_host"`
	OllamaModel   string `yaml:"ollama_model"`
	OpenAIModel   string `yaml:"openai_model"`
	LogFile       string `yaml:"log_file"`
	LogLevel      string `yaml:"log_level"`
}

// Load reads configuration: defaults, then the YAML file named by
// MACROBOT_CONFIG (if any), then environment variables.
func Load() (Config, error) {
	cfg := Config{
		Persist:     false,
		DBURL:       "ws://localhost:8000/rpc",
		DBNamespace: "macrobot",
		DBDatabase:  "profiles",
		DBUser:      "root",
		DBPass:      "root",
		DBAuthLevel: "root",

		BridgeURL:     "ws://localhost:8787/capture",
		FrameInterval: time.Second,

		SynthProvider: ProviderRule,
		SynthSeed:     1,
		OllamaHost:    "http://localhost:11434",
		OllamaModel:   "llama3.2",
		OpenAIModel:   "gpt-4o-mini",

		LogFile:  "/tmp/macrobot.log",
		LogLevel: slog.LevelInfo,
	}

	if path := os.Getenv("MACROBOT_CONFIG"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return cfg, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Persist != nil {
		cfg.Persist = *fc.Persist
	}
	setIf(&cfg.DBURL, fc.DBURL)
	setIf(&cfg.DBNamespace, fc.DBNamespace)
	setIf(&cfg.DBDatabase, fc.DBDatabase)
	setIf(&cfg.DBUser, fc.DBUser)
	setIf(&cfg.DBPass, fc.DBPass)
	setIf(&cfg.DBAuthLevel, fc.DBAuthLevel)
	setIf(&cfg.BridgeURL, fc.BridgeURL)
	setIf(&cfg.SynthProvider, fc.SynthProvider)
	if fc.SynthSeed != nil {
		cfg.SynthSeed = *fc.SynthSeed
	}
	setIf(&cfg.OllamaHost, fc.OllamaHost)
	setIf(&cfg.OllamaModel, fc.OllamaModel)
	setIf(&cfg.OpenAIModel, fc.OpenAIModel)
	setIf(&cfg.LogFile, fc.LogFile)
	if fc.LogLevel != "" {
		cfg.LogLevel = parseLogLevel(fc.LogLevel)
	}
	if fc.FrameInterval != "" {
		d, err := time.ParseDuration(fc.FrameInterval)
		if err != nil {
			return fmt.Errorf("parse frame_interval: %w", err)
		}
		cfg.FrameInterval = d
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("MACROBOT_PERSIST"); v != "" {
		cfg.Persist = v == "true" || v == "1"
	}
	cfg.DBURL = getEnv("MACROBOT_DB_URL", cfg.DBURL)
	cfg.DBNamespace = getEnv("MACROBOT_DB_NAMESPACE", cfg.DBNamespace)
	cfg.DBDatabase = getEnv("MACROBOT_DB_DATABASE", cfg.DBDatabase)
	cfg.DBUser = getEnv("MACROBOT_DB_USER", cfg.DBUser)
	cfg.DBPass = getEnv("MACROBOT_DB_PASS", cfg.DBPass)
	cfg.DBAuthLevel = getEnv("MACROBOT_DB_AUTH_LEVEL", cfg.DBAuthLevel)

	cfg.BridgeURL = getEnv("MACROBOT_BRIDGE_URL", cfg.BridgeURL)
	if v := os.Getenv("MACROBOT_FRAME_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse MACROBOT_FRAME_INTERVAL: %w", err)
		}
		cfg.FrameInterval = d
	}

	cfg.SynthProvider = getEnv("MACROBOT_SYNTH_PROVIDER", cfg.SynthProvider)
	if v := os.Getenv("MACROBOT_SYNTH_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse MACROBOT_SYNTH_SEED: %w", err)
		}
		cfg.SynthSeed = seed
	}
	cfg.OllamaHost = getEnv("OLLAMA_HOST", cfg.OllamaHost)
	cfg.OllamaModel = getEnv("MACROBOT_OLLAMA_MODEL", cfg.OllamaModel)
	cfg.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIModel = getEnv("MACROBOT_OPENAI_MODEL", cfg.OpenAIModel)

	cfg.LogFile = getEnv("MACROBOT_LOG_FILE", cfg.LogFile)
	if v := os.Getenv("MACROBOT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	return nil
}

func setIf(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
