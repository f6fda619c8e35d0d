package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Temporal contains connection settings for the durable-execution host.
type Temporal struct {
	Address   string
	Namespace string
	TaskQueue string
}

// Worker contains worker tuning knobs.
type Worker struct {
	MaxConcurrentActivities    int
	MaxConcurrentWorkflowTasks int
}

// Media contains the four filesystem roots the pipeline moves data through.
type Media struct {
	InputRoot      string
	ProcessingRoot string
	StagingRoot    string
	OutputRoot     string
}

// Anthropic contains connection settings for the episode matcher LLM.
type Anthropic struct {
	APIKey  string
	BaseURL string
	Model   string
}

// AniList contains connection settings for the anime catalogue.
type AniList struct {
	BaseURL string
}

// Matching contains episode match acceptance settings.
type Matching struct {
	ConfidenceThreshold float64
}

// Logging contains log output settings.
type Logging struct {
	Level  string
	Format string
}

// Config is the immutable process-scoped configuration snapshot.
type Config struct {
	Temporal  Temporal
	Worker    Worker
	Media     Media
	Anthropic Anthropic
	AniList   AniList
	Matching  Matching
	Logging   Logging

	// HistoryDBPath locates the local run-history database.
	HistoryDBPath string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	cfg.Temporal.Address = envString("TEMPORAL_ADDRESS", cfg.Temporal.Address)
	cfg.Temporal.Namespace = envString("TEMPORAL_NAMESPACE", cfg.Temporal.Namespace)
	cfg.Temporal.TaskQueue = envString("TEMPORAL_TASK_QUEUE", cfg.Temporal.TaskQueue)

	var err error
	if cfg.Worker.MaxConcurrentActivities, err = envInt("MAX_CONCURRENT_ACTIVITIES", cfg.Worker.MaxConcurrentActivities); err != nil {
		return nil, err
	}
	if cfg.Worker.MaxConcurrentWorkflowTasks, err = envInt("MAX_CONCURRENT_WORKFLOW_TASKS", cfg.Worker.MaxConcurrentWorkflowTasks); err != nil {
		return nil, err
	}

	cfg.Media.InputRoot = envString("MEDIA_INPUT_ROOT", cfg.Media.InputRoot)
	cfg.Media.ProcessingRoot = envString("MEDIA_PROCESSING_ROOT", cfg.Media.ProcessingRoot)
	cfg.Media.StagingRoot = envString("MEDIA_STAGING_ROOT", cfg.Media.StagingRoot)
	cfg.Media.OutputRoot = envString("MEDIA_OUTPUT_ROOT", cfg.Media.OutputRoot)

	cfg.Anthropic.APIKey = envString("ANTHROPIC_API_KEY", cfg.Anthropic.APIKey)
	cfg.Anthropic.BaseURL = envString("ANTHROPIC_BASE_URL", cfg.Anthropic.BaseURL)
	cfg.Anthropic.Model = envString("ANTHROPIC_MODEL", cfg.Anthropic.Model)

	cfg.AniList.BaseURL = envString("ANILIST_BASE_URL", cfg.AniList.BaseURL)

	if cfg.Matching.ConfidenceThreshold, err = envFloat("MATCH_CONFIDENCE_THRESHOLD", cfg.Matching.ConfidenceThreshold); err != nil {
		return nil, err
	}

	cfg.Logging.Level = envString("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = envString("LOG_FORMAT", cfg.Logging.Format)

	historyPath := envString("HISTORY_DB_PATH", cfg.HistoryDBPath)
	if cfg.HistoryDBPath, err = ExpandPath(historyPath); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, nil
}

// LockPath returns the worker lock file under the processing root.
func (c *Config) LockPath() string {
	return filepath.Join(c.Media.ProcessingRoot, ".sera.lock")
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && pathValue[1] == '/' {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}
