// Package config provides configuration management for the playbook engine.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (PLAYBOOK_*)
// 3. Project config (.playbook/config.yaml in cwd)
// 4. Home config (~/.playbook/config.yaml)
// 5. Defaults
//
// A Config is constructed once per invocation and threaded through every
// component, so tests can run against isolated temporary memory roots.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all playbook engine configuration.
type Config struct {
	// Output controls the default output format (table, json).
	Output string `yaml:"output" json:"output"`

	// MemoryDir is the shared memory root (default: .playbook).
	MemoryDir string `yaml:"memory_dir" json:"memory_dir"`

	// Verbose enables debug-level logging.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Engine holds the lesson lifecycle thresholds.
	Engine EngineConfig `yaml:"engine" json:"engine"`

	// Lock holds file-lock acquisition settings.
	Lock LockConfig `yaml:"lock" json:"lock"`
}

// EngineConfig holds the lesson lifecycle thresholds. A zero value in
// any layer means "use the default"; thresholds cannot be explicitly set
// to zero through a config file, env var, or flag.
type EngineConfig struct {
	// MinEventsForAnalysis is the minimum eligible events for a run to
	// produce anything; below it the run only advances the marker.
	MinEventsForAnalysis int `yaml:"min_events_for_analysis" json:"min_events_for_analysis"`

	// MinEventsForPattern is the minimum events a group needs to survive.
	MinEventsForPattern int `yaml:"min_events_for_pattern" json:"min_events_for_pattern"`

	// HumanWeight is the multiplier for explicit human feedback in the
	// confidence model.
	HumanWeight int `yaml:"human_weight" json:"human_weight"`

	// ConfidenceThreshold is the minimum confidence for promotion.
	ConfidenceThreshold float64 `yaml:"confidence_threshold" json:"confidence_threshold"`

	// DedupThreshold is the minimum composite similarity for two lessons
	// to be considered duplicates.
	DedupThreshold float64 `yaml:"dedup_threshold" json:"dedup_threshold"`

	// PruneAgeDays is the age after which a lesson is stale.
	PruneAgeDays int `yaml:"prune_age_days" json:"prune_age_days"`

	// MinSuccessRate is the success-rate floor for well-evidenced lessons.
	MinSuccessRate float64 `yaml:"min_success_rate" json:"min_success_rate"`

	// MaxDeltas is the active playbook size cap.
	MaxDeltas int `yaml:"max_deltas" json:"max_deltas"`

	// MaxCandidates is the candidate pool size cap.
	MaxCandidates int `yaml:"max_candidates" json:"max_candidates"`

	// MaxCount is the clamp ceiling for evidence counters.
	MaxCount int `yaml:"max_count" json:"max_count"`

	// MaxSourceEvents is the maximum source-event IDs kept per lesson.
	MaxSourceEvents int `yaml:"max_source_events" json:"max_source_events"`
}

// LockConfig holds file-lock acquisition settings.
type LockConfig struct {
	// TimeoutMS is how long acquisition retries before giving up.
	TimeoutMS int `yaml:"timeout_ms" json:"timeout_ms"`

	// RetryDelayMS is the initial backoff between acquisition attempts;
	// the delay doubles on each retry.
	RetryDelayMS int `yaml:"retry_delay_ms" json:"retry_delay_ms"`
}

// Timeout returns the lock acquisition timeout as a duration.
func (l LockConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutMS) * time.Millisecond
}

// RetryDelay returns the initial backoff as a duration.
func (l LockConfig) RetryDelay() time.Duration {
	return time.Duration(l.RetryDelayMS) * time.Millisecond
}

// PruneAge returns the staleness age as a duration.
func (e EngineConfig) PruneAge() time.Duration {
	return time.Duration(e.PruneAgeDays) * 24 * time.Hour
}

// Default config values (used in resolution and validation).
const (
	defaultOutput    = "table"
	defaultMemoryDir = ".playbook"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Output:    defaultOutput,
		MemoryDir: defaultMemoryDir,
		Verbose:   false,
		Engine: EngineConfig{
			MinEventsForAnalysis: 5,
			MinEventsForPattern:  3,
			HumanWeight:          3,
			ConfidenceThreshold:  0.80,
			DedupThreshold:       0.85,
			PruneAgeDays:         90,
			MinSuccessRate:       0.20,
			MaxDeltas:            50,
			MaxCandidates:        200,
			MaxCount:             1000,
			MaxSourceEvents:      20,
		},
		Lock: LockConfig{
			TimeoutMS:    5000,
			RetryDelayMS: 50,
		},
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > project > home > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	homeConfig, _ := loadFromPath(homeConfigPath())
	if homeConfig != nil {
		cfg = merge(cfg, homeConfig)
	}

	projectConfig, _ := loadFromPath(projectConfigPath())
	if projectConfig != nil {
		cfg = merge(cfg, projectConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	return cfg, nil
}

// homeConfigPath returns the home config path.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".playbook", "config.yaml")
}

// projectConfigPath returns the project config path.
func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv("PLAYBOOK_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".playbook", "config.yaml")
}

// loadFromPath loads config from a YAML file. Missing or unparsable files
// degrade to nil so a corrupt config never blocks an invocation.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("PLAYBOOK_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("PLAYBOOK_MEMORY_DIR"); v != "" {
		cfg.MemoryDir = v
	}
	if v := os.Getenv("PLAYBOOK_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	if v, ok := envInt("PLAYBOOK_LOCK_TIMEOUT_MS"); ok {
		cfg.Lock.TimeoutMS = v
	}
	if v, ok := envInt("PLAYBOOK_MAX_DELTAS"); ok {
		cfg.Engine.MaxDeltas = v
	}
	if v, ok := envInt("PLAYBOOK_PRUNE_AGE_DAYS"); ok {
		cfg.Engine.PruneAgeDays = v
	}
	if v, ok := envFloat("PLAYBOOK_CONFIDENCE_THRESHOLD"); ok {
		cfg.Engine.ConfidenceThreshold = v
	}
	if v, ok := envFloat("PLAYBOOK_DEDUP_THRESHOLD"); ok {
		cfg.Engine.DedupThreshold = v
	}
	return cfg
}

// envInt parses an integer env var, reporting whether it was set and valid.
func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// envFloat parses a float env var, reporting whether it was set and valid.
func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// mergeStr overwrites dst with src when src is non-empty.
// The merge helpers treat the zero value as unset, so no layer can
// override a threshold to zero; Default() is the floor for every field.

func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// mergeInt overwrites dst with src when src is non-zero.
func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

// mergeFloat overwrites dst with src when src is non-zero.
func mergeFloat(dst *float64, src float64) {
	if src != 0 {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.Output, src.Output)
	mergeStr(&dst.MemoryDir, src.MemoryDir)
	if src.Verbose {
		dst.Verbose = true
	}

	mergeEngine(&dst.Engine, &src.Engine)
	mergeLock(&dst.Lock, &src.Lock)

	return dst
}

// mergeEngine merges lifecycle threshold fields.
func mergeEngine(dst, src *EngineConfig) {
	mergeInt(&dst.MinEventsForAnalysis, src.MinEventsForAnalysis)
	mergeInt(&dst.MinEventsForPattern, src.MinEventsForPattern)
	mergeInt(&dst.HumanWeight, src.HumanWeight)
	mergeFloat(&dst.ConfidenceThreshold, src.ConfidenceThreshold)
	mergeFloat(&dst.DedupThreshold, src.DedupThreshold)
	mergeInt(&dst.PruneAgeDays, src.PruneAgeDays)
	mergeFloat(&dst.MinSuccessRate, src.MinSuccessRate)
	mergeInt(&dst.MaxDeltas, src.MaxDeltas)
	mergeInt(&dst.MaxCandidates, src.MaxCandidates)
	mergeInt(&dst.MaxCount, src.MaxCount)
	mergeInt(&dst.MaxSourceEvents, src.MaxSourceEvents)
}

// mergeLock merges lock acquisition fields.
func mergeLock(dst, src *LockConfig) {
	mergeInt(&dst.TimeoutMS, src.TimeoutMS)
	mergeInt(&dst.RetryDelayMS, src.RetryDelayMS)
}
