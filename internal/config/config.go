package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken string         `yaml:"discord_token"`
	LogLevel     string         `yaml:"log_level"`
	Mode         string         `yaml:"mode"`
	OwnerIDs     []string       `yaml:"owner_ids"`
	Health       HealthConfig   `yaml:"health"`
	AutoMod      AutoModConfig  `yaml:"automod"`
	Actuator     ActuatorConfig `yaml:"actuator"`
	Risk         RiskConfig     `yaml:"risk"`
	Actions      ActionConfig   `yaml:"actions"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LimiterConfig is one (capacity, window, threshold) tuple. A zero threshold
// means the window triggers when it is full.
type LimiterConfig struct {
	Capacity      int `yaml:"capacity"`
	WindowSeconds int `yaml:"window_seconds"`
	Threshold     int `yaml:"threshold"`
}

func (l LimiterConfig) Window() time.Duration {
	return time.Duration(l.WindowSeconds) * time.Second
}

func (l LimiterConfig) EffectiveThreshold() int {
	if l.Threshold <= 0 {
		return l.Capacity
	}
	return l.Threshold
}

func (l LimiterConfig) validate(name string) error {
	if l.Capacity < 1 {
		return fmt.Errorf("automod.%s: capacity must be >= 1, got %d", name, l.Capacity)
	}
	if l.WindowSeconds <= 0 {
		return fmt.Errorf("automod.%s: window_seconds must be > 0, got %d", name, l.WindowSeconds)
	}
	if l.Threshold < 0 || l.Threshold > l.Capacity {
		return fmt.Errorf("automod.%s: threshold must be between 1 and capacity (%d), got %d", name, l.Capacity, l.Threshold)
	}
	return nil
}

type AutoModConfig struct {
	Flood             LimiterConfig `yaml:"flood"`
	Duplicate         LimiterConfig `yaml:"duplicate"`
	Invite            LimiterConfig `yaml:"invite"`
	Link              LimiterConfig `yaml:"link"`
	Attachment        LimiterConfig `yaml:"attachment"`
	Mention           LimiterConfig `yaml:"mention"`
	BlockInvites      bool          `yaml:"block_invites"`
	BlockFakeLinks    bool          `yaml:"block_fake_links"`
	MentionLimit      int           `yaml:"mention_limit"`
	DuplicateDistance int           `yaml:"duplicate_distance"`
	SubjectIdleMin    int           `yaml:"subject_idle_minutes"`
	MaxSubjects       int           `yaml:"max_subjects"`
}

func (a AutoModConfig) SubjectIdle() time.Duration {
	return time.Duration(a.SubjectIdleMin) * time.Minute
}

func (a AutoModConfig) Validate() error {
	var errs []error
	limiters := []struct {
		name string
		cfg  LimiterConfig
	}{
		{"flood", a.Flood},
		{"duplicate", a.Duplicate},
		{"invite", a.Invite},
		{"link", a.Link},
		{"attachment", a.Attachment},
		{"mention", a.Mention},
	}
	for _, l := range limiters {
		if err := l.cfg.validate(l.name); err != nil {
			errs = append(errs, err)
		}
	}
	if a.MentionLimit < 0 {
		errs = append(errs, fmt.Errorf("automod.mention_limit must be >= 0, got %d", a.MentionLimit))
	}
	if a.DuplicateDistance < 1 {
		errs = append(errs, fmt.Errorf("automod.duplicate_distance must be >= 1, got %d", a.DuplicateDistance))
	}
	return errors.Join(errs...)
}

type ActuatorConfig struct {
	TimeoutSeconds   int     `yaml:"timeout_seconds"`
	DeletesPerSecond float64 `yaml:"deletes_per_second"`
	Burst            int     `yaml:"burst"`
}

func (a ActuatorConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

type RiskConfig struct {
	DecayPerMinute float64 `yaml:"decay_per_minute"`
	TTLMinutes     int     `yaml:"ttl_minutes"`
	SpamPoints     float64 `yaml:"spam_points"`
	BlockedPoints  float64 `yaml:"blocked_points"`
	FilteredPoints float64 `yaml:"filtered_points"`
}

type ActionConfig struct {
	Enabled        bool    `yaml:"enabled"`
	Timeout        float64 `yaml:"timeout"`
	TimeoutMinutes int     `yaml:"timeout_minutes"`
}

func DefaultAutoMod() AutoModConfig {
	return AutoModConfig{
		Flood:             LimiterConfig{Capacity: 5, WindowSeconds: 5, Threshold: 5},
		Duplicate:         LimiterConfig{Capacity: 4, WindowSeconds: 10, Threshold: 4},
		Invite:            LimiterConfig{Capacity: 2, WindowSeconds: 30},
		Link:              LimiterConfig{Capacity: 3, WindowSeconds: 30},
		Attachment:        LimiterConfig{Capacity: 2, WindowSeconds: 30},
		Mention:           LimiterConfig{Capacity: 3, WindowSeconds: 30, Threshold: 2},
		BlockInvites:      true,
		BlockFakeLinks:    true,
		MentionLimit:      9,
		DuplicateDistance: 5,
		SubjectIdleMin:    60,
		MaxSubjects:       50000,
	}
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Mode:     "normal",
		Health:   HealthConfig{Enabled: false, Addr: ":8080"},
		AutoMod:  DefaultAutoMod(),
		Actuator: ActuatorConfig{TimeoutSeconds: 5, DeletesPerSecond: 10, Burst: 20},
		Risk: RiskConfig{
			DecayPerMinute: 0.5,
			TTLMinutes:     60,
			SpamPoints:     12,
			BlockedPoints:  20,
			FilteredPoints: 25,
		},
		Actions: ActionConfig{Enabled: false, Timeout: 60, TimeoutMinutes: 10},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}

	cfg.Mode = normalizeMode(cfg.Mode)
	if err := cfg.AutoMod.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.Mode = envString("MODE", cfg.Mode)
	cfg.OwnerIDs = envList("OWNER_IDS", cfg.OwnerIDs)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.AutoMod.BlockInvites = envBool("AUTOMOD_BLOCK_INVITES", cfg.AutoMod.BlockInvites)
	cfg.AutoMod.BlockFakeLinks = envBool("AUTOMOD_BLOCK_FAKE_LINKS", cfg.AutoMod.BlockFakeLinks)
	cfg.AutoMod.MentionLimit = envInt("AUTOMOD_MENTION_LIMIT", cfg.AutoMod.MentionLimit)
	cfg.AutoMod.DuplicateDistance = envInt("AUTOMOD_DUPLICATE_DISTANCE", cfg.AutoMod.DuplicateDistance)
	cfg.AutoMod.SubjectIdleMin = envInt("AUTOMOD_SUBJECT_IDLE_MINUTES", cfg.AutoMod.SubjectIdleMin)
	cfg.AutoMod.MaxSubjects = envInt("AUTOMOD_MAX_SUBJECTS", cfg.AutoMod.MaxSubjects)
	cfg.Actuator.TimeoutSeconds = envInt("ACTUATOR_TIMEOUT_SECONDS", cfg.Actuator.TimeoutSeconds)
	cfg.Actions.Enabled = envBool("ACTIONS_ENABLED", cfg.Actions.Enabled)
	cfg.Actions.TimeoutMinutes = envInt("ACTIONS_TIMEOUT_MINUTES", cfg.Actions.TimeoutMinutes)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func normalizeMode(value string) string {
	switch strings.ToLower(value) {
	case "audit":
		return "audit"
	default:
		return "normal"
	}
}
