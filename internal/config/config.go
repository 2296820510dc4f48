// Package config handles configuration loading from files, defaults, and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/chronoscribe/internal/allotter"
	"github.com/javiermolinar/chronoscribe/internal/llm"
	"github.com/javiermolinar/chronoscribe/internal/scheduler"
)

// Config holds the application configuration.
type Config struct {
	Schedule ScheduleConfig `toml:"schedule"`
	LLM      LLMConfig      `toml:"llm"`
	Backend  BackendConfig  `toml:"backend"`
	Storage  StorageConfig  `toml:"storage"`
	UI       UIConfig       `toml:"ui"`
}

// UIConfig holds the CLI/TUI's cosmetic settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "macchiato", "frappe", "latte"
}

// WeeklyBlackout forbids scheduling during [Start,End) on every
// occurrence of Weekday (a lowercase English weekday name).
type WeeklyBlackout struct {
	Weekday string `toml:"weekday"`
	Start   string `toml:"start"` // "HH:MM"
	End     string `toml:"end"`   // "HH:MM"
}

// DateBlackout forbids scheduling during [Start,End) on one date.
type DateBlackout struct {
	Date  string `toml:"date"` // "2006-01-02"
	Start string `toml:"start"`
	End   string `toml:"end"`
}

// ScheduleConfig holds the work window, anti-bunching constraints, and
// blackouts the scheduler and allotter consume.
type ScheduleConfig struct {
	Timezone              string           `toml:"timezone"`
	WorkStartHour         int              `toml:"work_start_hour"`
	WorkEndHour           int              `toml:"work_end_hour"`
	MinGapMinutes         int              `toml:"min_gap_minutes"`
	MaxTasksPerDay        int              `toml:"max_tasks_per_day"`
	WeeklyBlackouts       []WeeklyBlackout `toml:"weekly_blackouts"`
	DateBlackouts         []DateBlackout   `toml:"date_blackouts"`
	HolidaysCalendarTitle string           `toml:"holidays_calendar_title"`
}

// LLMConfig holds the LLM client settings the factory consumes.
type LLMConfig struct {
	Provider string `toml:"provider"` // "ollama", "lmstudio", "copilot"
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
}

// BackendConfig holds the calendar backend's base URL.
type BackendConfig struct {
	BaseURL string `toml:"base_url"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			Timezone:              defaultTimezone(),
			WorkStartHour:         6,
			WorkEndHour:           23,
			MinGapMinutes:         15,
			MaxTasksPerDay:        0,
			HolidaysCalendarTitle: allotter.DefaultHolidaysCalendarTitle,
		},
		LLM: LLMConfig{
			Provider: llm.ProviderOllama,
			Model:    llm.DefaultOllamaModel,
			BaseURL:  "http://localhost:11434",
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:5100",
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		UI: UIConfig{
			Theme: "frappe",
		},
	}
}

func defaultTimezone() string {
	if loc := time.Local; loc != nil && loc.String() != "" && loc.String() != "Local" {
		return loc.String()
	}
	return "UTC"
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "chronoscribe.db"
	}
	return filepath.Join(home, ".local", "share", "chronoscribe", "chronoscribe.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "chronoscribe", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path. It starts with
// defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies the environment variables §6 pins. These take
// precedence over file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CALBRIDGE_BASE"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_BASE"); v != "" {
		cfg.LLM.BaseURL = v
		cfg.LLM.Provider = "ollama"
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		cfg.Schedule.Timezone = v
	}
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is internally consistent.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Schedule.Timezone, err)
	}
	if c.Schedule.WorkStartHour < 0 || c.Schedule.WorkStartHour > 23 {
		return fmt.Errorf("work_start_hour must be 0-23, got %d", c.Schedule.WorkStartHour)
	}
	if c.Schedule.WorkEndHour < 1 || c.Schedule.WorkEndHour > 24 {
		return fmt.Errorf("work_end_hour must be 1-24, got %d", c.Schedule.WorkEndHour)
	}
	if c.Schedule.WorkStartHour >= c.Schedule.WorkEndHour {
		return errors.New("work_start_hour must be before work_end_hour")
	}
	if c.Schedule.MinGapMinutes < 0 {
		return errors.New("min_gap_minutes must be non-negative")
	}
	if c.Schedule.MaxTasksPerDay < 0 {
		return errors.New("max_tasks_per_day must be non-negative")
	}
	for _, wb := range c.Schedule.WeeklyBlackouts {
		if _, err := parseWeekday(wb.Weekday); err != nil {
			return err
		}
		if _, err := parseHHMM(wb.Start); err != nil {
			return fmt.Errorf("weekly blackout start: %w", err)
		}
		if _, err := parseHHMM(wb.End); err != nil {
			return fmt.Errorf("weekly blackout end: %w", err)
		}
	}
	for _, db := range c.Schedule.DateBlackouts {
		if _, err := time.Parse("2006-01-02", db.Date); err != nil {
			return fmt.Errorf("invalid date blackout date %q: %w", db.Date, err)
		}
		if _, err := parseHHMM(db.Start); err != nil {
			return fmt.Errorf("date blackout start: %w", err)
		}
		if _, err := parseHHMM(db.End); err != nil {
			return fmt.Errorf("date blackout end: %w", err)
		}
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	if c.Backend.BaseURL == "" {
		return errors.New("backend base_url must be set")
	}
	if c.LLM.BaseURL == "" {
		return errors.New("llm base_url must be set")
	}
	return nil
}

// SchedulerOptions renders the schedule config's work window as
// scheduler.Options.
func (c *Config) SchedulerOptions() scheduler.Options {
	return scheduler.Options{WorkStartHour: c.Schedule.WorkStartHour, WorkEndHour: c.Schedule.WorkEndHour}
}

// SchedulerConstraints renders the blackouts and anti-bunching settings
// as scheduler.Constraints.
func (c *Config) SchedulerConstraints() (scheduler.Constraints, error) {
	cons := scheduler.Constraints{
		MinGapMinutes:  c.Schedule.MinGapMinutes,
		MaxTasksPerDay: c.Schedule.MaxTasksPerDay,
	}

	for _, wb := range c.Schedule.WeeklyBlackouts {
		weekday, err := parseWeekday(wb.Weekday)
		if err != nil {
			return scheduler.Constraints{}, err
		}
		start, err := parseHHMM(wb.Start)
		if err != nil {
			return scheduler.Constraints{}, err
		}
		end, err := parseHHMM(wb.End)
		if err != nil {
			return scheduler.Constraints{}, err
		}
		cons.WeeklyBlackouts = append(cons.WeeklyBlackouts, scheduler.WeeklyBlackout{
			Weekday: weekday, StartMinute: start, EndMinute: end,
		})
	}

	for _, db := range c.Schedule.DateBlackouts {
		date, err := time.Parse("2006-01-02", db.Date)
		if err != nil {
			return scheduler.Constraints{}, err
		}
		start, err := parseHHMM(db.Start)
		if err != nil {
			return scheduler.Constraints{}, err
		}
		end, err := parseHHMM(db.End)
		if err != nil {
			return scheduler.Constraints{}, err
		}
		cons.DateBlackouts = append(cons.DateBlackouts, scheduler.DateBlackout{
			Date: date, StartMinute: start, EndMinute: end,
		})
	}

	return cons, nil
}

// AllotterOptions renders scheduler options/constraints plus the
// holidays calendar title as allotter.Options.
func (c *Config) AllotterOptions() (allotter.Options, error) {
	cons, err := c.SchedulerConstraints()
	if err != nil {
		return allotter.Options{}, err
	}
	return allotter.Options{
		ScheduleOptions:       c.SchedulerOptions(),
		Constraints:           cons,
		HolidaysCalendarTitle: c.Schedule.HolidaysCalendarTitle,
	}, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(s) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	default:
		return 0, fmt.Errorf("invalid weekday %q", s)
	}
}

func parseHHMM(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("must be in HH:MM format, got %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
