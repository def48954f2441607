package core

import (
	"fmt"
	"strings"
	"time"
)

type TrackerConfig struct {
	BaseURL  string `koanf:"base_url" mapstructure:"base_url"`
	Email    string `koanf:"email" mapstructure:"email"`
	Password string `koanf:"password" mapstructure:"password"`
}

type DestinationConfig struct {
	BaseURL     string            `koanf:"base_url" mapstructure:"base_url"`
	Token       string            `koanf:"token" mapstructure:"token"`
	Version     string            `koanf:"version" mapstructure:"version"`
	Collections map[string]string `koanf:"collections" mapstructure:"collections"`
}

type SyncConfig struct {
	LookbackDays  int    `koanf:"lookback_days" mapstructure:"lookback_days"`
	Timezone      string `koanf:"timezone" mapstructure:"timezone"`
	SkipZeroSleep bool   `koanf:"skip_zero_sleep" mapstructure:"skip_zero_sleep"`
	SkipZeroSteps bool   `koanf:"skip_zero_steps" mapstructure:"skip_zero_steps"`
	CallDelayMS   int    `koanf:"call_delay_ms" mapstructure:"call_delay_ms"`
	PageSize      int    `koanf:"page_size" mapstructure:"page_size"`
	CacheTTLMS    int    `koanf:"cache_ttl_ms" mapstructure:"cache_ttl_ms"`
}

type StorageConfig struct {
	Driver string `koanf:"driver" mapstructure:"driver"`
	DSN    string `koanf:"dsn" mapstructure:"dsn"`
}

type Config struct {
	ServiceName string            `koanf:"service_name" mapstructure:"service_name"`
	Tracker     TrackerConfig     `koanf:"tracker" mapstructure:"tracker"`
	Destination DestinationConfig `koanf:"destination" mapstructure:"destination"`
	Sync        SyncConfig        `koanf:"sync" mapstructure:"sync"`
	Storage     StorageConfig     `koanf:"storage" mapstructure:"storage"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "daypulse",
		Tracker: TrackerConfig{
			BaseURL: "https://connectapi.garmin.com",
		},
		Destination: DestinationConfig{
			BaseURL:     "https://api.notion.com/v1",
			Version:     "2022-06-28",
			Collections: map[string]string{},
		},
		Sync: SyncConfig{
			LookbackDays:  30,
			Timezone:      "Asia/Seoul",
			SkipZeroSleep: true,
			SkipZeroSteps: true,
			CallDelayMS:   300,
			PageSize:      100,
		},
		Storage: StorageConfig{
			Driver: "sqlite3",
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Sync.LookbackDays < 1 {
		return fmt.Errorf("core: sync.lookback_days must be at least 1")
	}
	if c.Sync.PageSize < 1 {
		return fmt.Errorf("core: sync.page_size must be at least 1")
	}
	if c.Sync.CallDelayMS < 0 {
		return fmt.Errorf("core: sync.call_delay_ms must not be negative")
	}
	if strings.TrimSpace(c.Sync.Timezone) == "" {
		return fmt.Errorf("core: sync.timezone is required")
	}
	if _, err := time.LoadLocation(strings.TrimSpace(c.Sync.Timezone)); err != nil {
		return fmt.Errorf("core: sync.timezone is not a valid IANA zone: %w", err)
	}
	return nil
}

// ValidateCredentials guards the settings a live run cannot do without. It is
// split from Validate so config loading stays testable without secrets.
func (c Config) ValidateCredentials() error {
	if strings.TrimSpace(c.Tracker.Email) == "" || strings.TrimSpace(c.Tracker.Password) == "" {
		return fmt.Errorf("core: tracker.email and tracker.password are required")
	}
	if strings.TrimSpace(c.Destination.Token) == "" {
		return fmt.Errorf("core: destination.token is required")
	}
	if len(c.Destination.Collections) == 0 {
		return fmt.Errorf("core: destination.collections must name at least one collection")
	}
	return nil
}

// Collection resolves the destination collection id for a metric.
func (c Config) Collection(metric MetricID) (string, error) {
	id := strings.TrimSpace(c.Destination.Collections[string(metric)])
	if id == "" {
		return "", fmt.Errorf("core: no destination collection configured for metric %q", metric)
	}
	return id, nil
}

func (c Config) CallDelay() time.Duration {
	if c.Sync.CallDelayMS <= 0 {
		return 0
	}
	return time.Duration(c.Sync.CallDelayMS) * time.Millisecond
}

func (c Config) CacheTTL() time.Duration {
	if c.Sync.CacheTTLMS <= 0 {
		return 0
	}
	return time.Duration(c.Sync.CacheTTLMS) * time.Millisecond
}

func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(strings.TrimSpace(c.Sync.Timezone))
}

func (c Config) Policy(zone *time.Location) NormalizePolicy {
	return NormalizePolicy{
		SkipZeroSleep: c.Sync.SkipZeroSleep,
		SkipZeroSteps: c.Sync.SkipZeroSteps,
		Zone:          zone,
	}
}
