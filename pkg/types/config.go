package types

import (
	"fmt"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds each individual request; a run has no overall deadline.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "recipe-curator/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SourceConfig holds settings for the Recipe Source client.
type SourceConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the Spoonacular-compatible API root.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey authenticates every call. Usually supplied through .secrets/
	// or RECIPE_CURATOR_SOURCE_API_KEY rather than the config file.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
}

// CampaignConfig configures the multi-day import campaign.
type CampaignConfig struct {
	// StartDate is the first campaign day (YYYY-MM-DD).
	StartDate  string `json:"start_date" yaml:"start_date" mapstructure:"start_date"`
	TotalDays  int    `json:"total_days" yaml:"total_days" mapstructure:"total_days"`
	DailyQuota int    `json:"daily_quota" yaml:"daily_quota" mapstructure:"daily_quota"`
}

// Campaign parses the config into a Campaign value.
func (c CampaignConfig) Campaign() (Campaign, error) {
	start, err := time.Parse(DateLayout, c.StartDate)
	if err != nil {
		return Campaign{}, fmt.Errorf("campaign start_date %q: %w", c.StartDate, err)
	}
	return Campaign{StartDate: start, TotalDays: c.TotalDays, DailyQuota: c.DailyQuota}, nil
}

// ImportConfig holds orchestrator settings.
type ImportConfig struct {
	// MinQualityScore is the acceptance threshold on QualityScore.Total.
	MinQualityScore float64 `json:"min_quality_score" yaml:"min_quality_score" mapstructure:"min_quality_score"`

	// MaxRetries bounds retries of a single failed source call.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RetryBaseDelay is the first backoff step; attempt n waits n×base.
	RetryBaseDelay time.Duration `json:"retry_base_delay" yaml:"retry_base_delay" mapstructure:"retry_base_delay"`

	// RateLimitDelay is the minimum spacing between source calls.
	RateLimitDelay time.Duration `json:"rate_limit_delay" yaml:"rate_limit_delay" mapstructure:"rate_limit_delay"`

	// PageSize is the number of hits requested per search page.
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`
}

// Library drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// LibraryConfig selects the Recipe Library backend.
type LibraryConfig struct {
	// Driver is "sqlite3" or "postgres".
	Driver string `json:"driver" yaml:"driver" mapstructure:"driver"`

	// DSN is a file path for sqlite3 or a connection string for postgres.
	DSN string `json:"dsn" yaml:"dsn" mapstructure:"dsn"`

	// ExportDir receives library export.yaml / export.json files.
	ExportDir string `json:"export_dir" yaml:"export_dir" mapstructure:"export_dir"`
}

// ProgressConfig selects where cumulative campaign progress is kept.
type ProgressConfig struct {
	// RedisAddr enables the Redis progress store; empty counts from the library.
	RedisAddr     string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty" mapstructure:"redis_password"`
	RedisDB       int    `json:"redis_db" yaml:"redis_db" mapstructure:"redis_db"`
}

// ReportsConfig locates persisted daily and weekly reports.
type ReportsConfig struct {
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings for the recipe-curator pipeline.
type Config struct {
	Campaign   CampaignConfig `json:"campaign" yaml:"campaign" mapstructure:"campaign"`
	Import     ImportConfig   `json:"import" yaml:"import" mapstructure:"import"`
	Source     SourceConfig   `json:"source" yaml:"source" mapstructure:"source"`
	Library    LibraryConfig  `json:"library" yaml:"library" mapstructure:"library"`
	Progress   ProgressConfig `json:"progress" yaml:"progress" mapstructure:"progress"`
	Reports    ReportsConfig  `json:"reports" yaml:"reports" mapstructure:"reports"`
	Logging    LoggingConfig  `json:"logging" yaml:"logging" mapstructure:"logging"`
	Guidelines Guidelines     `json:"guidelines" yaml:"guidelines" mapstructure:"guidelines"`
}

// Validate rejects configurations the pipeline cannot run with.
func (c Config) Validate() error {
	if c.Campaign.TotalDays <= 0 {
		return fmt.Errorf("campaign.total_days must be positive, got %d", c.Campaign.TotalDays)
	}
	if c.Campaign.DailyQuota <= 0 {
		return fmt.Errorf("campaign.daily_quota must be positive, got %d", c.Campaign.DailyQuota)
	}
	if c.Import.MinQualityScore < 0 || c.Import.MinQualityScore > 100 {
		return fmt.Errorf("import.min_quality_score must be within [0,100], got %.1f", c.Import.MinQualityScore)
	}
	if c.Import.MaxRetries < 0 {
		return fmt.Errorf("import.max_retries must not be negative, got %d", c.Import.MaxRetries)
	}
	switch c.Library.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("library.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Library.Driver)
	}
	return c.Guidelines.Validate()
}
