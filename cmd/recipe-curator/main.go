// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the recipe-curator CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/recipe-curator/internal/logging"
	"github.com/pdiddy/recipe-curator/internal/secrets"
	"github.com/pdiddy/recipe-curator/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const defaultSQLiteDSN = "data/recipes.db"

var (
	// cfg is the decoded configuration, valid after PersistentPreRunE.
	cfg types.Config

	logger = zap.NewNop()

	// loadedSecrets holds credentials loaded from .secrets/ at startup.
	loadedSecrets map[string]string
)

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the recipe-curator CLI.
var rootCmd = &cobra.Command{
	Use:   "recipe-curator",
	Short: "Import and curate gestational-diabetes-friendly recipes",
	Long: `recipe-curator runs a multi-week import campaign against a recipe search
provider. Each day it plans filter strategies, scores candidates for GD
suitability and practicality, rejects duplicates of the library, assigns a
meal category, stores accepted recipes, and writes a daily report.

Subcommands: import, plan, report, library, version.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./recipe-curator.yaml or ~/.config/recipe-curator/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: console or json")
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("campaign.total_days", 20)
	v.SetDefault("campaign.daily_quota", 100)
	v.SetDefault("import.min_quality_score", 50)
	v.SetDefault("import.max_retries", 3)
	v.SetDefault("import.retry_base_delay", "2s")
	v.SetDefault("import.rate_limit_delay", "1s")
	v.SetDefault("import.page_size", 10)
	v.SetDefault("source.base_url", "https://api.spoonacular.com")
	v.SetDefault("source.timeout", "30s")
	v.SetDefault("source.user_agent", "recipe-curator/"+version)
	v.SetDefault("library.driver", types.DriverSQLite)
	v.SetDefault("library.export_dir", "data")
	v.SetDefault("reports.dir", "reports")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	// Registered so AutomaticEnv can see them.
	v.SetDefault("campaign.start_date", "")
	v.SetDefault("source.api_key", "")
	v.SetDefault("library.dsn", "")
	v.SetDefault("progress.redis_addr", "")
	v.SetDefault("progress.redis_password", "")
	v.SetDefault("progress.redis_db", 0)
}

func initConfig() {
	// .env values feed the RECIPE_CURATOR_* environment below.
	if err := secrets.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("recipe-curator")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "recipe-curator"))
		}
	}

	viper.SetEnvPrefix("RECIPE_CURATOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// decodeConfig overlays v's settings on the built-in defaults.
func decodeConfig(v *viper.Viper) (types.Config, error) {
	c := types.Config{Guidelines: types.DefaultGuidelines()}
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	return c, nil
}

func setup() error {
	c, err := decodeConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	l, err := logging.New(c.Logging.Level, c.Logging.Format)
	if err != nil {
		return err
	}
	logger = l

	s, err := secrets.Load(".secrets/", logger)
	if err != nil {
		return err
	}
	loadedSecrets = s
	if len(s) > 0 {
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		logger.Debug("loaded secrets", zap.Strings("keys", keys))
	}

	c.Source.APIKey = secretDefault(secrets.SourceAPIKey, c.Source.APIKey)
	c.Progress.RedisPassword = secretDefault(secrets.RedisPassword, c.Progress.RedisPassword)
	if c.Library.DSN == "" {
		if c.Library.Driver == types.DriverPostgres {
			c.Library.DSN = secretDefault(secrets.LibraryDSN, "")
		} else {
			c.Library.DSN = defaultSQLiteDSN
		}
	}
	if c.Library.DSN == "" {
		return fmt.Errorf("invalid config: library.dsn is required for driver %s", c.Library.Driver)
	}
	cfg = c
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
