// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github-test-metrics/internal/dataset"
	"github-test-metrics/internal/model"
	"github-test-metrics/internal/resolution"
)

// DefaultProjects are the repositories studied when PROJECTS is not set.
var DefaultProjects = []string{
	"thingsboard/thingsboard",
	"apache/dolphinscheduler",
	"wireapp/wire-server",
	"keptn/keptn",
	"open-metadata/OpenMetadata",
	"dapr/dapr",
	"jaegertracing/jaeger",
	"appwrite/appwrite",
	"camunda/zeebe",
	"gravitee-io/gravitee-api-management",
}

// Config holds all configuration for the application.
type Config struct {
	LogLevel        string   `mapstructure:"LOG_LEVEL"`
	GithubToken     string   `mapstructure:"GITHUB_TOKEN"`
	GithubAPIURL    string   `mapstructure:"GITHUB_API_URL"`
	Projects        []string `mapstructure:"PROJECTS"`
	MaxPages        int      `mapstructure:"MAX_PAGES"`
	MaxTreeRequests int      `mapstructure:"MAX_TREE_REQUESTS"`
	Concurrency     int      `mapstructure:"CONCURRENCY"`
	NegativePolicy  string   `mapstructure:"NEGATIVE_DURATION_POLICY"`
	DatasetPath     string   `mapstructure:"DATASET_PATH"`
	PlotPath        string   `mapstructure:"PLOT_PATH"`
	DBURL           string   `mapstructure:"DB_URL"`
	HTTPAddr        string   `mapstructure:"HTTP_ADDR"`

	Policy     resolution.NegativePolicy `mapstructure:"-"`
	ProjectIDs []model.ProjectID         `mapstructure:"-"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"log-level":         "LOG_LEVEL",
	"github-api-url":    "GITHUB_API_URL",
	"projects":          "PROJECTS",
	"max-pages":         "MAX_PAGES",
	"max-tree-requests": "MAX_TREE_REQUESTS",
	"concurrency":       "CONCURRENCY",
	"negative-policy":   "NEGATIVE_DURATION_POLICY",
	"dataset":           "DATASET_PATH",
	"plot":              "PLOT_PATH",
	"db-url":            "DB_URL",
	"addr":              "HTTP_ADDR",
}

// LoadConfig reads configuration from defaults, an optional .env file, the
// environment and finally any flags in flags that were set. The .env file is
// looked up in paths, or in the working directory when none are given.
func LoadConfig(flags *pflag.FlagSet, paths ...string) (*Config, error) {
	v := viper.New()

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("GITHUB_TOKEN", "")
	v.SetDefault("GITHUB_API_URL", "")
	v.SetDefault("PROJECTS", DefaultProjects)
	v.SetDefault("MAX_PAGES", 10)
	v.SetDefault("MAX_TREE_REQUESTS", 200)
	v.SetDefault("CONCURRENCY", 1)
	v.SetDefault("NEGATIVE_DURATION_POLICY", string(resolution.PolicyKeep))
	v.SetDefault("DATASET_PATH", "rq2_dataset.csv")
	v.SetDefault("PLOT_PATH", "unit_ratio_vs_bug_resolution.png")
	v.SetDefault("DB_URL", "")
	v.SetDefault("HTTP_ADDR", ":8080")

	v.SetConfigName(".env")
	v.SetConfigType("env")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the loaded values and fills the parsed fields.
func (c *Config) Validate() error {
	policy, err := resolution.ParsePolicy(c.NegativePolicy)
	if err != nil {
		return err
	}
	c.Policy = policy

	if c.MaxPages < 1 {
		return errors.New("MAX_PAGES must be at least 1")
	}
	if c.MaxTreeRequests < 1 {
		return errors.New("MAX_TREE_REQUESTS must be at least 1")
	}
	if c.Concurrency < 1 {
		return errors.New("CONCURRENCY must be at least 1")
	}

	var projects []string
	for _, p := range c.Projects {
		if p = strings.TrimSpace(p); p != "" {
			projects = append(projects, p)
		}
	}
	if len(projects) == 0 {
		return errors.New("PROJECTS must contain at least one repository")
	}
	ids, err := dataset.ParseProjects(projects)
	if err != nil {
		return err
	}
	c.Projects = projects
	c.ProjectIDs = ids
	return nil
}
