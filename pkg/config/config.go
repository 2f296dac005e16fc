package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable the config layer reads
const EnvPrefix = "IGFOLLOW_"

// MaxPageSize is the largest follower page the web client asks for
const MaxPageSize = 200

// Config holds all configuration options for the follower collector and differ
type Config struct {
	// Follower endpoint settings
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// HTTP transport settings
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Collector behaviour and snapshot output
	Collector CollectorConfig `yaml:"collector" json:"collector"`

	// Request template parsing rules
	Template TemplateConfig `yaml:"template" json:"template"`

	// Differ settings
	Differ DifferConfig `yaml:"differ" json:"differ"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// InstagramConfig holds follower endpoint settings
type InstagramConfig struct {
	// BaseURL overrides the scheme and host taken from the request file
	BaseURL       string `yaml:"base_url" json:"base_url"`
	PageSize      int    `yaml:"page_size" json:"page_size"`
	SearchSurface string `yaml:"search_surface" json:"search_surface"`
}

// HTTPConfig holds HTTP client settings. A zero Timeout means no client timeout.
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// CollectorConfig holds collector pacing and output settings
type CollectorConfig struct {
	MinDelay   time.Duration `yaml:"min_delay" json:"min_delay"`
	MaxDelay   time.Duration `yaml:"max_delay" json:"max_delay"`
	OutputDir  string        `yaml:"output_dir" json:"output_dir"`
	FilePrefix string        `yaml:"file_prefix" json:"file_prefix"`
}

// TemplateConfig holds the rules used to validate a captured request file
type TemplateConfig struct {
	PathPattern     string   `yaml:"path_pattern" json:"path_pattern"`
	Methods         []string `yaml:"methods" json:"methods"`
	RequiredHeaders []string `yaml:"required_headers" json:"required_headers"`
	SkipHeaders     []string `yaml:"skip_headers" json:"skip_headers"`
}

// DifferConfig holds differ settings
type DifferConfig struct {
	// OutputFile, when set, also receives a copy of the printed report
	OutputFile  string `yaml:"output_file" json:"output_file"`
	SnapshotDir string `yaml:"snapshot_dir" json:"snapshot_dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	File   string `yaml:"file" json:"file"`
	Format string `yaml:"format" json:"format"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			BaseURL:       "",
			PageSize:      25,
			SearchSurface: "follow_list_page",
		},
		HTTP: HTTPConfig{
			Timeout: 0,
		},
		Collector: CollectorConfig{
			MinDelay:   4 * time.Second,
			MaxDelay:   12 * time.Second,
			OutputDir:  ".",
			FilePrefix: "followers",
		},
		Template: TemplateConfig{
			PathPattern:     "/api/v1/friendships/",
			Methods:         []string{"GET"},
			RequiredHeaders: []string{"Cookie", "X-IG-WWW-Claim"},
			SkipHeaders: []string{
				"host", "content-length", "connection", "pragma",
				"cache-control", "accept-encoding", "priority",
			},
		},
		Differ: DifferConfig{
			OutputFile:  "",
			SnapshotDir: ".",
		},
		Logging: LoggingConfig{
			Level:  "info",
			File:   "",
			Format: "text",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if baseURL := os.Getenv(EnvPrefix + "BASE_URL"); baseURL != "" {
		c.Instagram.BaseURL = baseURL
	}
	if pageSize := os.Getenv(EnvPrefix + "PAGE_SIZE"); pageSize != "" {
		val, err := strconv.Atoi(pageSize)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sPAGE_SIZE: %w", EnvPrefix, err))
		} else {
			c.Instagram.PageSize = val
		}
	}

	for name, target := range map[string]*time.Duration{
		"HTTP_TIMEOUT": &c.HTTP.Timeout,
		"MIN_DELAY":    &c.Collector.MinDelay,
		"MAX_DELAY":    &c.Collector.MaxDelay,
	} {
		raw := os.Getenv(EnvPrefix + name)
		if raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			continue
		}
		*target = d
	}

	if outputDir := os.Getenv(EnvPrefix + "OUTPUT_DIR"); outputDir != "" {
		c.Collector.OutputDir = outputDir
	}
	if snapshotDir := os.Getenv(EnvPrefix + "SNAPSHOT_DIR"); snapshotDir != "" {
		c.Differ.SnapshotDir = snapshotDir
	}
	if logLevel := os.Getenv(EnvPrefix + "LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv(EnvPrefix + "LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// An empty path means "look in the usual places"
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".igfollow.yaml",
		".igfollow.yml",
		filepath.Join(home, ".config", "igfollow", "config.yaml"),
		filepath.Join(home, ".config", "igfollow", "config.yml"),
		filepath.Join(home, ".igfollow.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Instagram.BaseURL != "" {
		u, err := url.Parse(c.Instagram.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("base URL %q must be an absolute URL", c.Instagram.BaseURL))
		}
	}
	if c.Instagram.PageSize <= 0 || c.Instagram.PageSize > MaxPageSize {
		errs = append(errs, fmt.Errorf("page size must be between 1 and %d, got %d", MaxPageSize, c.Instagram.PageSize))
	}
	if c.Instagram.SearchSurface == "" {
		errs = append(errs, errors.New("search surface is required"))
	}

	if c.HTTP.Timeout < 0 {
		errs = append(errs, errors.New("HTTP timeout cannot be negative"))
	}

	if c.Collector.MinDelay < 0 || c.Collector.MaxDelay < 0 {
		errs = append(errs, errors.New("delays cannot be negative"))
	}
	if c.Collector.MaxDelay < c.Collector.MinDelay {
		errs = append(errs, errors.New("max delay must not be less than min delay"))
	}
	if c.Collector.OutputDir == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Collector.FilePrefix == "" || strings.ContainsAny(c.Collector.FilePrefix, `/\`) {
		errs = append(errs, errors.New("file prefix must be a non-empty file name"))
	}

	if c.Template.PathPattern == "" {
		errs = append(errs, errors.New("template path pattern is required"))
	}
	if len(c.Template.Methods) == 0 {
		errs = append(errs, errors.New("at least one template method is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Errorf("invalid log format %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.Instagram.BaseURL = baseURL
	}
	if pageSize, ok := flags["page-size"].(int); ok && pageSize > 0 {
		c.Instagram.PageSize = pageSize
	}
	if minDelay, ok := flags["min-delay"].(time.Duration); ok {
		c.Collector.MinDelay = minDelay
	}
	if maxDelay, ok := flags["max-delay"].(time.Duration); ok {
		c.Collector.MaxDelay = maxDelay
	}
	if outputDir, ok := flags["output-dir"].(string); ok && outputDir != "" {
		c.Collector.OutputDir = outputDir
	}
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Differ.OutputFile = output
	}
	if dir, ok := flags["dir"].(string); ok && dir != "" {
		c.Differ.SnapshotDir = dir
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Missing .env files are fine
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igfollow.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
