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

// Config holds all configuration options for the catalog scraper
type Config struct {
	// Target site and its markup
	Site SiteConfig `yaml:"site" json:"site"`

	// HTTP behaviour
	Fetcher FetcherConfig `yaml:"fetcher" json:"fetcher"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Run limits
	Scrape ScrapeConfig `yaml:"scrape" json:"scrape"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SiteConfig describes the target catalog
type SiteConfig struct {
	BaseURL     string          `yaml:"base_url" json:"base_url"`
	CatalogPath string          `yaml:"catalog_path" json:"catalog_path"`
	Selectors   SelectorsConfig `yaml:"selectors" json:"selectors"`
}

// SelectorsConfig holds the CSS selectors matching the site's markup
type SelectorsConfig struct {
	Grid        string `yaml:"grid" json:"grid"`
	Caption     string `yaml:"caption" json:"caption"`
	Thumbnail   string `yaml:"thumbnail" json:"thumbnail"`
	Breadcrumb  string `yaml:"breadcrumb" json:"breadcrumb"`
	ActiveCrumb string `yaml:"active_crumb" json:"active_crumb"`
	Title       string `yaml:"title" json:"title"`
	Attributes  string `yaml:"attributes" json:"attributes"`
	DetailImage string `yaml:"detail_image" json:"detail_image"`
}

// FetcherConfig holds HTTP client configuration
type FetcherConfig struct {
	UserAgent     string        `yaml:"user_agent" json:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	MaxAttempts   int           `yaml:"max_attempts" json:"max_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay" json:"retry_delay"`
	RequestDelay  time.Duration `yaml:"request_delay" json:"request_delay"`
	RespectRobots bool          `yaml:"respect_robots" json:"respect_robots"`
}

// OutputConfig holds output directory and workbook configuration
type OutputConfig struct {
	BaseDirectory      string `yaml:"base_directory" json:"base_directory"`
	WorkbookName       string `yaml:"workbook_name" json:"workbook_name"`
	SkipExistingImages bool   `yaml:"skip_existing_images" json:"skip_existing_images"`
	EmbedImages        bool   `yaml:"embed_images" json:"embed_images"`
	ImageMaxHeight     int    `yaml:"image_max_height" json:"image_max_height"`
}

// ScrapeConfig limits a run
type ScrapeConfig struct {
	// MaxCategories stops the run after that many categories were processed; 0 means all
	MaxCategories int `yaml:"max_categories" json:"max_categories"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	// Quiet keeps log lines off the console; the log file still gets them
	Quiet      bool   `yaml:"quiet" json:"quiet"`
	File       string `yaml:"file" json:"file"`
	MaxSize    int    `yaml:"max_size" json:"max_size"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// DefaultConfig returns a Config instance matching the live site
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:     "https://www.tunisport.es",
			CatalogPath: "/catalog/chip-tuning",
			Selectors: SelectorsConfig{
				Grid:        "div.col-md-10 div.row a",
				Caption:     "p",
				Thumbnail:   "div[style]",
				Breadcrumb:  "a.breadcrump",
				ActiveCrumb: "span.breadcrump__active",
				Title:       "h1",
				Attributes:  "table tr",
				DetailImage: "img.product-image, div.product img",
			},
		},
		Fetcher: FetcherConfig{
			UserAgent:     "Mozilla/5.0 (Windows NT 6.1; rv:88.0) Gecko/20100101 Firefox/88.0",
			Timeout:       5 * time.Second,
			MaxAttempts:   3,
			RetryDelay:    2 * time.Second,
			RequestDelay:  2 * time.Second,
			RespectRobots: true,
		},
		Output: OutputConfig{
			BaseDirectory:      "./output",
			WorkbookName:       "output.xlsx",
			SkipExistingImages: true,
			EmbedImages:        true,
			ImageMaxHeight:     120,
		},
		Scrape: ScrapeConfig{
			MaxCategories: 0,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       filepath.Join("logs", "scraper.log"),
			MaxSize:    2,
			MaxBackups: 2,
			MaxAge:     0,
			Compress:   false,
		},
	}
}

// CatalogURL returns the absolute URL of the category index page
func (c *Config) CatalogURL() string {
	return strings.TrimRight(c.Site.BaseURL, "/") + c.Site.CatalogPath
}

// WorkbookPath returns where the output workbook lives
func (c *Config) WorkbookPath() string {
	return filepath.Join(c.Output.BaseDirectory, c.Output.WorkbookName)
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if baseURL := os.Getenv("TUNISCRAPER_BASE_URL"); baseURL != "" {
		c.Site.BaseURL = baseURL
	}
	if catalog := os.Getenv("TUNISCRAPER_CATALOG_PATH"); catalog != "" {
		c.Site.CatalogPath = catalog
	}
	if userAgent := os.Getenv("TUNISCRAPER_USER_AGENT"); userAgent != "" {
		c.Fetcher.UserAgent = userAgent
	}
	if delay := os.Getenv("TUNISCRAPER_REQUEST_DELAY"); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			return fmt.Errorf("invalid TUNISCRAPER_REQUEST_DELAY: %w", err)
		}
		c.Fetcher.RequestDelay = d
	}
	if robots := os.Getenv("TUNISCRAPER_RESPECT_ROBOTS"); robots != "" {
		c.Fetcher.RespectRobots = strings.ToLower(robots) == "true"
	}
	if outputDir := os.Getenv("TUNISCRAPER_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if maxCat := os.Getenv("TUNISCRAPER_MAX_CATEGORIES"); maxCat != "" {
		val, err := strconv.Atoi(maxCat)
		if err != nil {
			return fmt.Errorf("invalid TUNISCRAPER_MAX_CATEGORIES: %w", err)
		}
		c.Scrape.MaxCategories = val
	}
	if logLevel := os.Getenv("TUNISCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := os.LookupEnv("TUNISCRAPER_LOG_FILE"); ok {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".tuniscraper.yaml",
		".tuniscraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "tuniscraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "tuniscraper", "config.yml"),
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

	if u, err := url.Parse(c.Site.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("site base URL %q is not an absolute URL", c.Site.BaseURL))
	}
	if !strings.HasPrefix(c.Site.CatalogPath, "/") {
		errs = append(errs, errors.New("catalog path must start with /"))
	}
	if c.Site.Selectors.Grid == "" {
		errs = append(errs, errors.New("grid selector is required"))
	}

	if c.Fetcher.Timeout <= 0 {
		errs = append(errs, errors.New("fetch timeout must be positive"))
	}
	if c.Fetcher.MaxAttempts <= 0 {
		errs = append(errs, errors.New("max attempts must be positive"))
	}
	if c.Fetcher.RetryDelay < 0 || c.Fetcher.RequestDelay < 0 {
		errs = append(errs, errors.New("delays cannot be negative"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if !strings.EqualFold(filepath.Ext(c.Output.WorkbookName), ".xlsx") {
		errs = append(errs, errors.New("workbook name must end in .xlsx"))
	}
	if c.Output.ImageMaxHeight < 0 {
		errs = append(errs, errors.New("image max height cannot be negative"))
	}

	if c.Scrape.MaxCategories < 0 {
		errs = append(errs, errors.New("max categories cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only flags the user set are expected in the map, so a zero max-categories
// lifts a cap from the config file.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if maxCat, ok := flags["max-categories"].(int); ok && maxCat >= 0 {
		c.Scrape.MaxCategories = maxCat
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".tuniscraper.env"))

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
