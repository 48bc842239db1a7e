// =============================================================================
// csv2wiki - Configuration Module
// =============================================================================
//
// This module is responsible for loading the run configuration. A single YAML
// file describes where the rows come from, which wiki to write to, and how
// pages are named. Credentials may also be supplied through the environment
// (optionally loaded from a .env file) so they do not have to live in YAML.
//
// PRECEDENCE (highest first):
//   1. Positional username/password on the command line
//   2. Environment variables (CSV2WIKI_USERNAME, CSV2WIKI_PASSWORD, CSV2WIKI_SITE)
//   3. Values in the YAML file
//   4. Built-in defaults
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvUsername = "CSV2WIKI_USERNAME"
	EnvPassword = "CSV2WIKI_PASSWORD"
	EnvSite     = "CSV2WIKI_SITE"
)

// Defaults used when the configuration leaves a field empty.
const (
	DefaultSite         = "localhost/mediawiki"
	DefaultScheme       = "http"
	DefaultPath         = "/"
	DefaultUserAgent    = "csv2wiki/1.0"
	DefaultTimeout      = 30 * time.Second
	DefaultTitlePrefix  = "Proposal"
	DefaultTOCPage      = "List of Proposals"
	DefaultSummary      = "Imported by csv2wiki"
	DefaultDeleteSearch = "Proposal "
	DefaultDeleteReason = "Removed by csv2wiki"
)

// Source formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the complete run configuration.
type Config struct {
	// Source describes the input file.
	Source SourceConfig `yaml:"source"`

	// Wiki describes the MediaWiki instance and the account used.
	Wiki WikiConfig `yaml:"wiki"`

	// Pages controls page naming and edit metadata.
	Pages PagesConfig `yaml:"pages"`

	// Transformations are optional per-column value rewrites applied
	// before content is sent to the wiki.
	Transformations []TransformationRule `yaml:"transformations"`

	// Validation controls how findings on the table are treated.
	Validation ValidationConfig `yaml:"validation"`

	// Logging controls the slog handler.
	Logging LoggingConfig `yaml:"logging"`

	// ReportDir, when set, receives a plain-text summary of every run.
	ReportDir string `yaml:"report_dir"`
}

// SourceConfig describes the input file.
type SourceConfig struct {
	// File is the path to the CSV or XLSX file. Relative paths are resolved
	// against the directory of the configuration file.
	File string `yaml:"file"`

	// Format is "csv" or "xlsx". When empty it is inferred from the
	// file extension.
	Format string `yaml:"format"`

	// Delimiter is the CSV field separator.
	// Accepted values: ",", "|", ";", "\t", "tab", "pipe", "semicolon".
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the CSV file, as a WHATWG label
	// (e.g. "utf-8", "windows-1252", "iso-8859-1").
	// Default: "utf-8"
	Encoding string `yaml:"encoding"`

	// Sheet is the worksheet to read from an XLSX source.
	// Default: the first sheet.
	Sheet string `yaml:"sheet"`
}

// WikiConfig describes the MediaWiki instance.
type WikiConfig struct {
	// Site is host plus base path, without scheme (e.g. "localhost/mediawiki").
	Site string `yaml:"site"`

	// Scheme is "http" or "https".
	Scheme string `yaml:"scheme"`

	// Path is the script path below Site where api.php lives.
	Path string `yaml:"path"`

	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// UserAgent is sent with every API request.
	UserAgent string `yaml:"user_agent"`

	// Timeout bounds every HTTP round trip.
	Timeout time.Duration `yaml:"timeout"`
}

// PagesConfig controls how pages are named and annotated.
type PagesConfig struct {
	// TitlePrefix is the text before "_<n>: " in every page title.
	TitlePrefix string `yaml:"title_prefix"`

	// TOCPage is the title of the table-of-contents page.
	TOCPage string `yaml:"toc_page"`

	// Summary is the edit summary for every page write.
	Summary string `yaml:"summary"`

	// DeleteSearch is the default search string for the delete workflow.
	DeleteSearch string `yaml:"delete_search"`

	// DeleteReason is logged by the wiki for every deletion.
	DeleteReason string `yaml:"delete_reason"`
}

// TransformationRule rewrites every value of one column.
type TransformationRule struct {
	// Column is the header of the column to transform.
	Column string `yaml:"column"`

	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions"`
}

// TransformationAction defines a single transformation action.
type TransformationAction struct {
	// Type is one of: trim, uppercase, lowercase, prepend_string,
	// append_string, replace, regex_replace, lookup.
	Type string `yaml:"type"`

	// Value is the string to add (prepend/append) or the replacement
	// (replace/regex_replace).
	Value string `yaml:"value"`

	// Find is the substring or pattern for replace and regex_replace.
	Find string `yaml:"find,omitempty"`

	// LookupTable maps input values to output values for "lookup".
	// Values without an entry are left unchanged.
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// ValidationConfig holds validation settings.
type ValidationConfig struct {
	// WarningsAsErrors stops the run on warnings such as duplicate titles
	// or an empty first cell.
	// Default: false
	WarningsAsErrors bool `yaml:"warnings_as_errors"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied and no source
// file. The delete workflow uses it when no configuration file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads a YAML configuration file and applies defaults.
// Validation that depends on the workflow (e.g. a source file being
// required for create) is done by Validate.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Source.File != "" && !filepath.IsAbs(cfg.Source.File) {
		cfg.Source.File = filepath.Join(filepath.Dir(configPath), cfg.Source.File)
	}
	if cfg.ReportDir != "" && !filepath.IsAbs(cfg.ReportDir) {
		cfg.ReportDir = filepath.Join(filepath.Dir(configPath), cfg.ReportDir)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment. A missing file is not an error. Variables already set in the
// environment win over the file.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides wiki settings with CSV2WIKI_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvUsername); v != "" {
		c.Wiki.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		c.Wiki.Password = v
	}
	if v := os.Getenv(EnvSite); v != "" {
		c.Wiki.Site = v
	}
}

// SetCredentials overrides the configured account. Empty values are ignored.
func (c *Config) SetCredentials(username, password string) {
	if username != "" {
		c.Wiki.Username = username
	}
	if password != "" {
		c.Wiki.Password = password
	}
}

// SourceFormat returns the effective source format.
func (c *Config) SourceFormat() string {
	if c.Source.Format != "" {
		return strings.ToLower(c.Source.Format)
	}
	switch strings.ToLower(filepath.Ext(c.Source.File)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// applyDefaults sets default values for any field left empty.
func applyDefaults(cfg *Config) {
	// Source defaults.
	if cfg.Source.Delimiter == "" {
		cfg.Source.Delimiter = ","
	}
	if cfg.Source.Encoding == "" {
		cfg.Source.Encoding = "utf-8"
	}

	// Wiki defaults.
	if cfg.Wiki.Site == "" {
		cfg.Wiki.Site = DefaultSite
	}
	if cfg.Wiki.Scheme == "" {
		cfg.Wiki.Scheme = DefaultScheme
	}
	if cfg.Wiki.Path == "" {
		cfg.Wiki.Path = DefaultPath
	}
	if cfg.Wiki.UserAgent == "" {
		cfg.Wiki.UserAgent = DefaultUserAgent
	}
	if cfg.Wiki.Timeout == 0 {
		cfg.Wiki.Timeout = DefaultTimeout
	}

	// Page defaults.
	if cfg.Pages.TitlePrefix == "" {
		cfg.Pages.TitlePrefix = DefaultTitlePrefix
	}
	if cfg.Pages.TOCPage == "" {
		cfg.Pages.TOCPage = DefaultTOCPage
	}
	if cfg.Pages.Summary == "" {
		cfg.Pages.Summary = DefaultSummary
	}
	if cfg.Pages.DeleteSearch == "" {
		cfg.Pages.DeleteSearch = DefaultDeleteSearch
	}
	if cfg.Pages.DeleteReason == "" {
		cfg.Pages.DeleteReason = DefaultDeleteReason
	}

	// Logging defaults.
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidateForCreate checks everything the create workflow needs.
// Credentials are not required when dryRun is set.
func (c *Config) ValidateForCreate(dryRun bool) error {
	if c.Source.File == "" {
		return errors.New("source.file is required")
	}
	if _, err := os.Stat(c.Source.File); err != nil {
		return fmt.Errorf("source file %s: %w", c.Source.File, err)
	}
	switch c.SourceFormat() {
	case FormatCSV, FormatXLSX:
	default:
		return fmt.Errorf("unsupported source format %q", c.Source.Format)
	}
	for i, rule := range c.Transformations {
		if rule.Column == "" {
			return fmt.Errorf("transformations[%d]: column is required", i)
		}
	}
	if err := c.validateWiki(); err != nil {
		return err
	}
	if dryRun {
		return nil
	}
	return c.validateCredentials()
}

// ValidateForDelete checks everything the delete workflow needs.
func (c *Config) ValidateForDelete() error {
	if err := c.validateWiki(); err != nil {
		return err
	}
	return c.validateCredentials()
}

func (c *Config) validateWiki() error {
	switch c.Wiki.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("wiki.scheme must be http or https, got %q", c.Wiki.Scheme)
	}
	if c.Wiki.Timeout < 0 {
		return fmt.Errorf("wiki.timeout must not be negative")
	}
	return nil
}

func (c *Config) validateCredentials() error {
	if c.Wiki.Username == "" || c.Wiki.Password == "" {
		return fmt.Errorf("wiki username and password are required (config, %s/%s, or positional arguments)", EnvUsername, EnvPassword)
	}
	return nil
}
