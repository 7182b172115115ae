// Package config loads fotosync settings from defaults, an optional YAML
// file, a .env file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/AnyUserName/fotosync/internal/encoder"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingCredentials is returned by Validate when the selected remote
// store has no usable credentials. It is the only fatal configuration error.
var ErrMissingCredentials = errors.New("missing remote store credentials")

// Store backends.
const (
	StoreGitHub = "github"
	StoreS3     = "s3"
)

// Slot binds one photo position of a form submission to its local
// subfolder and its two spreadsheet columns.
type Slot struct {
	Name              string `yaml:"name"`
	Folder            string `yaml:"folder"`
	ReferenceColumn   string `yaml:"reference_column"`
	DescriptionColumn string `yaml:"description_column"`
}

// GitHubConfig addresses a repository used through the contents API.
type GitHubConfig struct {
	Token   string `yaml:"-"`
	Repo    string `yaml:"repo"` // owner/name
	Branch  string `yaml:"branch"`
	APIBase string `yaml:"api_base"`
	RawBase string `yaml:"raw_base"`
}

// S3Config addresses an S3-compatible bucket.
type S3Config struct {
	Endpoint      string `yaml:"endpoint"`
	Bucket        string `yaml:"bucket"`
	Region        string `yaml:"region"`
	AccessKeyID   string `yaml:"-"`
	SecretKey     string `yaml:"-"`
	UseSSL        bool   `yaml:"ssl"`
	PublicBaseURL string `yaml:"public_base_url"`
}

// Config holds every parameter of a sync run. It is built once by the CLI
// and handed to each component; nothing reads it from global state.
type Config struct {
	MaxDimension int    `yaml:"max_dimension"`
	Quality      int    `yaml:"quality"`
	OutputFormat string `yaml:"output_format"`
	StagingDir   string `yaml:"staging_dir"`
	BaseFolder   string `yaml:"base_folder"`

	PhotoRoot     string `yaml:"photo_root"`
	Spreadsheet   string `yaml:"spreadsheet"`
	SheetName     string `yaml:"sheet_name"`
	ProjectColumn string `yaml:"project_column"`
	WeekColumn    string `yaml:"week_column"`
	Slots         []Slot `yaml:"slots"`

	LedgerPath string `yaml:"ledger"`

	Store  string       `yaml:"store"`
	GitHub GitHubConfig `yaml:"github"`
	S3     S3Config     `yaml:"s3"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

var slotOrdinals = []string{"first", "second", "third", "fourth", "fifth", "sixth", "seventh", "eighth"}

// DefaultSlots returns the eight photo slots of the weekly documentation form.
func DefaultSlots() []Slot {
	slots := make([]Slot, 0, len(slotOrdinals))
	for i, ord := range slotOrdinals {
		n := i + 1
		slots = append(slots, Slot{
			Name:              ord + " photo",
			Folder:            fmt.Sprintf("Foto %d", n),
			ReferenceColumn:   fmt.Sprintf("Foto %d", n),
			DescriptionColumn: fmt.Sprintf("Deskripsi Foto %d", n),
		})
	}
	return slots
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MaxDimension:  1024,
		Quality:       65,
		OutputFormat:  "jpeg",
		StagingDir:    "compressed",
		BaseFolder:    "weekly_photos",
		PhotoRoot:     ".",
		Spreadsheet:   "form_responses.xlsx",
		ProjectColumn: "Kode Proyek",
		WeekColumn:    "Minggu",
		Slots:         DefaultSlots(),
		LedgerPath:    "metadata_foto.xlsx",
		Store:         StoreGitHub,
		GitHub: GitHubConfig{
			Branch:  "main",
			APIBase: "https://api.github.com",
			RawBase: "https://raw.githubusercontent.com",
		},
		S3:        S3Config{UseSSL: true},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load builds a Config from defaults, the optional YAML file at path, a
// .env file in the working directory and finally the process environment.
// An empty path or a missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Store = getEnv("FOTOSYNC_STORE", c.Store)
	c.LogLevel = getEnv("FOTOSYNC_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("FOTOSYNC_LOG_FORMAT", c.LogFormat)

	c.GitHub.Token = getEnv("GITHUB_TOKEN", c.GitHub.Token)
	c.GitHub.Repo = getEnv("GITHUB_REPO", c.GitHub.Repo)
	c.GitHub.Branch = getEnv("GITHUB_BRANCH", c.GitHub.Branch)

	c.S3.Endpoint = getEnv("S3_ENDPOINT", c.S3.Endpoint)
	c.S3.Bucket = getEnv("S3_BUCKET", c.S3.Bucket)
	c.S3.Region = getEnv("S3_REGION", c.S3.Region)
	c.S3.AccessKeyID = getEnv("S3_ACCESS_KEY_ID", c.S3.AccessKeyID)
	c.S3.SecretKey = getEnv("S3_SECRET_ACCESS_KEY", c.S3.SecretKey)
	c.S3.PublicBaseURL = getEnv("S3_PUBLIC_BASE_URL", c.S3.PublicBaseURL)
	c.S3.UseSSL = getEnvAsBool("S3_SSL", c.S3.UseSSL)
}

// Validate checks the configuration before any work begins.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	return c.ValidateLocal()
}

func (c *Config) validateStore() error {
	switch c.Store {
	case StoreGitHub:
		if c.GitHub.Token == "" || c.GitHub.Repo == "" {
			return fmt.Errorf("%w: GITHUB_TOKEN and GITHUB_REPO are required", ErrMissingCredentials)
		}
		if strings.Count(c.GitHub.Repo, "/") != 1 {
			return fmt.Errorf("GITHUB_REPO must be owner/name, got %q", c.GitHub.Repo)
		}
		if c.GitHub.Branch == "" {
			return errors.New("github branch must not be empty")
		}
	case StoreS3:
		if c.S3.Endpoint == "" || c.S3.Bucket == "" {
			return fmt.Errorf("%w: S3_ENDPOINT and S3_BUCKET are required", ErrMissingCredentials)
		}
		if c.S3.AccessKeyID == "" || c.S3.SecretKey == "" {
			return fmt.Errorf("%w: S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY are required", ErrMissingCredentials)
		}
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreGitHub, StoreS3)
	}
	return nil
}

// ValidateLocal checks everything except the remote store, which a dry
// run never contacts.
func (c *Config) ValidateLocal() error {
	enc, err := encoder.NewRegistry().Get(c.OutputFormat)
	if err != nil {
		return err
	}
	// Lossless formats ignore quality.
	if enc.Lossy() && (c.Quality < 1 || c.Quality > 100) {
		return fmt.Errorf("quality must be 1-100 for %s, got %d", enc.Format(), c.Quality)
	}
	if c.MaxDimension < 1 {
		return fmt.Errorf("max_dimension must be positive, got %d", c.MaxDimension)
	}
	if c.StagingDir == "" {
		return errors.New("staging_dir must not be empty")
	}

	seen := map[string]bool{}
	for i, s := range c.Slots {
		if s.Name == "" {
			return fmt.Errorf("slot %d has no name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate slot %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// SlotByName looks up a slot in the configured table.
func (c *Config) SlotByName(name string) (Slot, bool) {
	for _, s := range c.Slots {
		if s.Name == name {
			return s, true
		}
	}
	return Slot{}, false
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
