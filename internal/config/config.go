package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	defaultCountry        = "us"
	defaultMaxResults     = 1000
	defaultResultsPerPage = 50
	defaultOutputCSV      = "job_listings.csv"
	defaultProvider       = "gemini"
)

// Config is the full job-radar configuration unmarshalled from the config
// file and environment bindings.
type Config struct {
	Search     *Search  `mapstructure:"search" validate:"required"`
	ResumeFile string   `mapstructure:"resume-file" validate:"required"`
	OutputCSV  string   `mapstructure:"output-csv"`
	Adzuna     *Adzuna  `mapstructure:"adzuna" validate:"required"`
	Filters    *Filters `mapstructure:"filters"`
	AI         *AI      `mapstructure:"ai"`
}

type Search struct {
	Query          string `mapstructure:"query" validate:"required"`
	Location       string `mapstructure:"location"`
	Country        string `mapstructure:"country"`
	MaxResults     int    `mapstructure:"max-results" validate:"gte=0"`
	ResultsPerPage int    `mapstructure:"results-per-page" validate:"gte=0,lte=50"`
}

type Adzuna struct {
	AppID             string        `mapstructure:"app-id" validate:"required"`
	AppKey            string        `mapstructure:"app-key"`
	AppKeyFile        string        `mapstructure:"app-key-file"`
	RequestsPerSecond float64       `mapstructure:"requests-per-second" validate:"gte=0"`
	MaxRetries        int           `mapstructure:"max-retries" validate:"gte=0"`
	RetryDelay        time.Duration `mapstructure:"retry-delay"`
}

type Filters struct {
	Companies     []string `mapstructure:"companies"`
	DealBreakers  []string `mapstructure:"deal-breakers"`
	RequiredTerms []string `mapstructure:"required-terms"`
}

type AI struct {
	Enabled      bool    `mapstructure:"enabled"`
	Provider     string  `mapstructure:"provider"`
	MinimumScore float64 `mapstructure:"minimum-score" validate:"gte=0,lte=100"`
	Gemini       *Gemini `mapstructure:"gemini"`
}

type Gemini struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries" validate:"gte=0"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

// SetDefaults fills zero values with defaults so downstream components
// never have to guess.
func (c *Config) SetDefaults() {
	if c.OutputCSV == "" {
		c.OutputCSV = defaultOutputCSV
	}

	if c.Search != nil {
		if c.Search.Country == "" {
			c.Search.Country = defaultCountry
		}
		if c.Search.MaxResults == 0 {
			c.Search.MaxResults = defaultMaxResults
		}
		if c.Search.ResultsPerPage == 0 {
			c.Search.ResultsPerPage = defaultResultsPerPage
		}
	}

	if c.Filters == nil {
		c.Filters = &Filters{}
	}

	if c.AI != nil && c.AI.Provider == "" {
		c.AI.Provider = defaultProvider
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.AI != nil && c.AI.Enabled && c.AI.Gemini == nil {
		return fmt.Errorf("invalid configuration: ai.gemini section is required when ai is enabled")
	}

	return nil
}

// Redacted returns a copy safe for debug logging, with secret material
// blanked.
func (c *Config) Redacted() *Config {
	clone := *c

	if c.Adzuna != nil {
		adzuna := *c.Adzuna
		if adzuna.AppKey != "" {
			adzuna.AppKey = "<redacted>"
		}
		clone.Adzuna = &adzuna
	}

	if c.AI != nil {
		aiCfg := *c.AI
		if c.AI.Gemini != nil {
			gemini := *c.AI.Gemini
			if gemini.APIKey != "" {
				gemini.APIKey = "<redacted>"
			}
			aiCfg.Gemini = &gemini
		}
		clone.AI = &aiCfg
	}

	return &clone
}
