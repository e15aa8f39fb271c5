package adzuna

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiURL         = "https://api.adzuna.com/v1/api/jobs"
	boardName      = "adzuna"
	defaultAgent   = "job-radar (github.com/kgill/job-radar)"
	defaultCountry = "us"

	// Adzuna caps results_per_page at 50.
	maxPerPage = 50

	defaultMaxRetries = 3
	defaultRetryDelay = time.Minute
)

// Config holds the Adzuna client settings.
type Config struct {
	AppID   string
	AppKey  string
	Country string

	// RequestsPerSecond paces requests toward the API. Zero means one
	// request per second.
	RequestsPerSecond float64

	// MaxRetries and RetryDelay control the reaction to HTTP 429.
	MaxRetries int
	RetryDelay time.Duration
}

type Client struct {
	appID   string
	appKey  string
	country string
	logger  *zap.Logger
	limiter *rate.Limiter

	maxRetries int
	retryDelay time.Duration

	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("adzuna configuration is required")
	}
	if cfg.AppID == "" || cfg.AppKey == "" {
		return nil, fmt.Errorf("adzuna app id and app key are required")
	}

	country := cfg.Country
	if country == "" {
		country = defaultCountry
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	return &Client{
		appID:      cfg.AppID,
		appKey:     cfg.AppKey,
		country:    country,
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		maxRetries: maxRetries,
		retryDelay: retryDelay,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		UserAgent: defaultAgent,
		APIURL:    apiURL,
	}, nil
}

func (c *Client) Name() string { return boardName }
