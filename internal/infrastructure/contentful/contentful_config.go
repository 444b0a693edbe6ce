package contentful

import (
	"errors"
	"time"
)

const (
	// DeliveryAPIURL is the Content Delivery API endpoint
	DeliveryAPIURL = "https://cdn.contentful.com"
	// PreviewAPIURL is the Content Preview API endpoint
	PreviewAPIURL = "https://preview.contentful.com"
	// MaxPageSize is the largest page the Delivery API serves
	MaxPageSize = 1000
	// DefaultEnvironment is used when no environment is configured
	DefaultEnvironment = "master"
)

// Errors for Contentful configuration
var (
	ErrConfigMissingSpaceID     = errors.New("contentful: space id is required")
	ErrConfigMissingAccessToken = errors.New("contentful: access token is required")
	ErrConfigInvalidPageSize    = errors.New("contentful: page size must be between 1 and 1000")
)

// Config holds configuration for the Contentful Delivery API
type Config struct {
	// BaseURL is the API endpoint (delivery or preview)
	BaseURL string
	// SpaceID identifies the Contentful space
	SpaceID string
	// AccessToken is the delivery (or preview) API key
	AccessToken string
	// Environment is the space environment, "master" by default
	Environment string
	// ContentType is the default content type fetched when none is given
	ContentType string
	// PageSize is the number of entries requested per page
	PageSize int
	// Timeout bounds each HTTP request
	Timeout time.Duration
}

// NewConfig creates a Contentful configuration with defaults
func NewConfig(spaceID, accessToken string) *Config {
	return &Config{
		BaseURL:     DeliveryAPIURL,
		SpaceID:     spaceID,
		AccessToken: accessToken,
		Environment: DefaultEnvironment,
		PageSize:    MaxPageSize,
		Timeout:     30 * time.Second,
	}
}

// Validate checks required settings and fills in defaults
func (c *Config) Validate() error {
	if c.SpaceID == "" {
		return ErrConfigMissingSpaceID
	}
	if c.AccessToken == "" {
		return ErrConfigMissingAccessToken
	}
	if c.BaseURL == "" {
		c.BaseURL = DeliveryAPIURL
	}
	if c.Environment == "" {
		c.Environment = DefaultEnvironment
	}
	if c.PageSize == 0 {
		c.PageSize = MaxPageSize
	}
	if c.PageSize < 1 || c.PageSize > MaxPageSize {
		return ErrConfigInvalidPageSize
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}
