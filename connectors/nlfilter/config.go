package nlfilter

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	ModeProxy      = "proxy"
	ModeCompletion = "completion"

	defaultTimeout      = 30 * time.Second
	defaultBackoff      = 500 * time.Millisecond
	defaultMaxDataChars = 3000
	defaultTemperature  = 0.2
)

// Config configures a filter client.
type Config struct {
	URL    string `json:"url" koanf:"url" validate:"required,url"`
	APIKey string `json:"api_key" koanf:"api_key"`
	// OAuth fetches bearer tokens with the client credentials grant
	// instead of sending APIKey.
	OAuth *OAuthConfig `json:"oauth" koanf:"oauth"`
	// Model is only used in completion mode.
	Model       string        `json:"model" koanf:"model"`
	Temperature float64       `json:"temperature" koanf:"temperature" validate:"gte=0,lte=2"`
	Timeout     time.Duration `json:"timeout" koanf:"timeout" validate:"gte=0"`
	// MaxAttempts counts the first call. One means no retry.
	MaxAttempts int           `json:"max_attempts" koanf:"max_attempts" validate:"gte=0"`
	Backoff     time.Duration `json:"backoff" koanf:"backoff" validate:"gte=0"`
	// MaxDataChars truncates the serialized data embedded in the prompt.
	MaxDataChars int `json:"max_data_chars" koanf:"max_data_chars" validate:"gte=0"`
}

// OAuthConfig holds client credentials for the token endpoint.
type OAuthConfig struct {
	ClientID     string   `json:"client_id" koanf:"client_id" validate:"required"`
	ClientSecret string   `json:"client_secret" koanf:"client_secret" validate:"required"`
	TokenURL     string   `json:"token_url" koanf:"token_url" validate:"required,url"`
	Scopes       []string `json:"scopes" koanf:"scopes"`
}

func (c OAuthConfig) clientCredentials() clientcredentials.Config {
	return clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.TokenURL,
		Scopes:       c.Scopes,
	}
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 1
	}
	if c.Backoff == 0 {
		c.Backoff = defaultBackoff
	}
	if c.MaxDataChars == 0 {
		c.MaxDataChars = defaultMaxDataChars
	}
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
}

// Validate checks the configuration for the given mode.
func (c Config) Validate(mode string) error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("nlfilter config: %w", err)
	}
	if c.OAuth != nil && c.APIKey != "" {
		return fmt.Errorf("nlfilter config: api_key and oauth are exclusive")
	}
	if mode == ModeCompletion && c.Model == "" {
		return fmt.Errorf("nlfilter config: model is required in %s mode", mode)
	}
	return nil
}
