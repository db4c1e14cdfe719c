package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var ErrAPIBaseURLInvalid = errors.New("donations config: api base url must be an absolute http(s) url")
var ErrCheckoutOriginRequired = errors.New("donations config: checkout origin is required")
var ErrFeeRateInvalid = errors.New("donations config: fee rates must be within [0, 1)")
var ErrFlatFeeInvalid = errors.New("donations config: flat fee must be zero or positive")
var ErrStorageProviderUnknown = errors.New("donations config: storage provider is invalid")
var ErrStorageDSNRequired = errors.New("donations config: storage dsn is required for sql providers")
var ErrScreenshotViewportInvalid = errors.New("donations config: screenshot viewport must be positive")
var ErrLoggingProviderRequired = errors.New("donations config: logging provider is required when logging feature is enabled")
var ErrLoggingProviderUnknown = errors.New("donations config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("donations config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("donations config: logging format is invalid")

// Config aggregates feature flags and collaborator settings for the donation
// page pipeline. Fields use plain types so YAML files map onto them directly.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Checkout   CheckoutConfig   `yaml:"checkout"`
	Fees       FeeConfig        `yaml:"fees"`
	Plan       PlanConfig       `yaml:"plan"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
	Storage    StorageConfig    `yaml:"storage"`
	Cache      CacheConfig      `yaml:"cache"`
	Logging    LoggingConfig    `yaml:"logging"`
	Features   Features         `yaml:"features"`
}

// APIConfig points the HTTP collaborators at the page and style API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// Listen is the address used when the page API is served in-process.
	Listen string `yaml:"listen"`
}

// CheckoutConfig captures the payment success redirect settings.
type CheckoutConfig struct {
	Origin string `yaml:"origin"`
	// TokenKey salts the contributor email token.
	TokenKey string `yaml:"token_key"`
}

// FeeConfig mirrors payments.FeeSchedule.
type FeeConfig struct {
	NonprofitRate      float64 `yaml:"nonprofit_rate"`
	ForProfitRate      float64 `yaml:"for_profit_rate"`
	FlatFee            float64 `yaml:"flat_fee"`
	RecurringSurcharge float64 `yaml:"recurring_surcharge"`
}

// PlanConfig names the organization plan and the block types it requires.
// An empty RequiredBlocks list means every registry-required type applies.
type PlanConfig struct {
	Name           string   `yaml:"name"`
	RequiredBlocks []string `yaml:"required_blocks"`
}

// ScreenshotConfig configures page preview capture.
type ScreenshotConfig struct {
	Width    int           `yaml:"width"`
	Height   int           `yaml:"height"`
	Timeout  time.Duration `yaml:"timeout"`
	Headless bool          `yaml:"headless"`
	Selector string        `yaml:"selector"`
}

// StorageConfig selects where pages and styles live.
type StorageConfig struct {
	Provider string `yaml:"provider"`
	DSN      string `yaml:"dsn"`
}

// CacheConfig captures cache behaviour toggles for page reads.
type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DefaultTTL time.Duration `yaml:"default_ttl"`
}

// Features toggles module functionality.
type Features struct {
	Logger      bool `yaml:"logger"`
	Screenshots bool `yaml:"screenshots"`
	HTTPAPI     bool `yaml:"http_api"`
	Commands    bool `yaml:"commands"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// DefaultConfig returns defaults matching the hosted checkout.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080/api/v1",
			Timeout: 30 * time.Second,
			Listen:  ":8080",
		},
		Checkout: CheckoutConfig{
			Origin: "http://localhost:3000",
		},
		Fees: FeeConfig{
			NonprofitRate: 0.022,
			ForProfitRate: 0.029,
			FlatFee:       0.30,
		},
		Plan: PlanConfig{
			Name: "free",
		},
		Screenshot: ScreenshotConfig{
			Width:    1280,
			Height:   960,
			Timeout:  20 * time.Second,
			Headless: true,
			Selector: "#page-preview",
		},
		Storage: StorageConfig{
			Provider: "memory",
		},
		Cache: CacheConfig{
			Enabled:    false,
			DefaultTTL: time.Minute,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Features: Features{
			Commands: true,
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if raw := strings.TrimSpace(cfg.API.BaseURL); raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("%w: %s", ErrAPIBaseURLInvalid, raw)
		}
	}
	if strings.TrimSpace(cfg.Checkout.Origin) == "" {
		return ErrCheckoutOriginRequired
	}
	for name, rate := range map[string]float64{"nonprofit": cfg.Fees.NonprofitRate, "for_profit": cfg.Fees.ForProfitRate} {
		if rate < 0 || rate >= 1 {
			return fmt.Errorf("%w: %s", ErrFeeRateInvalid, name)
		}
	}
	if cfg.Fees.FlatFee < 0 || cfg.Fees.RecurringSurcharge < 0 {
		return ErrFlatFeeInvalid
	}

	switch provider := normalize(cfg.Storage.Provider); provider {
	case "", "memory":
	case "sqlite", "postgres":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrStorageDSNRequired, provider)
		}
	default:
		return fmt.Errorf("%w: %s", ErrStorageProviderUnknown, provider)
	}

	if cfg.Features.Screenshots {
		if cfg.Screenshot.Width <= 0 || cfg.Screenshot.Height <= 0 {
			return ErrScreenshotViewportInvalid
		}
	}

	if cfg.Features.Logger {
		provider := normalize(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderRequired
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "zerolog", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
