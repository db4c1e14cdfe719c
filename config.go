package donations

import "github.com/goliatone/go-donation-pages/internal/runtimeconfig"

var (
	ErrAPIBaseURLInvalid         = runtimeconfig.ErrAPIBaseURLInvalid
	ErrCheckoutOriginRequired    = runtimeconfig.ErrCheckoutOriginRequired
	ErrFeeRateInvalid            = runtimeconfig.ErrFeeRateInvalid
	ErrFlatFeeInvalid            = runtimeconfig.ErrFlatFeeInvalid
	ErrStorageProviderUnknown    = runtimeconfig.ErrStorageProviderUnknown
	ErrStorageDSNRequired        = runtimeconfig.ErrStorageDSNRequired
	ErrScreenshotViewportInvalid = runtimeconfig.ErrScreenshotViewportInvalid
	ErrLoggingProviderRequired   = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown    = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config           = runtimeconfig.Config
	APIConfig        = runtimeconfig.APIConfig
	CheckoutConfig   = runtimeconfig.CheckoutConfig
	FeeConfig        = runtimeconfig.FeeConfig
	PlanConfig       = runtimeconfig.PlanConfig
	ScreenshotConfig = runtimeconfig.ScreenshotConfig
	StorageConfig    = runtimeconfig.StorageConfig
	CacheConfig      = runtimeconfig.CacheConfig
	LoggingConfig    = runtimeconfig.LoggingConfig
	Features         = runtimeconfig.Features
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
