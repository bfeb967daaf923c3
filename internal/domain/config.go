package domain

// system_config keys the engine reads and writes.
const (
	ConfigKeyAPIKey              = "api_key_twelvedata"
	ConfigKeySupportedPairs      = "supported_pairs"
	ConfigKeyLastPriceUpdate     = "last_price_update"
	ConfigKeyLastIndicatorUpdate = "last_indicator_update"
)

// RuntimeConfig is the per-invocation configuration loaded from system_config.
// It is built once at the start of a run and never mutated.
type RuntimeConfig struct {
	APIKey         string
	SupportedPairs []string
}
