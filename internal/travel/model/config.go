package model

// ================ Config ================

// ParserConfig selects the query-extraction strategy.
type ParserConfig struct {
	Strategy string `envconfig:"PARSER_STRATEGY" default:"rule"` // rule | gemini
}

// QueryModelConfig configures the gemini-backed extraction strategy.
type QueryModelConfig struct {
	Model       string  `envconfig:"QUERY_MODEL" default:"gemini-2.0-flash"`
	MaxTokens   int     `envconfig:"QUERY_MAX_TOKENS" default:"512"`
	Temperature float32 `envconfig:"QUERY_TEMPERATURE" default:"0"`
}

// SearchConfig configures the flight-search collaborator. Providers is a
// comma-separated list of name:priority:monthly-quota entries, lower priority
// number first; the base URL is shared and each client passes its provider
// name as a query parameter.
type SearchConfig struct {
	BaseURL        string `envconfig:"SEARCH_BASE_URL" default:"http://127.0.0.1:8000"`
	TimeoutSeconds int    `envconfig:"SEARCH_TIMEOUT_SECONDS" default:"15"`
	Providers      string `envconfig:"SEARCH_PROVIDERS" default:"amadeus:1:2000, duffel:2:1500, skyscanner:3:1000"`
}

// RefreshConfig configures the periodic price refresh trigger.
type RefreshConfig struct {
	Interval string `envconfig:"REFRESH_INTERVAL" default:"1h"`
}

// MetricsConfig configures the prometheus endpoint.
type MetricsConfig struct {
	Addr      string `envconfig:"METRICS_ADDR" default:":9091"`
	Namespace string `envconfig:"METRICS_NAMESPACE" default:"zenese"`
}
