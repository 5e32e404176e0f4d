package config

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8000
	DefaultEnvironment = "development"
	DefaultLogLevel    = "info"

	DefaultSpoolBaseURL        = "https://api.spool.dev"
	DefaultSpoolTimeoutSeconds = 120

	DefaultRateLimitCalls    = 10
	DefaultRateLimitPeriodMS = 1000

	DefaultHTTPRateLimitPerMinute = 120

	DefaultAgentModel   = "claude-sonnet-4-6"
	DefaultAgentTimeout = 300 // seconds
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
}
