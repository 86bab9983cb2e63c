package onesignal

import "time"

// Config for the OneSignal REST client. AppID and APIKey are required:
// missing provider credentials are a configuration error that must prevent
// startup, never a silent per-send failure.
type Config struct {
	AppID   string        `env:"ONESIGNAL_APP_ID,required"`
	APIKey  string        `env:"ONESIGNAL_API_KEY,required"`
	BaseURL string        `env:"ONESIGNAL_BASE_URL" envDefault:"https://onesignal.com/api/v1"`
	Timeout time.Duration `env:"ONESIGNAL_TIMEOUT" envDefault:"10s"`

	// MaxTargetsPerRequest is the provider's per-request recipient limit;
	// larger intents are split into independent chunks.
	MaxTargetsPerRequest int `env:"ONESIGNAL_MAX_TARGETS_PER_REQUEST" envDefault:"2000"`

	// RequestsPerSecond throttles outbound calls to stay inside the
	// provider's rate limits.
	RequestsPerSecond float64 `env:"ONESIGNAL_REQUESTS_PER_SECOND" envDefault:"10"`
}
