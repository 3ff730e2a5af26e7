package platforms

// Config holds the credentials and limits of the platform API clients.
type Config struct {
	Humanitix  HumanitixConfig  `mapstructure:"humanitix"`
	Eventbrite EventbriteConfig `mapstructure:"eventbrite"`
	// RequestsPerSecond is the sustained request rate per platform.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" default:"5"`
	// TimeoutSeconds bounds each HTTP request.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// MaxPages stops pagination of very large events.
	MaxPages int `mapstructure:"max_pages" default:"500"`
}

// HumanitixConfig holds Humanitix API settings.
type HumanitixConfig struct {
	BaseURL string `mapstructure:"base_url" default:"https://api.humanitix.com/v1"`
	APIKey  string `mapstructure:"api_key" default:""`
}

// EventbriteConfig holds Eventbrite API settings.
type EventbriteConfig struct {
	BaseURL string `mapstructure:"base_url" default:"https://www.eventbriteapi.com/v3"`
	Token   string `mapstructure:"token" default:""`
}
