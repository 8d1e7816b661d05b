package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API and webhooks.
	ApiKey string `mapstructure:"api_key" default:""`
	// DefaultTimezone is used when a listing mapping carries no timezone.
	DefaultTimezone string `mapstructure:"default_timezone" default:"America/Mexico_City"`
	// DefaultCountry is the fallback country for guests whose hometown
	// cannot be parsed.
	DefaultCountry string `mapstructure:"default_country" default:"Mexico"`
}
