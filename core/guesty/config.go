package guesty

// Auth types supported by the vendor API.
const (
	AuthBasic  = "basic"
	AuthOAuth2 = "oauth2"
)

// Environments supported by the vendor API.
const (
	EnvProd = "prod"
	EnvDev  = "dev"
)

// Config holds configuration for the vendor API client.
type Config struct {
	// Environment selects the vendor environment (prod, dev).
	Environment string `mapstructure:"environment" default:"dev"`
	// AuthType selects the authentication mode (basic, oauth2).
	AuthType string `mapstructure:"auth_type" default:"oauth2"`
	// ApiKey is the static key (basic) or OAuth client id (oauth2).
	ApiKey string `mapstructure:"api_key" default:""`
	// ApiSecret is the static secret (basic) or OAuth client secret (oauth2).
	ApiSecret string `mapstructure:"api_secret" default:""`
	// AccountID is the vendor account this installation is bound to.
	// It is filled in by CheckCredentials when left empty.
	AccountID string `mapstructure:"account_id" default:""`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// BaseURL overrides the environment-derived API URL. Used by tests.
	BaseURL string `mapstructure:"base_url" default:""`
	// AuthURL overrides the environment-derived token URL. Used by tests.
	AuthURL string `mapstructure:"auth_url" default:""`
}

// Endpoints holds the resolved URLs for one environment/auth combination.
type Endpoints struct {
	API  string
	App  string
	Auth string
}

// Endpoints maps the environment and auth type to the vendor URLs.
// The open-api hosts are only reachable with oauth2 credentials; the
// legacy api/v2 hosts take basic auth.
func (c Config) Endpoints() Endpoints {
	var ep Endpoints

	switch {
	case c.Environment == EnvProd && c.AuthType == AuthBasic:
		ep = Endpoints{
			API: "https://api.guesty.com/api/v2",
			App: "https://app.guesty.com",
		}
	case c.Environment == EnvProd && c.AuthType == AuthOAuth2:
		ep = Endpoints{
			API:  "https://open-api.guesty.com/v1",
			App:  "https://app.guesty.com",
			Auth: "https://open-api.guesty.com/oauth2/token",
		}
	case c.Environment == EnvDev && c.AuthType == AuthOAuth2:
		ep = Endpoints{
			API:  "https://open-api-sandbox.guesty.com/v1",
			App:  "https://app-sandbox.guesty.com",
			Auth: "https://open-api-sandbox.guesty.com/oauth2/token",
		}
	default:
		ep = Endpoints{
			API: "https://api.sandbox.guesty.com/api/v2",
			App: "https://app-sandbox.guesty.com",
		}
	}

	if c.BaseURL != "" {
		ep.API = c.BaseURL
	}
	if c.AuthURL != "" {
		ep.Auth = c.AuthURL
	}

	return ep
}
