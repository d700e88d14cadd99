package n2f

// Config holds configuration for the target platform API.
type Config struct {
	// BaseURL is the production API base URL.
	BaseURL string `mapstructure:"base_url" default:"https://api.n2f.com/services/api/v2"`
	// SandboxBaseURL is the sandbox API base URL used when Sandbox is set.
	SandboxBaseURL string `mapstructure:"sandbox_base_url" default:"https://sandbox.n2f.com/services/api/v2"`
	// ClientID is the API client identifier.
	ClientID string `mapstructure:"client_id" default:""`
	// ClientSecret is the API client secret.
	ClientSecret string `mapstructure:"client_secret" default:""`
	// Sandbox redirects all calls to the sandbox base URL.
	Sandbox bool `mapstructure:"sandbox" default:"false"`
	// Simulate replaces all network calls with synthetic results.
	Simulate bool `mapstructure:"simulate" default:"false"`
	// TimeoutSeconds is the per-request HTTP timeout.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

// ResolvedBaseURL returns the base URL matching the sandbox flag.
func (c Config) ResolvedBaseURL() string {
	if c.Sandbox {
		return c.SandboxBaseURL
	}
	return c.BaseURL
}
