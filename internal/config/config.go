package config

// AppConfig holds the calling backend configuration loaded from environment
type AppConfig struct {
	Port string

	// Voice provider selection and credentials
	ActiveVoiceProvider string
	VapiAPIKey          string
	VapiPhoneNumberID   string
	VapiBaseURL         string
	RetellAPIKey        string
	RetellAgentID       string
	RetellBaseURL       string

	// Google Places search
	GoogleMapsAPIKey string
	PlacesBaseURL    string

	// Redis (optional, provider status cache)
	RedisHost     string
	RedisPort     string
	RedisPassword string

	EnableCORS bool

	// Instance identifier for multi-pod monitoring
	InstanceID string
}
