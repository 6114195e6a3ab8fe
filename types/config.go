package types

// AppConfig represents the application configuration loaded from config file
type AppConfig struct {
	Port                   int     `yaml:"port"`
	BaseURL                string  `yaml:"baseUrl"`
	SessionTTLSeconds      int     `yaml:"sessionTtlSeconds"`
	CleanupIntervalSeconds int     `yaml:"cleanupIntervalSeconds"`
	MaxUploadMB            int     `yaml:"maxUploadMb"`
	QRSize                 int     `yaml:"qrSize"`
	GenerateRatePerSecond  float64 `yaml:"generateRatePerSecond"`
	InferenceURL           string  `yaml:"inferenceUrl"`
	ConfidenceThreshold    float64 `yaml:"confidenceThreshold"`
	DatabasePath           string  `yaml:"databasePath"`
}

// Config holds runtime overrides from CLI flags
type Config struct {
	Log             string
	UseConfigPath   string
	UsePort         int
	UseBaseURL      string
	UseInferenceURL string
	UseDatabasePath string
	SkipNotifyWS    bool // if true, disable the status WebSocket endpoint.
}
