package tool

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nutripeek/nutripeek-go/types"
)

var (
	ConfigPath    = "config.yaml" // be aware that it can be changed, default to ./config.yaml
	CurrentConfig types.AppConfig
)

func defaultConfig() types.AppConfig {
	return types.AppConfig{
		Port:                   8000,
		BaseURL:                "http://localhost:8000/qrcode", // public URL the phone will open; put your domain here in production.
		SessionTTLSeconds:      300,
		CleanupIntervalSeconds: 300,
		MaxUploadMB:            10,
		QRSize:                 256,
		GenerateRatePerSecond:  5,
		InferenceURL:           "http://localhost:8500",
		ConfidenceThreshold:    0.35,
		DatabasePath:           "nutripeek.db",
	}
}

// LoadConfig reads the yaml config, creating one with defaults when the
// file does not exist yet.
func LoadConfig(path string) (types.AppConfig, error) {
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := defaultConfig()

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			if writeErr := writeDefaultConfig(path, cfg); writeErr != nil {
				return cfg, fmt.Errorf("config file not found, and failed to generate default config: %v", writeErr)
			}
			DefaultLogger.Infof("Created new config file at %s", path)
			CurrentConfig = cfg
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if info.IsDir() {
		return cfg, fmt.Errorf("config file path is a directory: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %v", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %v", err)
	}

	CurrentConfig = cfg
	return cfg, nil
}

func writeDefaultConfig(path string, cfg types.AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// GetCurrentConfig returns the last loaded configuration.
func GetCurrentConfig() types.AppConfig {
	return CurrentConfig
}
