package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/wheelibin/huectl/internal/constants"
)

type RateLimit struct {
	Max          int           `mapstructure:"max"`
	Window       time.Duration `mapstructure:"window"`
	PollInterval time.Duration `mapstructure:"pollInterval"`
}

type Discovery struct {
	// ssdp, mdns, cloud or all
	Method  string        `mapstructure:"method"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type Log struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type Config struct {
	BridgeIP  string        `mapstructure:"bridgeIp"`
	ClientID  string        `mapstructure:"clientId"`
	Username  string        `mapstructure:"username"`
	Timeout   time.Duration `mapstructure:"timeout"`
	CachePath string        `mapstructure:"cachePath"`
	RateLimit RateLimit     `mapstructure:"rateLimit"`
	Discovery Discovery     `mapstructure:"discovery"`
	Log       Log           `mapstructure:"log"`
}

func DefaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "huectl", "huectl.db")
}

// SetDefaults registers every key with its default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("bridgeIp", "")
	v.SetDefault("clientId", constants.DefaultClientID)
	v.SetDefault("username", "")
	v.SetDefault("timeout", constants.DefaultRequestTimeout)
	v.SetDefault("cachePath", DefaultCachePath())
	v.SetDefault("rateLimit.max", constants.DefaultRateLimitMax)
	v.SetDefault("rateLimit.window", constants.DefaultRateLimitWindow)
	v.SetDefault("rateLimit.pollInterval", constants.DefaultRateLimitPollInterval)
	v.SetDefault("discovery.method", constants.DiscoveryMethodSSDP)
	v.SetDefault("discovery.timeout", constants.DefaultDiscoveryTimeout)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// InitialiseConfig points v at the config search paths and reads the file if there is one.
func InitialiseConfig(v *viper.Viper, configFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix("huectl")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")                // name of config file (without extension)
		v.SetConfigType("json")                  // REQUIRED if the config file does not have the extension in the name
		v.AddConfigPath("/etc/huectl/")          // path to look for the config file in
		v.AddConfigPath("$HOME/.config/huectl/") // call multiple times to add many search paths
		v.AddConfigPath(".")                     // optionally look for config in the working directory
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// no config file is fine, defaults and flags still apply
			return nil
		}
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	switch cfg.Discovery.Method {
	case constants.DiscoveryMethodSSDP, constants.DiscoveryMethodMDNS, constants.DiscoveryMethodCloud, constants.DiscoveryMethodAll:
	default:
		return nil, fmt.Errorf("unknown discovery method %q", cfg.Discovery.Method)
	}
	if cfg.RateLimit.Max <= 0 {
		return nil, fmt.Errorf("rateLimit.max must be positive, got %d", cfg.RateLimit.Max)
	}
	if cfg.RateLimit.Window <= 0 {
		return nil, fmt.Errorf("rateLimit.window must be positive, got %s", cfg.RateLimit.Window)
	}

	return &cfg, nil
}
