package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads config.<env>.yml from path, applies ED_REWARDS_ environment
// overrides and fills unset fields from their defaults
func Load(path, env string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	v.SetConfigType("yml")
	v.AddConfigPath(path)

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvPrefix("ED_REWARDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("could not unmarshal config: %w", err)
	}
	if err := c.ApplyDefaults(); err != nil {
		return nil, err
	}
	return &c, nil
}
