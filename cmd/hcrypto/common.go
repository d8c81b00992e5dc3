package main

import (
	"github.com/housler/housler-crypto/config"
	"github.com/housler/housler-crypto/crypto"
)

// loadConfig resolves configuration from --config or the environment.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load(), nil
}

// loadCodec builds the codec from resolved configuration.
func loadCodec() (*crypto.Codec, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cfg.Codec()
}
