package config

import (
	"os"
	"regexp"
	"strconv"

	"github.com/joho/godotenv"
)

// envVarPattern matches ${VAR} or ${VAR:default}
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// SubstituteEnvVars replaces ${VAR} or ${VAR:default} with environment variable values
func SubstituteEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultValue := ""
		if len(parts) > 2 {
			defaultValue = parts[2]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}

// substituteEnvVarsInConfig substitutes environment variables in the
// string-valued configuration fields that commonly carry secrets.
func substituteEnvVarsInConfig(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Crypto != nil {
		cfg.Crypto.MasterKey = SubstituteEnvVars(cfg.Crypto.MasterKey)
		cfg.Crypto.Salt = SubstituteEnvVars(cfg.Crypto.Salt)
	}
	if cfg.LegacyLK != nil {
		cfg.LegacyLK.EncryptionKey = SubstituteEnvVars(cfg.LegacyLK.EncryptionKey)
		cfg.LegacyLK.EncryptionSalt = SubstituteEnvVars(cfg.LegacyLK.EncryptionSalt)
	}
	if cfg.LegacyClub != nil {
		cfg.LegacyClub.MasterKey = SubstituteEnvVars(cfg.LegacyClub.MasterKey)
		cfg.LegacyClub.Salt = SubstituteEnvVars(cfg.LegacyClub.Salt)
	}
	if cfg.Database != nil {
		cfg.Database.URL = SubstituteEnvVars(cfg.Database.URL)
	}
}

// applyEnvironmentOverrides lets HOUSLER_* variables win over file
// values. Secrets normally arrive this way rather than through YAML.
func applyEnvironmentOverrides(cfg *Config) {
	if v := os.Getenv("HOUSLER_MASTER_KEY"); v != "" {
		cfg.Crypto.MasterKey = v
	}
	if v := os.Getenv("HOUSLER_CRYPTO_SALT"); v != "" {
		cfg.Crypto.Salt = v
	}
	if v := os.Getenv("HOUSLER_CRYPTO_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Crypto.Iterations = n
		}
	}
	if v := os.Getenv("HOUSLER_DATABASE_URL"); v != "" {
		if cfg.Database == nil {
			cfg.Database = &DatabaseConfig{}
			setDefaults(cfg)
		}
		cfg.Database.URL = v
	}
	if v := os.Getenv("HOUSLER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// loadDotEnv loads a .env file if one exists. Missing files are fine.
func loadDotEnv() {
	_ = godotenv.Load()
}

// GetEnvironment returns the current environment from HOUSLER_ENV or
// defaults to development
func GetEnvironment() string {
	if env := os.Getenv("HOUSLER_ENV"); env != "" {
		return env
	}
	return "development"
}

// IsProduction reports whether the current environment is production
func IsProduction() bool {
	return GetEnvironment() == "production"
}
