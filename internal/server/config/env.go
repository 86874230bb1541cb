package config

import "github.com/ilyakaznacheev/cleanenv"

// parseEnv overlays variables from the process environment. Unset variables
// leave the current value untouched.
//
// Recognised variables: ENV, HTTP_ADDR, DATABASE_DSN, JWT_SECRET,
// JWT_REFRESH_SECRET, ACCESS_TOKEN_TTL, REFRESH_TOKEN_TTL, LOGIN_POLICY,
// REQUEST_TIMEOUT. Durations use time.ParseDuration syntax.
func parseEnv(config *Config) error {
	return cleanenv.ReadEnv(config)
}
