// Package config loads and validates service configuration.
package config

import (
	"fmt"
	"strings"
)

// ValidateCore ensures critical configuration is present and in range.
func (c *Config) ValidateCore() error {
	var problems []string

	if strings.TrimSpace(c.Server.Port) == "" {
		problems = append(problems, "SERVER_PORT")
	}
	if c.Settlement.Intermediary < -1 {
		problems = append(problems, "SETTLEMENT_INTERMEDIARY (must be -1 or a party index)")
	}
	if c.Settlement.MaxParties < 1 {
		problems = append(problems, "SETTLEMENT_MAX_PARTIES")
	}
	if c.Settlement.MaxChannels < 1 {
		problems = append(problems, "SETTLEMENT_MAX_CHANNELS")
	}
	if c.Settlement.MaxAmount < 1 {
		problems = append(problems, "SETTLEMENT_MAX_AMOUNT")
	}
	if c.RateLimit.Requests < 1 || c.RateLimit.Window <= 0 {
		problems = append(problems, "RATE_LIMIT_REQUESTS/RATE_LIMIT_WINDOW")
	}

	if len(problems) > 0 {
		return fmt.Errorf("missing or invalid configuration: %s", strings.Join(problems, ", "))
	}

	return nil
}

// RedisEnabled reports whether a redis endpoint is configured.
func (c *Config) RedisEnabled() bool {
	return strings.TrimSpace(c.Redis.URL) != ""
}
