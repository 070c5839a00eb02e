package helpers

import (
	"time"

	"github.com/yigit/coursebot/internal/pkg/logger"
)

// ParseDuration parses a duration string. Unparsable or non-positive values
// yield defaultDuration.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		logger.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	if duration <= 0 {
		logger.Warn().Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Duration must be positive, using default")
		return defaultDuration
	}
	return duration
}
