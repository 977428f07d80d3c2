package tiers

import (
	"strconv"
	"time"

	"github.com/versemind/VerseMind/internal/pkg/env"
)

// TrialConfig holds the globally scoped trial window. While "now" is before
// TrialEnd, every user who selected the standard plan gets standard access
// without a subscription. GracePeriodDays bounds how long a cancelled
// standard subscription keeps its tier.
type TrialConfig struct {
	TrialEnd        time.Time
	GracePeriodDays int
}

// GraceWindow returns the grace period as a duration.
func (c TrialConfig) GraceWindow() time.Duration {
	return time.Duration(c.GracePeriodDays) * 24 * time.Hour
}

// InTrial reports whether the trial window is still open at the given time.
func (c TrialConfig) InTrial(now time.Time) bool {
	return now.Before(c.TrialEnd)
}

// LoadTrialConfig reads the trial window from the environment.
// TRIAL_END is RFC3339; an unset or unparsable value means the trial is over.
func LoadTrialConfig() TrialConfig {
	cfg := TrialConfig{GracePeriodDays: 7}

	if raw := env.GetEnv("TRIAL_END", ""); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			cfg.TrialEnd = ts
		}
	}
	if raw := env.GetEnv("GRACE_PERIOD_DAYS", ""); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil && days >= 0 {
			cfg.GracePeriodDays = days
		}
	}
	return cfg
}
