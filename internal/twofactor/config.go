package twofactor

import "time"

type Config struct {
	PendingTTL     time.Duration `env:"TWOFACTOR_PENDING_TTL" envDefault:"15m"`
	ActivityWindow time.Duration `env:"SECURITY_ACTIVITY_WINDOW" envDefault:"168h"`
}

func (c Config) withDefaults() Config {
	if c.PendingTTL <= 0 {
		c.PendingTTL = 15 * time.Minute
	}
	if c.ActivityWindow <= 0 {
		c.ActivityWindow = 7 * 24 * time.Hour
	}
	return c
}
