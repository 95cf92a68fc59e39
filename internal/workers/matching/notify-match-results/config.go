// internal/workers/matching/notify-match-results/config.go
package notifymatchresults

import (
	"time"

	common "admissions-workers/internal/common/config"
)

type Config struct {
	Timeout           time.Duration
	EmailEnabled      bool
	FromEmail         string
	SMSEnabled        bool
	SMSScoreThreshold float64
}

func LoadConfig(cfg *common.Config) *Config {
	timeout := 30 * time.Second
	if wc, ok := cfg.Workers[TaskType]; ok && wc.Timeout > 0 {
		timeout = time.Duration(wc.Timeout) * time.Millisecond
	}
	return &Config{
		Timeout:           timeout,
		EmailEnabled:      cfg.Notifications.Email.Enabled,
		FromEmail:         cfg.Notifications.Email.FromEmail,
		SMSEnabled:        cfg.Notifications.SMS.Enabled,
		SMSScoreThreshold: cfg.Notifications.SMS.ScoreThreshold,
	}
}
