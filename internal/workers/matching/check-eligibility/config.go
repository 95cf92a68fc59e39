// internal/workers/matching/check-eligibility/config.go
package checkeligibility

import (
	"time"

	common "admissions-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(cfg *common.Config) *Config {
	timeout := 30 * time.Second
	if wc, ok := cfg.Workers[TaskType]; ok && wc.Timeout > 0 {
		timeout = time.Duration(wc.Timeout) * time.Millisecond
	}
	return &Config{Timeout: timeout}
}
