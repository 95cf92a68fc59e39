// internal/workers/matching/match-programs/config.go
package matchprograms

import (
	"time"

	common "admissions-workers/internal/common/config"
)

type Config struct {
	Timeout         time.Duration
	DefaultPageSize int
	MaxPageSize     int
	CatalogLimit    int
}

func LoadConfig(cfg *common.Config) *Config {
	timeout := 30 * time.Second
	if wc, ok := cfg.Workers[TaskType]; ok && wc.Timeout > 0 {
		timeout = time.Duration(wc.Timeout) * time.Millisecond
	}
	return &Config{
		Timeout:         timeout,
		DefaultPageSize: cfg.Matching.DefaultPageSize,
		MaxPageSize:     cfg.Matching.MaxPageSize,
		CatalogLimit:    0,
	}
}
