// internal/workers/matching/generate-embedding/config.go
package generateembedding

import "time"

type Config struct {
	CacheTTL time.Duration
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		CacheTTL: 24 * time.Hour,
		Timeout:  30 * time.Second,
	}
}
