// internal/workers/interview/evaluate-session-integrity/config.go
package evaluatesessionintegrity

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
