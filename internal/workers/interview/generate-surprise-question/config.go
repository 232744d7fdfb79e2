// internal/workers/interview/generate-surprise-question/config.go
package generatesurprisequestion

import "time"

type Config struct {
	TimeLimitSecs int
	Timeout       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		TimeLimitSecs: 120,
		Timeout:       20 * time.Second,
	}
}
