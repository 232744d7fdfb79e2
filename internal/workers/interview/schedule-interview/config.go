// internal/workers/interview/schedule-interview/config.go
package scheduleinterview

import "time"

type Config struct {
	MinDuration time.Duration
	MaxDuration time.Duration
	Timeout     time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MinDuration: 15 * time.Minute,
		MaxDuration: 180 * time.Minute,
		Timeout:     10 * time.Second,
	}
}
