// internal/workers/matching/rank-candidate-pool/config.go
package rankcandidatepool

import "time"

type Config struct {
	MaxItems int
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MaxItems: 100,
		Timeout:  10 * time.Second,
	}
}
