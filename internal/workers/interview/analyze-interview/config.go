// internal/workers/interview/analyze-interview/config.go
package analyzeinterview

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 180 * time.Second,
	}
}
