package offer

import "time"

type Config struct {
	Timeout      time.Duration
	ValidityDays int
	SchedulePeek int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		ValidityDays: 30,
		SchedulePeek: 12,
	}
}
