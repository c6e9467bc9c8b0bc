package communication

import "time"

type Config struct {
	Timeout     time.Duration
	FromAddress string
	SenderID    string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		FromAddress: "loans@example.com",
		SenderID:    "LOANS",
	}
}
