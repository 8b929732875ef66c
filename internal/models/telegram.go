package models

import "time"

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// TelegramMessage holds the data for a wake notification.
type TelegramMessage struct {
	Host      string // machine that sent the packets
	StartTime time.Time
	Duration  time.Duration
	Results   []WakeResult
}

// Success reports whether every packet was sent.
func (m TelegramMessage) Success() bool {
	for _, r := range m.Results {
		if r.Status != WakeStatusSent {
			return false
		}
	}
	return true
}

// TelegramResult holds the result of a Telegram notification.
type TelegramResult struct {
	MessageSent bool
	Error       error
}
