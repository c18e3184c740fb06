package domain

import "time"

// HistoryItem is one generated explanation kept in the local history.
type HistoryItem struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"timestamp"`
}

// Favorite is a history item the user pinned.
type Favorite struct {
	ID      string    `json:"id"`
	Topic   string    `json:"topic"`
	Content string    `json:"content"`
	AddedAt time.Time `json:"addedAt"`
}

// UsageStats aggregates how the library has been used.
type UsageStats struct {
	TotalExplanations int            `json:"totalExplanations"`
	Topics            map[string]int `json:"topics"`
	DaysUsed          []string       `json:"daysUsed"`
	LastAccess        *time.Time     `json:"lastAccess"`
}

// Quota describes today's free-use allowance. Remaining is -1 when unlimited.
type Quota struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
	Limit     int  `json:"limit"`
	Used      int  `json:"used"`
}
