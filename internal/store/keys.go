package store

import "time"

const (
	KeyAccount    = "account:%d"
	KeyAccountSet = "accounts"
	KeyHistory    = "account:%d:history"
	KeyHistoryRec = "history:%s"
	KeyRateLimit  = "ratelimit:%d:%s"

	TTLHistory = 30 * 24 * time.Hour

	// Keep only the most recent entries per user.
	HistoryCap = 100
)
