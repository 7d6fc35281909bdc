// Package store persists accounts and outcome history. The Redis
// implementation backs production; the memory implementation backs tests and
// local development without a Redis server.
package store

import (
	"context"
	"time"

	"github.com/ItzYourBread/cashmash-sub000/internal/models"
)

// Store is the persistence boundary consumed by the ledger. Account returns
// a fresh account with the configured starting balances when the user has
// none yet.
type Store interface {
	Account(ctx context.Context, userID int64) (*models.Account, error)
	Save(ctx context.Context, account *models.Account) error
	AccountIDs(ctx context.Context) ([]int64, error)

	AppendHistory(ctx context.Context, entry models.HistoryEntry) error
	History(ctx context.Context, userID int64, limit int64) ([]models.HistoryEntry, error)
}

// RateLimiter is implemented by stores that can count actions per window.
type RateLimiter interface {
	CheckRateLimit(ctx context.Context, userID int64, action string, limit int, window time.Duration) (bool, error)
}
