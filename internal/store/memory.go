package store

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/ItzYourBread/cashmash-sub000/internal/models"
)

// MemoryStore mirrors the Redis store's behavior for tests and local runs.
type MemoryStore struct {
	mu              sync.RWMutex
	accounts        map[int64]*models.Account
	history         map[int64][]models.HistoryEntry
	rates           map[string]*rateWindow
	startingBalance float64
	startingChips   float64
}

type rateWindow struct {
	count   int
	resetAt time.Time
}

func NewMemoryStore(startingBalance, startingChips float64) *MemoryStore {
	return &MemoryStore{
		accounts:        make(map[int64]*models.Account),
		history:         make(map[int64][]models.HistoryEntry),
		rates:           make(map[string]*rateWindow),
		startingBalance: startingBalance,
		startingChips:   startingChips,
	}
}

func (s *MemoryStore) Account(ctx context.Context, userID int64) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok {
		account = models.NewAccount(userID, s.startingBalance, s.startingChips)
		s.accounts[userID] = account
	}

	cp := *account
	return &cp, nil
}

func (s *MemoryStore) Save(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account.UpdatedAt = time.Now()
	cp := *account
	s.accounts[account.UserID] = &cp
	return nil
}

func (s *MemoryStore) AccountIDs(ctx context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemoryStore) AppendHistory(ctx context.Context, entry models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := append(s.history[entry.UserID], entry)
	if len(list) > HistoryCap {
		list = list[len(list)-HistoryCap:]
	}
	s.history[entry.UserID] = list
	return nil
}

func (s *MemoryStore) History(ctx context.Context, userID int64, limit int64) ([]models.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.history[userID]
	if limit <= 0 || limit > HistoryCap {
		limit = 50
	}

	// Most recent first, matching the Redis ZRevRange ordering.
	out := make([]models.HistoryEntry, 0, limit)
	for i := len(list) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		out = append(out, list[i])
	}
	return out, nil
}

func (s *MemoryStore) CheckRateLimit(ctx context.Context, userID int64, action string, limit int, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := action + ":" + strconv.FormatInt(userID, 10)
	now := time.Now()

	w, ok := s.rates[key]
	if !ok || now.After(w.resetAt) {
		w = &rateWindow{resetAt: now.Add(window)}
		s.rates[key] = w
	}

	w.count++
	return w.count <= limit, nil
}

