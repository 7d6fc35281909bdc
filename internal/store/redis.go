package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ItzYourBread/cashmash-sub000/internal/config"
	"github.com/ItzYourBread/cashmash-sub000/internal/models"
)

type RedisStore struct {
	client          *redis.Client
	startingBalance float64
	startingChips   float64
}

func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisStore{
		client:          client,
		startingBalance: cfg.StartingBalance,
		startingChips:   cfg.StartingChips,
	}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Account(ctx context.Context, userID int64) (*models.Account, error) {
	key := fmt.Sprintf(KeyAccount, userID)

	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		account := models.NewAccount(userID, s.startingBalance, s.startingChips)
		if err := s.Save(ctx, account); err != nil {
			return nil, fmt.Errorf("failed to create account: %v", err)
		}
		return account, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %v", err)
	}

	var account models.Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %v", err)
	}

	return &account, nil
}

func (s *RedisStore) Save(ctx context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now()

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %v", err)
	}

	key := fmt.Sprintf(KeyAccount, account.UserID)
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save account: %v", err)
	}

	return s.client.SAdd(ctx, KeyAccountSet, account.UserID).Err()
}

func (s *RedisStore) AccountIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.client.SMembers(ctx, KeyAccountSet).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %v", err)
	}

	out := make([]int64, 0, len(ids))
	for _, raw := range ids {
		var id int64
		if _, err := fmt.Sscanf(raw, "%d", &id); err == nil {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *RedisStore) AppendHistory(ctx context.Context, entry models.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %v", err)
	}

	recKey := fmt.Sprintf(KeyHistoryRec, entry.ID)
	if err := s.client.Set(ctx, recKey, data, TTLHistory).Err(); err != nil {
		return fmt.Errorf("failed to save history entry: %v", err)
	}

	listKey := fmt.Sprintf(KeyHistory, entry.UserID)
	if err := s.client.ZAdd(ctx, listKey, redis.Z{
		Score:  float64(entry.CreatedAt.UnixNano()),
		Member: entry.ID,
	}).Err(); err != nil {
		return fmt.Errorf("failed to index history entry: %v", err)
	}

	s.client.ZRemRangeByRank(ctx, listKey, 0, int64(-HistoryCap-1))

	return nil
}

func (s *RedisStore) History(ctx context.Context, userID int64, limit int64) ([]models.HistoryEntry, error) {
	if limit <= 0 || limit > HistoryCap {
		limit = 50
	}

	listKey := fmt.Sprintf(KeyHistory, userID)
	ids, err := s.client.ZRevRange(ctx, listKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get history ids: %v", err)
	}

	var entries []models.HistoryEntry
	for _, id := range ids {
		data, err := s.client.Get(ctx, fmt.Sprintf(KeyHistoryRec, id)).Result()
		if err != nil {
			continue
		}

		var entry models.HistoryEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func (s *RedisStore) CheckRateLimit(ctx context.Context, userID int64, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, userID, action)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	if count == 1 {
		s.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}
