package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"

	"github.com/redis/go-redis/v9"

	"github.com/mohammad-safakhou/daybrief/config"
	"github.com/mohammad-safakhou/daybrief/internal/report"
)

const (
	reportKeyPrefix = "report:"
	latestKey       = "report:latest"
)

// RedisStore keeps one report per run date plus a pointer to the latest.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects and pings Redis.
func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) LoadPrevious(ctx context.Context) (report.Report, bool, error) {
	key, err := s.client.Get(ctx, latestKey).Result()
	if errors.Is(err, redis.Nil) {
		return report.Report{}, false, nil
	}
	if err != nil {
		return report.Report{}, false, fmt.Errorf("resolving latest report: %w", err)
	}
	data, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return report.Report{}, false, nil
	}
	if err != nil {
		return report.Report{}, false, fmt.Errorf("loading report %s: %w", key, err)
	}
	var rep report.Report
	if err := json.Unmarshal([]byte(data), &rep); err != nil {
		return report.Report{}, false, fmt.Errorf("parsing report %s: %w", key, err)
	}
	return rep, true, nil
}

func (s *RedisStore) Save(ctx context.Context, rep report.Report) error {
	key := reportKeyPrefix + rep.Date.Format("20060102")
	data, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	if err := s.client.Set(ctx, latestKey, key, 0).Err(); err != nil {
		return fmt.Errorf("updating latest pointer: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }
