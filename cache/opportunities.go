// Package cache persists scan results in redis so downstream consumers
// can read recent opportunities or subscribe to a publish channel.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/solanum-labs/arbscan/types"
)

// ErrNotFound is returned when an opportunity id is unknown or its
// entry has expired.
var ErrNotFound = errors.New("opportunity not found")

const (
	keyPrefix = "arbscan:opportunity:"
	recentKey = "arbscan:recent"

	defaultTTL         = 15 * time.Minute
	defaultRecentLimit = 100
)

// Options configures the store. Addr is required; zero values for the
// rest select sane defaults.
type Options struct {
	Addr        string
	Password    string
	DB          int
	TTL         time.Duration
	Channel     string
	RecentLimit int64
	Logger      *zap.Logger
}

// Store writes opportunities to redis with a TTL, maintains a bounded
// recency list and optionally publishes each write to a channel.
type Store struct {
	client      *redis.Client
	ttl         time.Duration
	channel     string
	recentLimit int64
	logger      *zap.Logger
}

func NewStore(opts Options) *Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	recentLimit := opts.RecentLimit
	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		}),
		ttl:         ttl,
		channel:     opts.Channel,
		recentLimit: recentLimit,
		logger:      logger,
	}
}

// Ping verifies the connection. Callers run it once at startup so a
// bad address fails fast instead of on the first scan.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Put stores one opportunity under its id, pushes the id onto the
// recency list and publishes the payload when a channel is configured.
func (s *Store) Put(ctx context.Context, opp types.ArbitrageOpportunity) error {
	raw, err := json.Marshal(opp)
	if err != nil {
		return fmt.Errorf("marshal opportunity %s: %w", opp.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, opportunityKey(opp.ID), raw, s.ttl)
	pipe.LPush(ctx, recentKey, opp.ID)
	pipe.LTrim(ctx, recentKey, 0, s.recentLimit-1)
	if s.channel != "" {
		pipe.Publish(ctx, s.channel, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store opportunity %s: %w", opp.ID, err)
	}
	return nil
}

// PutAll stores a batch, stopping on the first failure.
func (s *Store) PutAll(ctx context.Context, opps []types.ArbitrageOpportunity) error {
	for _, opp := range opps {
		if err := s.Put(ctx, opp); err != nil {
			return err
		}
	}
	return nil
}

// Get loads one opportunity by id.
func (s *Store) Get(ctx context.Context, id string) (types.ArbitrageOpportunity, error) {
	raw, err := s.client.Get(ctx, opportunityKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return types.ArbitrageOpportunity{}, ErrNotFound
	}
	if err != nil {
		return types.ArbitrageOpportunity{}, fmt.Errorf("load opportunity %s: %w", id, err)
	}

	var opp types.ArbitrageOpportunity
	if err := json.Unmarshal(raw, &opp); err != nil {
		return types.ArbitrageOpportunity{}, fmt.Errorf("decode opportunity %s: %w", id, err)
	}
	return opp, nil
}

// Recent returns up to n of the most recently stored opportunities,
// newest first. Ids whose entries have expired are skipped.
func (s *Store) Recent(ctx context.Context, n int64) ([]types.ArbitrageOpportunity, error) {
	if n <= 0 || n > s.recentLimit {
		n = s.recentLimit
	}

	ids, err := s.client.LRange(ctx, recentKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("load recent ids: %w", err)
	}

	opps := make([]types.ArbitrageOpportunity, 0, len(ids))
	for _, id := range ids {
		opp, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		opps = append(opps, opp)
	}
	return opps, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func opportunityKey(id string) string {
	return keyPrefix + id
}
