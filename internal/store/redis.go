package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"article-catalog/internal/model"

	"github.com/redis/go-redis/v9"
)

const indexKey = "articles:index"

// RedisStore keeps each article as a JSON string under article:<code> and
// tracks the known codes in a set for listing.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects to redisAddr and verifies the connection.
func NewRedisStore(ctx context.Context, redisAddr string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Close() error {
	if s.rdb != nil {
		return s.rdb.Close()
	}
	return nil
}

func (s *RedisStore) Exists(ctx context.Context, code string) (bool, error) {
	n, err := s.rdb.Exists(ctx, articleKey(code)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Save(ctx context.Context, article *model.Article) error {
	data, err := json.Marshal(article)
	if err != nil {
		return err
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, articleKey(article.Code), data, 0)
	pipe.SAdd(ctx, indexKey, article.Code)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Delete(ctx context.Context, code string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, articleKey(code))
	pipe.SRem(ctx, indexKey, code)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Get(ctx context.Context, code string) (*model.Article, error) {
	val, err := s.rdb.Get(ctx, articleKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}

	var article model.Article
	if err := json.Unmarshal(val, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// List reads the index set and fetches every article in one MGET.
// Codes whose value has vanished in between are skipped.
func (s *RedisStore) List(ctx context.Context) ([]model.Article, error) {
	codes, err := s.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}

	articles := []model.Article{}
	if len(codes) == 0 {
		return articles, nil
	}
	sort.Strings(codes)

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = articleKey(code)
	}

	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var a model.Article
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		articles = append(articles, a)
	}
	return articles, nil
}
