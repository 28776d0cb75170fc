package session

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const keyPrefix = "cashflowbot:session:"

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(addr string, password string, db int, ttl time.Duration) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

func (r *RedisStore) Load(ctx context.Context, key string) (*Session, error) {
	val, err := r.client.Get(ctx, keyPrefix+key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var s Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, key string, s *Session) error {
	if s == nil {
		return nil
	}
	stored := *s
	stored.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, keyPrefix+key, payload, r.ttl).Err()
}

func (r *RedisStore) Clear(ctx context.Context, key string) error {
	return r.client.Del(ctx, keyPrefix+key).Err()
}
