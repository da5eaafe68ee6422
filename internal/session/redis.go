package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "delrio:session:"

// NewRedisClient connects to Redis and pings it. It returns nil when the
// server cannot be reached so callers can fall back to cookie sessions.
func NewRedisClient(addr string, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable", "addr", addr, "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// RedisStorage keeps session values in a Redis hash. The browser only holds
// the sealed session id.
type RedisStorage struct {
	client *redis.Client
	ids    idCookie
}

func NewRedisStorage(client *redis.Client, codec *Codec, options CookieOptions) *RedisStorage {
	return &RedisStorage{client: client, ids: idCookie{codec: codec, options: options.withDefaults()}}
}

func (s *RedisStorage) Load(r *http.Request) (Values, error) {
	id, err := s.ids.read(r)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return Values{}, nil
	}

	stored, err := s.client.HGetAll(r.Context(), redisKeyPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	return Values(stored), nil
}

// Save writes values under a fresh id and deletes the hash of the id the
// request carried in the same transaction.
func (s *RedisStorage) Save(w http.ResponseWriter, r *http.Request, values Values) error {
	previous, _ := s.ids.read(r)
	id := uuid.NewString()

	key := redisKeyPrefix + id
	fields := make(map[string]any, len(values))
	for k, v := range values {
		fields[k] = v
	}

	_, err := s.client.TxPipelined(r.Context(), func(pipe redis.Pipeliner) error {
		if previous != "" {
			pipe.Del(r.Context(), redisKeyPrefix+previous)
		}
		if len(fields) > 0 {
			pipe.HSet(r.Context(), key, fields)
			pipe.Expire(r.Context(), key, s.ids.options.TTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}

	return s.ids.write(w, id)
}

func (s *RedisStorage) Clear(w http.ResponseWriter, r *http.Request) error {
	id, _ := s.ids.read(r)
	s.ids.expire(w)
	if id == "" {
		return nil
	}

	if err := s.client.Del(r.Context(), redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("clear session %s: %w", id, err)
	}
	return nil
}
