package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"taskboard/models"
)

// RedisStore keeps the session under two keys so several machines can share
// one login.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(name string) string {
	if r.prefix == "" {
		return name
	}
	return r.prefix + ":" + name
}

func (r *RedisStore) Load(ctx context.Context) (*Session, error) {
	vals, err := r.client.MGet(ctx, r.key(UserKey), r.key(TokenKey)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	userData, ok := vals[0].(string)
	if !ok || userData == "" {
		return nil, ErrNoSession
	}
	var user models.User
	if err := json.Unmarshal([]byte(userData), &user); err != nil {
		return nil, fmt.Errorf("decode session user: %w", err)
	}
	token, _ := vals[1].(string)
	return &Session{User: user, Token: token}, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	if s == nil {
		return errors.New("nil session")
	}
	userData, err := json.Marshal(s.User)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(UserKey), userData, 0)
		pipe.Set(ctx, r.key(TokenKey), s.Token, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key(UserKey), r.key(TokenKey)).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
