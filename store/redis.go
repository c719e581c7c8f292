// Package store provides Redis-backed contact snapshot storage.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	reliosdk "github.com/relio-ai/relio-sdk-go"
)

// RedisContactStore implements reliosdk.ContactStore on Redis.
// Keys are "{prefix}:contact:{id}".
type RedisContactStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	ctx    context.Context
}

// RedisStoreConfig configures the Redis store.
type RedisStoreConfig struct {
	Prefix string        // key prefix, default "relio"
	TTL    time.Duration // snapshot TTL, 0 = no expiry
}

// NewRedisContactStore creates a ContactStore backed by Redis.
func NewRedisContactStore(client redis.UniversalClient, config ...RedisStoreConfig) *RedisContactStore {
	cfg := RedisStoreConfig{Prefix: "relio"}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "relio"
	}
	return &RedisContactStore{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
		ctx:    context.Background(),
	}
}

func (s *RedisContactStore) key(contactID string) string {
	return fmt.Sprintf("%s:contact:%s", s.prefix, contactID)
}

func (s *RedisContactStore) Load(contactID string) (*reliosdk.ContactSnapshot, error) {
	raw, err := s.client.Get(s.ctx, s.key(contactID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", contactID, err)
	}
	var snap reliosdk.ContactSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot %s: %w", contactID, err)
	}
	return &snap, nil
}

func (s *RedisContactStore) Save(snapshot *reliosdk.ContactSnapshot) error {
	if snapshot == nil || snapshot.Contact == nil || snapshot.Contact.ContactID == "" {
		return fmt.Errorf("snapshot missing contact id")
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", snapshot.Contact.ContactID, err)
	}
	if err := s.client.Set(s.ctx, s.key(snapshot.Contact.ContactID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", snapshot.Contact.ContactID, err)
	}
	return nil
}

func (s *RedisContactStore) Delete(contactID string) error {
	if err := s.client.Del(s.ctx, s.key(contactID)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", contactID, err)
	}
	return nil
}

func (s *RedisContactStore) List() ([]string, error) {
	pattern := fmt.Sprintf("%s:contact:*", s.prefix)
	keys, err := s.client.Keys(s.ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("redis keys: %w", err)
	}
	cut := fmt.Sprintf("%s:contact:", s.prefix)
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, cut))
	}
	return ids, nil
}
