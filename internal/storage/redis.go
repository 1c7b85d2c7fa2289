package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	redisKeyPrefix = "newtab:"
	redisChannel   = "newtab:changes"
)

// RedisStorage implements Store on Redis strings, announcing writes on a
// pub/sub channel.
type RedisStorage struct {
	client *redis.Client
	origin string
	log    zerolog.Logger

	hub       *hub
	subOnce   sync.Once
	subErr    error
	pubsub    *redis.PubSub
	closeOnce sync.Once
}

// Ensure RedisStorage implements Store interface.
var _ Store = (*RedisStorage)(nil)

// NewRedisStorage connects to addr, either host:port or a redis:// URL.
func NewRedisStorage(ctx context.Context, addr string, log zerolog.Logger) (*RedisStorage, error) {
	if addr == "" {
		addr = "localhost:6379"
	}

	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStorage{
		client: client,
		origin: uuid.NewString(),
		log:    log,
		hub:    newHub(),
	}, nil
}

// Get returns the value stored under key.
func (s *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores the value and publishes the key on the change channel.
func (s *RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	payload, err := json.Marshal(notification{Key: key, Origin: s.origin})
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKeyPrefix+key, value, 0)
		pipe.Publish(ctx, redisChannel, payload)
		return nil
	})
	return err
}

// Subscribe joins the change channel.
func (s *RedisStorage) Subscribe(ctx context.Context) (<-chan Change, error) {
	s.subOnce.Do(func() {
		ps := s.client.Subscribe(context.Background(), redisChannel)
		if _, err := ps.Receive(ctx); err != nil {
			ps.Close()
			s.subErr = fmt.Errorf("subscribe %s: %w", redisChannel, err)
			return
		}
		s.pubsub = ps
		go s.dispatch(ps.Channel())
	})
	if s.subErr != nil {
		return nil, s.subErr
	}
	return s.hub.subscribe(ctx), nil
}

// Close closes the subscription and the client.
func (s *RedisStorage) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.pubsub != nil {
			s.pubsub.Close()
		}
		s.hub.close()
		err = s.client.Close()
	})
	return err
}

func (s *RedisStorage) dispatch(msgs <-chan *redis.Message) {
	for msg := range msgs {
		var n notification
		if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
			s.log.Warn().Err(err).Msg("redis notification ignored")
			continue
		}
		if n.Origin == s.origin {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		value, err := s.Get(ctx, n.Key)
		cancel()
		switch {
		case errors.Is(err, ErrNotFound):
			s.hub.publish(Change{Key: n.Key})
		case err != nil:
			s.log.Warn().Err(err).Str("key", n.Key).Msg("redis change fetch failed")
		default:
			s.hub.publish(Change{Key: n.Key, Value: value})
		}
	}
}
