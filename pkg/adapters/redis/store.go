package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/bpmngen/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.DiagramStore using a Redis hash.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration of the stored diagram.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "bpmngen:diagram:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key() string {
	return s.prefix + "latest"
}

// Save replaces the stored diagram atomically.
func (s *Store) Save(ctx context.Context, diagram *domain.Diagram) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key())
	pipe.HSet(ctx, s.key(),
		"token", strconv.FormatUint(diagram.Token, 10),
		"name", diagram.Name,
		"compiled_at", diagram.CompiledAt.Format(time.RFC3339Nano),
		"markup", diagram.Markup,
	)
	if s.ttl > 0 {
		pipe.Expire(ctx, s.key(), s.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Latest retrieves the stored diagram.
func (s *Store) Latest(ctx context.Context) (*domain.Diagram, error) {
	fields, err := s.client.HGetAll(ctx, s.key()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	markup, ok := fields["markup"]
	if !ok {
		return nil, domain.ErrNoDiagram
	}

	token, err := strconv.ParseUint(fields["token"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid stored token: %w", err)
	}
	compiledAt, err := time.Parse(time.RFC3339Nano, fields["compiled_at"])
	if err != nil {
		return nil, fmt.Errorf("invalid stored timestamp: %w", err)
	}

	return &domain.Diagram{
		Token:      token,
		Name:       fields["name"],
		Markup:     markup,
		CompiledAt: compiledAt,
	}, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
