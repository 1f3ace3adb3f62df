// Package store holds post records in memory for the lifetime of a test or
// CLI invocation. It is the record-construction helper views are exercised
// with: Create validates attributes, assigns an identifier and timestamps, and
// keeps records in insertion order. Nothing is persisted.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-posts/pkg/model"
	"github.com/goliatone/go-posts/pkg/schema"
)

var (
	// ErrNotFound is returned when no post matches the requested ID.
	ErrNotFound = errors.New("store: post not found")
	// ErrDuplicateID is returned when Create is asked to reuse an ID.
	ErrDuplicateID = errors.New("store: duplicate post id")
)

// Validator checks attributes before they are stored.
type Validator interface {
	Validate(attrs model.Attributes) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(attrs model.Attributes) error

// Validate calls f(attrs).
func (f ValidatorFunc) Validate(attrs model.Attributes) error {
	return f(attrs)
}

// Option configures a Store.
type Option func(*Store)

// WithValidator replaces the schema-backed validator.
func WithValidator(validator Validator) Option {
	return func(s *Store) {
		if validator != nil {
			s.validator = validator
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the identifier source.
func WithIDGenerator(next func() string) Option {
	return func(s *Store) {
		if next != nil {
			s.nextID = next
		}
	}
}

// WithLogger attaches a logger for record lifecycle events.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// CreateOption customises a single Create call.
type CreateOption func(*createConfig)

type createConfig struct {
	id string
}

// WithRecordID pins the identifier of the created record.
func WithRecordID(id string) CreateOption {
	return func(cfg *createConfig) {
		cfg.id = strings.TrimSpace(id)
	}
}

// Store is an in-memory, insertion-ordered collection of posts. It is safe for
// concurrent use.
type Store struct {
	mu    sync.RWMutex
	order []string
	posts map[string]model.Post

	validator Validator
	now       func() time.Time
	nextID    func() string
	logger    *zap.Logger
}

// New constructs an empty store. Without WithValidator the embedded schema
// validator is used; if the schema cannot be loaded every Create fails with
// that error.
func New(options ...Option) *Store {
	s := &Store{
		posts:  make(map[string]model.Post),
		now:    func() time.Time { return time.Now().UTC() },
		nextID: func() string { return uuid.New().String() },
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.validator == nil {
		s.validator = ValidatorFunc(func(attrs model.Attributes) error {
			validator, err := schema.Default()
			if err != nil {
				return err
			}
			return validator.Validate(attrs)
		})
	}
	return s
}

// Create validates attrs and appends a new post.
func (s *Store) Create(ctx context.Context, attrs model.Attributes, options ...CreateOption) (model.Post, error) {
	if err := ctx.Err(); err != nil {
		return model.Post{}, err
	}

	cfg := createConfig{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := s.validator.Validate(attrs); err != nil {
		return model.Post{}, fmt.Errorf("store: create: %w", err)
	}

	id := cfg.id
	if id == "" {
		id = s.nextID()
	}
	now := s.now()
	post := model.Post{ID: id, CreatedAt: now, UpdatedAt: now}.Apply(attrs)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posts[id]; exists {
		return model.Post{}, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	s.posts[id] = post
	s.order = append(s.order, id)

	s.logger.Debug("post created", zap.String("id", id), zap.String("title", post.Title))
	return post, nil
}

// Find returns the post with the given ID.
func (s *Store) Find(ctx context.Context, id string) (model.Post, error) {
	if err := ctx.Err(); err != nil {
		return model.Post{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[strings.TrimSpace(id)]
	if !ok {
		return model.Post{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return post, nil
}

// List returns every post in insertion order. The slice is a copy.
func (s *Store) List(ctx context.Context) ([]model.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Post, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.posts[id])
	}
	return out, nil
}

// Update validates attrs and replaces the writable attributes of a post.
func (s *Store) Update(ctx context.Context, id string, attrs model.Attributes) (model.Post, error) {
	if err := ctx.Err(); err != nil {
		return model.Post{}, err
	}
	if err := s.validator.Validate(attrs); err != nil {
		return model.Post{}, fmt.Errorf("store: update: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[strings.TrimSpace(id)]
	if !ok {
		return model.Post{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	post = post.Apply(attrs)
	post.UpdatedAt = s.now()
	s.posts[post.ID] = post

	s.logger.Debug("post updated", zap.String("id", post.ID))
	return post, nil
}

// Delete removes a post.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id = strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.posts, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	s.logger.Debug("post deleted", zap.String("id", id))
	return nil
}

// Len reports the number of stored posts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Reset discards every post.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.posts = make(map[string]model.Post)
}
