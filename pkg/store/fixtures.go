package store

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-posts/pkg/model"
)

// fixtureNamespace seeds deterministic fixture identifiers.
var fixtureNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/goliatone/go-posts/fixtures"))

// Fixture pairs a labelled fixture entry with the stored post.
type Fixture struct {
	Label string
	Post  model.Post
}

// FixtureID derives the identifier a labelled fixture is stored under. The
// same label always yields the same ID.
func FixtureID(label string) string {
	return uuid.NewSHA1(fixtureNamespace, []byte(strings.TrimSpace(label))).String()
}

// LoadFixtures reads a YAML document of labelled posts from fsys and creates
// them in label order:
//
//	one:
//	  name: Name
//	  title: Title
//	  content: MyText
//
// Each record is validated like any other Create call.
func LoadFixtures(ctx context.Context, s *Store, fsys fs.FS, path string) ([]Fixture, error) {
	if s == nil {
		return nil, fmt.Errorf("store: fixtures: store is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("store: read fixtures %s: %w", path, err)
	}
	return CreateFixtures(ctx, s, data, path)
}

// CreateFixtures parses a YAML fixture payload and creates its records.
// source is only used in error messages.
func CreateFixtures(ctx context.Context, s *Store, data []byte, source string) ([]Fixture, error) {
	entries := map[string]model.Attributes{}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("store: parse fixtures %s: %w", source, err)
	}

	labels := make([]string, 0, len(entries))
	for label := range entries {
		if strings.TrimSpace(label) == "" {
			return nil, fmt.Errorf("store: fixtures %s: empty label", source)
		}
		labels = append(labels, label)
	}
	sort.Strings(labels)

	out := make([]Fixture, 0, len(labels))
	for _, label := range labels {
		post, err := s.Create(ctx, entries[label], WithRecordID(FixtureID(label)))
		if err != nil {
			return nil, fmt.Errorf("store: fixture %q: %w", label, err)
		}
		out = append(out, Fixture{Label: label, Post: post})
	}
	return out, nil
}

// Lookup resolves key as a fixture label first, then as a post ID.
func Lookup(ctx context.Context, s *Store, key string) (model.Post, error) {
	key = strings.TrimSpace(key)
	if post, err := s.Find(ctx, FixtureID(key)); err == nil {
		return post, nil
	}
	return s.Find(ctx, key)
}
