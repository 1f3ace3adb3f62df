package testsupport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-posts/pkg/model"
	"github.com/goliatone/go-posts/pkg/store"
)

// FixtureTime is the creation timestamp of every store built by NewStore.
var FixtureTime = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// DefaultAttributes are the scaffold fixture values.
var DefaultAttributes = model.Attributes{Name: "Name", Title: "Title", Content: "MyText"}

// NewStore returns a store with a fixed clock and sequential IDs
// ("post-1", "post-2", ...), so rendered output is stable across runs.
func NewStore() *store.Store {
	counter := 0
	return store.New(
		store.WithClock(func() time.Time { return FixtureTime }),
		store.WithIDGenerator(func() string {
			counter++
			return fmt.Sprintf("post-%d", counter)
		}),
	)
}

// CreatePost creates a post through s, failing the test on error.
func CreatePost(t *testing.T, s *store.Store, attrs model.Attributes) model.Post {
	t.Helper()

	post, err := s.Create(Context(), attrs)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

// CreatePosts creates n posts with the same attributes and returns them in
// order.
func CreatePosts(t *testing.T, s *store.Store, n int, attrs model.Attributes) []model.Post {
	t.Helper()

	out := make([]model.Post, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, CreatePost(t, s, attrs))
	}
	return out
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CaptureTemplateOutput executes a render function that writes to an
// io.Writer, returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
