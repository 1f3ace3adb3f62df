package watch_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/goliatone/go-posts/pkg/watch"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu      sync.Mutex
	batches [][]string
	signal  chan struct{}
}

func newRecorder() *recorder {
	return &recorder{signal: make(chan struct{}, 16)}
}

func (r *recorder) onChange(_ context.Context, changed []string) {
	r.mu.Lock()
	r.batches = append(r.batches, changed)
	r.mu.Unlock()
	r.signal <- struct{}{}
}

func (r *recorder) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-r.signal:
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for change")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches[len(r.batches)-1]
}

func fastOptions(t *testing.T) []watch.Option {
	return []watch.Option{
		watch.WithDebounce(30 * time.Millisecond),
		watch.WithTick(10 * time.Millisecond),
		watch.WithLogger(zaptest.NewLogger(t)),
	}
}

func TestWatcher_ReportsDirectoryChanges(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()

	w, err := watch.New([]string{dir}, rec.onChange, append(fastOptions(t), watch.WithExtensions("tmpl"))...)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	target := filepath.Join(dir, "index.tmpl")
	require.NoError(t, os.WriteFile(target, []byte("<h1>Posts</h1>"), 0o644))

	changed := rec.wait(t)
	abs, err := filepath.Abs(target)
	require.NoError(t, err)
	assert.Equal(t, []string{abs}, changed)

	stats := w.Stats()
	assert.GreaterOrEqual(t, stats.Events, 1)
	assert.GreaterOrEqual(t, stats.Batches, 1)
}

func TestWatcher_ReportsWatchedFileOnly(t *testing.T) {
	dir := t.TempDir()
	fixtures := filepath.Join(dir, "posts.yml")
	require.NoError(t, os.WriteFile(fixtures, []byte("one: {}\n"), 0o644))
	rec := newRecorder()

	w, err := watch.New([]string{fixtures}, rec.onChange, fastOptions(t)...)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(fixtures, []byte("one: {name: Name}\n"), 0o644))

	changed := rec.wait(t)
	abs, err := filepath.Abs(fixtures)
	require.NoError(t, err)
	assert.Equal(t, []string{abs}, changed)
}

func TestWatcher_StopsOnContextCancel(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()

	w, err := watch.New([]string{dir}, rec.onChange, fastOptions(t)...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Start(ctx))
	cancel()

	w.Stop()
	w.Stop()
	goleak.VerifyNone(t)
}

func TestWatcher_RestartsAfterContextCancel(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()

	w, err := watch.New([]string{dir}, rec.onChange, fastOptions(t)...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	assert.True(t, w.Running())
	cancel()
	require.Eventually(t, func() bool { return !w.Running() }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()
	assert.True(t, w.Running())

	target := filepath.Join(dir, "show.tmpl")
	require.NoError(t, os.WriteFile(target, []byte("<p>Name</p>"), 0o644))

	changed := rec.wait(t)
	abs, err := filepath.Abs(target)
	require.NoError(t, err)
	assert.Equal(t, []string{abs}, changed)
}

func TestNew_Errors(t *testing.T) {
	_, err := watch.New([]string{t.TempDir()}, nil)
	assert.Error(t, err)

	_, err = watch.New(nil, func(context.Context, []string) {})
	assert.Error(t, err)

	_, err = watch.New([]string{filepath.Join(t.TempDir(), "missing")}, func(context.Context, []string) {})
	assert.Error(t, err)
}
