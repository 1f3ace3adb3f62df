package store_test

import (
	"context"
	"fmt"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-posts/pkg/model"
	"github.com/goliatone/go-posts/pkg/store"
)

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newStore() *store.Store {
	counter := 0
	return store.New(
		store.WithClock(func() time.Time { return fixedNow }),
		store.WithIDGenerator(func() string {
			counter++
			return fmt.Sprintf("post-%d", counter)
		}),
	)
}

func TestStore_CreateAssignsIdentityAndTimestamps(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	post, err := s.Create(ctx, model.Attributes{Name: "Name", Title: "Title", Content: "MyText"})
	require.NoError(t, err)

	assert.Equal(t, "post-1", post.ID)
	assert.Equal(t, "Name", post.Name)
	assert.Equal(t, "Title", post.Title)
	assert.Equal(t, "MyText", post.Content)
	assert.Equal(t, fixedNow, post.CreatedAt)
	assert.Equal(t, fixedNow, post.UpdatedAt)
	assert.Equal(t, 1, s.Len())
}

func TestStore_CreateRejectsBlankAttributes(t *testing.T) {
	s := newStore()

	_, err := s.Create(context.Background(), model.Attributes{Name: "Name"})
	require.Error(t, err)

	verr, ok := model.AsValidationErrors(err)
	require.True(t, ok, "expected validation errors, got %v", err)
	assert.Equal(t, []string{"can't be blank"}, verr.Field(model.FieldTitle))
	assert.Equal(t, []string{"can't be blank"}, verr.Field(model.FieldContent))
	assert.Zero(t, s.Len())
}

func TestStore_ListKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := newStore()

	for _, title := range []string{"First", "Second", "Third"} {
		_, err := s.Create(ctx, model.Attributes{Name: "Name", Title: title, Content: "MyText"})
		require.NoError(t, err)
	}

	posts, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "First", posts[0].Title)
	assert.Equal(t, "Second", posts[1].Title)
	assert.Equal(t, "Third", posts[2].Title)

	posts[0].Title = "mutated"
	again, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "First", again[0].Title, "list must return copies")
}

func TestStore_DuplicateRecordID(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	attrs := model.Attributes{Name: "Name", Title: "Title", Content: "MyText"}

	_, err := s.Create(ctx, attrs, store.WithRecordID("fixed"))
	require.NoError(t, err)

	_, err = s.Create(ctx, attrs, store.WithRecordID("fixed"))
	require.ErrorIs(t, err, store.ErrDuplicateID)
}

func TestStore_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	later := fixedNow.Add(time.Hour)
	now := fixedNow
	s := store.New(store.WithClock(func() time.Time { return now }))

	post, err := s.Create(ctx, model.Attributes{Name: "Name", Title: "Title", Content: "MyText"})
	require.NoError(t, err)

	now = later
	updated, err := s.Update(ctx, post.ID, model.Attributes{Name: "Name", Title: "Updated", Content: "MyText"})
	require.NoError(t, err)
	assert.Equal(t, "Updated", updated.Title)
	assert.Equal(t, fixedNow, updated.CreatedAt)
	assert.Equal(t, later, updated.UpdatedAt)

	_, err = s.Update(ctx, post.ID, model.Attributes{Name: "Name", Title: "", Content: "MyText"})
	_, isValidation := model.AsValidationErrors(err)
	assert.True(t, isValidation)

	found, err := s.Find(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", found.Title, "failed update must not change the record")

	require.NoError(t, s.Delete(ctx, post.ID))
	_, err = s.Find(ctx, post.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.Delete(ctx, post.ID), store.ErrNotFound)
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newStore().Create(ctx, model.Attributes{Name: "Name", Title: "Title", Content: "MyText"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	s := newStore()
	_, err := s.Create(ctx, model.Attributes{Name: "Name", Title: "Title", Content: "MyText"})
	require.NoError(t, err)

	s.Reset()
	assert.Zero(t, s.Len())
	posts, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestLoadFixtures_DeterministicIDs(t *testing.T) {
	ctx := context.Background()
	fsys := fstest.MapFS{
		"posts.yml": &fstest.MapFile{Data: []byte(`two:
  name: Name
  title: Title
  content: MyText
one:
  name: Name
  title: Title
  content: MyText
`)},
	}

	s := newStore()
	fixtures, err := store.LoadFixtures(ctx, s, fsys, "posts.yml")
	require.NoError(t, err)
	require.Len(t, fixtures, 2)

	assert.Equal(t, "one", fixtures[0].Label)
	assert.Equal(t, "two", fixtures[1].Label)
	assert.Equal(t, store.FixtureID("one"), fixtures[0].Post.ID)
	assert.Equal(t, store.FixtureID("one"), store.FixtureID(" one "))
	assert.NotEqual(t, store.FixtureID("one"), store.FixtureID("two"))

	byLabel, err := store.Lookup(ctx, s, "two")
	require.NoError(t, err)
	assert.Equal(t, fixtures[1].Post.ID, byLabel.ID)

	byID, err := store.Lookup(ctx, s, fixtures[0].Post.ID)
	require.NoError(t, err)
	assert.Equal(t, "one", fixtureLabel(fixtures, byID.ID))
}

func TestLoadFixtures_InvalidRecord(t *testing.T) {
	fsys := fstest.MapFS{
		"posts.yml": &fstest.MapFile{Data: []byte("broken:\n  name: Name\n")},
	}

	_, err := store.LoadFixtures(context.Background(), newStore(), fsys, "posts.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `fixture "broken"`)
	_, ok := model.AsValidationErrors(err)
	assert.True(t, ok)
}

func TestLoadFixtures_MissingFile(t *testing.T) {
	_, err := store.LoadFixtures(context.Background(), newStore(), fstest.MapFS{}, "missing.yml")
	require.Error(t, err)
}

func fixtureLabel(fixtures []store.Fixture, id string) string {
	for _, fixture := range fixtures {
		if fixture.Post.ID == id {
			return fixture.Label
		}
	}
	return ""
}
