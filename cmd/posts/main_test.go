package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-posts/pkg/prompt"
	"github.com/goliatone/go-posts/pkg/testsupport"
)

var postsEnv = []string{
	"POSTS_CONFIG",
	"POSTS_RENDERER",
	"POSTS_TEMPLATES",
	"POSTS_FIXTURES",
	"POSTS_OUTPUT",
	"POSTS_BASE_PATH",
	"POSTS_DEVELOPMENT",
	"POSTS_THEME",
	"POSTS_THEME_VARIANT",
	"POSTS_ASSET_PREFIX",
	"POSTS_WATCH_DEBOUNCE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range postsEnv {
		t.Setenv(key, "")
	}
	t.Setenv("POSTS_LOG_LEVEL", "error")
}

func run(t *testing.T, state *cliState, args ...string) (string, error) {
	t.Helper()
	clearEnv(t)

	if state == nil {
		state = &cliState{}
	}
	cmd := newRootCommand(state)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestIndexRendersFixturePosts(t *testing.T) {
	out, err := run(t, nil, "index")
	require.NoError(t, err)

	testsupport.AssertSelect(t, out, "tr>td", "Name", 2)
	testsupport.AssertSelect(t, out, "tr>td", "Title", 2)
	testsupport.AssertSelect(t, out, "tr>td", "MyText", 2)
}

func TestIndexTextRenderer(t *testing.T) {
	out, err := run(t, nil, "--renderer", "text", "index")
	require.NoError(t, err)
	assert.Equal(t, "Name  Title  Content\nName  Title  MyText\nName  Title  MyText\n", out)
}

func TestShowFixtureByLabel(t *testing.T) {
	out, err := run(t, nil, "show", "one")
	require.NoError(t, err)

	assert.True(t, testsupport.Match(t, out, "Name"))
	testsupport.AssertSelect(t, out, "p", "Name: Name", 1)
	testsupport.AssertSelect(t, out, "p", "Title: Title", 1)
	testsupport.AssertSelect(t, out, "p", "Content: MyText", 1)
}

func TestShowUnknownPost(t *testing.T) {
	_, err := run(t, nil, "show", "missing")
	require.Error(t, err)
}

func TestNewWithFlagsRendersShowWithNotice(t *testing.T) {
	out, err := run(t, nil, "new", "--name", "Fresh", "--title", "Hello", "--content", "Body")
	require.NoError(t, err)

	assert.Contains(t, out, noticeCreated)
	testsupport.AssertSelect(t, out, "p", "Title: Hello", 1)
}

func TestNewWithBlankTitleRendersFormErrors(t *testing.T) {
	out, err := run(t, nil, "new", "--name", "Fresh", "--content", "Body")
	require.NoError(t, err)

	testsupport.AssertSelect(t, out, "#error_explanation li", "Title can't be blank", 1)
	nodes := testsupport.Select(t, out, "input#post_name")
	require.Len(t, nodes, 1)
	value, _ := testsupport.Attr(nodes[0], "value")
	assert.Equal(t, "Fresh", value)
}

func TestNewInteractiveUsesDriver(t *testing.T) {
	driver := &scriptedDriver{
		inputs:   []string{"Prompted", "From prompt"},
		textarea: "Typed",
		confirm:  true,
	}
	out, err := run(t, &cliState{driver: driver}, "new", "--interactive")
	require.NoError(t, err)

	assert.Contains(t, out, noticeCreated)
	testsupport.AssertSelect(t, out, "p", "Title: From prompt", 1)
	assert.Equal(t, 2, driver.asked)
}

func TestNewInteractiveAborted(t *testing.T) {
	driver := &scriptedDriver{inputs: []string{"a", "b"}, textarea: "c"}
	_, err := run(t, &cliState{driver: driver}, "new", "--interactive")
	require.ErrorIs(t, err, prompt.ErrAborted)
}

func TestEditWithoutFlagsRendersForm(t *testing.T) {
	out, err := run(t, nil, "edit", "two")
	require.NoError(t, err)

	nodes := testsupport.Select(t, out, "input#post_title")
	require.Len(t, nodes, 1)
	value, _ := testsupport.Attr(nodes[0], "value")
	assert.Equal(t, "Title", value)
	assert.Contains(t, out, "Update Post")
}

func TestEditUpdatesPost(t *testing.T) {
	out, err := run(t, nil, "edit", "one", "--title", "Renamed")
	require.NoError(t, err)

	assert.Contains(t, out, noticeUpdated)
	testsupport.AssertSelect(t, out, "p", "Title: Renamed", 1)
	testsupport.AssertSelect(t, out, "p", "Content: MyText", 1)
}

func TestEditInvalidUpdateRendersErrors(t *testing.T) {
	out, err := run(t, nil, "edit", "one", "--content", "")
	require.NoError(t, err)

	testsupport.AssertSelect(t, out, "#error_explanation li", "Content can't be blank", 1)
	testsupport.AssertSelect(t, out, "h1", "Editing Post", 1)
}

func TestRoutesListsOperations(t *testing.T) {
	out, err := run(t, nil, "routes")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "METHOD"))
	assert.Contains(t, out, "listPosts")
	assert.Contains(t, out, "/posts/{id}/edit")
}

func TestOutputFlagWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.html")
	out, err := run(t, nil, "-o", path, "index")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	testsupport.AssertSelect(t, string(data), "tr>td", "MyText", 2)
}

func TestFixturesFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.yml")
	require.NoError(t, os.WriteFile(path, []byte("solo:\n  name: Solo\n  title: Only\n  content: Text\n"), 0o644))

	out, err := run(t, nil, "--fixtures", path, "index")
	require.NoError(t, err)
	testsupport.AssertSelect(t, out, "tr>td", "Only", 1)
	testsupport.AssertSelect(t, out, "tr>td", "MyText", 0)
}

func TestWatchRequiresOutput(t *testing.T) {
	_, err := run(t, nil, "watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--output")
}

func TestUnknownRenderer(t *testing.T) {
	_, err := run(t, nil, "--renderer", "pdf", "index")
	require.Error(t, err)
}

type scriptedDriver struct {
	inputs   []string
	textarea string
	confirm  bool
	asked    int
}

func (d *scriptedDriver) Input(ctx context.Context, cfg prompt.InputConfig) (string, error) {
	value := d.inputs[d.asked]
	d.asked++
	if cfg.Validator != nil {
		if err := cfg.Validator(value); err != nil {
			return "", err
		}
	}
	return value, nil
}

func (d *scriptedDriver) TextArea(ctx context.Context, cfg prompt.TextAreaConfig) (string, error) {
	return d.textarea, nil
}

func (d *scriptedDriver) Confirm(ctx context.Context, cfg prompt.ConfirmConfig) (bool, error) {
	return d.confirm, nil
}

func (d *scriptedDriver) Info(ctx context.Context, msg string) error {
	return nil
}
