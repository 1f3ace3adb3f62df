package render_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-posts/pkg/model"
	"github.com/goliatone/go-posts/pkg/render"
)

type stubRenderer struct {
	name  string
	views []render.View
}

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }
func (s stubRenderer) Views() []render.View {
	return s.views
}
func (s stubRenderer) Render(context.Context, render.View, render.Assigns, render.RenderOptions) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(stubRenderer{name: "text"})
	registry.MustRegister(stubRenderer{name: "html"})

	if diff := cmp.Diff([]string{"html", "text"}, registry.List()); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
	if !registry.Has("html") {
		t.Fatalf("expected html renderer to be registered")
	}
	renderer, err := registry.Get("text")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if renderer.Name() != "text" {
		t.Fatalf("unexpected renderer %q", renderer.Name())
	}
	if _, err := registry.Get("json"); !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}
}

func TestRegistry_ForAndSupporting(t *testing.T) {
	registry := render.NewRegistry()
	registry.MustRegister(stubRenderer{name: "text", views: []render.View{render.ViewIndex, render.ViewShow}})
	registry.MustRegister(stubRenderer{name: "html", views: render.Views})

	renderer, err := registry.For("text", render.ViewShow)
	if err != nil {
		t.Fatalf("for: %v", err)
	}
	if renderer.Name() != "text" {
		t.Fatalf("unexpected renderer %q", renderer.Name())
	}
	if _, err := registry.For("text", render.ViewEdit); !errors.Is(err, render.ErrUnsupportedView) {
		t.Fatalf("expected ErrUnsupportedView, got %v", err)
	}
	if _, err := registry.For("text", ""); err != nil {
		t.Fatalf("empty view matches any renderer: %v", err)
	}
	if _, err := registry.For("json", render.ViewIndex); !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected ErrUnknownRenderer, got %v", err)
	}

	if diff := cmp.Diff([]string{"html", "text"}, registry.Supporting(render.ViewIndex)); diff != "" {
		t.Fatalf("index renderers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"html"}, registry.Supporting(render.ViewEdit)); diff != "" {
		t.Fatalf("edit renderers mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_RejectsInvalidRenderers(t *testing.T) {
	registry := render.NewRegistry()

	if err := registry.Register(nil); err == nil {
		t.Fatalf("expected error for nil renderer")
	}
	if err := registry.Register(stubRenderer{}); err == nil {
		t.Fatalf("expected error for unnamed renderer")
	}
	registry.MustRegister(stubRenderer{name: "html"})
	if err := registry.Register(stubRenderer{name: "html"}); err == nil {
		t.Fatalf("expected duplicate registration error")
	}

	if err := registry.Register(stubRenderer{name: "pdf", views: []render.View{"destroy"}}); !errors.Is(err, render.ErrUnknownView) {
		t.Fatalf("expected ErrUnknownView for undeclared view, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected MustRegister to panic for a duplicate renderer")
		}
	}()
	registry.MustRegister(stubRenderer{name: "html"})
}

func TestParseView(t *testing.T) {
	view, err := render.ParseView(" Show ")
	if err != nil {
		t.Fatalf("parse view: %v", err)
	}
	if view != render.ViewShow {
		t.Fatalf("unexpected view %q", view)
	}
	if _, err := render.ParseView("destroy"); !errors.Is(err, render.ErrUnknownView) {
		t.Fatalf("expected ErrUnknownView, got %v", err)
	}
}

func TestAssigns_Check(t *testing.T) {
	post := &model.Post{Name: "Name"}

	if err := (render.Assigns{}).Check(render.ViewIndex); err != nil {
		t.Fatalf("index accepts empty assigns: %v", err)
	}
	if err := (render.Assigns{}).Check(render.ViewNew); err != nil {
		t.Fatalf("new accepts empty assigns: %v", err)
	}
	if err := (render.Assigns{}).Check(render.ViewShow); !errors.Is(err, render.ErrMissingPost) {
		t.Fatalf("expected ErrMissingPost for show, got %v", err)
	}
	if err := (render.Assigns{Post: post}).Check(render.ViewEdit); err != nil {
		t.Fatalf("edit with post: %v", err)
	}
	if err := (render.Assigns{}).Check(render.View("destroy")); !errors.Is(err, render.ErrUnknownView) {
		t.Fatalf("expected ErrUnknownView, got %v", err)
	}
}

func TestSupports(t *testing.T) {
	renderer := stubRenderer{name: "text", views: []render.View{render.ViewIndex, render.ViewShow}}
	if !render.Supports(renderer, render.ViewShow) {
		t.Fatalf("expected show to be supported")
	}
	if render.Supports(renderer, render.ViewEdit) {
		t.Fatalf("edit should not be supported")
	}
	if render.Supports(nil, render.ViewIndex) {
		t.Fatalf("nil renderer supports nothing")
	}
}
