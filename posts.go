// Package posts renders the listing and detail pages of a posts resource from
// in-memory records. The root package offers shortcuts over the orchestrator,
// renderer registry and embedded templates.
package posts

import (
	"context"
	"fmt"

	"github.com/goliatone/go-posts/pkg/model"
	"github.com/goliatone/go-posts/pkg/orchestrator"
	"github.com/goliatone/go-posts/pkg/render"
	"github.com/goliatone/go-posts/pkg/renderers/text"
	"github.com/goliatone/go-posts/pkg/renderers/vanilla"
)

// Post aliases model.Post.
type Post = model.Post

// Attributes aliases model.Attributes.
type Attributes = model.Attributes

// RenderOptions describes per-request notices, form values and errors.
type RenderOptions = render.RenderOptions

// Request aliases orchestrator.Request.
type Request = orchestrator.Request

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewRegistry returns a registry holding the HTML (vanilla) and plain-text
// renderers.
func NewRegistry(options ...vanilla.Option) (*render.Registry, error) {
	html, err := vanilla.New(options...)
	if err != nil {
		return nil, fmt.Errorf("posts: html renderer: %w", err)
	}
	plain, err := text.New()
	if err != nil {
		return nil, fmt.Errorf("posts: text renderer: %w", err)
	}

	registry := render.NewRegistry()
	if err := registry.Register(html); err != nil {
		return nil, err
	}
	if err := registry.Register(plain); err != nil {
		return nil, err
	}
	return registry, nil
}

// RenderIndex renders the HTML listing of posts.
func RenderIndex(ctx context.Context, posts []Post, options ...orchestrator.Option) ([]byte, error) {
	if posts == nil {
		posts = []Post{}
	}
	return orchestrator.New(options...).Render(ctx, orchestrator.Request{
		View:    render.ViewIndex,
		Assigns: render.Assigns{Posts: posts},
	})
}

// RenderShow renders the HTML detail page of post.
func RenderShow(ctx context.Context, post Post, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Render(ctx, orchestrator.Request{
		View:    render.ViewShow,
		Assigns: render.Assigns{Post: &post},
	})
}
