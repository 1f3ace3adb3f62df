package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-posts/pkg/model"
)

// View names a page of the posts resource.
type View string

const (
	ViewIndex View = "index"
	ViewShow  View = "show"
	ViewNew   View = "new"
	ViewEdit  View = "edit"
)

// Views lists every view in scaffold order.
var Views = []View{ViewIndex, ViewShow, ViewNew, ViewEdit}

var (
	// ErrUnknownView is returned for view names outside Views.
	ErrUnknownView = errors.New("render: unknown view")
	// ErrUnsupportedView is returned when a renderer does not implement a view.
	ErrUnsupportedView = errors.New("render: view not supported by renderer")
	// ErrMissingPost is returned when a single-record view has no post assigned.
	ErrMissingPost = errors.New("render: post assign is required")
)

// ParseView resolves a view name.
func ParseView(name string) (View, error) {
	candidate := View(strings.ToLower(strings.TrimSpace(name)))
	for _, view := range Views {
		if view == candidate {
			return view, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, name)
}

// Assigns binds records to a rendering context. Listing views read Posts;
// detail and form views read Post. A nil Post on new renders an empty form.
type Assigns struct {
	Posts []model.Post
	Post  *model.Post
}

// Check reports whether assigns carry what view needs.
func (a Assigns) Check(view View) error {
	switch view {
	case ViewIndex, ViewNew:
		return nil
	case ViewShow, ViewEdit:
		if a.Post == nil {
			return fmt.Errorf("%w: %s", ErrMissingPost, view)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownView, string(view))
	}
}

// Renderer converts assigned posts into a byte representation (HTML, text).
type Renderer interface {
	Name() string
	ContentType() string
	Views() []View
	Render(ctx context.Context, view View, assigns Assigns, options RenderOptions) ([]byte, error)
}

// Supports reports whether renderer declares view.
func Supports(renderer Renderer, view View) bool {
	if renderer == nil {
		return false
	}
	for _, candidate := range renderer.Views() {
		if candidate == view {
			return true
		}
	}
	return false
}
