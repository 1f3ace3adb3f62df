// Package text renders posts as plain text for terminals and logs.
package text

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-posts/pkg/model"
	"github.com/goliatone/go-posts/pkg/render"
	rendertemplate "github.com/goliatone/go-posts/pkg/render/template"
	gotemplate "github.com/goliatone/go-posts/pkg/render/template/gotemplate"
	"github.com/goliatone/go-posts/pkg/sanitize"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	clean            func(string) string
}

// WithTemplatesFS supplies an alternate template bundle holding
// templates/index.tmpl and templates/show.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithStripMarkup removes HTML elements from post values before printing.
func WithStripMarkup() Option {
	return func(cfg *config) {
		cfg.clean = sanitize.Text
	}
}

// Renderer prints the listing as aligned columns and the detail view as
// "Label: value" lines. Post values are printed as entered.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	clean     func(string) string
}

var _ render.Renderer = (*Renderer)(nil)

func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		clean:      func(value string) string { return value },
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("text renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}
	return &Renderer{templates: renderer, clean: cfg.clean}, nil
}

func (r *Renderer) Name() string {
	return "text"
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (r *Renderer) Views() []render.View {
	return []render.View{render.ViewIndex, render.ViewShow}
}

// Reset drops cached templates when the underlying engine caches them.
func (r *Renderer) Reset() {
	if reloader, ok := r.templates.(rendertemplate.Reloader); ok {
		reloader.Reset()
	}
}

func (r *Renderer) Render(ctx context.Context, view render.View, assigns render.Assigns, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, errors.New("text renderer: template renderer is nil")
	}
	if err := assigns.Check(view); err != nil {
		return nil, fmt.Errorf("text renderer: %w", err)
	}

	var data map[string]any
	switch view {
	case render.ViewIndex:
		data = r.indexData(assigns.Posts)
	case render.ViewShow:
		data = map[string]any{
			"notice": options.Notice,
			"post":   r.textPost(*assigns.Post),
		}
	default:
		return nil, fmt.Errorf("text renderer: %w: %s", render.ErrUnsupportedView, view)
	}

	out, err := r.templates.RenderTemplate("templates/"+string(view), data)
	if err != nil {
		return nil, fmt.Errorf("text renderer: render %s: %w", view, err)
	}
	return []byte(out), nil
}

func (r *Renderer) textPost(post model.Post) map[string]string {
	return map[string]string{
		model.FieldName:    r.clean(post.Name),
		model.FieldTitle:   r.clean(post.Title),
		model.FieldContent: r.clean(post.Content),
	}
}

func (r *Renderer) indexData(posts []model.Post) map[string]any {
	headers := map[string]string{}
	widths := map[string]int{}
	for _, field := range model.Fields {
		label := model.Humanize(field)
		headers[field] = label
		widths[field] = utf8.RuneCountInString(label)
	}

	rows := make([]map[string]string, 0, len(posts))
	for _, post := range posts {
		row := r.textPost(post)
		for _, field := range model.Fields {
			row[field] = strings.Join(strings.Fields(row[field]), " ")
			if n := utf8.RuneCountInString(row[field]); n > widths[field] {
				widths[field] = n
			}
		}
		rows = append(rows, row)
	}

	return map[string]any{
		"headers": headers,
		"widths":  widths,
		"posts":   rows,
	}
}
