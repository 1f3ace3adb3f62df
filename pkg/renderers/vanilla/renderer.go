package vanilla

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-posts/pkg/render"
	rendertemplate "github.com/goliatone/go-posts/pkg/render/template"
	gotemplate "github.com/goliatone/go-posts/pkg/render/template/gotemplate"
	"github.com/goliatone/go-posts/pkg/sanitize"
)

// DefaultBasePath is where the posts resource is mounted unless overridden.
const DefaultBasePath = "/posts"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	basePath         string
	sanitizer        func(string) string
	stylesheets      []string
	inlineStyles     bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must hold templates/{layout,index,show,new,edit,form}.tmpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
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

// WithBasePath changes the prefix used for generated links and form actions.
func WithBasePath(path string) Option {
	return func(cfg *config) {
		cfg.basePath = normalizeBasePath(path)
	}
}

// WithSanitizer replaces the function that turns post content into markup on
// the show page. The default escapes the content; sanitize.Content keeps a
// small set of inline elements instead.
func WithSanitizer(fn func(string) string) Option {
	return func(cfg *config) {
		if fn != nil {
			cfg.sanitizer = fn
		}
	}
}

// WithStylesheet links an external stylesheet from every page.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(href); trimmed != "" {
			cfg.stylesheets = append(cfg.stylesheets, trimmed)
		}
	}
}

// WithDefaultStyles inlines the embedded stylesheet into every page.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = true
	}
}

// Renderer emits server-rendered HTML pages for the posts resource.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	basePath     string
	sanitizer    func(string) string
	stylesheets  []string
	inlineStyles string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		basePath:   DefaultBasePath,
		sanitizer:  sanitize.Escape,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
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
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	r := &Renderer{
		templates:   renderer,
		basePath:    cfg.basePath,
		sanitizer:   cfg.sanitizer,
		stylesheets: cfg.stylesheets,
	}
	if cfg.inlineStyles {
		r.inlineStyles = defaultStylesheet()
	}
	return r, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Views() []render.View {
	return append([]render.View(nil), render.Views...)
}

// Reset drops cached templates when the underlying engine caches them.
func (r *Renderer) Reset() {
	if reloader, ok := r.templates.(rendertemplate.Reloader); ok {
		reloader.Reset()
	}
}

// Render renders view wrapped in the page layout.
func (r *Renderer) Render(ctx context.Context, view render.View, assigns render.Assigns, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, errors.New("vanilla renderer: template renderer is nil")
	}
	if err := assigns.Check(view); err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}

	data, err := r.viewData(view, assigns, options)
	if err != nil {
		return nil, err
	}

	body, err := r.templates.RenderTemplate("templates/"+string(view), data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render %s: %w", view, err)
	}

	page, err := r.templates.RenderTemplate("templates/layout", map[string]any{
		"title":         pageTitle(view, assigns.Post),
		"body":          strings.TrimSpace(body),
		"theme":         buildThemeView(options.Theme),
		"stylesheets":   r.pageStylesheets(options),
		"inline_styles": r.inlineStyles,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render layout: %w", err)
	}
	return []byte(page), nil
}

func (r *Renderer) viewData(view render.View, assigns render.Assigns, options render.RenderOptions) (map[string]any, error) {
	data := map[string]any{
		"notice":     strings.TrimSpace(options.Notice),
		"index_path": r.indexPath(),
		"new_path":   r.basePath + "/new",
	}

	switch view {
	case render.ViewIndex:
		data["posts"] = r.buildPostViews(assigns.Posts)
	case render.ViewShow:
		data["post"] = r.buildPostView(*assigns.Post)
	case render.ViewNew, render.ViewEdit:
		if assigns.Post != nil {
			data["post"] = r.buildPostView(*assigns.Post)
		}
		form, err := r.templates.RenderTemplate("templates/form", map[string]any{
			"form": r.buildFormView(view, assigns.Post, options),
		})
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: render form: %w", err)
		}
		data["form_html"] = strings.TrimSpace(form)
	}
	return data, nil
}

func (r *Renderer) indexPath() string {
	if r.basePath == "" {
		return "/"
	}
	return r.basePath
}

func (r *Renderer) pageStylesheets(options render.RenderOptions) []string {
	sheets := append([]string(nil), r.stylesheets...)
	if options.Theme != nil && options.Theme.AssetURL != nil {
		if href := strings.TrimSpace(options.Theme.AssetURL(StylesheetName)); href != "" {
			sheets = append(sheets, href)
		}
	}
	return sheets
}
