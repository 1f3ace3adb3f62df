package orchestrator

import (
	"context"
	"errors"
	"fmt"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-posts/pkg/render"
	"github.com/goliatone/go-posts/pkg/renderers/vanilla"
	"github.com/goliatone/go-posts/pkg/store"
)

const defaultRendererName = "vanilla"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithStore supplies the records requests are resolved against when they do
// not carry assigns of their own.
func WithStore(s *store.Store) Option {
	return func(o *Orchestrator) {
		o.store = s
	}
}

// WithThemeSelector resolves theme and variant names into renderer theme
// configuration ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithThemeFallbacks sets partials used when the selected theme does not
// override them.
func WithThemeFallbacks(fallbacks map[string]string) Option {
	return func(o *Orchestrator) {
		o.themeFallbacks = copyStringMap(fallbacks)
	}
}

// WithLogger attaches a logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates record resolution and rendering. It applies
// sensible defaults (vanilla renderer, embedded templates) while remaining
// open to dependency injection.
type Orchestrator struct {
	registry        *render.Registry
	defaultRenderer string
	store           *store.Store
	themeSelector   theme.ThemeSelector
	themeFallbacks  map[string]string
	logger          *zap.Logger
	initialiseErr   error
	defaultsApplied bool
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes a single page render.
type Request struct {
	// View selects the page.
	View render.View

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// Assigns carries the records to render. When Posts is nil on index, every
	// stored post is listed. When Post is nil on show or edit, PostKey is
	// looked up in the store.
	Assigns render.Assigns

	// PostKey is a fixture label or post ID.
	PostKey string

	// RenderOptions carries notices, form values and errors.
	RenderOptions render.RenderOptions

	// ThemeName and ThemeVariant are passed to the theme selector. Ignored
	// when RenderOptions.Theme is already set.
	ThemeName    string
	ThemeVariant string
}

// Render resolves assigns, renderer and theme, then renders req.View.
func (o *Orchestrator) Render(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !o.defaultsApplied {
		o.applyDefaults()
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	view, err := render.ParseView(string(req.View))
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	renderer, err := o.rendererFor(req.Renderer, view)
	if err != nil {
		return nil, err
	}

	assigns, err := o.resolveAssigns(ctx, view, req)
	if err != nil {
		return nil, err
	}

	options := req.RenderOptions
	if options.Theme == nil {
		cfg, err := o.resolveTheme(req.ThemeName, req.ThemeVariant)
		if err != nil {
			return nil, err
		}
		options.Theme = cfg
	}

	output, err := renderer.Render(ctx, view, assigns, options)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}

	o.logger.Debug("rendered view",
		zap.String("view", string(view)),
		zap.String("renderer", renderer.Name()),
		zap.Int("posts", len(assigns.Posts)),
		zap.Int("bytes", len(output)),
	)
	return output, nil
}

// ContentType reports the content type of the renderer a request would use.
func (o *Orchestrator) ContentType(name string) (string, error) {
	renderer, err := o.rendererFor(name, "")
	if err != nil {
		return "", err
	}
	return renderer.ContentType(), nil
}

func (o *Orchestrator) resolveAssigns(ctx context.Context, view render.View, req Request) (render.Assigns, error) {
	assigns := req.Assigns

	switch view {
	case render.ViewIndex:
		if assigns.Posts == nil && o.store != nil {
			posts, err := o.store.List(ctx)
			if err != nil {
				return render.Assigns{}, fmt.Errorf("orchestrator: list posts: %w", err)
			}
			assigns.Posts = posts
		}
	case render.ViewShow, render.ViewEdit:
		if assigns.Post == nil && req.PostKey != "" {
			if o.store == nil {
				return render.Assigns{}, errors.New("orchestrator: post key given without a store")
			}
			post, err := store.Lookup(ctx, o.store, req.PostKey)
			if err != nil {
				return render.Assigns{}, fmt.Errorf("orchestrator: lookup %q: %w", req.PostKey, err)
			}
			assigns.Post = &post
		}
	}
	return assigns, nil
}

// rendererFor picks the named renderer, else the default one. When the
// default is not registered the first renderer declaring view is used.
func (o *Orchestrator) rendererFor(name string, view render.View) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}
	if target != "" {
		renderer, err := o.registry.For(target, view)
		if err == nil {
			return renderer, nil
		}
		if name != "" || !errors.Is(err, render.ErrUnknownRenderer) {
			return nil, fmt.Errorf("orchestrator: %w", err)
		}
	}

	names := o.registry.Supporting(view)
	if len(names) == 0 {
		if view == "" {
			return nil, errors.New("orchestrator: no renderers registered")
		}
		return nil, fmt.Errorf("orchestrator: no renderer for %s: %w", view, render.ErrUnsupportedView)
	}
	return o.registry.For(names[0], view)
}

func (o *Orchestrator) applyDefaults() {
	if o.defaultsApplied {
		return
	}

	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	o.defaultsApplied = true
}
