package gotemplate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-posts/pkg/render/template"
)

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir   string
	templates fs.FS
	options   []gotemplatepkg.Option
	preHooks  []gotemplatepkg.PreHook
	postHooks []gotemplatepkg.PostHook
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides the default template extension (".tpl").
func WithExtension(ext string) Option {
	return func(cfg *config) {
		if ext = strings.TrimSpace(ext); ext != "" {
			cfg.options = append(cfg.options, gotemplatepkg.WithExtension(ext))
		}
	}
}

// WithTemplateFunc registers pongo2 filters or callable globals.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		if len(funcs) > 0 {
			cfg.options = append(cfg.options, gotemplatepkg.WithTemplateFunc(funcs))
		}
	}
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) > 0 {
			cfg.options = append(cfg.options, gotemplatepkg.WithGlobalData(data))
		}
	}
}

// WithPreHook runs hook before every render. Hooks may rewrite the data or
// the template name.
func WithPreHook(hook gotemplatepkg.PreHook) Option {
	return func(cfg *config) {
		if hook != nil {
			cfg.preHooks = append(cfg.preHooks, hook)
		}
	}
}

// WithPostHook runs hook after every render. Its result replaces the output.
func WithPostHook(hook gotemplatepkg.PostHook) Option {
	return func(cfg *config) {
		if hook != nil {
			cfg.postHooks = append(cfg.postHooks, hook)
		}
	}
}

// Engine satisfies template.TemplateRenderer with a go-template engine. Data
// is converted through its JSON form, so struct fields are addressed by their
// json tags. Compiled templates are cached until Reset. Output is autoescaped.
type Engine struct {
	mu sync.RWMutex

	cfg      config
	renderer *gotemplatepkg.Engine
	rendered map[string]struct{}
}

var (
	_ template.TemplateRenderer = (*Engine)(nil)
	_ template.Reloader         = (*Engine)(nil)
)

// New constructs an Engine. Either WithBaseDir or WithFS is required.
func New(options ...Option) (*Engine, error) {
	cfg := config{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("gotemplate: need to provide either base dir or fs.FS")
	}

	renderer, err := cfg.build()
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		renderer: renderer,
		rendered: make(map[string]struct{}),
	}, nil
}

func (cfg config) build() (*gotemplatepkg.Engine, error) {
	options := []gotemplatepkg.Option{
		gotemplatepkg.WithTemplateFunc(map[string]any{"squish": filterSquish}),
	}
	if cfg.baseDir != "" {
		options = append(options, gotemplatepkg.WithBaseDir(cfg.baseDir))
	}
	if cfg.templates != nil {
		options = append(options, gotemplatepkg.WithFS(cfg.templates))
	}
	options = append(options, cfg.options...)

	renderer, err := gotemplatepkg.NewRenderer(options...)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: %w", err)
	}
	for _, hook := range cfg.preHooks {
		renderer.RegisterPreHook(hook)
	}
	for _, hook := range cfg.postHooks {
		renderer.RegisterPostHook(hook)
	}
	return renderer, nil
}

func (e *Engine) current() (*gotemplatepkg.Engine, error) {
	if e == nil {
		return nil, errors.New("gotemplate: engine is nil")
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.renderer == nil {
		return nil, errors.New("gotemplate: engine is nil")
	}
	return e.renderer, nil
}

// Render treats name as inline template content when it contains template
// delimiters, otherwise as a template path.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") || strings.Contains(name, "{%") {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate renders the named template, appending the configured
// extension when missing. The result is returned and copied to every writer.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	renderer, err := e.current()
	if err != nil {
		return "", err
	}
	result, err := renderer.RenderTemplate(name, data, out...)
	if err != nil {
		return "", fmt.Errorf("gotemplate: %w", err)
	}

	e.mu.Lock()
	e.rendered[name] = struct{}{}
	e.mu.Unlock()
	return result, nil
}

// RenderString compiles and renders inline template content. Inline templates
// are not cached.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	renderer, err := e.current()
	if err != nil {
		return "", err
	}
	result, err := renderer.RenderString(templateContent, data, out...)
	if err != nil {
		return "", fmt.Errorf("gotemplate: %w", err)
	}
	return result, nil
}

// RegisterFilter registers a filter. pongo2 filters are process-wide, so a
// name can only be registered once.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}
	renderer, err := e.current()
	if err != nil {
		return err
	}
	if err := renderer.RegisterFilter(name, fn); err != nil {
		return fmt.Errorf("gotemplate: %w", err)
	}
	return nil
}

// GlobalContext merges data into the values every template can read. Values
// survive Reset.
func (e *Engine) GlobalContext(data any) error {
	renderer, err := e.current()
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	if err := renderer.GlobalContext(data); err != nil {
		return fmt.Errorf("gotemplate: %w", err)
	}

	globals, ok := data.(map[string]any)
	if !ok {
		if globals, err = gotemplatepkg.ConvertToContext(data); err != nil {
			return fmt.Errorf("gotemplate: %w", err)
		}
	}
	e.mu.Lock()
	e.cfg.options = append(e.cfg.options, gotemplatepkg.WithGlobalData(globals))
	e.mu.Unlock()
	return nil
}

// Reset drops every compiled template so the next render reads templates from
// their source again.
func (e *Engine) Reset() {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	renderer, err := e.cfg.build()
	if err != nil {
		// keep the previous engine when the source cannot be reopened
		return
	}
	e.renderer = renderer
	e.rendered = make(map[string]struct{})
}

// Cached reports how many distinct templates were rendered since construction
// or the last Reset.
func (e *Engine) Cached() int {
	if e == nil {
		return 0
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rendered)
}

// filterSquish collapses runs of whitespace (including newlines) into single
// spaces so multi-line content fits one line of a text table.
func filterSquish(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.Join(strings.Fields(in.String()), " ")), nil
}
