package render

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownRenderer is returned when no renderer is registered under a name.
var ErrUnknownRenderer = errors.New("render: unknown renderer")

// Registry holds renderers by name and answers which of them can draw a view.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Renderer)}
}

// Register adds renderer under its Name(). Names are unique and every
// declared view must be a known view.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	name := renderer.Name()
	if name == "" {
		return errors.New("render: renderer name is required")
	}
	for _, view := range renderer.Views() {
		if _, err := ParseView(string(view)); err != nil {
			return fmt.Errorf("render: renderer %q: %w", name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	r.renderers[name] = renderer
	return nil
}

// MustRegister panics when Register fails.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get returns the renderer registered as name.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	renderer, ok := r.renderers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRenderer, name)
	}
	return renderer, nil
}

// For returns the renderer registered as name when it declares view. An empty
// view matches any renderer.
func (r *Registry) For(name string, view View) (Renderer, error) {
	renderer, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if view != "" && !Supports(renderer, view) {
		return nil, fmt.Errorf("render: renderer %q: %w: %s", name, ErrUnsupportedView, view)
	}
	return renderer, nil
}

// Supporting lists, sorted, the names of renderers that declare view.
func (r *Registry) Supporting(view View) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var names []string
	for name, renderer := range r.renderers {
		if view == "" || Supports(renderer, view) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// List returns every registered name, sorted.
func (r *Registry) List() []string {
	return r.Supporting("")
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.renderers[name]
	return ok
}
