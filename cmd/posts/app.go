package main

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/goliatone/go-posts/internal/config"
	"github.com/goliatone/go-posts/pkg/orchestrator"
	"github.com/goliatone/go-posts/pkg/render"
	rendertemplate "github.com/goliatone/go-posts/pkg/render/template"
	"github.com/goliatone/go-posts/pkg/renderers/text"
	"github.com/goliatone/go-posts/pkg/renderers/vanilla"
	"github.com/goliatone/go-posts/pkg/store"
)

//go:embed fixtures/posts.yml
var defaultFixtures embed.FS

const defaultFixturesPath = "fixtures/posts.yml"

// app holds what every command needs once settings are resolved.
type app struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *store.Store
	registry  *render.Registry
	orch      *orchestrator.Orchestrator
	reloaders []rendertemplate.Reloader
	stdout    io.Writer
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger, stdout io.Writer) (*app, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	vanillaOptions := []vanilla.Option{
		vanilla.WithBasePath(cfg.BasePath),
		vanilla.WithDefaultStyles(),
	}
	if cfg.TemplatesDir != "" {
		vanillaOptions = append(vanillaOptions, vanilla.WithTemplatesDir(cfg.TemplatesDir))
	}
	html, err := vanilla.New(vanillaOptions...)
	if err != nil {
		return nil, err
	}
	plain, err := text.New()
	if err != nil {
		return nil, err
	}

	registry := render.NewRegistry()
	registry.MustRegister(html)
	registry.MustRegister(plain)

	a := &app{
		cfg:       cfg,
		logger:    logger,
		store:     store.New(store.WithLogger(logger.Named("store"))),
		registry:  registry,
		reloaders: []rendertemplate.Reloader{html, plain},
		stdout:    stdout,
	}
	a.orch = orchestrator.New(
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(rendererName(cfg.Renderer)),
		orchestrator.WithStore(a.store),
		orchestrator.WithLogger(logger.Named("render")),
	)

	if err := a.loadFixtures(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// rendererName maps the configured output format to a registered renderer.
func rendererName(format string) string {
	if format == config.RendererText {
		return "text"
	}
	return "vanilla"
}

// loadFixtures replaces the store contents with the configured fixtures.
func (a *app) loadFixtures(ctx context.Context) error {
	a.store.Reset()

	var fsys fs.FS = defaultFixtures
	path := defaultFixturesPath
	if a.cfg.FixturesPath != "" {
		abs, err := filepath.Abs(a.cfg.FixturesPath)
		if err != nil {
			return fmt.Errorf("fixtures: %w", err)
		}
		fsys = os.DirFS(filepath.Dir(abs))
		path = filepath.Base(abs)
	}

	fixtures, err := store.LoadFixtures(ctx, a.store, fsys, path)
	if err != nil {
		return err
	}
	a.logger.Debug("fixtures loaded", zap.String("path", path), zap.Int("count", len(fixtures)))
	return nil
}

// reload drops cached templates and reloads fixtures.
func (a *app) reload(ctx context.Context) error {
	for _, r := range a.reloaders {
		r.Reset()
	}
	return a.loadFixtures(ctx)
}

func (a *app) render(ctx context.Context, req orchestrator.Request) error {
	if req.RenderOptions.Theme == nil {
		req.RenderOptions.Theme = a.cfg.Theme.RendererConfig()
	}
	output, err := a.orch.Render(ctx, req)
	if err != nil {
		return err
	}
	return a.write(output)
}

func (a *app) write(output []byte) error {
	if a.cfg.Output == "" {
		_, err := a.stdout.Write(output)
		return err
	}
	if err := os.WriteFile(a.cfg.Output, output, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	a.logger.Info("output written", zap.String("path", a.cfg.Output), zap.Int("bytes", len(output)))
	return nil
}
