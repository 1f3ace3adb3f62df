// Package config resolves CLI settings from defaults, .env files, a YAML
// file and POSTS_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	theme "github.com/goliatone/go-theme"
	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	envConfigPath   = "POSTS_CONFIG"
	envRenderer     = "POSTS_RENDERER"
	envTemplates    = "POSTS_TEMPLATES"
	envFixtures     = "POSTS_FIXTURES"
	envOutput       = "POSTS_OUTPUT"
	envBasePath     = "POSTS_BASE_PATH"
	envLogLevel     = "POSTS_LOG_LEVEL"
	envDevelopment  = "POSTS_DEVELOPMENT"
	envTheme        = "POSTS_THEME"
	envThemeVariant = "POSTS_THEME_VARIANT"
	envAssetPrefix  = "POSTS_ASSET_PREFIX"
	envDebounce     = "POSTS_WATCH_DEBOUNCE"

	// DefaultConfigFile is read from the working directory when no path is
	// given and POSTS_CONFIG is unset. Its absence is not an error.
	DefaultConfigFile = "posts.yml"
)

var envFileNames = []string{".env.local", ".env"}

// Renderer names accepted by Validate.
const (
	RendererHTML = "html"
	RendererText = "text"
)

// Config holds CLI settings.
type Config struct {
	Renderer     string      `yaml:"renderer"`
	TemplatesDir string      `yaml:"templates_dir"`
	FixturesPath string      `yaml:"fixtures"`
	Output       string      `yaml:"output"`
	BasePath     string      `yaml:"base_path"`
	LogLevel     string      `yaml:"log_level"`
	Development  bool        `yaml:"development"`
	Theme        ThemeConfig `yaml:"theme"`
	Watch        WatchConfig `yaml:"watch"`
}

// ThemeConfig selects the page theme for HTML output.
type ThemeConfig struct {
	Name        string            `yaml:"name"`
	Variant     string            `yaml:"variant"`
	CSSVars     map[string]string `yaml:"css_vars"`
	AssetPrefix string            `yaml:"asset_prefix"`
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Renderer: RendererHTML,
		BasePath: "/posts",
		LogLevel: "info",
		Watch:    WatchConfig{Debounce: 300 * time.Millisecond},
	}
}

// Load resolves settings. path may be empty, in which case POSTS_CONFIG and
// then DefaultConfigFile are tried; a missing DefaultConfigFile is ignored.
// .env.local and .env next to the config file and in the working directory
// are loaded first without overriding variables already set.
func Load(path string) (Config, error) {
	loadEnvFiles(ResolvePath(path))

	// .env files may set POSTS_CONFIG.
	resolved := ResolvePath(path)
	required := resolved != DefaultConfigFile

	cfg := Default()
	if err := cfg.readFile(resolved, required); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ResolvePath picks the config file: explicit path, then POSTS_CONFIG, then
// DefaultConfigFile.
func ResolvePath(explicit string) string {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return trimmed
	}
	if env := strings.TrimSpace(os.Getenv(envConfigPath)); env != "" {
		return env
	}
	return DefaultConfigFile
}

// Validate checks renderer and log level names.
func (c Config) Validate() error {
	switch c.Renderer {
	case RendererHTML, RendererText:
	default:
		return fmt.Errorf("config: unknown renderer %q (want %s or %s)", c.Renderer, RendererHTML, RendererText)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log level: %w", err)
	}
	if c.Watch.Debounce < 0 {
		return errors.New("config: watch debounce must not be negative")
	}
	return nil
}

// RendererConfig converts the theme settings for renderers. It returns nil
// when no theme is configured.
func (t ThemeConfig) RendererConfig() *theme.RendererConfig {
	if t.Name == "" && t.Variant == "" && len(t.CSSVars) == 0 && t.AssetPrefix == "" {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:   t.Name,
		Variant: t.Variant,
		CSSVars: t.CSSVars,
	}
	if prefix := strings.TrimRight(strings.TrimSpace(t.AssetPrefix), "/"); prefix != "" {
		cfg.AssetURL = func(key string) string {
			if key == "" {
				return ""
			}
			return prefix + "/" + strings.TrimLeft(key, "/")
		}
	}
	return cfg
}

func (c *Config) readFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %q: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Renderer, envRenderer)
	setString(&c.TemplatesDir, envTemplates)
	setString(&c.FixturesPath, envFixtures)
	setString(&c.Output, envOutput)
	setString(&c.BasePath, envBasePath)
	setString(&c.LogLevel, envLogLevel)
	setString(&c.Theme.Name, envTheme)
	setString(&c.Theme.Variant, envThemeVariant)
	setString(&c.Theme.AssetPrefix, envAssetPrefix)

	if raw := strings.TrimSpace(os.Getenv(envDevelopment)); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("config: %s: %w", envDevelopment, err)
		}
		c.Development = value
	}
	if raw := strings.TrimSpace(os.Getenv(envDebounce)); raw != "" {
		value, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("config: %s: %w", envDebounce, err)
		}
		c.Watch.Debounce = value
	}
	return nil
}

func setString(target *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*target = value
	}
}

func loadEnvFiles(configPath string) {
	files := envFileCandidates(configPath)
	if len(files) == 0 {
		return
	}
	_ = godotenv.Load(files...)
}

// envFileCandidates lists existing env files, config directory first, then
// the working directory. godotenv never overrides variables already set, so
// earlier files win.
func envFileCandidates(configPath string) []string {
	var dirs []string
	if configPath != "" {
		dirs = append(dirs, filepath.Dir(configPath))
	}
	if wd, err := os.Getwd(); err == nil {
		dirs = append(dirs, wd)
	}

	seen := make(map[string]struct{})
	var files []string
	for _, dir := range dirs {
		for _, name := range envFileNames {
			candidate, err := filepath.Abs(filepath.Join(dir, name))
			if err != nil {
				continue
			}
			if _, ok := seen[candidate]; ok {
				continue
			}
			if _, err := os.Stat(candidate); err != nil {
				continue
			}
			seen[candidate] = struct{}{}
			files = append(files, candidate)
		}
	}
	return files
}
