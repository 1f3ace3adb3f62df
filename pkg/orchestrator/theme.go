package orchestrator

import (
	"fmt"
	"path"
	"strings"

	theme "github.com/goliatone/go-theme"
)

func (o *Orchestrator) resolveTheme(name, variant string) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	return rendererConfig(selection, o.themeFallbacks), nil
}

// rendererConfig flattens a selection: variant templates, tokens and assets
// override the manifest's, which override fallbacks. Every token is also
// exposed as a "--token" CSS variable.
func rendererConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	if selection == nil {
		return nil
	}

	cfg := &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: copyStringMap(fallbacks),
	}
	tokens := map[string]string{}
	files := map[string]string{}
	prefix := ""

	if manifest := selection.Manifest; manifest != nil {
		if cfg.Theme == "" {
			cfg.Theme = manifest.Name
		}
		cfg.Partials = mergeStringMaps(cfg.Partials, manifest.Templates)
		mergeInto(tokens, manifest.Tokens)
		mergeInto(files, manifest.Assets.Files)
		prefix = manifest.Assets.Prefix

		if v, ok := manifest.Variants[cfg.Variant]; ok {
			cfg.Partials = mergeStringMaps(cfg.Partials, v.Templates)
			mergeInto(tokens, v.Tokens)
			mergeInto(files, v.Assets.Files)
			if v.Assets.Prefix != "" {
				prefix = v.Assets.Prefix
			}
		}
	}

	if len(tokens) > 0 {
		cfg.Tokens = tokens
		cfg.CSSVars = make(map[string]string, len(tokens))
		for key, value := range tokens {
			cfg.CSSVars["--"+strings.TrimPrefix(key, "--")] = value
		}
	}
	cfg.AssetURL = assetResolver(prefix, files)
	return cfg
}

// assetResolver maps asset keys through the manifest file table and joins
// them with prefix. Unknown keys resolve to themselves under prefix, or to ""
// when there is no prefix.
func assetResolver(prefix string, files map[string]string) func(string) string {
	return func(key string) string {
		key = strings.TrimSpace(key)
		if key == "" {
			return ""
		}
		file, ok := files[key]
		if !ok {
			if prefix == "" {
				return ""
			}
			file = key
		}
		if strings.Contains(file, "://") || strings.HasPrefix(file, "/") || prefix == "" {
			return file
		}
		return strings.TrimRight(prefix, "/") + "/" + path.Clean(file)
	}
}

func copyStringMap(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func mergeStringMaps(base, overrides map[string]string) map[string]string {
	if len(overrides) == 0 {
		return base
	}
	if base == nil {
		base = make(map[string]string, len(overrides))
	}
	mergeInto(base, overrides)
	return base
}

func mergeInto(dst, src map[string]string) {
	for key, value := range src {
		dst[key] = value
	}
}
