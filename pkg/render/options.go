package render

import theme "github.com/goliatone/go-theme"

// RenderOptions describe per-request data that renderers can use to customise
// their output without touching the assigned records.
type RenderOptions struct {
	// Method overrides the form method. Renderers translate verbs browsers
	// cannot submit (PATCH/PUT/DELETE) into POST plus a hidden _method input.
	Method string
	// Values pre-populates form controls keyed by attribute name, taking
	// precedence over the assigned post.
	Values map[string]any
	// Errors surfaces validation feedback keyed by attribute name. Keys that
	// are not attributes are shown as record-level messages.
	Errors map[string][]string
	// Notice is a one-off status message ("Post was successfully created.").
	Notice string
	// Theme carries resolved theme metadata (name, variant, CSS variables,
	// asset resolver).
	Theme *theme.RendererConfig
}
