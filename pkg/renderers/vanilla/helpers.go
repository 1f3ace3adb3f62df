package vanilla

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-posts/pkg/model"
	"github.com/goliatone/go-posts/pkg/render"
)

type postView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	ContentHTML string `json:"content_html"`
	Path        string `json:"path"`
	EditPath    string `json:"edit_path"`
}

type formView struct {
	Action         string      `json:"action"`
	MethodOverride string      `json:"method_override,omitempty"`
	Errors         errorsView  `json:"errors"`
	Fields         []fieldView `json:"fields"`
	Submit         string      `json:"submit"`
}

type errorsView struct {
	Count    int      `json:"count"`
	Summary  string   `json:"summary,omitempty"`
	Messages []string `json:"messages,omitempty"`
}

type fieldView struct {
	Name      string   `json:"name"`
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Value     string   `json:"value"`
	Kind      string   `json:"kind"`
	InputName string   `json:"input_name"`
	Errors    []string `json:"errors,omitempty"`
}

type themeView struct {
	Name         string `json:"name,omitempty"`
	Variant      string `json:"variant,omitempty"`
	CSSVarsStyle string `json:"css_vars_style,omitempty"`
}

func (r *Renderer) postPath(post model.Post) string {
	return r.basePath + "/" + url.PathEscape(post.ID)
}

func (r *Renderer) buildPostView(post model.Post) postView {
	path := r.postPath(post)
	return postView{
		ID:          post.ID,
		Name:        post.Name,
		Title:       post.Title,
		Content:     post.Content,
		ContentHTML: r.sanitizer(post.Content),
		Path:        path,
		EditPath:    path + "/edit",
	}
}

func (r *Renderer) buildPostViews(posts []model.Post) []postView {
	out := make([]postView, 0, len(posts))
	for _, post := range posts {
		out = append(out, r.buildPostView(post))
	}
	return out
}

func (r *Renderer) buildFormView(view render.View, post *model.Post, options render.RenderOptions) formView {
	var attrs model.Attributes
	if post != nil {
		attrs = post.Attributes()
	}
	attrs = attrs.Merge(options.Values)

	form := formView{
		Action: r.basePath,
		Submit: "Create Post",
	}
	if view == render.ViewEdit && post != nil {
		form.Action = r.postPath(*post)
		form.MethodOverride = "patch"
		form.Submit = "Update Post"
	}
	if override := methodOverride(options.Method); override != "" {
		form.MethodOverride = override
	}

	mapping := render.MapErrorPayload(options.Errors)
	if count := mapping.Count(); count > 0 {
		form.Errors = errorsView{
			Count:    count,
			Summary:  errorSummary(count),
			Messages: mapping.FullMessages(),
		}
	}

	for _, name := range model.Fields {
		value, _ := attrs.Get(name)
		kind := "text"
		if name == model.FieldContent {
			kind = "textarea"
		}
		form.Fields = append(form.Fields, fieldView{
			Name:      name,
			ID:        "post_" + name,
			Label:     model.Humanize(name),
			Value:     value,
			Kind:      kind,
			InputName: "post[" + name + "]",
			Errors:    mapping.Fields[name],
		})
	}
	return form
}

// methodOverride returns the _method value for verbs browsers cannot submit.
func methodOverride(method string) string {
	switch verb := strings.ToLower(strings.TrimSpace(method)); verb {
	case "patch", "put", "delete":
		return verb
	default:
		return ""
	}
}

func errorSummary(count int) string {
	noun := "errors"
	if count == 1 {
		noun = "error"
	}
	return fmt.Sprintf("%d %s prohibited this post from being saved:", count, noun)
}

func buildThemeView(cfg *theme.RendererConfig) themeView {
	if cfg == nil {
		return themeView{}
	}
	return themeView{
		Name:         cfg.Theme,
		Variant:      cfg.Variant,
		CSSVarsStyle: cssVarsStyle(cfg.CSSVars),
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root {\n")
	for _, key := range keys {
		b.WriteString(cssSafe(key))
		b.WriteString(": ")
		b.WriteString(cssSafe(vars[key]))
		b.WriteString(";\n")
	}
	b.WriteString("}")
	return b.String()
}

// cssSafe keeps a declaration from closing the surrounding style element.
func cssSafe(value string) string {
	return strings.NewReplacer("<", "", ">", "", "{", "", "}", "", ";", "").Replace(value)
}

func normalizeBasePath(path string) string {
	trimmed := strings.TrimSpace(path)
	trimmed = strings.TrimRight(trimmed, "/")
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return trimmed
}

func pageTitle(view render.View, post *model.Post) string {
	switch view {
	case render.ViewShow:
		if post != nil && strings.TrimSpace(post.Title) != "" {
			return post.Title
		}
		return "Post"
	case render.ViewNew:
		return "New Post"
	case render.ViewEdit:
		return "Editing Post"
	default:
		return "Posts"
	}
}
