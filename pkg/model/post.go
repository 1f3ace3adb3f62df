package model

import "time"

// Attribute names shared by validation, error mapping, and form rendering.
const (
	FieldName    = "name"
	FieldTitle   = "title"
	FieldContent = "content"
	// FieldBase keys record-level messages that do not belong to a field.
	FieldBase = "base"
)

// Fields lists the writable attributes in display order.
var Fields = []string{FieldName, FieldTitle, FieldContent}

// Post is a single record of the posts resource.
type Post struct {
	ID        string    `json:"id" yaml:"id,omitempty"`
	Name      string    `json:"name" yaml:"name"`
	Title     string    `json:"title" yaml:"title"`
	Content   string    `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at,omitempty"`
}

// Attributes is the writable subset of a Post.
type Attributes struct {
	Name    string `json:"name" yaml:"name"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
}

// Attributes returns the writable attributes of the post.
func (p Post) Attributes() Attributes {
	return Attributes{
		Name:    p.Name,
		Title:   p.Title,
		Content: p.Content,
	}
}

// Apply copies attrs onto the post and returns the result. The receiver is not
// modified.
func (p Post) Apply(attrs Attributes) Post {
	p.Name = attrs.Name
	p.Title = attrs.Title
	p.Content = attrs.Content
	return p
}

// Get returns the attribute value for a field name and whether the field
// exists.
func (a Attributes) Get(field string) (string, bool) {
	switch field {
	case FieldName:
		return a.Name, true
	case FieldTitle:
		return a.Title, true
	case FieldContent:
		return a.Content, true
	default:
		return "", false
	}
}

// Map returns the attributes keyed by field name.
func (a Attributes) Map() map[string]any {
	return map[string]any{
		FieldName:    a.Name,
		FieldTitle:   a.Title,
		FieldContent: a.Content,
	}
}

// Merge overrides attributes with non-nil string values from values, keyed by
// field name. Unknown keys and non-string values are ignored.
func (a Attributes) Merge(values map[string]any) Attributes {
	for key, raw := range values {
		value, ok := raw.(string)
		if !ok {
			continue
		}
		switch key {
		case FieldName:
			a.Name = value
		case FieldTitle:
			a.Title = value
		case FieldContent:
			a.Content = value
		}
	}
	return a
}
