package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-posts/pkg/model"
)

// ErrorMapping splits an error payload into attribute-level and record-level
// messages.
type ErrorMapping struct {
	Fields map[string][]string
	Base   []string
}

// Count returns the total number of messages.
func (m ErrorMapping) Count() int {
	total := len(m.Base)
	for _, messages := range m.Fields {
		total += len(messages)
	}
	return total
}

// FullMessages returns record-level messages prefixed by humanised field
// messages, fields in display order.
func (m ErrorMapping) FullMessages() []string {
	if m.Count() == 0 {
		return nil
	}
	verr := &model.ValidationErrors{}
	for _, field := range model.Fields {
		for _, message := range m.Fields[field] {
			verr.Add(field, message)
		}
	}
	for _, message := range m.Base {
		verr.Add(model.FieldBase, message)
	}
	return verr.FullMessages()
}

// FromValidation converts validation errors into an ErrorMapping.
func FromValidation(verr *model.ValidationErrors) ErrorMapping {
	if verr.Empty() {
		return ErrorMapping{}
	}
	return MapErrorPayload(verr.Map())
}

// MapErrorPayload normalises server error payloads into attribute names.
// Keys may use Rails style brackets (post[name]), JSON pointers
// (/body/post/title), or dotted paths (data.attributes.content). Wrapper
// segments and numeric indexes are ignored. Unknown paths become record-level
// messages so nothing is lost.
func MapErrorPayload(payload map[string][]string) ErrorMapping {
	var mapping ErrorMapping
	if len(payload) == 0 {
		return mapping
	}

	fields := make(map[string][]string)
	for rawPath, messages := range payload {
		normalized := normalizeMessages(messages)
		if len(normalized) == 0 {
			continue
		}

		field, base := mapErrorPath(rawPath)
		if base {
			mapping.Base = append(mapping.Base, normalized...)
			continue
		}
		fields[field] = normalizeMessages(append(fields[field], normalized...))
	}

	if len(fields) > 0 {
		mapping.Fields = fields
	}
	mapping.Base = normalizeMessages(mapping.Base)
	return mapping
}

// MergeErrors concatenates and normalises message slices, trimming whitespace
// and removing duplicates while preserving order.
func MergeErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))

	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func mapErrorPath(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isBaseKey(trimmed) {
		return "", true
	}

	segments := parsePathSegments(trimmed)
	if len(segments) == 0 {
		return "", true
	}

	noWrappers := dropWrapperSegments(segments)
	for _, variant := range [][]string{segments, noWrappers, stripNumericSegments(noWrappers)} {
		if len(variant) != 1 {
			continue
		}
		if field := strings.ToLower(variant[0]); isAttribute(field) {
			return field, false
		}
	}
	return "", true
}

func parsePathSegments(path string) []string {
	if path == "" {
		return nil
	}

	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$/")
	clean = strings.TrimPrefix(clean, "$.")
	for strings.HasPrefix(clean, "#") || strings.HasPrefix(clean, "/") || strings.HasPrefix(clean, ".") || strings.HasPrefix(clean, "$") {
		clean = strings.TrimPrefix(clean, "#")
		clean = strings.TrimPrefix(clean, "/")
		clean = strings.TrimPrefix(clean, ".")
		clean = strings.TrimPrefix(clean, "$")
	}

	replacer := strings.NewReplacer("[", ".", "]", "", "//", "/")
	clean = replacer.Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func dropWrapperSegments(segments []string) []string {
	wrappers := map[string]struct{}{
		"body":       {},
		"request":    {},
		"payload":    {},
		"data":       {},
		"attributes": {},
		"post":       {},
		"posts":      {},
	}

	out := segments
	for len(out) > 0 {
		lowered := strings.ToLower(out[0])
		if _, ok := wrappers[lowered]; ok {
			out = out[1:]
			continue
		}
		if _, err := strconv.Atoi(lowered); err == nil && len(out) > 1 {
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func isAttribute(field string) bool {
	for _, candidate := range model.Fields {
		if candidate == field {
			return true
		}
	}
	return false
}

func isBaseKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "base", "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
