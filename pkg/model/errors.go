package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ValidationErrors collects attribute-level and record-level validation
// messages. It satisfies error so stores can return it directly; callers
// recover it with AsValidationErrors.
type ValidationErrors struct {
	Fields map[string][]string `json:"fields,omitempty"`
	Base   []string            `json:"base,omitempty"`
}

// Add appends a message for field. Messages for FieldBase or an empty field
// name are recorded as record-level messages. Duplicates are dropped.
func (v *ValidationErrors) Add(field, message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	field = strings.TrimSpace(field)
	if field == "" || field == FieldBase {
		if !contains(v.Base, message) {
			v.Base = append(v.Base, message)
		}
		return
	}
	if v.Fields == nil {
		v.Fields = make(map[string][]string)
	}
	if contains(v.Fields[field], message) {
		return
	}
	v.Fields[field] = append(v.Fields[field], message)
}

// Empty reports whether no messages were recorded.
func (v *ValidationErrors) Empty() bool {
	return v == nil || v.Count() == 0
}

// Count returns the total number of messages.
func (v *ValidationErrors) Count() int {
	if v == nil {
		return 0
	}
	total := len(v.Base)
	for _, messages := range v.Fields {
		total += len(messages)
	}
	return total
}

// Field returns the messages recorded for field.
func (v *ValidationErrors) Field(field string) []string {
	if v == nil {
		return nil
	}
	if field == FieldBase {
		return v.Base
	}
	return v.Fields[field]
}

// FullMessages returns human readable messages, field messages prefixed with
// the humanised field name ("Name can't be blank"). Known fields come first in
// display order, then unknown fields sorted, then record-level messages.
func (v *ValidationErrors) FullMessages() []string {
	if v.Empty() {
		return nil
	}
	out := make([]string, 0, v.Count())
	for _, field := range orderedFields(v.Fields) {
		label := Humanize(field)
		for _, message := range v.Fields[field] {
			out = append(out, label+" "+message)
		}
	}
	out = append(out, v.Base...)
	return out
}

// Map returns the messages keyed by field, record-level messages under
// FieldBase.
func (v *ValidationErrors) Map() map[string][]string {
	if v.Empty() {
		return nil
	}
	out := make(map[string][]string, len(v.Fields)+1)
	for field, messages := range v.Fields {
		out[field] = append([]string(nil), messages...)
	}
	if len(v.Base) > 0 {
		out[FieldBase] = append([]string(nil), v.Base...)
	}
	return out
}

func (v *ValidationErrors) Error() string {
	messages := v.FullMessages()
	if len(messages) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, ", "))
}

// AsValidationErrors unwraps err into *ValidationErrors when possible.
func AsValidationErrors(err error) (*ValidationErrors, bool) {
	var verr *ValidationErrors
	if errors.As(err, &verr) && verr != nil {
		return verr, true
	}
	return nil, false
}

// Humanize turns a field name into a label: "created_at" becomes "Created at".
func Humanize(field string) string {
	field = strings.TrimSpace(strings.ReplaceAll(field, "_", " "))
	if field == "" {
		return ""
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

func orderedFields(fields map[string][]string) []string {
	out := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, field := range Fields {
		if _, ok := fields[field]; ok {
			out = append(out, field)
			seen[field] = struct{}{}
		}
	}
	var rest []string
	for field := range fields {
		if _, ok := seen[field]; !ok {
			rest = append(rest, field)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
