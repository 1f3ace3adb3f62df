package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-posts/pkg/model"
)

// Validator checks post attributes against the resource schema.
type Validator struct {
	schema     *openapi3.Schema
	operations []Operation
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
	defaultErr       error
)

// Default returns a validator built from the embedded document. The document
// is loaded once per process.
func Default() (*Validator, error) {
	defaultOnce.Do(func() {
		defaultValidator, defaultErr = NewValidator(context.Background())
	})
	return defaultValidator, defaultErr
}

// NewValidator loads the embedded document.
func NewValidator(ctx context.Context) (*Validator, error) {
	return NewValidatorFromData(ctx, embeddedDocument)
}

// NewValidatorFromData loads a JSON or YAML OpenAPI document that declares the
// PostAttributes component schema.
func NewValidatorFromData(ctx context.Context, raw []byte) (*Validator, error) {
	doc, err := loadDocument(ctx, raw)
	if err != nil {
		return nil, err
	}

	if doc.Components == nil {
		return nil, fmt.Errorf("schema: document has no components")
	}
	ref, ok := doc.Components.Schemas[AttributesSchema]
	if !ok || ref == nil || ref.Value == nil {
		return nil, fmt.Errorf("schema: component %q not found", AttributesSchema)
	}

	return &Validator{
		schema:     ref.Value,
		operations: collectOperations(doc),
	}, nil
}

// Operations lists the operations declared by the document, ordered by path
// and method.
func (v *Validator) Operations() []Operation {
	if v == nil {
		return nil
	}
	return append([]Operation(nil), v.operations...)
}

// Validate returns nil when attrs satisfy the schema, otherwise a
// *model.ValidationErrors keyed by attribute. Values are trimmed before
// length checks so whitespace-only input counts as blank.
func (v *Validator) Validate(attrs model.Attributes) error {
	if v == nil || v.schema == nil {
		return errors.New("schema: validator is not configured")
	}

	payload := map[string]any{
		model.FieldName:    strings.TrimSpace(attrs.Name),
		model.FieldTitle:   strings.TrimSpace(attrs.Title),
		model.FieldContent: strings.TrimSpace(attrs.Content),
	}

	err := v.schema.VisitJSON(payload, openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	verr := &model.ValidationErrors{}
	collectSchemaErrors(verr, err)
	if verr.Empty() {
		verr.Add(model.FieldBase, err.Error())
	}
	return verr
}

// ValidateField checks one attribute value and returns its first message as
// a full sentence ("Name can't be blank").
func (v *Validator) ValidateField(field, value string) error {
	if v == nil || v.schema == nil {
		return errors.New("schema: validator is not configured")
	}
	ref, ok := v.schema.Properties[field]
	if !ok || ref == nil || ref.Value == nil {
		return fmt.Errorf("schema: unknown attribute %q", field)
	}

	err := ref.Value.VisitJSON(strings.TrimSpace(value), openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	// Property schemas report errors at the root pointer, so they land in Base.
	verr := &model.ValidationErrors{}
	collectSchemaErrors(verr, err)
	if len(verr.Base) == 0 {
		return err
	}
	return errors.New(model.Humanize(field) + " " + verr.Base[0])
}

func collectSchemaErrors(target *model.ValidationErrors, err error) {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, item := range multi {
			collectSchemaErrors(target, item)
		}
		return
	}

	var schemaErr *openapi3.SchemaError
	if !errors.As(err, &schemaErr) {
		target.Add(model.FieldBase, err.Error())
		return
	}

	field := model.FieldBase
	if pointer := schemaErr.JSONPointer(); len(pointer) > 0 {
		field = pointer[0]
	}
	target.Add(field, schemaMessage(schemaErr))
}

func schemaMessage(err *openapi3.SchemaError) string {
	switch err.SchemaField {
	case "required", "minLength":
		return "can't be blank"
	case "maxLength":
		if err.Schema != nil && err.Schema.MaxLength != nil {
			return fmt.Sprintf("is too long (maximum is %d characters)", *err.Schema.MaxLength)
		}
		return "is too long"
	case "type":
		return "must be text"
	default:
		reason := strings.TrimSpace(err.Reason)
		if reason == "" {
			return "is invalid"
		}
		return reason
	}
}
