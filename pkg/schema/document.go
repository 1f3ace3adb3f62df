package schema

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed posts.openapi.yaml
var embeddedDocument []byte

// AttributesSchema names the component schema used for attribute validation.
const AttributesSchema = "PostAttributes"

// Operation summarises a declared operation of the resource.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
}

// Document returns a copy of the embedded OpenAPI document.
func Document() []byte {
	return append([]byte(nil), embeddedDocument...)
}

func loadDocument(ctx context.Context, raw []byte) (*openapi3.T, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, errors.New("schema: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("schema: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("schema: validate document: %w", err)
	}
	return doc, nil
}

func collectOperations(doc *openapi3.T) []Operation {
	if doc == nil || doc.Paths == nil {
		return nil
	}

	var out []Operation
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			out = append(out, Operation{
				ID:      op.OperationID,
				Method:  strings.ToUpper(method),
				Path:    path,
				Summary: op.Summary,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return methodRank(out[i].Method) < methodRank(out[j].Method)
	})
	return out
}

func methodRank(method string) int {
	switch method {
	case "GET":
		return 0
	case "POST":
		return 1
	case "PUT":
		return 2
	case "PATCH":
		return 3
	case "DELETE":
		return 4
	default:
		return 5
	}
}
