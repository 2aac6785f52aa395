// pkg/preprocessor/parser.go

package preprocessor

import (
	"encoding/json"
	"errors"
	"fmt"

	"rgehrsitz/pilc/internal/preprocessor"
	"rgehrsitz/pilc/internal/rules"
)

type (
	Definitions         = preprocessor.Definitions
	Document            = preprocessor.Document
	IncompleteFormError = preprocessor.IncompleteFormError
	FieldProblem        = preprocessor.FieldProblem
)

// ParseDefinitions parses and validates a backend definitions document
// against the built-in catalog.
func ParseDefinitions(data []byte) (*Definitions, error) {
	return ParseDefinitionsWithCatalog(data, rules.Default())
}

func ParseDefinitionsWithCatalog(data []byte, catalog *rules.Catalog) (*Definitions, error) {
	if catalog == nil {
		return nil, errors.New("catalog cannot be nil")
	}
	defs, err := preprocessor.ParseDefinitions(data, catalog)
	if err != nil {
		return nil, err
	}
	if err := preprocessor.ValidateDefinitions(defs, catalog); err != nil {
		return nil, err
	}
	return defs, nil
}

// Normalize parses, validates and re-serializes a definitions document in the
// exact shape the backend stores.
func Normalize(data []byte) ([]byte, error) {
	return NormalizeWithCatalog(data, rules.Default())
}

func NormalizeWithCatalog(data []byte, catalog *rules.Catalog) ([]byte, error) {
	defs, err := ParseDefinitionsWithCatalog(data, catalog)
	if err != nil {
		return nil, err
	}
	doc, err := preprocessor.SerializeEvents(defs.Draft, defs.Registry, catalog)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding definitions: %w", err)
	}
	return out, nil
}
