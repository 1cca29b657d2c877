// Package model validates AI-produced structured documents against the
// canonical JSON schema before they are trusted by the pipeline.
package model

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed document.schema.json
var documentSchema string

// DocumentSchema returns the structured-document JSON schema. The ingestion
// pipeline also forwards it to the AI backend as the expected output shape.
func DocumentSchema() string { return documentSchema }

// ValidateDocumentMap validates a decoded answer against the
// structured-document schema.
func ValidateDocumentMap(m map[string]interface{}) error {
	schemaLoader := gojsonschema.NewStringLoader(documentSchema)
	docLoader := gojsonschema.NewGoLoader(m)

	res, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}
