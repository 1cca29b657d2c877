package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"resume-tailor/internal/domain"
	"resume-tailor/internal/model"
)

// stripCodeFences removes a leading ``` marker (with optional language tag)
// and a trailing ``` marker. Providers wrap JSON answers in fenced blocks
// often enough that this runs unconditionally before decoding.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// decodeStructuredAnswer parses a provider answer into a StructuredDocument.
// The answer must decode as JSON and pass schema validation; anything less
// is treated identically to a structuring failure by the caller.
func decodeStructuredAnswer(answer string) (*domain.StructuredDocument, error) {
	cleaned := stripCodeFences(answer)

	var m map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &m); err != nil {
		return nil, fmt.Errorf("decode answer: %w", err)
	}
	if err := model.ValidateDocumentMap(m); err != nil {
		return nil, fmt.Errorf("validate answer: %w", err)
	}

	var doc domain.StructuredDocument
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil, fmt.Errorf("decode answer: %w", err)
	}
	assignSyntheticIDs(&doc)
	return &doc, nil
}

// assignSyntheticIDs gives each list entry a locally-unique id scoped to
// this document. The ids are never persisted.
func assignSyntheticIDs(doc *domain.StructuredDocument) {
	for i := range doc.Experience {
		doc.Experience[i].ID = fmt.Sprintf("exp-%d", i+1)
	}
	for i := range doc.Education {
		doc.Education[i].ID = fmt.Sprintf("edu-%d", i+1)
	}
	for i := range doc.Projects {
		doc.Projects[i].ID = fmt.Sprintf("proj-%d", i+1)
	}
}
