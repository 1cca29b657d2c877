package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"resume-tailor/internal/domain"
	"resume-tailor/internal/model"
	"resume-tailor/pkg/ai"

	"github.com/rs/zerolog"
)

// Ingestor orchestrates extraction, structuring and answer normalization.
// Structuring failures never surface to the caller: the raw text is always
// recoverable, so a fallback document is substituted instead.
type Ingestor struct {
	provider     ai.Provider
	engine       string
	pollInterval time.Duration
	waitCeiling  time.Duration
	log          zerolog.Logger
}

func NewIngestor(provider ai.Provider, engine string, pollInterval, waitCeiling time.Duration, log zerolog.Logger) *Ingestor {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if waitCeiling <= 0 {
		waitCeiling = 2 * time.Minute
	}
	return &Ingestor{
		provider:     provider,
		engine:       engine,
		pollInterval: pollInterval,
		waitCeiling:  waitCeiling,
		log:          log,
	}
}

// Ingest runs the full pipeline. targetDescription, when non-empty, is the
// job description the document should be tailored toward. The returned
// error is non-nil only for extraction-stage failures; everything after
// extraction degrades to the fallback document.
func (ing *Ingestor) Ingest(ctx context.Context, input RawDocument, targetDescription string) (*domain.StructuredDocument, error) {
	text, err := ExtractText(input)
	if err != nil {
		return nil, err
	}
	return ing.structure(ctx, text, targetDescription).document(), nil
}

// structuringResult is the tagged stage 2-3 outcome: either a full
// structured document or the raw text to degrade to.
type structuringResult struct {
	doc     *domain.StructuredDocument
	rawText string
}

// document is the single consumer of both variants; it always produces a
// valid StructuredDocument.
func (r structuringResult) document() *domain.StructuredDocument {
	if r.doc != nil {
		return r.doc
	}
	return domain.NewFallbackDocument(r.rawText)
}

func (ing *Ingestor) structure(ctx context.Context, text, targetDescription string) structuringResult {
	degraded := structuringResult{rawText: text}

	req := ai.TaskRequest{
		Engine:       ing.engine,
		Instructions: buildStructuringPrompt(text, targetDescription),
		OutputSchema: json.RawMessage(model.DocumentSchema()),
	}

	task, err := ing.provider.Run(ctx, req)
	if err != nil {
		ing.log.Warn().Err(err).Msg("structuring submission failed, degrading to raw text")
		return degraded
	}

	if !task.Status.Terminal() {
		taskID := task.ID
		task, err = ai.WaitForCompletion(ctx, ing.provider, taskID, ing.pollInterval, ing.waitCeiling)
		if err != nil {
			ing.log.Warn().Err(err).Str("task_id", taskID).Msg("structuring wait failed, degrading to raw text")
			return degraded
		}
	}

	if task.Status != ai.StatusSucceeded || task.Result == nil || strings.TrimSpace(task.Result.Answer) == "" {
		ing.log.Warn().
			Str("task_id", task.ID).
			Str("status", string(task.Status)).
			Msg("structuring did not succeed, degrading to raw text")
		return degraded
	}

	doc, err := decodeStructuredAnswer(task.Result.Answer)
	if err != nil {
		ing.log.Warn().Err(err).Str("task_id", task.ID).Msg("answer normalization failed, degrading to raw text")
		return degraded
	}
	return structuringResult{doc: doc, rawText: text}
}

func buildStructuringPrompt(text, targetDescription string) string {
	var b strings.Builder
	b.WriteString("Extract the following resume into the structured schema. ")
	b.WriteString("Use the resume's own wording for achievements and descriptions; do not invent facts. ")
	b.WriteString("Dates may be copied verbatim as they appear in the resume.\n")
	if targetDescription != "" {
		fmt.Fprintf(&b, "\nTailor section ordering and achievement emphasis toward this target role:\n%s\n", targetDescription)
	}
	fmt.Fprintf(&b, "\nRESUME:\n%s", text)
	return b.String()
}
