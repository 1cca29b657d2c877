// Package http exposes the ingestion and reconciliation pipeline over a
// Fiber application.
package http

import (
	"errors"
	"io"

	"resume-tailor/internal/domain"
	"resume-tailor/internal/usecase"
	"resume-tailor/pkg/ai"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

type Handler struct {
	ingestor   *usecase.Ingestor
	reconciler *usecase.Reconciler
	provider   ai.Provider
	pool       *pgxpool.Pool
	log        zerolog.Logger
}

func NewHandler(ing *usecase.Ingestor, rec *usecase.Reconciler, provider ai.Provider, pool *pgxpool.Pool, log zerolog.Logger) *Handler {
	return &Handler{ingestor: ing, reconciler: rec, provider: provider, pool: pool, log: log}
}

// Register mounts all routes. The heavy AI-invoking routes share the ingest
// bucket space; task polling uses the lighter fetch space. Reconcile only
// touches the database, so it runs unmetered behind auth.
func (h *Handler) Register(app *fiber.App, auth, ingestLimit, fetchLimit fiber.Handler) {
	app.Get("/health", h.Health)

	api := app.Group("/api", auth)
	api.Post("/ingest", ingestLimit, h.Ingest)
	api.Post("/tailor", ingestLimit, h.Tailor)
	api.Post("/reconcile", h.Reconcile)
	api.Get("/tasks/:id", fetchLimit, h.TaskStatus)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	if err := h.pool.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

type ingestReq struct {
	Text              string `json:"text"`
	ContentType       string `json:"contentType"`
	TargetDescription string `json:"targetDescription"`
}

// rawDocumentFromRequest accepts either a multipart upload under the
// "document" field or a JSON body with inline text.
func rawDocumentFromRequest(c *fiber.Ctx) (usecase.RawDocument, string, error) {
	if file, err := c.FormFile("document"); err == nil {
		f, err := file.Open()
		if err != nil {
			return usecase.RawDocument{}, "", err
		}
		defer f.Close()
		content, err := io.ReadAll(f)
		if err != nil {
			return usecase.RawDocument{}, "", err
		}
		return usecase.RawDocument{
			Content:     content,
			ContentType: file.Header.Get(fiber.HeaderContentType),
		}, c.FormValue("targetDescription"), nil
	}

	var req ingestReq
	if err := c.BodyParser(&req); err != nil {
		return usecase.RawDocument{}, "", err
	}
	return usecase.RawDocument{
		Content:     []byte(req.Text),
		ContentType: req.ContentType,
	}, req.TargetDescription, nil
}

// Ingest extracts and structures a document without touching the profile.
func (h *Handler) Ingest(c *fiber.Ctx) error {
	input, target, err := rawDocumentFromRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	doc, err := h.ingestor.Ingest(c.Context(), input, target)
	if err != nil {
		return h.ingestError(c, err)
	}
	return c.JSON(fiber.Map{"document": doc})
}

type reconcileReq struct {
	Document *domain.StructuredDocument `json:"document"`
}

// Reconcile merges a previously structured document into the caller's
// profile. The target identity is the authenticated user; bodies carry no
// identity fields.
func (h *Handler) Reconcile(c *fiber.Ctx) error {
	userID, ok := c.Locals(localUserID).(uuid.UUID)
	if !ok {
		return unauthorized(c)
	}

	var req reconcileReq
	if err := c.BodyParser(&req); err != nil || req.Document == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	report, err := h.reconciler.Reconcile(c.Context(), userID, req.Document)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID.String()).Msg("reconcile failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	h.log.Info().Str("user_id", userID.String()).Msg(report.Summary())
	return c.JSON(fiber.Map{"report": report, "summary": report.Summary()})
}

// Tailor runs the full pipeline: ingest the document, then merge the
// structured result into the caller's profile in one call.
func (h *Handler) Tailor(c *fiber.Ctx) error {
	userID, ok := c.Locals(localUserID).(uuid.UUID)
	if !ok {
		return unauthorized(c)
	}

	input, target, err := rawDocumentFromRequest(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	doc, err := h.ingestor.Ingest(c.Context(), input, target)
	if err != nil {
		return h.ingestError(c, err)
	}

	report, err := h.reconciler.Reconcile(c.Context(), userID, doc)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID.String()).Msg("reconcile failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	h.log.Info().Str("user_id", userID.String()).Msg(report.Summary())
	return c.JSON(fiber.Map{"document": doc, "report": report, "summary": report.Summary()})
}

// TaskStatus reports the current state of a structuring task, including
// tasks that were abandoned by a prior wait but kept running.
func (h *Handler) TaskStatus(c *fiber.Ctx) error {
	task, err := h.provider.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ai.ErrTaskNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "task not found"})
		}
		h.log.Error().Err(err).Str("task_id", c.Params("id")).Msg("task lookup failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	return c.JSON(task)
}

func (h *Handler) ingestError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnsupportedInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrExtractionFailed):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("ingest failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
