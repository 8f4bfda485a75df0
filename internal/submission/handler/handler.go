package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"formview/internal/display"
	"formview/internal/platform/metrics"
	"formview/internal/platform/middleware"
	"formview/internal/processing/supplemental"
	"formview/internal/submission/models"
	"formview/internal/submission/service"
	"formview/internal/survey"
	dErrors "formview/pkg/domain-errors"
	"formview/pkg/platform/httputil"
	pstrings "formview/pkg/platform/strings"
)

const maxPreviewBody = 5 << 20

// Service defines the display operations exposed over HTTP.
type Service interface {
	Display(ctx context.Context, assetUID string, submissionID int64, languageIndex int) (*display.Group, error)
	DisplayMany(ctx context.Context, assetUID string, ids []int64, languageIndex int) (*service.DisplayBatch, error)
	Preview(ctx context.Context, content survey.Content, features supplemental.AdvancedFeatures, languageIndex int, record models.Record) (*display.Group, error)
}

// Handler serves submission display endpoints.
type Handler struct {
	logger    *slog.Logger
	service   Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
	timeout   time.Duration
}

func New(svc Service, logger *slog.Logger, m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		service:   svc,
		metrics:   m,
		validator: validator,
		timeout:   30 * time.Second,
	}
}

// Register mounts the display routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.ClientMetadata)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(h.timeout))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.Latency(h.metrics))
		r.Use(middleware.RequireAuth(h.validator, h.logger))

		r.Get("/api/v2/assets/{uid}/data/display", h.handleDisplayMany)
		r.Get("/api/v2/assets/{uid}/data/{id}/display", h.handleDisplay)
		r.Post("/api/v2/display/preview", h.handlePreview)
	})
}

func (h *Handler) handleDisplay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "submission id must be a positive integer"))
		return
	}
	lang, err := languageParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	tree, err := h.service.Display(ctx, chi.URLParam(r, "uid"), id, lang)
	if err != nil {
		h.logFailure(ctx, "display submission", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tree)
}

func (h *Handler) handleDisplayMany(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	ids, err := idsParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	lang, err := languageParam(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	batch, err := h.service.DisplayMany(ctx, chi.URLParam(r, "uid"), ids, lang)
	if err != nil {
		h.logFailure(ctx, "display submissions", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, batch)
}

// PreviewRequest renders a submission against an unsaved form.
type PreviewRequest struct {
	Content          survey.Content                `json:"content"`
	AdvancedFeatures supplemental.AdvancedFeatures `json:"advanced_features"`
	LanguageIndex    *int                          `json:"language_index"`
	Submission       models.Record                 `json:"submission"`
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req PreviewRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPreviewBody))
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid preview request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	lang := survey.DefaultLanguage
	if req.LanguageIndex != nil {
		lang = *req.LanguageIndex
	}

	tree, err := h.service.Preview(ctx, req.Content, req.AdvancedFeatures, lang, req.Submission)
	if err != nil {
		h.logFailure(ctx, "preview display", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tree)
}

func (h *Handler) logFailure(ctx context.Context, op, requestID string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, "failed to "+op,
			"request_id", requestID,
			"error", err.Error(),
		)
		return
	}
	h.logger.WarnContext(ctx, "rejected "+op,
		"request_id", requestID,
		"error", err.Error(),
	)
}

// languageParam reads ?lang=N. Absent means the default language.
func languageParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("lang")
	if raw == "" {
		return survey.DefaultLanguage, nil
	}
	lang, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "lang must be an integer")
	}
	return lang, nil
}

func idsParam(r *http.Request) ([]int64, error) {
	parts := pstrings.SplitList(r.URL.Query().Get("ids"), ",")
	if len(parts) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "ids is required")
	}
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return nil, dErrors.New(dErrors.CodeBadRequest, "ids must be positive integers")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
