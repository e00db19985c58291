package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/jonboulle/clockwork"

	"github.com/AnshRaj112/clima-backend/internal/models"
	"github.com/AnshRaj112/clima-backend/internal/observability"
	"github.com/AnshRaj112/clima-backend/internal/services"
)

const (
	msgFeedbackMissingFields = "Debe llenar todos los campos"
	msgFeedbackSubmitted     = "¡Se ha enviado tu comentario satisfactoriamente!"
	msgFeedbackFailed        = "Fallo al enviar tu comentario"

	storeTimeout   = 5 * time.Second
	publishTimeout = 2 * time.Second
)

// SubmitFeedbackRequest represents the request to submit feedback
type SubmitFeedbackRequest struct {
	Impact      string                  `json:"impact" validate:"required,notblank"`
	Career      string                  `json:"career" validate:"required,notblank"`
	Feedback    string                  `json:"feedback" validate:"required,notblank"`
	Suggestion  string                  `json:"suggestion" validate:"required,notblank"`
	Timestamp   string                  `json:"timestamp,omitempty"`
	WeatherData *models.WeatherSnapshot `json:"weatherData,omitempty"`
}

// SubmitFeedbackResponse represents the response after submitting feedback
type SubmitFeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

// FeedbackHandler serves the public feedback endpoints.
type FeedbackHandler struct {
	store        services.FeedbackStore
	publisher    services.FeedbackPublisher
	clock        clockwork.Clock
	recentWindow time.Duration
	validate     *validator.Validate
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// NewFeedbackHandler wires the public feedback endpoints. publisher, clock and
// metrics may be nil.
func NewFeedbackHandler(store services.FeedbackStore, publisher services.FeedbackPublisher, clock clockwork.Clock, recentWindowDays int, metrics *observability.Metrics, logger *slog.Logger) *FeedbackHandler {
	if publisher == nil {
		publisher = services.NoopFeedbackPublisher{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if recentWindowDays <= 0 {
		recentWindowDays = 7
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("notblank", validators.NotBlank)
	return &FeedbackHandler{
		store:        store,
		publisher:    publisher,
		clock:        clock,
		recentWindow: time.Duration(recentWindowDays) * 24 * time.Hour,
		validate:     validate,
		metrics:      metrics,
		logger:       logger,
	}
}

// SubmitFeedback handles POST /api/feedback.
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req SubmitFeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.observe("invalid")
		writeError(w, http.StatusBadRequest, msgFeedbackMissingFields)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.observe("invalid")
		writeError(w, http.StatusBadRequest, msgFeedbackMissingFields)
		return
	}

	record := &models.Feedback{
		Impact:      req.Impact,
		Career:      req.Career,
		Feedback:    req.Feedback,
		Suggestion:  req.Suggestion,
		WeatherData: req.WeatherData,
		UserAgent:   r.UserAgent(),
	}
	if req.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339Nano, req.Timestamp)
		if err != nil {
			h.observe("invalid")
			writeError(w, http.StatusBadRequest, "Invalid timestamp")
			return
		}
		record.Timestamp = ts
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	id, err := h.store.Insert(ctx, record)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			h.observe("invalid")
			writeError(w, http.StatusBadRequest, msgFeedbackMissingFields)
			return
		}
		h.observe("error")
		h.logger.Error("insert feedback", "error", err)
		writeError(w, http.StatusInternalServerError, msgFeedbackFailed)
		return
	}
	h.observe("success")
	h.publish(r.Context(), *record)

	writeJSON(w, http.StatusCreated, SubmitFeedbackResponse{
		Success: true,
		Message: msgFeedbackSubmitted,
		ID:      id.Hex(),
	})
}

// publish emits the submission event. Failures are logged only: the record is
// already stored.
func (h *FeedbackHandler) publish(parent context.Context, record models.Feedback) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), publishTimeout)
	defer cancel()
	if err := h.publisher.Publish(ctx, record); err != nil {
		h.logger.Warn("publish feedback event", "id", record.ID.Hex(), "error", err)
	}
}

// GetFeedback handles GET /api/feedback: every record, newest first.
func (h *FeedbackHandler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	records, err := h.store.ListAll(ctx)
	if err != nil {
		h.logger.Error("list feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch feedback")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// GetRecentFeedback handles GET /api/feedback/recent.
func (h *FeedbackHandler) GetRecentFeedback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	since := h.clock.Now().Add(-h.recentWindow)
	records, err := h.store.ListSince(ctx, since)
	if err != nil {
		h.logger.Error("list recent feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch recent feedback")
		return
	}
	writeJSON(w, http.StatusOK, services.SummarizeRecent(records))
}

func (h *FeedbackHandler) observe(outcome string) {
	if h.metrics != nil {
		h.metrics.FeedbackSubmissions.WithLabelValues(outcome).Inc()
	}
}
