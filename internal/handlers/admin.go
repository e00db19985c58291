package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/AnshRaj112/clima-backend/internal/models"
	"github.com/AnshRaj112/clima-backend/internal/services"
)

// dateOnly is accepted for startDate/endDate alongside RFC 3339.
const dateOnly = "2006-01-02"

var (
	errInvalidStartDate = errors.New("invalid startDate")
	errInvalidEndDate   = errors.New("invalid endDate")
)

// LoginAttemptsResponse lists recent admin login attempts.
type LoginAttemptsResponse struct {
	Attempts []models.AdminLoginAttempt `json:"attempts"`
}

// AdminHandler serves the session-gated admin endpoints. Mount it behind
// middleware.RequireAdmin.
type AdminHandler struct {
	store          services.FeedbackStore
	auditor        services.LoginAuditor
	clock          clockwork.Clock
	exportLocation *time.Location
	logger         *slog.Logger
}

// NewAdminHandler wires the admin endpoints. auditor, clock and loc may be nil.
func NewAdminHandler(store services.FeedbackStore, auditor services.LoginAuditor, clock clockwork.Clock, loc *time.Location, logger *slog.Logger) *AdminHandler {
	if auditor == nil {
		auditor = services.NoopLoginAuditor{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &AdminHandler{store: store, auditor: auditor, clock: clock, exportLocation: loc, logger: logger}
}

// GetFeedback handles GET /api/admin/feedback.
func (h *AdminHandler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, err := parseFeedbackFilter(q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date filter")
		return
	}
	// Unparseable page/limit fall back to the defaults.
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	result, err := h.store.Query(ctx, filter, page, limit)
	if err != nil {
		h.logger.Error("query admin feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch feedback data")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ExportFeedback handles GET /api/admin/feedback/export: the filtered set as CSV.
func (h *AdminHandler) ExportFeedback(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFeedbackFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date filter")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	records, err := h.store.ListFiltered(ctx, filter)
	if err != nil {
		h.logger.Error("export feedback", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to export feedback data")
		return
	}

	filename := services.ExportFilename(h.clock.Now().In(h.exportLocation))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if err := services.WriteFeedbackCSV(w, records, h.exportLocation); err != nil {
		h.logger.Warn("write feedback export", "error", err)
	}
}

// GetLoginAttempts handles GET /api/admin/logins.
func (h *AdminHandler) GetLoginAttempts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	attempts, err := h.auditor.Recent(ctx, limit)
	if err != nil {
		h.logger.Error("list admin login attempts", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch login attempts")
		return
	}
	writeJSON(w, http.StatusOK, LoginAttemptsResponse{Attempts: attempts})
}

func parseFeedbackFilter(q url.Values) (models.FeedbackFilter, error) {
	filter := models.FeedbackFilter{
		Career: q.Get("career"),
		Impact: q.Get("impact"),
	}
	var err error
	if filter.StartDate, err = parseDateParam(q.Get("startDate")); err != nil {
		return filter, errInvalidStartDate
	}
	if filter.EndDate, err = parseDateParam(q.Get("endDate")); err != nil {
		return filter, errInvalidEndDate
	}
	return filter, nil
}

// parseDateParam accepts RFC 3339 or a bare date (midnight UTC). Empty means no bound.
func parseDateParam(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnly, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
