package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"

	"github.com/AnshRaj112/clima-backend/internal/models"
	"github.com/AnshRaj112/clima-backend/internal/observability"
	"github.com/AnshRaj112/clima-backend/internal/services"
	"github.com/AnshRaj112/clima-backend/pkg/clientip"
)

const auditTimeout = 3 * time.Second

// AdminSigninRequest represents the request to sign in as admin
type AdminSigninRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminSessionResponse describes the current admin session.
type AdminSessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	Username      string `json:"username"`
	LoginTime     string `json:"loginTime"`
}

// AdminAuthHandler serves login, logout and session endpoints.
type AdminAuthHandler struct {
	auth     *services.SessionAuthority
	auditor  services.LoginAuditor
	clock    clockwork.Clock
	validate *validator.Validate
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewAdminAuthHandler wires the admin auth endpoints. auditor, clock and
// metrics may be nil.
func NewAdminAuthHandler(auth *services.SessionAuthority, auditor services.LoginAuditor, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *AdminAuthHandler {
	if auditor == nil {
		auditor = services.NoopLoginAuditor{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &AdminAuthHandler{
		auth:     auth,
		auditor:  auditor,
		clock:    clock,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		metrics:  metrics,
		logger:   logger,
	}
}

// AdminSignin handles POST /api/admin/login. A failed login never says which
// field was wrong.
func (h *AdminAuthHandler) AdminSignin(w http.ResponseWriter, r *http.Request) {
	var req AdminSigninRequest
	if err := decodeJSON(w, r, &req); err != nil || h.validate.Struct(req) != nil {
		h.audit(r, req.Username, false, services.LoginFailMissingFields)
		h.observe("bad_request")
		writeError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	token, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.audit(r, req.Username, false, services.LoginFailInvalid)
			h.observe("invalid")
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Error("issue admin token", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.audit(r, req.Username, true, "")
	h.observe("success")
	http.SetCookie(w, h.auth.SessionCookie(token))
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Login successful"})
}

// AdminLogout handles POST /api/admin/logout. Always succeeds.
func (h *AdminAuthHandler) AdminLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, h.auth.ClearedSessionCookie())
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Cierre de sesión exitoso"})
}

// AdminSession handles GET /api/admin/session.
func (h *AdminAuthHandler) AdminSession(w http.ResponseWriter, r *http.Request) {
	claims, err := h.auth.SessionFromRequest(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, AdminSessionResponse{
		Authenticated: true,
		Username:      claims.Username,
		LoginTime:     claims.LoginTime,
	})
}

func (h *AdminAuthHandler) audit(r *http.Request, username string, success bool, reason string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), auditTimeout)
	defer cancel()

	attempt := models.AdminLoginAttempt{
		Username:    username,
		IPAddress:   clientip.RealClientIP(r),
		UserAgent:   r.UserAgent(),
		Success:     success,
		FailReason:  reason,
		AttemptedAt: h.clock.Now(),
	}
	if err := h.auditor.Record(ctx, attempt); err != nil {
		h.logger.Warn("record admin login attempt", "error", err)
	}
}

func (h *AdminAuthHandler) observe(outcome string) {
	if h.metrics != nil {
		h.metrics.AdminLogins.WithLabelValues(outcome).Inc()
	}
}
