package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/room-reservations/internal/application"
)

// SessionCookieName is the cookie holding the admin session token.
const SessionCookieName = "admin_session"

type authService interface {
	Login(ctx context.Context, password string) (application.Session, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler serves the admin login, logout and session routes.
type AuthHandler struct {
	service      authService
	secureCookie bool
	responder    responder
	logger       *slog.Logger
}

// NewAuthHandler builds an AuthHandler. secureCookie marks the session cookie
// Secure, which browsers honour only over HTTPS.
func NewAuthHandler(service authService, secureCookie bool, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, secureCookie: secureCookie, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if !decodeAndValidate(r.Context(), w, r, h.responder, &req) {
		return
	}

	logger := h.log(r.Context(), "Login", "client_ip", clientIP(r))

	session, err := h.service.Login(r.Context(), req.Password)
	if err != nil {
		logger.WarnContext(r.Context(), "admin login rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.setSessionCookie(w, session.Token, session.ExpiresAt)
	logger.InfoContext(r.Context(), "admin logged in")
	h.responder.writeData(r.Context(), w, http.StatusOK, toSessionDTO(session, true), "Logged in successfully")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Logout")
	if token := extractTokenFromRequest(r); token != "" {
		err := h.service.Logout(r.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, application.ErrUnauthenticated):
			logger.DebugContext(r.Context(), "logout with invalid token")
		default:
			logger.ErrorContext(r.Context(), "logout failed", "error", err, "error_kind", application.ErrorKind(err))
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
	}

	h.clearSessionCookie(w)
	logger.InfoContext(r.Context(), "admin logged out")
	h.responder.writeData(r.Context(), w, http.StatusOK, nil, "Logged out successfully")
}

// Session reports the session stored by RequireSession.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	session, ok := SessionFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}
	h.responder.writeData(r.Context(), w, http.StatusOK, toSessionDTO(session, false), "")
}

type loginRequest struct {
	Password string `json:"password" validate:"required"`
}

type sessionDTO struct {
	Authenticated bool   `json:"authenticated"`
	Token         string `json:"token,omitempty"`
	IssuedAt      string `json:"issuedAt"`
	ExpiresAt     string `json:"expiresAt"`
}

func toSessionDTO(s application.Session, withToken bool) sessionDTO {
	dto := sessionDTO{
		Authenticated: true,
		IssuedAt:      s.IssuedAt.UTC().Format(time.RFC3339),
		ExpiresAt:     s.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if withToken {
		dto.Token = s.Token
	}
	return dto
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
	}
	http.SetCookie(w, cookie)
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func extractTokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		const prefix = "Bearer "
		if strings.HasPrefix(header, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(header, prefix))
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
