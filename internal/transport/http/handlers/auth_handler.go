package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wybmv/backend/internal/pkg/validate"
	authsvc "github.com/wybmv/backend/internal/services/auth"
	invitessvc "github.com/wybmv/backend/internal/services/invites"
	"github.com/wybmv/backend/internal/transport/http/dto"
	httperrors "github.com/wybmv/backend/internal/transport/http/errors"
)

type SessionCookie struct {
	Name   string
	Secure bool
}

type AuthHandler struct {
	invites *invitessvc.Service
	auth    *authsvc.Service
	cookie  SessionCookie
	logger  *zap.Logger
}

func NewAuthHandler(invites *invitessvc.Service, auth *authsvc.Service, cookie SessionCookie, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		invites: invites,
		auth:    auth,
		cookie:  cookie,
		logger:  logger,
	}
}

// Invite redeems a code. A caller that already holds a valid session gets no new user.
func (h *AuthHandler) Invite(w http.ResponseWriter, r *http.Request) {
	if h.invites == nil || h.auth == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	if token, ok := SessionToken(r, h.cookie.Name); ok {
		if _, err := h.auth.ResolveSession(r.Context(), token); err == nil {
			httperrors.Write(w, http.StatusOK, dto.SessionResponse{OK: true, AlreadyLoggedIn: true})
			return
		}
	}

	var req dto.RedeemInviteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invite code required")
		return
	}

	redemption, err := h.invites.Redeem(r.Context(), req.Code)
	if err != nil {
		httperrors.WriteError(w, err, "could not redeem invite")
		return
	}

	h.setSessionCookie(w, redemption.Session)
	httperrors.Write(w, http.StatusOK, sessionResponse(redemption.Session))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.auth != nil {
		if token, ok := SessionToken(r, h.cookie.Name); ok {
			if claims, err := h.auth.ResolveSession(r.Context(), token); err == nil {
				if err := h.auth.RevokeSession(r.Context(), claims.SID); err != nil {
					h.logger.Warn("revoke session failed", zap.Error(err))
				}
			}
		}
	}

	h.clearSessionCookie(w)
	httperrors.Write(w, http.StatusOK, dto.LogoutResponse{OK: true})
}

func (h *AuthHandler) Accounts(w http.ResponseWriter, r *http.Request) {
	if h.invites == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	query := r.URL.Query()
	users, err := h.invites.ListAccounts(r.Context(), query.Get("anonymous_name"), query.Get("gender"))
	if err != nil {
		httperrors.WriteError(w, err, "could not search accounts")
		return
	}

	items := make([]dto.AccountItem, 0, len(users))
	for _, user := range users {
		items = append(items, dto.AccountItem{
			ID:            user.ID.String(),
			AnonymousName: user.Handle,
			Gender:        string(user.Gender),
			CreatedAt:     user.CreatedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, dto.AccountsResponse{Accounts: items})
}

func (h *AuthHandler) RecentAccounts(w http.ResponseWriter, r *http.Request) {
	if h.invites == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	users, err := h.invites.RecentAccounts(r.Context(), strings.Split(r.URL.Query().Get("ids"), ","))
	if err != nil {
		httperrors.WriteError(w, err, "could not load accounts")
		return
	}

	items := make([]dto.AccountItem, 0, len(users))
	for _, user := range users {
		items = append(items, dto.AccountItem{
			ID:            user.ID.String(),
			AnonymousName: user.Handle,
			Gender:        string(user.Gender),
			CreatedAt:     user.CreatedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, dto.AccountsResponse{Accounts: items})
}

func (h *AuthHandler) LoginAccount(w http.ResponseWriter, r *http.Request) {
	if h.invites == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.AccountLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
		return
	}

	login, err := h.invites.LoginAccount(r.Context(), uuid.MustParse(req.UserID))
	if err != nil {
		httperrors.WriteError(w, err, "could not log in")
		return
	}

	h.setSessionCookie(w, login.Session)
	httperrors.Write(w, http.StatusOK, sessionResponse(login.Session))
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, session authsvc.Session) {
	maxAge := int(time.Until(session.ExpiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionResponse(session authsvc.Session) dto.SessionResponse {
	expiresAt := session.ExpiresAt
	return dto.SessionResponse{
		OK:        true,
		UserID:    session.UserID.String(),
		Token:     session.Token,
		ExpiresAt: &expiresAt,
	}
}

// SessionToken reads a bearer token first and falls back to the session cookie.
func SessionToken(r *http.Request, cookieName string) (string, bool) {
	if token, ok := extractBearerToken(r.Header.Get("Authorization")); ok {
		return token, true
	}
	if cookieName == "" {
		return "", false
	}
	cookie, err := r.Cookie(cookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return "", false
	}
	return cookie.Value, true
}

func extractBearerToken(value string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return parts[1], true
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (authsvc.Identity, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
	}
	return identity, ok
}

func parseUUIDParam(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, err
	}
	if id == uuid.Nil {
		return uuid.Nil, errors.New("nil uuid")
	}
	return id, nil
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}
