package apiapp

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/wybmv/backend/internal/config"
	"github.com/wybmv/backend/internal/domain/model"
	authsvc "github.com/wybmv/backend/internal/services/auth"
	httperrors "github.com/wybmv/backend/internal/transport/http/errors"
	"github.com/wybmv/backend/internal/transport/http/handlers"
)

// UserResolver confirms that a session still points at a stored user.
type UserResolver interface {
	ResolveUser(ctx context.Context, userID uuid.UUID) (model.User, error)
}

func ApplyMiddlewares(r chiRouter, cfg config.CORSConfig, log *zap.Logger) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware(cfg))
	r.Use(requestLogger(log))
}

func corsMiddleware(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}

// AuthMiddleware accepts a bearer token or the session cookie. With a nil resolver only the
// session itself is checked.
func AuthMiddleware(authService *authsvc.Service, cookieName string, users UserResolver, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authService == nil {
				httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
					Code:    "AUTH_SERVICE_UNAVAILABLE",
					Message: "auth service is unavailable",
				})
				return
			}

			token, ok := handlers.SessionToken(r, cookieName)
			if !ok {
				httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
					Code:    "UNAUTHORIZED",
					Message: "authentication required",
				})
				return
			}

			claims, err := authService.ResolveSession(r.Context(), token)
			if err != nil {
				log.Debug("auth middleware session rejected", zap.Error(err))
				httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
					Code:    "UNAUTHORIZED",
					Message: "invalid session",
				})
				return
			}

			if users != nil {
				if _, err := users.ResolveUser(r.Context(), claims.UserID); err != nil {
					httperrors.WriteError(w, err, "could not resolve session user")
					return
				}
			}

			ctx := authsvc.WithIdentity(r.Context(), authsvc.Identity{
				UserID: claims.UserID,
				SID:    claims.SID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if log != nil {
				log.Info("http_request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", chimiddleware.GetReqID(r.Context())),
				)
			}
		})
	}
}

type chiRouter interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}
