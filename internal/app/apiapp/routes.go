package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wybmv/backend/internal/config"
	authsvc "github.com/wybmv/backend/internal/services/auth"
	candidatessvc "github.com/wybmv/backend/internal/services/candidates"
	gatesvc "github.com/wybmv/backend/internal/services/gate"
	invitessvc "github.com/wybmv/backend/internal/services/invites"
	matchessvc "github.com/wybmv/backend/internal/services/matches"
	messagessvc "github.com/wybmv/backend/internal/services/messages"
	notificationssvc "github.com/wybmv/backend/internal/services/notifications"
	profilesvc "github.com/wybmv/backend/internal/services/profiles"
	requestssvc "github.com/wybmv/backend/internal/services/requests"
	"github.com/wybmv/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService         *authsvc.Service
	GateService         *gatesvc.Service
	InviteService       *invitessvc.Service
	ProfileService      *profilesvc.Service
	CandidateService    *candidatessvc.Service
	RequestService      *requestssvc.Service
	MatchService        *matchessvc.Service
	MessageService      *messagessvc.Service
	NotificationService *notificationssvc.Service
	Logger              *zap.Logger
	Config              config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.InviteService, deps.AuthService, handlers.SessionCookie{
		Name:   deps.Config.Auth.CookieName,
		Secure: deps.Config.Auth.CookieSecure,
	}, deps.Logger)
	meHandler := handlers.NewMeHandler(deps.InviteService)
	catalogHandler := handlers.NewCatalogHandler(deps.ProfileService)
	profileHandler := handlers.NewProfileHandler(deps.ProfileService)
	candidateHandler := handlers.NewCandidateHandler(deps.CandidateService)
	requestsHandler := handlers.NewRequestsHandler(deps.RequestService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService)
	messagesHandler := handlers.NewMessagesHandler(deps.MessageService)
	mediaHandler := handlers.NewMediaHandler(deps.MessageService)
	notificationsHandler := handlers.NewNotificationsHandler(deps.NotificationService)

	var userResolver UserResolver
	if deps.GateService != nil {
		userResolver = deps.GateService
	}
	sessionMW := AuthMiddleware(deps.AuthService, deps.Config.Auth.CookieName, nil, deps.Logger)
	authMW := AuthMiddleware(deps.AuthService, deps.Config.Auth.CookieName, userResolver, deps.Logger)

	r.Get("/healthz", handlers.Health)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/catalog", catalogHandler.Handle)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/invite", authHandler.Invite)
			r.Post("/logout", authHandler.Logout)
			r.With(sessionMW).Get("/me", meHandler.Handle)
			r.Get("/accounts", authHandler.Accounts)
			r.Post("/accounts", authHandler.LoginAccount)
			r.Get("/recent-accounts", authHandler.RecentAccounts)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Get("/profile", profileHandler.Get)
			r.Post("/profile", profileHandler.Update)
			r.Get("/users", candidateHandler.List)
			r.Get("/requests", requestsHandler.List)
			r.Post("/requests", requestsHandler.Send)
			r.Delete("/requests", requestsHandler.Cancel)
			r.Get("/matches", matchesHandler.Handle)
			r.Post("/matches/reveal", matchesHandler.Reveal)
			r.Get("/messages", messagesHandler.List)
			r.Post("/messages", messagesHandler.Send)
			r.Post("/messages/upload", mediaHandler.Upload)
			r.Get("/notifications", notificationsHandler.Handle)
		})
	})
}
