package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/wybmv/backend/internal/config"
	s3infra "github.com/wybmv/backend/internal/infra/s3"
	"github.com/wybmv/backend/internal/jobs/cleanup"
	pgrepo "github.com/wybmv/backend/internal/repo/postgres"
	redrepo "github.com/wybmv/backend/internal/repo/redis"
	authsvc "github.com/wybmv/backend/internal/services/auth"
	candidatessvc "github.com/wybmv/backend/internal/services/candidates"
	gatesvc "github.com/wybmv/backend/internal/services/gate"
	invitessvc "github.com/wybmv/backend/internal/services/invites"
	matchessvc "github.com/wybmv/backend/internal/services/matches"
	mediasvc "github.com/wybmv/backend/internal/services/media"
	messagessvc "github.com/wybmv/backend/internal/services/messages"
	notificationssvc "github.com/wybmv/backend/internal/services/notifications"
	profilesvc "github.com/wybmv/backend/internal/services/profiles"
	ratesvc "github.com/wybmv/backend/internal/services/rate"
	requestssvc "github.com/wybmv/backend/internal/services/requests"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	s3         *minio.Client
	cleanup    *cleanup.Job
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, cfg.CORS, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis ping failed, sessions and rate limits are degraded", zap.Error(err))
	}
	cancelPing()
	sessionRepo := redrepo.NewSessionRepo(redisClient)
	rateRepo := redrepo.NewRateRepo(redisClient)

	txManager := pgrepo.NewTxManager(pool)
	userRepo := pgrepo.NewUserRepo(pool)
	inviteRepo := pgrepo.NewInviteRepo(pool)
	requestRepo := pgrepo.NewRequestRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)
	notificationRepo := pgrepo.NewNotificationRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	authService := authsvc.NewService(jwtManager, sessionRepo, cfg.Auth.SessionTTL)
	gateService := gatesvc.NewService(userRepo, log)

	inviteService := invitessvc.NewService(invitessvc.Dependencies{
		Invites:  inviteRepo,
		Users:    userRepo,
		Sessions: authService,
		Logger:   log,
	})
	profileService := profilesvc.NewService(userRepo, gateService, log)
	candidateService := candidatessvc.NewService(userRepo, gateService)
	requestService := requestssvc.NewService(requestssvc.Dependencies{
		Tx:          txManager,
		Requests:    requestRepo,
		Matches:     matchRepo,
		Users:       userRepo,
		RateLimiter: ratesvc.NewLimiter(rateRepo, "requests", cfg.Limits.RequestsPerMinute, 0),
		Logger:      log,
	})
	matchService := matchessvc.NewService(matchRepo, userRepo, log)
	notificationService := notificationssvc.NewService(notificationRepo)

	s3Cfg := s3infra.Config{
		Endpoint:      cfg.S3.Endpoint,
		AccessKey:     cfg.S3.AccessKey,
		SecretKey:     cfg.S3.SecretKey,
		Region:        cfg.S3.Region,
		UseSSL:        cfg.S3.UseSSL,
		PublicBaseURL: cfg.S3.PublicBaseURL,
	}
	var s3Client *minio.Client
	if c, err := s3infra.NewClient(s3Cfg); err != nil {
		log.Warn("s3 init failed, image upload is disabled", zap.Error(err))
	} else {
		s3Client = c
	}

	messageDeps := messagessvc.Dependencies{
		Matches:     matchRepo,
		Messages:    messageRepo,
		RateLimiter: ratesvc.NewLimiter(rateRepo, "messages", cfg.Limits.MessagesPerMinute, cfg.Limits.MessagesPer10Sec),
		Logger:      log,
	}
	var cleanupJob *cleanup.Job
	if s3Client != nil {
		storage := mediasvc.NewS3Storage(s3Client, cfg.S3.Bucket, s3infra.PublicBase(s3Cfg))
		messageDeps.Images = mediasvc.NewService(storage)
		cleanupJob = cleanup.NewOrphanImageJob(storage, messageRepo, cfg.Cleanup.Grace, log)
	}
	messageService := messagessvc.NewService(messageDeps)

	RegisterRoutes(r, Dependencies{
		AuthService:         authService,
		GateService:         gateService,
		InviteService:       inviteService,
		ProfileService:      profileService,
		CandidateService:    candidateService,
		RequestService:      requestService,
		MatchService:        matchService,
		MessageService:      messageService,
		NotificationService: notificationService,
		Logger:              log,
		Config:              cfg,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		s3:         s3Client,
		cleanup:    cleanupJob,
		httpRouter: r,
	}, nil
}

// Run serves HTTP and, when object storage is configured, sweeps orphan images until ctx ends.
func (a *App) Run(ctx context.Context) error {
	if a.cleanup != nil && a.postgres != nil {
		go a.cleanup.Start(ctx, a.cfg.Cleanup.Interval)
	}

	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
