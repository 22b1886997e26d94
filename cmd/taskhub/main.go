package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/taskhub/taskhub/internal/app"
	"github.com/taskhub/taskhub/internal/auth"
	"github.com/taskhub/taskhub/internal/comments"
	"github.com/taskhub/taskhub/internal/events"
	"github.com/taskhub/taskhub/internal/gate"
	"github.com/taskhub/taskhub/internal/observability"
	"github.com/taskhub/taskhub/internal/platform/cache"
	"github.com/taskhub/taskhub/internal/platform/db"
	"github.com/taskhub/taskhub/internal/projects"
	"github.com/taskhub/taskhub/internal/rbac"
	"github.com/taskhub/taskhub/internal/roles"
	"github.com/taskhub/taskhub/internal/tasks"
	"github.com/taskhub/taskhub/internal/users"
	"github.com/taskhub/taskhub/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	tracing, err := observability.NewTracing(ctx, observability.TracingConfig{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  cfg.OTelServiceName,
		SamplingRate: cfg.OTelSamplingRate,
	})
	if err != nil {
		logger.Error("init tracing", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracing.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracing shutdown", slog.Any("error", err))
		}
	}()

	pool, err := db.Open(ctx, cfg.PostgresOptions())
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.Open(ctx, cfg.RedisOptions())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	table := rbac.DefaultTable()
	rbacMiddleware := rbac.Middleware{Table: table, Logger: logger, Metrics: metrics}
	navigation := gate.Default()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	var publisher events.Publisher
	switch cfg.NoticeDelivery {
	case app.NoticeDeliveryQueue:
		client := jobs.NewClient(redisOpts)
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn("asynq client close", slog.Any("error", err))
			}
		}()
		publisher = jobs.NewNoticeQueue(client)
	default:
		publisher = events.NewRedisPublisher(redisClient, cfg.NoticeChannelPrefix)
	}
	publisher = events.Observed{Next: publisher, Logger: logger, Metrics: metrics}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	revocations := auth.NewRevocations(redisClient, "")
	authService := auth.NewService(auth.NewRepository(pool))
	authHandler := auth.NewHandler(logger, authService, tokens, revocations, navigation)

	projectService := projects.NewService(projects.NewRepository(pool))
	taskService := tasks.NewService(tasks.NewRepository(pool), table, publisher, logger)
	commentService := comments.NewService(comments.NewRepository(pool), table, publisher, logger)
	userService := users.NewService(users.NewRepository(pool), table, logger)
	roleService := roles.NewService(roles.NewRepository(pool), table)

	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Authenticator:     auth.Middleware{Tokens: tokens, Revocations: revocations, Accounts: authService, Logger: logger},
		RBACMiddleware:    rbacMiddleware,
		Metrics:           metrics,
		AuthHandler:       authHandler,
		NavigationHandler: gate.NewHandler(logger, navigation),
		ProjectsHandler:   projects.NewHandler(logger, projectService, rbacMiddleware),
		TasksHandler:      tasks.NewHandler(logger, taskService, rbacMiddleware),
		CommentsHandler:   comments.NewHandler(logger, commentService, rbacMiddleware),
		UsersHandler:      users.NewHandler(logger, userService),
		RolesHandler:      roles.NewHandler(logger, roleService),
		JobHandler:        jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server",
			slog.String("addr", cfg.AppAddr),
			slog.String("notice_delivery", cfg.NoticeDelivery),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
