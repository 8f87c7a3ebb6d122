package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tankharsh/photocap/external/abstractapi"
	"github.com/tankharsh/photocap/external/resend"
	"github.com/tankharsh/photocap/internal/config"
	"github.com/tankharsh/photocap/internal/db"
	"github.com/tankharsh/photocap/internal/logger"
	"github.com/tankharsh/photocap/internal/middleware"
	"github.com/tankharsh/photocap/internal/model"
	"github.com/tankharsh/photocap/internal/observability"
	"github.com/tankharsh/photocap/internal/repository"
	"github.com/tankharsh/photocap/internal/services"
	"github.com/tankharsh/photocap/internal/telemetry"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  func(cmd *cobra.Command, _ []string) error { return runServe(cmd.Context()) },
	}
	root := &cobra.Command{
		Use:           "photocap",
		Short:         "PhotoCap studio management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve,
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply the database schema",
			RunE:  func(cmd *cobra.Command, _ []string) error { return runMigrate(cmd.Context()) },
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Create the default admin account",
			RunE:  func(cmd *cobra.Command, _ []string) error { return runSeed(cmd.Context()) },
		},
	)
	return root
}

// app is the process state shared by every subcommand.
type app struct {
	cfg  *config.Config
	log  *slog.Logger
	pool *pgxpool.Pool
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogLevel, !cfg.IsDevelopment())
	if err != nil {
		return nil, err
	}
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, pool: pool}, nil
}

func runMigrate(ctx context.Context) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.pool.Close()

	if err := db.Migrate(ctx, a.pool); err != nil {
		return err
	}
	a.log.Info("schema applied")
	return nil
}

func runSeed(ctx context.Context) error {
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.pool.Close()

	if a.cfg.DefaultAdminPassword == "" {
		return errors.New("DEFAULT_ADMIN_PASSWORD is required to seed")
	}
	codec, err := middleware.NewTokenCodec(a.cfg.JWTSecret, a.cfg.JWTIssuer)
	if err != nil {
		return err
	}
	adminAuth, err := services.NewAdminAuthService(repository.NewAdminRepository(a.pool), codec, a.cfg.BcryptCost, a.log)
	if err != nil {
		return err
	}

	_, err = adminAuth.Register(ctx, a.cfg.DefaultAdminEmail, a.cfg.DefaultAdminPassword, model.AdminRegistration{
		Name: a.cfg.DefaultAdminName,
		Role: model.RoleSuperAdmin,
	})
	switch {
	case errors.Is(err, services.ErrDuplicateIdentity):
		a.log.Info("default admin already exists", "email", a.cfg.DefaultAdminEmail)
	case err != nil:
		return err
	default:
		a.log.Info("default admin created", "email", a.cfg.DefaultAdminEmail)
	}
	return nil
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.pool.Close()
	cfg, log := a.cfg, a.log

	otelCfg := telemetry.Config{
		Enabled:      cfg.OTELEnabled,
		OTLPEndpoint: cfg.OTELEndpoint,
		Environment:  cfg.Env,
	}
	otelShutdown, err := telemetry.InitProvider(ctx, otelCfg)
	if err != nil {
		log.Warn("failed to initialize OpenTelemetry, continuing without tracing", "error", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}

	metrics := observability.NewMetrics(prometheus.NewRegistry())

	// externals
	var validator services.EmailValidator = services.NewLocalValidator()
	if cfg.UseEmailReputation {
		if validator, err = abstractapi.NewAbstractReputationValidator(cfg.AbstractEmailAPIKey); err != nil {
			return err
		}
	}
	var mailer services.EmailSender = services.NewLogMailer(log)
	if cfg.ResendAPIKey != "" {
		if mailer, err = resend.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom); err != nil {
			return err
		}
	} else {
		log.Warn("RESEND_API_KEY not set, verification links will only be logged")
	}

	// repositories
	adminRepo := repository.NewAdminRepository(a.pool)
	studioRepo := repository.NewStudioUserRepository(a.pool)
	verifyRepo := repository.NewEmailVerificationRepository(a.pool)
	eventRepo := repository.NewEventRepository(a.pool)
	clientRepo := repository.NewClientRepository(a.pool)

	// services
	codec, err := middleware.NewTokenCodec(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return err
	}
	verifySvc := services.NewEmailVerificationService(verifyRepo, studioRepo, mailer, validator, cfg.PublicBaseURL, log)
	adminAuth, err := services.NewAdminAuthService(adminRepo, codec, cfg.BcryptCost, log)
	if err != nil {
		return err
	}
	adminAuth.WithMetrics(metrics)
	studioAuth, err := services.NewStudioAuthService(studioRepo, codec, cfg.BcryptCost, log)
	if err != nil {
		return err
	}
	studioAuth.WithHooks(verifySvc.StudioHooks()).WithMetrics(metrics)

	e := newServer(serverDeps{
		log:         log,
		codec:       codec,
		metrics:     metrics,
		limiter:     middleware.NewRateLimiter(ctx, cfg.LoginRatePerMinute, cfg.LoginBurst),
		db:          a.pool,
		adminAuth:   adminAuth,
		studioAuth:  studioAuth,
		studioUsers: services.NewStudioUserService(studioRepo, studioAuth),
		verify:      verifySvc,
		events:      services.NewEventService(eventRepo),
		clients:     services.NewClientService(clientRepo),
		corsOrigins: []string{cfg.AdminFrontendURL, cfg.StudioFrontendURL},
		secure:      !cfg.IsDevelopment(),
		tracing:     otelCfg.Enabled,
	})

	address := ":" + cfg.Port
	log.InfoContext(ctx, "starting photocap api", "address", address, "env", cfg.Env)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return otelShutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server exited properly")
	return nil
}
