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

	"golang.org/x/sync/errgroup"

	"github.com/openbracket/tournament-engine/brackets"
	"github.com/openbracket/tournament-engine/cache"
	"github.com/openbracket/tournament-engine/config"
	"github.com/openbracket/tournament-engine/db"
	"github.com/openbracket/tournament-engine/handlers"
	"github.com/openbracket/tournament-engine/middleware"
	"github.com/openbracket/tournament-engine/repositories"
	"github.com/openbracket/tournament-engine/routes"
	"github.com/openbracket/tournament-engine/services"
	"github.com/openbracket/tournament-engine/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Tournament Engine API
// @version 1.0
// @description Bracket generation, match results, standings and waitlists.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	var standingsCache *cache.StandingsCache
	if cfg.RedisEnabled() {
		standingsCache, err = cache.NewStandingsCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer standingsCache.Close()
		logger.Info("standings cache enabled", slog.String("addr", cfg.RedisAddr))
	}

	var uploader storage.FileUploader
	if cfg.StorageEnabled() {
		r2, storageErr := storage.NewR2Storage(ctx,
			cfg.R2AccountID, cfg.R2AccessKeyID, cfg.R2SecretAccessKey, cfg.R2Bucket, cfg.R2PublicURL)
		if storageErr != nil {
			return storageErr
		}
		uploader = r2
		logger.Info("object storage enabled", slog.String("bucket", cfg.R2Bucket))
	}

	userRepo := repositories.NewPostgresUserRepository(database)
	tournamentRepo := repositories.NewPostgresTournamentRepository(database)
	teamRepo := repositories.NewPostgresTeamRepository(database)
	matchRepo := repositories.NewPostgresMatchRepository(database)
	registrationRepo := repositories.NewPostgresRegistrationRepository(database)

	hub := brackets.NewHub(logger)

	authz := services.NewAuthorizer(userRepo, tournamentRepo)
	notifier := services.NewHubNotifier(hub, logger)

	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey, logger)
	bracketService := services.NewBracketService(database, authz, tournamentRepo, teamRepo, matchRepo, hub, logger)

	var invalidator services.StandingsInvalidator
	var cacheReader services.StandingsCache
	if standingsCache != nil {
		invalidator = standingsCache
		cacheReader = standingsCache
	}
	matchService := services.NewMatchService(database, authz, tournamentRepo, teamRepo, matchRepo, invalidator, hub, logger)
	standingsService := services.NewStandingsService(tournamentRepo, teamRepo, matchRepo, cacheReader, logger)
	waitlistService := services.NewWaitlistService(database, authz, registrationRepo, notifier, hub, logger)
	teamService := services.NewTeamService(authz, teamRepo, uploader, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, teamRepo, matchRepo)

	scheduler := services.NewScheduler(tournamentRepo, waitlistService, cfg.SchedulerInterval, logger)

	router := routes.New(routes.Handlers{
		Auth:        handlers.NewAuthHandler(authService, logger),
		Tournaments: handlers.NewTournamentHandler(tournamentService, logger),
		Brackets:    handlers.NewBracketHandler(bracketService, logger),
		Matches:     handlers.NewMatchHandler(matchService, logger),
		Standings:   handlers.NewStandingsHandler(standingsService, logger),
		Waitlist:    handlers.NewWaitlistHandler(waitlistService, logger),
		Teams:       handlers.NewTeamHandler(teamService, logger),
		WS:          handlers.NewWSHandler(hub, logger),
	}, middleware.NewAuthenticator(authService))

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go hub.Run()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		scheduler.Run(gCtx)
		return nil
	})
	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
