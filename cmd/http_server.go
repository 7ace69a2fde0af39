package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/training-management/internal"
	"github.com/frahmantamala/training-management/internal/auth"
	authPostgres "github.com/frahmantamala/training-management/internal/auth/postgres"
	"github.com/frahmantamala/training-management/internal/core/events"
	"github.com/frahmantamala/training-management/internal/draft"
	draftPostgres "github.com/frahmantamala/training-management/internal/draft/postgres"
	"github.com/frahmantamala/training-management/internal/notification"
	notificationPostgres "github.com/frahmantamala/training-management/internal/notification/postgres"
	"github.com/frahmantamala/training-management/internal/proposal"
	proposalPostgres "github.com/frahmantamala/training-management/internal/proposal/postgres"
	"github.com/frahmantamala/training-management/internal/realization"
	realizationPostgres "github.com/frahmantamala/training-management/internal/realization/postgres"
	trainingsync "github.com/frahmantamala/training-management/internal/sync"
	syncPostgres "github.com/frahmantamala/training-management/internal/sync/postgres"
	"github.com/frahmantamala/training-management/internal/transport/rest"
	"github.com/frahmantamala/training-management/internal/user"
	userPostgres "github.com/frahmantamala/training-management/internal/user/postgres"
	"github.com/frahmantamala/training-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"), config.Observability.Logging.Level)
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// GORM shares the sqlx pool, so health checks and repositories see the
	// same connections.
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(appLogger)

	// auth
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(gormDB), tokenGen, config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	// notifications
	directory := notificationPostgres.NewUserDirectory(gormDB)
	notificationService := notification.NewService(
		notificationPostgres.NewNotificationRepository(gormDB), directory, bus, appLogger)
	notificationHandler := notification.NewHandler(notificationService)

	if config.Mail.Enabled {
		mailer := notification.NewMailer(
			config.Mail.Host, config.Mail.Port,
			config.Mail.Username, config.Mail.Password,
			config.Mail.From, directory, appLogger)
		mailer.SubscribeTo(bus)
	}

	// derived-record synchronizer
	syncRepo := syncPostgres.NewSyncRepository(gormDB)
	synchronizer := trainingsync.NewSynchronizer(syncRepo, syncRepo, syncRepo, appLogger)

	// proposals
	proposalRepo := proposalPostgres.NewProposalRepository(gormDB)
	proposalService := proposal.NewService(proposalRepo, notificationService, synchronizer, bus, appLogger)
	proposalHandler := proposal.NewHandler(proposalService)

	// draft TNA planning
	draftService := draft.NewService(draftPostgres.NewDraftRepository(gormDB), notificationService, bus, appLogger)
	draftHandler := draft.NewHandler(draftService)

	// realization rollups
	realizationService := realization.NewService(realizationPostgres.NewRealizationRepository(gormDB), appLogger)
	realizationHandler := realization.NewHandler(realizationService)

	// organization reference data
	userService := user.NewService(userPostgres.NewUserRepository(gormDB), config.Security.BCryptCost, appLogger)
	userHandler := user.NewHandler(userService)

	return &Dependencies{
		Config: config,
		Logger: appLogger,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
		Handlers: rest.Handlers{
			Auth:         authHandler,
			User:         userHandler,
			Proposal:     proposalHandler,
			Draft:        draftHandler,
			Realization:  realizationHandler,
			Notification: notificationHandler,
		},
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
