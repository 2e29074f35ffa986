package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/fkhayef/sharedexpenses/docs"
	"github.com/fkhayef/sharedexpenses/internal/balance"
	"github.com/fkhayef/sharedexpenses/internal/config"
	"github.com/fkhayef/sharedexpenses/internal/database"
	"github.com/fkhayef/sharedexpenses/internal/expense"
	"github.com/fkhayef/sharedexpenses/internal/logger"
	"github.com/fkhayef/sharedexpenses/internal/sharedexpense"
	"github.com/fkhayef/sharedexpenses/internal/sharedexpense/dynamo"
	"github.com/fkhayef/sharedexpenses/internal/sharedexpense/memory"
	"github.com/fkhayef/sharedexpenses/internal/sharedexpense/split"
	"github.com/fkhayef/sharedexpenses/internal/user"
	mw "github.com/fkhayef/sharedexpenses/pkg/middleware"
)

// @title        Shared Expenses API
// @version      1.0
// @description  Splits paid expenses among participants, tracks repayment and reports balances.
// @BasePath     /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.New(cfg.LogLevel, cfg.LogFormat)
	logger.SetDefault(appLog)

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL, cfg.MaxOpenConns)
	if err != nil {
		appLog.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	appLog.Info().Msg("Connected to database successfully")

	if cfg.RunMigrations {
		if err := database.Migrate(context.Background(), db, appLog); err != nil {
			appLog.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	store, err := newStore(context.Background(), cfg, db)
	if err != nil {
		appLog.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("Failed to initialize storage")
	}
	appLog.Info().Str("driver", cfg.StorageDriver).Msg("Shared expense storage ready")

	// Collaborators
	userRepo := user.NewRepository(db)
	expenseRepo := expense.NewRepository(db)

	// Shared expense feature (with split factory injected)
	splitFactory := split.NewSplitStrategyFactory()
	splitService := sharedexpense.NewService(store, expenseRepo, userRepo, splitFactory)
	splitHandler := sharedexpense.NewHandler(splitService)

	// Balance feature
	balanceService := balance.NewService(store, userRepo)
	balanceHandler := balance.NewHandler(balanceService)

	docs.SwaggerInfo.Host = "localhost:" + cfg.Port

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(appLog))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Identity(cfg.DevUserID))
		r.Use(mw.LogUser)

		r.Mount("/shared-expenses", splitHandler.Routes())
		r.Mount("/balances", balanceHandler.Routes())
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLog.Info().Str("port", cfg.Port).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.Error().Err(err).Msg("Server forced to shutdown")
	}

	appLog.Info().Msg("Server exited")
}

// newStore selects the shared expense backend
func newStore(ctx context.Context, cfg *config.Config, db *sql.DB) (sharedexpense.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, err
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.DynamoDBEndpoint != "" {
				o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
			}
		})
		return dynamo.New(client, cfg.SplitsTableName, cfg.EventsTableName, cfg.CountersTableName), nil
	case config.DriverMemory:
		logger.FromContext(ctx).Warn().Msg("memory storage loses all shared expenses on restart")
		return memory.NewStore(), nil
	default:
		return sharedexpense.NewRepository(db, cfg.LockTimeout), nil
	}
}
