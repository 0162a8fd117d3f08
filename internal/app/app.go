package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"skillbridge/internal/common/clock"
	"skillbridge/internal/common/uuid"
	"skillbridge/internal/config"
	httpserver "skillbridge/internal/http"
	"skillbridge/internal/http/handlers"
	"skillbridge/internal/notify"
	"skillbridge/internal/repository"
	"skillbridge/internal/service"
	libdb "skillbridge/libs/db"
	libredis "skillbridge/libs/redis"
)

// App wires the booking service dependency graph.
type App struct {
	server      *httpserver.Server
	db          *sql.DB
	redisClient *redis.Client
	logger      *zap.Logger
}

// New constructs the application graph.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	sqlDB, err := libdb.NewPostgresDB(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	redisClient, err := libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}

	txr := repository.NewTxRunner(sqlDB)
	users := repository.NewUserRepository()
	sessions := repository.NewSessionRepository()
	bookings := repository.NewBookingRepository()
	ledgerRepo := repository.NewLedgerRepository()
	communities := repository.NewCommunityRepository()

	queue := notify.NewQueue(redisClient, cfg.Redis.Queue)
	clk := clock.New()
	ids := uuid.New()

	ledger := service.NewLedgerService(ledgerRepo, ids, logger)
	admissions := service.NewAdmissionService(txr, users, sessions, bookings, communities, ledger, queue, clk, ids, logger)
	waitlist := service.NewWaitlistService(txr, users, sessions, bookings, queue, clk, ids, logger)
	cancellations := service.NewCancellationService(txr, users, sessions, bookings, ledger, waitlist, queue, clk, logger)

	bookingHandler := handlers.NewBookingHandler(admissions, cancellations, logger)
	waitlistHandler := handlers.NewWaitlistHandler(waitlist, logger)

	router := httpserver.NewRouter(bookingHandler, waitlistHandler)
	server := httpserver.NewServer(cfg.HTTPAddress(), router, logger)

	return &App{
		server:      server,
		db:          sqlDB,
		redisClient: redisClient,
		logger:      logger,
	}, nil
}

// Run starts the HTTP server.
func (a *App) Run(ctx context.Context) error {
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
}
