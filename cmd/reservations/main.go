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
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/config"
	httptransport "github.com/example/room-reservations/internal/http"
	"github.com/example/room-reservations/internal/lock"
	"github.com/example/room-reservations/internal/logging"
	"github.com/example/room-reservations/internal/persistence/memory"
	"github.com/example/room-reservations/internal/persistence/postgres"
	"github.com/example/room-reservations/internal/persistence/sheet"
	"github.com/example/room-reservations/internal/persistence/sqlite"
	"github.com/example/room-reservations/internal/persistence/sqlite/migration"
)

func main() {
	logger := logging.New(os.Stdout, slog.LevelInfo)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger = logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// run serves the API until ctx is cancelled.
func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	locker, closeLocker, err := newLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLocker(); cerr != nil {
			logger.Error("failed to close lock backend", "error", cerr)
		}
	}()

	passwordHash, err := adminPasswordHash(cfg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           newHandler(cfg, store, locker, passwordHash, time.Now, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("reservations API listening", "addr", server.Addr, "store", cfg.Store, "lock", cfg.Lock)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type reservationStore interface {
	application.ReservationStore
	Migrate(ctx context.Context) error
	Close() error
}

// openStore opens and migrates the configured backend.
func openStore(ctx context.Context, cfg config.Config) (reservationStore, error) {
	var (
		store reservationStore
		err   error
	)
	switch cfg.Store {
	case config.StoreMemory, "":
		store = memory.Open()
	case config.StoreSQLite:
		store, err = sqlite.Open(migration.DefaultSQLiteConfig(cfg.SQLiteDSN))
	case config.StoreSheet:
		store, err = sheet.Open(cfg.SheetPath)
	case config.StorePostgres:
		store, err = postgres.Open(cfg.PostgresDSN, postgres.PoolConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		})
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Store, err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate %s storage: %w", cfg.Store, err)
	}
	return store, nil
}

// newLocker returns the write lock for the configured backend and a function
// releasing its resources.
func newLocker(ctx context.Context, cfg config.Config, logger *slog.Logger) (application.Locker, func() error, error) {
	if cfg.Lock != config.LockRedis {
		return lock.NewKeyed(), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}
	return lock.NewRedis(client, lock.WithLogger(logger)), client.Close, nil
}

// adminPasswordHash returns the configured hash, hashing a plaintext admin
// password when no hash is configured.
func adminPasswordHash(cfg config.Config) (string, error) {
	if cfg.AdminPasswordHash != "" {
		return cfg.AdminPasswordHash, nil
	}
	hash, err := application.CreatePasswordHash(cfg.AdminPassword, application.DefaultArgon2idParams)
	if err != nil {
		return "", fmt.Errorf("failed to hash admin password: %w", err)
	}
	return hash, nil
}

func newHandler(cfg config.Config, store application.ReservationStore, locker application.Locker, passwordHash string, now func() time.Time, logger *slog.Logger) http.Handler {
	catalog := application.NewRoomCatalog(cfg.Catalog.Rooms, cfg.Catalog.Companies, cfg.Catalog.Grid)
	reservations := application.NewReservationServiceWithLogger(store, locker, catalog, now, logger)
	auth := application.NewAuthServiceWithLogger(passwordHash, []byte(cfg.SessionSecret), nil, nil, now, cfg.SessionTTL, logger)

	return httptransport.NewRouter(httptransport.RouterConfig{
		Reservations: httptransport.NewReservationHandler(reservations, logger),
		Calendar:     httptransport.NewCalendarHandler(reservations, logger),
		Rooms:        httptransport.NewRoomHandler(catalog, logger),
		Auth:         httptransport.NewAuthHandler(auth, cfg.CookieSecure, logger),
		RequireAdmin: httptransport.RequireSession(auth, logger),
		LoginLimiter: httptransport.RateLimit(cfg.LoginRate, 5, logger),
		Middleware:   []func(http.Handler) http.Handler{httptransport.RequestLogger(logger)},
	})
}
