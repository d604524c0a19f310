package main // Entry point package

import (
	"context"
	"errors"
	"log" // used only until the zap logger exists
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iliyamo/fitness-center-listings/internal/auth"
	"github.com/iliyamo/fitness-center-listings/internal/config"
	"github.com/iliyamo/fitness-center-listings/internal/database"
	"github.com/iliyamo/fitness-center-listings/internal/handler"
	"github.com/iliyamo/fitness-center-listings/internal/logger"
	"github.com/iliyamo/fitness-center-listings/internal/metrics"
	"github.com/iliyamo/fitness-center-listings/internal/queue"
	"github.com/iliyamo/fitness-center-listings/internal/repository"
	"github.com/iliyamo/fitness-center-listings/internal/router"
)

const serviceName = "fitness-center-listings"

// stores groups the storage backends selected by STORE_DRIVER.
type stores struct {
	centers repository.CenterStore
	users   auth.UserStore
	tokens  auth.TokenStore
	db      handler.Pinger // nil for the memory driver
	close   func()
}

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.Env, cfg.LogLevel, serviceName)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	st, err := openStores(cfg, zlog)
	if err != nil {
		zlog.Fatal("open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer st.close()

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	} else if cfg.RateLimit.Enabled {
		zlog.Warn("redis unavailable, rate limiting per process")
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.EventsEnabled {
		events = queue.NewAMQPPublisher(cfg.RabbitMQURL, zlog)
	}

	jwtm := auth.NewJWTManager(cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)
	e := router.New(router.Deps{
		Log:       zlog,
		Metrics:   metrics.New(),
		Auth:      auth.NewService(st.users, st.tokens, jwtm, cfg.BcryptCost),
		Centers:   st.centers,
		Events:    events,
		RateLimit: cfg.RateLimit,
		Redis:     rdb,
		DB:        st.db,
	})

	addr := ":" + cfg.Port
	go func() {
		zlog.Info("listening",
			zap.String("addr", addr),
			zap.String("env", cfg.Env),
			zap.String("store", cfg.StoreDriver),
		)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zlog.Error("shutdown", zap.Error(err))
	}
	zlog.Info("server exited")
}

func openStores(cfg config.Config, zlog *zap.Logger) (stores, error) {
	if cfg.StoreDriver == config.DriverMemory {
		zlog.Warn("using in-memory store; data is lost on restart")
		return stores{
			centers: repository.NewMemoryCenterStore(),
			users:   repository.NewMemoryUserStore(),
			tokens:  repository.NewMemoryTokenStore(),
			close:   func() {},
		}, nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return stores{}, err
	}
	if cfg.DBAutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return stores{}, err
		}
	}
	return stores{
		centers: repository.NewCenterRepo(db),
		users:   repository.NewUserRepo(db),
		tokens:  repository.NewTokenRepo(db),
		db:      db,
		close:   func() { _ = db.Close() },
	}, nil
}
