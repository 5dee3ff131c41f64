package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"shopcore/pkg/cache"
	"shopcore/pkg/config"
	"shopcore/pkg/database"
	"shopcore/pkg/limiter"
	"shopcore/pkg/server"
	"shopcore/pkg/service"
)

const (
	gracefulTimeout = time.Second * 15
)

func main() {
	cfg := config.New()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	db, closeDB, err := database.New(cfg.PostgresAddr, cfg.PostgresDB, cfg.PostgresUser, cfg.PostgresPassword)
	if err != nil {
		log.Fatalf("### Can't init database: %v", err)
	}
	defer closeDB()

	redis, closeRedis, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisUser, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("### Can't init redis: %v", err)
	}
	defer closeRedis()

	itemSvc, orderSvc, userSvc, err := composeServices(db, redis, cfg)
	if err != nil {
		log.Fatalf("### Can't compose services: %v", err)
	}

	srv, err := server.New(cfg.ListenAddr, itemSvc, orderSvc, userSvc)
	if err != nil {
		log.Fatalf("### Can't create server: %v", err)
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("### Can't listen and serve: %v", err)
		}
	}()
	slog.Info(fmt.Sprintf("HTTP server listening at %s", srv.Addr))

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
	defer cancel()

	srv.Shutdown(ctx)
}

func composeServices(db *sql.DB, redis *redis.Client, cfg *config.Config) (item service.Item, order service.Order, user service.User, err error) {
	itemDB, err := database.NewItemDatabase(db)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("can't init item database: %w", err)
	}

	item = &service.ItemGeneric{ItemRepository: itemDB}

	if cfg.CacheItems {
		item = &service.ItemCaching{Item: item, Redis: redis, TTL: cfg.ItemCacheTTL}
	}

	item = &service.ItemLogging{Item: item}

	order = &service.OrderGeneric{
		Ledger:          itemDB,
		OrderRepository: &database.OrderDatabase{DB: db},
		ReserveTimeout:  cfg.ReserveTimeout,
	}

	order = &service.OrderLimiting{Order: order, Limiter: &limiter.Limiter{Redis: redis, Limit: cfg.OrdersLimit}, FailOpen: cfg.LimiterFailOpen}
	order = &service.OrderLogging{Order: order}

	user = &service.UserGeneric{
		UserRepository: &database.UserDatabase{DB: db},
	}

	return item, order, user, nil
}

func parseLogLevel(lvl string) slog.Level {
	switch lvl {
	case slog.LevelDebug.String():
		return slog.LevelDebug
	case slog.LevelInfo.String():
		return slog.LevelInfo
	case slog.LevelWarn.String():
		return slog.LevelWarn
	case slog.LevelError.String():
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
