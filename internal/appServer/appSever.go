// launching the server, redis, postgres, rabbitMQ
package appServer

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"

	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/notification-gateway/config"
	repository "github.com/ds124wfegd/notification-gateway/internal/database/postgres"
	cache "github.com/ds124wfegd/notification-gateway/internal/database/redis"
	"github.com/ds124wfegd/notification-gateway/internal/rabbitMQ"
	"github.com/ds124wfegd/notification-gateway/internal/service"
	"github.com/ds124wfegd/notification-gateway/internal/transport"
	"github.com/ds124wfegd/notification-gateway/internal/userService"
	"github.com/ds124wfegd/notification-gateway/pkg/postgres"
	"github.com/ds124wfegd/notification-gateway/pkg/redis"

	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},           // ban on outdate TLS certificate
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags), // os.Stderr can be replaced with ElsasticSearch in the feature
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	logrus.SetFormatter(new(logrus.JSONFormatter))

	redisClient := redis.NewRedisClient(&cfg.Redis)

	db, err := postgres.NewPostgresDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to connect to PostgreSQL: %s", err.Error())
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		logrus.Fatalf("Failed to run migrations: %s", err.Error())
	}

	var rabbitMQURL string
	if cfg.Rabbit.URL != "" {
		rabbitMQURL = cfg.Rabbit.URL
	} else {
		rabbitMQURL = fmt.Sprintf("amqp://%s:%s@%s:%d/",
			cfg.Rabbit.Username,
			cfg.Rabbit.Password,
			cfg.Rabbit.Host,
			cfg.Rabbit.Port)
	}

	queue := rabbitMQ.NewRabbitMQ(rabbitMQ.RabbitMQConfig{
		URL:          rabbitMQURL,
		ExchangeName: cfg.Rabbit.ExchangeName,
		RetryCount:   cfg.Rabbit.RetryCount,
		RetryDelay:   cfg.Rabbit.RetryDelay,
	})
	// Startup connect failure is not fatal: health checks keep serving and
	// the first publish reconnects lazily.
	if err := queue.Connect(); err != nil {
		logrus.Errorf("RabbitMQ unavailable at startup: %s", err.Error())
	}
	defer queue.Close()

	limiter := cache.NewRateLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window)
	prefCache := cache.NewPreferenceCache(redisClient, cfg.Cache.UserPrefTTL)
	users := userService.NewClient(&cfg.UserService)
	repo := repository.NewNotificationLogRepository(db)

	notificationUseCase := service.NewNotificationUseCase(limiter, prefCache, users, repo, queue)

	srv := new(Server)
	go func() {
		if err := srv.Run(cfg, transport.InitRoutes(notificationUseCase, queue, cfg.Server.Timeout)); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}

	if err := redisClient.Close(); err != nil {
		logrus.Errorf("error occured on redis connection close: %s", err.Error())
	}
}
