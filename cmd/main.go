package main

import (
	"context"
	"net/http"
	"time"

	"socialgo/backend/internal/api/handler"
	"socialgo/backend/internal/chathub"
	"socialgo/backend/internal/config"
	"socialgo/backend/internal/models"
	"socialgo/backend/internal/query"
	"socialgo/backend/internal/storage"
	"socialgo/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect PostgreSQL")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect Redis")
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Message{},
		&models.Notification{},
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	logger.Info().Msg("database and redis connections established, migrations complete")
	return db, rdb
}

func main() {
	envErr := godotenv.Load()

	config.Load()
	cfg := config.AppConfig
	logger.Init(cfg.Env)

	if envErr != nil {
		logger.Warn().Msg("no .env file loaded")
	}
	logger.Info().Msg("starting messaging backend")

	db, rdb := setupDependencies(cfg)
	s := storage.NewService(db, rdb)

	hub := chathub.NewManagerService(s)
	go hub.Run()

	q := query.NewService(s, hub)
	h := handler.NewHandler(hub, s, q, cfg)

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	r.GET("/api/token", h.GetToken)
	r.GET("/ws", h.ServeWebSocket)

	api := r.Group("/api", h.AuthRequired())
	{
		api.GET("/messages/conversations", h.GetConversations)
		api.GET("/messages/conversation/:userId", h.GetThread)
		api.GET("/messages/unread/count", h.GetUnreadCount)
		api.POST("/messages/user/:userId", h.SendMessage)
	}

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	logger.Info().Str("addr", server.Addr).Msg("http server listening")
	if err := server.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
