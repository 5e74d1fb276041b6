package main

import (
	"context"
	"flag"
	"time"

	"github.com/manjeet0006/fullstack-chat/internal/auth"
	"github.com/manjeet0006/fullstack-chat/internal/config"
	messageRepo "github.com/manjeet0006/fullstack-chat/internal/repository/message"
	userRepo "github.com/manjeet0006/fullstack-chat/internal/repository/user"
	redisSvc "github.com/manjeet0006/fullstack-chat/internal/service/redis"
	"github.com/manjeet0006/fullstack-chat/internal/service/server"
	"github.com/manjeet0006/fullstack-chat/internal/utils/log"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("load config failed", zap.Error(err))
	}
	log.SetLevel(cfg.Logging.Level)

	mongoDBClient, err := initMongo(cfg.Mongo.URI)
	if err != nil {
		log.Fatal("connect mongo failed", zap.Error(err))
	}

	db := mongoDBClient.Database(cfg.Mongo.Database)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	redisService := redisSvc.NewRedis(rdb)

	users := userRepo.NewUserRepo(db)
	messages := messageRepo.NewMessageRepo(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := users.EnsureIndexes(ctx); err != nil {
		log.Fatal("ensure indexes failed", zap.Error(err))
	}
	cancel()

	authService := auth.NewService(cfg.Auth.JWTSecret, redisService)

	s := server.NewHttpServer(cfg.Server.Addr, users, messages, authService, redisService)
	if err := s.Run(); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func initMongo(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return client, client.Ping(ctx, nil)
}
