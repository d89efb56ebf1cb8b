// Command api runs the JobMatch AI backend.
package main

import (
	"errors"
	stdlog "log"
	"net/http"

	"go.uber.org/zap"

	"github.com/DeUskov/rezumy09/internal/aiclient"
	"github.com/DeUskov/rezumy09/internal/auth"
	"github.com/DeUskov/rezumy09/internal/config"
	"github.com/DeUskov/rezumy09/internal/controller/file"
	"github.com/DeUskov/rezumy09/internal/database"
	"github.com/DeUskov/rezumy09/internal/logger"
	"github.com/DeUskov/rezumy09/internal/server"
	"github.com/DeUskov/rezumy09/internal/workflow"
)

func main() {
	env, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %s", err)
	}

	log := logger.New(env.LogLevel, env.LogFormat)
	defer func() { _ = log.Sync() }()

	db, err := database.GetMainDB()
	if err != nil {
		log.Fatal("database failed to initialize", zap.Error(err))
	}

	redisClient := workflow.NewRedisClient(env.RedisAddr, env.RedisPassword)
	sessions := workflow.NewRedisSessionStore(redisClient, workflow.DefaultSessionTTL)
	blacklist := auth.NewRedisBlacklistStore(redisClient)

	var storage file.StorageClient
	if env.BucketName != "" {
		cloudStorage, err := file.NewCloudStorageClient(env.BucketName)
		if err != nil {
			log.Fatal("cloud storage failed to initialize", zap.Error(err))
		}
		storage = cloudStorage
	} else {
		log.Info("no storage bucket configured, uploads are kept in the database")
	}

	ai := aiclient.New(env.Collaborators, log)
	srv := server.New(env, db, sessions, ai, storage, blacklist, log)

	log.Info("listening", zap.Int("port", env.Port), zap.Bool("skip_auth", env.SkipAuth))
	if err := srv.HTTPServer().ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server stopped", zap.Error(err))
	}
}
