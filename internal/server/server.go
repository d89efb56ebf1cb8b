package server

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/DeUskov/rezumy09/internal/aiclient"
	"github.com/DeUskov/rezumy09/internal/auth"
	"github.com/DeUskov/rezumy09/internal/config"
	"github.com/DeUskov/rezumy09/internal/controller/file"
	"github.com/DeUskov/rezumy09/internal/database"
	"github.com/DeUskov/rezumy09/internal/workflow"
)

// MyServer holds everything the route handlers depend on.
type MyServer struct {
	Env       *config.Environment
	DB        *database.DBinstanceStruct
	Sessions  workflow.SessionStore
	AI        *aiclient.Client
	Storage   file.StorageClient
	Blacklist auth.JwtBlacklistStore
	Log       *zap.Logger
}

// New constructs a MyServer with its dependencies injected. Storage may be
// nil to keep uploads in the database.
func New(
	env *config.Environment,
	db *database.DBinstanceStruct,
	sessions workflow.SessionStore,
	ai *aiclient.Client,
	storage file.StorageClient,
	blacklist auth.JwtBlacklistStore,
	log *zap.Logger,
) *MyServer {
	return &MyServer{
		Env:       env,
		DB:        db,
		Sessions:  sessions,
		AI:        ai,
		Storage:   storage,
		Blacklist: blacklist,
		Log:       log,
	}
}

// HTTPServer wraps the routes in an http.Server. The write timeout has to
// outlive the 120s resume parsing call.
func (s *MyServer) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Env.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 150 * time.Second,
	}
}
