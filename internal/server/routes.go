// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Init swagger doc
	_ "github.com/DeUskov/rezumy09/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/DeUskov/rezumy09/internal/auth"
	"github.com/DeUskov/rezumy09/internal/controller/file"
	generationctl "github.com/DeUskov/rezumy09/internal/controller/generation"
	workflowctl "github.com/DeUskov/rezumy09/internal/controller/workflow"
	"github.com/DeUskov/rezumy09/internal/middleware"
	"github.com/DeUskov/rezumy09/internal/model"
)

// RegisterRoutes will register each http endpoint routes to bound Server instance
func (s *MyServer) RegisterRoutes() http.Handler {
	r := gin.Default()

	allowOrigins := strings.Split(s.Env.AllowOrigins, ",")

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(middleware.SafeHeader())

	gAuth := auth.NewOauthLoginHandler(s.DB, auth.NewGoogleOauthConfig(), "https://www.googleapis.com/oauth2/v2/userinfo")
	lAuth := auth.NewLocalAuthHandler(s.DB)
	logout := auth.NewLogoutController(s.Blacklist)

	fileCtrl := file.NewFileController(s.DB, s.Storage)
	workflowCtrl := workflowctl.NewController(s.DB, s.Sessions, s.AI, fileCtrl, s.Log)
	generationCtrl := generationctl.NewController(s.DB, s.Sessions, s.Log)

	aiLimit := middleware.RateLimiterMiddleware(s.Env.RateLimitRPS)

	r.GET("/", s.HelloWorldHandler)
	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		authRoute := v1.Group("/auth")
		{
			authRoute.POST("google", gAuth.GoogleLoginHandler)
			authRoute.GET("google/callback", gAuth.Callback)

			authRoute.POST("login", lAuth.LocalLoginHandler)
			authRoute.POST("register", lAuth.LocalRegisterHandler)
		}

		needAuth := v1.Group("")
		{
			if !s.Env.SkipAuth {
				needAuth.Use(middleware.JwtBlacklistCheck(s.Blacklist))
			}
			needAuth.Use(middleware.RequireAuth(s.DB, s.Env))

			needAuth.POST("auth/logout", logout.LogoutHandler)

			fileRoute := needAuth.Group("/file")
			{
				fileRoute.GET(":id", fileCtrl.GetFile)
			}

			workflowRoute := needAuth.Group("/workflow")
			{
				workflowRoute.GET("state", workflowCtrl.State)
				workflowRoute.POST("upload", middleware.SizeLimit(10<<20), aiLimit, workflowCtrl.UploadResume)
				workflowRoute.POST("analyze", aiLimit, workflowCtrl.AnalyzeJob)
				workflowRoute.PUT("analyze", workflowCtrl.UpdateJob)
				workflowRoute.POST("generate", aiLimit, workflowCtrl.GenerateLetter)
				workflowRoute.PUT("letter", workflowCtrl.EditLetter)
				workflowRoute.POST("score", aiLimit, workflowCtrl.ScoreMatch)
				workflowRoute.POST("navigate", workflowCtrl.Navigate)
				workflowRoute.POST("reset/:step", workflowCtrl.Reset)
				workflowRoute.POST("restart", workflowCtrl.Restart)
			}

			generationRoute := needAuth.Group("/generations")
			{
				generationRoute.POST("", generationCtrl.Save)
				generationRoute.GET("", generationCtrl.List)
				generationRoute.GET(":id", generationCtrl.Get)
				generationRoute.DELETE(":id", generationCtrl.Delete)
				generationRoute.POST(":id/open", generationCtrl.Open)
			}

			needAdmin := needAuth.Group("/admin")
			{
				needAdmin.Use(middleware.CheckRole(model.RoleAdmin))
				needAdmin.GET("db-health", s.dbHealthHandler)
			}
		}
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// HelloWorldHandler handle request by return message "Hello World"
func (s *MyServer) HelloWorldHandler(c *gin.Context) {
	resp := make(map[string]string)
	resp["message"] = "Hello World"

	c.JSON(http.StatusOK, resp)
}

func (s *MyServer) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *MyServer) dbHealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.DB.Health())
}
