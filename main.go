package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pophero110/trackly-sub002/config"
	"github.com/pophero110/trackly-sub002/handler"
	"github.com/pophero110/trackly-sub002/middleware"
	"github.com/pophero110/trackly-sub002/repository"
	"github.com/pophero110/trackly-sub002/services"
	"github.com/pophero110/trackly-sub002/usecase"
	"github.com/pophero110/trackly-sub002/utils"
)

func init() {
	if err := godotenv.Load(); err != nil && os.Getenv("GO_ENV") != "test" {
		log.Printf("No .env file loaded: %v", err)
	}

	requiredEnvVars := []string{
		"MONGO_URI",
		"MONGO_DB",
		"JWT_SECRET_KEY",
		"JWT_EXPIRATION_TIME",
		"REFRESH_TOKEN_EXPIRATION_TIME",
	}
	for _, envVar := range requiredEnvVars {
		if os.Getenv(envVar) == "" && os.Getenv("GO_ENV") != "test" {
			log.Fatalf("Required environment variable %s is not set", envVar)
		}
	}

	utils.InitValidator()
	utils.InitJWT()
	utils.InitMongoClient()
}

func initRedis() {
	cacheCfg := config.LoadCacheConfig()

	blacklist, err := services.NewTokenBlacklist(cacheCfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect token blacklist to Redis: %v", err)
	}
	services.TokenBlacklist = blacklist

	sessionCache, err := services.NewSessionCache(cacheCfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect session cache to Redis: %v", err)
	}
	services.GlobalSessionCache = sessionCache
	sessionCache.StartCleanupTask()
}

func setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestTracingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestSizeLimiter(1 << 20))

	userRepo := repository.GetUserRepo(utils.MongoClient)
	sessionRepo := repository.GetSessionRepo(utils.MongoClient)
	tagsRepo := repository.GetTagsRepo(utils.MongoClient)
	entriesRepo := repository.GetEntriesRepo(utils.MongoClient)

	tagsService := &usecase.TagsService{
		TagsRepo:    tagsRepo,
		EntriesRepo: entriesRepo,
	}
	entriesService := &usecase.EntriesService{
		EntriesRepo: entriesRepo,
		TagsRepo:    tagsRepo,
	}
	statsHandler := handler.NewStatsHandler(userRepo, tagsRepo, entriesRepo, sessionRepo)

	router.GET("/health", handler.HealthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/register", handler.RegistrationHandler)
			auth.POST("/login", func(c *gin.Context) {
				handler.LoginHandler(c, sessionRepo)
			})
			auth.POST("/refresh", handler.RefreshTokenHandler)
		}
	}

	protected := router.Group("/api")
	protected.Use(middleware.AuthMiddleware())
	protected.Use(middleware.SessionMiddleware(sessionRepo))
	{
		user := protected.Group("/user")
		{
			user.GET("/profile", handler.GetUserProfileHandler)
			user.POST("/change-email", handler.ChangeEmailHandler)
			user.POST("/change-password", handler.ChangePasswordHandler)
			user.POST("/logout", handler.LogoutHandler)
			user.DELETE("/delete", handler.DeleteUserHandler)

			twofa := user.Group("/2fa")
			{
				twofa.POST("/generate", handler.Generate2FASecretHandler)
				twofa.POST("/enable", handler.Enable2FAHandler)
				twofa.POST("/disable", handler.Disable2FAHandler)
				twofa.POST("/recovery", handler.UseRecoveryCodeHandler)
			}
		}

		sessions := protected.Group("/sessions")
		{
			sessions.GET("/active", func(c *gin.Context) {
				handler.GetActiveSessions(c, sessionRepo)
			})
			sessions.POST("/logout-all", func(c *gin.Context) {
				handler.LogoutAllSessions(c, sessionRepo)
			})
		}

		tags := protected.Group("/tags")
		{
			tags.GET("", middleware.CacheControlMiddleware("30"), func(c *gin.Context) {
				handler.ListTagsHandler(c, tagsService)
			})
			tags.POST("", func(c *gin.Context) {
				handler.CreateTagHandler(c, tagsService)
			})
			tags.PUT("/:id", func(c *gin.Context) {
				handler.UpdateTagHandler(c, tagsService)
			})
			tags.DELETE("/:id", func(c *gin.Context) {
				handler.DeleteTagHandler(c, tagsService)
			})
		}

		entries := protected.Group("/entries")
		{
			entries.GET("", func(c *gin.Context) {
				handler.ListEntriesHandler(c, entriesService)
			})
			entries.GET("/:id", func(c *gin.Context) {
				handler.GetEntryHandler(c, entriesService)
			})
			entries.POST("", func(c *gin.Context) {
				handler.CreateEntryHandler(c, entriesService)
			})
			entries.PUT("/:id", func(c *gin.Context) {
				handler.UpdateEntryHandler(c, entriesService)
			})
			entries.DELETE("/:id", func(c *gin.Context) {
				handler.DeleteEntryHandler(c, entriesService)
			})
		}

		protected.GET("/stats", statsHandler.GetUserStats)
	}

	return router
}

func main() {
	initRedis()

	dbCfg := config.LoadDatabaseConfig()
	if err := repository.SetupIndexes(utils.MongoClient.Database(dbCfg.DatabaseName)); err != nil {
		log.Fatalf("Failed to set up indexes: %v", err)
	}

	router := setupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	serverAddr := fmt.Sprintf(":%s", port)
	log.Printf("Server starting on %s", serverAddr)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
