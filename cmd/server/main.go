package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	formsapp "github.com/formhub/backend/internal/application/forms"
	identityapp "github.com/formhub/backend/internal/application/identity"
	"github.com/formhub/backend/internal/domain/forms"
	"github.com/formhub/backend/internal/infrastructure/auth"
	"github.com/formhub/backend/internal/infrastructure/config"
	"github.com/formhub/backend/internal/infrastructure/logger"
	"github.com/formhub/backend/internal/infrastructure/persistence"
	"github.com/formhub/backend/internal/infrastructure/sheets"
	"github.com/formhub/backend/internal/infrastructure/storage"
	"github.com/formhub/backend/internal/interfaces/http/handler"
	"github.com/formhub/backend/internal/interfaces/http/middleware"
	"github.com/formhub/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting FormHub",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	formRepo := persistence.NewGormFormRepository(db.DB)
	submissionRepo := persistence.NewGormSubmissionRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Token infrastructure. Redis is preferred; without it revocation is
	// process-local and lost on restart.
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Host != "" {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = redisBlacklist.Close()
		}()
		blacklist = redisBlacklist
		log.Info("Redis token blacklist enabled")
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Warn("Redis not configured, using in-memory token blacklist")
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	// Image storage
	var imageStorage formsapp.ImageStorage
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ImageStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(startupCtx); err != nil {
			log.Fatal("Failed to ensure upload bucket", zap.Error(err))
		}
		imageStorage = s3Storage
		log.Info("Object storage ready", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		log.Warn("Object storage not configured, uploads disabled")
	}

	// Spreadsheet backend: submission sink and reference-data source
	var appender formsapp.SheetAppender
	var gateway *sheets.ReferenceDataGateway
	if cfg.Sheets.SpreadsheetID != "" {
		sheetsClient, err := sheets.NewClient(startupCtx, &cfg.Sheets, sheets.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize spreadsheet client", zap.Error(err))
		}
		appender = sheetsClient
		gateway = sheets.NewReferenceDataGateway(sheetsClient, &cfg.Sheets)
		log.Info("Spreadsheet backend ready", zap.String("spreadsheet_id", cfg.Sheets.SpreadsheetID))
	} else {
		log.Warn("Spreadsheet backend not configured, sheet sinks and reference data disabled")
	}

	rows, err := formsapp.NewRowBuilder(cfg.Sheets.Timezone)
	if err != nil {
		log.Fatal("Invalid sheets timezone", zap.String("timezone", cfg.Sheets.Timezone), zap.Error(err))
	}

	// Application services. A nil *ReferenceDataGateway assigned directly
	// to the interface would not compare equal to nil inside the services,
	// hence the explicit indirection.
	var gatewayIface forms.ReferenceDataGateway
	if gateway != nil {
		gatewayIface = gateway
	}
	normalizer := formsapp.NewNormalizer(gatewayIface, cfg.Submission.MaxNotes)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, log)
	formService := formsapp.NewFormService(formRepo)
	submissionService := formsapp.NewSubmissionService(
		formRepo, submissionRepo, normalizer, appender, rows, cfg.Submission.Timeout, log)
	referenceDataService := formsapp.NewReferenceDataService(gatewayIface)
	uploadService := formsapp.NewUploadService(imageStorage)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	formHandler := handler.NewFormHandler(formService)
	submissionHandler := handler.NewSubmissionHandler(submissionService)
	referenceDataHandler := handler.NewReferenceDataHandler(referenceDataService)
	uploadHandler := handler.NewUploadHandler(uploadService)
	systemHandler := handler.NewSystemHandler()

	// HTTP engine and middleware chain
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxies", zap.Error(err))
		}
	}

	middleware.SetupValidator()

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check outside API versioning
	engine.GET("/health", healthHandler(db))

	// API routes. Public endpoints skip JWT validation; the submission
	// endpoint additionally runs the optional middleware so authenticated
	// submitters are attributed.
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/reference-data",
			"/api/v1/upload",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/api/v1/submissions",
			"/api/v1/public/",
		},
		Logger: log,
	}))

	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.Me)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	formRoutes := router.NewDomainGroup("forms", "/forms")
	formRoutes.POST("", formHandler.Create)
	formRoutes.GET("", formHandler.List)
	formRoutes.GET("/:id", formHandler.GetByID)
	formRoutes.PUT("/:id", formHandler.Update)
	formRoutes.DELETE("/:id", formHandler.Delete)

	// The public renderer loads a form schema before anyone logs in
	publicRoutes := router.NewDomainGroup("public", "/public")
	publicRoutes.GET("/forms/:id", formHandler.GetByID)

	submissionRoutes := router.NewDomainGroup("submissions", "/submissions")
	submissionRoutes.Use(middleware.OptionalJWTAuthMiddleware(jwtService, blacklist, log))
	submissionRoutes.POST("", submissionHandler.Submit)
	submissionRoutes.GET("", requireIdentity(submissionHandler.ListByForm))

	uploadRoutes := router.NewDomainGroup("upload", "/upload")
	uploadRoutes.POST("", uploadHandler.Upload)

	referenceRoutes := router.NewDomainGroup("reference", "/reference-data")
	referenceRoutes.GET("", referenceDataHandler.Get)

	userRoutes := router.NewDomainGroup("users", "/users")
	userRoutes.Use(middleware.RequireRole("admin"))
	userRoutes.GET("", userHandler.List)
	userRoutes.PUT("/:id", userHandler.Update)
	userRoutes.DELETE("/:id", userHandler.Delete)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(authRoutes).
		Register(formRoutes).
		Register(publicRoutes).
		Register(submissionRoutes).
		Register(uploadRoutes).
		Register(referenceRoutes).
		Register(userRoutes).
		Register(systemRoutes)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// requireIdentity rejects requests the optional JWT middleware let through
// anonymously. Used where a route shares a public group but needs a caller.
func requireIdentity(next gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if middleware.GetJWTUserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "Authentication required"},
			})
			return
		}
		next(c)
	}
}

// healthHandler reports liveness including database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
