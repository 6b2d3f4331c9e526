package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cliphost/cliphost/config"
	"github.com/cliphost/cliphost/controllers"
	"github.com/cliphost/cliphost/middleware"
	"github.com/cliphost/cliphost/notify"
	"github.com/cliphost/cliphost/storage"
	"github.com/cliphost/cliphost/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(store *storage.Store, notifier *notify.Notifier) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Origin", "player-metadata"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           time.Duration(cfg.CORSMaxAgeHours) * time.Hour,
	}

	if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	uploadController := controllers.NewUploadController(cfg, store, notifier)
	filesController := controllers.NewFilesController(store)

	r.GET("/health", filesController.Health)

	uploadGroup := r.Group("/upload")
	uploadGroup.Use(middleware.RateLimitMiddleware())
	uploadGroup.POST("", uploadController.Upload)
	uploadGroup.POST("/", uploadController.Upload)

	// Legacy bare-filename links share the first path segment with dated URLs.
	r.GET("/uploads/:dateFolder", filesController.ServeLegacy)
	r.GET("/uploads/:dateFolder/:filename", filesController.Serve)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, "Not found")
	})

	return r
}
