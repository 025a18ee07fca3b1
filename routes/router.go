package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cppla/postboard/config"
	"github.com/cppla/postboard/controllers"
	"github.com/cppla/postboard/gateway"
	"github.com/cppla/postboard/live"
	"github.com/cppla/postboard/middleware"
	"github.com/cppla/postboard/utils"
	"github.com/cppla/postboard/views"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(gw gateway.Gateway, hub *live.Hub, registry *prometheus.Registry) *gin.Engine {
	// Load config and set Gin mode from configuration
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
	r.SetHTMLTemplate(views.Templates())

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))

	pageController := controllers.NewPageController(gw, hub, utils.Logger)
	apiController := controllers.NewAPIController(gw, utils.Logger)
	configController := controllers.NewConfigController()
	limit := middleware.RateLimit(cfg.RateLimitPerMinute)

	pages := r.Group("")
	pages.Use(middleware.Session(hub, int(cfg.SessionTTL()/time.Second)))
	// Record PV after each request
	pages.Use(middleware.PageViewRecorder())
	pages.GET("/", pageController.List)
	pages.GET("/post/:id", pageController.Detail)
	pages.GET("/create", pageController.CreateForm)
	pages.POST("/create", limit, pageController.CreateSubmit)
	pages.POST("/create/dismiss", pageController.DismissError)
	pages.GET("/live", pageController.Live)

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	api := r.Group("/api/v1")
	api.Use(cors.New(corsCfg))
	// preflights only reach the CORS middleware through a matching route
	api.OPTIONS("/*path", func(ctx *gin.Context) { ctx.Status(http.StatusNoContent) })
	api.GET("/posts", apiController.ListPosts)
	api.GET("/posts/:id", apiController.GetPost)
	api.GET("/users", apiController.ListUsers)
	api.POST("/posts", limit, apiController.CreatePost)
	api.GET("/config/layout", configController.GetLayout)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.String(http.StatusNotFound, "404 page not found")
	})

	return r
}

// Handler gzips every response except websocket upgrades, which need the
// raw connection.
func Handler(engine http.Handler) http.Handler {
	gz := gzhttp.GzipHandler(engine)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if websocket.IsWebSocketUpgrade(r) {
			engine.ServeHTTP(w, r)
			return
		}
		gz.ServeHTTP(w, r)
	})
}
