package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"

	"guesstheword/internal/game"
	"guesstheword/internal/types"
)

func main() {
	_ = godotenv.Load()

	app := newAppFromEnv()
	logInfo("Starting Guess The Word in %s mode", map[bool]string{true: "production", false: "development"}[app.IsProduction])
	size := app.vocabularySize()
	if size == 0 {
		logFatal("Vocabulary has no playable words")
	}
	logInfo("Loaded %d words into the vocabulary", size)

	if app.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := app.setupRouter()
	app.startServer(router)
}

// newAppFromEnv builds the App from environment variables.
func newAppFromEnv() *App {
	app := newApp()
	app.IsProduction = os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production"
	app.SessionTimeout = getEnvDuration("SESSION_TIMEOUT", 2*time.Hour)
	app.CookieMaxAge = getEnvDuration("COOKIE_MAX_AGE", 2*time.Hour)
	app.StaticCacheAge = getEnvDuration("STATIC_CACHE_AGE", 5*time.Minute)
	app.ScoreRetention = getEnvDuration("SCORE_RETENTION", 24*time.Hour)
	app.SweepInterval = getEnvDuration("SWEEP_INTERVAL", 5*time.Minute)
	app.RateLimitRPS = getEnvInt("RATE_LIMIT_RPS", 5)
	app.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 10)
	app.ScoreDir = getEnv("SCORE_DIR", "data/scores")
	app.CORSOrigins = getEnvList("CORS_ORIGINS")
	return app
}

// newApp returns an App with default settings and empty registries.
func newApp() *App {
	return &App{
		SessionTimeout: 2 * time.Hour,
		CookieMaxAge:   2 * time.Hour,
		StaticCacheAge: 5 * time.Minute,
		ScoreRetention: 24 * time.Hour,
		SweepInterval:  5 * time.Minute,
		RateLimitRPS:   5,
		RateLimitBurst: 10,
		Vocabulary:     game.Vocabulary,
		Scheduler:      game.TimeScheduler{},
		Sessions:       make(map[string]*sessionEntry),
		FinalScores:    make(map[string]types.ScoreRecord),
		LimiterMap:     make(map[string]*rate.Limiter),
		StartTime:      time.Now(),
	}
}

// setupRouter registers middleware, templates and routes.
func (app *App) setupRouter() *gin.Engine {
	router := gin.Default()

	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".svg", ".ico", ".png"}),
		ginGzip.WithExcludedPaths([]string{RouteWebSocket})))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	if len(app.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     app.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost},
			AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-Id"},
			ExposeHeaders:    []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.Use(requestIDMiddleware())
	router.Use(func(c *gin.Context) {
		applyCacheHeaders(c, app.IsProduction, app.StaticCacheAge)
	})

	router.LoadHTMLGlob("templates/*.html")
	router.Static("/static", "./static")

	router.GET(RouteHome, app.homeHandler)
	router.GET(RouteGameState, app.gameStateHandler)
	router.POST(RouteStart, app.rateLimitMiddleware(), app.startHandler)
	router.POST(RouteCorrect, app.rateLimitMiddleware(), app.correctHandler)
	router.POST(RouteSkip, app.rateLimitMiddleware(), app.skipHandler)
	router.POST(RouteAcknowledge, app.rateLimitMiddleware(), app.acknowledgeHandler)
	router.GET(RouteScore, app.scoreHandler)
	router.GET(RouteWebSocket, app.wsHandler)
	router.GET(RouteHealth, app.healthzHandler)

	return router
}

func (app *App) startServer(router *gin.Engine) {
	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go app.runSweeper(ctx)

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)
		<-sigint
		logInfo("Shutdown signal received, shutting down server gracefully...")
		stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	logInfo("Server starting on http://localhost:%s", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logFatal("Server failed to start: %v", err)
	}
	<-idleConnsClosed
	app.closeAllSessions()
	logInfo("Server shutdown complete")
}

// runSweeper periodically expires idle sessions and old score files until ctx is done.
func (app *App) runSweeper(ctx context.Context) {
	interval := app.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := app.sweepIdleSessions(now); n > 0 {
				logInfo("Expired %d idle sessions", n)
			}
			if err := app.cleanupOldScores(app.ScoreRetention); err != nil {
				logWarn("Score cleanup failed: %v", err)
			}
		}
	}
}

func applyCacheHeaders(c *gin.Context, production bool, staticAge time.Duration) {
	if production && strings.HasPrefix(c.Request.URL.Path, "/static/") {
		cachecontrol.New(cachecontrol.Config{
			Public: true,
			MaxAge: cachecontrol.Duration(staticAge),
		})(c)
		c.Header("Vary", "Accept-Encoding")
		return
	}
	cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	})(c)
}
