package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lost-woods/variates/src/api"
	"github.com/lost-woods/variates/src/config"
	"github.com/lost-woods/variates/src/rng"
)

type Server struct {
	cfg    *config.Config
	r      io.Reader
	health *rng.Health
	log    *zap.SugaredLogger
	router *gin.Engine
}

func New(cfg *config.Config, r io.Reader, h *rng.Health, log *zap.SugaredLogger) *Server {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"X-API-KEY", "Accept", "Content-Type"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Seed", "X-Request-Id"},
		AllowAllOrigins:  true,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(api.CheckHeader("X-API-KEY", cfg.APIKey))

	handlers := api.NewHandlers(r, h, log, cfg.MaxPageLimit)
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.POST("/generate", handlers.Generate)
	router.POST("/histogram", handlers.Histogram)
	router.POST("/gof", handlers.GoodnessOfFit)
	router.GET("/export", handlers.Export)

	return &Server{cfg: cfg, r: r, health: h, log: log, router: router}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves until ctx is cancelled, then shuts down gracefully. The
// background health check runs for the same lifetime.
func (s *Server) Run(ctx context.Context) error {
	go rng.PeriodicHealthCheck(ctx, s.r, s.health, s.cfg.HealthInterval, s.log)

	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Infow("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
