// Package analytics serves the dashboard API: call summaries, health and
// the session join endpoint.
package analytics

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reservation-agent/internal/config"
	"reservation-agent/internal/middleware"
	"reservation-agent/internal/store"
	"reservation-agent/internal/voice"
)

type Server struct {
	store store.Store
	agent *voice.Agent
	cfg   config.Config
	log   *zap.Logger
}

func NewServer(st store.Store, agent *voice.Agent, cfg config.Config, log *zap.Logger) *Server {
	return &Server{store: st, agent: agent, cfg: cfg, log: log}
}

func (s *Server) Router() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization"},
	}))

	rl := middleware.NewRateLimiter(5, 10)

	r.GET("/healthz", s.health)
	r.POST("/login", middleware.RateLimit(rl), s.login)
	r.POST("/voice/join", middleware.RateLimit(rl), s.voiceJoin)

	authed := r.Group("/analytics", middleware.Auth(s.cfg.JWTSecret))
	authed.GET("/summaries", s.summaries)

	return r
}
