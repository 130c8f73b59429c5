package analytics

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reservation-agent/internal/auth"
)

const tokenTTL = 15 * time.Minute

func (s *Server) health(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "store unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "username and password required"})
		return
	}

	// a missing hash disables dashboard access entirely
	if s.cfg.AdminPasswordHash == "" ||
		req.Username != s.cfg.AdminUser ||
		!auth.CheckPassword(s.cfg.AdminPasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "invalid credentials"})
		return
	}

	tok, err := auth.MakeToken(req.Username, s.cfg.JWTSecret, tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "token": tok})
}

// summaries returns every stored call summary, newest first.
func (s *Server) summaries(c *gin.Context) {
	sums, err := s.store.ListSummaries(c.Request.Context())
	if err != nil {
		s.log.Error("list summaries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "try again"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "data": sums})
}

// voiceJoin mints a join token for a fresh call room and starts the
// agent leg for it.
func (s *Server) voiceJoin(c *gin.Context) {
	var req struct {
		Identity string `json:"identity"`
	}
	_ = c.ShouldBindJSON(&req)
	if req.Identity == "" {
		req.Identity = "caller"
	}

	room, token, err := s.agent.NewJoinToken(req.Identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "internal error"})
		return
	}

	// the agent leg needs a provider key; without one the token is still
	// issued so the client side can be exercised standalone
	if s.cfg.OpenAIAPIKey != "" {
		go func() {
			if err := s.agent.Run(context.Background()); err != nil {
				s.log.Error("voice session failed", zap.String("room", room), zap.Error(err))
			}
		}()
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "room": room, "token": token})
}
