// Package keepalive serves the uptime-ping HTTP endpoint hosting
// platforms poll to keep the bot process alive.
package keepalive

import (
	"context"
	"errors"
	log "log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Server struct {
	srv *http.Server
}

func New(addr string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Bot is alive!")
	})

	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      engine,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
	}
}

// Start serves in the background until Stop.
func (s *Server) Start() {
	go func() {
		log.Info("Keep-alive server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Keep-alive server failed", "err", err)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
