// Package server exposes the keep-alive and status HTTP endpoints.
package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/elsisiem/muthaker-bot/internal/scheduler"
)

type Server struct {
	engine *gin.Engine
	sched  *scheduler.Scheduler
	addr   string
}

func New(sched *scheduler.Scheduler, port string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		engine: engine,
		sched:  sched,
		addr:   ":" + port,
	}
	engine.GET("/healthz", s.healthz)
	engine.GET("/status", s.status)
	return s
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) status(c *gin.Context) {
	tasks := s.sched.Pending()
	pending := make([]gin.H, 0, len(tasks))
	for _, task := range tasks {
		entry := gin.H{
			"kind":    task.Kind,
			"label":   task.Label,
			"fire_at": task.FireAt.Format(time.RFC3339),
		}
		if task.Pages != nil {
			entry["pages"] = task.Pages
		}
		pending = append(pending, entry)
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending})
}

// Start serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.engine}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Status server shutdown: %v", err)
		}
	}()

	log.Printf("Status server listening on %s", s.addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
