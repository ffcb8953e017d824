package server

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atikulmunna/logloom/internal/aggregator"
	"github.com/atikulmunna/logloom/internal/hub"
	"github.com/atikulmunna/logloom/internal/session"
)

//go:embed all:web
var webFS embed.FS

// Server holds the Gin engine and dependencies for the web viewer.
type Server struct {
	engine  *gin.Engine
	session *session.Session
	hub     *hub.Hub
	started time.Time
}

// New creates a web server over sess. Views are pushed to websocket clients via h.
func New(sess *session.Session, h *hub.Hub) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	// Disable automatic redirects that cause 301 issues.
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	s := &Server{
		engine:  engine,
		session: sess,
		hub:     h,
		started: time.Now(),
	}

	s.setupRoutes()
	return s
}

// Handler exposes the engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// View renders the session into a hub.View. A bad filter pattern is reported in
// View.Error rather than as an empty view.
func (s *Server) View() hub.View {
	res, err := s.session.Merge()
	if err != nil {
		return hub.View{Stats: aggregator.Summarize(nil), Error: err.Error()}
	}
	return hub.View{Lines: res.Lines, Stats: aggregator.Summarize(res)}
}

// serveEmbedded reads a file from the embedded FS and writes it with the given content type.
func serveEmbedded(webContent fs.FS, name string, contentType string) gin.HandlerFunc {
	// Pre-read the file at startup so we don't read on every request.
	data, err := fs.ReadFile(webContent, name)
	return func(c *gin.Context) {
		if err != nil {
			c.String(http.StatusNotFound, "file not found: %s", name)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

func (s *Server) setupRoutes() {
	webContent, _ := fs.Sub(webFS, "web")

	s.engine.GET("/", serveEmbedded(webContent, "index.html", "text/html; charset=utf-8"))
	s.engine.GET("/app.js", serveEmbedded(webContent, "app.js", "application/javascript; charset=utf-8"))

	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"uptime":       time.Since(s.started).Truncate(time.Second).String(),
			"files_loaded": len(s.session.Files()),
			"dropped_push": s.hub.Dropped(),
		})
	})

	api := s.engine.Group("/api")
	api.GET("/files", s.listFiles)
	api.POST("/files", s.loadFile)
	api.GET("/files/:file/filters", s.getFilters)
	api.POST("/files/:file/filters", s.addFilter)
	api.PUT("/files/:file/filters", s.replaceFilters)
	api.DELETE("/files/:file/filters/:id", s.removeFilter)
	api.POST("/files/:file/filters/:id/up", s.moveFilterUp)
	api.POST("/files/:file/filters/:id/down", s.moveFilterDown)
	api.GET("/range", s.getRange)
	api.PUT("/range", s.setRange)
	api.GET("/view", s.getView)
	api.GET("/view.txt", s.downloadView)

	s.engine.GET("/ws", s.handleWebSocket)

	// pprof profiling endpoints.
	s.engine.GET("/debug/pprof/", gin.WrapF(pprof.Index))
	s.engine.GET("/debug/pprof/cmdline", gin.WrapF(pprof.Cmdline))
	s.engine.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
	s.engine.GET("/debug/pprof/symbol", gin.WrapF(pprof.Symbol))
	s.engine.GET("/debug/pprof/trace", gin.WrapF(pprof.Trace))
	s.engine.GET("/debug/pprof/heap", gin.WrapH(pprof.Handler("heap")))
	s.engine.GET("/debug/pprof/goroutine", gin.WrapH(pprof.Handler("goroutine")))
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server: shutdown: %v", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
