package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/netrics-lab/netrics-dashboard/internal/core/datafile"
	"github.com/netrics-lab/netrics-dashboard/internal/warming"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SoftwareName is sent in the Software header of every response.
const SoftwareName = "netrics-dashboard"

const requestIDHeader = "X-Request-ID"

type Server struct {
	Engine  *gin.Engine
	Addr    string
	caches  *datafile.Caches
	warming WarmingReporter
}

// WarmingReporter reports the outcome of the latest cache warming run.
type WarmingReporter interface {
	Status() warming.Status
}

// Options configures the HTTP server.
type Options struct {
	Addr            string
	Mode            string // debug | release
	SoftwareVersion string
	Caches          *datafile.Caches
	Warming         WarmingReporter // nil when warming is disabled
}

func New(opts Options) *Server {
	// Set Gin mode based on configuration
	if opts.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(requestID(), softwareHeaders(opts.SoftwareVersion))

	s := &Server{
		Engine:  r,
		Addr:    opts.Addr,
		caches:  opts.Caches,
		warming: opts.Warming,
	}

	r.GET("/health", s.healthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return s
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func softwareHeaders(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Software", SoftwareName)
		if version != "" {
			c.Header("Software-Version", version)
		}
		c.Next()
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	resp := gin.H{"status": "healthy"}

	if s.caches != nil {
		payloads := s.caches.Payloads.Stats()
		resp["caches"] = gin.H{
			"listings":          s.caches.Listings.Len(),
			"payloads":          payloads.Size,
			"payload_hits":      payloads.Hits,
			"payload_parses":    payloads.Parses,
			"payload_evictions": payloads.Evictions,
		}
	}

	if s.warming != nil {
		status := s.warming.Status()
		if status.Ran {
			resp["warming"] = status
		} else {
			resp["warming"] = gin.H{"ran": false}
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("[Server] Starting HTTP server", "address", s.Addr)

	go func() {
		<-ctx.Done()
		slog.Info("[Server] Stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("[Server] Forced to shutdown", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
