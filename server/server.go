// Package server is the HTTP boundary of lokitd. It routes requests to the
// merge and translate flows and converts their failures into JSON bodies
// whose "code" always equals the HTTP status.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	sloggin "github.com/samber/slog-gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/minios-linux/lokitd/translate"
)

// Translator runs translation requests.
type Translator interface {
	Translate(ctx context.Context, req translate.Request) (*translate.Result, error)
}

// DefaultFilename is the attachment name used when Options.Filename is empty.
const DefaultFilename = "translations.po"

// Options configures a Server.
type Options struct {
	// ServiceName names the service in traces.
	ServiceName string
	// MaxUploadBytes limits request bodies.
	MaxUploadBytes int64
	// Filename is the attachment name of a merged catalog.
	Filename string
}

// Server serves the lokitd API.
type Server struct {
	logger     *slog.Logger
	translator Translator
	opts       Options
	mux        *gin.Engine
}

// NewServer returns a Server with its routes registered.
func NewServer(logger *slog.Logger, translator Translator, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Filename == "" {
		opts.Filename = DefaultFilename
	}
	s := &Server{
		logger:     logger.WithGroup("http"),
		translator: translator,
		opts:       opts,
	}
	s.mux = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	mux := gin.New()

	mux.Use(
		sloggin.NewWithConfig(s.logger,
			sloggin.Config{
				DefaultLevel:     slog.LevelInfo,
				ClientErrorLevel: slog.LevelWarn,
				ServerErrorLevel: slog.LevelError,
			},
		),
		gin.Recovery(), otelgin.Middleware(s.opts.ServiceName), requestID, slogAddTraceAttributes,
	)

	mux.GET("/healthz", healthz)

	api := mux.Group("/api")
	api.POST("/download", s.download)
	api.POST("/translation", s.translation)

	mux.NoRoute(notFound)
	return mux
}

// RequestIDHeader carries the request id. A valid UUID from the client is
// kept; anything else is replaced.
const RequestIDHeader = "X-Request-ID"

func requestID(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	c.Header(RequestIDHeader, id)
	sloggin.AddCustomAttributes(c, slog.String("request-id", id))
	trace.SpanFromContext(c.Request.Context()).SetAttributes(attribute.String("http.request_id", id))
	c.Next()
}

func slogAddTraceAttributes(c *gin.Context) {
	sloggin.AddCustomAttributes(c,
		slog.String("trace-id", trace.SpanFromContext(c.Request.Context()).SpanContext().TraceID().String()),
	)
	sloggin.AddCustomAttributes(c,
		slog.String("span-id", trace.SpanFromContext(c.Request.Context()).SpanContext().SpanID().String()),
	)
	c.Next()
}

func healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
