package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"tablero/internal/cache"
	"tablero/internal/core"
	"tablero/internal/export"
	"tablero/internal/log"
	"tablero/internal/middleware/ratelimit"
	"tablero/internal/middleware/security"
	"tablero/internal/middleware/trace"
	"tablero/internal/services"
)

const snapshotKey = "dashboard"

// Generator builds the dashboard served by the server.
type Generator interface {
	Generate(ctx context.Context) (core.DashboardData, services.Report, error)
}

// Options tune a Server. Zero values are usable.
type Options struct {
	// CacheTTL bounds how long a generated document is served; 0 rebuilds per request.
	CacheTTL time.Duration
	Logger   *log.Logger
	// RateLimit is requests per minute per client; 0 disables limiting.
	RateLimit int
	// Ready reports whether dependencies are reachable; nil means always ready.
	Ready func(ctx context.Context) error
}

// snapshot is one generated document together with its encoding.
type snapshot struct {
	data        core.DashboardData
	body        []byte
	runID       string
	generatedAt time.Time
}

type Server struct {
	http.Server
	generator Generator
	ready     func(ctx context.Context) error
	logger    *log.Logger
	detector  *security.Detector
	limiter   *ratelimit.Limiter
	tracer    *trace.Middleware
	access    *log.StructuredLogger

	snapshots *cache.LRUCache[*snapshot]
	group     singleflight.Group
	// generation advances on every Invalidate; builds started under an
	// older generation are served to their waiters but never cached.
	generation atomic.Uint64

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, gen Generator, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		generator: gen,
		ready:     opts.Ready,
		logger:    logger.WithComponent(log.ComponentHTTP),
		detector:  security.NewDetector(),
		limiter:   ratelimit.NewLimiter(opts.RateLimit),
		tracer:    trace.NewMiddleware(),
		snapshots: cache.NewLRUCache[*snapshot](1, opts.CacheTTL),
	}
	s.access = log.NewStructuredLogger(s.logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /data.json", s.handleData)
	mux.HandleFunc("GET /api/years", s.handleYears)
	mux.HandleFunc("GET /api/dashboard/{year}/{month}", s.handleMonth)
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	headers := security.NewHeadersMiddleware(security.APIHeadersConfig())

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ClientIP, s.writeRateLimited)(h)
	h = s.withRequestLogging(h)
	h = headers.Middleware(h)
	h = log.RequestIDMiddleware(trace.FromRequest)(h)
	h = s.tracer.Handler(h)
	h = log.Middleware(s.logger)(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Cleaners returns the expiring state a cache manager should sweep.
func (s *Server) Cleaners() []cache.Cleaner {
	return []cache.Cleaner{s.snapshots, s.limiter}
}

// Invalidate drops the cached document; the next request rebuilds it.
func (s *Server) Invalidate() {
	s.generation.Add(1)
	s.group.Forget(snapshotKey)
	if n := s.snapshots.Clear(); n > 0 {
		s.logger.Info("Dashboard cache invalidated", log.FieldOperation, log.OpInvalidate)
	}
}

// current returns the cached snapshot or builds a new one. Concurrent
// misses share a single build, which outlives the request that started it.
func (s *Server) current(ctx context.Context) (*snapshot, error) {
	if snap, ok := s.snapshots.Get(snapshotKey); ok {
		return snap, nil
	}
	v, err, _ := s.group.Do(snapshotKey, func() (interface{}, error) {
		if snap, ok := s.snapshots.Get(snapshotKey); ok {
			return snap, nil
		}
		gen := s.generation.Load()
		data, report, err := s.generator.Generate(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		body, err := export.Encode(data)
		if err != nil {
			return nil, &core.ProcessingError{Stage: core.StageEncode, Err: err}
		}
		snap := &snapshot{data: data, body: body, runID: report.RunID, generatedAt: time.Now()}
		if s.generation.Load() == gen {
			s.snapshots.Set(snapshotKey, snap)
		}
		s.logger.InfoContext(ctx, "Dashboard generated for HTTP",
			log.FieldRunID, report.RunID,
			log.FieldRecords, report.Records,
			log.FieldDropped, report.Dropped,
			log.FieldBytes, len(body))
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*snapshot), nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
