package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"budgetbook/internal/log"
	"budgetbook/internal/middleware/ratelimit"
	"budgetbook/internal/middleware/security"
	"budgetbook/internal/middleware/trace"
	"budgetbook/internal/notify"
	"budgetbook/internal/services"
)

const defaultMaxUpload = 10 << 20

// Services groups what the handlers call into.
type Services struct {
	Expenses *services.ExpenseService
	Insights *services.InsightsService
	Import   *services.ImportService
	Export   *services.ExportService
	Settings *services.SettingsService
	Payment  *services.PaymentService
	History  *notify.History
	// Hub serves the notification websocket when set.
	Hub http.Handler
	// Ready reports whether the backing store can serve requests.
	Ready func(ctx context.Context) error
}

type Options struct {
	RecentLimit    int
	MaxUploadBytes int64
	RateLimit      ratelimit.Config
}

type Server struct {
	http.Server
	svc      Services
	opts     Options
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	now      func() time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, svc Services, opts Options, logger *log.Logger) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUpload
	}
	if opts.RecentLimit < 0 {
		opts.RecentLimit = 0
	}

	detector := security.NewDetector()
	s := &Server{
		svc:      svc,
		opts:     opts,
		logger:   logger.WithComponent(log.ComponentHTTP),
		limiter:  ratelimit.NewLimiter(opts.RateLimit),
		detector: detector,
		tracer:   trace.NewMiddleware(logger, detector.ExtractClientIP),
		now:      time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("POST /api/pay", s.handlePayNow)
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.handleUpdateSettings)
	mux.HandleFunc("GET /api/export", s.handleExport)
	mux.HandleFunc("POST /api/import", s.handleImport)
	mux.HandleFunc("GET /api/notifications", s.handleNotifications)
	if svc.Hub != nil {
		mux.Handle("GET /ws/notifications", svc.Hub)
	}

	limit := s.limiter.Middleware(detector.ExtractClientIP, s.onRateLimit, http.MethodPost, http.MethodPut)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var h http.Handler = mux
	h = limit(h)
	h = detector.Middleware(logger)(h)
	h = headers.Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down within shutdownTimeout.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.RunListener(ctx, ln, shutdownTimeout)
}

// RunListener is Run on an existing listener.
func (s *Server) RunListener(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	limiterCtx, stopLimiter := context.WithCancel(ctx)
	defer stopLimiter()
	go func() { _ = s.limiter.Run(limiterCtx) }()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		errCh <- s.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.Info("HTTP server shutting down", log.FieldOperation, log.OpShutdown)
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	ErrorResponse(r.Context(), http.StatusTooManyRequests, "rate limit exceeded, try again later").
		Header("Retry-After", "60").
		Write(w)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.svc.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.svc.Ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
