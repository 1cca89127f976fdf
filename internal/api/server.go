package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/nalanda-edu/nalanda/internal/wallet"
)

// maxBodyBytes caps request bodies; bundles are small JSON documents.
const maxBodyBytes = 4 << 20

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
}

// Server serves the grading, pricing and wallet endpoints.
type Server struct {
	wallets *wallet.Service
	log     *slog.Logger
}

// NewServer creates a Server. A nil logger discards.
func NewServer(wallets *wallet.Service, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Server{wallets: wallets, log: log}
}

// Router mounts every route under /api/v1 plus /healthz.
func (s *Server) Router(opts Options) http.Handler {
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.requestLogger, middleware.Recoverer)
	r.Use(middleware.Timeout(opts.Timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/grade/numerical", s.gradeNumerical)
		r.Post("/grade/question", s.gradeQuestion)

		r.Post("/worksheets/cost", s.worksheetCost)
		r.Post("/worksheets/rewards", s.worksheetRewards)

		r.Route("/wallets/{userID}", func(r chi.Router) {
			r.Get("/", s.getWallet)
			r.Get("/history", s.walletHistory)
			r.Post("/checkout", s.checkout)
			r.Post("/attempts/{attemptID}", s.settleAttempt)
			r.Post("/convert", s.convert)
			r.Post("/grants", s.grant)
		})

		r.Get("/settings", s.getSettings)
		r.Put("/settings", s.putSettings)
		r.Delete("/settings", s.resetSettings)
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
