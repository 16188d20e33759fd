package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"freight-ai-assistant/internal/domain/model"
	"freight-ai-assistant/internal/domain/ports/adapter"
	"freight-ai-assistant/internal/domain/ports/repository"
	"freight-ai-assistant/internal/infra/queue"
	"freight-ai-assistant/internal/usecase"
)

// Enqueuer is the slice of the job queue the HTTP surface needs.
type Enqueuer interface {
	Name() string
	Enqueue(ctx context.Context, typ model.JobType, payload interface{}) (*model.Job, error)
	Job(ctx context.Context, id string) (*model.Job, error)
}

var _ Enqueuer = (*queue.Queue)(nil)

type Server struct {
	convUC    usecase.ConversationUseCase
	users     repository.UserRepository
	docs      repository.DocumentRepository
	invoices  repository.InvoiceRepository
	shipments repository.ShipmentRepository
	files     adapter.FileStore
	docQueue  Enqueuer
	invQueue  Enqueuer
	auth      *AuthManager
	log       *zerolog.Logger
}

func NewServer(
	convUC usecase.ConversationUseCase,
	users repository.UserRepository,
	docs repository.DocumentRepository,
	invoices repository.InvoiceRepository,
	shipments repository.ShipmentRepository,
	files adapter.FileStore,
	docQueue Enqueuer,
	invQueue Enqueuer,
	auth *AuthManager,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		convUC:    convUC,
		users:     users,
		docs:      docs,
		invoices:  invoices,
		shipments: shipments,
		files:     files,
		docQueue:  docQueue,
		invQueue:  invQueue,
		auth:      auth,
		log:       logger,
	}
}

// Router builds the full HTTP routing tree.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.requestLogger)

	r.Get("/health", s.healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", s.registerHandler)
		r.Post("/auth/login", s.loginHandler)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Route("/conversations/{threadID}", func(r chi.Router) {
				r.Post("/messages", s.messageHandler)
				r.Post("/book", s.bookHandler)
				r.Get("/", s.historyHandler)
			})

			r.Post("/documents", s.uploadDocumentHandler)
			r.Post("/invoices", s.uploadInvoiceHandler)
			r.Get("/jobs/{queue}/{jobID}", s.jobStatusHandler)

			r.Get("/shipments", s.listShipmentsHandler)
			r.Get("/shipments/{trackingCode}", s.trackShipmentHandler)
		})
	})
	return r
}

// authMiddleware validates the bearer token and stashes the user ID in the
// request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), claims.Subject)))
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
