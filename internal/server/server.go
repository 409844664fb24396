package server

import (
	"context"
	"net/http"
	"time"

	"article-catalog/internal/model"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ArticleService is the set of operations the HTTP layer drives.
type ArticleService interface {
	CreateArticle(ctx context.Context, article *model.Article) error
	UpdateArticle(ctx context.Context, article *model.Article) error
	DeleteArticle(ctx context.Context, code string) error
	FindAllArticles(ctx context.Context) ([]model.Article, error)
	GetArticle(ctx context.Context, code string) (*model.Article, error)
}

type Server struct {
	svc    ArticleService
	logger *zap.Logger
	router *mux.Router
	server *http.Server
}

func New(svc ArticleService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		svc:    svc,
		logger: logger,
		router: mux.NewRouter(),
	}
	s.routes()
	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() {
	s.router.Use(requestID, s.accessLog, s.recoverer)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	articles := s.router.PathPrefix("/articles").Subrouter()
	articles.HandleFunc("/create", s.handleCreate).Methods(http.MethodPost)
	// Registered before /{code} so "all" is never read as a code.
	articles.HandleFunc("/all", s.handleList).Methods(http.MethodGet)
	articles.HandleFunc("/update/{code}", s.handleUpdate).Methods(http.MethodPut)
	articles.HandleFunc("/delete/{code}", s.handleDelete).Methods(http.MethodDelete)
	articles.HandleFunc("/{code}", s.handleGet).Methods(http.MethodGet)

	// mux skips Use middleware for its fallback handlers.
	s.router.NotFoundHandler = s.withMiddleware(s.handleNotFound)
	s.router.MethodNotAllowedHandler = s.withMiddleware(s.handleMethodNotAllowed)
}

func (s *Server) withMiddleware(h http.HandlerFunc) http.Handler {
	return requestID(s.accessLog(s.recoverer(h)))
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start launches the HTTP server
func (s *Server) Start(port string) error {
	s.server.Addr = ":" + port

	s.logger.Info("Web server listening", zap.String("addr", port))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
