package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/ctrack/pkg/advisor"
	"github.com/doodlesbykumbi/ctrack/pkg/config"
	"github.com/doodlesbykumbi/ctrack/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/ctrack/pkg/server/store/gorm"
)

const (
	readTimeout = 15 * time.Second
	// writeSlack is added to the advisor timeout so a timed-out advisory
	// answer can still be written
	writeSlack = 15 * time.Second
)

// Advisor answers advisory lookups for a saved assessment
type Advisor interface {
	Analyze(ctx context.Context, refID string, year int) (string, error)
}

type Server struct {
	Config *config.Config
	Router *mux.Router
	DB     *gorm.DB
	Logger *zap.Logger

	// Store interfaces for dependency injection
	LibraryStore     store.LibraryStore
	AssessmentsStore store.AssessmentsStore
	HealthStore      store.HealthStore
	Advisor          Advisor

	srv *http.Server
}

func NewServer(
	cfg *config.Config,
	db *gorm.DB,
	client advisor.Client,
	logger *zap.Logger,
	host string,
	port string,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	assessmentsStore := gormstore.NewAssessmentsStore(db,
		gormstore.WithFramework(cfg.Framework),
		gormstore.WithDefaultCategory(cfg.DefaultCategory),
	)

	s := &Server{
		Config:           cfg,
		Router:           mux.NewRouter(),
		DB:               db,
		Logger:           logger,
		LibraryStore:     gormstore.NewLibraryStore(db),
		AssessmentsStore: assessmentsStore,
		HealthStore:      gormstore.NewHealthStore(db),
		Advisor: advisor.NewService(assessmentsStore, client,
			advisor.WithTimeout(cfg.AdvisorTimeoutDuration()),
			advisor.WithLogger(logger.Named("advisor")),
		),
	}

	var writeTimeout time.Duration
	if t := cfg.AdvisorTimeoutDuration(); t > 0 {
		writeTimeout = t + writeSlack
	}

	s.srv = &http.Server{
		Handler:      s.Handler(),
		Addr:         net.JoinHostPort(host, port),
		WriteTimeout: writeTimeout,
		ReadTimeout:  readTimeout,
	}
	return s
}

// Handler returns the router wrapped in access logging and CORS
func (s *Server) Handler() http.Handler {
	accessLog := zap.NewStdLog(s.Logger.Named("http")).Writer()
	return cors.Handler(cors.Options{
		AllowedOrigins:   s.Config.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
		MaxAge:           300,
	})(handlers.LoggingHandler(accessLog, s.Router))
}

// Addr returns the address the server listens on
func (s *Server) Addr() string {
	return s.srv.Addr
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Serve accepts connections on l until Shutdown is called
func (s *Server) Serve(l net.Listener) error {
	return s.srv.Serve(l)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
