package endpoints

import (
	"context"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/doodlesbykumbi/ctrack/pkg/server"
	"github.com/doodlesbykumbi/ctrack/pkg/server/store"
)

const healthCheckTimeout = 5 * time.Second

// Version is reported by GET /. Overridden at build time with -ldflags.
var Version = "0.1.0"

// StatusInfoResponse is the body of GET /
type StatusInfoResponse struct {
	Version string `json:"version"`
	Status  string `json:"status"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RegisterStatusEndpoints registers the status and health endpoints
func RegisterStatusEndpoints(s *server.Server) {
	// GET / - Version and liveness
	s.Router.HandleFunc("/", handleStatus()).Methods("GET")

	// GET /health - Database connectivity
	s.Router.HandleFunc("/health", handleHealth(s.HealthStore, s.Logger)).Methods("GET")
}

func handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		version := os.Getenv("CTRACK_VERSION_DISPLAY")
		if version == "" {
			version = Version
		}
		respondWithJSON(w, http.StatusOK, StatusInfoResponse{Version: version, Status: "ok"})
	}
}

func handleHealth(healthStore store.HealthStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		if err := healthStore.CheckConnectivity(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			respondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status: "error",
				Error:  "database connectivity check failed",
			})
			return
		}

		respondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
	}
}
