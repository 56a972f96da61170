package endpoints

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/ctrack/pkg/server"
	"github.com/doodlesbykumbi/ctrack/pkg/server/store"
)

// NotFoundMessage is the body of a library lookup miss
const NotFoundMessage = "Not found"

func RegisterLibraryEndpoints(s *server.Server) {
	libraryStore := s.LibraryStore
	logger := s.Logger

	// GET /library/search?q= - Up to 50 controls matching on identifier or name
	s.Router.HandleFunc("/library/search", handleLibrarySearch(libraryStore, logger)).Methods("GET")

	// GET /library/get/{ref_id} - Exact lookup by identifier
	s.Router.HandleFunc("/library/get/{ref_id}", handleLibraryGet(libraryStore, logger)).Methods("GET")
}

func handleLibrarySearch(libraryStore store.LibraryStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("q")

		controls, err := libraryStore.Search(query)
		if err != nil {
			logger.Error("failed to search library", zap.String("q", query), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "failed to search library")
			return
		}

		respondWithJSON(w, http.StatusOK, controls)
	}
}

func handleLibraryGet(libraryStore store.LibraryStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refID := mux.Vars(r)["ref_id"]

		control, err := libraryStore.Get(refID)
		if err != nil {
			if errors.Is(err, store.ErrControlNotFound) {
				// A miss is a normal answer for this endpoint, not a 404
				respondWithError(w, http.StatusOK, NotFoundMessage)
				return
			}
			logger.Error("failed to fetch control", zap.String("ref_id", refID), zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "failed to fetch control")
			return
		}

		respondWithJSON(w, http.StatusOK, control)
	}
}
