package endpoints

import (
	"github.com/doodlesbykumbi/ctrack/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterAssessmentsEndpoints(srv)
	RegisterLibraryEndpoints(srv)
	RegisterAnalysisEndpoints(srv)
}
