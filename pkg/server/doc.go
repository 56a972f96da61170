// Package server provides the HTTP server for the ctrack API.
//
// It uses gorilla/mux for routing, gorilla/handlers for the access log and
// go-chi/cors for cross-origin requests. The Server struct carries the store
// implementations and the advisory service so that the endpoints package can
// register handlers against interfaces.
//
// # Server Setup
//
//	srv := server.NewServer(cfg, db, client, logger, "0.0.0.0", "8000")
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
//	    return err
//	}
//
// # Endpoints
//
// Registered via the endpoints subpackage:
//
//   - POST /submit-assessment/ - create or update a yearly assessment
//   - GET /history-all/ - every assessment, newest audit year first
//   - GET /library/search?q= - search the reference library
//   - GET /library/get/{ref_id} - exact control lookup
//   - GET /analyze-compliance/{ref_id}?year= - model opinion on a statement
//   - GET / and GET /health - status and database connectivity
package server
