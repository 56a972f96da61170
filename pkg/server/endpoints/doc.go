// Package endpoints registers the ctrack HTTP handlers on a server.Server.
//
// Handlers are built as closures over store interfaces so they can be
// exercised with testify mocks. Every response body is JSON.
package endpoints
