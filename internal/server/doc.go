// Package server implements the HTTP surface of the kudos service. It wires
// the chi router, middleware (request ids, access log, metrics, CORS,
// tracing) and handlers for the home feed, kudo creation and avatar upload,
// and provides lifecycle helpers used by tests and the production binary.
package server
