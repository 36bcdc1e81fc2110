// Package middleware holds the echo middleware shared by every route:
// CORS, request logging, panic recovery, request ids, request-scoped
// loggers, New Relic tracing, rate limiting and the global error handler.
package middleware
