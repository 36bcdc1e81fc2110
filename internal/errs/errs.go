// Package errs defines the error values the API hands back to clients.
//
// HTTPError carries a status plus either a single message or a list of
// field-level violations produced by request validation. The global error
// handler renders it as {"error": "..."} or {"errors": [...]}.
package errs
