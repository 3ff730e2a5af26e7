// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber application from this configuration:
// listen port, API key for the auth middleware and request timeouts.
package server
