// Package httpserver builds the shared http.Server for cmd/server.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server for handler. Scan and progress requests are small
// and frequent, so header and read timeouts stay tight; writes get room for
// the larger shipment and audit listings.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
