package web

import (
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/pex/internal/logging"
)

// loadLogger returns the request logger carrying the client metadata and
// uploaded file name, so the loader's entries can be traced to a request.
func loadLogger(r *http.Request, filename string) *slog.Logger {
	return logging.WithFields(r.Context(),
		"ip", r.RemoteAddr, // already processed by TrustedRealIP
		"user_agent", r.Header.Get("User-Agent"),
		"file", filename,
	)
}
