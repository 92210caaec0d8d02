package ledger

import (
	"log/slog"
	"net/http"

	"github.com/quillworks/quill/pkg/handlers"
	"github.com/quillworks/quill/pkg/routes"
)

// Handler provides HTTP endpoints for ledger visibility.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "ledger"),
	}
}

// Routes returns the route group definition for ledger endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/ledger",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/status", Handler: h.Status},
		},
	}
}

// Status returns the current period's spend against the ceiling.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, h.sys.Status(r.Context()))
}
