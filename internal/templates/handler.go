package templates

import (
	"log/slog"
	"net/http"

	"github.com/quillworks/quill/pkg/handlers"
	"github.com/quillworks/quill/pkg/routes"
)

// Handler exposes the read-only template catalog.
type Handler struct {
	logger *slog.Logger
}

// NewHandler creates a Handler with the given logger.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger.With("handler", "templates")}
}

// Routes returns the route group definition for template endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/templates",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

// List returns the full catalog.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, All())
}

// Find returns a single template by id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	t, err := Get(TemplateID(r.PathValue("id")))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, t)
}
