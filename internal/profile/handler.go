package profile

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/quillworks/quill/pkg/handlers"
	"github.com/quillworks/quill/pkg/routes"
)

// Handler provides HTTP endpoints for profile operations.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "profiles"),
	}
}

// Routes returns the route group definition for profile endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/profiles",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{userId}", Handler: h.Find},
			{Method: "PUT", Pattern: "/{userId}/calibration", Handler: h.Calibrate},
		},
	}
}

// Find returns the user's voice profile, creating the cold default on
// first access.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	p, err := h.sys.Snapshot(r.Context(), r.PathValue("userId"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}

// Calibrate applies explicit calibration input to the user's profile.
func (h *Handler) Calibrate(w http.ResponseWriter, r *http.Request) {
	var cmd CalibrationCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidCommand)
		return
	}

	p, err := h.sys.Calibrate(r.Context(), r.PathValue("userId"), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}
