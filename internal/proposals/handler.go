package proposals

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/quillworks/quill/pkg/handlers"
	"github.com/quillworks/quill/pkg/pagination"
	"github.com/quillworks/quill/pkg/routes"
)

// Handler provides HTTP endpoints for proposal operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pageConfig pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "proposals"),
		pagination: pageConfig,
	}
}

// Routes returns the route group definition for proposal endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/proposals",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/generate", Handler: h.Generate},
			{Method: "POST", Pattern: "/batch", Handler: h.Batch},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "POST", Pattern: "/{id}/edits", Handler: h.RecordEdit},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// Generate runs the generation pipeline for one job posting.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var cmd GenerateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondCodedError(w, h.logger, http.StatusBadRequest, string(CodeInvalidRequest), ErrInvalidRequest)
		return
	}

	proposal, err := h.sys.Generate(r.Context(), cmd)
	if err != nil {
		handlers.RespondCodedError(w, h.logger, MapHTTPStatus(err), string(CodeFor(err)), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, proposal)
}

// Batch runs the pipeline for up to MaxBatchSize postings.
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var cmd BatchCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondCodedError(w, h.logger, http.StatusBadRequest, string(CodeInvalidRequest), ErrInvalidRequest)
		return
	}

	results, err := h.sys.GenerateBatch(r.Context(), cmd)
	if err != nil {
		handlers.RespondCodedError(w, h.logger, MapHTTPStatus(err), string(CodeFor(err)), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, results)
}

// List returns a paginated list of proposals with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search accepts a JSON body with pagination and filter criteria and returns
// matching proposals.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondCodedError(w, h.logger, http.StatusBadRequest, string(CodeInvalidRequest), ErrInvalidRequest)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single proposal, with its edit history, by its UUID
// path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	detail, err := h.sys.Detail(r.Context(), id)
	if err != nil {
		handlers.RespondCodedError(w, h.logger, MapHTTPStatus(err), string(CodeFor(err)), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, detail)
}

// RecordEdit stores a user edit against a proposal and returns the
// re-scored result.
func (h *Handler) RecordEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var cmd EditCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondCodedError(w, h.logger, http.StatusBadRequest, string(CodeInvalidRequest), ErrInvalidRequest)
		return
	}

	result, err := h.sys.RecordEdit(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondCodedError(w, h.logger, MapHTTPStatus(err), string(CodeFor(err)), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Delete removes a proposal by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondCodedError(w, h.logger, MapHTTPStatus(err), string(CodeFor(err)), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondCodedError(w, h.logger, http.StatusBadRequest, string(CodeInvalidRequest), ErrInvalidRequest)
		return uuid.Nil, false
	}
	return id, true
}
