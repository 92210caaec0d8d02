package api

import (
	"net/http"

	"github.com/quillworks/quill/internal/config"
	"github.com/quillworks/quill/pkg/openapi"
)

func serveSpec(specBytes []byte) http.HandlerFunc {
	return openapi.ServeSpec(specBytes)
}

// buildSpec assembles the OpenAPI document for the API surface.
func buildSpec(cfg *config.Config) ([]byte, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	spec.SetDescription(cfg.API.OpenAPI.Description)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(map[string]*openapi.Schema{
		"GenerateCommand": {
			Type:     "object",
			Required: []string{"user_id", "session_id", "job_post"},
			Properties: map[string]*openapi.Schema{
				"user_id":        {Type: "string"},
				"session_id":     {Type: "string"},
				"job_post":       {Type: "string", Description: "Raw job posting text"},
				"allow_degraded": {Type: "boolean", Description: "Fall back to the extraction tier when the generation tier is unavailable"},
			},
		},
		"BatchCommand": {
			Type:     "object",
			Required: []string{"user_id", "job_posts"},
			Properties: map[string]*openapi.Schema{
				"user_id":        {Type: "string"},
				"job_posts":      {Type: "array", Items: &openapi.Schema{Type: "string"}},
				"allow_degraded": {Type: "boolean"},
			},
		},
		"EditCommand": {
			Type:     "object",
			Required: []string{"edited_text"},
			Properties: map[string]*openapi.Schema{
				"edited_text": {Type: "string", Description: "Full proposal text as the user saved it"},
			},
		},
		"CalibrationCommand": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"formality": {Type: "number", Description: "Formality on a 0-10 scale"},
				"rhythm":    {Type: "string"},
				"imperfection": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"fragments":       {Type: "boolean"},
						"mild_redundancy": {Type: "boolean"},
						"casual_asides":   {Type: "boolean"},
					},
				},
			},
		},
		"Proposal": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":              {Type: "string", Format: "uuid"},
				"user_id":         {Type: "string"},
				"session_id":      {Type: "string"},
				"generated_text":  {Type: "string"},
				"current_text":    {Type: "string"},
				"template_id":     {Type: "string"},
				"profile_version": {Type: "integer"},
				"cost_micros":     {Type: "integer", Description: "Actual provider cost in micro-dollars"},
				"degraded":        {Type: "boolean"},
				"score": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"personalization": {Type: "number"},
						"hook":            {Type: "number"},
						"structure":       {Type: "number"},
						"ai_risk":         {Type: "string", Enum: []any{"low", "medium", "high"}},
						"aggregate":       {Type: "number"},
						"category":        {Type: "string", Enum: []any{"excellent", "great", "good", "fair", "needs_work"}},
					},
				},
				"edits": {
					Type:        "array",
					Description: "Edit history, oldest first. Populated on single-proposal reads.",
					Items: &openapi.Schema{
						Type: "object",
						Properties: map[string]*openapi.Schema{
							"id":             {Type: "string", Format: "uuid"},
							"proposal_id":    {Type: "string", Format: "uuid"},
							"classification": {Type: "string", Enum: []any{"cosmetic", "structural"}},
							"created_at":     {Type: "string", Format: "date-time"},
						},
					},
				},
			},
		},
	})

	spec.Paths["/proposals/generate"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Generate a proposal from a job posting",
			Tags:        []string{"proposals"},
			RequestBody: openapi.RequestBodyJSON("GenerateCommand", true),
			Responses: map[int]*openapi.Response{
				201: openapi.ResponseJSON("Generated proposal", "Proposal"),
				400: openapi.ResponseRef("BadRequest"),
				402: {Description: "Monthly cost ceiling reached"},
				409: {Description: "Generation already in progress for session"},
				422: {Description: "Job posting is too short or too long"},
				502: {Description: "Provider failure"},
			},
		},
	}

	spec.Paths["/proposals/batch"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Generate proposals for up to ten postings",
			Tags:        []string{"proposals"},
			RequestBody: openapi.RequestBodyJSON("BatchCommand", true),
			Responses: map[int]*openapi.Response{
				200: {Description: "Per-posting results"},
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/proposals"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List proposals",
			Tags:    []string{"proposals"},
			Parameters: []*openapi.Parameter{
				openapi.QueryParam("user_id", "string", "Filter by user", false),
				openapi.QueryParam("session_id", "string", "Filter by session", false),
				openapi.QueryParam("template_id", "string", "Filter by template", false),
			},
			Responses: map[int]*openapi.Response{
				200: {Description: "Paginated proposals"},
			},
		},
	}

	spec.Paths["/proposals/{id}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary:    "Find a proposal",
			Tags:       []string{"proposals"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Proposal id")},
			Responses: map[int]*openapi.Response{
				200: openapi.ResponseJSON("Proposal with edit history", "Proposal"),
				404: openapi.ResponseRef("NotFound"),
			},
		},
		Delete: &openapi.Operation{
			Summary:    "Delete a proposal and its edit history",
			Tags:       []string{"proposals"},
			Parameters: []*openapi.Parameter{openapi.PathParam("id", "Proposal id")},
			Responses: map[int]*openapi.Response{
				204: {Description: "Deleted"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/proposals/{id}/edits"] = &openapi.PathItem{
		Post: &openapi.Operation{
			Summary:     "Record a user edit and re-score the proposal",
			Tags:        []string{"proposals"},
			Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Proposal id")},
			RequestBody: openapi.RequestBodyJSON("EditCommand", true),
			Responses: map[int]*openapi.Response{
				200: {Description: "Classified edit record and re-scored proposal"},
				404: openapi.ResponseRef("NotFound"),
			},
		},
	}

	spec.Paths["/profiles/{userId}"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "Get a user's voice profile",
			Tags:    []string{"profiles"},
			Parameters: []*openapi.Parameter{
				{Name: "userId", In: "path", Required: true, Schema: &openapi.Schema{Type: "string"}},
			},
			Responses: map[int]*openapi.Response{
				200: {Description: "Voice profile snapshot"},
			},
		},
	}

	spec.Paths["/profiles/{userId}/calibration"] = &openapi.PathItem{
		Put: &openapi.Operation{
			Summary: "Apply explicit calibration to a voice profile",
			Tags:    []string{"profiles"},
			Parameters: []*openapi.Parameter{
				{Name: "userId", In: "path", Required: true, Schema: &openapi.Schema{Type: "string"}},
			},
			RequestBody: openapi.RequestBodyJSON("CalibrationCommand", true),
			Responses: map[int]*openapi.Response{
				200: {Description: "Updated profile"},
				400: openapi.ResponseRef("BadRequest"),
			},
		},
	}

	spec.Paths["/templates"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "List the template catalog",
			Tags:    []string{"templates"},
			Responses: map[int]*openapi.Response{
				200: {Description: "Template catalog"},
			},
		},
	}

	spec.Paths["/ledger/status"] = &openapi.PathItem{
		Get: &openapi.Operation{
			Summary: "Current period spend against the ceiling",
			Tags:    []string{"ledger"},
			Responses: map[int]*openapi.Response{
				200: {Description: "Ledger status"},
			},
		},
	}

	return openapi.MarshalJSON(spec)
}
