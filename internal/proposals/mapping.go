package proposals

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/quillworks/quill/pkg/query"
	"github.com/quillworks/quill/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "proposals", "p").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("session_id", "SessionID").
	Project("job_post", "JobPost").
	Project("generated_text", "GeneratedText").
	Project("current_text", "CurrentText").
	Project("analysis", "Analysis").
	Project("template_id", "TemplateID").
	Project("profile_version", "ProfileVersion").
	Project("score", "Score").
	Project("cost_micros", "Cost").
	Project("degraded", "Degraded").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for proposal queries.
// Nil fields are ignored. UserID, SessionID, TemplateID, and Degraded use
// exact matching.
type Filters struct {
	UserID     *string `json:"user_id,omitempty"`
	SessionID  *string `json:"session_id,omitempty"`
	TemplateID *string `json:"template_id,omitempty"`
	Degraded   *bool   `json:"degraded,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("UserID", f.UserID).
		WhereEquals("SessionID", f.SessionID).
		WhereEquals("TemplateID", f.TemplateID).
		WhereEquals("Degraded", f.Degraded)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if u := values.Get("user_id"); u != "" {
		f.UserID = &u
	}

	if s := values.Get("session_id"); s != "" {
		f.SessionID = &s
	}

	if t := values.Get("template_id"); t != "" {
		f.TemplateID = &t
	}

	if d := values.Get("degraded"); d != "" {
		if v, err := strconv.ParseBool(d); err == nil {
			f.Degraded = &v
		}
	}

	return f
}

func scanProposal(s repository.Scanner) (Proposal, error) {
	var p Proposal
	var analysis, score []byte

	err := s.Scan(
		&p.ID,
		&p.UserID,
		&p.SessionID,
		&p.JobPost,
		&p.GeneratedText,
		&p.CurrentText,
		&analysis,
		&p.TemplateID,
		&p.ProfileVersion,
		&score,
		&p.Cost,
		&p.Degraded,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return p, err
	}

	if err := json.Unmarshal(analysis, &p.Analysis); err != nil {
		return p, fmt.Errorf("unmarshal analysis: %w", err)
	}
	if err := json.Unmarshal(score, &p.Score); err != nil {
		return p, fmt.Errorf("unmarshal score: %w", err)
	}

	return p, nil
}
