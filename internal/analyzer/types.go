// Package analyzer structures raw job posting text into the signal the
// generation pipeline works from: requirements, pain points, budget and
// client-history signals, a job type, and a rule-based opportunity
// assessment. Extraction runs on the gateway's cheap tier and degrades to a
// low-confidence analysis rather than failing the pipeline.
package analyzer

import (
	"encoding/json"
	"slices"
)

// Confidence labels how much the extracted analysis can be trusted.
type Confidence string

// Confidence levels. Low means the input was unclear or extraction
// degraded; callers should lean on templates over extracted signal.
const (
	ConfidenceLow  Confidence = "low"
	ConfidenceHigh Confidence = "high"
)

// JobType is the categorical classification of a job posting.
type JobType string

// Supported job type categories.
const (
	JobTypeWebDevelopment    JobType = "web_development"
	JobTypeMobileDevelopment JobType = "mobile_development"
	JobTypeDesign            JobType = "design"
	JobTypeWriting           JobType = "writing"
	JobTypeData              JobType = "data"
	JobTypeMarketing         JobType = "marketing"
	JobTypeOther             JobType = "other"
)

var jobTypes = []JobType{
	JobTypeWebDevelopment,
	JobTypeMobileDevelopment,
	JobTypeDesign,
	JobTypeWriting,
	JobTypeData,
	JobTypeMarketing,
	JobTypeOther,
}

// JobTypes returns the list of valid job type categories.
func JobTypes() []JobType {
	return jobTypes
}

// UnmarshalJSON coerces unrecognized categories to JobTypeOther rather than
// failing; extraction output is model-produced and occasionally creative.
func (t *JobType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	v := JobType(raw)
	if !slices.Contains(jobTypes, v) {
		v = JobTypeOther
	}
	*t = v

	return nil
}

// Assessment is the rule-based opportunity/red-flag evaluation of a posting.
// Score is a heuristic in [0,100], never a prediction; it always travels
// with the analysis confidence label.
type Assessment struct {
	Score      int        `json:"score"`
	Flags      []string   `json:"flags"`
	Confidence Confidence `json:"confidence"`
}

// JobAnalysis is the structured signal extracted from one job posting.
// Immutable once produced; it lives only as long as the generation request
// unless the proposal is persisted to history.
type JobAnalysis struct {
	Requirements  []string   `json:"requirements"`
	PainPoints    []string   `json:"pain_points"`
	BudgetSignal  string     `json:"budget_signal"`
	ClientHistory string     `json:"client_history"`
	JobType       JobType    `json:"job_type"`
	Confidence    Confidence `json:"confidence"`
	Assessment    Assessment `json:"assessment"`
}
