package analyzer

import "fmt"

const extractionSpec = `Analyze the freelance job posting below and respond with a JSON object
matching this exact structure:

{
  "requirements": ["<requirement1>", "<requirement2>"],
  "pain_points": ["<pain1>"],
  "budget_signal": "<description>",
  "client_history": "<description>",
  "job_type": "<category>"
}

Field constraints:
- requirements: Concrete deliverables and skills the client asks for, in
  the order they appear in the posting. Keep each entry short (under 12
  words) and specific to this posting.
- pain_points: Problems, frustrations, or urgency the client expresses,
  stated or strongly implied. Empty array if none are expressed.
- budget_signal: What the posting reveals about budget: an explicit
  amount or range, an hourly rate, "negotiable", or "none" when the
  posting says nothing about money.
- client_history: What the posting reveals about the client's track
  record: hire count, spend, reviews, "new client", or "none".
- job_type: Exactly one of: web_development, mobile_development, design,
  writing, data, marketing, other.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Extract only what the posting states; never invent requirements
- Preserve the client's own vocabulary in requirements and pain_points

JOB POSTING:
%s`

type extractionResponse struct {
	Requirements  []string `json:"requirements"`
	PainPoints    []string `json:"pain_points"`
	BudgetSignal  string   `json:"budget_signal"`
	ClientHistory string   `json:"client_history"`
	JobType       JobType  `json:"job_type"`
}

func extractionPrompt(jobPostText string) string {
	return fmt.Sprintf(extractionSpec, jobPostText)
}
