package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	userID        string
	sessionID     string
	allowDegraded bool
	asJSON        bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <job-post-file>",
	Short: "Generate a proposal from a job posting",
	Long: `Generate a proposal from a job posting file. Pass - to read the
posting from stdin.

Example:
  quill generate posting.txt --user alice
  pbpaste | quill generate - --user alice`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&userID, "user", "", "User whose voice profile to write in (required)")
	generateCmd.Flags().StringVar(&sessionID, "session", "", "Session id (generated when omitted)")
	generateCmd.Flags().BoolVar(&allowDegraded, "allow-degraded", false, "Fall back to the extraction tier if the generation tier is down")
	generateCmd.Flags().BoolVar(&asJSON, "json", false, "Print the full proposal as JSON")
	generateCmd.MarkFlagRequired("user")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	jobPost, err := readJobPost(args[0])
	if err != nil {
		return err
	}

	session := sessionID
	if session == "" {
		session = uuid.NewString()
	}

	var proposal struct {
		ID          string `json:"id"`
		CurrentText string `json:"current_text"`
		TemplateID  string `json:"template_id"`
		CostMicros  int64  `json:"cost_micros"`
		Degraded    bool   `json:"degraded"`
		Score       struct {
			Aggregate float64 `json:"aggregate"`
			Category  string  `json:"category"`
			AIRisk    string  `json:"ai_risk"`
		} `json:"score"`
	}

	req := map[string]any{
		"user_id":        userID,
		"session_id":     session,
		"job_post":       jobPost,
		"allow_degraded": allowDegraded,
	}

	if err := postJSON("/proposals/generate", req, &proposal); err != nil {
		return err
	}

	if asJSON {
		return printJSON(proposal)
	}

	fmt.Println(proposal.CurrentText)
	fmt.Println()
	fmt.Printf("id: %s  template: %s  score: %.1f (%s)  ai-risk: %s  cost: $%.4f\n",
		proposal.ID,
		proposal.TemplateID,
		proposal.Score.Aggregate,
		proposal.Score.Category,
		proposal.Score.AIRisk,
		float64(proposal.CostMicros)/1_000_000,
	)
	if proposal.Degraded {
		fmt.Println("note: generated on the degraded tier")
	}
	return nil
}

func readJobPost(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", errors.Wrap(err, "read stdin")
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "read job post")
	}
	return string(data), nil
}
