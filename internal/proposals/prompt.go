package proposals

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quillworks/quill/internal/analyzer"
	"github.com/quillworks/quill/internal/profile"
	"github.com/quillworks/quill/internal/templates"
)

const generationSpec = `Write a freelance proposal responding to the job posting below.

OPENING STRATEGY:
%s

STRUCTURE:
- Exactly %d paragraphs separated by blank lines
- 150 to 250 words total
- Close with a concrete, low-pressure next step

JOB SIGNAL (reference these naturally, spread across the proposal):
%s
%s
VOICE:
%s

Behavioral constraints:
- Plain text only, no markdown, no subject line, no signature block
- Reference only what the posting actually says; never invent experience
- Vary sentence length; avoid filler like "I am excited to apply"

JOB POSTING:
%s`

// generationPrompt composes the generation-tier prompt from the extracted
// job signal, the selected template, and the voice profile. How much voice
// instruction is included scales with the profile's maturity weight, so a
// cold profile stays template-dominant.
func generationPrompt(
	jobPost string,
	analysis *analyzer.JobAnalysis,
	template templates.Template,
	voice *profile.VoiceProfile,
) string {
	return fmt.Sprintf(
		generationSpec,
		template.Instruction,
		template.Paragraphs,
		signalSection(analysis),
		assessmentSection(analysis),
		voiceSection(voice),
		jobPost,
	)
}

func signalSection(analysis *analyzer.JobAnalysis) string {
	var b strings.Builder

	if len(analysis.Requirements) > 0 {
		b.WriteString("Requirements:\n")
		for _, r := range analysis.Requirements {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	if len(analysis.PainPoints) > 0 {
		b.WriteString("Pain points:\n")
		for _, p := range analysis.PainPoints {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	if analysis.BudgetSignal != "" && analysis.BudgetSignal != "none" {
		fmt.Fprintf(&b, "Budget: %s\n", analysis.BudgetSignal)
	}

	if b.Len() == 0 {
		return "- The posting carried little extractable signal; respond to its overall intent.\n"
	}
	return b.String()
}

func assessmentSection(analysis *analyzer.JobAnalysis) string {
	if analysis.Confidence == analyzer.ConfidenceLow {
		return "\nNOTE: Signal confidence is low. Lean on the opening strategy and keep claims general.\n\n"
	}
	return "\n"
}

// voiceSection renders voice instructions proportional to maturity. Each
// weight tier unlocks more of the profile: formality first, then signature
// phrases, then rhythm and deliberate imperfections.
func voiceSection(voice *profile.VoiceProfile) string {
	weight := voice.Maturity.PromptWeight()

	var lines []string
	lines = append(lines, "- Professional but human; write like a person, not a cover letter")

	if weight >= 0.3 {
		lines = append(lines, formalityLine(voice.Formality))
	}
	if weight >= 0.6 {
		if phrases := topPhrases(voice.SignaturePhrases, 3); len(phrases) > 0 {
			lines = append(lines, fmt.Sprintf(
				"- Where natural, use the writer's own phrasing: %s",
				strings.Join(phrases, "; "),
			))
		}
	}
	if weight >= 1.0 {
		lines = append(lines, fmt.Sprintf("- Sentence rhythm: %s", voice.Rhythm))
		if voice.Imperfections.Fragments {
			lines = append(lines, "- An occasional sentence fragment is fine. Like this.")
		}
		if voice.Imperfections.CasualAsides {
			lines = append(lines, "- One brief casual aside in parentheses is welcome")
		}
		if voice.Imperfections.MildRedundancy {
			lines = append(lines, "- Restating the key point once near the close is in character")
		}
	}

	return strings.Join(lines, "\n")
}

func formalityLine(formality float64) string {
	switch {
	case formality <= 3.5:
		return "- Tone: casual and direct, contractions welcome"
	case formality >= 6.5:
		return "- Tone: formal and measured, no slang"
	default:
		return "- Tone: conversational professional"
	}
}

// topPhrases returns the n highest-count signature phrases, most used first.
func topPhrases(phrases map[string]int, n int) []string {
	type entry struct {
		phrase string
		count  int
	}

	entries := make([]entry, 0, len(phrases))
	for p, c := range phrases {
		entries = append(entries, entry{p, c})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].phrase < entries[j].phrase
	})

	if len(entries) > n {
		entries = entries[:n]
	}

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.phrase
	}
	return out
}
