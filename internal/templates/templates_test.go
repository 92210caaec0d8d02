package templates_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/quillworks/quill/internal/analyzer"
	"github.com/quillworks/quill/internal/profile"
	"github.com/quillworks/quill/internal/templates"
)

func TestCatalogComplete(t *testing.T) {
	all := templates.All()
	if len(all) != 15 {
		t.Fatalf("catalog size: got %d, want 15", len(all))
	}

	seen := make(map[templates.TemplateID]struct{}, len(all))
	for _, tmpl := range all {
		if _, dup := seen[tmpl.ID]; dup {
			t.Errorf("duplicate template id %s", tmpl.ID)
		}
		seen[tmpl.ID] = struct{}{}

		if tmpl.Paragraphs < templates.MinParagraphs || tmpl.Paragraphs > templates.MaxParagraphs {
			t.Errorf("template %s: paragraphs %d out of range", tmpl.ID, tmpl.Paragraphs)
		}
		if tmpl.Instruction == "" {
			t.Errorf("template %s: missing instruction", tmpl.ID)
		}
		if len(tmpl.OpeningMarkers) == 0 {
			t.Errorf("template %s: missing opening markers", tmpl.ID)
		}
	}
}

func TestGet(t *testing.T) {
	t.Run("known id", func(t *testing.T) {
		tmpl, err := templates.Get("pain_point-4")
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if tmpl.Hook != templates.HookPainPoint {
			t.Errorf("hook: got %s, want %s", tmpl.Hook, templates.HookPainPoint)
		}
		if tmpl.Paragraphs != 4 {
			t.Errorf("paragraphs: got %d, want 4", tmpl.Paragraphs)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := templates.Get("pain_point-9")
		if !errors.Is(err, templates.ErrUnknownTemplate) {
			t.Errorf("error: got %v, want ErrUnknownTemplate", err)
		}
	})
}

func TestMapHTTPStatus(t *testing.T) {
	if got := templates.MapHTTPStatus(templates.ErrUnknownTemplate); got != http.StatusBadRequest {
		t.Errorf("unknown template status: got %d, want 400", got)
	}
	if got := templates.MapHTTPStatus(errors.New("boom")); got != http.StatusInternalServerError {
		t.Errorf("fallback status: got %d, want 500", got)
	}
}

func TestCandidates(t *testing.T) {
	t.Run("cold profile keeps base set", func(t *testing.T) {
		hooks := templates.Candidates(analyzer.JobTypeWebDevelopment, profile.StageCold)
		if len(hooks) != 3 {
			t.Fatalf("candidates: got %d, want 3 (%v)", len(hooks), hooks)
		}
	})

	t.Run("mature profile widens set", func(t *testing.T) {
		hooks := templates.Candidates(analyzer.JobTypeWebDevelopment, profile.StageMature)
		if len(hooks) != 5 {
			t.Fatalf("candidates: got %d, want 5 (%v)", len(hooks), hooks)
		}
	})

	t.Run("widening never duplicates", func(t *testing.T) {
		hooks := templates.Candidates(analyzer.JobTypeWriting, profile.StageLearning)
		seen := make(map[templates.Hook]struct{})
		for _, h := range hooks {
			if _, dup := seen[h]; dup {
				t.Errorf("duplicate hook %s in %v", h, hooks)
			}
			seen[h] = struct{}{}
		}
	})

	t.Run("unknown job type falls back", func(t *testing.T) {
		got := templates.Candidates(analyzer.JobType("quantum"), profile.StageCold)
		want := templates.Candidates(analyzer.JobTypeOther, profile.StageCold)
		if len(got) != len(want) {
			t.Fatalf("candidates: got %v, want %v", got, want)
		}
		for i := range got {
			if got[i] != want[i] {
				t.Errorf("hook %d: got %s, want %s", i, got[i], want[i])
			}
		}
	})
}

func TestSelect(t *testing.T) {
	analysis := analyzer.JobAnalysis{
		JobType:      analyzer.JobTypeWebDevelopment,
		Requirements: []string{"react", "postgres"},
	}

	t.Run("stays within candidate hooks", func(t *testing.T) {
		s := templates.NewSelector(1)
		allowed := make(map[templates.Hook]struct{})
		for _, h := range templates.Candidates(analysis.JobType, profile.StageCold) {
			allowed[h] = struct{}{}
		}

		for i := 0; i < 50; i++ {
			tmpl := s.Select(analysis, profile.StageCold)
			if _, ok := allowed[tmpl.Hook]; !ok {
				t.Fatalf("hook %s outside candidate set", tmpl.Hook)
			}
			if tmpl.Paragraphs < templates.MinParagraphs || tmpl.Paragraphs > templates.MaxParagraphs {
				t.Fatalf("paragraphs %d out of range", tmpl.Paragraphs)
			}
		}
	})

	t.Run("varies across calls", func(t *testing.T) {
		s := templates.NewSelector(42)
		ids := make(map[templates.TemplateID]struct{})
		for i := 0; i < 50; i++ {
			ids[s.Select(analysis, profile.StageCold).ID] = struct{}{}
		}
		if len(ids) < 2 {
			t.Errorf("selection never varied over 50 draws")
		}
	})

	t.Run("thin posting caps paragraphs", func(t *testing.T) {
		thin := analyzer.JobAnalysis{JobType: analyzer.JobTypeOther, Requirements: []string{"logo"}}
		s := templates.NewSelector(7)
		for i := 0; i < 50; i++ {
			if got := s.Select(thin, profile.StageCold).Paragraphs; got > 4 {
				t.Fatalf("paragraphs: got %d, want at most 4 for a thin posting", got)
			}
		}
	})

	t.Run("dense posting floors paragraphs", func(t *testing.T) {
		dense := analyzer.JobAnalysis{
			JobType:      analyzer.JobTypeData,
			Requirements: []string{"python", "dbt", "airflow", "warehouse design"},
		}
		s := templates.NewSelector(7)
		for i := 0; i < 50; i++ {
			if got := s.Select(dense, profile.StageCold).Paragraphs; got < 4 {
				t.Fatalf("paragraphs: got %d, want at least 4 for a dense posting", got)
			}
		}
	})

	t.Run("reproducible with same seed", func(t *testing.T) {
		a := templates.NewSelector(99)
		b := templates.NewSelector(99)
		for i := 0; i < 20; i++ {
			if got, want := a.Select(analysis, profile.StageMature).ID, b.Select(analysis, profile.StageMature).ID; got != want {
				t.Fatalf("draw %d: got %s, want %s", i, got, want)
			}
		}
	})
}
