package agent

import (
	"testing"
)

func TestParseAppraisal(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantScore      int
		wantScoring    bool
		wantCommentary bool
	}{
		{
			name:           "all three sections",
			text:           "Score: 4/5\n\nAppraisal:\nThe evidence is strong and externally confirmed.\n\nAgent Commentary:\nRecommend further review of the cap table.",
			wantScore:      4,
			wantScoring:    true,
			wantCommentary: true,
		},
		{
			name:           "score out of phrasing",
			text:           "score 3 out of 5\n\nAppraisal:\nMixed evidence.\n\nAgent Commentary:\nNone.",
			wantScore:      3,
			wantScoring:    true,
			wantCommentary: true,
		},
		{
			name:        "missing commentary",
			text:        "Score: 5/5\n\nAppraisal:\nExceptional and well sourced.",
			wantScore:   5,
			wantScoring: true,
		},
		{
			name:        "no labels at all",
			text:        "The company appears solid but no structured response was produced.",
			wantScore:   0,
			wantScoring: true,
		},
		{
			name:        "score above range rejected",
			text:        "Score: 9/5\n\nAppraisal:\nBroken scale.",
			wantScore:   0,
			wantScoring: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAppraisal(tt.text)
			if got.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", got.Score, tt.wantScore)
			}
			if tt.wantScoring && got.Scoring == "" {
				t.Error("Scoring should not be empty")
			}
			if tt.wantCommentary && got.AgentCommentary == "" {
				t.Error("AgentCommentary should not be empty")
			}
		})
	}
}

func TestEnsureSections(t *testing.T) {
	t.Run("missing score gets default", func(t *testing.T) {
		fixed := EnsureSections("Appraisal:\nSome analysis.\n\nAgent Commentary:\nNotes.")
		record := ParseAppraisal(fixed)
		if record.Score != 3 {
			t.Errorf("default score = %d, want 3", record.Score)
		}
	})

	t.Run("missing commentary gets stub", func(t *testing.T) {
		fixed := EnsureSections("Score: 4/5\n\nAppraisal:\nSolid evidence.")
		record := ParseAppraisal(fixed)
		if record.AgentCommentary == "" {
			t.Error("commentary stub should be synthesized")
		}
		if record.Score != 4 {
			t.Errorf("score = %d, want 4", record.Score)
		}
	})

	t.Run("missing appraisal label preserves score", func(t *testing.T) {
		fixed := EnsureSections("Score: 2/5\nWeak evidence throughout.")
		record := ParseAppraisal(fixed)
		if record.Score != 2 {
			t.Errorf("score = %d, want 2", record.Score)
		}
		if record.Scoring == "" {
			t.Error("scoring narrative should not be empty")
		}
	})

	t.Run("complete text untouched", func(t *testing.T) {
		text := "Score: 5/5\n\nAppraisal:\nGood.\n\nAgent Commentary:\nFine."
		if EnsureSections(text) != text {
			t.Error("complete text should pass through unchanged")
		}
	})
}

func TestParseSourceLines(t *testing.T) {
	raw := "Company Pitch Deck\nAnnual Report 2024 (https://example.com/report.pdf)\nFT Article (https://ft.com/article)"
	sources := ParseSourceLines(raw)

	if len(sources) != 3 {
		t.Fatalf("got %d sources, want 3: %v", len(sources), sources)
	}
	if sources["Company Pitch Deck"] != nil {
		t.Error("source without URL should map to nil")
	}
	if url := sources["Annual Report 2024"]; url == nil || *url != "https://example.com/report.pdf" {
		t.Errorf("Annual Report URL = %v", url)
	}
	if url := sources["FT Article"]; url == nil || *url != "https://ft.com/article" {
		t.Errorf("FT Article URL = %v", url)
	}
}

func TestExtractSources(t *testing.T) {
	narrative := "The CEO previously led two exits.\nCompanies House filing (https://find-and-update.company-information.service.gov.uk/company/123)\nNo contradictions were found."
	sources := ExtractSources(narrative)

	if len(sources) != 1 {
		t.Fatalf("got %d sources, want 1: %v", len(sources), sources)
	}
	for name, url := range sources {
		if name != "Companies House filing" {
			t.Errorf("name = %q", name)
		}
		if url == nil {
			t.Error("URL should be set")
		}
	}
}
