package agent

import (
	"context"
	"log"
	"os"
	"strings"
	"testing"
)

type stubRetriever struct {
	count  int64
	chunks []RetrievedChunk
	err    error
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string, topK int) ([]RetrievedChunk, error) {
	return s.chunks, s.err
}

func (s *stubRetriever) CountDocuments(ctx context.Context) (int64, error) {
	return s.count, s.err
}

type stubTool struct {
	name   string
	invoke func(input ToolInput) string
}

func (s *stubTool) Name() string { return s.name }

func (s *stubTool) Invoke(ctx context.Context, input ToolInput) string {
	return s.invoke(input)
}

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[TEST] ", log.LstdFlags)
}

func collectEvents(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var collected []Event
	for ev := range events {
		collected = append(collected, ev)
	}
	return collected
}

func TestOrchestratorFullBattery(t *testing.T) {
	questions := []string{"first question", "second question"}

	appraiser := &stubTool{name: "analyst_appraisal", invoke: func(input ToolInput) string {
		if input.Question == "second question" {
			// Deliberately no Score line.
			return "Appraisal:\nWeak evidence.\n\nAgent Commentary:\nLimited data."
		}
		return "Score: 4/5\n\nAppraisal:\nGood evidence.\n\nAgent Commentary:\nSolid."
	}}

	o := NewOrchestrator(
		&stubRetriever{count: 3},
		&stubTool{name: "rag", invoke: func(input ToolInput) string { return "rag answer for " + input.Question }},
		&stubTool{name: "web_search", invoke: func(input ToolInput) string { return "web answer for " + input.Question }},
		appraiser,
		questions, 2, 1000, testLogger(),
	)

	events := collectEvents(t, o.Run(context.Background()))

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3 (2 progress + 1 complete): %+v", len(events), events)
	}
	for i := 0; i < 2; i++ {
		if events[i].Type != "progress" || events[i].Current != i+1 || events[i].Total != 2 {
			t.Errorf("event %d = %+v, want progress %d/2", i, events[i], i+1)
		}
	}

	final := events[2]
	if final.Type != "complete" {
		t.Fatalf("final event type = %q, want complete", final.Type)
	}
	if len(final.Results) != 2 {
		t.Fatalf("got %d results, want one per question", len(final.Results))
	}

	first := final.Results["question_1"]
	if first.Score != 4 {
		t.Errorf("question_1 score = %d, want 4", first.Score)
	}
	if first.Rationale.RAGResponse != "rag answer for first question" {
		t.Errorf("question_1 rag rationale = %q", first.Rationale.RAGResponse)
	}

	second := final.Results["question_2"]
	if second.Score != 0 {
		t.Errorf("question_2 score = %d, want 0 for missing score line", second.Score)
	}
	if second.Scoring == "" {
		t.Error("question_2 should keep a narrative even with a missing score")
	}
}

func TestOrchestratorNoDocuments(t *testing.T) {
	o := NewOrchestrator(
		&stubRetriever{count: 0},
		&stubTool{name: "rag", invoke: func(ToolInput) string { t.Error("rag must not run"); return "" }},
		&stubTool{name: "web_search", invoke: func(ToolInput) string { return "" }},
		&stubTool{name: "analyst_appraisal", invoke: func(ToolInput) string { return "" }},
		[]string{"q"}, 2, 1000, testLogger(),
	)

	events := collectEvents(t, o.Run(context.Background()))

	if len(events) != 1 || events[0].Type != "error" {
		t.Fatalf("expected a single error event, got %+v", events)
	}
}

func TestOrchestratorContextWindowBound(t *testing.T) {
	questions := []string{"alpha", "bravo", "charlie", "delta"}
	var contexts []string

	appraiser := &stubTool{name: "analyst_appraisal", invoke: func(input ToolInput) string {
		contexts = append(contexts, input.PriorContext)
		return "Score: 3/5\n\nAppraisal:\nOK.\n\nAgent Commentary:\nOK."
	}}

	o := NewOrchestrator(
		&stubRetriever{count: 1},
		&stubTool{name: "rag", invoke: func(input ToolInput) string { return "rag:" + input.Question }},
		&stubTool{name: "web_search", invoke: func(input ToolInput) string { return "web:" + input.Question }},
		appraiser,
		questions, 2, 1000, testLogger(),
	)

	collectEvents(t, o.Run(context.Background()))

	if len(contexts) != 4 {
		t.Fatalf("appraiser called %d times, want 4", len(contexts))
	}
	// Question 4 must see only questions 2 and 3, never question 1.
	last := contexts[3]
	if strings.Contains(last, "alpha") {
		t.Errorf("context for question 4 must not contain question 1:\n%s", last)
	}
	for _, want := range []string{"bravo", "charlie"} {
		if !strings.Contains(last, want) {
			t.Errorf("context for question 4 missing %q:\n%s", want, last)
		}
	}
}

func TestOrchestratorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	questionsRun := 0
	appraiser := &stubTool{name: "analyst_appraisal", invoke: func(ToolInput) string {
		questionsRun++
		cancel() // takes effect at the next question boundary
		return "Score: 3/5\n\nAppraisal:\nOK.\n\nAgent Commentary:\nOK."
	}}

	o := NewOrchestrator(
		&stubRetriever{count: 1},
		&stubTool{name: "rag", invoke: func(ToolInput) string { return "rag" }},
		&stubTool{name: "web_search", invoke: func(ToolInput) string { return "web" }},
		appraiser,
		[]string{"one", "two", "three"}, 2, 1000, testLogger(),
	)

	events := collectEvents(t, o.Run(ctx))

	if questionsRun != 1 {
		t.Errorf("questions run = %d, want 1 before cancellation", questionsRun)
	}
	final := events[len(events)-1]
	if final.Type != "error" {
		t.Errorf("final event = %+v, want cancellation error", final)
	}
}

func TestICQuestionsBatteryShape(t *testing.T) {
	if len(ICQuestions) != 6 {
		t.Fatalf("battery has %d questions, want 6", len(ICQuestions))
	}
	for i, q := range ICQuestions {
		if strings.TrimSpace(q) == "" {
			t.Errorf("question %d is empty", i+1)
		}
	}
	if !strings.Contains(ICQuestions[5], "website URL") {
		t.Errorf("last question should ask for the website URL, got %q", ICQuestions[5])
	}
}
