package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// ErrNoDocuments means the session index has nothing to analyze.
var ErrNoDocuments = errors.New("agent: no documents found in session index")

// Event is one streamed orchestration update.
type Event struct {
	Type    string                    `json:"type"`
	Current int                       `json:"current,omitempty"`
	Total   int                       `json:"total,omitempty"`
	Message string                    `json:"message,omitempty"`
	Results map[string]QuestionResult `json:"results,omitempty"`
}

// QuestionResult is the recorded outcome for one battery question.
type QuestionResult struct {
	QuestionText string             `json:"question_text"`
	Score        int                `json:"score"`
	Scoring      string             `json:"scoring"`
	Sources      map[string]*string `json:"sources"`
	Rationale    Rationale          `json:"rationale"`
}

type Rationale struct {
	RAGResponse     string `json:"rag_response"`
	WebResponse     string `json:"web_response"`
	AgentCommentary string `json:"agent_commentary"`
}

// Orchestrator drives the question battery through the tool layer,
// strictly in order: each question's appraisal consumes the previous
// questions' context, so the loop is an intentional serialization
// point, never parallelized.
type Orchestrator struct {
	retriever  Retriever
	ragTool    Tool
	webTool    Tool
	appraiser  Tool
	questions  []string
	windowSize int
	snipChars  int
	logger     *log.Logger
}

func NewOrchestrator(retriever Retriever, ragTool, webTool, appraiser Tool, questions []string, windowSize, snipChars int, logger *log.Logger) *Orchestrator {
	if len(questions) == 0 {
		questions = ICQuestions
	}
	return &Orchestrator{
		retriever:  retriever,
		ragTool:    ragTool,
		webTool:    webTool,
		appraiser:  appraiser,
		questions:  questions,
		windowSize: windowSize,
		snipChars:  snipChars,
		logger:     logger,
	}
}

// Run executes the battery and streams events on the returned
// channel. The channel always terminates with either a single error
// event or a single complete event, then closes.
func (o *Orchestrator) Run(ctx context.Context) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		o.run(ctx, events)
	}()
	return events
}

func (o *Orchestrator) run(ctx context.Context, events chan<- Event) {
	count, err := o.retriever.CountDocuments(ctx)
	if err != nil {
		o.logger.Printf("[ERROR] Could not resolve documents for analysis: %v", err)
		events <- Event{Type: "error", Message: fmt.Sprintf("Failed to resolve session documents: %v", err)}
		return
	}
	if count == 0 {
		events <- Event{Type: "error", Message: ErrNoDocuments.Error()}
		return
	}

	total := len(o.questions)
	results := make(map[string]QuestionResult, total)
	window := NewContextWindow(o.windowSize, o.snipChars)

	for idx, question := range o.questions {
		// Cancellation takes effect at question boundaries only; the
		// providers are opaque and carry their own call timeouts.
		if ctx.Err() != nil {
			events <- Event{Type: "error", Message: fmt.Sprintf("Analysis cancelled after %d of %d questions", idx, total)}
			return
		}

		events <- Event{Type: "progress", Current: idx + 1, Total: total}

		ragOutput := o.ragTool.Invoke(ctx, ToolInput{Question: question})
		webOutput := o.webTool.Invoke(ctx, ToolInput{Question: question})

		raw := o.appraiser.Invoke(ctx, ToolInput{
			Question:     question,
			RAGOutput:    ragOutput,
			WebOutput:    webOutput,
			PriorContext: window.Render(),
		})

		record := ParseAppraisal(raw)
		commentary := record.AgentCommentary
		if record.Score == 0 && !strings.Contains(raw, "Appraisal:") {
			// Nothing structured came back; keep the raw text as the
			// narrative and flag the failure instead of dropping it.
			record.Scoring = raw
			commentary = "Parsing failed: appraisal output carried no labeled sections"
		}

		results[fmt.Sprintf("question_%d", idx+1)] = QuestionResult{
			QuestionText: question,
			Score:        record.Score,
			Scoring:      record.Scoring,
			Sources:      ExtractSources(record.Scoring),
			Rationale: Rationale{
				RAGResponse:     ragOutput,
				WebResponse:     webOutput,
				AgentCommentary: commentary,
			},
		}

		window.Append(question, ragOutput, webOutput)
	}

	events <- Event{Type: "complete", Results: results}
}
