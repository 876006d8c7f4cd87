package service

import (
	"context"
	"log"
	"time"

	"rfp-analysis-be/internal/config"
	"rfp-analysis-be/internal/pkg/logger"
	"rfp-analysis-be/internal/repository/specification"
	"rfp-analysis-be/internal/repository/unitofwork"
	"rfp-analysis-be/pkg/agent"
	"rfp-analysis-be/pkg/embedding"
	"rfp-analysis-be/pkg/events"
	"rfp-analysis-be/pkg/llm"
	pktNats "rfp-analysis-be/pkg/nats"
	"rfp-analysis-be/pkg/websearch"
)

type IAnalysisService interface {
	// Analyze walks a question battery against the session's documents
	// and streams progress events. An empty questions slice runs the
	// default investment-committee battery. The channel closes after
	// the terminal complete or error event.
	Analyze(ctx context.Context, sessionID string, questions []string) (<-chan agent.Event, error)
	// Compare probes the session's index against a reference index.
	Compare(ctx context.Context, sessionID string, referenceIndex string) (float64, int, error)
}

type analysisService struct {
	indexService      IIndexService
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	llmProvider       llm.LLMProvider
	searcher          websearch.Searcher
	eventPublisher    *pktNats.Publisher
	aiCfg             config.AIConfig
	analysisCfg       config.AnalysisConfig
	logger            logger.ILogger
	agentLog          *log.Logger
}

func NewAnalysisService(
	indexService IIndexService,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	llmProvider llm.LLMProvider,
	searcher websearch.Searcher,
	eventPublisher *pktNats.Publisher,
	aiCfg config.AIConfig,
	analysisCfg config.AnalysisConfig,
	appLogger logger.ILogger,
	agentLog *log.Logger,
) IAnalysisService {
	return &analysisService{
		indexService:      indexService,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		searcher:          searcher,
		eventPublisher:    eventPublisher,
		aiCfg:             aiCfg,
		analysisCfg:       analysisCfg,
		logger:            appLogger,
		agentLog:          agentLog,
	}
}

// sessionRetriever adapts a pinned index handle to the agent layer's
// retrieval contract. Queries are embedded on the way in, so the agent
// code never touches vectors.
type sessionRetriever struct {
	handle            *IndexHandle
	indexService      IIndexService
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
}

var _ agent.Retriever = &sessionRetriever{}

func (r *sessionRetriever) Retrieve(ctx context.Context, query string, topK int) ([]agent.RetrievedChunk, error) {
	vector, err := r.embeddingProvider.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	matches, err := r.indexService.Query(ctx, r.handle, vector, topK)
	if err != nil {
		return nil, err
	}
	chunks := make([]agent.RetrievedChunk, len(matches))
	for i, m := range matches {
		chunks[i] = agent.RetrievedChunk{
			Content:        m.Chunk.Content,
			SourceFilename: m.Chunk.SourceFilename,
			Score:          m.Similarity,
		}
	}
	return chunks, nil
}

func (r *sessionRetriever) CountDocuments(ctx context.Context) (int64, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	return uow.DocumentChunkRepository().Count(ctx, specification.ByIndexName{IndexName: r.handle.IndexName})
}

func (s *analysisService) Analyze(ctx context.Context, sessionID string, questions []string) (<-chan agent.Event, error) {
	handle, err := s.indexService.Resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		questions = agent.ICQuestions
	}

	retriever := &sessionRetriever{
		handle:            handle,
		indexService:      s.indexService,
		uowFactory:        s.uowFactory,
		embeddingProvider: s.embeddingProvider,
	}

	ragTool := agent.NewRAGTool(retriever, s.llmProvider, s.analysisCfg.ChatTopK)
	webTool := agent.NewWebSearchTool(s.searcher, s.analysisCfg.WebQualifier, s.analysisCfg.WebRelaxed, s.analysisCfg.WebSearchResults)
	appraiser := agent.NewAppraisalTool(s.llmProvider, s.aiCfg.Temperature, s.aiCfg.AppraisalMaxTokens)

	orchestrator := agent.NewOrchestrator(
		retriever,
		ragTool,
		webTool,
		appraiser,
		questions,
		s.analysisCfg.ContextWindowSize,
		s.analysisCfg.ContextSnipChars,
		s.agentLog,
	)

	s.logger.Info("AnalysisService", "Analysis started", map[string]interface{}{
		"session_id": sessionID,
		"index_name": handle.IndexName,
		"questions":  len(questions),
	})

	source := orchestrator.Run(ctx)

	// Relay events so the terminal one can also be announced on the
	// event bus for the notification fan-out.
	relay := make(chan agent.Event)
	go func() {
		defer close(relay)
		for evt := range source {
			if evt.Type == "complete" {
				s.publishCompleted(ctx, sessionID, len(evt.Results))
			}
			relay <- evt
		}
	}()

	return relay, nil
}

func (s *analysisService) publishCompleted(ctx context.Context, sessionID string, resultCount int) {
	if s.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type: "ANALYSIS_COMPLETED",
		Data: map[string]interface{}{
			"session_id":   sessionID,
			"result_count": resultCount,
		},
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("AnalysisService", "Failed to publish ANALYSIS_COMPLETED event", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *analysisService) Compare(ctx context.Context, sessionID string, referenceIndex string) (float64, int, error) {
	return s.indexService.Compare(ctx, sessionID, referenceIndex, s.analysisCfg.ChatTopK)
}
