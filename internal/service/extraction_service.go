package service

import (
	"context"
	"fmt"
	"time"

	"rfp-analysis-be/internal/config"
	"rfp-analysis-be/internal/dto"
	"rfp-analysis-be/internal/pkg/logger"
	"rfp-analysis-be/internal/repository/memory"
	"rfp-analysis-be/pkg/embedding"
	"rfp-analysis-be/pkg/extract"
	"rfp-analysis-be/pkg/llm"
)

const defaultTemplateType = "standard"

// defaultExtractionQuery seeds retrieval when the caller supplies no
// query of their own. Broad on purpose: with top-k at 40 it pulls most
// of a typical RFP into the prompt.
const defaultExtractionQuery = "Extract all key commercial, technical, legal and timeline details from the RFP documents."

type IExtractionService interface {
	Extract(ctx context.Context, req *dto.ExtractRequest) (*dto.ExtractResponse, error)
}

type extractionService struct {
	indexService      IIndexService
	embeddingProvider embedding.Provider
	llmProvider       llm.LLMProvider
	templateLoader    *extract.TemplateLoader
	extractionCache   *memory.ExtractionCache
	aiCfg             config.AIConfig
	topK              int
	logger            logger.ILogger
}

func NewExtractionService(
	indexService IIndexService,
	embeddingProvider embedding.Provider,
	llmProvider llm.LLMProvider,
	templateLoader *extract.TemplateLoader,
	extractionCache *memory.ExtractionCache,
	aiCfg config.AIConfig,
	topK int,
	log logger.ILogger,
) IExtractionService {
	return &extractionService{
		indexService:      indexService,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		templateLoader:    templateLoader,
		extractionCache:   extractionCache,
		aiCfg:             aiCfg,
		topK:              topK,
		logger:            log,
	}
}

func (s *extractionService) Extract(ctx context.Context, req *dto.ExtractRequest) (*dto.ExtractResponse, error) {
	templateType := req.TemplateType
	if templateType == "" {
		templateType = defaultTemplateType
	}

	if cached, found := s.extractionCache.Get(req.SessionID, templateType); found {
		s.logger.Info("ExtractionService", "Cache hit", map[string]interface{}{
			"session_id":    req.SessionID,
			"template_type": templateType,
		})
		return &dto.ExtractResponse{
			SessionID:    req.SessionID,
			TemplateType: templateType,
			Cached:       true,
			Data:         cached,
		}, nil
	}

	handle, err := s.indexService.Resolve(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	query := req.Query
	if query == "" {
		query = defaultExtractionQuery
	}

	queryVector, err := s.embeddingProvider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed extraction query: %w", err)
	}

	matches, err := s.indexService.Query(ctx, handle, queryVector, s.topK)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no documents indexed for session %s", req.SessionID)
	}

	documents := make([]string, len(matches))
	for i, m := range matches {
		documents[i] = m.Chunk.Content
	}

	templateText := s.templateLoader.Load(templateType)
	prompt, err := extract.RenderPrompt(templateText, documents, query)
	if err != nil {
		return nil, fmt.Errorf("render extraction prompt: %w", err)
	}

	llmCtx, cancel := context.WithTimeout(ctx, time.Duration(s.aiCfg.ExtractionTimeoutS)*time.Second)
	defer cancel()

	raw, err := s.llmProvider.Generate(llmCtx, prompt,
		llm.WithTemperature(s.aiCfg.Temperature),
		llm.WithMaxTokens(s.aiCfg.ExtractionMaxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("extraction completion: %w", err)
	}

	result, err := extract.ParseJSON(raw)
	if err != nil {
		// The ExtractionError excerpt makes malformed model output
		// debuggable without logging the full completion.
		return nil, err
	}

	s.extractionCache.Set(req.SessionID, templateType, result)

	s.logger.Info("ExtractionService", "Extraction complete", map[string]interface{}{
		"session_id":    req.SessionID,
		"template_type": templateType,
		"chunks_used":   len(documents),
	})

	return &dto.ExtractResponse{
		SessionID:    req.SessionID,
		TemplateType: templateType,
		Cached:       false,
		Data:         result,
	}, nil
}
