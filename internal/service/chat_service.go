package service

import (
	"context"
	"fmt"
	"strings"

	"rfp-analysis-be/internal/dto"
	"rfp-analysis-be/pkg/embedding"
	"rfp-analysis-be/pkg/llm"
)

const chatMaxTokens = 500

const chatSystemPrompt = `You are an Information Memorandum analyst. Answer the user's question using only the document excerpts provided below. If the excerpts do not contain the answer, say so plainly rather than guessing.

Document excerpts:
%s`

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	indexService      IIndexService
	embeddingProvider embedding.Provider
	llmProvider       llm.LLMProvider
	temperature       float64
	topK              int
}

func NewChatService(
	indexService IIndexService,
	embeddingProvider embedding.Provider,
	llmProvider llm.LLMProvider,
	temperature float64,
	topK int,
) IChatService {
	return &chatService{
		indexService:      indexService,
		embeddingProvider: embeddingProvider,
		llmProvider:       llmProvider,
		temperature:       temperature,
		topK:              topK,
	}
}

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	handle, err := s.indexService.Resolve(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}

	queryVector, err := s.embeddingProvider.Embed(ctx, req.Message)
	if err != nil {
		return nil, fmt.Errorf("embed chat message: %w", err)
	}

	matches, err := s.indexService.Query(ctx, handle, queryVector, s.topK)
	if err != nil {
		return nil, err
	}

	var excerpts []string
	sources := make([]dto.ChatSource, 0, len(matches))
	for i, m := range matches {
		excerpts = append(excerpts, fmt.Sprintf("[%d] (%s)\n%s", i+1, m.Chunk.SourceFilename, m.Chunk.Content))
		sources = append(sources, dto.ChatSource{
			Filename: m.Chunk.SourceFilename,
			Score:    m.Similarity,
		})
	}
	docContext := "No relevant excerpts were found in the uploaded documents."
	if len(excerpts) > 0 {
		docContext = strings.Join(excerpts, "\n\n")
	}

	answer, err := s.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: fmt.Sprintf(chatSystemPrompt, docContext)},
		{Role: "user", Content: req.Message},
	},
		llm.WithTemperature(s.temperature),
		llm.WithMaxTokens(chatMaxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	return &dto.ChatResponse{
		SessionID: req.SessionID,
		Answer:    answer,
		Sources:   sources,
	}, nil
}
