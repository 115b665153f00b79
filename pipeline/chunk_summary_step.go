package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/studyhelper/studyhelper/llm_service"
)

const chunkSummarySystemPrompt = "You are a study assistant. Summarize the given section of a document " +
	"in a few short sentences, keeping the key facts and terminology."

// ChunkSummaryStepImpl splits the merged document text into bounded chunks
// and asks the LLM service for one short summary per chunk. A failed chunk
// is replaced by an empty summary so the remaining chunks still run.
type ChunkSummaryStepImpl struct {
	LLMServiceInstance llm_service.LLMService
	ChunkMaxChars      int
	Temperature        float64
	Logger             *slog.Logger
}

func (s *ChunkSummaryStepImpl) Execute(ctx context.Context, pipelineContext *Context) error {
	value, ok := pipelineContext.GetStepOutput(KeyDocumentText)
	if !ok {
		return fmt.Errorf("no document text found in pipeline context")
	}

	text, ok := value.(string)
	if !ok {
		return fmt.Errorf("unexpected type for document text in pipeline context: %T", value)
	}

	if s.LLMServiceInstance == nil {
		return fmt.Errorf("LLM service is not initialized for chunk summary step")
	}

	chunks := SplitChunks(text, s.ChunkMaxChars)
	summaries := make([]string, len(chunks))

	for i, chunk := range chunks {
		messages := []llm_service.Message{
			{Role: llm_service.RoleSystem, Content: chunkSummarySystemPrompt},
			{Role: llm_service.RoleUser, Content: fmt.Sprintf("Section %d of %d:\n\n%s", i+1, len(chunks), chunk)},
		}

		summary, err := s.LLMServiceInstance.Generate(ctx, messages, s.Temperature)
		if err != nil {
			s.Logger.Error("Chunk summary failed, continuing with remaining chunks",
				slog.Int("chunk", i+1),
				slog.Int("total_chunks", len(chunks)),
				slog.String("error", err.Error()))
			summaries[i] = ""
			continue
		}

		summaries[i] = strings.TrimSpace(summary)
	}

	s.Logger.Info("Summarized document chunks",
		slog.Int("chunk_count", len(chunks)))

	pipelineContext.SetStepOutput(KeyPartialSummaries, summaries)
	return nil
}

func (s *ChunkSummaryStepImpl) GetType() string {
	return "chunk_summary_step"
}
