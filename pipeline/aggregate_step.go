package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/studyhelper/studyhelper/llm_service"
)

const emptyDocumentReport = "No readable text was found in the uploaded documents."

// AggregateStepImpl joins the partial summaries with blank lines and issues
// exactly one LLM call to produce the final report: an overall summary, a
// configurable number of salient sentences and of clarifying questions. The
// response is treated as opaque text; the step does not verify that the
// model honored the requested structure.
type AggregateStepImpl struct {
	LLMServiceInstance  llm_service.LLMService
	SalientSentences    int
	ClarifyingQuestions int
	Temperature         float64
	Logger              *slog.Logger
}

func (s *AggregateStepImpl) Execute(ctx context.Context, pipelineContext *Context) error {
	value, ok := pipelineContext.GetStepOutput(KeyPartialSummaries)
	if !ok {
		return fmt.Errorf("no partial summaries found in pipeline context")
	}

	summaries, ok := value.([]string)
	if !ok {
		return fmt.Errorf("unexpected type for partial summaries in pipeline context: %T", value)
	}

	if s.LLMServiceInstance == nil {
		return fmt.Errorf("LLM service is not initialized for aggregate step")
	}

	if len(summaries) == 0 {
		s.Logger.Warn("No partial summaries to aggregate")
		pipelineContext.SetStepOutput(KeyFinalReport, emptyDocumentReport)
		return nil
	}

	combined := strings.Join(summaries, "\n\n")

	systemPrompt := fmt.Sprintf("You are a study assistant. You are given partial summaries of one document, "+
		"separated by blank lines. Produce: (1) an overall summary of the document, "+
		"(2) exactly %d salient sentences extracted or paraphrased from the content, "+
		"(3) exactly %d clarifying questions a reader might want answered.",
		s.SalientSentences, s.ClarifyingQuestions)

	messages := []llm_service.Message{
		{Role: llm_service.RoleSystem, Content: systemPrompt},
		{Role: llm_service.RoleUser, Content: combined},
	}

	report, err := s.LLMServiceInstance.Generate(ctx, messages, s.Temperature)
	if err != nil {
		// Best effort: an aggregation failure still yields a report, just an
		// empty one. The error is surfaced through the report record.
		s.Logger.Error("Final aggregation call failed",
			slog.String("error", err.Error()))
		pipelineContext.SetStepOutput(KeyFinalReport, "")
		return nil
	}

	pipelineContext.SetStepOutput(KeyFinalReport, strings.TrimSpace(report))
	return nil
}

func (s *AggregateStepImpl) GetType() string {
	return "aggregate_step"
}
