package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/studyhelper/studyhelper/llm_service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChunkSummaryStep_OneCallPerChunk(t *testing.T) {
	var prompts []string

	mockLLM := &llm_service.MockLLMService{
		GenerateFunc: func(ctx context.Context, messages []llm_service.Message, temperature float64) (string, error) {
			prompts = append(prompts, llm_service.LastUserContent(messages))
			return fmt.Sprintf("  summary %d  ", len(prompts)), nil
		},
	}

	pipelineContext := NewContext()
	pipelineContext.SetStepOutput(KeyDocumentText, strings.Repeat("x", 7000))

	step := &ChunkSummaryStepImpl{
		LLMServiceInstance: mockLLM,
		ChunkMaxChars:      3000,
		Temperature:        0.7,
		Logger:             testLogger(),
	}

	if err := step.Execute(context.Background(), pipelineContext); err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}

	if len(prompts) != 3 {
		t.Fatalf("Expected one LLM call per chunk (3), got %d", len(prompts))
	}
	for i, prompt := range prompts {
		position := fmt.Sprintf("Section %d of 3:", i+1)
		if !strings.Contains(prompt, position) {
			t.Errorf("Prompt %d missing position marker %q", i, position)
		}
	}

	value, ok := pipelineContext.GetStepOutput(KeyPartialSummaries)
	if !ok {
		t.Fatal("Expected partial summaries in pipeline context")
	}
	summaries := value.([]string)
	if len(summaries) != 3 {
		t.Fatalf("Expected 3 partial summaries, got %d", len(summaries))
	}
	for i, s := range summaries {
		if s != strings.TrimSpace(s) {
			t.Errorf("Summary %d was not trimmed: %q", i, s)
		}
	}
}

func TestChunkSummaryStep_FailedChunkDoesNotAbort(t *testing.T) {
	call := 0

	mockLLM := &llm_service.MockLLMService{
		GenerateFunc: func(ctx context.Context, messages []llm_service.Message, temperature float64) (string, error) {
			call++
			if call == 2 {
				return "", errors.New("both providers unavailable")
			}
			return fmt.Sprintf("summary %d", call), nil
		},
	}

	pipelineContext := NewContext()
	pipelineContext.SetStepOutput(KeyDocumentText, strings.Repeat("x", 7000))

	step := &ChunkSummaryStepImpl{
		LLMServiceInstance: mockLLM,
		ChunkMaxChars:      3000,
		Temperature:        0.7,
		Logger:             testLogger(),
	}

	if err := step.Execute(context.Background(), pipelineContext); err != nil {
		t.Fatalf("A failed chunk must not abort the step, got: %v", err)
	}

	if call != 3 {
		t.Errorf("Expected all 3 chunks to be attempted, got %d calls", call)
	}

	value, _ := pipelineContext.GetStepOutput(KeyPartialSummaries)
	summaries := value.([]string)
	if summaries[0] != "summary 1" || summaries[1] != "" || summaries[2] != "summary 3" {
		t.Errorf("Expected failed chunk to yield an empty summary, got %v", summaries)
	}
}

func TestAggregateStep_SingleCallWithJoinedSummaries(t *testing.T) {
	var calls int
	var userContent string
	var systemContent string

	mockLLM := &llm_service.MockLLMService{
		GenerateFunc: func(ctx context.Context, messages []llm_service.Message, temperature float64) (string, error) {
			calls++
			userContent = llm_service.LastUserContent(messages)
			systemContent = llm_service.SystemContent(messages)
			return "final report text", nil
		},
	}

	pipelineContext := NewContext()
	pipelineContext.SetStepOutput(KeyPartialSummaries, []string{"first summary", "second summary", "third summary"})

	step := &AggregateStepImpl{
		LLMServiceInstance:  mockLLM,
		SalientSentences:    3,
		ClarifyingQuestions: 2,
		Temperature:         0.7,
		Logger:              testLogger(),
	}

	if err := step.Execute(context.Background(), pipelineContext); err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}

	if calls != 1 {
		t.Fatalf("Expected exactly one aggregation call, got %d", calls)
	}
	expected := "first summary\n\nsecond summary\n\nthird summary"
	if userContent != expected {
		t.Errorf("Expected summaries joined by blank lines,\nwant %q\ngot  %q", expected, userContent)
	}
	if !strings.Contains(systemContent, "exactly 3 salient sentences") {
		t.Errorf("System prompt missing salient sentence count: %q", systemContent)
	}
	if !strings.Contains(systemContent, "exactly 2 clarifying questions") {
		t.Errorf("System prompt missing clarifying question count: %q", systemContent)
	}

	report, ok := pipelineContext.GetStepOutput(KeyFinalReport)
	if !ok || report != "final report text" {
		t.Errorf("Expected final report in pipeline context, got %v", report)
	}
}

func TestAggregateStep_LLMFailureYieldsEmptyReport(t *testing.T) {
	mockLLM := &llm_service.MockLLMService{
		GenerateFunc: func(ctx context.Context, messages []llm_service.Message, temperature float64) (string, error) {
			return "", errors.New("both providers unavailable")
		},
	}

	pipelineContext := NewContext()
	pipelineContext.SetStepOutput(KeyPartialSummaries, []string{"only summary"})

	step := &AggregateStepImpl{
		LLMServiceInstance:  mockLLM,
		SalientSentences:    3,
		ClarifyingQuestions: 2,
		Temperature:         0.7,
		Logger:              testLogger(),
	}

	if err := step.Execute(context.Background(), pipelineContext); err != nil {
		t.Fatalf("An aggregation failure must not abort the pipeline, got: %v", err)
	}

	report, ok := pipelineContext.GetStepOutput(KeyFinalReport)
	if !ok {
		t.Fatal("Expected a (possibly empty) final report in pipeline context")
	}
	if report != "" {
		t.Errorf("Expected empty report on aggregation failure, got %q", report)
	}
}

func TestAggregateStep_NoSummaries(t *testing.T) {
	calls := 0
	mockLLM := &llm_service.MockLLMService{
		GenerateFunc: func(ctx context.Context, messages []llm_service.Message, temperature float64) (string, error) {
			calls++
			return "should not be called", nil
		},
	}

	pipelineContext := NewContext()
	pipelineContext.SetStepOutput(KeyPartialSummaries, []string{})

	step := &AggregateStepImpl{
		LLMServiceInstance:  mockLLM,
		SalientSentences:    3,
		ClarifyingQuestions: 2,
		Logger:              testLogger(),
	}

	if err := step.Execute(context.Background(), pipelineContext); err != nil {
		t.Fatalf("Did not expect an error but got: %v", err)
	}
	if calls != 0 {
		t.Errorf("Expected no LLM call for an empty document, got %d", calls)
	}
	report, _ := pipelineContext.GetStepOutput(KeyFinalReport)
	if report != emptyDocumentReport {
		t.Errorf("Expected the empty-document report, got %q", report)
	}
}

// End to end: a 7000-char document at 3000 chars per chunk is summarized as
// three chunks, then aggregated in a single call even when one chunk's
// summary is lost along the way.
func TestAnalysisPipeline_BestEffortEndToEnd(t *testing.T) {
	chunkCalls := 0
	aggregateCalls := 0

	mockLLM := &llm_service.MockLLMService{
		GenerateFunc: func(ctx context.Context, messages []llm_service.Message, temperature float64) (string, error) {
			system := llm_service.SystemContent(messages)
			if strings.Contains(system, "partial summaries") {
				aggregateCalls++
				return "overall summary with salient sentences and questions", nil
			}
			chunkCalls++
			if chunkCalls == 2 {
				return "", errors.New("both providers unavailable")
			}
			return fmt.Sprintf("chunk summary %d", chunkCalls), nil
		},
	}

	pipelineContext := NewContext()
	pipelineContext.SetStepOutput(KeyDocumentText, strings.Repeat("y", 7000))

	p := &AnalysisPipeline{
		ID: "test_analysis",
		Steps: []Step{
			&ChunkSummaryStepImpl{
				LLMServiceInstance: mockLLM,
				ChunkMaxChars:      3000,
				Temperature:        0.7,
				Logger:             testLogger(),
			},
			&AggregateStepImpl{
				LLMServiceInstance:  mockLLM,
				SalientSentences:    3,
				ClarifyingQuestions: 2,
				Temperature:         0.7,
				Logger:              testLogger(),
			},
		},
		Context: pipelineContext,
	}

	if err := p.Execute(context.Background()); err != nil {
		t.Fatalf("Pipeline execution failed: %v", err)
	}

	if chunkCalls != 3 {
		t.Errorf("Expected 3 chunk summary calls, got %d", chunkCalls)
	}
	if aggregateCalls != 1 {
		t.Errorf("Expected exactly 1 aggregation call, got %d", aggregateCalls)
	}

	report, ok := p.FinalReport()
	if !ok {
		t.Fatal("Expected a final report")
	}
	if report == "" {
		t.Error("Expected a non-empty final report despite the lost chunk")
	}
}
