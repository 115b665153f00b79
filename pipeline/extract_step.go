package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studyhelper/studyhelper/extractor"
)

// ExtractStepImpl turns the uploaded files into one merged plain-text
// document. Per-file failures never abort the step: the extractor downgrades
// them to diagnostic placeholders inline.
type ExtractStepImpl struct {
	Extractor *extractor.DocumentExtractor
	Workers   int
	Logger    *slog.Logger
}

func (s *ExtractStepImpl) Execute(ctx context.Context, pipelineContext *Context) error {
	value, ok := pipelineContext.Get(KeyFiles)
	if !ok {
		return fmt.Errorf("no files found in pipeline context")
	}

	files, ok := value.([]extractor.FileInfo)
	if !ok {
		return fmt.Errorf("unexpected type for files in pipeline context: %T", value)
	}

	merged := s.Extractor.MergeDocuments(ctx, files, s.Workers)

	s.Logger.Info("Extracted text from uploaded files",
		slog.Int("file_count", len(files)),
		slog.Int("text_length", len(merged)))

	pipelineContext.SetStepOutput(KeyDocumentText, merged)
	return nil
}

func (s *ExtractStepImpl) GetType() string {
	return "extract_step"
}
