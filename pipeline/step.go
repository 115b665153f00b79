package pipeline

import "context"

// Well-known context keys shared by the analysis steps.
const (
	KeyFiles            = "files"
	KeyDocumentText     = "document_text"
	KeyPartialSummaries = "partial_summaries"
	KeyFinalReport      = "final_report"
)

type Step interface {
	Execute(ctx context.Context, pipelineContext *Context) error

	GetType() string
}
