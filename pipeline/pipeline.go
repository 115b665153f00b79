package pipeline

import (
	"context"
	"fmt"
)

// AnalysisPipeline runs an ordered list of steps over one shared Context.
// The standard document analysis is extract -> chunk summary -> aggregate,
// but the steps are assembled by the caller so tests and future surfaces can
// compose their own.
type AnalysisPipeline struct {
	ID      string
	Steps   []Step
	Context *Context
}

func (p *AnalysisPipeline) Execute(ctx context.Context) error {
	if p.Context == nil {
		p.Context = NewContext()
	}

	for _, step := range p.Steps {
		if err := step.Execute(ctx, p.Context); err != nil {
			return fmt.Errorf("error executing step %s: %w", step.GetType(), err)
		}
	}

	return nil
}

// FinalReport returns the aggregated report text, if the pipeline got far
// enough to produce one.
func (p *AnalysisPipeline) FinalReport() (string, bool) {
	if p.Context == nil {
		return "", false
	}
	value, ok := p.Context.GetStepOutput(KeyFinalReport)
	if !ok {
		return "", false
	}
	report, ok := value.(string)
	return report, ok
}
