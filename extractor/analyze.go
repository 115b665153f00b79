package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

// FileInfo carries one uploaded document: its original name, its declared
// extension (lowercase, no dot) and the raw bytes. The bytes are read once
// during extraction and never persisted.
type FileInfo struct {
	Name string
	Ext  string
	Data []byte
}

// Diagnostic placeholders returned in place of text when extraction cannot
// proceed. These are user-facing strings, not errors.
const (
	DiagnosticPDF         = "[Could not read this PDF file.]"
	DiagnosticDOCX        = "[Could not read this Word file.]"
	DiagnosticPPTX        = "[Could not read this PowerPoint file.]"
	DiagnosticImage       = "[Could not read text from this image.]"
	DiagnosticHTML        = "[Could not read this HTML file.]"
	DiagnosticUnsupported = "[Unsupported file format. Supported formats: PDF, DOCX, PPTX, HTML, PNG, JPG.]"
)

var imageMimeTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
}

// AnalyzeFile converts one uploaded file to plain text. It never returns an
// error: extraction failures and unsupported kinds are downgraded to a
// diagnostic placeholder so the surrounding analysis can still render
// something.
func (e *DocumentExtractor) AnalyzeFile(file FileInfo) string {
	ext := strings.ToLower(file.Ext)

	var text string
	var err error

	switch ext {
	case "pdf":
		text, err = e.ExtractTextFromPDF(file.Data)
		if err != nil {
			return DiagnosticPDF
		}
	case "doc", "docx":
		text, err = e.ExtractTextFromWord(file.Data)
		if err != nil {
			return DiagnosticDOCX
		}
	case "ppt", "pptx":
		text, err = e.ExtractTextFromPowerPoint(file.Data)
		if err != nil {
			return DiagnosticPPTX
		}
	case "png", "jpg", "jpeg":
		text, err = e.ExtractTextFromImage(file.Data, imageMimeTypes[ext])
		if err != nil {
			return DiagnosticImage
		}
	case "html", "htm":
		text, err = e.ExtractTextFromHTML(file.Data)
		if err != nil {
			return DiagnosticHTML
		}
	default:
		e.logger.Warn("Unsupported file type",
			slog.String("filename", file.Name),
			slog.String("extension", ext))
		return DiagnosticUnsupported
	}

	return text
}

// MergeDocuments extracts every uploaded file and joins the results, in
// input order, with per-file separators. Extraction of independent files is
// dispatched across a bounded worker pool; each worker handles one file end
// to end, so there is no shared mutable state beyond the indexed result
// slot.
func (e *DocumentExtractor) MergeDocuments(ctx context.Context, files []FileInfo, workers int) string {
	if len(files) == 0 {
		return ""
	}
	if workers < 1 {
		workers = 1
	}

	texts := make([]string, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			texts[i] = e.AnalyzeFile(file)
			return nil
		})
	}

	// AnalyzeFile never fails, so the only possible error is cancellation.
	if err := g.Wait(); err != nil {
		e.logger.Warn("Document merge interrupted",
			slog.String("error", err.Error()))
	}

	var merged strings.Builder
	for i, file := range files {
		merged.WriteString(fmt.Sprintf("\n\n--- %s ---\n\n", file.Name))
		merged.WriteString(texts[i])
	}

	return merged.String()
}
