package extractor

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"

	"code.sajari.com/docconv/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
)

type DocumentExtractor struct {
	logger *slog.Logger
}

func NewDocumentExtractor(logger *slog.Logger) *DocumentExtractor {
	return &DocumentExtractor{
		logger: logger,
	}
}

func (e *DocumentExtractor) ExtractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		e.logger.Error("Failed to create PDF reader",
			slog.String("error", err.Error()),
			slog.Int("data_size", len(data)))
		return "", fmt.Errorf("failed to create PDF reader: %v", err)
	}

	totalPage := reader.NumPage()
	e.logger.Debug("Starting PDF text extraction",
		slog.Int("total_pages", totalPage))

	var fullText strings.Builder
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			e.logger.Warn("Null page encountered",
				slog.Int("page_number", pageIndex))
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.Error("Failed to extract text from page",
				slog.Int("page_number", pageIndex),
				slog.String("error", err.Error()))
			return "", fmt.Errorf("failed to extract text from page %d: %v", pageIndex, err)
		}

		fullText.WriteString(text)
	}

	if fullText.Len() == 0 {
		e.logger.Error("No text extracted from PDF",
			slog.Int("total_pages", totalPage))
		return "", fmt.Errorf("no text content extracted from PDF")
	}

	e.logger.Info("Successfully extracted text from PDF",
		slog.Int("total_pages", totalPage),
		slog.Int("total_text_length", fullText.Len()))

	return fullText.String(), nil
}

func (e *DocumentExtractor) ExtractTextFromWord(data []byte) (string, error) {
	e.logger.Debug("Starting Word document text extraction",
		slog.Int("data_size", len(data)))

	mimeType := "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	return e.convert(data, mimeType, "Word document")
}

func (e *DocumentExtractor) ExtractTextFromPowerPoint(data []byte) (string, error) {
	e.logger.Debug("Starting PowerPoint text extraction",
		slog.Int("data_size", len(data)))

	mimeType := "application/vnd.openxmlformats-officedocument.presentationml.presentation"

	return e.convert(data, mimeType, "PowerPoint document")
}

// ExtractTextFromImage runs the image through docconv's OCR path. Binaries
// built without the ocr tag get a conversion error, which callers downgrade
// to a diagnostic string.
func (e *DocumentExtractor) ExtractTextFromImage(data []byte, mimeType string) (string, error) {
	e.logger.Debug("Starting image text extraction",
		slog.String("mime_type", mimeType),
		slog.Int("data_size", len(data)))

	return e.convert(data, mimeType, "image")
}

func (e *DocumentExtractor) ExtractTextFromHTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		e.logger.Error("Failed to parse HTML document",
			slog.String("error", err.Error()))
		return "", fmt.Errorf("failed to parse HTML document: %v", err)
	}

	doc.Find("script, style, noscript").Remove()
	text := strings.TrimSpace(doc.Text())
	if text == "" {
		return "", fmt.Errorf("no text content extracted from HTML document")
	}

	e.logger.Info("Successfully extracted text from HTML document",
		slog.Int("text_length", len(text)))

	return text, nil
}

func (e *DocumentExtractor) convert(data []byte, mimeType, kind string) (string, error) {
	result, err := docconv.Convert(bytes.NewReader(data), mimeType, false)
	if err != nil {
		e.logger.Error("Failed to convert document",
			slog.String("kind", kind),
			slog.String("error", err.Error()),
			slog.Int("data_size", len(data)))
		return "", fmt.Errorf("failed to convert %s: %v", kind, err)
	}

	if len(result.Body) == 0 {
		e.logger.Error("No text extracted from document",
			slog.String("kind", kind))
		return "", fmt.Errorf("no text content extracted from %s", kind)
	}

	e.logger.Info("Successfully extracted text from document",
		slog.String("kind", kind),
		slog.Int("text_length", len(result.Body)))

	return result.Body, nil
}
