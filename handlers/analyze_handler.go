package handlers

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/studyhelper/studyhelper/extractor"
	"github.com/studyhelper/studyhelper/pipeline"
	"github.com/studyhelper/studyhelper/plugin_registry"
	"github.com/studyhelper/studyhelper/session"
)

var analysisStepOrder = []string{"extract_step", "chunk_summary_step", "aggregate_step"}

type AnalyzeHandler struct {
	Registry *plugin_registry.PluginRegistry
	Reports  *pipeline.ReportStore
	Sessions *session.Store
	Logger   *slog.Logger
}

func NewAnalyzeHandler(registry *plugin_registry.PluginRegistry, reports *pipeline.ReportStore, sessions *session.Store, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		Registry: registry,
		Reports:  reports,
		Sessions: sessions,
		Logger:   logger,
	}
}

// StartAnalysis accepts a multipart upload of one or more documents, kicks
// off the analysis pipeline in the background and returns a report ID the
// client can poll.
func (h *AnalyzeHandler) StartAnalysis(w http.ResponseWriter, r *http.Request) {
	h.Logger.Info("Received analysis request")

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSONError(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		writeJSONError(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	files, err := readUploadedFiles(fileHeaders)
	if err != nil {
		writeJSONError(w, "Failed to read uploaded file", http.StatusInternalServerError)
		return
	}

	sessionID := r.FormValue("session_id")

	steps := make([]pipeline.Step, 0, len(analysisStepOrder))
	for _, stepType := range analysisStepOrder {
		step, err := h.Registry.GetStepInstance(stepType)
		if err != nil {
			h.Logger.Error("Analysis step type is not registered",
				slog.String("step_type", stepType),
				slog.String("error", err.Error()))
			writeJSONError(w, "Analysis pipeline is not configured", http.StatusInternalServerError)
			return
		}
		steps = append(steps, step)
	}

	reportID := uuid.New().String()
	h.Reports.Add(reportID, &pipeline.Report{
		ReportID:    reportID,
		Status:      pipeline.StatusStarted,
		FileCount:   len(files),
		SubmittedAt: time.Now().Format(time.RFC3339),
	})

	go h.runAnalysis(reportID, sessionID, files, steps)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"report_id": reportID,
		"message":   "Analysis started",
	})
}

func (h *AnalyzeHandler) runAnalysis(reportID, sessionID string, files []extractor.FileInfo, steps []pipeline.Step) {
	pipelineContext := pipeline.NewContext()
	pipelineContext.Set(pipeline.KeyFiles, files)

	p := &pipeline.AnalysisPipeline{
		ID:      reportID,
		Steps:   steps,
		Context: pipelineContext,
	}

	if err := p.Execute(context.Background()); err != nil {
		h.Logger.Error("Analysis pipeline failed",
			slog.String("report_id", reportID),
			slog.String("error", err.Error()))
		h.Reports.Complete(reportID, "", err.Error())
		return
	}

	// Make the merged text available to the session's chat, if one was named.
	if sessionID != "" {
		if s, ok := h.Sessions.Get(sessionID); ok {
			if text, ok := pipelineContext.GetStepOutput(pipeline.KeyDocumentText); ok {
				if docText, ok := text.(string); ok {
					s.SetDocumentText(docText)
				}
			}
		} else {
			h.Logger.Warn("Analysis referenced an unknown session",
				slog.String("session_id", sessionID))
		}
	}

	report, _ := p.FinalReport()
	errorMessage := ""
	if report == "" {
		errorMessage = "The generative service could not produce a report"
	}
	h.Reports.Complete(reportID, report, errorMessage)

	h.Logger.Info("Analysis finished",
		slog.String("report_id", reportID),
		slog.Int("report_length", len(report)))
}

func (h *AnalyzeHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	report, exists := h.Reports.Get(vars["id"])
	if !exists {
		writeJSONError(w, "Report not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"report_id": report.ReportID,
		"status":    report.Status,
	})
}

func (h *AnalyzeHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	report, exists := h.Reports.Get(vars["id"])
	if !exists {
		writeJSONError(w, "Report not found", http.StatusNotFound)
		return
	}

	if report.Status == pipeline.StatusStarted {
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"report_id": report.ReportID,
			"status":    report.Status,
		})
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func readUploadedFiles(fileHeaders []*multipart.FileHeader) ([]extractor.FileInfo, error) {
	files := make([]extractor.FileInfo, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		f, err := header.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}

		files = append(files, extractor.FileInfo{
			Name: header.Filename,
			Ext:  strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), "."),
			Data: data,
		})
	}
	return files, nil
}
