package pipeline

import (
	"log/slog"
	"sync"
	"time"
)

type ReportStatus string

const (
	StatusStarted   ReportStatus = "started"
	StatusCompleted ReportStatus = "completed"
	StatusFailed    ReportStatus = "failed"
)

// Report records one analysis run. FinalReport is opaque model output; the
// record itself lives only in memory and expires after the retention window.
type Report struct {
	ReportID     string       `json:"report_id"`
	Status       ReportStatus `json:"status"`
	FileCount    int          `json:"file_count"`
	FinalReport  string       `json:"final_report,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
	SubmittedAt  string       `json:"submitted_at"`
	CompletedAt  string       `json:"completed_at,omitempty"`
}

// ReportStore is an in-memory, mutex-guarded report collection owned by the
// calling context. Old completed reports are swept by a periodic cleanup
// goroutine.
type ReportStore struct {
	mu            sync.RWMutex
	reports       map[string]*Report
	logger        *slog.Logger
	timeProvider  TimeProvider
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
}

func NewReportStore(logger *slog.Logger) *ReportStore {
	return &ReportStore{
		reports:      make(map[string]*Report),
		logger:       logger,
		timeProvider: &realTimeProvider{},
	}
}

func (s *ReportStore) Add(reportID string, report *Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[reportID] = report
}

// Get returns a snapshot of the report. The stored record keeps changing
// while the analysis runs, so callers get a copy they can read and encode
// without holding the store's lock.
func (s *ReportStore) Get(reportID string) (*Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, exists := s.reports[reportID]
	if !exists {
		return nil, false
	}
	snapshot := *report
	return &snapshot, true
}

// Complete marks the report finished. An empty finalReport with a non-empty
// errorMessage records a failed run; anything else counts as completed, even
// when some chunks were lost along the way.
func (s *ReportStore) Complete(reportID, finalReport, errorMessage string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, exists := s.reports[reportID]
	if !exists {
		return
	}

	report.FinalReport = finalReport
	report.ErrorMessage = errorMessage
	report.CompletedAt = s.timeProvider.Now().Format(time.RFC3339)
	if finalReport == "" && errorMessage != "" {
		report.Status = StatusFailed
	} else {
		report.Status = StatusCompleted
	}
}

// StartCleanup starts a goroutine that periodically removes reports whose
// completion is older than threshold.
func (s *ReportStore) StartCleanup(threshold, cleanupInterval time.Duration) {
	s.stopCleanup = make(chan struct{})
	s.cleanupTicker = time.NewTicker(cleanupInterval)

	go func() {
		for {
			select {
			case <-s.cleanupTicker.C:
				s.performCleanup(threshold)
			case <-s.stopCleanup:
				s.cleanupTicker.Stop()
				return
			}
		}
	}()
}

func (s *ReportStore) StopCleanup() {
	if s.stopCleanup != nil {
		close(s.stopCleanup)
	}
}

func (s *ReportStore) performCleanup(threshold time.Duration) {
	now := s.timeProvider.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for reportID, report := range s.reports {
		if report.CompletedAt == "" {
			continue
		}
		completedAt, err := time.Parse(time.RFC3339, report.CompletedAt)
		if err == nil && now.Sub(completedAt) > threshold {
			delete(s.reports, reportID)
			s.logger.Debug("Deleted report due to expiration",
				slog.String("report_id", reportID))
		}
	}
}
