package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"
)

type mockTimeProvider struct {
	currentTime time.Time
	mutex       sync.Mutex
}

func (mtp *mockTimeProvider) Now() time.Time {
	mtp.mutex.Lock()
	defer mtp.mutex.Unlock()
	return mtp.currentTime
}

func (mtp *mockTimeProvider) Add(d time.Duration) {
	mtp.mutex.Lock()
	mtp.currentTime = mtp.currentTime.Add(d)
	mtp.mutex.Unlock()
}

func newTestStore(mtp *mockTimeProvider) *ReportStore {
	store := NewReportStore(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if mtp != nil {
		store.timeProvider = mtp
	}
	return store
}

func TestReportStore_CompleteTransitions(t *testing.T) {
	store := newTestStore(nil)

	store.Add("r1", &Report{ReportID: "r1", Status: StatusStarted, SubmittedAt: time.Now().Format(time.RFC3339)})
	store.Complete("r1", "the final report", "")

	report, exists := store.Get("r1")
	if !exists {
		t.Fatal("Expected report to exist")
	}
	if report.Status != StatusCompleted {
		t.Errorf("Expected status completed, got %s", report.Status)
	}
	if report.CompletedAt == "" {
		t.Error("Expected a completion timestamp")
	}

	store.Add("r2", &Report{ReportID: "r2", Status: StatusStarted})
	store.Complete("r2", "", "both providers unavailable")

	report, _ = store.Get("r2")
	if report.Status != StatusFailed {
		t.Errorf("Expected status failed for empty report with error, got %s", report.Status)
	}

	// Degraded but non-empty output still counts as completed.
	store.Add("r3", &Report{ReportID: "r3", Status: StatusStarted})
	store.Complete("r3", "partial output", "one chunk failed")

	report, _ = store.Get("r3")
	if report.Status != StatusCompleted {
		t.Errorf("Expected status completed for non-empty report, got %s", report.Status)
	}
}

func TestReportStore_GetReturnsSnapshot(t *testing.T) {
	store := newTestStore(nil)

	store.Add("r1", &Report{ReportID: "r1", Status: StatusStarted})

	before, _ := store.Get("r1")
	store.Complete("r1", "the final report", "")

	if before.Status != StatusStarted {
		t.Errorf("Expected the earlier snapshot to keep its status, got %s", before.Status)
	}

	// Mutating a snapshot must not write through to the store.
	before.Status = StatusFailed
	after, _ := store.Get("r1")
	if after.Status != StatusCompleted {
		t.Errorf("Expected the stored report to be completed, got %s", after.Status)
	}
}

func TestReportStore_GetDuringComplete(t *testing.T) {
	store := newTestStore(nil)
	store.Add("r1", &Report{ReportID: "r1", Status: StatusStarted})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			store.Complete("r1", "the final report", "")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			report, _ := store.Get("r1")
			if _, err := json.Marshal(report); err != nil {
				t.Errorf("Failed to encode report snapshot: %v", err)
			}
		}
	}()
	wg.Wait()
}

func TestReportStore_ConcurrentOperationsAndCleanup(t *testing.T) {
	startTime := time.Now()
	mtp := &mockTimeProvider{currentTime: startTime}
	store := newTestStore(mtp)

	threshold := 5 * time.Minute
	cleanupInterval := 100 * time.Millisecond

	store.StartCleanup(threshold, cleanupInterval)
	defer store.StopCleanup()

	var wg sync.WaitGroup
	addRandomReport := func(now time.Time) {
		id := fmt.Sprintf("report_%d", rand.Int())
		completedAt := now.Add(-time.Duration(rand.Intn(600)) * time.Second)
		store.Add(id, &Report{
			ReportID:    id,
			Status:      StatusCompleted,
			CompletedAt: completedAt.Format(time.RFC3339),
		})
	}

	for i := 0; i < 500; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			addRandomReport(mtp.Now())
		}()
	}

	for i := 0; i < 10; i++ {
		mtp.Add(cleanupInterval)
		time.Sleep(10 * time.Millisecond)

		for j := 0; j < 50; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				addRandomReport(mtp.Now())
			}()
		}
	}

	wg.Wait()

	mtp.Add(threshold + time.Second)
	store.performCleanup(threshold)

	store.mu.RLock()
	defer store.mu.RUnlock()
	for _, report := range store.reports {
		completedAt, _ := time.Parse(time.RFC3339, report.CompletedAt)
		if mtp.Now().Sub(completedAt) > threshold {
			t.Errorf("Found expired report that should have been cleaned up: %v", report)
		}
	}
}
