package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"moodmovies/internal/domain"
)

func TestStatusManagerLifecycle(t *testing.T) {
	mgr := NewStatusManager(NewMemoryStatusStore(), zap.NewNop())
	ctx := context.Background()

	processID, err := mgr.Start(ctx, "user-1", "recommendation")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if processID == "" {
		t.Fatalf("expected a process id")
	}

	st, ok, err := mgr.Get(ctx, processID)
	if err != nil || !ok {
		t.Fatalf("expected status to exist, ok=%v err=%v", ok, err)
	}
	if st.Status != domain.ProcessPending {
		t.Fatalf("expected pending, got %s", st.Status)
	}
	if st.UserID != "user-1" || st.ProcessType != "recommendation" {
		t.Fatalf("unexpected status fields: %+v", st)
	}

	mgr.Progress(ctx, processID, "ranking", "ranking candidates", 60)
	st, _, _ = mgr.Get(ctx, processID)
	if st.Status != domain.ProcessInProgress || st.Percentage != 60 || st.Stage != "ranking" {
		t.Fatalf("unexpected in-progress status: %+v", st)
	}

	mgr.Complete(ctx, processID, "done", map[string]any{"count": 3})
	st, _, _ = mgr.Get(ctx, processID)
	if st.Status != domain.ProcessCompleted || st.Percentage != 100 {
		t.Fatalf("unexpected completed status: %+v", st)
	}
	if st.Data["count"] != 3 {
		t.Fatalf("expected result data to be kept, got %v", st.Data)
	}
}

func TestStatusManagerFailKeepsErrorDetail(t *testing.T) {
	mgr := NewStatusManager(NewMemoryStatusStore(), zap.NewNop())
	ctx := context.Background()

	processID, err := mgr.Start(ctx, "user-1", "recommendation")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	mgr.Fail(ctx, processID, "recommendation failed", "no candidate films", domain.FailureNoCandidateFilms)

	st, ok, err := mgr.Get(ctx, processID)
	if err != nil || !ok {
		t.Fatalf("expected status to exist, ok=%v err=%v", ok, err)
	}
	if st.Status != domain.ProcessFailed {
		t.Fatalf("expected failed, got %s", st.Status)
	}
	if st.ErrorDetail != "no candidate films" {
		t.Fatalf("expected error detail, got %q", st.ErrorDetail)
	}
	if st.ErrorCategory != domain.FailureNoCandidateFilms {
		t.Fatalf("expected category %s, got %s", domain.FailureNoCandidateFilms, st.ErrorCategory)
	}
}

func TestStatusManagerFailDefaultsToInternalCategory(t *testing.T) {
	mgr := NewStatusManager(NewMemoryStatusStore(), zap.NewNop())
	ctx := context.Background()

	processID, err := mgr.Start(ctx, "user-1", "recommendation")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	mgr.Fail(ctx, processID, "recommendation failed", "boom", "")

	st, _, _ := mgr.Get(ctx, processID)
	if st.ErrorCategory != domain.FailureInternal {
		t.Fatalf("expected category %s, got %s", domain.FailureInternal, st.ErrorCategory)
	}
}

func TestStatusManagerUnknownProcess(t *testing.T) {
	mgr := NewStatusManager(NewMemoryStatusStore(), zap.NewNop())

	_, ok, err := mgr.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok {
		t.Fatalf("expected unknown process to be absent")
	}
}
