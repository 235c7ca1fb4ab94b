package mcd

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mcdist/mcdist/pkg/models"
)

func TestRunStoreCreate(t *testing.T) {
	store := NewRunStore()

	rec, err := store.Create("run-1", &RunInput{Method: "batch", Samples: 100})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if rec.Run.ID != "run-1" {
		t.Errorf("ID = %q, expected run-1", rec.Run.ID)
	}
	if rec.Run.Status != models.RunStatusPending {
		t.Errorf("status = %s, expected pending", rec.Run.Status)
	}
	if rec.Run.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestRunStoreCreateGeneratesID(t *testing.T) {
	store := NewRunStore()

	rec, err := store.Create("", &RunInput{Method: "batch", Samples: 100})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !strings.HasPrefix(rec.Run.ID, "run-") {
		t.Errorf("generated ID = %q, expected run- prefix", rec.Run.ID)
	}
}

func TestRunStoreCreateDuplicate(t *testing.T) {
	store := NewRunStore()
	if _, err := store.Create("dup", &RunInput{Samples: 1}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	if _, err := store.Create("dup", &RunInput{Samples: 1}); err == nil {
		t.Error("expected error for duplicate run ID")
	}
}

func TestRunStoreCreateInvalidID(t *testing.T) {
	store := NewRunStore()
	for _, id := range []string{"a/b", "a:b"} {
		if _, err := store.Create(id, &RunInput{Samples: 1}); err == nil {
			t.Errorf("expected error for ID %q", id)
		}
	}
}

func TestRunStoreGet(t *testing.T) {
	store := NewRunStore()
	store.Create("run-1", &RunInput{Samples: 1})

	if _, ok := store.Get("run-1"); !ok {
		t.Error("expected to find run-1")
	}
	if _, ok := store.Get("missing"); ok {
		t.Error("expected missing run to be absent")
	}
}

func TestRunStoreListFiltered(t *testing.T) {
	store := NewRunStore()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("run-%d", i)
		store.Create(id, &RunInput{Samples: 1})
		// Spread CreatedAt so the newest-first ordering is deterministic.
		// Get hands out copies, so reach into the store directly.
		store.runs[id].Run.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
	}
	store.SetStatus("run-0", models.RunStatusCompleted, "")
	store.SetStatus("run-1", models.RunStatusCompleted, "")

	all := store.ListFiltered(10, 0, "")
	if len(all) != 5 {
		t.Fatalf("expected 5 runs, got %d", len(all))
	}
	if all[0].Run.ID != "run-4" {
		t.Errorf("expected newest first, got %s", all[0].Run.ID)
	}

	completed := store.ListFiltered(10, 0, models.RunStatusCompleted)
	if len(completed) != 2 {
		t.Errorf("expected 2 completed runs, got %d", len(completed))
	}

	page := store.ListFiltered(2, 2, "")
	if len(page) != 2 {
		t.Errorf("expected page of 2, got %d", len(page))
	}
	if page[0].Run.ID != "run-2" {
		t.Errorf("expected run-2 at offset 2, got %s", page[0].Run.ID)
	}

	empty := store.ListFiltered(10, 100, "")
	if len(empty) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(empty))
	}
}

func TestRunStoreSetStatusTimestamps(t *testing.T) {
	store := NewRunStore()
	store.Create("run-1", &RunInput{Samples: 1})

	rec, err := store.SetStatus("run-1", models.RunStatusRunning, "")
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if rec.Run.StartedAt.IsZero() {
		t.Error("StartedAt not set on running")
	}

	rec, _ = store.SetStatus("run-1", models.RunStatusFailed, "boom")
	if rec.Run.EndedAt.IsZero() {
		t.Error("EndedAt not set on failed")
	}
	if rec.Run.Error != "boom" {
		t.Errorf("error = %q, expected boom", rec.Run.Error)
	}
}

func TestRunStoreSetStatusNotFound(t *testing.T) {
	store := NewRunStore()
	if _, err := store.SetStatus("missing", models.RunStatusRunning, ""); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestRunStoreSetResult(t *testing.T) {
	store := NewRunStore()
	store.Create("run-1", &RunInput{Samples: 1})

	result := &models.EstimateResult{Estimate: 0.52, Samples: 100, Method: "batch"}
	if err := store.SetResult("run-1", result); err != nil {
		t.Fatalf("SetResult failed: %v", err)
	}

	rec, _ := store.Get("run-1")
	if rec.Run.Result == nil || rec.Run.Result.Estimate != 0.52 {
		t.Errorf("result not stored: %+v", rec.Run.Result)
	}

	if err := store.SetResult("missing", result); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestRunStoreGetReturnsCopy(t *testing.T) {
	store := NewRunStore()
	store.Create("run-1", &RunInput{Samples: 1})

	rec, _ := store.Get("run-1")
	rec.Run.Status = models.RunStatusFailed
	rec.Run.Error = "mutated by caller"

	again, _ := store.Get("run-1")
	if again.Run.Status != models.RunStatusPending || again.Run.Error != "" {
		t.Errorf("caller mutation leaked into the store: %+v", again.Run)
	}
}

func TestRunStoreConcurrentReadWrite(t *testing.T) {
	store := NewRunStore()
	store.Create("run-1", &RunInput{Samples: 1})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			store.SetStatus("run-1", models.RunStatusRunning, "")
			store.SetResult("run-1", &models.EstimateResult{Estimate: 0.52, Samples: 1})
		}
	}()

	for loop := true; loop; {
		select {
		case <-done:
			loop = false
		default:
			rec, _ := store.Get("run-1")
			_ = rec.Run.Status
			_ = rec.Run.Result
			for _, r := range store.List(10) {
				_ = r.Run.Status
			}
		}
	}
}
