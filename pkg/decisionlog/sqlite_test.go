package decisionlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(DefaultStoreConfig(filepath.Join(t.TempDir(), "decisions.db")))
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleRecord(id string, ts time.Time) *Record {
	return &Record{
		ID:              id,
		RequestID:       "req-" + id,
		Timestamp:       ts,
		Model:           "gpt-5.2",
		Tag:             "pattern(think_routing)",
		Chain:           "deepseek,deepseek-reasoner|openai,o4",
		Provider:        "deepseek",
		ServedModel:     "deepseek-reasoner",
		Attempts:        1,
		LatencyMS:       420,
		Success:         true,
		EstimatedTokens: 1200,
		SessionID:       "sess-1",
	}
}

func TestStore_InsertAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"a", "b", "c"} {
		rec := sampleRecord(id, base.Add(time.Duration(i)*time.Minute))
		if err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert(%s) failed: %v", id, err)
		}
	}

	records, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	// Newest first.
	if records[0].ID != "c" || records[1].ID != "b" {
		t.Errorf("unexpected order: %s, %s", records[0].ID, records[1].ID)
	}
	if records[0].Provider != "deepseek" || records[0].Tag != "pattern(think_routing)" {
		t.Errorf("record fields lost on round trip: %+v", records[0])
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 records, got %d", count)
	}
}

func TestStore_FailureRecord(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	rec := sampleRecord("f", time.Now().UTC())
	rec.Success = false
	rec.Provider = ""
	rec.ServedModel = ""
	rec.Attempts = 2
	rec.ErrorType = "server_error"
	rec.ErrorMessage = "all targets failed"

	if err := store.Insert(ctx, rec); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	records, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	got := records[0]
	if got.Success {
		t.Error("expected failure record")
	}
	if got.ErrorType != "server_error" || got.ErrorMessage != "all targets failed" {
		t.Errorf("error fields lost: %+v", got)
	}
	if got.Provider != "" {
		t.Errorf("expected empty provider, got %q", got.Provider)
	}
}

func TestStore_Prune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	old := sampleRecord("old", now.AddDate(0, 0, -40))
	fresh := sampleRecord("fresh", now)
	for _, rec := range []*Record{old, fresh} {
		if err := store.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	deleted, err := store.Prune(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}

	records, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "fresh" {
		t.Errorf("wrong survivor: %+v", records)
	}
}

func TestPruner_Prune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	if err := store.Insert(ctx, sampleRecord("old", now.AddDate(0, 0, -31))); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, sampleRecord("new", now)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	pruner := NewPruner(store, 30, "")
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}

	// Disabled retention never deletes.
	disabled := NewPruner(store, 0, "")
	deleted, err = disabled.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("disabled pruner deleted %d records", deleted)
	}
}

func TestPruner_InvalidSchedule(t *testing.T) {
	store := openTestStore(t)
	pruner := NewPruner(store, 30, "not a cron expr")
	if err := pruner.Start(context.Background()); err == nil {
		t.Error("expected error for invalid schedule")
	}
}
