package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backoffice-service/internal/models"
	"backoffice-service/internal/repository/kv"
)

func newActivityEntry(i int) *models.ActivityEntry {
	return &models.ActivityEntry{
		EntryID:   fmt.Sprintf("entry-%04d", i),
		ActorID:   "actor-1",
		ActorName: "Test Actor",
		Action:    models.ActionDepositCreate,
		CreatedAt: time.Now().Add(time.Duration(i) * time.Millisecond),
	}
}

func TestActivityAppendNewestFirst(t *testing.T) {
	repo := NewActivityRepository(kv.NewMemoryStore(), 10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repo.Append(ctx, newActivityEntry(i)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].EntryID != "entry-0002" || entries[2].EntryID != "entry-0000" {
		t.Errorf("entries not newest first: %s .. %s", entries[0].EntryID, entries[2].EntryID)
	}
}

func TestActivityRetentionCap(t *testing.T) {
	repo := NewActivityRepository(kv.NewMemoryStore(), 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		evicted, err := repo.Append(ctx, newActivityEntry(i))
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if len(evicted) != 0 {
			t.Fatalf("unexpected eviction at entry %d", i)
		}
	}

	evicted, err := repo.Append(ctx, newActivityEntry(5))
	if err != nil {
		t.Fatalf("append past cap: %v", err)
	}
	if len(evicted) != 1 || evicted[0].EntryID != "entry-0000" {
		t.Fatalf("expected oldest entry evicted, got %+v", evicted)
	}

	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected trail capped at 5, got %d", len(entries))
	}
	if entries[0].EntryID != "entry-0005" {
		t.Errorf("newest entry missing from head: %s", entries[0].EntryID)
	}
	if entries[len(entries)-1].EntryID != "entry-0001" {
		t.Errorf("oldest surviving entry wrong: %s", entries[len(entries)-1].EntryID)
	}
}

func TestActivityDeleteMany(t *testing.T) {
	repo := NewActivityRepository(kv.NewMemoryStore(), 10)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := repo.Append(ctx, newActivityEntry(i)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := repo.DeleteMany(ctx, []string{"entry-0001", "entry-0003"}); err != nil {
		t.Fatalf("delete many: %v", err)
	}

	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.EntryID == "entry-0001" || e.EntryID == "entry-0003" {
			t.Errorf("deleted entry still present: %s", e.EntryID)
		}
	}
}

func TestActivityDeleteAll(t *testing.T) {
	repo := NewActivityRepository(kv.NewMemoryStore(), 10)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repo.Append(ctx, newActivityEntry(i)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty trail, got %d entries", len(entries))
	}
}
