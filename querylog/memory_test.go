package querylog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/xraph/datagrid/id"
)

func entryWithQuery(q string) *Entry {
	return &Entry{
		ID:        id.NewQueryLogID(),
		Entity:    "customer",
		Query:     q,
		Duration:  10 * time.Millisecond,
		CreatedAt: time.Now(),
	}
}

func TestRecordAndList(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(10)

	m.Record(ctx, entryWithQuery("q1"))
	m.Record(ctx, entryWithQuery("q2"))
	m.Record(ctx, entryWithQuery("q3"))

	got := m.List(ctx, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	// Newest first.
	if got[0].Query != "q3" || got[1].Query != "q2" {
		t.Errorf("expected newest first, got %s %s", got[0].Query, got[1].Query)
	}

	// Zero limit returns everything.
	if got := m.List(ctx, 0); len(got) != 3 {
		t.Errorf("expected all entries, got %d", len(got))
	}
}

func TestBoundedEviction(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(3)

	for i := 1; i <= 5; i++ {
		m.Record(ctx, entryWithQuery(fmt.Sprintf("q%d", i)))
	}

	got := m.List(ctx, 0)
	if len(got) != 3 {
		t.Fatalf("expected 3 retained entries, got %d", len(got))
	}
	// The oldest two were dropped.
	if got[0].Query != "q5" || got[2].Query != "q3" {
		t.Errorf("unexpected retained window: %s..%s", got[0].Query, got[2].Query)
	}
}
