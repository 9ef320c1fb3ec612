package store

import (
	"context"
	"testing"

	"github.com/TempoXqc/projectNexus-sub000/internal/game"
)

func TestMemoryStore(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	s := testSession("mem111")
	if err := m.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Create(ctx, testSession("mem111")); err != ErrExists {
		t.Fatalf("expected ErrExists, got %v", err)
	}

	got, err := m.Get(ctx, "mem111")
	if err != nil || got == nil || got.ID != "mem111" {
		t.Fatalf("Get: %v %v", got, err)
	}

	// the store hands out decoded copies, not shared state
	got.Status = game.StatusStarted
	again, _ := m.Get(ctx, "mem111")
	if again.Status != game.StatusWaiting {
		t.Fatalf("caller mutation leaked into the store")
	}

	live, err := m.ListActive(ctx)
	if err != nil || len(live) != 1 {
		t.Fatalf("ListActive: %v %v", live, err)
	}

	if err := m.Delete(ctx, "mem111"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := m.Get(ctx, "mem111"); got != nil {
		t.Fatalf("session survived delete")
	}
}

func TestMemoryRejectsSessionWithoutID(t *testing.T) {
	m := NewMemory()
	if err := m.Create(context.Background(), &game.Session{}); err == nil {
		t.Fatalf("expected encode error for missing id")
	}
}

func TestCacheReadThrough(t *testing.T) {
	inner := NewMemory()
	c := NewCache(inner)
	ctx := context.Background()

	if err := c.Create(ctx, testSession("cch111")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// served from the mirror even when the inner record disappears
	if err := inner.Delete(ctx, "cch111"); err != nil {
		t.Fatalf("inner delete: %v", err)
	}
	got, err := c.Get(ctx, "cch111")
	if err != nil || got == nil {
		t.Fatalf("mirror miss: %v %v", got, err)
	}

	// Delete clears both layers
	if err := c.Delete(ctx, "cch111"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := c.Get(ctx, "cch111"); got != nil {
		t.Fatalf("session survived cache delete")
	}
}

func TestCacheWriteThrough(t *testing.T) {
	inner := NewMemory()
	c := NewCache(inner)
	ctx := context.Background()

	s := testSession("cch222")
	if err := c.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	s.Status = game.StatusStarted
	if err := c.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, _ := inner.Get(ctx, "cch222")
	if got == nil || got.Status != game.StatusStarted {
		t.Fatalf("write did not reach inner store: %+v", got)
	}
}

func TestCachePopulatesOnMiss(t *testing.T) {
	inner := NewMemory()
	ctx := context.Background()
	if err := inner.Create(ctx, testSession("cch333")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c := NewCache(inner)
	got, err := c.Get(ctx, "cch333")
	if err != nil || got == nil {
		t.Fatalf("read-through failed: %v %v", got, err)
	}

	// now mirrored: survives inner deletion
	if err := inner.Delete(ctx, "cch333"); err != nil {
		t.Fatalf("inner delete: %v", err)
	}
	if got, _ := c.Get(ctx, "cch333"); got == nil {
		t.Fatalf("mirror not populated on miss")
	}
}

func TestCacheListActiveDelegates(t *testing.T) {
	inner := NewMemory()
	c := NewCache(inner)
	ctx := context.Background()

	if err := c.Create(ctx, testSession("cch444")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// remove from the inner store; the listing must not resurrect it from
	// the mirror
	if err := inner.Delete(ctx, "cch444"); err != nil {
		t.Fatalf("inner delete: %v", err)
	}
	live, err := c.ListActive(ctx)
	if err != nil || len(live) != 0 {
		t.Fatalf("listing consulted the mirror: %v %v", live, err)
	}
}
