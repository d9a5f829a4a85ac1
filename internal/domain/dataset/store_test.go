package dataset

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func sessionCreatedAt(id string, at time.Time) *Session {
	return &Session{Summary: Summary{ID: id, CreatedAt: at}}
}

func TestStore_PutGetDelete(t *testing.T) {
	store := NewStore(4)
	store.Put(sessionCreatedAt("a", time.Now()))

	if _, err := store.Get("a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete("a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Get("a"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if err := store.Delete("a"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound on double delete, got %v", err)
	}
}

func TestStore_EvictsOldest(t *testing.T) {
	store := NewStore(2)
	base := time.Now()
	for i := 0; i < 3; i++ {
		store.Put(sessionCreatedAt(fmt.Sprintf("s%d", i), base.Add(time.Duration(i)*time.Minute)))
	}

	if store.Len() != 2 {
		t.Fatalf("expected capacity 2, got %d", store.Len())
	}
	if _, err := store.Get("s0"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("expected oldest session to be evicted")
	}
	if _, err := store.Get("s2"); err != nil {
		t.Errorf("newest session must survive: %v", err)
	}
}

func TestStore_MinimumCapacity(t *testing.T) {
	store := NewStore(0)
	store.Put(sessionCreatedAt("a", time.Now()))
	if store.Len() != 1 {
		t.Errorf("expected capacity to clamp to 1, got %d", store.Len())
	}
}
