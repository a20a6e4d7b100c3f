package bridge

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/C4AI/blab-chatbot-bot-client/pkg/conversation"
)

func newIdleBridge(id string) *Bridge {
	s := conversation.NewSession(nil, id, "p1")
	return New(s, newRecordingBot(s), Options{ControllerURL: "ws://127.0.0.1:1", Logger: testLogger()})
}

func TestRegistry_AddGetRemove(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	b1 := newIdleBridge("c1")
	b2 := newIdleBridge("c2")

	if err := r.Add(b1); err != nil {
		t.Fatalf("Add(c1): %v", err)
	}
	if err := r.Add(b2); err != nil {
		t.Fatalf("Add(c2): %v", err)
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}

	got, ok := r.Get("c1")
	if !ok || got != b1 {
		t.Error("Get(c1) should return b1")
	}
	if _, ok := r.Get("missing"); ok {
		t.Error("Get(missing) should report false")
	}

	r.Remove(b1)
	if _, ok := r.Get("c1"); ok {
		t.Error("c1 should be gone after Remove")
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestRegistry_Duplicate(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	first := newIdleBridge("c1")
	second := newIdleBridge("c1")

	if err := r.Add(first); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := r.Add(second); !errors.Is(err, ErrDuplicate) {
		t.Errorf("Add duplicate = %v, want ErrDuplicate", err)
	}

	// Removing the rejected bridge must not evict the registered one.
	r.Remove(second)
	if got, ok := r.Get("c1"); !ok || got != first {
		t.Error("first bridge should still be registered")
	}
}

func TestRegistry_IDsAndRange(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	for _, id := range []string{"c3", "c1", "c2"} {
		if err := r.Add(newIdleBridge(id)); err != nil {
			t.Fatalf("Add(%s): %v", id, err)
		}
	}

	if got := r.IDs(); !slices.Equal(got, []string{"c1", "c2", "c3"}) {
		t.Errorf("IDs = %v", got)
	}

	visited := 0
	r.Range(func(_ string, _ *Bridge) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("Range visited %d after stop, want 1", visited)
	}

	if counts := r.CountByState(); counts[StateConnecting] != 3 {
		t.Errorf("CountByState = %v, want 3 connecting", counts)
	}
}

func TestRegistry_CloseAll(t *testing.T) {
	t.Parallel()

	fc := newFakeController(t)
	r := NewRegistry()

	var errChs []<-chan error
	for _, id := range []string{"c1", "c2"} {
		s := conversation.NewSession(nil, id, "p1")
		b := New(s, newRecordingBot(s), Options{
			ControllerURL: fc.url(),
			Logger:        testLogger(),
			Registry:      r,
		})
		if err := r.Add(b); err != nil {
			t.Fatalf("Add: %v", err)
		}
		errChs = append(errChs, runBridge(b))
	}
	fc.accept(t)
	fc.accept(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.CloseAll(ctx); err != nil {
		t.Fatalf("CloseAll: %v", err)
	}
	for _, ch := range errChs {
		waitRun(t, ch)
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d after CloseAll, want 0", r.Len())
	}
}

func TestRegistry_CloseAllTimeout(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	// Never run, so it never reaches CLOSED.
	if err := r.Add(newIdleBridge("c1")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.CloseAll(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("CloseAll = %v, want DeadlineExceeded", err)
	}
}
