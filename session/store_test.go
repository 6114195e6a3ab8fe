package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nutripeek/nutripeek-go/types"
)

// fakeClock is an injectable clock for deterministic expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestUnknownShortcode(t *testing.T) {
	store := NewStore(0, nil)

	if store.Exists("nope") {
		t.Error("Exists should be false for an unknown shortcode")
	}
	if err := store.Save("nope", []byte("data")); !errors.Is(err, ErrNotFound) {
		t.Errorf("Save: expected ErrNotFound, got %v", err)
	}
	if _, err := store.Read("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read: expected ErrNotFound, got %v", err)
	}
	if _, _, err := store.GetState("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetState: expected ErrNotFound, got %v", err)
	}
	if err := store.SetState("nope", types.StatusUploaded, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetState: expected ErrNotFound, got %v", err)
	}
	if store.Delete("nope") {
		t.Error("Delete should return false for an unknown shortcode")
	}
}

func TestCreateAndLazyExpiry(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(0, clock.Now)

	code, expiresAt := store.Create(60 * time.Second)
	if len(code) != shortcodeLength {
		t.Fatalf("expected %d-char shortcode, got %q", shortcodeLength, code)
	}
	if got := expiresAt.Sub(clock.Now()); got != 60*time.Second {
		t.Errorf("expected 60s deadline, got %v", got)
	}
	if !store.Exists(code) {
		t.Fatal("session should exist right after create")
	}

	status, _, err := store.GetState(code)
	if err != nil || status != types.StatusAwaitingUpload {
		t.Fatalf("expected awaiting_upload, got %v (%v)", status, err)
	}

	clock.Advance(61 * time.Second)

	if _, err := store.Read(code); !errors.Is(err, ErrNotFound) {
		t.Errorf("Read after expiry: expected ErrNotFound, got %v", err)
	}
	status, _, err = store.GetState(code)
	if err != nil {
		t.Fatalf("GetState after expiry: %v", err)
	}
	if status != types.StatusExpired {
		t.Errorf("expected expired status, got %v", status)
	}
	if err := store.Save(code, []byte("data")); !errors.Is(err, ErrExpired) {
		t.Errorf("Save after expiry: expected ErrExpired, got %v", err)
	}
}

func TestSaveTwiceConflict(t *testing.T) {
	store := NewStore(0, nil)
	code, _ := store.Create(time.Minute)

	first := []byte("first-payload-wins")
	if err := store.Save(code, first); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	status, _, _ := store.GetState(code)
	if status != types.StatusUploaded {
		t.Fatalf("expected uploaded, got %v", status)
	}

	if err := store.Save(code, []byte("second")); !errors.Is(err, ErrConflict) {
		t.Fatalf("second save: expected ErrConflict, got %v", err)
	}

	got, err := store.Read(code)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(got) != string(first) {
		t.Errorf("payload changed by rejected save: %q", got)
	}
}

func TestSaveTooLarge(t *testing.T) {
	store := NewStore(100, nil)
	code, _ := store.Create(time.Minute)

	big := make([]byte, 101)
	if err := store.Save(code, big); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	status, lastErr, err := store.GetState(code)
	if err != nil {
		t.Fatalf("GetState: %v", err)
	}
	if status != types.StatusFailed {
		t.Errorf("expected failed status, got %v", status)
	}
	if lastErr == "" {
		t.Error("expected a recorded failure reason")
	}
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(0, clock.Now)

	a, _ := store.Create(10 * time.Second)
	b, _ := store.Create(10 * time.Second)
	c, _ := store.Create(120 * time.Second)

	clock.Advance(30 * time.Second)

	if got := store.Sweep(); got != 2 {
		t.Fatalf("expected 2 swept, got %d", got)
	}
	if store.Exists(a) || store.Exists(b) {
		t.Error("expired sessions should be gone after sweep")
	}
	status, _, err := store.GetState(c)
	if err != nil || status != types.StatusAwaitingUpload {
		t.Errorf("untouched session should remain queryable, got %v (%v)", status, err)
	}

	if got := store.Sweep(); got != 0 {
		t.Errorf("second sweep should remove nothing, got %d", got)
	}
}

func TestConcurrentCreateDistinctCodes(t *testing.T) {
	store := NewStore(0, nil)

	const n = 100
	codes := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, _ := store.Create(time.Minute)
			codes <- code
		}()
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool, n)
	for code := range codes {
		if seen[code] {
			t.Fatalf("duplicate shortcode: %s", code)
		}
		seen[code] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d distinct codes, got %d", n, len(seen))
	}
}

func TestSetStateRejectsIllegalTransitions(t *testing.T) {
	store := NewStore(0, nil)
	code, _ := store.Create(time.Minute)

	if err := store.SetState(code, types.StatusProcessed, ""); !errors.Is(err, ErrConflict) {
		t.Errorf("awaiting_upload -> processed should conflict, got %v", err)
	}

	if err := store.Save(code, []byte("payload")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SetState(code, types.StatusProcessed, ""); !errors.Is(err, ErrConflict) {
		t.Errorf("uploaded -> processed should conflict, got %v", err)
	}
	if err := store.SetState(code, types.StatusProcessing, ""); err != nil {
		t.Fatalf("uploaded -> processing: %v", err)
	}
	if err := store.SetState(code, types.StatusProcessing, ""); !errors.Is(err, ErrConflict) {
		t.Errorf("processing -> processing should conflict, got %v", err)
	}
	if err := store.SetState(code, types.StatusProcessed, ""); err != nil {
		t.Fatalf("processing -> processed: %v", err)
	}
	if err := store.SetState(code, types.StatusFailed, "late"); !errors.Is(err, ErrConflict) {
		t.Errorf("processed is terminal, got %v", err)
	}
	if err := store.SetState(code, types.StatusExpired, ""); !errors.Is(err, ErrConflict) {
		t.Errorf("expiry must not preempt a terminal state, got %v", err)
	}
}

func TestDeleteIsOneWay(t *testing.T) {
	store := NewStore(0, nil)
	code, _ := store.Create(time.Minute)

	if !store.Delete(code) {
		t.Fatal("delete of a live session should return true")
	}
	if store.Delete(code) {
		t.Error("second delete should return false")
	}
	if store.Exists(code) {
		t.Error("deleted session must not resurrect")
	}
	if _, _, err := store.GetState(code); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
