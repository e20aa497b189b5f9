package cache

import (
	"context"
	"testing"
	"time"
)

// stubAccessor returns a canned state and copies a canned value on hits.
type stubAccessor struct {
	state State
	value []string
}

func (s *stubAccessor) Fetch(ctx context.Context, key string, dest any) State {
	if s.state == Hit {
		*(dest.(*[]string)) = s.value
	}
	return s.state
}

func (s *stubAccessor) Store(ctx context.Context, key string, value any) {}

func (s *stubAccessor) StoreWithTTL(ctx context.Context, key string, value any, ttl time.Duration) {
}

func (s *stubAccessor) StoreEmpty(ctx context.Context, key string) {}

func (s *stubAccessor) Invalidate(ctx context.Context, key string) {}

func TestLookup_Hit(t *testing.T) {
	accessor := &stubAccessor{state: Hit, value: []string{"a", "b"}}

	got, state := Lookup[[]string](context.Background(), accessor, "key")
	if state != Hit {
		t.Fatalf("expected hit, got %s", state)
	}
	if len(got) != 2 || got[0] != "a" {
		t.Errorf("unexpected value %v", got)
	}
}

func TestLookup_ZeroValueUnlessHit(t *testing.T) {
	for _, state := range []State{Miss, Empty} {
		accessor := &stubAccessor{state: state, value: []string{"ignored"}}

		got, gotState := Lookup[[]string](context.Background(), accessor, "key")
		if gotState != state {
			t.Errorf("expected %s, got %s", state, gotState)
		}
		if got != nil {
			t.Errorf("expected zero value for %s, got %v", state, got)
		}
	}
}

func TestState_String(t *testing.T) {
	if Miss.String() != "miss" || Empty.String() != "empty" || Hit.String() != "hit" {
		t.Errorf("unexpected state names: %s %s %s", Miss, Empty, Hit)
	}
}
