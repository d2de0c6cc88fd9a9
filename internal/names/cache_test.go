package names

import (
	"context"
	"errors"
	"testing"
)

func TestLookupMemoizes(t *testing.T) {
	calls := 0
	c := NewCache(func(_ context.Context, userID string) (Profile, error) {
		calls++
		return Profile{DisplayName: "Alice", Email: "alice@example.com"}, nil
	})

	for i := 0; i < 3; i++ {
		p, err := c.Lookup(context.Background(), "U1")
		if err != nil {
			t.Fatalf("lookup: %v", err)
		}
		if p.DisplayName != "Alice" {
			t.Fatalf("unexpected profile: %+v", p)
		}
	}
	if calls != 1 {
		t.Errorf("expected single resolver call, got %d", calls)
	}
}

func TestLookupDoesNotCacheFailures(t *testing.T) {
	calls := 0
	c := NewCache(func(_ context.Context, userID string) (Profile, error) {
		calls++
		if calls == 1 {
			return Profile{}, errors.New("slack down")
		}
		return Profile{DisplayName: "Bob"}, nil
	})

	if _, err := c.Lookup(context.Background(), "U2"); err == nil {
		t.Fatalf("expected first lookup to fail")
	}
	p, err := c.Lookup(context.Background(), "U2")
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if p.DisplayName != "Bob" {
		t.Fatalf("unexpected profile: %+v", p)
	}
}

func TestDisplayNameFallsBackToID(t *testing.T) {
	c := NewCache(func(_ context.Context, userID string) (Profile, error) {
		return Profile{}, errors.New("unreachable")
	})
	if got := c.DisplayName(context.Background(), "U42"); got != "U42" {
		t.Errorf("expected raw id fallback, got %q", got)
	}
}
