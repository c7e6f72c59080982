package domain

import (
	"testing"
	"time"
)

func TestValidateProductID(t *testing.T) {
	for _, n := range []int{0, -1, -100} {
		_, err := ValidateProductID(n)
		if KindOf(err) != KindInvalidArgument {
			t.Fatalf("%d: expected invalid_argument, got %v", n, err)
		}
	}

	_, err := ValidateProductID(-1)
	if AsFailure(err).Message != "Invalid productId: -1" {
		t.Fatalf("unexpected message: %q", AsFailure(err).Message)
	}

	id, err := ValidateProductID(13)
	if err != nil || id.Int() != 13 || id.String() != "13" {
		t.Fatalf("expected id 13, got %v (%v)", id, err)
	}
}

func TestResiliencePolicy_MaxDuration(t *testing.T) {
	single := ResiliencePolicy{Timeout: 2 * time.Second, MaxAttempts: 1, BackoffBase: time.Second}
	if got := single.MaxDuration(); got != 2*time.Second {
		t.Fatalf("expected 2s with one attempt, got %s", got)
	}

	p := ResiliencePolicy{Timeout: time.Second, MaxAttempts: 3, BackoffBase: 100 * time.Millisecond, BackoffMax: 150 * time.Millisecond}
	// 3 timeouts + 100ms*1.2 + 150ms*1.2
	want := 3*time.Second + 120*time.Millisecond + 180*time.Millisecond
	if got := p.MaxDuration(); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
