package ratelimit

import (
	"testing"
	"time"
)

func TestInMemoryRateLimiter_IsLimited_IsPerKey(t *testing.T) {
	limiter := NewInMemoryRateLimiter(1, time.Second)

	limited, err := limiter.IsLimited("client-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limited {
		t.Fatalf("first request for client-a should not be limited")
	}

	limited, err = limiter.IsLimited("client-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !limited {
		t.Fatalf("second immediate request for client-a should be limited")
	}

	limited, err = limiter.IsLimited("client-b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limited {
		t.Fatalf("first request for client-b should not be limited (per-key limiter)")
	}
}

func TestInMemoryRateLimiter_RejectsUntilWindowRollsOver(t *testing.T) {
	const budget = 2
	const window = 100 * time.Millisecond

	limiter := NewInMemoryRateLimiter(budget, window)

	for i := 0; i < budget; i++ {
		limited, err := limiter.IsLimited("client-a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if limited {
			t.Fatalf("request %d is within the budget and should be admitted", i+1)
		}
	}

	// The budget is spent: no admissions for the remainder of the window,
	// including partway through it.
	time.Sleep(window / 4)

	limited, err := limiter.IsLimited("client-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !limited {
		t.Fatalf("over-budget request partway through the window should be rejected")
	}

	// Once the window elapses the counter resets and the client is admitted
	// again.
	time.Sleep(window)

	limited, err = limiter.IsLimited("client-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limited {
		t.Fatalf("request after the window elapsed should be admitted again")
	}
}
