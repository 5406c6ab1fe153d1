package service_test

import (
	"testing"

	"github.com/pkarip/imagewall/internal/service"
)

func TestRateLimiter_AllowsBurstThenBlocks(t *testing.T) {
	// Effectively no refill within the test.
	rl := service.NewRateLimiter(0.0001, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("request over capacity should be blocked")
	}
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := service.NewRateLimiter(0.0001, 1)

	if !rl.Allow("a") {
		t.Fatal("first key should be allowed")
	}
	if rl.Allow("a") {
		t.Fatal("first key should now be blocked")
	}
	if !rl.Allow("b") {
		t.Fatal("second key should have its own budget")
	}
}
