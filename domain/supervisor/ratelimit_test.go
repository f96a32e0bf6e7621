package supervisor

import "testing"

func TestOwnerRateLimiterAllowsBurstThenBlocks(t *testing.T) {
	l := newOwnerRateLimiter(60, 2) // 1/sec, burst 2

	if !l.Allow("owner-1") {
		t.Fatal("expected first call to be allowed")
	}
	if !l.Allow("owner-1") {
		t.Fatal("expected second call within burst to be allowed")
	}
	if l.Allow("owner-1") {
		t.Fatal("expected third call to exceed burst and be denied")
	}
}

func TestOwnerRateLimiterIsPerOwner(t *testing.T) {
	l := newOwnerRateLimiter(60, 1)

	if !l.Allow("owner-1") {
		t.Fatal("expected owner-1 first call to be allowed")
	}
	if l.Allow("owner-1") {
		t.Fatal("expected owner-1 second call to be denied")
	}
	if !l.Allow("owner-2") {
		t.Fatal("expected owner-2 to have its own independent bucket")
	}
}
