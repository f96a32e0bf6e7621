package workerqueue

import "testing"

func TestRegistryCapacity(t *testing.T) {
	r := NewRegistry(2)

	if !r.CanAcceptForRunner("worker-1") {
		t.Fatal("expected capacity before any jobs claimed")
	}
	r.MarkActive("worker-1")
	r.MarkActive("worker-1")
	if r.CanAcceptForRunner("worker-1") {
		t.Fatal("expected runner to be at capacity")
	}

	r.ClearActive("worker-1")
	if !r.CanAcceptForRunner("worker-1") {
		t.Fatal("expected capacity freed after clearing one active job")
	}
	if got := r.ActiveCount("worker-1"); got != 1 {
		t.Errorf("ActiveCount() = %d, want 1", got)
	}
}

func TestRegistryClearActiveFloorsAtZero(t *testing.T) {
	r := NewRegistry(1)
	r.ClearActive("worker-1")
	if got := r.ActiveCount("worker-1"); got != 0 {
		t.Errorf("ActiveCount() = %d, want 0", got)
	}
}
