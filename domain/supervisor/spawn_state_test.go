package supervisor

import "testing"

func TestSpawnStateLifecycle(t *testing.T) {
	var s spawnState
	if s.Requested() {
		t.Fatal("expected not requested initially")
	}
	if _, ok := s.JobID(); ok {
		t.Fatal("expected no job id before request")
	}

	s.Request("job-123")
	if !s.Requested() {
		t.Fatal("expected requested after Request")
	}
	jobID, ok := s.JobID()
	if !ok || jobID != "job-123" {
		t.Fatalf("JobID() = %q, %v, want job-123, true", jobID, ok)
	}
}
