package supervisor

import "sync/atomic"

// spawnState is set by the spawn_worker tool handler the moment it
// enqueues a job, and read by the BeforeModelCallback installed in
// pkg/llmclient to end the turn early — mirroring the teacher's
// AskPauseState used by its ask_user tool.
type spawnState struct {
	requested atomic.Bool
	jobID     atomic.Value // string
}

func (s *spawnState) Request(jobID string) {
	s.jobID.Store(jobID)
	s.requested.Store(true)
}

func (s *spawnState) Requested() bool {
	return s.requested.Load()
}

func (s *spawnState) JobID() (string, bool) {
	if !s.requested.Load() {
		return "", false
	}
	v := s.jobID.Load()
	if v == nil {
		return "", false
	}
	return v.(string), true
}
