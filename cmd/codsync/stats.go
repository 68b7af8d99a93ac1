package main

import (
	"fmt"
	"sync"
	"time"
)

// RunStats tracks counters and stage timings for one sync run.
type RunStats struct {
	mu sync.Mutex

	Fetched      int64
	Accepted     int64
	Rejected     int64
	Submitted    int64
	SubmitFailed int64

	AssembleTotal time.Duration
	SubmitTotal   time.Duration
}

// NewRunStats creates a new RunStats instance
func NewRunStats() *RunStats {
	return &RunStats{}
}

// SetFetched records how many records the feed returned.
func (s *RunStats) SetFetched(n int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fetched = n
}

// ObserveAssemble records one record assembly and its outcome.
func (s *RunStats) ObserveAssemble(duration time.Duration, accepted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AssembleTotal += duration
	if accepted {
		s.Accepted++
	} else {
		s.Rejected++
	}
}

// ObserveSubmit records one submission attempt.
func (s *RunStats) ObserveSubmit(duration time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SubmitTotal += duration
	if ok {
		s.Submitted++
	} else {
		s.SubmitFailed++
	}
}

// String returns a formatted summary of the run.
func (s *RunStats) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := fmt.Sprintf("fetched=%d accepted=%d rejected=%d submitted=%d submitFailed=%d",
		s.Fetched, s.Accepted, s.Rejected, s.Submitted, s.SubmitFailed)

	processed := s.Accepted + s.Rejected
	if processed > 0 {
		avg := s.AssembleTotal / time.Duration(processed)
		result += fmt.Sprintf("; assemble: total=%v avg=%v", s.AssembleTotal, avg)
	}
	attempts := s.Submitted + s.SubmitFailed
	if attempts > 0 {
		avg := s.SubmitTotal / time.Duration(attempts)
		result += fmt.Sprintf("; submit: total=%v avg=%v", s.SubmitTotal, avg)
	}
	return result
}
