package main

import (
	"strings"
	"testing"
	"time"
)

func TestRunStatsCounters(t *testing.T) {
	stats := NewRunStats()
	stats.SetFetched(5)

	stats.ObserveAssemble(10*time.Millisecond, true)
	stats.ObserveAssemble(20*time.Millisecond, true)
	stats.ObserveAssemble(5*time.Millisecond, false)
	stats.ObserveSubmit(30*time.Millisecond, true)
	stats.ObserveSubmit(40*time.Millisecond, false)

	if stats.Accepted != 2 {
		t.Errorf("Accepted = %d, want 2", stats.Accepted)
	}
	if stats.Rejected != 1 {
		t.Errorf("Rejected = %d, want 1", stats.Rejected)
	}
	if stats.Submitted != 1 || stats.SubmitFailed != 1 {
		t.Errorf("Submitted = %d, SubmitFailed = %d", stats.Submitted, stats.SubmitFailed)
	}
	if stats.AssembleTotal != 35*time.Millisecond {
		t.Errorf("AssembleTotal = %v", stats.AssembleTotal)
	}
}

func TestRunStatsString(t *testing.T) {
	stats := NewRunStats()
	stats.SetFetched(2)
	stats.ObserveAssemble(10*time.Millisecond, true)
	stats.ObserveSubmit(20*time.Millisecond, true)

	s := stats.String()
	for _, want := range []string{"fetched=2", "accepted=1", "assemble:", "submit:"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}

	empty := NewRunStats().String()
	if strings.Contains(empty, "assemble:") {
		t.Errorf("empty stats should omit stage timings: %q", empty)
	}
}
