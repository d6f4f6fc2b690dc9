// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"time"
)

// Snapshot is the running state of one typing session, derived from the
// target and typed buffers on every update. It is never mutated directly.
type Snapshot struct {
	CharsTyped   int
	CharsCorrect int
	TextIndex    int
	TotalTexts   int // 0 when the session has no fixed text count
	Elapsed      time.Duration
}

// CPM returns correct characters per minute, 0 when no time has elapsed.
func (s Snapshot) CPM() float64 {
	secs := s.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return 60 * float64(s.CharsCorrect) / secs
}

// WPM returns words per minute at the conventional five characters a word.
func (s Snapshot) WPM() float64 {
	return s.CPM() / 5
}

// Progress renders "current/total", or bare "current" when the total is
// unknown.
func (s Snapshot) Progress() string {
	if s.TotalTexts > 0 {
		return fmt.Sprintf("%d/%d", s.TextIndex, s.TotalTexts)
	}
	return fmt.Sprintf("%d", s.TextIndex)
}

// StatusLine renders the one-line live status shown under the text.
func (s Snapshot) StatusLine() string {
	return fmt.Sprintf("quote %s · %ds · %.0f cpm · %.0f wpm · %d/%d correct",
		s.Progress(),
		int(s.Elapsed.Seconds()),
		s.CPM(),
		s.WPM(),
		s.CharsCorrect,
		s.CharsTyped,
	)
}

// Report renders the final session summary.
func (s Snapshot) Report() string {
	return fmt.Sprintf(
		"Quotes: %s\nTyped: %d\nCorrect: %d\nMistakes: %d\nTime: %.1fs\nCPM: %.1f\nWPM: %.1f",
		s.Progress(),
		s.CharsTyped,
		s.CharsCorrect,
		s.CharsTyped-s.CharsCorrect,
		s.Elapsed.Seconds(),
		s.CPM(),
		s.WPM(),
	)
}

// Tracker recomputes a Snapshot from the session buffers.
type Tracker struct {
	snap Snapshot
}

// Update derives counters from the buffers. Correctness is the count of
// position-wise equal pairs over the overlap of typed and target; positions
// beyond the shorter buffer are not compared.
func (t *Tracker) Update(target, typed []rune, textIndex int, elapsed time.Duration) {
	correct := 0
	n := len(typed)
	if len(target) < n {
		n = len(target)
	}
	for i := 0; i < n; i++ {
		if typed[i] == target[i] {
			correct++
		}
	}
	t.snap.CharsTyped = len(typed)
	t.snap.CharsCorrect = correct
	t.snap.TextIndex = textIndex
	t.snap.Elapsed = elapsed
}

// SetTotalTexts records the fixed text count when the policy has one.
func (t *Tracker) SetTotalTexts(total int) {
	t.snap.TotalTexts = total
}

// Snapshot returns the current derived state.
func (t *Tracker) Snapshot() Snapshot {
	return t.snap
}
