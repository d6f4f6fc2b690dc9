// Package session owns the typing-session state machine and its policies.
package session

import (
	"fmt"
	"time"
)

// PolicyKind discriminates session policies.
type PolicyKind uint8

// Session policies.
const (
	// SingleText ends after one quote.
	SingleText PolicyKind = iota
	// MultiText ends after a fixed number of quotes.
	MultiText
	// TimeLimited ends when the duration elapses.
	TimeLimited
	// Unbounded keeps requesting quotes until the user aborts.
	Unbounded
)

// Policy selects when the session requests more text and when it finishes.
type Policy struct {
	Kind     PolicyKind
	Count    int           // MultiText only
	Duration time.Duration // TimeLimited only
}

// Single returns a one-quote policy.
func Single() Policy { return Policy{Kind: SingleText} }

// Multi returns a fixed-count policy.
func Multi(count int) Policy { return Policy{Kind: MultiText, Count: count} }

// Timed returns a duration-bounded policy.
func Timed(d time.Duration) Policy { return Policy{Kind: TimeLimited, Duration: d} }

// Zen returns an unbounded policy.
func Zen() Policy { return Policy{Kind: Unbounded} }

// TotalTexts returns the fixed number of quotes the session spans, or 0
// when the policy has no fixed count.
func (p Policy) TotalTexts() int {
	switch p.Kind {
	case SingleText:
		return 1
	case MultiText:
		return p.Count
	case TimeLimited, Unbounded:
		return 0
	}
	return 0
}

// wantsMore reports whether another quote should follow the current ones.
func (p Policy) wantsMore(textIndex int, elapsed time.Duration) bool {
	switch p.Kind {
	case SingleText:
		return false
	case MultiText:
		return textIndex < p.Count
	case TimeLimited:
		return elapsed < p.Duration
	case Unbounded:
		return true
	}
	return false
}

// finished reports whether the session is over. Time-limited sessions end
// on elapsed time alone; every other policy ends when the target is fully
// typed.
func (p Policy) finished(typedLen, targetLen int, elapsed time.Duration) bool {
	switch p.Kind {
	case TimeLimited:
		return elapsed >= p.Duration
	case SingleText, MultiText, Unbounded:
		return typedLen == targetLen
	}
	return false
}

// String names the policy for reports and persistence.
func (p Policy) String() string {
	switch p.Kind {
	case SingleText:
		return "single"
	case MultiText:
		return fmt.Sprintf("multi:%d", p.Count)
	case TimeLimited:
		return fmt.Sprintf("time:%ds", int(p.Duration.Seconds()))
	case Unbounded:
		return "zen"
	}
	return "unknown"
}
