// Package model defines shared data structures.
package model

import "time"

// Quote is one unit of content to type. Immutable once fetched.
type Quote struct {
	Content string   `json:"content"`
	Author  string   `json:"author"`
	Tags    []string `json:"tags"`
	Length  int      `json:"length"`
}

// ContentRunes returns the quote content as a rune slice.
func (q Quote) ContentRunes() []rune {
	return []rune(q.Content)
}

// Config defines session settings resolved from flags and the config file.
type Config struct {
	Mode     string
	Count    int
	Duration int

	Offline    bool
	Lang       string
	Words      int
	CapsPct    float64
	PunctPct   float64
	PunctSet   string
	FocusWeak  bool
	WeakTop    int
	WeakFactor float64
	WeakWindow int

	APIURL         string
	TimeoutSeconds int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Lang        string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SessionStats captures a completed typing session.
type SessionStats struct {
	StartedAt    time.Time
	EndedAt      time.Time
	Mode         string
	Source       string
	Lang         string
	QuotesTyped  int
	TargetLen    int
	CharsTyped   int
	CharsCorrect int
	DurationMs   int64
}

// CharStats stores per-character stats for a session.
type CharStats struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  int64
	EndedAt    time.Time
	Correct    int
	Incorrect  int
	DurationMs int64
}
