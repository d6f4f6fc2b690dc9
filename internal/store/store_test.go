package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/qtyper/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "qtyper.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func sampleSession(endedAt time.Time, lang string, correct, incorrect int) model.SessionStats {
	return model.SessionStats{
		StartedAt:    endedAt.Add(-time.Minute),
		EndedAt:      endedAt,
		Mode:         "single",
		Source:       "api",
		Lang:         lang,
		QuotesTyped:  1,
		TargetLen:    correct + incorrect,
		CharsTyped:   correct + incorrect,
		CharsCorrect: correct,
		DurationMs:   60000,
	}
}

func TestInsertAndListSessions(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	id1, err := st.InsertSession(ctx, sampleSession(base, "en", 90, 10), nil)
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	id2, err := st.InsertSession(ctx, sampleSession(base.Add(time.Hour), "en", 50, 5), nil)
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	if id1 == id2 {
		t.Fatalf("expected distinct session ids, got %d twice", id1)
	}

	sessions, err := st.ListSessions(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if !sessions[0].EndedAt.Before(sessions[1].EndedAt) {
		t.Fatalf("expected sessions ordered by ended_at ascending")
	}
	if sessions[0].Correct != 90 || sessions[0].Incorrect != 10 {
		t.Fatalf("unexpected aggregate: correct=%d incorrect=%d", sessions[0].Correct, sessions[0].Incorrect)
	}
}

func TestListSessionsFilters(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if _, err := st.InsertSession(ctx, sampleSession(base, "en", 90, 10), nil); err != nil {
		t.Fatalf("insert session: %v", err)
	}
	if _, err := st.InsertSession(ctx, sampleSession(base.Add(time.Hour), "ru", 40, 4), nil); err != nil {
		t.Fatalf("insert session: %v", err)
	}

	byLang, err := st.ListSessions(ctx, model.StatsConfig{Lang: "ru"})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(byLang) != 1 || byLang[0].Correct != 40 {
		t.Fatalf("expected single ru session, got %+v", byLang)
	}

	since := base.Add(30 * time.Minute)
	recent, err := st.ListSessions(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(recent) != 1 || recent[0].Correct != 40 {
		t.Fatalf("expected single recent session, got %+v", recent)
	}
}

func TestCharStatsAggregation(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	id1, err := st.InsertSession(ctx, sampleSession(base, "en", 10, 2), []model.CharStats{
		{Char: "a", Correct: 5, Incorrect: 1, LatencySumMs: 500, LatencyCount: 6},
		{Char: "b", Correct: 5, Incorrect: 1, LatencySumMs: 700, LatencyCount: 6},
	})
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
	id2, err := st.InsertSession(ctx, sampleSession(base.Add(time.Hour), "en", 10, 0), []model.CharStats{
		{Char: "a", Correct: 10, Incorrect: 0, LatencySumMs: 800, LatencyCount: 10},
	})
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}

	aggs, err := st.ListCharAggregatesForSessions(ctx, []int64{id1, id2})
	if err != nil {
		t.Fatalf("list char aggregates: %v", err)
	}
	byChar := map[string]model.CharAggregate{}
	for _, agg := range aggs {
		byChar[agg.Char] = agg
	}
	a, ok := byChar["a"]
	if !ok {
		t.Fatalf("expected aggregate for 'a', got %+v", aggs)
	}
	if a.Correct != 15 || a.Incorrect != 1 || a.LatencySumMs != 1300 || a.LatencyCount != 16 {
		t.Fatalf("unexpected aggregate for 'a': %+v", a)
	}
	if b := byChar["b"]; b.Correct != 5 {
		t.Fatalf("unexpected aggregate for 'b': %+v", b)
	}
}

func TestGetWeakCharsWindow(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	if _, err := st.InsertSession(ctx, sampleSession(base, "en", 10, 5), []model.CharStats{
		{Char: "q", Correct: 1, Incorrect: 5, LatencySumMs: 900, LatencyCount: 6},
	}); err != nil {
		t.Fatalf("insert session: %v", err)
	}
	if _, err := st.InsertSession(ctx, sampleSession(base.Add(time.Hour), "en", 10, 0), []model.CharStats{
		{Char: "e", Correct: 10, Incorrect: 0, LatencySumMs: 500, LatencyCount: 10},
	}); err != nil {
		t.Fatalf("insert session: %v", err)
	}

	aggs, err := st.GetWeakChars(ctx, 1, "en")
	if err != nil {
		t.Fatalf("weak chars: %v", err)
	}
	if len(aggs) != 1 || aggs[0].Char != "e" {
		t.Fatalf("expected only the latest session's chars, got %+v", aggs)
	}

	all, err := st.GetWeakChars(ctx, 10, "")
	if err != nil {
		t.Fatalf("weak chars: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected chars from both sessions, got %+v", all)
	}

	none, err := st.GetWeakChars(ctx, 0, "en")
	if err != nil {
		t.Fatalf("weak chars: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil for zero window, got %+v", none)
	}
}
