package session

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/qtyper/internal/model"
)

func newTestMachine(policy Policy, content string) (*Machine, *time.Time) {
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	m := NewMachine(policy, model.Quote{Content: content, Length: len(content)})
	m.now = func() time.Time { return now }
	m.startedAt = base
	return m, &now
}

func typeString(m *Machine, s string) []ControlFlow {
	flows := make([]ControlFlow, 0, len(s))
	for _, r := range s {
		flows = append(flows, m.Handle(Input{Kind: InputRune, Rune: r}))
	}
	return flows
}

func TestSingleTextFinishesExactlyAtTargetLength(t *testing.T) {
	m, _ := newTestMachine(Single(), "cat")
	flows := typeString(m, "cat")
	want := []ControlFlow{FlowNormal, FlowNormal, FlowFinished}
	for i, f := range flows {
		if f != want[i] {
			t.Fatalf("flow after char %d = %v, want %v", i, f, want[i])
		}
	}
}

func TestBackspaceRemovesMistake(t *testing.T) {
	m, _ := newTestMachine(Single(), "cat")
	typeString(m, "cx")
	m.Handle(Input{Kind: InputBackspace})
	flow := typeString(m, "at")[1]
	if flow != FlowFinished {
		t.Fatalf("expected FlowFinished, got %v", flow)
	}
	if got := string(m.Typed()); got != "cat" {
		t.Fatalf("typed buffer = %q, want %q", got, "cat")
	}
}

func TestBackspaceOnEmptyBufferIsNoop(t *testing.T) {
	m, _ := newTestMachine(Single(), "cat")
	if flow := m.Handle(Input{Kind: InputBackspace}); flow != FlowNormal {
		t.Fatalf("expected FlowNormal, got %v", flow)
	}
	if len(m.Typed()) != 0 {
		t.Fatalf("expected empty buffer, got %q", string(m.Typed()))
	}
}

func TestEnterAppendsLineBreak(t *testing.T) {
	m, _ := newTestMachine(Single(), "a\nb")
	m.Handle(Input{Kind: InputRune, Rune: 'a'})
	m.Handle(Input{Kind: InputEnter})
	if got := string(m.Typed()); got != "a\n" {
		t.Fatalf("typed buffer = %q, want %q", got, "a\n")
	}
}

func TestMultiTextRequestsAtPrefetchThreshold(t *testing.T) {
	content := strings.Repeat("x", 20)
	m, _ := newTestMachine(Multi(2), content)

	flows := typeString(m, strings.Repeat("x", 5))
	for i := 0; i < 4; i++ {
		if flows[i] != FlowNormal {
			t.Fatalf("flow after char %d = %v, want FlowNormal", i, flows[i])
		}
	}
	// Remaining hits the threshold (20 - 5 = 15) on the fifth character.
	if flows[4] != FlowRequestsText {
		t.Fatalf("flow after char 5 = %v, want FlowRequestsText", flows[4])
	}
}

func TestMultiTextRequestsExactlyOneExtraQuote(t *testing.T) {
	content := strings.Repeat("x", 20)
	m, _ := newTestMachine(Multi(2), content)

	requests := 0
	for i := 0; i < 20; i++ {
		flow := m.Handle(Input{Kind: InputRune, Rune: 'x'})
		if flow == FlowRequestsText {
			requests++
			m.MarkFetching()
			m.AppendQuote(model.Quote{Content: strings.Repeat("y", 20)})
		}
	}
	if requests != 1 {
		t.Fatalf("expected exactly one request, got %d", requests)
	}
	if m.TextIndex() != 2 {
		t.Fatalf("text index = %d, want 2", m.TextIndex())
	}

	// The second quote joins with a single separating space.
	want := strings.Repeat("x", 20) + " " + strings.Repeat("y", 20)
	if got := string(m.Target()); got != want {
		t.Fatalf("target = %q, want %q", got, want)
	}

	// Finish after typing the rest; no further request fires.
	var last ControlFlow
	for i := 20; i < len(want); i++ {
		last = m.Handle(Input{Kind: InputRune, Rune: rune(want[i])})
		if last == FlowRequestsText {
			t.Fatalf("unexpected second request at char %d", i)
		}
	}
	if last != FlowFinished {
		t.Fatalf("final flow = %v, want FlowFinished", last)
	}
}

func TestTypedNeverOutgrowsTargetWhileWaiting(t *testing.T) {
	content := strings.Repeat("x", 16)
	m, _ := newTestMachine(Zen(), content)

	var flow ControlFlow
	for i := 0; i < 16; i++ {
		flow = m.Handle(Input{Kind: InputRune, Rune: 'x'})
	}
	if flow != FlowWaitingForText && flow != FlowRequestsText {
		t.Fatalf("expected a pending fetch, got %v", flow)
	}
	m.MarkFetching()

	// Buffer is transiently full; extra keystrokes are dropped, the
	// session does not finish.
	flow = m.Handle(Input{Kind: InputRune, Rune: 'x'})
	if flow == FlowFinished {
		t.Fatalf("session must not finish while waiting for text")
	}
	if len(m.Typed()) != 16 {
		t.Fatalf("typed length = %d, want 16", len(m.Typed()))
	}

	m.AppendQuote(model.Quote{Content: "more"})
	if got := len(m.Target()); got != 16+1+4 {
		t.Fatalf("target length = %d, want 21", got)
	}
	if m.Flow() != FlowRequestsText {
		// Zen immediately wants more once the remainder is within the
		// threshold again.
		t.Fatalf("flow after append = %v, want FlowRequestsText", m.Flow())
	}
}

func TestTimeLimitedFinishesOnTickWithoutKeystroke(t *testing.T) {
	m, now := newTestMachine(Timed(10*time.Second), strings.Repeat("x", 100))
	if flow := m.Tick(); flow == FlowFinished {
		t.Fatalf("finished too early")
	}
	*now = now.Add(10 * time.Second)
	if flow := m.Tick(); flow != FlowFinished {
		t.Fatalf("flow = %v, want FlowFinished at elapsed >= limit", flow)
	}
}

func TestTimeLimitedStopsRequestingAfterDeadline(t *testing.T) {
	m, now := newTestMachine(Timed(10*time.Second), strings.Repeat("x", 16))
	typeString(m, "x")
	*now = now.Add(11 * time.Second)
	flow := m.Handle(Input{Kind: InputRune, Rune: 'x'})
	if flow != FlowFinished {
		t.Fatalf("flow = %v, want FlowFinished", flow)
	}
}

func TestInterruptOverridesPendingTransitions(t *testing.T) {
	m, _ := newTestMachine(Zen(), strings.Repeat("x", 16))
	typeString(m, strings.Repeat("x", 5))
	if flow := m.Handle(Input{Kind: InputInterrupt}); flow != FlowAborted {
		t.Fatalf("flow = %v, want FlowAborted", flow)
	}
	// A late fetch result is discarded after abort.
	m.AppendQuote(model.Quote{Content: "late"})
	if m.Flow() != FlowAborted {
		t.Fatalf("flow = %v, want FlowAborted after late append", m.Flow())
	}
	if got := len(m.Target()); got != 16 {
		t.Fatalf("target length = %d, want 16", got)
	}
}

func TestSingleTextNeverRequestsMore(t *testing.T) {
	m, _ := newTestMachine(Single(), "short")
	flows := typeString(m, "shor")
	for i, f := range flows {
		if f != FlowNormal {
			t.Fatalf("flow after char %d = %v, want FlowNormal", i, f)
		}
	}
}
