// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/qtyper/internal/model"
	"github.com/verte-zerg/qtyper/internal/quote"
	"github.com/verte-zerg/qtyper/internal/render"
	"github.com/verte-zerg/qtyper/internal/session"
	statsPkg "github.com/verte-zerg/qtyper/internal/stats"
	"github.com/verte-zerg/qtyper/internal/store"
)

// Outcome is how a session ended.
type Outcome uint8

// Session outcomes.
const (
	OutcomeFinished Outcome = iota
	OutcomeAborted
	OutcomeFailed
)

type quoteMsg model.Quote

type fetchErrMsg struct{ err error }

type tickMsg time.Time

type charStat struct {
	correct      int
	incorrect    int
	latencySumMs int64
	latencyCount int64
}

// Model drives one typing session: it owns the terminal for the session's
// duration, feeds key events to the state machine, repaints incrementally,
// and keeps at most one quote fetch in flight.
type Model struct {
	machine  *session.Machine
	provider quote.Provider
	renderer *render.Renderer
	tracker  *statsPkg.Tracker
	store    *store.Store

	source string
	lang   string

	fetchCtx    context.Context
	cancelFetch context.CancelFunc

	fetchPending bool
	done         bool
	outcome      Outcome
	err          error
	report       string

	startedAt     time.Time
	prevCorrectAt time.Time
	charStats     map[rune]*charStat
}

// NewModel constructs a session driver over an already-fetched first quote.
func NewModel(machine *session.Machine, provider quote.Provider, st *store.Store, source, lang string) *Model {
	ctx, cancel := context.WithCancel(context.Background())
	tracker := &statsPkg.Tracker{}
	tracker.SetTotalTexts(machine.Policy().TotalTexts())
	tracker.Update(machine.Target(), machine.Typed(), machine.TextIndex(), 0)
	return &Model{
		machine:     machine,
		provider:    provider,
		renderer:    render.New(80, 24),
		tracker:     tracker,
		store:       st,
		source:      source,
		lang:        lang,
		fetchCtx:    ctx,
		cancelFetch: cancel,
		startedAt:   time.Now(),
		charStats:   map[rune]*charStat{},
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Resize never changes control flow; it only forces a full repaint
		// with the new dimensions.
		m.renderer.Resize(msg.Width, msg.Height)
		m.renderer.Render(m.machine.Target(), m.machine.Typed(), m.status())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case quoteMsg:
		m.fetchPending = false
		flow := m.machine.AppendQuote(model.Quote(msg))
		m.refreshTracker()
		m.renderer.Render(m.machine.Target(), m.machine.Typed(), m.status())
		return m, m.react(flow)

	case fetchErrMsg:
		m.done = true
		m.outcome = OutcomeFailed
		m.err = fmt.Errorf("quote fetch failed: %w", msg.err)
		return m, tea.Quit

	case tickMsg:
		flow := m.machine.Tick()
		m.refreshTracker()
		m.renderer.UpdateStatus(m.status())
		cmd := m.react(flow)
		if m.done {
			return m, cmd
		}
		return m, tea.Batch(cmd, tickCmd())
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.done {
		return ""
	}
	return m.renderer.Frame().String()
}

// Outcome reports how the session ended, valid after the program returns.
func (m *Model) Outcome() Outcome { return m.outcome }

// Err returns the fatal error for OutcomeFailed.
func (m *Model) Err() error { return m.err }

// Report returns the final summary for OutcomeFinished.
func (m *Model) Report() string { return m.report }

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var inputs []session.Input
	switch msg.Type {
	case tea.KeyCtrlC:
		inputs = []session.Input{{Kind: session.InputInterrupt}}
	case tea.KeyEnter:
		inputs = []session.Input{{Kind: session.InputEnter}}
	case tea.KeyBackspace, tea.KeyDelete:
		inputs = []session.Input{{Kind: session.InputBackspace}}
	case tea.KeySpace:
		inputs = []session.Input{{Kind: session.InputRune, Rune: ' '}}
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			inputs = append(inputs, session.Input{Kind: session.InputRune, Rune: r})
		}
	default:
		return m, nil
	}

	var flow session.ControlFlow
	for _, in := range inputs {
		if in.Kind == session.InputInterrupt {
			flow = m.machine.Handle(in)
			break
		}
		m.recordChar(in)
		before := len(m.machine.Typed())
		flow = m.machine.Handle(in)
		if len(m.machine.Typed()) == before {
			// The machine dropped the input (full buffer while a fetch is
			// pending, or backspace on an empty buffer). The frame still
			// mirrors the buffer; stepping it would desync the cursor.
			continue
		}
		m.refreshTracker()
		m.repaint(in)
	}
	return m, m.react(flow)
}

// repaint applies the incremental update for one input; the renderer falls
// back to a full repaint when stepping hits a grid boundary.
func (m *Model) repaint(in session.Input) {
	target, typed := m.machine.Target(), m.machine.Typed()
	switch in.Kind {
	case session.InputRune, session.InputEnter:
		m.renderer.Keystroke(target, typed, m.status())
	case session.InputBackspace:
		m.renderer.Backspace(target, typed, m.status())
	}
}

// react turns a control-flow state into driver actions: dispatching the
// single in-flight fetch, finishing, or aborting.
func (m *Model) react(flow session.ControlFlow) tea.Cmd {
	switch flow {
	case session.FlowRequestsText:
		m.machine.MarkFetching()
		if !m.fetchPending {
			m.fetchPending = true
			return m.fetchCmd()
		}
	case session.FlowFinished:
		m.finish()
		return tea.Quit
	case session.FlowAborted:
		// Abandon any in-flight fetch; a late result is discarded.
		m.cancelFetch()
		m.done = true
		m.outcome = OutcomeAborted
		return tea.Quit
	case session.FlowNormal, session.FlowWaitingForText:
	}
	return nil
}

func (m *Model) fetchCmd() tea.Cmd {
	ctx := m.fetchCtx
	provider := m.provider
	return func() tea.Msg {
		q, err := provider.Fetch(ctx)
		if err != nil {
			return fetchErrMsg{err: err}
		}
		return quoteMsg(q)
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) refreshTracker() {
	m.tracker.Update(m.machine.Target(), m.machine.Typed(), m.machine.TextIndex(), m.machine.Elapsed())
}

func (m *Model) status() string {
	return m.tracker.Snapshot().StatusLine()
}

// recordChar updates per-character aggregates before the machine mutates
// the typed buffer.
func (m *Model) recordChar(in session.Input) {
	if in.Kind != session.InputRune && in.Kind != session.InputEnter {
		return
	}
	target, typed := m.machine.Target(), m.machine.Typed()
	pos := len(typed)
	if pos >= len(target) {
		return
	}
	expected := target[pos]
	if expected == ' ' {
		return
	}
	r := in.Rune
	if in.Kind == session.InputEnter {
		r = '\n'
	}
	entry, ok := m.charStats[expected]
	if !ok {
		entry = &charStat{}
		m.charStats[expected] = entry
	}
	if r == expected {
		entry.correct++
		now := time.Now()
		if !m.prevCorrectAt.IsZero() {
			delta := now.Sub(m.prevCorrectAt)
			entry.latencySumMs += delta.Milliseconds()
			entry.latencyCount++
		}
		m.prevCorrectAt = now
		return
	}
	entry.incorrect++
}

func (m *Model) finish() {
	m.done = true
	m.outcome = OutcomeFinished
	m.refreshTracker()
	snap := m.tracker.Snapshot()
	m.report = snap.Report()
	m.save(snap)
}

func (m *Model) save(snap statsPkg.Snapshot) {
	if m.store == nil {
		return
	}
	endedAt := time.Now()
	stats := model.SessionStats{
		StartedAt:    m.startedAt,
		EndedAt:      endedAt,
		Mode:         m.machine.Policy().String(),
		Source:       m.source,
		Lang:         m.lang,
		QuotesTyped:  snap.TextIndex,
		TargetLen:    len(m.machine.Target()),
		CharsTyped:   snap.CharsTyped,
		CharsCorrect: snap.CharsCorrect,
		DurationMs:   endedAt.Sub(m.startedAt).Milliseconds(),
	}

	charStats := make([]model.CharStats, 0, len(m.charStats))
	for ch, entry := range m.charStats {
		charStats = append(charStats, model.CharStats{
			Char:         string(ch),
			Correct:      entry.correct,
			Incorrect:    entry.incorrect,
			LatencySumMs: entry.latencySumMs,
			LatencyCount: entry.latencyCount,
		})
	}

	ctx := context.Background()
	if _, err := m.store.InsertSession(ctx, stats, charStats); err != nil {
		logErrf("failed to save session: %v\n", err)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
