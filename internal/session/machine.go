package session

import (
	"time"

	"github.com/verte-zerg/qtyper/internal/model"
)

// PrefetchThreshold is the remaining-character countdown at which the next
// quote is requested, hiding fetch latency behind the last characters of
// the current text.
const PrefetchThreshold = 15

// ControlFlow is the machine state driving the session loop.
type ControlFlow uint8

// Control-flow states.
const (
	// FlowNormal accepts input with no pending transition.
	FlowNormal ControlFlow = iota
	// FlowRequestsText asks the driver to dispatch one quote fetch.
	FlowRequestsText
	// FlowWaitingForText holds until the dispatched fetch resolves.
	FlowWaitingForText
	// FlowFinished ends the session normally.
	FlowFinished
	// FlowAborted ends the session on user interrupt.
	FlowAborted
)

// InputKind discriminates accepted input events. Key releases never reach
// the machine; the terminal layer only delivers presses and repeats.
type InputKind uint8

// Input kinds.
const (
	InputRune InputKind = iota
	InputEnter
	InputBackspace
	InputInterrupt
)

// Input is one normalized key event.
type Input struct {
	Kind InputKind
	Rune rune
}

// Machine owns the target and typed buffers for one session and computes
// the control-flow transition after every accepted input event.
type Machine struct {
	policy    Policy
	target    []rune
	typed     []rune
	textIndex int
	flow      ControlFlow
	startedAt time.Time
	now       func() time.Time
}

// NewMachine creates a machine over the initial quote. The clock starts
// immediately, matching a session that begins when the text appears.
func NewMachine(policy Policy, initial model.Quote) *Machine {
	m := &Machine{
		policy:    policy,
		target:    initial.ContentRunes(),
		typed:     make([]rune, 0, initial.Length),
		textIndex: 1,
		flow:      FlowNormal,
		now:       time.Now,
	}
	m.startedAt = m.now()
	return m
}

// Handle applies one input event and returns the resulting control flow.
func (m *Machine) Handle(in Input) ControlFlow {
	switch in.Kind {
	case InputInterrupt:
		// Abort overrides any pending transition.
		m.flow = FlowAborted
		return m.flow
	case InputRune:
		m.append(in.Rune)
	case InputEnter:
		m.append('\n')
	case InputBackspace:
		if len(m.typed) > 0 {
			m.typed = m.typed[:len(m.typed)-1]
		}
	}
	return m.update()
}

// Tick re-evaluates the control flow against the clock so a time-limited
// session finishes between keystrokes.
func (m *Machine) Tick() ControlFlow {
	return m.update()
}

// MarkFetching records that the driver dispatched the requested fetch. The
// machine holds in FlowWaitingForText until AppendQuote.
func (m *Machine) MarkFetching() {
	if m.flow == FlowRequestsText {
		m.flow = FlowWaitingForText
	}
}

// AppendQuote extends the target with the fetched quote, separated by a
// single space, and returns the machine to normal flow.
func (m *Machine) AppendQuote(q model.Quote) ControlFlow {
	if m.flow != FlowWaitingForText {
		// A late fetch after abort or finish is discarded.
		return m.flow
	}
	m.target = append(m.target, ' ')
	m.target = append(m.target, q.ContentRunes()...)
	m.textIndex++
	m.flow = FlowNormal
	return m.update()
}

// Target returns the concatenated target buffer.
func (m *Machine) Target() []rune { return m.target }

// Typed returns the typed buffer.
func (m *Machine) Typed() []rune { return m.typed }

// TextIndex returns the 1-based index of the current quote.
func (m *Machine) TextIndex() int { return m.textIndex }

// Flow returns the current control flow without re-evaluating it.
func (m *Machine) Flow() ControlFlow { return m.flow }

// Policy returns the session policy.
func (m *Machine) Policy() Policy { return m.policy }

// Elapsed returns time since the session started.
func (m *Machine) Elapsed() time.Duration {
	return m.now().Sub(m.startedAt)
}

func (m *Machine) append(r rune) {
	// The typed buffer never outgrows the target; keystrokes beyond a
	// transiently full buffer are dropped while more text is pending.
	if len(m.typed) >= len(m.target) {
		return
	}
	m.typed = append(m.typed, r)
}

func (m *Machine) update() ControlFlow {
	if m.flow == FlowAborted || m.flow == FlowFinished {
		return m.flow
	}
	elapsed := m.Elapsed()

	if m.flow == FlowNormal &&
		m.policy.wantsMore(m.textIndex, elapsed) &&
		len(m.target)-len(m.typed) <= PrefetchThreshold {
		m.flow = FlowRequestsText
	}

	fetchPending := m.flow == FlowRequestsText || m.flow == FlowWaitingForText
	timeBound := m.policy.Kind == TimeLimited
	if (timeBound || !fetchPending) && m.policy.finished(len(m.typed), len(m.target), elapsed) {
		m.flow = FlowFinished
	}
	return m.flow
}
