// Package render repaints the typing frame, incrementally where possible.
//
// The renderer owns a cell frame mirroring the terminal and expresses every
// change as positioned draw operations. Per-keystroke updates touch only the
// boundary cell; anything that crosses a row while the view is scrolled, or
// trips a cursor boundary, falls back to a full repaint recomputed from the
// typed-character count.
package render

import (
	"github.com/verte-zerg/qtyper/internal/cursor"
)

// Renderer draws target/typed buffers into a Frame.
type Renderer struct {
	frame  *Frame
	scroll int
}

// New creates a renderer with a frame of the given size.
func New(width, height int) *Renderer {
	return &Renderer{frame: NewFrame(width, height)}
}

// Frame exposes the backing frame for display and tests.
func (r *Renderer) Frame() *Frame {
	return r.frame
}

// Resize adjusts the frame to new terminal dimensions. The caller follows
// up with Render; a resized frame holds no valid content.
func (r *Renderer) Resize(width, height int) {
	r.frame.Resize(width, height)
	r.scroll = 0
}

// Render performs a full-screen-equivalent repaint: before-cursor cells
// colored by per-position equality, after-cursor cells in pending style,
// stale cells cleared, optional status on the bottom row, and the cursor
// restored to the logical position.
func (r *Renderer) Render(target, typed []rune, status string) []Op {
	width, height := r.frame.Size()
	textRows := height
	if status != "" && height > 1 {
		textRows = height - 1
	}

	_, cursorRow := layout(target, len(typed), width)
	r.scroll = 0
	if clamp := height / 2; cursorRow > clamp {
		r.scroll = cursorRow - clamp
	}

	ops := []Op{{Kind: OpClearAll}}
	col, row := 0, 0
	for i, tr := range target {
		screenRow := row - r.scroll
		if screenRow >= textRows {
			break
		}
		if screenRow >= 0 && tr != '\n' {
			ops = append(ops, Op{Kind: OpPut, Col: col, Row: screenRow, Rune: glyphAt(target, typed, i), Style: styleAt(target, typed, i)})
		}
		col, row = advance(col, row, width, tr)
	}

	if status != "" && height > 1 {
		ops = append(ops, r.statusOps(status)...)
	}
	ops = append(ops, r.cursorOp(target, typed))

	r.apply(ops)
	return ops
}

// Keystroke repaints after one character was appended to typed. Only the
// boundary cell is redrawn; row transitions while scrolled and cursor
// boundary errors trigger a full repaint.
func (r *Renderer) Keystroke(target, typed []rune, status string) []Op {
	i := len(typed) - 1
	if i < 0 || i >= len(target) {
		return r.Render(target, typed, status)
	}
	col, row := r.frame.Cursor()
	width, height := r.frame.Size()
	cur := cursor.Cursor{Col: col, Row: row, Width: width, Height: height}
	next, err := cur.StepForward(target[i])
	if err != nil || (next.Row != cur.Row && r.scroll > 0) {
		return r.Render(target, typed, status)
	}

	ops := make([]Op, 0, 4)
	if target[i] != '\n' {
		ops = append(ops, Op{Kind: OpPut, Col: cur.Col, Row: cur.Row, Rune: glyphAt(target, typed, i), Style: styleAt(target, typed, i)})
	}
	if status != "" && height > 1 {
		ops = append(ops, r.statusOps(status)...)
	}
	ops = append(ops, Op{Kind: OpMoveCursor, Col: next.Col, Row: next.Row})

	r.apply(ops)
	return ops
}

// Backspace repaints after the last character was removed from typed. The
// vacated cell reverts to pending style. Stepping back across a line break
// or the grid origin, or crossing a row while scrolled, falls back to a
// full repaint.
func (r *Renderer) Backspace(target, typed []rune, status string) []Op {
	i := len(typed)
	if i >= len(target) || target[i] == '\n' {
		return r.Render(target, typed, status)
	}
	col, row := r.frame.Cursor()
	width, height := r.frame.Size()
	cur := cursor.Cursor{Col: col, Row: row, Width: width, Height: height}
	prev, err := cur.StepBack(target[i])
	if err != nil || (prev.Row != cur.Row && r.scroll > 0) {
		return r.Render(target, typed, status)
	}

	ops := make([]Op, 0, 4)
	ops = append(ops, Op{Kind: OpPut, Col: prev.Col, Row: prev.Row, Rune: target[i], Style: StylePending})
	if status != "" && height > 1 {
		ops = append(ops, r.statusOps(status)...)
	}
	ops = append(ops, Op{Kind: OpMoveCursor, Col: prev.Col, Row: prev.Row})

	r.apply(ops)
	return ops
}

// UpdateStatus rewrites only the bottom status row, leaving the text and
// the cursor untouched.
func (r *Renderer) UpdateStatus(status string) []Op {
	_, height := r.frame.Size()
	if status == "" || height <= 1 {
		return nil
	}
	col, row := r.frame.Cursor()
	ops := r.statusOps(status)
	ops = append(ops, Op{Kind: OpMoveCursor, Col: col, Row: row})
	r.apply(ops)
	return ops
}

func (r *Renderer) apply(ops []Op) {
	for _, op := range ops {
		r.frame.Apply(op)
	}
}

func (r *Renderer) statusOps(status string) []Op {
	width, height := r.frame.Size()
	row := height - 1
	ops := make([]Op, 0, width+1)
	col := 0
	for _, sr := range status {
		if col >= width {
			break
		}
		ops = append(ops, Op{Kind: OpPut, Col: col, Row: row, Rune: sr, Style: StyleStatus})
		col++
	}
	ops = append(ops, Op{Kind: OpClearToEOL, Col: col, Row: row})
	return ops
}

func (r *Renderer) cursorOp(target, typed []rune) Op {
	width, height := r.frame.Size()
	col, row := layout(target, len(typed), width)
	screenRow := row - r.scroll
	if clamp := height / 2; screenRow > clamp {
		screenRow = clamp
	}
	return Op{Kind: OpMoveCursor, Col: col, Row: screenRow}
}

// styleAt colors position i by comparing typed against target.
func styleAt(target, typed []rune, i int) Style {
	if i >= len(typed) {
		return StylePending
	}
	if typed[i] == target[i] {
		return StyleCorrect
	}
	return StyleIncorrect
}

// glyphAt picks the rune drawn at position i: the typed character when it
// matched (so trailing spaces keep visual feedback), the target glyph
// otherwise.
func glyphAt(target, typed []rune, i int) rune {
	if i < len(typed) && typed[i] == target[i] {
		return typed[i]
	}
	return target[i]
}

// layout walks chars on a width-wide grid honoring line breaks and returns
// the unclamped position after the first count characters.
func layout(chars []rune, count, width int) (col, row int) {
	if width <= 0 {
		width = 1
	}
	if count > len(chars) {
		count = len(chars)
	}
	for i := 0; i < count; i++ {
		col, row = advance(col, row, width, chars[i])
	}
	return col, row
}

func advance(col, row, width int, r rune) (int, int) {
	if r == '\n' {
		return 0, row + 1
	}
	col++
	if col >= width {
		return 0, row + 1
	}
	return col, row
}
