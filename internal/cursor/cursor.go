// Package cursor maps a typed-character count onto the terminal grid.
package cursor

import "errors"

// ErrBoundary reports a step that would leave the grid. Callers recover by
// recomputing the position from the character count instead of stepping.
var ErrBoundary = errors.New("cursor: step crosses grid boundary")

// Cursor is a projection of the typed-character count onto the terminal
// grid. It is not an independent source of truth; it must be recomputed or
// stepped whenever the buffer length or the terminal size changes.
type Cursor struct {
	Col    int
	Row    int
	Width  int
	Height int
}

// Position places a character count on a width-wide grid using row-major
// wrapping. The row is clamped to half the terminal height so the active
// line never drifts below mid-screen.
func Position(count, width, height int) Cursor {
	if width <= 0 {
		width = 1
	}
	row := count / width
	if clamp := rowClamp(height); row > clamp {
		row = clamp
	}
	return Cursor{
		Col:    count % width,
		Row:    row,
		Width:  width,
		Height: height,
	}
}

// Locate walks the first count characters of chars from the origin,
// honoring explicit line breaks. For break-free text it agrees with
// Position except that the row saturates at the clamp instead of erroring.
func Locate(chars []rune, count, width, height int) Cursor {
	cur := Cursor{Width: width, Height: height}
	if count > len(chars) {
		count = len(chars)
	}
	for i := 0; i < count; i++ {
		next, err := cur.StepForward(chars[i])
		if err != nil {
			return cur
		}
		cur = next
	}
	return cur
}

// StepForward advances one cell past next. A line break moves to column 0
// of the next row; otherwise the column increments, wrapping to the next
// row at the right edge. Stepping past the last usable row fails with
// ErrBoundary rather than wrapping.
func (c Cursor) StepForward(next rune) (Cursor, error) {
	last := c.lastRow()
	if next == '\n' {
		if c.Row >= last {
			return c, ErrBoundary
		}
		c.Row++
		c.Col = 0
		return c, nil
	}
	if c.Col >= c.Width-1 {
		if c.Row >= last {
			return c, ErrBoundary
		}
		c.Row++
		c.Col = 0
		return c, nil
	}
	c.Col++
	return c, nil
}

// StepBack retreats one cell across consumed. A consumed line break moves
// up one row keeping the column; otherwise the column decrements, wrapping
// to the rightmost column of the previous row. Stepping before the origin
// fails with ErrBoundary.
func (c Cursor) StepBack(consumed rune) (Cursor, error) {
	if consumed == '\n' {
		if c.Row == 0 {
			return c, ErrBoundary
		}
		c.Row--
		return c, nil
	}
	if c.Col == 0 {
		if c.Row == 0 {
			return c, ErrBoundary
		}
		c.Row--
		c.Col = c.Width - 1
		return c, nil
	}
	c.Col--
	return c, nil
}

func (c Cursor) lastRow() int {
	return rowClamp(c.Height)
}

func rowClamp(height int) int {
	clamp := height / 2
	if clamp < 0 {
		clamp = 0
	}
	return clamp
}
