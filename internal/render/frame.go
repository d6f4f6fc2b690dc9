package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Style identifies how a cell is colored. Styles are resolved to lipgloss
// only at serialization time so cells stay comparable.
type Style uint8

// Cell styles.
const (
	StyleDefault Style = iota
	StyleCorrect
	StyleIncorrect
	StylePending
	StyleStatus
)

var styleFor = map[Style]lipgloss.Style{
	StyleDefault:   lipgloss.NewStyle(),
	StyleCorrect:   lipgloss.NewStyle().Foreground(lipgloss.Color("#5AF78E")),
	StyleIncorrect: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
	StylePending:   lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
	StyleStatus:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E")),
}

// Cell is one screen position.
type Cell struct {
	Rune  rune
	Style Style
}

// OpKind discriminates draw operations.
type OpKind uint8

// Draw operation kinds.
const (
	OpPut OpKind = iota
	OpClearToEOL
	OpClearAll
	OpMoveCursor
)

// Op is a single positioned draw operation.
type Op struct {
	Kind  OpKind
	Col   int
	Row   int
	Rune  rune
	Style Style
}

// Frame is a grid of cells plus a tracked cursor position. All draw
// operations are applied through it so the on-screen state and the
// operation log cannot diverge.
type Frame struct {
	width  int
	height int
	cells  [][]Cell

	cursorCol int
	cursorRow int
}

// NewFrame allocates a cleared frame.
func NewFrame(width, height int) *Frame {
	f := &Frame{}
	f.Resize(width, height)
	return f
}

// Resize reallocates the grid for new terminal dimensions and clears it.
func (f *Frame) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	f.width = width
	f.height = height
	f.cells = make([][]Cell, height)
	for i := range f.cells {
		f.cells[i] = make([]Cell, width)
	}
	f.cursorCol = 0
	f.cursorRow = 0
}

// Size returns the frame dimensions.
func (f *Frame) Size() (width, height int) {
	return f.width, f.height
}

// Cursor returns the tracked cursor position.
func (f *Frame) Cursor() (col, row int) {
	return f.cursorCol, f.cursorRow
}

// CellAt returns the cell at the given position, or a zero cell when the
// position lies outside the grid.
func (f *Frame) CellAt(col, row int) Cell {
	if row < 0 || row >= f.height || col < 0 || col >= f.width {
		return Cell{}
	}
	return f.cells[row][col]
}

// Apply mutates the frame according to op. Out-of-grid puts are dropped.
func (f *Frame) Apply(op Op) {
	switch op.Kind {
	case OpPut:
		if op.Row < 0 || op.Row >= f.height || op.Col < 0 || op.Col >= f.width {
			return
		}
		f.cells[op.Row][op.Col] = Cell{Rune: op.Rune, Style: op.Style}
	case OpClearToEOL:
		if op.Row < 0 || op.Row >= f.height {
			return
		}
		for col := op.Col; col < f.width; col++ {
			if col < 0 {
				continue
			}
			f.cells[op.Row][col] = Cell{}
		}
	case OpClearAll:
		for row := range f.cells {
			for col := range f.cells[row] {
				f.cells[row][col] = Cell{}
			}
		}
	case OpMoveCursor:
		f.cursorCol = op.Col
		f.cursorRow = op.Row
	}
}

// String serializes the frame for display, one line per row, styled runs
// batched per style. Wide runes occupy their display width.
func (f *Frame) String() string {
	var out strings.Builder
	for row := 0; row < f.height; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(f.renderRow(row))
	}
	return out.String()
}

func (f *Frame) renderRow(row int) string {
	var line strings.Builder
	var run strings.Builder
	runStyle := StyleDefault
	width := 0

	flush := func() {
		if run.Len() == 0 {
			return
		}
		line.WriteString(styleFor[runStyle].Render(run.String()))
		run.Reset()
	}

	for col := 0; col < f.width; col++ {
		cell := f.cells[row][col]
		r := cell.Rune
		if r == 0 || r == '\n' {
			r = ' '
		}
		if width+runewidth.RuneWidth(r) > f.width {
			break
		}
		if row == f.cursorRow && col == f.cursorCol {
			// The terminal cursor is hidden while the session runs, so the
			// logical cursor is drawn as an underlined cell.
			flush()
			line.WriteString(styleFor[cell.Style].Underline(true).Render(string(r)))
			width += runewidth.RuneWidth(r)
			continue
		}
		if cell.Style != runStyle {
			flush()
			runStyle = cell.Style
		}
		run.WriteRune(r)
		width += runewidth.RuneWidth(r)
	}
	flush()
	return strings.TrimRight(line.String(), " ")
}
