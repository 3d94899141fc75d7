package display

import (
	"fmt"
	"strings"

	"gobblet/internal/board"
	"gobblet/internal/core"
	"gobblet/internal/game"
)

var glyphs = map[core.Owner][core.MaxSize + 1]string{
	core.Player1: {" ▫ ", " ◇ ", " ◯ ", " □ "},
	core.Player2: {" ▪ ", " ◆ ", " ● ", " ■ "},
}

const (
	emptyCell = "   "
	separator = " ───┼───┼───┼───"
	footer    = "  0   1   2   3 "
)

// Glyph is the three-column drawing of a piece.
func Glyph(p core.Piece) string {
	return glyphs[p.Owner()][p.Size()]
}

// FormatBoard draws the visible pieces, row 3 at the top.
func FormatBoard(b *board.Board) string {
	var sb strings.Builder
	for row := core.BoardSize - 1; row >= 0; row-- {
		fmt.Fprintf(&sb, "%d", row)
		for col := 0; col < core.BoardSize; col++ {
			if col > 0 {
				sb.WriteString("|")
			}
			if p, ok := b.Top(core.Coord{Col: col, Row: row}); ok {
				sb.WriteString(Glyph(p))
			} else {
				sb.WriteString(emptyCell)
			}
		}
		sb.WriteString("\n")
		if row > 0 {
			sb.WriteString(separator + "\n")
		}
	}
	sb.WriteString(footer)
	return sb.String()
}

// FormatReserve draws "name: g g g" with blanks for empty slots.
func FormatReserve(name string, r core.Reserve) string {
	parts := make([]string, core.SlotCount)
	for i := range parts {
		if p, ok := r.Top(i); ok {
			parts[i] = Glyph(p)
		} else {
			parts[i] = emptyCell
		}
	}
	return name + ": " + strings.Join(parts, " ")
}

// FormatGame draws both reserves above the board. With color set each
// reserve line takes its player's color.
func FormatGame(s *game.State, color bool) string {
	lines := make([]string, 0, 4)
	for _, o := range []core.Owner{core.Player1, core.Player2} {
		line := FormatReserve(s.Name(o), s.Reserve(o))
		if color {
			line = ColorFor(o) + line + Reset
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", FormatBoard(s.Board()))
	return strings.Join(lines, "\n")
}

// RenderGame prints the game with colored player names.
func RenderGame(s *game.State) {
	fmt.Println(FormatGame(s, true))
}
