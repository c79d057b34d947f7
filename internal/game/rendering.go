package game

import (
	"fmt"
	"strings"

	"github.com/mitchelldurbincs/chesstx/internal/game/core"
)

// ANSI color codes
const (
	ColorReset = "\033[0m"
	ColorRed   = "\033[31m"
	ColorBlue  = "\033[34m"
	ColorGray  = "\033[90m"
)

var sideColors = map[core.Color]string{
	core.White: ColorBlue,
	core.Black: ColorRed,
}

var rankSymbols = map[string]byte{
	"king":   'k',
	"queen":  'q',
	"rook":   'r',
	"bishop": 'b',
	"knight": 'n',
	"pawn":   'p',
}

// Render draws the board with the highest row on top. White pieces are upper
// case. With color set, sides are tinted and empty squares dimmed.
func (g *Game) Render(color bool) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	b := g.board
	var sb strings.Builder
	sb.Grow((b.Cols*12 + 8) * (b.Rows + 2))

	for row := b.Rows - 1; row >= 0; row-- {
		sb.WriteString(fmt.Sprintf("%3d", row))
		for col := 0; col < b.Cols; col++ {
			sb.WriteByte(' ')
			id := b.OccupantAt(core.Coordinate{Row: row, Col: col})
			p, ok := b.Piece(id)
			if !ok {
				if color {
					sb.WriteString(ColorGray + "." + ColorReset)
				} else {
					sb.WriteByte('.')
				}
				continue
			}
			sym := symbolOf(p)
			if color {
				sb.WriteString(sideColors[p.Team])
				sb.WriteByte(sym)
				sb.WriteString(ColorReset)
			} else {
				sb.WriteByte(sym)
			}
		}
		sb.WriteByte('\n')
	}

	sb.WriteString("   ")
	for col := 0; col < b.Cols; col++ {
		sb.WriteByte(' ')
		sb.WriteByte(byte('a' + col%26))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func symbolOf(p *core.Piece) byte {
	sym, ok := rankSymbols[p.Rank().Name()]
	if !ok {
		return '?'
	}
	if p.Team == core.White {
		sym -= 'a' - 'A'
	}
	return sym
}
