package game

import (
	"github.com/mitchelldurbincs/chesstx/internal/config"
)

// BoardRows is the configured default board height
func BoardRows() int {
	return config.Get().Game.Board.Rows
}

// BoardCols is the configured default board width
func BoardCols() int {
	return config.Get().Game.Board.Cols
}

// EnforceTurnOrder reports whether sides must alternate by default
func EnforceTurnOrder() bool {
	return config.Get().Game.EnforceTurnOrder
}
