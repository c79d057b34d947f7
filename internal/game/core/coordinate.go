package core

import "fmt"

// Coordinate represents a position on the game board
type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// NewCoordinate creates a new coordinate with the given row and column
func NewCoordinate(row, col int) Coordinate {
	return Coordinate{Row: row, Col: col}
}

// FromIndex creates a coordinate from a board array index using row-major ordering
func FromIndex(idx, cols int) Coordinate {
	return Coordinate{
		Row: idx / cols,
		Col: idx % cols,
	}
}

// IsValid checks if the coordinate is within the given bounds
func (c Coordinate) IsValid(rows, cols int) bool {
	return c.Row >= 0 && c.Row < rows && c.Col >= 0 && c.Col < cols
}

// ToIndex converts the coordinate to a board array index using row-major ordering
func (c Coordinate) ToIndex(cols int) int {
	return c.Row*cols + c.Col
}

// Add returns a new coordinate that is the sum of this coordinate and another
func (c Coordinate) Add(other Coordinate) Coordinate {
	return Coordinate{Row: c.Row + other.Row, Col: c.Col + other.Col}
}

// Sub returns a new coordinate that is the difference between this coordinate and another
func (c Coordinate) Sub(other Coordinate) Coordinate {
	return Coordinate{Row: c.Row - other.Row, Col: c.Col - other.Col}
}

// Equal checks if two coordinates are equal
func (c Coordinate) Equal(other Coordinate) bool {
	return c.Row == other.Row && c.Col == other.Col
}

// String returns a string representation of the coordinate
func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// StepTowards returns the unit step from c to other along a rank, file or
// diagonal. ok is false when the two coordinates are not aligned.
func (c Coordinate) StepTowards(other Coordinate) (step Coordinate, ok bool) {
	d := other.Sub(c)
	if d.Row == 0 && d.Col == 0 {
		return Coordinate{}, false
	}
	if d.Row != 0 && d.Col != 0 && abs(d.Row) != abs(d.Col) {
		return Coordinate{}, false
	}
	return Coordinate{Row: sign(d.Row), Col: sign(d.Col)}, true
}

// Between returns the coordinates strictly between c and other when they are
// aligned. Unaligned or adjacent coordinates yield an empty slice.
func (c Coordinate) Between(other Coordinate) []Coordinate {
	step, ok := c.StepTowards(other)
	if !ok {
		return nil
	}
	var line []Coordinate
	for cur := c.Add(step); !cur.Equal(other); cur = cur.Add(step) {
		line = append(line, cur)
	}
	return line
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
