package goban

import "fmt"

// Color is the content of an intersection.
type Color uint8

const (
	None Color = iota
	Black
	White
)

const (
	EmptyStone = '.'
	BlackStone = 'X'
	WhiteStone = 'O'
)

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return "empty"
	}
}

// Opponent returns the other player's color. None has no opponent.
func (c Color) Opponent() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return None
	}
}

func (c Color) symbol() byte {
	switch c {
	case Black:
		return BlackStone
	case White:
		return WhiteStone
	default:
		return EmptyStone
	}
}

func (c Color) MarshalText() ([]byte, error) {
	if c > White {
		return nil, fmt.Errorf("unknown color %d", uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor accepts the long names as well as the SGF style "b"/"w"
// and the rendering glyphs.
func ParseColor(s string) (Color, error) {
	switch s {
	case "black", "b", "B", string(BlackStone):
		return Black, nil
	case "white", "w", "W", string(WhiteStone):
		return White, nil
	case "empty", "none", "", string(EmptyStone):
		return None, nil
	}
	return None, fmt.Errorf("unknown color %q", s)
}

// Coord addresses an intersection by row and column, (0,0) is the top left corner.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Stone is an intersection together with its content. A stone with color
// None stands for an empty intersection.
type Stone struct {
	Coord Coord `json:"coord"`
	Color Color `json:"color"`
}

func (s Stone) String() string {
	return fmt.Sprintf("%s%s", s.Color, s.Coord)
}
