package goban

import "fmt"

// Order tells how a flat sequence of cells is laid out over the grid.
type Order uint8

const (
	RowMajor Order = iota
	ColumnMajor
)

func (o Order) String() string {
	if o == ColumnMajor {
		return "column-major"
	}
	return "row-major"
}

func ParseOrder(s string) (Order, error) {
	switch s {
	case "", "row", "row-major", "row_major":
		return RowMajor, nil
	case "column", "col", "column-major", "column_major":
		return ColumnMajor, nil
	}
	return RowMajor, fmt.Errorf("unknown order %q", s)
}

// CoordUtil converts between coordinates and linear indices.
// Callers guarantee the inputs are in range; violations panic.
type CoordUtil struct {
	width  int
	height int
	order  Order
}

func NewCoordUtil(width, height int) CoordUtil {
	return NewCoordUtilOrder(width, height, RowMajor)
}

func NewCoordUtilOrder(width, height int, order Order) CoordUtil {
	return CoordUtil{width: width, height: height, order: order}
}

func (u CoordUtil) Len() int {
	return u.width * u.height
}

func (u CoordUtil) To(c Coord) int {
	if c.Row < 0 || c.Row >= u.height || c.Col < 0 || c.Col >= u.width {
		panic(fmt.Sprintf("goban: coordinate %s outside %dx%d", c, u.height, u.width))
	}
	if u.order == ColumnMajor {
		return c.Col*u.height + c.Row
	}
	return c.Row*u.width + c.Col
}

func (u CoordUtil) From(index int) Coord {
	if index < 0 || index >= u.Len() {
		panic(fmt.Sprintf("goban: index %d outside [0,%d)", index, u.Len()))
	}
	if u.order == ColumnMajor {
		return Coord{Row: index % u.height, Col: index / u.height}
	}
	return Coord{Row: index / u.width, Col: index % u.width}
}

// neighborCoords returns the four orthogonal neighbours, some of them may
// be off the board.
func neighborCoords(c Coord) [4]Coord {
	return [4]Coord{
		{Row: c.Row - 1, Col: c.Col},
		{Row: c.Row + 1, Col: c.Col},
		{Row: c.Row, Col: c.Col - 1},
		{Row: c.Row, Col: c.Col + 1},
	}
}
