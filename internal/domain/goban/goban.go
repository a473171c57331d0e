// Package goban is the board state of a Go-like game: placement, adjacency,
// liberties and an incrementally maintained Zobrist hash.
package goban

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"slices"
	"strings"
)

const DefaultSize = 19

var ErrOutOfBounds = errors.New("coordinate outside the goban")

// Goban is a square board. It is not safe for concurrent mutation, use
// Clone to hand a copy to another goroutine.
type Goban struct {
	// stored row-major
	tab         []Color
	blackStones []bool
	whiteStones []bool
	size        int
	coordUtil   CoordUtil
	zobrist     *ZobristTable
	hash        uint64
}

// New returns an empty board. The table is borrowed and must cover at
// least size×size intersections.
func New(size int, table *ZobristTable) *Goban {
	if size <= 0 {
		panic(fmt.Sprintf("goban: invalid size %d", size))
	}
	if table == nil || table.Size() < size {
		panic(fmt.Sprintf("goban: zobrist table too small for size %d", size))
	}
	return &Goban{
		tab:         make([]Color, size*size),
		blackStones: make([]bool, size*size),
		whiteStones: make([]bool, size*size),
		size:        size,
		coordUtil:   NewCoordUtil(size, size),
		zobrist:     table,
	}
}

func NewDefault(table *ZobristTable) *Goban {
	return New(DefaultSize, table)
}

// FromArray builds a board from a flat array of colors laid out in the
// given order. The array length must be a perfect square.
func FromArray(colors []Color, order Order, table *ZobristTable) *Goban {
	size, ok := SquareSize(len(colors))
	if !ok {
		panic(fmt.Sprintf("goban: %d cells is not a square board", len(colors)))
	}
	g := New(size, table)
	coordUtil := NewCoordUtilOrder(size, size, order)
	for i, color := range colors {
		if color == None {
			continue
		}
		if _, err := g.Push(coordUtil.From(i), color); err != nil {
			panic(fmt.Sprintf("goban: play the stone: %v", err))
		}
	}
	return g
}

// SquareSize returns the board size for n cells and whether n is a non-zero
// perfect square.
func SquareSize(n int) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	size := int(math.Sqrt(float64(n)))
	for size*size > n {
		size--
	}
	for (size+1)*(size+1) <= n {
		size++
	}
	return size, size*size == n
}

// Push puts a color on the intersection. Writing None clears it.
// On error the board is left untouched.
//
// The hash only XORs in the key of the new color. Recoloring an occupied
// intersection without clearing it first leaves the old key in the hash.
func (g *Goban) Push(c Coord, color Color) (*Goban, error) {
	if !g.coordValid(c) {
		return g, fmt.Errorf("%w: %s on a %dx%d board", ErrOutOfBounds, c, g.size, g.size)
	}
	i := g.coordUtil.To(c)
	switch color {
	case Black:
		g.blackStones[i] = true
		g.whiteStones[i] = false
	case White:
		g.whiteStones[i] = true
		g.blackStones[i] = false
	case None:
		g.blackStones[i] = false
		g.whiteStones[i] = false
	}
	if color == None {
		if prev := g.tab[i]; prev != None {
			g.hash ^= g.zobrist.Key(c, prev)
		}
	} else {
		g.hash ^= g.zobrist.Key(c, color)
	}
	g.setRaw(c, color)
	return g, nil
}

// PushMany panics if one of the coordinates is off the board.
func (g *Goban) PushMany(coords iter.Seq[Coord], color Color) {
	for c := range coords {
		if _, err := g.Push(c, color); err != nil {
			panic(fmt.Sprintf("goban: add one of the stones: %v", err))
		}
	}
}

func (g *Goban) PushStone(s Stone) (*Goban, error) {
	return g.Push(s.Coord, s.Color)
}

// ColorAt panics for a coordinate off the board.
func (g *Goban) ColorAt(c Coord) Color {
	return g.tab[g.coordUtil.To(c)]
}

func (g *Goban) setRaw(c Coord, color Color) {
	g.tab[g.coordUtil.To(c)] = color
}

// Neighbors yields the orthogonal neighbours that are on the board,
// empty ones included.
func (g *Goban) Neighbors(c Coord) iter.Seq[Stone] {
	var found [4]Stone
	n := 0
	for _, nc := range neighborCoords(c) {
		if g.coordValid(nc) {
			found[n] = Stone{Coord: nc, Color: g.ColorAt(nc)}
			n++
		}
	}
	return func(yield func(Stone) bool) {
		for _, s := range found[:n] {
			if !yield(s) {
				return
			}
		}
	}
}

// NeighborStones is Neighbors without the empty intersections.
func (g *Goban) NeighborStones(c Coord) iter.Seq[Stone] {
	return filter(g.Neighbors(c), func(s Stone) bool { return s.Color != None })
}

// Stones yields every non empty intersection in index order.
func (g *Goban) Stones() iter.Seq[Stone] {
	return g.scan(func(color Color) bool { return color != None })
}

// StonesByColor yields the intersections holding exactly color. None
// yields the empty intersections.
func (g *Goban) StonesByColor(color Color) iter.Seq[Stone] {
	return g.scan(func(c Color) bool { return c == color })
}

func (g *Goban) Liberties(s Stone) iter.Seq[Stone] {
	return filter(g.Neighbors(s.Coord), func(n Stone) bool { return n.Color == None })
}

func (g *Goban) LibertyCount(s Stone) uint8 {
	var count uint8
	for range g.Liberties(s) {
		count++
	}
	return count
}

func (g *Goban) HasLiberties(s Stone) bool {
	for range g.Liberties(s) {
		return true
	}
	return false
}

func (g *Goban) scan(keep func(Color) bool) iter.Seq[Stone] {
	tab := slices.Clone(g.tab)
	coordUtil := g.coordUtil
	return func(yield func(Stone) bool) {
		for i, color := range tab {
			if !keep(color) {
				continue
			}
			if !yield(Stone{Coord: coordUtil.From(i), Color: color}) {
				return
			}
		}
	}
}

func filter(seq iter.Seq[Stone], keep func(Stone) bool) iter.Seq[Stone] {
	return func(yield func(Stone) bool) {
		for s := range seq {
			if keep(s) && !yield(s) {
				return
			}
		}
	}
}

func (g *Goban) Size() int {
	return g.size
}

func (g *Goban) Hash() uint64 {
	return g.hash
}

// Colors returns a row-major copy of the grid.
func (g *Goban) Colors() []Color {
	return slices.Clone(g.tab)
}

func (g *Goban) IsBlack(c Coord) bool {
	return g.blackStones[g.coordUtil.To(c)]
}

func (g *Goban) IsWhite(c Coord) bool {
	return g.whiteStones[g.coordUtil.To(c)]
}

// RecomputeHash computes the hash from scratch over the current grid.
func (g *Goban) RecomputeHash() uint64 {
	var h uint64
	for i, color := range g.tab {
		if color != None {
			h ^= g.zobrist.Key(g.coordUtil.From(i), color)
		}
	}
	return h
}

// Clear empties the board.
func (g *Goban) Clear() {
	clear(g.tab)
	clear(g.blackStones)
	clear(g.whiteStones)
	g.hash = 0
}

// Clone copies the grid. The zobrist table is shared.
func (g *Goban) Clone() *Goban {
	return &Goban{
		tab:         slices.Clone(g.tab),
		blackStones: slices.Clone(g.blackStones),
		whiteStones: slices.Clone(g.whiteStones),
		size:        g.size,
		coordUtil:   g.coordUtil,
		zobrist:     g.zobrist,
		hash:        g.hash,
	}
}

// Equal compares the hashes only.
func (g *Goban) Equal(other *Goban) bool {
	return other != nil && g.hash == other.hash
}

// RawString renders the board in memory order, (0,0) at the top left.
func (g *Goban) RawString() string {
	var b strings.Builder
	b.Grow(g.size * (g.size + 1))
	for row := 0; row < g.size; row++ {
		for col := 0; col < g.size; col++ {
			b.WriteByte(g.ColorAt(Coord{Row: row, Col: col}).symbol())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// PrettyString renders the board with (0,0) at the bottom left.
func (g *Goban) PrettyString() string {
	var b strings.Builder
	b.Grow(g.size * (g.size + 1))
	for row := g.size - 1; row >= 0; row-- {
		for col := 0; col < g.size; col++ {
			b.WriteByte(g.ColorAt(Coord{Row: row, Col: col}).symbol())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (g *Goban) String() string {
	return g.RawString()
}

// Contains reports whether c is on the board.
func (g *Goban) Contains(c Coord) bool {
	return g.coordValid(c)
}

func (g *Goban) coordValid(c Coord) bool {
	return c.Row >= 0 && c.Row < g.size && c.Col >= 0 && c.Col < g.size
}
