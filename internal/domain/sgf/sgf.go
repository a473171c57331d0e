// Package sgf reads and writes positions in Smart Game Format. Only the
// setup properties (SZ, AB, AW, AE) are interpreted, move properties are
// kept in the tree but never played out.
package sgf

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/zouxu09/goban/internal/domain/goban"
)

var ErrMalformed = errors.New("malformed sgf")

// GameTree is one tree of a collection: its main line and the variations
// branching off its last node.
type GameTree struct {
	Nodes    []Node
	Children []*GameTree
}

// Node holds the properties of one node, AB[aa][bb] keeps both values.
type Node struct {
	Properties map[string][]string
}

type SGF struct {
	Root *GameTree
}

// FromGoban describes the board as a single setup node.
func FromGoban(g *goban.Goban) *SGF {
	props := map[string][]string{
		"FF": {"4"},
		"GM": {"1"},
		"SZ": {strconv.Itoa(g.Size())},
	}
	for s := range g.Stones() {
		key := "AB"
		if s.Color == goban.White {
			key = "AW"
		}
		props[key] = append(props[key], encodePoint(s.Coord))
	}
	return &SGF{Root: &GameTree{Nodes: []Node{{Properties: props}}}}
}

func (s *SGF) String() string {
	var b strings.Builder
	writeTree(&b, s.Root)
	return b.String()
}

func writeTree(b *strings.Builder, t *GameTree) {
	b.WriteByte('(')
	for _, n := range t.Nodes {
		b.WriteByte(';')
		keys := make([]string, 0, len(n.Properties))
		for k := range n.Properties {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			b.WriteString(k)
			for _, v := range n.Properties[k] {
				b.WriteByte('[')
				b.WriteString(escape(v))
				b.WriteByte(']')
			}
		}
	}
	for _, child := range t.Children {
		writeTree(b, child)
	}
	b.WriteByte(')')
}

var escaper = strings.NewReplacer(`\`, `\\`, `]`, `\]`)

func escape(v string) string {
	return escaper.Replace(v)
}

// Parse reads the first game tree of a collection.
func Parse(text string) (*SGF, error) {
	p := &parser{s: text}
	root, err := p.tree()
	if err != nil {
		return nil, err
	}
	if len(root.Nodes) == 0 {
		return nil, fmt.Errorf("%w: game tree without nodes", ErrMalformed)
	}
	return &SGF{Root: root}, nil
}

// Setup returns the board size and the stones set up in the root node.
// A missing SZ means 19. Later AE, AB and AW values win over earlier ones.
func (s *SGF) Setup() (int, []goban.Stone, error) {
	root := s.Root.Nodes[0].Properties
	size := goban.DefaultSize
	if sz, ok := root["SZ"]; ok && len(sz) > 0 {
		parsed, err := parseSize(sz[0])
		if err != nil {
			return 0, nil, err
		}
		size = parsed
	}

	placed := make(map[goban.Coord]goban.Color)
	var order []goban.Coord
	for _, prop := range []struct {
		key   string
		color goban.Color
	}{{"AE", goban.None}, {"AB", goban.Black}, {"AW", goban.White}} {
		for _, v := range root[prop.key] {
			coords, err := decodePoints(v)
			if err != nil {
				return 0, nil, err
			}
			for _, c := range coords {
				if c.Row >= size || c.Col >= size {
					return 0, nil, fmt.Errorf("%w: %s[%s] on a %dx%d board", goban.ErrOutOfBounds, prop.key, v, size, size)
				}
				if _, ok := placed[c]; !ok {
					order = append(order, c)
				}
				placed[c] = prop.color
			}
		}
	}

	stones := make([]goban.Stone, 0, len(order))
	for _, c := range order {
		if color := placed[c]; color != goban.None {
			stones = append(stones, goban.Stone{Coord: c, Color: color})
		}
	}
	return size, stones, nil
}

func parseSize(v string) (int, error) {
	cols, rows, rect := strings.Cut(v, ":")
	size, err := strconv.Atoi(strings.TrimSpace(cols))
	if err != nil {
		return 0, fmt.Errorf("%w: SZ[%s]", ErrMalformed, v)
	}
	if rect {
		height, err := strconv.Atoi(strings.TrimSpace(rows))
		if err != nil || height != size {
			return 0, fmt.Errorf("%w: SZ[%s] is not square", ErrMalformed, v)
		}
	}
	if size <= 0 || size > 52 {
		return 0, fmt.Errorf("%w: SZ[%s]", ErrMalformed, v)
	}
	return size, nil
}

func encodePoint(c goban.Coord) string {
	return string([]byte{pointLetter(c.Col), pointLetter(c.Row)})
}

func pointLetter(i int) byte {
	if i < 26 {
		return byte('a' + i)
	}
	return byte('A' + i - 26)
}

func pointIndex(b byte) (int, bool) {
	switch {
	case b >= 'a' && b <= 'z':
		return int(b - 'a'), true
	case b >= 'A' && b <= 'Z':
		return int(b-'A') + 26, true
	}
	return 0, false
}

func decodePoint(v string) (goban.Coord, error) {
	if len(v) != 2 {
		return goban.Coord{}, fmt.Errorf("%w: point %q", ErrMalformed, v)
	}
	col, okCol := pointIndex(v[0])
	row, okRow := pointIndex(v[1])
	if !okCol || !okRow {
		return goban.Coord{}, fmt.Errorf("%w: point %q", ErrMalformed, v)
	}
	return goban.Coord{Row: row, Col: col}, nil
}

// decodePoints expands a point or a compressed rectangle such as "aa:cc".
func decodePoints(v string) ([]goban.Coord, error) {
	from, to, rect := strings.Cut(v, ":")
	first, err := decodePoint(from)
	if err != nil {
		return nil, err
	}
	if !rect {
		return []goban.Coord{first}, nil
	}
	last, err := decodePoint(to)
	if err != nil {
		return nil, err
	}
	rowLo, rowHi := min(first.Row, last.Row), max(first.Row, last.Row)
	colLo, colHi := min(first.Col, last.Col), max(first.Col, last.Col)
	coords := make([]goban.Coord, 0, (rowHi-rowLo+1)*(colHi-colLo+1))
	for row := rowLo; row <= rowHi; row++ {
		for col := colLo; col <= colHi; col++ {
			coords = append(coords, goban.Coord{Row: row, Col: col})
		}
	}
	return coords, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && strings.IndexByte(" \t\r\n", p.s[p.pos]) >= 0 {
		p.pos++
	}
}

func (p *parser) tree() (*GameTree, error) {
	p.skipSpace()
	if p.pos >= len(p.s) || p.s[p.pos] != '(' {
		return nil, fmt.Errorf("%w: expected '(' at %d", ErrMalformed, p.pos)
	}
	p.pos++

	t := &GameTree{}
	for {
		p.skipSpace()
		if p.pos >= len(p.s) {
			return nil, fmt.Errorf("%w: unterminated game tree", ErrMalformed)
		}
		switch p.s[p.pos] {
		case ';':
			if len(t.Children) > 0 {
				return nil, fmt.Errorf("%w: node after a variation at %d", ErrMalformed, p.pos)
			}
			p.pos++
			n, err := p.node()
			if err != nil {
				return nil, err
			}
			t.Nodes = append(t.Nodes, n)
		case '(':
			child, err := p.tree()
			if err != nil {
				return nil, err
			}
			t.Children = append(t.Children, child)
		case ')':
			p.pos++
			return t, nil
		default:
			return nil, fmt.Errorf("%w: unexpected %q at %d", ErrMalformed, p.s[p.pos], p.pos)
		}
	}
}

func (p *parser) node() (Node, error) {
	n := Node{Properties: make(map[string][]string)}
	for {
		p.skipSpace()
		start := p.pos
		var id strings.Builder
		for p.pos < len(p.s) && isLetter(p.s[p.pos]) {
			// FF[1-3] identifiers such as AddBlack reduce to their capitals
			if c := p.s[p.pos]; c >= 'A' && c <= 'Z' {
				id.WriteByte(c)
			}
			p.pos++
		}
		if start == p.pos {
			return n, nil
		}
		ident := id.String()
		if ident == "" {
			return Node{}, fmt.Errorf("%w: property %q without capitals", ErrMalformed, p.s[start:p.pos])
		}

		values := 0
		for {
			p.skipSpace()
			if p.pos >= len(p.s) || p.s[p.pos] != '[' {
				break
			}
			p.pos++
			v, err := p.value()
			if err != nil {
				return Node{}, err
			}
			n.Properties[ident] = append(n.Properties[ident], v)
			values++
		}
		if values == 0 {
			return Node{}, fmt.Errorf("%w: property %s without a value", ErrMalformed, ident)
		}
	}
}

func isLetter(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z'
}

func (p *parser) value() (string, error) {
	var b strings.Builder
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		p.pos++
		switch c {
		case '\\':
			if p.pos < len(p.s) {
				b.WriteByte(p.s[p.pos])
				p.pos++
			}
		case ']':
			return b.String(), nil
		default:
			b.WriteByte(c)
		}
	}
	return "", fmt.Errorf("%w: unterminated property value", ErrMalformed)
}
