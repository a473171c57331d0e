package goban

import (
	"fmt"
	"sync"
)

// ZobristSeed makes every table reproducible across processes.
const ZobristSeed uint64 = 172_147_124

// ZobristTable holds one random key per (intersection, stone color).
// It is never mutated after NewZobristTable returns.
type ZobristTable struct {
	n      int
	hashes [][2]uint64
}

func NewZobristTable(n int) *ZobristTable {
	if n <= 0 {
		panic(fmt.Sprintf("goban: zobrist table size %d", n))
	}
	rng := splitmix64{state: ZobristSeed}
	table := &ZobristTable{n: n, hashes: make([][2]uint64, n*n)}
	for i := range table.hashes {
		table.hashes[i][0] = rng.next()
		table.hashes[i][1] = rng.next()
	}
	return table
}

func (z *ZobristTable) Size() int {
	return z.n
}

// Key panics for None or a coordinate outside the table.
func (z *ZobristTable) Key(c Coord, color Color) uint64 {
	if c.Row < 0 || c.Row >= z.n || c.Col < 0 || c.Col >= z.n {
		panic(fmt.Sprintf("goban: coordinate %s outside zobrist table %d", c, z.n))
	}
	switch color {
	case Black:
		return z.hashes[c.Row*z.n+c.Col][0]
	case White:
		return z.hashes[c.Row*z.n+c.Col][1]
	}
	panic("goban: no zobrist key for an empty intersection")
}

// ZobristCache builds each table size once and shares it afterwards.
type ZobristCache struct {
	mu     sync.Mutex
	tables map[int]*ZobristTable
}

func NewZobristCache() *ZobristCache {
	return &ZobristCache{tables: make(map[int]*ZobristTable)}
}

func (c *ZobristCache) Get(size int) *ZobristTable {
	c.mu.Lock()
	defer c.mu.Unlock()
	if table, ok := c.tables[size]; ok {
		return table
	}
	table := NewZobristTable(size)
	c.tables[size] = table
	return table
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
