package goban

import (
	"sync"
	"testing"
)

func TestZobristTableDeterministic(t *testing.T) {
	a := NewZobristTable(9)
	b := NewZobristTable(9)
	for row := 0; row < 9; row++ {
		for col := 0; col < 9; col++ {
			c := Coord{Row: row, Col: col}
			for _, color := range []Color{Black, White} {
				if a.Key(c, color) != b.Key(c, color) {
					t.Fatalf("key mismatch at %s %s", c, color)
				}
			}
		}
	}
}

func TestZobristKeysDistinct(t *testing.T) {
	z := NewZobristTable(19)
	seen := make(map[uint64]Stone, 19*19*2)
	for row := 0; row < 19; row++ {
		for col := 0; col < 19; col++ {
			for _, color := range []Color{Black, White} {
				s := Stone{Coord: Coord{Row: row, Col: col}, Color: color}
				key := z.Key(s.Coord, color)
				if key == 0 {
					t.Fatalf("zero key for %s", s)
				}
				if prev, ok := seen[key]; ok {
					t.Fatalf("key collision between %s and %s", prev, s)
				}
				seen[key] = s
			}
		}
	}
}

func TestZobristKeyPanicsForEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for None")
		}
	}()
	NewZobristTable(3).Key(Coord{}, None)
}

func TestZobristCacheSharesTables(t *testing.T) {
	cache := NewZobristCache()
	var wg sync.WaitGroup
	tables := make([]*ZobristTable, 16)
	for i := range tables {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tables[i] = cache.Get(13)
		}(i)
	}
	wg.Wait()
	for i, table := range tables {
		if table != tables[0] {
			t.Fatalf("table %d was built twice", i)
		}
	}
	if cache.Get(9) == tables[0] {
		t.Fatalf("expected a distinct table per size")
	}
}
