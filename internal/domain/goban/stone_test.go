package goban

import (
	"encoding/json"
	"testing"
)

func TestColorJSON(t *testing.T) {
	in := Stone{Coord: Coord{Row: 3, Col: 4}, Color: White}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"coord":{"row":3,"col":4},"color":"white"}`; got != want {
		t.Fatalf("marshal: got %s want %s", got, want)
	}

	var out Stone
	if err := json.Unmarshal([]byte(`{"coord":{"row":1,"col":0},"color":"b"}`), &out); err != nil {
		t.Fatal(err)
	}
	if out.Color != Black || out.Coord != (Coord{Row: 1, Col: 0}) {
		t.Fatalf("unmarshal: got %s", out)
	}
	if err := json.Unmarshal([]byte(`{"color":"red"}`), &out); err == nil {
		t.Fatalf("expected error for unknown color")
	}
}

func TestColorOpponent(t *testing.T) {
	if Black.Opponent() != White || White.Opponent() != Black || None.Opponent() != None {
		t.Fatalf("unexpected opponents")
	}
}
