package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/zouxu09/goban/internal/domain/goban"
	"github.com/zouxu09/goban/internal/domain/position"
	goerrors "github.com/zouxu09/goban/internal/errors"
)

func TestMapBoardStorageSnapshots(t *testing.T) {
	ctx := context.Background()
	store := NewMapBoardStorage()

	if _, err := store.LoadSnapshot(ctx, "nope"); !errors.Is(err, goerrors.ErrBoardNotFound) {
		t.Fatalf("load missing: got %v", err)
	}

	g := goban.New(3, goban.NewZobristTable(3))
	g.Push(goban.Coord{Row: 1, Col: 1}, goban.Black)
	snapshot := position.NewSnapshot("b1", g)
	if err := store.SaveSnapshot(ctx, snapshot); err != nil {
		t.Fatal(err)
	}
	snapshot.Colors[0] = goban.White

	loaded, err := store.LoadSnapshot(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Colors[0] != goban.None || loaded.Colors[4] != goban.Black || loaded.Hash != g.Hash() {
		t.Fatalf("unexpected snapshot %+v", loaded)
	}

	if err := store.DeleteSnapshot(ctx, "b1"); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteSnapshot(ctx, "b1"); !errors.Is(err, goerrors.ErrBoardNotFound) {
		t.Fatalf("second delete: got %v", err)
	}
}

func TestMapBoardStorageHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMapBoardStorage()

	for _, tt := range []struct {
		id   string
		hash uint64
		seen bool
	}{
		{"a", 1, false},
		{"a", 2, false},
		{"a", 1, true},
		{"b", 1, false},
	} {
		seen, err := store.RecordPosition(ctx, tt.id, tt.hash)
		if err != nil {
			t.Fatal(err)
		}
		if seen != tt.seen {
			t.Fatalf("record %s/%d: got %v want %v", tt.id, tt.hash, seen, tt.seen)
		}
	}
}

func TestMapBoardStorageArchive(t *testing.T) {
	ctx := context.Background()
	store := NewMapBoardStorage()
	store.ArchivePosition(ctx, position.ArchivedPosition{BoardID: "a", Hash: "01"})
	store.ArchivePosition(ctx, position.ArchivedPosition{BoardID: "b", Hash: "02"})
	store.ArchivePosition(ctx, position.ArchivedPosition{BoardID: "c", Hash: "01"})

	found, err := store.FindPositionsByHash(ctx, "01")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 2 || found[0].BoardID != "c" || found[1].BoardID != "a" {
		t.Fatalf("unexpected archive result %+v", found)
	}
}

func TestMapBoardStorageForgetPosition(t *testing.T) {
	ctx := context.Background()
	store := NewMapBoardStorage()
	store.RecordPosition(ctx, "a", 7)
	if err := store.ForgetPosition(ctx, "a", 7); err != nil {
		t.Fatal(err)
	}
	if err := store.ForgetPosition(ctx, "missing", 7); err != nil {
		t.Fatal(err)
	}
	if seen, _ := store.RecordPosition(ctx, "a", 7); seen {
		t.Fatalf("forgotten position still reported as seen")
	}
}
