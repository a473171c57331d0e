package repository

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zouxu09/goban/internal/bootstrap"
	"github.com/zouxu09/goban/internal/domain/goban"
	"github.com/zouxu09/goban/internal/domain/position"
	goerrors "github.com/zouxu09/goban/internal/errors"
)

const testTTL = time.Hour

func newTestBoardRepository(t *testing.T) (*BoardRepository, *miniredis.Miniredis) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := bootstrap.Config{SnapshotTTL: testTTL}
	return NewBoardRepository(cfg, zap.NewNop().Sugar(), client, nil), m
}

func TestBoardRepositorySnapshots(t *testing.T) {
	ctx := context.Background()
	repo, m := newTestBoardRepository(t)

	if _, err := repo.LoadSnapshot(ctx, "nope"); !errors.Is(err, goerrors.ErrBoardNotFound) {
		t.Fatalf("load missing: got %v", err)
	}

	g := goban.New(3, goban.NewZobristTable(3))
	g.Push(goban.Coord{Row: 0, Col: 2}, goban.White)
	snapshot := position.NewSnapshot("b1", g)
	snapshot.Moves = 4
	if err := repo.SaveSnapshot(ctx, snapshot); err != nil {
		t.Fatal(err)
	}
	if ttl := m.TTL(boardKey("b1")); ttl != testTTL {
		t.Fatalf("snapshot ttl %v want %v", ttl, testTTL)
	}

	loaded, err := repo.LoadSnapshot(ctx, "b1")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.ID != "b1" || loaded.Size != 3 || loaded.Hash != g.Hash() || loaded.Moves != 4 {
		t.Fatalf("unexpected snapshot %+v", loaded)
	}
	if !slices.Equal(loaded.Colors, g.Colors()) || !loaded.CreatedAt.Equal(snapshot.CreatedAt) {
		t.Fatalf("snapshot did not survive the round trip: %+v", loaded)
	}

	m.FastForward(testTTL + time.Second)
	if _, err = repo.LoadSnapshot(ctx, "b1"); !errors.Is(err, goerrors.ErrBoardNotFound) {
		t.Fatalf("expired snapshot: got %v", err)
	}
}

func TestBoardRepositoryCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	repo, m := newTestBoardRepository(t)

	if err := m.Set(boardKey("bad"), "{"); err != nil {
		t.Fatal(err)
	}
	_, err := repo.LoadSnapshot(ctx, "bad")
	if err == nil || errors.Is(err, goerrors.ErrBoardNotFound) {
		t.Fatalf("got %v want a decode error", err)
	}
}

func TestBoardRepositoryHistory(t *testing.T) {
	ctx := context.Background()
	repo, m := newTestBoardRepository(t)

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
		seen, err := repo.RecordPosition(ctx, tt.id, tt.hash)
		if err != nil {
			t.Fatal(err)
		}
		if seen != tt.seen {
			t.Fatalf("record %s/%d: got %v want %v", tt.id, tt.hash, seen, tt.seen)
		}
	}

	members, err := m.SMembers(historyKey("a"))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(members, []string{position.FormatHash(1), position.FormatHash(2)}) {
		t.Fatalf("history members %v", members)
	}
	if ttl := m.TTL(historyKey("a")); ttl != testTTL {
		t.Fatalf("history ttl %v want %v", ttl, testTTL)
	}

	if err = repo.ForgetPosition(ctx, "a", 1); err != nil {
		t.Fatal(err)
	}
	if seen, _ := repo.RecordPosition(ctx, "a", 1); seen {
		t.Fatalf("forgotten position still reported as seen")
	}
}

func TestBoardRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo, m := newTestBoardRepository(t)

	g := goban.New(3, goban.NewZobristTable(3))
	if err := repo.SaveSnapshot(ctx, position.NewSnapshot("b1", g)); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.RecordPosition(ctx, "b1", g.Hash()); err != nil {
		t.Fatal(err)
	}

	if err := repo.DeleteSnapshot(ctx, "b1"); err != nil {
		t.Fatal(err)
	}
	if m.Exists(boardKey("b1")) || m.Exists(historyKey("b1")) {
		t.Fatalf("keys left behind: %v", m.Keys())
	}
	if err := repo.DeleteSnapshot(ctx, "b1"); !errors.Is(err, goerrors.ErrBoardNotFound) {
		t.Fatalf("second delete: got %v", err)
	}
}
