package board

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zouxu09/goban/internal/domain/goban"
	"github.com/zouxu09/goban/internal/domain/position"
	"github.com/zouxu09/goban/internal/domain/sgf"
	"github.com/zouxu09/goban/internal/errors"
)

type BoardStore interface {
	SaveSnapshot(ctx context.Context, snapshot position.Snapshot) error
	LoadSnapshot(ctx context.Context, id string) (position.Snapshot, error)
	DeleteSnapshot(ctx context.Context, id string) error
	RecordPosition(ctx context.Context, id string, hash uint64) (seen bool, err error)
	ForgetPosition(ctx context.Context, id string, hash uint64) error
	ArchivePosition(ctx context.Context, archived position.ArchivedPosition) error
	FindPositionsByHash(ctx context.Context, hash string) ([]position.ArchivedPosition, error)
}

type BoardUseCase struct {
	store   BoardStore
	log     *zap.SugaredLogger
	tables  *goban.ZobristCache
	maxSize int
	locks   boardLocks
}

func NewBoardUseCase(store BoardStore, log *zap.SugaredLogger, maxSize int) *BoardUseCase {
	return &BoardUseCase{
		store:   store,
		log:     log,
		tables:  goban.NewZobristCache(),
		maxSize: maxSize,
		locks:   boardLocks{locks: make(map[string]*boardLock)},
	}
}

func (b *BoardUseCase) CreateBoard(ctx context.Context, size int) (position.BoardResponse, error) {
	if size <= 0 || size > b.maxSize {
		return position.BoardResponse{}, fmt.Errorf("%w: %d not in [1,%d]", errors.ErrInvalidBoardSize, size, b.maxSize)
	}
	return b.register(ctx, goban.New(size, b.tables.Get(size)))
}

// ImportBoard checks the input before handing it to goban.FromArray, which
// treats bad input as a programming error.
func (b *BoardUseCase) ImportBoard(ctx context.Context, colors []goban.Color, order string) (position.BoardResponse, error) {
	parsedOrder, err := goban.ParseOrder(order)
	if err != nil {
		return position.BoardResponse{}, fmt.Errorf("%w: %v", errors.ErrInvalidOrder, err)
	}
	size, ok := goban.SquareSize(len(colors))
	if !ok || size > b.maxSize {
		return position.BoardResponse{}, fmt.Errorf("%w: %d cells", errors.ErrInvalidBoardSize, len(colors))
	}
	for i, color := range colors {
		if color > goban.White {
			return position.BoardResponse{}, fmt.Errorf("%w at cell %d", errors.ErrInvalidColor, i)
		}
	}
	return b.register(ctx, goban.FromArray(colors, parsedOrder, b.tables.Get(size)))
}

// ImportSGF creates a board from the setup properties of an SGF root node.
func (b *BoardUseCase) ImportSGF(ctx context.Context, text string) (position.BoardResponse, error) {
	parsed, err := sgf.Parse(text)
	if err != nil {
		return position.BoardResponse{}, err
	}
	size, stones, err := parsed.Setup()
	if err != nil {
		return position.BoardResponse{}, err
	}
	if size > b.maxSize {
		return position.BoardResponse{}, fmt.Errorf("%w: %d not in [1,%d]", errors.ErrInvalidBoardSize, size, b.maxSize)
	}
	g := goban.New(size, b.tables.Get(size))
	for _, s := range stones {
		if _, err = g.PushStone(s); err != nil {
			return position.BoardResponse{}, err
		}
	}
	return b.register(ctx, g)
}

func (b *BoardUseCase) register(ctx context.Context, g *goban.Goban) (position.BoardResponse, error) {
	snapshot := position.NewSnapshot(uuid.New().String(), g)
	if err := b.store.SaveSnapshot(ctx, snapshot); err != nil {
		return position.BoardResponse{}, err
	}
	if _, err := b.store.RecordPosition(ctx, snapshot.ID, snapshot.Hash); err != nil {
		return position.BoardResponse{}, err
	}
	b.log.Infof("board %s created, size %d", snapshot.ID, snapshot.Size)
	return response(snapshot, g, false), nil
}

func (b *BoardUseCase) GetBoard(ctx context.Context, id string) (position.BoardResponse, error) {
	snapshot, g, err := b.load(ctx, id)
	if err != nil {
		return position.BoardResponse{}, err
	}
	return response(snapshot, g, false), nil
}

// PlaceStones applies the whole batch or nothing. An occupied point is
// cleared before it takes a different color so the hash stays exact.
func (b *BoardUseCase) PlaceStones(ctx context.Context, id string, stones []goban.Stone, rejectRepeats bool) (position.BoardResponse, error) {
	unlock := b.locks.lock(id)
	defer unlock()

	snapshot, g, err := b.load(ctx, id)
	if err != nil {
		return position.BoardResponse{}, err
	}

	next := g.Clone()
	changed := 0
	for _, s := range stones {
		moved, err := place(next, s)
		if err != nil {
			return position.BoardResponse{}, err
		}
		if moved {
			changed++
		}
	}
	if changed == 0 {
		return response(snapshot, g, false), nil
	}

	seen, err := b.store.RecordPosition(ctx, id, next.Hash())
	if err != nil {
		return position.BoardResponse{}, err
	}
	if seen && rejectRepeats {
		return position.BoardResponse{}, fmt.Errorf("%w: %s", errors.ErrPositionRepeated, position.FormatHash(next.Hash()))
	}

	snapshot.Colors = next.Colors()
	snapshot.Hash = next.Hash()
	snapshot.Moves += changed
	snapshot.UpdatedAt = time.Now().UTC()
	if err = b.store.SaveSnapshot(ctx, snapshot); err != nil {
		// the board never reached this position
		if !seen {
			if ferr := b.store.ForgetPosition(ctx, id, next.Hash()); ferr != nil {
				b.log.Errorf("board %s: forget position %s: %v", id, position.FormatHash(next.Hash()), ferr)
			}
		}
		return position.BoardResponse{}, err
	}
	return response(snapshot, next, seen), nil
}

func place(g *goban.Goban, s goban.Stone) (bool, error) {
	if s.Color > goban.White {
		return false, fmt.Errorf("%w: %d", errors.ErrInvalidColor, s.Color)
	}
	if !g.Contains(s.Coord) {
		_, err := g.PushStone(s)
		return false, err
	}
	current := g.ColorAt(s.Coord)
	if current == s.Color {
		return false, nil
	}
	if current != goban.None && s.Color != goban.None {
		if _, err := g.Push(s.Coord, goban.None); err != nil {
			return false, err
		}
	}
	if _, err := g.PushStone(s); err != nil {
		return false, err
	}
	return true, nil
}

func (b *BoardUseCase) Neighbors(ctx context.Context, id string, c goban.Coord, stonesOnly bool) ([]goban.Stone, error) {
	_, g, err := b.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = checkCoord(g, c); err != nil {
		return nil, err
	}
	seq := g.Neighbors(c)
	if stonesOnly {
		seq = g.NeighborStones(c)
	}
	return collect(seq), nil
}

func (b *BoardUseCase) Liberties(ctx context.Context, id string, s goban.Stone) (position.LibertiesResponse, error) {
	_, g, err := b.load(ctx, id)
	if err != nil {
		return position.LibertiesResponse{}, err
	}
	if err = checkCoord(g, s.Coord); err != nil {
		return position.LibertiesResponse{}, err
	}
	if s.Color == goban.None {
		s.Color = g.ColorAt(s.Coord)
	}
	return position.LibertiesResponse{
		Stone:        s,
		Liberties:    collect(g.Liberties(s)),
		Count:        g.LibertyCount(s),
		HasLiberties: g.HasLiberties(s),
	}, nil
}

// Stones lists the stones on the board, or the intersections of one color
// when color is set.
func (b *BoardUseCase) Stones(ctx context.Context, id string, color *goban.Color) ([]goban.Stone, error) {
	_, g, err := b.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if color == nil {
		return collect(g.Stones()), nil
	}
	return collect(g.StonesByColor(*color)), nil
}

func (b *BoardUseCase) Render(ctx context.Context, id string, pretty bool) (string, error) {
	_, g, err := b.load(ctx, id)
	if err != nil {
		return "", err
	}
	if pretty {
		return g.PrettyString(), nil
	}
	return g.RawString(), nil
}

func (b *BoardUseCase) ExportSGF(ctx context.Context, id string) (string, error) {
	_, g, err := b.load(ctx, id)
	if err != nil {
		return "", err
	}
	return sgf.FromGoban(g).String(), nil
}

func (b *BoardUseCase) ArchiveBoard(ctx context.Context, id string) (position.ArchivedPosition, error) {
	snapshot, g, err := b.load(ctx, id)
	if err != nil {
		return position.ArchivedPosition{}, err
	}
	archived := position.ArchivedPosition{
		BoardID:    id,
		Size:       snapshot.Size,
		Hash:       position.FormatHash(g.Hash()),
		Diagram:    g.RawString(),
		Stones:     len(collect(g.Stones())),
		Moves:      snapshot.Moves,
		ArchivedAt: time.Now().UTC(),
	}
	if err = b.store.ArchivePosition(ctx, archived); err != nil {
		return position.ArchivedPosition{}, err
	}
	return archived, nil
}

func (b *BoardUseCase) FindArchived(ctx context.Context, hash string) ([]position.ArchivedPosition, error) {
	h, err := position.ParseHash(strings.TrimPrefix(hash, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", errors.ErrInvalidHash, hash, err)
	}
	return b.store.FindPositionsByHash(ctx, position.FormatHash(h))
}

func (b *BoardUseCase) DeleteBoard(ctx context.Context, id string) error {
	unlock := b.locks.lock(id)
	defer unlock()
	if err := b.store.DeleteSnapshot(ctx, id); err != nil {
		return err
	}
	b.log.Infof("board %s deleted", id)
	return nil
}

func (b *BoardUseCase) load(ctx context.Context, id string) (position.Snapshot, *goban.Goban, error) {
	snapshot, err := b.store.LoadSnapshot(ctx, id)
	if err != nil {
		return position.Snapshot{}, nil, err
	}
	size, ok := goban.SquareSize(len(snapshot.Colors))
	if !ok || size != snapshot.Size || size > b.maxSize {
		b.log.Errorf("board %s has a corrupt snapshot: size %d, %d cells", id, snapshot.Size, len(snapshot.Colors))
		return position.Snapshot{}, nil, errors.ErrInternal
	}
	for _, color := range snapshot.Colors {
		if color > goban.White {
			b.log.Errorf("board %s has a corrupt snapshot: color %d", id, color)
			return position.Snapshot{}, nil, errors.ErrInternal
		}
	}
	g := goban.FromArray(snapshot.Colors, goban.RowMajor, b.tables.Get(size))
	if g.Hash() != snapshot.Hash {
		b.log.Warnw("stored hash differs from the rebuilt board",
			"board", id, "stored", position.FormatHash(snapshot.Hash), "rebuilt", position.FormatHash(g.Hash()))
		snapshot.Hash = g.Hash()
	}
	return snapshot, g, nil
}

func checkCoord(g *goban.Goban, c goban.Coord) error {
	if !g.Contains(c) {
		return fmt.Errorf("%w: %s on a %dx%d board", goban.ErrOutOfBounds, c, g.Size(), g.Size())
	}
	return nil
}

func collect(seq func(func(goban.Stone) bool)) []goban.Stone {
	stones := make([]goban.Stone, 0)
	for s := range seq {
		stones = append(stones, s)
	}
	return stones
}

func response(snapshot position.Snapshot, g *goban.Goban, repeated bool) position.BoardResponse {
	return position.BoardResponse{
		Snapshot: snapshot,
		Hash:     position.FormatHash(snapshot.Hash),
		Diagram:  g.RawString(),
		Repeated: repeated,
	}
}

// boardLocks serializes writers per board. An entry lives only while
// someone holds or waits for it.
type boardLocks struct {
	mu    sync.Mutex
	locks map[string]*boardLock
}

type boardLock struct {
	mu   sync.Mutex
	refs int
}

func (l *boardLocks) lock(id string) func() {
	l.mu.Lock()
	bl, ok := l.locks[id]
	if !ok {
		bl = &boardLock{}
		l.locks[id] = bl
	}
	bl.refs++
	l.mu.Unlock()

	bl.mu.Lock()
	return func() {
		bl.mu.Unlock()
		l.mu.Lock()
		bl.refs--
		if bl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

func (l *boardLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
