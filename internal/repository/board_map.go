package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/zouxu09/goban/internal/domain/position"
	goerrors "github.com/zouxu09/goban/internal/errors"
)

// MapBoardStorage keeps everything in process memory. Snapshots never expire.
type MapBoardStorage struct {
	mu       sync.RWMutex
	boards   map[string]position.Snapshot
	history  map[string]map[uint64]struct{}
	archived []position.ArchivedPosition
}

func NewMapBoardStorage() *MapBoardStorage {
	return &MapBoardStorage{
		boards:  make(map[string]position.Snapshot),
		history: make(map[string]map[uint64]struct{}),
	}
}

func (m *MapBoardStorage) SaveSnapshot(_ context.Context, snapshot position.Snapshot) error {
	snapshot.Colors = slices.Clone(snapshot.Colors)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.boards[snapshot.ID] = snapshot
	return nil
}

func (m *MapBoardStorage) LoadSnapshot(_ context.Context, id string) (position.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot, ok := m.boards[id]
	if !ok {
		return position.Snapshot{}, goerrors.ErrBoardNotFound
	}
	snapshot.Colors = slices.Clone(snapshot.Colors)
	return snapshot, nil
}

func (m *MapBoardStorage) DeleteSnapshot(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.boards[id]; !ok {
		return goerrors.ErrBoardNotFound
	}
	delete(m.boards, id)
	delete(m.history, id)
	return nil
}

func (m *MapBoardStorage) RecordPosition(_ context.Context, id string, hash uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen, ok := m.history[id]
	if !ok {
		seen = make(map[uint64]struct{})
		m.history[id] = seen
	}
	if _, ok := seen[hash]; ok {
		return true, nil
	}
	seen[hash] = struct{}{}
	return false, nil
}

func (m *MapBoardStorage) ForgetPosition(_ context.Context, id string, hash uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.history[id], hash)
	return nil
}

func (m *MapBoardStorage) ArchivePosition(_ context.Context, archived position.ArchivedPosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archived = append(m.archived, archived)
	return nil
}

func (m *MapBoardStorage) FindPositionsByHash(_ context.Context, hash string) ([]position.ArchivedPosition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]position.ArchivedPosition, 0)
	for i := len(m.archived) - 1; i >= 0; i-- {
		if m.archived[i].Hash == hash {
			result = append(result, m.archived[i])
		}
	}
	return result, nil
}
