package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/zouxu09/goban/internal/bootstrap"
	"github.com/zouxu09/goban/internal/domain/position"
	goerrors "github.com/zouxu09/goban/internal/errors"
)

const positionsCollection = "positions"

type BoardRepository struct {
	cfg   bootstrap.Config
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database
}

func NewBoardRepository(cfg bootstrap.Config, log *zap.SugaredLogger, redis *redis.Client, mongo *mongo.Database) *BoardRepository {
	return &BoardRepository{
		cfg:   cfg,
		log:   log,
		redis: redis,
		mongo: mongo,
	}
}

func boardKey(id string) string {
	return "goban:board:" + id
}

func historyKey(id string) string {
	return "goban:history:" + id
}

func (b *BoardRepository) SaveSnapshot(ctx context.Context, snapshot position.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", snapshot.ID, err)
	}
	if err = b.redis.Set(ctx, boardKey(snapshot.ID), data, b.cfg.SnapshotTTL).Err(); err != nil {
		return fmt.Errorf("save snapshot %s: %w", snapshot.ID, err)
	}
	return nil
}

func (b *BoardRepository) LoadSnapshot(ctx context.Context, id string) (position.Snapshot, error) {
	val, err := b.redis.Get(ctx, boardKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return position.Snapshot{}, goerrors.ErrBoardNotFound
	} else if err != nil {
		return position.Snapshot{}, fmt.Errorf("load snapshot %s: %w", id, err)
	}

	var snapshot position.Snapshot
	if err = json.Unmarshal(val, &snapshot); err != nil {
		return position.Snapshot{}, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return snapshot, nil
}

func (b *BoardRepository) DeleteSnapshot(ctx context.Context, id string) error {
	removed, err := b.redis.Del(ctx, boardKey(id), historyKey(id)).Result()
	if err != nil {
		return fmt.Errorf("delete board %s: %w", id, err)
	}
	if removed == 0 {
		return goerrors.ErrBoardNotFound
	}
	return nil
}

// RecordPosition adds hash to the board history and reports whether it was
// already there.
func (b *BoardRepository) RecordPosition(ctx context.Context, id string, hash uint64) (bool, error) {
	key := historyKey(id)
	var added *redis.IntCmd
	_, err := b.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		added = pipe.SAdd(ctx, key, position.FormatHash(hash))
		pipe.Expire(ctx, key, b.cfg.SnapshotTTL)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("record position for %s: %w", id, err)
	}
	return added.Val() == 0, nil
}

func (b *BoardRepository) ForgetPosition(ctx context.Context, id string, hash uint64) error {
	if err := b.redis.SRem(ctx, historyKey(id), position.FormatHash(hash)).Err(); err != nil {
		return fmt.Errorf("forget position for %s: %w", id, err)
	}
	return nil
}

func (b *BoardRepository) ArchivePosition(ctx context.Context, archived position.ArchivedPosition) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := b.mongo.Collection(positionsCollection)
	if _, err := collection.InsertOne(ctx, archived); err != nil {
		b.log.Errorf("failed to archive position of board %s: %v", archived.BoardID, err)
		return fmt.Errorf("archive position: %w", err)
	}

	b.log.Infof("archived position %s of board %s", archived.Hash, archived.BoardID)
	return nil
}

func (b *BoardRepository) FindPositionsByHash(ctx context.Context, hash string) ([]position.ArchivedPosition, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	collection := b.mongo.Collection(positionsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "archived_at", Value: -1}})
	cursor, err := collection.Find(ctx, bson.M{"hash": hash}, opts)
	if err != nil {
		b.log.Error(err)
		return nil, fmt.Errorf("find positions %s: %w", hash, err)
	}
	defer cursor.Close(ctx)

	result := make([]position.ArchivedPosition, 0)
	if err = cursor.All(ctx, &result); err != nil {
		return nil, fmt.Errorf("decode positions %s: %w", hash, err)
	}
	return result, nil
}
