package position

import (
	"fmt"
	"strconv"
	"time"

	"github.com/zouxu09/goban/internal/domain/goban"
)

// Snapshot is a board as it is kept between requests. Colors are row-major.
type Snapshot struct {
	ID        string        `json:"id"`
	Size      int           `json:"size"`
	Colors    []goban.Color `json:"colors"`
	Hash      uint64        `json:"hash"`
	Moves     int           `json:"moves"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func NewSnapshot(id string, g *goban.Goban) Snapshot {
	now := time.Now().UTC()
	return Snapshot{
		ID:        id,
		Size:      g.Size(),
		Colors:    g.Colors(),
		Hash:      g.Hash(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ArchivedPosition is stored in mongo. bson has no unsigned 64 bit type so
// the hash is kept as hex.
type ArchivedPosition struct {
	BoardID    string    `json:"board_id" bson:"board_id"`
	Size       int       `json:"size" bson:"size"`
	Hash       string    `json:"hash" bson:"hash"`
	Diagram    string    `json:"diagram" bson:"diagram"`
	Stones     int       `json:"stones" bson:"stones"`
	Moves      int       `json:"moves" bson:"moves"`
	ArchivedAt time.Time `json:"archived_at" bson:"archived_at"`
}

func FormatHash(h uint64) string {
	return fmt.Sprintf("%016x", h)
}

func ParseHash(s string) (uint64, error) {
	return strconv.ParseUint(s, 16, 64)
}

type CreateBoardRequest struct {
	Size int `json:"size"`
}

type ImportBoardRequest struct {
	Colors []goban.Color `json:"colors"`
	Order  string        `json:"order"`
}

type PlaceStonesRequest struct {
	Stones        []goban.Stone `json:"stones"`
	RejectRepeats bool          `json:"reject_repeats"`
}

type BoardResponse struct {
	Snapshot Snapshot `json:"board"`
	Hash     string   `json:"hash"`
	Diagram  string   `json:"diagram"`
	Repeated bool     `json:"repeated"`
}

type StonesResponse struct {
	Stones []goban.Stone `json:"stones"`
}

type LibertiesResponse struct {
	Stone        goban.Stone   `json:"stone"`
	Liberties    []goban.Stone `json:"liberties"`
	Count        uint8         `json:"count"`
	HasLiberties bool          `json:"has_liberties"`
}

type ArchiveResponse struct {
	Positions []ArchivedPosition `json:"positions"`
}
