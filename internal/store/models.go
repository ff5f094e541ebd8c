package store

import (
	"time"

	"gorm.io/datatypes"
)

// Room is the snapshot row: lifecycle status plus the cached draft state.
// The Operations relation is the source of truth; State is derived from it.
type Room struct {
	ID          uint   `gorm:"primaryKey"`
	Code        string `gorm:"uniqueIndex;size:16"`
	TeamAName   string `gorm:"size:50"`
	TeamBName   string `gorm:"size:50"`
	Status      string `gorm:"size:16;index"`
	MaxPlayers  int
	State       datatypes.JSON
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time

	Participants []Participant `gorm:"constraint:OnDelete:CASCADE"`
	Maps         []PoolMap     `gorm:"constraint:OnDelete:CASCADE"`
	Operations   []Operation   `gorm:"constraint:OnDelete:CASCADE"`
}

type Participant struct {
	ID          string `gorm:"primaryKey;size:36"`
	RoomID      uint   `gorm:"index"`
	DisplayName string `gorm:"size:50"`
	Team        string `gorm:"size:10"`
	IsReady     bool
	RollValue   *int
	Online      bool
	JoinedAt    time.Time `gorm:"autoCreateTime"`
}

// PoolMap is one entry of a room's immutable map pool, in draft order.
type PoolMap struct {
	ID       uint `gorm:"primaryKey"`
	RoomID   uint `gorm:"index"`
	Position int
	Name     string `gorm:"size:50"`
	Icon     string `gorm:"size:255"`
}

// Operation is one committed draft action. Append-only: rows are never
// updated or deleted while the room lives.
type Operation struct {
	ID        uint   `gorm:"primaryKey"`
	RoomID    uint   `gorm:"index"`
	Round     int
	Kind      string `gorm:"size:10"`
	Team      string `gorm:"size:10"`
	MapName   string `gorm:"size:50"`
	Value     int
	CreatedAt time.Time
}
