// Package store persists rooms, rosters, map pools and the append-only
// operation log behind gorm.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/csdraft/mapban-backend/internal/draft"
	"github.com/csdraft/mapban-backend/internal/room"
)

var ErrNotFound = errors.New("record not found")

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Room{}, &Participant{}, &PoolMap{}, &Operation{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// CreateRoom inserts the room row and its pool in one transaction.
func (s *Store) CreateRoom(ctx context.Context, r *Room, maps []PoolMap) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(r).Error; err != nil {
			return err
		}
		for i := range maps {
			maps[i].RoomID = r.ID
			maps[i].Position = i
		}
		return tx.Create(&maps).Error
	})
}

func (s *Store) RoomByCode(ctx context.Context, code string) (*Room, error) {
	var r Room
	err := s.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB { return db.Order("joined_at, id") }).
		Preload("Maps", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("code = ?", code).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Store) Rooms(ctx context.Context) ([]Room, error) {
	var rooms []Room
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&rooms).Error
	return rooms, err
}

func (s *Store) OperationsByRoom(ctx context.Context, roomID uint) ([]Operation, error) {
	var ops []Operation
	err := s.db.WithContext(ctx).Where("room_id = ?", roomID).Order("id").Find(&ops).Error
	return ops, err
}

// --- room.Log implementation ---

func (s *Store) AppendOperation(ctx context.Context, roomID uint, op draft.Operation) error {
	row := Operation{
		RoomID:    roomID,
		Round:     op.Round,
		Kind:      string(op.Kind),
		Team:      string(op.Team),
		MapName:   op.Map,
		Value:     op.Value,
		CreatedAt: op.At,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *Store) SaveSnapshot(ctx context.Context, roomID uint, status string, state draft.State, completed bool) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return err
	}
	updates := map[string]any{"status": status, "state": blob}
	if completed {
		now := time.Now().UTC()
		updates["completed_at"] = &now
	}
	return s.db.WithContext(ctx).Model(&Room{}).Where("id = ?", roomID).Updates(updates).Error
}

func (s *Store) SaveParticipant(ctx context.Context, roomID uint, p room.Participant) error {
	row := Participant{
		ID:          p.ID,
		RoomID:      roomID,
		DisplayName: p.DisplayName,
		Team:        string(p.Team),
		IsReady:     p.Ready,
		RollValue:   p.Roll,
		Online:      p.Online,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "team", "is_ready", "roll_value", "online"}),
	}).Create(&row).Error
}

func (s *Store) RemoveParticipant(ctx context.Context, participantID string) error {
	return s.db.WithContext(ctx).Delete(&Participant{}, "id = ?", participantID).Error
}

// DraftState decodes the cached state blob of a room row.
func (r *Room) DraftState() (draft.State, error) {
	if len(r.State) == 0 {
		return draft.State{}, errors.New("room has no cached state")
	}
	var st draft.State
	if err := json.Unmarshal(r.State, &st); err != nil {
		return draft.State{}, err
	}
	return st, nil
}
