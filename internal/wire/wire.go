// Package wire defines the JSON messages exchanged with clients over the
// realtime channel and the snapshot shape shared with the REST surface.
package wire

import (
	"time"

	"github.com/csdraft/mapban-backend/internal/draft"
)

// Server -> client event types. On (re)connect the first event is always
// EvtSnapshot; everything after it is an incremental update.
const (
	EvtSnapshot       = "snapshot"
	EvtRoomUsers      = "room_users"
	EvtTeamUpdated    = "team_updated"
	EvtReadyUpdated   = "ready_updated"
	EvtRollResult     = "roll_result"
	EvtMapBanned      = "map_banned"
	EvtMapPicked      = "map_picked"
	EvtBPStateUpdated = "bp_state_updated"
	EvtUserLeft       = "user_left"
	EvtChatMessage    = "chat_message"
	EvtTimerTick      = "timer_tick"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// ClientMessage is the only client->server traffic on the socket; state
// mutations go over REST.
type ClientMessage struct {
	Type    string `json:"type"` // "chat"
	Content string `json:"content,omitempty"`
}

type UserInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Team        string `json:"team,omitempty"`
	IsReady     bool   `json:"is_ready"`
	Online      bool   `json:"online"`
}

// MapCard is one pool entry with its resolved status.
type MapCard struct {
	Name   string `json:"name"`
	Icon   string `json:"icon,omitempty"`
	Status string `json:"status"` // available | banned | picked | decider
	By     string `json:"by,omitempty"`
}

// Snapshot carries everything a client needs to render a room without a
// follow-up fetch.
type Snapshot struct {
	Version      int                `json:"version"`
	RoomID       uint               `json:"room_id"`
	RoomCode     string             `json:"room_code"`
	Status       string             `json:"status"`
	TeamAName    string             `json:"team_a_name"`
	TeamBName    string             `json:"team_b_name"`
	Phase        draft.Phase        `json:"phase"`
	CurrentTeam  draft.Team         `json:"current_team,omitempty"`
	RemainingSec int                `json:"remaining_seconds"`
	Rolls        map[draft.Team]int `json:"rolls,omitempty"`
	FirstTeam    draft.Team         `json:"first_team,omitempty"`
	Maps         []MapCard          `json:"maps"`
	Decider      string             `json:"decider,omitempty"`
	Users        []UserInfo         `json:"users"`
}

type RoomUsers struct {
	RoomCode string     `json:"room_code"`
	Users    []UserInfo `json:"users"`
}

type TeamUpdated struct {
	RoomCode string `json:"room_code"`
	UserID   string `json:"user_id"`
	Team     string `json:"team"`
}

type ReadyUpdated struct {
	RoomCode string `json:"room_code"`
	UserID   string `json:"user_id"`
	IsReady  bool   `json:"is_ready"`
}

type RollResult struct {
	RoomCode  string     `json:"room_code"`
	Team      draft.Team `json:"team,omitempty"`
	Value     int        `json:"value,omitempty"`
	Tied      bool       `json:"tied,omitempty"`
	FirstTeam draft.Team `json:"first_team,omitempty"`
}

type MapTaken struct {
	RoomCode string     `json:"room_code"`
	Map      string     `json:"map"`
	Team     draft.Team `json:"team,omitempty"`
	Round    int        `json:"round"`
}

type UserLeft struct {
	RoomCode string `json:"room_code"`
	UserID   string `json:"user_id"`
}

type ChatMessage struct {
	RoomCode  string    `json:"room_code"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Team      string    `json:"team,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type TimerTick struct {
	RoomCode     string     `json:"room_code"`
	CurrentTeam  draft.Team `json:"current_team,omitempty"`
	RemainingSec int        `json:"remaining_seconds"`
}
