package room

import (
	"github.com/csdraft/mapban-backend/internal/draft"
	"github.com/csdraft/mapban-backend/internal/wire"
)

type Msg interface{ isRoomMsg() }

// Join subscribes a connection to the room's event stream. The first event
// delivered on Outbox is always a full snapshot, so a subscriber that joins
// mid-draft (or mid-broadcast) can never miss state.
type Join struct {
	SubID         string
	ParticipantID string // optional; marks the participant online
	Outbox        chan wire.Event
}

// Leave drops a subscription. The participant (if any) is marked offline but
// keeps their seat; see the disconnect policy in DESIGN.md.
type Leave struct {
	SubID string
}

type AddParticipant struct {
	DisplayName string
	Reply       chan UserReply
}

type RemoveParticipant struct {
	ParticipantID string
	Reply         chan error
}

type SetTeam struct {
	ParticipantID string
	Team          draft.Team
	Reply         chan UserReply
}

type SetReady struct {
	ParticipantID string
	Ready         bool
	Reply         chan UserReply
}

type Roll struct {
	ParticipantID string
	Reply         chan OpReply
}

type StartDraft struct {
	Reply chan SnapReply
}

type Submit struct {
	ParticipantID string
	Kind          draft.Kind // ban or pick
	Map           string
	Reply         chan OpReply
}

type Chat struct {
	ParticipantID string
	Content       string
}

type GetSnapshot struct {
	Reply chan wire.Snapshot
}

type Shutdown struct{}

// internal timer messages; generation counters guard against stale timers
// firing after the turn they belonged to already advanced.
type turnTimeout struct{ gen int }
type finalizeDue struct{ gen int }
type idleCheck struct{ gen int }

func (Join) isRoomMsg()              {}
func (Leave) isRoomMsg()             {}
func (AddParticipant) isRoomMsg()    {}
func (RemoveParticipant) isRoomMsg() {}
func (SetTeam) isRoomMsg()           {}
func (SetReady) isRoomMsg()          {}
func (Roll) isRoomMsg()              {}
func (StartDraft) isRoomMsg()        {}
func (Submit) isRoomMsg()            {}
func (Chat) isRoomMsg()              {}
func (GetSnapshot) isRoomMsg()       {}
func (Shutdown) isRoomMsg()          {}
func (turnTimeout) isRoomMsg()       {}
func (finalizeDue) isRoomMsg()       {}
func (idleCheck) isRoomMsg()         {}

type UserReply struct {
	User wire.UserInfo
	Err  error
}

type OpReply struct {
	Op  draft.Operation
	Err error
}

type SnapReply struct {
	Snapshot wire.Snapshot
	Err      error
}
