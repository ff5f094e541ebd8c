package draft

import (
	"errors"
	"slices"
	"time"
)

var ErrNotAllReady = errors.New("not all participants ready")
var ErrWrongTurn = errors.New("not this team's turn")
var ErrMapResolved = errors.New("map already banned or picked")
var ErrMapNotInPool = errors.New("map not in pool")
var ErrPhaseClosed = errors.New("phase does not accept this operation")
var ErrAlreadyRolled = errors.New("team already rolled")
var ErrUnknownTeam = errors.New("unknown team")
var ErrUnknownKind = errors.New("unknown operation kind")

type Team string

const (
	TeamA    Team = "team_a"
	TeamB    Team = "team_b"
	TeamNone Team = ""
)

// Opponent returns the other drafting team.
func Opponent(t Team) Team {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}

type Kind string

const (
	KindRoll Kind = "roll"
	KindBan  Kind = "ban"
	KindPick Kind = "pick"
	KindAuto Kind = "auto"
)

type Phase string

const (
	PhaseWaiting   Phase = "waiting"
	PhaseRolling   Phase = "rolling"
	PhaseDrafting  Phase = "drafting"
	PhaseDecided   Phase = "decided"
	PhaseCompleted Phase = "completed"
)

// Slot is a script position resolved against the roll winner: the team that
// won the roll acts on every SlotFirst step, the loser on every SlotSecond.
type Slot string

const (
	SlotFirst  Slot = "first"
	SlotSecond Slot = "second"
)

type Step struct {
	Kind Kind `json:"kind"` // ban or pick
	Slot Slot `json:"slot"`
}

type Script []Step

// Operation is one committed draft action. The ordered operation log is the
// source of truth; State is a projection of it.
type Operation struct {
	Round int       `json:"round"`
	Kind  Kind      `json:"kind"`
	Team  Team      `json:"team,omitempty"`
	Map   string    `json:"map,omitempty"`
	Value int       `json:"value,omitempty"` // roll only
	At    time.Time `json:"at"`
}

// Take records a map leaving the pool and which team took it out.
type Take struct {
	Map  string `json:"map"`
	Team Team   `json:"team,omitempty"`
}

type State struct {
	Phase   Phase        `json:"phase"`
	Pool    []string     `json:"pool"`
	Script  Script       `json:"script"`
	Cursor  int          `json:"cursor"`
	Rolls   map[Team]int `json:"rolls"`
	First   Team         `json:"first,omitempty"` // roll winner, acts on SlotFirst
	Banned  []Take       `json:"banned"`
	Picked  []Take       `json:"picked"`
	Decider string       `json:"decider,omitempty"`
}

func NewState(pool []string, script Script) State {
	return State{
		Phase:  PhaseWaiting,
		Pool:   slices.Clone(pool),
		Script: slices.Clone(script),
		Rolls:  map[Team]int{},
		Banned: []Take{},
		Picked: []Take{},
	}
}

type EventType string

const (
	EvtRolled           EventType = "Rolled"
	EvtRollTied         EventType = "RollTied"
	EvtFirstPickDecided EventType = "FirstPickDecided"
	EvtMapBanned        EventType = "MapBanned"
	EvtMapPicked        EventType = "MapPicked"
	EvtDeciderAssigned  EventType = "DeciderAssigned"
)

type Event struct {
	Type  EventType
	Team  Team
	Map   string
	Value int
}

// Begin moves the draft out of the waiting room. allReady is the caller's
// roster check; the machine itself has no notion of participants.
func Begin(s State, allReady bool) (State, error) {
	if s.Phase != PhaseWaiting {
		return s, ErrPhaseClosed
	}
	if !allReady {
		return s, ErrNotAllReady
	}
	ns := clone(s)
	ns.Phase = PhaseRolling
	return ns, nil
}

// Finalize closes a decided draft. No operation is accepted afterwards.
func Finalize(s State) (State, error) {
	if s.Phase != PhaseDecided {
		return s, ErrPhaseClosed
	}
	ns := clone(s)
	ns.Phase = PhaseCompleted
	return ns, nil
}

// Apply validates op against s and returns the produced events and the next
// state. On rejection s is returned unchanged. Apply never generates data of
// its own (roll values arrive inside the operation), so replaying the same
// log always rebuilds the same state.
func Apply(s State, op Operation) ([]Event, State, error) {
	switch op.Kind {
	case KindRoll:
		return applyRoll(s, op)
	case KindBan, KindPick:
		return applyTake(s, op)
	case KindAuto:
		return applyAuto(s, op)
	default:
		return nil, s, ErrUnknownKind
	}
}

func applyRoll(s State, op Operation) ([]Event, State, error) {
	if s.Phase != PhaseRolling {
		return nil, s, ErrPhaseClosed
	}
	if op.Team != TeamA && op.Team != TeamB {
		return nil, s, ErrUnknownTeam
	}
	if _, dup := s.Rolls[op.Team]; dup {
		return nil, s, ErrAlreadyRolled
	}

	ns := clone(s)
	ns.Rolls[op.Team] = op.Value
	events := []Event{{Type: EvtRolled, Team: op.Team, Value: op.Value}}

	a, okA := ns.Rolls[TeamA]
	b, okB := ns.Rolls[TeamB]
	if !okA || !okB {
		return events, ns, nil
	}
	if a == b {
		// Tie: both teams roll again. The cleared rolls are reproduced on
		// replay because the tied pair stays in the log.
		ns.Rolls = map[Team]int{}
		events = append(events, Event{Type: EvtRollTied})
		return events, ns, nil
	}
	ns.First = TeamA
	if b > a {
		ns.First = TeamB
	}
	ns.Phase = PhaseDrafting
	ns.Cursor = 0
	events = append(events, Event{Type: EvtFirstPickDecided, Team: ns.First})
	return events, ns, nil
}

func applyTake(s State, op Operation) ([]Event, State, error) {
	if s.Phase != PhaseDrafting || s.Cursor >= len(s.Script) {
		return nil, s, ErrPhaseClosed
	}
	step := s.Script[s.Cursor]
	if step.Kind != op.Kind || s.TeamForSlot(step.Slot) != op.Team {
		return nil, s, ErrWrongTurn
	}
	if !slices.Contains(s.Pool, op.Map) {
		return nil, s, ErrMapNotInPool
	}
	if s.IsResolved(op.Map) {
		return nil, s, ErrMapResolved
	}

	ns := clone(s)
	take := Take{Map: op.Map, Team: op.Team}
	evt := Event{Team: op.Team, Map: op.Map}
	if op.Kind == KindBan {
		ns.Banned = append(ns.Banned, take)
		evt.Type = EvtMapBanned
	} else {
		ns.Picked = append(ns.Picked, take)
		evt.Type = EvtMapPicked
	}
	ns.Cursor++
	return []Event{evt}, ns, nil
}

func applyAuto(s State, op Operation) ([]Event, State, error) {
	if s.Phase != PhaseDrafting || s.Cursor < len(s.Script) {
		return nil, s, ErrPhaseClosed
	}
	remaining := s.Remaining()
	if len(remaining) != 1 {
		return nil, s, ErrPhaseClosed
	}
	if op.Map != "" && op.Map != remaining[0] {
		return nil, s, ErrMapResolved
	}

	ns := clone(s)
	ns.Decider = remaining[0]
	ns.Phase = PhaseDecided
	return []Event{{Type: EvtDeciderAssigned, Map: ns.Decider}}, ns, nil
}

// NextAuto reports whether the script is exhausted with exactly one map left,
// and if so builds the decider operation the session should commit.
func NextAuto(s State) (Operation, bool) {
	if s.Phase != PhaseDrafting || s.Cursor < len(s.Script) {
		return Operation{}, false
	}
	remaining := s.Remaining()
	if len(remaining) != 1 {
		return Operation{}, false
	}
	return Operation{
		Round: len(s.Script) + 1,
		Kind:  KindAuto,
		Map:   remaining[0],
	}, true
}

// Replay rebuilds state from the committed log. started reflects whether the
// room left the waiting phase before the log began (roll ops imply it, but a
// room can be mid-preparing with an empty log).
func Replay(pool []string, script Script, started bool, ops []Operation) (State, error) {
	s := NewState(pool, script)
	if started {
		s.Phase = PhaseRolling
	}
	for _, op := range ops {
		_, ns, err := Apply(s, op)
		if err != nil {
			return s, err
		}
		s = ns
	}
	return s, nil
}

// TeamForSlot resolves a script slot against the roll winner.
func (s State) TeamForSlot(slot Slot) Team {
	if s.First == TeamNone {
		return TeamNone
	}
	if slot == SlotFirst {
		return s.First
	}
	return Opponent(s.First)
}

// CurrentTeam is the team whose action the machine is waiting for, or
// TeamNone outside the drafting phase.
func (s State) CurrentTeam() Team {
	step, ok := s.CurrentStep()
	if !ok {
		return TeamNone
	}
	return s.TeamForSlot(step.Slot)
}

func (s State) CurrentStep() (Step, bool) {
	if s.Phase != PhaseDrafting || s.Cursor >= len(s.Script) {
		return Step{}, false
	}
	return s.Script[s.Cursor], true
}

func (s State) IsResolved(name string) bool {
	for _, t := range s.Banned {
		if t.Map == name {
			return true
		}
	}
	for _, t := range s.Picked {
		if t.Map == name {
			return true
		}
	}
	return name != "" && name == s.Decider
}

// Remaining returns the unresolved maps in pool order.
func (s State) Remaining() []string {
	out := make([]string, 0, len(s.Pool))
	for _, name := range s.Pool {
		if !s.IsResolved(name) {
			out = append(out, name)
		}
	}
	return out
}

// NextRound numbers the operation about to be committed. Rolls share round 0,
// scripted actions are 1-based, the auto decider follows the last script step.
func (s State) NextRound() int {
	switch s.Phase {
	case PhaseRolling:
		return 0
	case PhaseDrafting:
		return s.Cursor + 1
	default:
		return len(s.Script) + 1
	}
}

func clone(s State) State {
	ns := s
	ns.Pool = slices.Clone(s.Pool)
	ns.Script = slices.Clone(s.Script)
	ns.Banned = slices.Clone(s.Banned)
	ns.Picked = slices.Clone(s.Picked)
	ns.Rolls = make(map[Team]int, len(s.Rolls))
	for t, v := range s.Rolls {
		ns.Rolls[t] = v
	}
	return ns
}
