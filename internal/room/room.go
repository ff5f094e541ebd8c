// Package room hosts the authoritative session for one draft room. A single
// goroutine owns all mutable state and drains an inbox of typed messages, so
// every mutation for a room is serialized without locks; rooms run fully in
// parallel with each other.
package room

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/csdraft/mapban-backend/internal/draft"
	"github.com/csdraft/mapban-backend/internal/wire"
)

var ErrRoomFull = errors.New("room is full")
var ErrRoomClosed = errors.New("room already completed")
var ErrUnknownParticipant = errors.New("unknown participant")
var ErrNotOnTeam = errors.New("participant has not selected a team")
var ErrTeamsIncomplete = errors.New("both teams need at least one participant")
var ErrPersist = errors.New("failed to persist operation")

const (
	StatusWaiting    = "waiting"
	StatusPreparing  = "preparing"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

type Participant struct {
	ID          string
	DisplayName string
	Team        draft.Team
	Ready       bool
	Roll        *int
	Online      bool
}

type MapEntry struct {
	Name string
	Icon string
}

// Log is the persistence boundary. AppendOperation must succeed before any
// in-memory commit or broadcast becomes visible; the snapshot row is a
// derived cache and its write failures are survivable.
type Log interface {
	AppendOperation(ctx context.Context, roomID uint, op draft.Operation) error
	SaveSnapshot(ctx context.Context, roomID uint, status string, state draft.State, completed bool) error
	SaveParticipant(ctx context.Context, roomID uint, p Participant) error
	RemoveParticipant(ctx context.Context, participantID string) error
}

type Config struct {
	MaxPlayers    int
	TurnTimeout   time.Duration
	FinalizeAfter time.Duration
	IdleGrace     time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = 10
	}
	if c.TurnTimeout <= 0 {
		c.TurnTimeout = 30 * time.Second
	}
	if c.FinalizeAfter <= 0 {
		c.FinalizeAfter = 10 * time.Second
	}
	if c.IdleGrace <= 0 {
		c.IdleGrace = 5 * time.Minute
	}
	return c
}

type Options struct {
	ID        uint
	Code      string
	TeamAName string
	TeamBName string
	Maps      []MapEntry
	State     draft.State
	Roster    []Participant
	Version   int
	Config    Config
	Log       Log
	Logger    *zap.Logger
	OnIdle    func(code string)
}

type subscriber struct {
	outbox        chan wire.Event
	participantID string
}

type Room struct {
	inbox   chan Msg
	id      uint
	code    string
	teamA   string
	teamB   string
	maps    []MapEntry
	state   draft.State
	version int
	roster  map[string]*Participant
	order   []string
	subs    map[string]*subscriber
	cfg     Config
	log     Log
	logger  *zap.Logger
	onIdle  func(string)

	timerGen int
	deadline time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, opts Options) *Room {
	ctx, cancel := context.WithCancel(parent)
	r := &Room{
		inbox:   make(chan Msg, 64),
		id:      opts.ID,
		code:    opts.Code,
		teamA:   opts.TeamAName,
		teamB:   opts.TeamBName,
		maps:    opts.Maps,
		state:   opts.State,
		version: opts.Version,
		roster:  make(map[string]*Participant),
		subs:    make(map[string]*subscriber),
		cfg:     opts.Config.withDefaults(),
		log:     opts.Log,
		logger:  opts.Logger.With(zap.String("room", opts.Code)),
		onIdle:  opts.OnIdle,
		ctx:     ctx,
		cancel:  cancel,
	}
	for i := range opts.Roster {
		p := opts.Roster[i]
		r.roster[p.ID] = &p
		r.order = append(r.order, p.ID)
	}
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }
func (r *Room) Code() string      { return r.code }

func (r *Room) loop() {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	r.resume()

	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case <-tick.C:
			r.handleTick()

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)
			case Leave:
				r.handleLeave(msg)
			case AddParticipant:
				r.handleAdd(msg)
			case RemoveParticipant:
				r.handleRemove(msg)
			case SetTeam:
				r.handleSetTeam(msg)
			case SetReady:
				r.handleSetReady(msg)
			case Roll:
				r.handleRoll(msg)
			case StartDraft:
				r.handleStart(msg)
			case Submit:
				r.handleSubmit(msg)
			case Chat:
				r.handleChat(msg)
			case GetSnapshot:
				msg.Reply <- r.snapshot()
			case turnTimeout:
				r.handleTurnTimeout(msg)
			case finalizeDue:
				r.handleFinalize(msg)
			case idleCheck:
				r.handleIdleCheck(msg)
			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	for id, sub := range r.subs {
		close(sub.outbox)
		delete(r.subs, id)
	}
	r.cancel()
}

// resume re-arms time-driven work when a session starts from persisted state.
// A freshly created waiting room has nothing to resume; a recovered mid-draft
// room gets its turn timer back, and a room evicted between the last scripted
// action and the decider commit settles the decider now.
func (r *Room) resume() {
	switch r.state.Phase {
	case draft.PhaseDrafting:
		r.maybeAuto()
		if _, ok := r.state.CurrentStep(); ok {
			r.resetTurnTimer()
		}
	case draft.PhaseDecided:
		r.timerGen++
		r.sendLater(r.cfg.FinalizeAfter, finalizeDue{gen: r.timerGen})
	case draft.PhaseCompleted:
		r.maybeIdle()
	}
}

// sendLater posts msg to the inbox after d without leaking a goroutine if the
// room shuts down first.
func (r *Room) sendLater(d time.Duration, msg Msg) {
	time.AfterFunc(d, func() {
		select {
		case r.inbox <- msg:
		case <-r.ctx.Done():
		}
	})
}

// --- subscriptions ---

func (r *Room) handleJoin(msg Join) {
	r.subs[msg.SubID] = &subscriber{outbox: msg.Outbox, participantID: msg.ParticipantID}
	if p, ok := r.roster[msg.ParticipantID]; ok && !p.Online {
		p.Online = true
		r.persistParticipant(p)
	}
	// Snapshot first: the subscriber can apply every later incremental event
	// on top of it, covering the join-during-broadcast race.
	msg.Outbox <- wire.Event{Type: wire.EvtSnapshot, Data: r.snapshot()}
	r.broadcast(wire.Event{Type: wire.EvtRoomUsers, Data: wire.RoomUsers{RoomCode: r.code, Users: r.users()}})
}

func (r *Room) handleLeave(msg Leave) {
	sub, ok := r.subs[msg.SubID]
	if !ok {
		return
	}
	delete(r.subs, msg.SubID)
	close(sub.outbox)
	if p, ok := r.roster[sub.participantID]; ok && p.Online && !r.hasSubscriber(p.ID) {
		p.Online = false
		r.persistParticipant(p)
		r.broadcast(wire.Event{Type: wire.EvtUserLeft, Data: wire.UserLeft{RoomCode: r.code, UserID: p.ID}})
		r.broadcast(wire.Event{Type: wire.EvtRoomUsers, Data: wire.RoomUsers{RoomCode: r.code, Users: r.users()}})
	}
	r.maybeIdle()
}

// --- roster ---

func (r *Room) handleAdd(msg AddParticipant) {
	if r.state.Phase == draft.PhaseCompleted {
		msg.Reply <- UserReply{Err: ErrRoomClosed}
		return
	}
	if len(r.roster) >= r.cfg.MaxPlayers {
		msg.Reply <- UserReply{Err: ErrRoomFull}
		return
	}
	p := &Participant{ID: uuid.NewString(), DisplayName: msg.DisplayName}
	if err := r.log.SaveParticipant(r.ctx, r.id, *p); err != nil {
		r.logger.Error("persist participant", zap.Error(err))
		msg.Reply <- UserReply{Err: ErrPersist}
		return
	}
	r.roster[p.ID] = p
	r.order = append(r.order, p.ID)
	r.version++
	r.broadcast(wire.Event{Type: wire.EvtRoomUsers, Data: wire.RoomUsers{RoomCode: r.code, Users: r.users()}})
	msg.Reply <- UserReply{User: r.userInfo(p)}
}

func (r *Room) handleRemove(msg RemoveParticipant) {
	p, ok := r.roster[msg.ParticipantID]
	if !ok {
		msg.Reply <- ErrUnknownParticipant
		return
	}
	if err := r.log.RemoveParticipant(r.ctx, p.ID); err != nil {
		r.logger.Error("remove participant", zap.Error(err))
		msg.Reply <- ErrPersist
		return
	}
	delete(r.roster, p.ID)
	for i, id := range r.order {
		if id == p.ID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.version++
	r.broadcast(wire.Event{Type: wire.EvtUserLeft, Data: wire.UserLeft{RoomCode: r.code, UserID: p.ID}})
	r.broadcast(wire.Event{Type: wire.EvtRoomUsers, Data: wire.RoomUsers{RoomCode: r.code, Users: r.users()}})
	msg.Reply <- nil
}

func (r *Room) handleSetTeam(msg SetTeam) {
	p, ok := r.roster[msg.ParticipantID]
	if !ok {
		msg.Reply <- UserReply{Err: ErrUnknownParticipant}
		return
	}
	if r.state.Phase != draft.PhaseWaiting {
		msg.Reply <- UserReply{Err: draft.ErrPhaseClosed}
		return
	}
	if msg.Team != draft.TeamA && msg.Team != draft.TeamB && msg.Team != draft.TeamNone {
		msg.Reply <- UserReply{Err: draft.ErrUnknownTeam}
		return
	}
	p.Team = msg.Team
	p.Ready = false // switching sides re-requires ready
	r.persistParticipant(p)
	r.version++
	r.broadcast(wire.Event{Type: wire.EvtTeamUpdated, Data: wire.TeamUpdated{RoomCode: r.code, UserID: p.ID, Team: string(p.Team)}})
	r.broadcast(wire.Event{Type: wire.EvtRoomUsers, Data: wire.RoomUsers{RoomCode: r.code, Users: r.users()}})
	msg.Reply <- UserReply{User: r.userInfo(p)}
}

func (r *Room) handleSetReady(msg SetReady) {
	p, ok := r.roster[msg.ParticipantID]
	if !ok {
		msg.Reply <- UserReply{Err: ErrUnknownParticipant}
		return
	}
	if r.state.Phase != draft.PhaseWaiting {
		msg.Reply <- UserReply{Err: draft.ErrPhaseClosed}
		return
	}
	p.Ready = msg.Ready
	r.persistParticipant(p)
	r.version++
	r.broadcast(wire.Event{Type: wire.EvtReadyUpdated, Data: wire.ReadyUpdated{RoomCode: r.code, UserID: p.ID, IsReady: p.Ready}})
	r.broadcast(wire.Event{Type: wire.EvtRoomUsers, Data: wire.RoomUsers{RoomCode: r.code, Users: r.users()}})
	msg.Reply <- UserReply{User: r.userInfo(p)}
}

// --- draft flow ---

func (r *Room) handleStart(msg StartDraft) {
	countA, countB := 0, 0
	allReady := true
	for _, p := range r.roster {
		switch p.Team {
		case draft.TeamA:
			countA++
		case draft.TeamB:
			countB++
		default:
			continue // spectators neither block nor count
		}
		if !p.Ready {
			allReady = false
		}
	}
	if r.state.Phase == draft.PhaseWaiting && (countA == 0 || countB == 0) {
		msg.Reply <- SnapReply{Err: ErrTeamsIncomplete}
		return
	}

	ns, err := draft.Begin(r.state, allReady)
	if err != nil {
		msg.Reply <- SnapReply{Err: err}
		return
	}
	if err := r.log.SaveSnapshot(r.ctx, r.id, StatusPreparing, ns, false); err != nil {
		r.logger.Error("persist room state", zap.Error(err))
		msg.Reply <- SnapReply{Err: ErrPersist}
		return
	}
	r.state = ns
	r.version++
	r.logger.Info("draft started, rolling for initiative")
	r.broadcastState()
	msg.Reply <- SnapReply{Snapshot: r.snapshot()}
}

func (r *Room) handleRoll(msg Roll) {
	p, ok := r.roster[msg.ParticipantID]
	if !ok {
		msg.Reply <- OpReply{Err: ErrUnknownParticipant}
		return
	}
	if p.Team != draft.TeamA && p.Team != draft.TeamB {
		msg.Reply <- OpReply{Err: ErrNotOnTeam}
		return
	}
	value := rollValue()
	op := draft.Operation{
		Round: r.state.NextRound(),
		Kind:  draft.KindRoll,
		Team:  p.Team,
		Value: value,
		At:    time.Now().UTC(),
	}
	events, err := r.commit(op)
	if err != nil {
		msg.Reply <- OpReply{Err: err}
		return
	}
	p.Roll = &value
	r.persistParticipant(p)
	r.dispatch(events)
	msg.Reply <- OpReply{Op: op}
}

func (r *Room) handleSubmit(msg Submit) {
	p, ok := r.roster[msg.ParticipantID]
	if !ok {
		msg.Reply <- OpReply{Err: ErrUnknownParticipant}
		return
	}
	if p.Team != draft.TeamA && p.Team != draft.TeamB {
		msg.Reply <- OpReply{Err: ErrNotOnTeam}
		return
	}
	op := draft.Operation{
		Round: r.state.NextRound(),
		Kind:  msg.Kind,
		Team:  p.Team,
		Map:   msg.Map,
		At:    time.Now().UTC(),
	}
	events, err := r.commit(op)
	if err != nil {
		msg.Reply <- OpReply{Err: err}
		return
	}
	r.dispatch(events)
	r.maybeAuto()
	msg.Reply <- OpReply{Op: op}
}

func (r *Room) handleChat(msg Chat) {
	p, ok := r.roster[msg.ParticipantID]
	if !ok {
		return
	}
	r.broadcast(wire.Event{Type: wire.EvtChatMessage, Data: wire.ChatMessage{
		RoomCode:  r.code,
		UserID:    p.ID,
		UserName:  p.DisplayName,
		Team:      string(p.Team),
		Content:   msg.Content,
		Timestamp: time.Now().UTC(),
	}})
}

// commit runs the validate -> persist -> cache-update sequence for one
// operation. The append is the durability boundary: if it fails, nothing
// changed and nothing is broadcast.
func (r *Room) commit(op draft.Operation) ([]draft.Event, error) {
	events, ns, err := draft.Apply(r.state, op)
	if err != nil {
		return nil, err
	}
	if err := r.log.AppendOperation(r.ctx, r.id, op); err != nil {
		r.logger.Error("append operation", zap.Error(err), zap.String("kind", string(op.Kind)))
		return nil, ErrPersist
	}
	r.state = ns
	r.version++
	if err := r.log.SaveSnapshot(r.ctx, r.id, statusFor(ns.Phase), ns, ns.Phase == draft.PhaseCompleted); err != nil {
		// The snapshot row is a cache over the operation log; replay can
		// rebuild it, so the commit stands.
		r.logger.Warn("persist room state", zap.Error(err))
	}
	return events, nil
}

// dispatch translates engine events to wire events, broadcasts them, and
// keeps the turn timer in step with the new state.
func (r *Room) dispatch(events []draft.Event) {
	for _, evt := range events {
		switch evt.Type {
		case draft.EvtRolled:
			r.broadcast(wire.Event{Type: wire.EvtRollResult, Data: wire.RollResult{RoomCode: r.code, Team: evt.Team, Value: evt.Value}})
		case draft.EvtRollTied:
			for _, p := range r.roster {
				p.Roll = nil
			}
			r.logger.Info("roll tied, both teams roll again")
			r.broadcast(wire.Event{Type: wire.EvtRollResult, Data: wire.RollResult{RoomCode: r.code, Tied: true}})
		case draft.EvtFirstPickDecided:
			r.logger.Info("initiative decided", zap.String("first", string(evt.Team)))
			r.broadcast(wire.Event{Type: wire.EvtRollResult, Data: wire.RollResult{RoomCode: r.code, FirstTeam: evt.Team}})
		case draft.EvtMapBanned:
			r.broadcast(wire.Event{Type: wire.EvtMapBanned, Data: wire.MapTaken{RoomCode: r.code, Map: evt.Map, Team: evt.Team, Round: r.state.Cursor}})
		case draft.EvtMapPicked:
			r.broadcast(wire.Event{Type: wire.EvtMapPicked, Data: wire.MapTaken{RoomCode: r.code, Map: evt.Map, Team: evt.Team, Round: r.state.Cursor}})
		case draft.EvtDeciderAssigned:
			r.logger.Info("decider assigned", zap.String("map", evt.Map))
			r.broadcast(wire.Event{Type: wire.EvtMapPicked, Data: wire.MapTaken{RoomCode: r.code, Map: evt.Map, Round: r.state.NextRound()}})
		}
	}
	r.broadcastState()

	if r.state.Phase == draft.PhaseDrafting && r.state.Cursor < len(r.state.Script) {
		r.resetTurnTimer()
	} else {
		r.stopTurnTimer()
	}
	if r.state.Phase == draft.PhaseDecided {
		r.timerGen++
		r.sendLater(r.cfg.FinalizeAfter, finalizeDue{gen: r.timerGen})
	}
}

// maybeAuto commits the decider once the script is exhausted with one map
// left; clients see it as a regular operation.
func (r *Room) maybeAuto() {
	op, ok := draft.NextAuto(r.state)
	if !ok {
		return
	}
	op.At = time.Now().UTC()
	events, err := r.commit(op)
	if err != nil {
		r.logger.Error("commit decider", zap.Error(err))
		return
	}
	r.dispatch(events)
}

// --- timers ---

func (r *Room) resetTurnTimer() {
	r.timerGen++
	r.deadline = time.Now().Add(r.cfg.TurnTimeout)
	r.sendLater(r.cfg.TurnTimeout, turnTimeout{gen: r.timerGen})
}

func (r *Room) stopTurnTimer() {
	r.timerGen++
	r.deadline = time.Time{}
}

func (r *Room) handleTurnTimeout(msg turnTimeout) {
	if msg.gen != r.timerGen {
		return
	}
	step, ok := r.state.CurrentStep()
	if !ok {
		return
	}
	remaining := r.state.Remaining()
	if len(remaining) == 0 {
		return
	}
	// Deterministic default: the due action lands on the first remaining map
	// in pool order, committed like any other operation.
	op := draft.Operation{
		Round: r.state.NextRound(),
		Kind:  step.Kind,
		Team:  r.state.TeamForSlot(step.Slot),
		Map:   remaining[0],
		At:    time.Now().UTC(),
	}
	r.logger.Info("turn timer expired, auto-acting",
		zap.String("kind", string(op.Kind)), zap.String("map", op.Map), zap.String("team", string(op.Team)))
	events, err := r.commit(op)
	if err != nil {
		r.logger.Error("commit timeout action", zap.Error(err))
		return
	}
	r.dispatch(events)
	r.maybeAuto()
}

func (r *Room) handleFinalize(msg finalizeDue) {
	if msg.gen != r.timerGen {
		return
	}
	ns, err := draft.Finalize(r.state)
	if err != nil {
		return
	}
	if err := r.log.SaveSnapshot(r.ctx, r.id, StatusCompleted, ns, true); err != nil {
		r.logger.Error("persist completed state", zap.Error(err))
		return
	}
	r.state = ns
	r.version++
	r.logger.Info("draft completed", zap.String("decider", ns.Decider))
	r.broadcastState()
	r.maybeIdle()
}

func (r *Room) handleTick() {
	if r.state.Phase != draft.PhaseDrafting || r.deadline.IsZero() {
		return
	}
	r.broadcast(wire.Event{Type: wire.EvtTimerTick, Data: wire.TimerTick{
		RoomCode:     r.code,
		CurrentTeam:  r.state.CurrentTeam(),
		RemainingSec: r.remainingSec(),
	}})
}

func (r *Room) maybeIdle() {
	if r.state.Phase != draft.PhaseCompleted || len(r.subs) > 0 {
		return
	}
	r.timerGen++
	r.sendLater(r.cfg.IdleGrace, idleCheck{gen: r.timerGen})
}

func (r *Room) handleIdleCheck(msg idleCheck) {
	if msg.gen != r.timerGen {
		return
	}
	if r.state.Phase != draft.PhaseCompleted || len(r.subs) > 0 {
		return
	}
	if r.onIdle != nil {
		r.onIdle(r.code)
	}
	r.shutdown()
}

// --- fan-out ---

func (r *Room) broadcast(evt wire.Event) {
	var dropped []string
	for id, sub := range r.subs {
		select {
		case sub.outbox <- evt:
		default:
			// Slow subscriber: drop it rather than stall the room. It can
			// reconnect and resync from a fresh snapshot.
			close(sub.outbox)
			delete(r.subs, id)
			if p, ok := r.roster[sub.participantID]; ok && p.Online && !r.hasSubscriber(p.ID) {
				p.Online = false
				dropped = append(dropped, p.ID)
			}
		}
	}
	for _, pid := range dropped {
		r.logger.Warn("dropped slow subscriber", zap.String("participant", pid))
		r.broadcast(wire.Event{Type: wire.EvtUserLeft, Data: wire.UserLeft{RoomCode: r.code, UserID: pid}})
	}
}

// hasSubscriber reports whether any live subscription still belongs to the
// participant; a second open tab keeps them online when one connection drops.
func (r *Room) hasSubscriber(participantID string) bool {
	if participantID == "" {
		return false
	}
	for _, sub := range r.subs {
		if sub.participantID == participantID {
			return true
		}
	}
	return false
}

func (r *Room) broadcastState() {
	r.broadcast(wire.Event{Type: wire.EvtBPStateUpdated, Data: r.snapshot()})
}

// --- views ---

func (r *Room) snapshot() wire.Snapshot {
	rolls := make(map[draft.Team]int, len(r.state.Rolls))
	for t, v := range r.state.Rolls {
		rolls[t] = v
	}
	return wire.Snapshot{
		Version:      r.version,
		RoomID:       r.id,
		RoomCode:     r.code,
		Status:       statusFor(r.state.Phase),
		TeamAName:    r.teamA,
		TeamBName:    r.teamB,
		Phase:        r.state.Phase,
		CurrentTeam:  r.state.CurrentTeam(),
		RemainingSec: r.remainingSec(),
		Rolls:        rolls,
		FirstTeam:    r.state.First,
		Maps:         r.mapCards(),
		Decider:      r.state.Decider,
		Users:        r.users(),
	}
}

func (r *Room) mapCards() []wire.MapCard {
	cards := make([]wire.MapCard, 0, len(r.maps))
	for _, m := range r.maps {
		card := wire.MapCard{Name: m.Name, Icon: m.Icon, Status: "available"}
		for _, t := range r.state.Banned {
			if t.Map == m.Name {
				card.Status = "banned"
				card.By = string(t.Team)
			}
		}
		for _, t := range r.state.Picked {
			if t.Map == m.Name {
				card.Status = "picked"
				card.By = string(t.Team)
			}
		}
		if r.state.Decider == m.Name {
			card.Status = "decider"
		}
		cards = append(cards, card)
	}
	return cards
}

func (r *Room) users() []wire.UserInfo {
	out := make([]wire.UserInfo, 0, len(r.order))
	for _, id := range r.order {
		if p, ok := r.roster[id]; ok {
			out = append(out, r.userInfo(p))
		}
	}
	return out
}

func (r *Room) userInfo(p *Participant) wire.UserInfo {
	return wire.UserInfo{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Team:        string(p.Team),
		IsReady:     p.Ready,
		Online:      p.Online,
	}
}

func (r *Room) remainingSec() int {
	if r.deadline.IsZero() {
		return 0
	}
	left := time.Until(r.deadline)
	if left < 0 {
		return 0
	}
	return int(left.Round(time.Second).Seconds())
}

func (r *Room) persistParticipant(p *Participant) {
	if err := r.log.SaveParticipant(r.ctx, r.id, *p); err != nil {
		r.logger.Warn("persist participant", zap.Error(err), zap.String("participant", p.ID))
	}
}

func statusFor(phase draft.Phase) string {
	switch phase {
	case draft.PhaseWaiting:
		return StatusWaiting
	case draft.PhaseRolling:
		return StatusPreparing
	case draft.PhaseCompleted:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

func rollValue() int {
	n, err := rand.Int(rand.Reader, big.NewInt(100))
	if err != nil {
		// crypto/rand failing is unrecoverable in practice; fall back to a
		// fixed value rather than crash the room.
		return 1
	}
	return int(n.Int64()) + 1
}
