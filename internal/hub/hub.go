// Package hub is the process-wide registry of live room sessions. A single
// goroutine owns the code->session map, which makes session creation
// exactly-once per code and keeps registry traffic off every room's hot path.
package hub

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/csdraft/mapban-backend/internal/draft"
	"github.com/csdraft/mapban-backend/internal/room"
	"github.com/csdraft/mapban-backend/internal/store"
)

var ErrRoomNotFound = errors.New("room not found")

type HubMsg interface{ isHubMsg() }

// Register installs a freshly created room. The caller has already persisted
// the room row; the hub only wires the session.
type Register struct {
	Opts  room.Options
	Reply chan *room.Room
}

// Lookup resolves a code to a live session, recovering an evicted room from
// the persistence log if needed.
type Lookup struct {
	Code  string
	Reply chan LookupReply
}

type LookupReply struct {
	Room *room.Room
	Err  error
}

type Remove struct{ Code string }

type ShutdownHub struct{}

func (Register) isHubMsg()    {}
func (Lookup) isHubMsg()      {}
func (Remove) isHubMsg()      {}
func (ShutdownHub) isHubMsg() {}

// Loader reads persisted rooms back for session recovery.
type Loader interface {
	RoomByCode(ctx context.Context, code string) (*store.Room, error)
	OperationsByRoom(ctx context.Context, roomID uint) ([]store.Operation, error)
}

type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	loader Loader
	log    room.Log
	cfg    room.Config
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, loader Loader, log room.Log, cfg room.Config, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		loader: loader,
		log:    log,
		cfg:    cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Get resolves a room code to its live session.
func (h *Hub) Get(ctx context.Context, code string) (*room.Room, error) {
	reply := make(chan LookupReply, 1)
	select {
	case h.inbox <- Lookup{Code: code, Reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-reply:
		return r.Room, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Create installs the session for a just-persisted room.
func (h *Hub) Create(ctx context.Context, opts room.Options) (*room.Room, error) {
	reply := make(chan *room.Room, 1)
	select {
	case h.inbox <- Register{Opts: opts, Reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case r := <-reply:
		return r, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Register:
				if rm := h.rooms[msg.Opts.Code]; rm != nil {
					msg.Reply <- rm
					break
				}
				rm := h.spawn(msg.Opts)
				h.rooms[msg.Opts.Code] = rm
				msg.Reply <- rm

			case Lookup:
				if rm := h.rooms[msg.Code]; rm != nil {
					msg.Reply <- LookupReply{Room: rm}
					break
				}
				rm, err := h.recover(msg.Code)
				if err != nil {
					msg.Reply <- LookupReply{Err: err}
					break
				}
				h.rooms[msg.Code] = rm
				msg.Reply <- LookupReply{Room: rm}

			case Remove:
				delete(h.rooms, msg.Code)
				h.logger.Info("room retired", zap.String("room", msg.Code))

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for _, rm := range h.rooms {
		rm.Inbox() <- room.Shutdown{}
	}
	clear(h.rooms)
	h.cancel()
}

func (h *Hub) spawn(opts room.Options) *room.Room {
	opts.Log = h.log
	opts.Logger = h.logger
	opts.Config = h.cfg
	opts.OnIdle = func(code string) {
		select {
		case h.inbox <- Remove{Code: code}:
		case <-h.ctx.Done():
		}
	}
	return room.New(h.ctx, opts)
}

// recover rebuilds an evicted session by replaying its operation log. Replay
// determinism makes the rebuilt state identical to the one that was evicted.
func (h *Hub) recover(code string) (*room.Room, error) {
	row, err := h.loader.RoomByCode(h.ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	ops, err := h.loader.OperationsByRoom(h.ctx, row.ID)
	if err != nil {
		return nil, err
	}

	pool := make([]string, 0, len(row.Maps))
	maps := make([]room.MapEntry, 0, len(row.Maps))
	for _, m := range row.Maps {
		pool = append(pool, m.Name)
		maps = append(maps, room.MapEntry{Name: m.Name, Icon: m.Icon})
	}

	script := draft.DefaultScript(len(pool))
	if cached, err := row.DraftState(); err == nil && len(cached.Script) > 0 {
		script = cached.Script
	}

	st, err := replay(pool, script, row, ops)
	if err != nil {
		return nil, err
	}

	roster := make([]room.Participant, 0, len(row.Participants))
	for _, p := range row.Participants {
		roster = append(roster, room.Participant{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Team:        draft.Team(p.Team),
			Ready:       p.IsReady,
			Roll:        p.RollValue,
		})
	}

	h.logger.Info("room recovered from log",
		zap.String("room", code), zap.Int("operations", len(ops)), zap.String("phase", string(st.Phase)))

	return h.spawn(room.Options{
		ID:        row.ID,
		Code:      row.Code,
		TeamAName: row.TeamAName,
		TeamBName: row.TeamBName,
		Maps:      maps,
		State:     st,
		Roster:    roster,
		Version:   len(ops),
	}), nil
}

func replay(pool []string, script draft.Script, row *store.Room, rows []store.Operation) (draft.State, error) {
	ops := make([]draft.Operation, 0, len(rows))
	for _, o := range rows {
		ops = append(ops, draft.Operation{
			Round: o.Round,
			Kind:  draft.Kind(o.Kind),
			Team:  draft.Team(o.Team),
			Map:   o.MapName,
			Value: o.Value,
			At:    o.CreatedAt,
		})
	}
	started := row.Status != room.StatusWaiting
	st, err := draft.Replay(pool, script, started, ops)
	if err != nil {
		return st, err
	}
	// Finalization is a status transition, not a logged operation.
	if row.Status == room.StatusCompleted && st.Phase == draft.PhaseDecided {
		return draft.Finalize(st)
	}
	return st, nil
}
