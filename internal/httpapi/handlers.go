package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/csdraft/mapban-backend/internal/auth"
	"github.com/csdraft/mapban-backend/internal/draft"
	"github.com/csdraft/mapban-backend/internal/hub"
	"github.com/csdraft/mapban-backend/internal/room"
	"github.com/csdraft/mapban-backend/internal/store"
	"github.com/csdraft/mapban-backend/internal/wire"
)

// defaultPool is the standard competitive 7-map pool, used when room
// creation does not supply one.
var defaultPool = []room.MapEntry{
	{Name: "Mirage"},
	{Name: "Inferno"},
	{Name: "Dust2"},
	{Name: "Nuke"},
	{Name: "Anubis"},
	{Name: "Vertigo"},
	{Name: "Ancient"},
}

type API struct {
	Hub        *hub.Hub
	Store      *store.Store
	Auth       *auth.Service
	Logger     *zap.Logger
	MaxPlayers int
}

func generateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 8)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// ask sends a message to a room and waits for its typed reply.
func ask[T any](ctx context.Context, rm *room.Room, build func(chan T) room.Msg) (T, error) {
	var zero T
	reply := make(chan T, 1)
	select {
	case rm.Inbox() <- build(reply):
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// --- admin ---

func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	token, err := a.Auth.Login(req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token, "username": req.Username})
}

type createRoomRequest struct {
	TeamAName string `json:"team_a_name"`
	TeamBName string `json:"team_b_name"`
	Maps      []struct {
		Name string `json:"name"`
		Icon string `json:"icon"`
	} `json:"maps"`
}

func (a *API) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.TeamAName == "" {
		req.TeamAName = "Team A"
	}
	if req.TeamBName == "" {
		req.TeamBName = "Team B"
	}

	maps := defaultPool
	if len(req.Maps) > 0 {
		maps = make([]room.MapEntry, 0, len(req.Maps))
		for _, m := range req.Maps {
			if m.Name == "" {
				writeError(w, errBadRequest)
				return
			}
			maps = append(maps, room.MapEntry{Name: m.Name, Icon: m.Icon})
		}
	}
	// A draft needs at least one action before the decider.
	if len(maps) < 2 {
		writeError(w, errBadRequest)
		return
	}

	code, err := generateCode()
	if err != nil {
		writeError(w, err)
		return
	}

	pool := make([]string, 0, len(maps))
	poolRows := make([]store.PoolMap, 0, len(maps))
	for _, m := range maps {
		pool = append(pool, m.Name)
		poolRows = append(poolRows, store.PoolMap{Name: m.Name, Icon: m.Icon})
	}
	state := draft.NewState(pool, draft.DefaultScript(len(pool)))
	blob, err := json.Marshal(state)
	if err != nil {
		writeError(w, err)
		return
	}

	row := &store.Room{
		Code:       code,
		TeamAName:  req.TeamAName,
		TeamBName:  req.TeamBName,
		Status:     room.StatusWaiting,
		MaxPlayers: a.MaxPlayers,
		State:      blob,
	}
	if err := a.Store.CreateRoom(r.Context(), row, poolRows); err != nil {
		a.Logger.Error("create room", zap.Error(err))
		writeError(w, err)
		return
	}

	if _, err := a.Hub.Create(r.Context(), room.Options{
		ID:        row.ID,
		Code:      code,
		TeamAName: req.TeamAName,
		TeamBName: req.TeamBName,
		Maps:      maps,
		State:     state,
	}); err != nil {
		writeError(w, err)
		return
	}

	a.Logger.Info("room created", zap.String("room", code), zap.Int("pool", len(maps)))
	writeJSON(w, http.StatusCreated, map[string]any{
		"room_id":   row.ID,
		"room_code": code,
		"status":    room.StatusWaiting,
	})
}

func (a *API) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := a.Store.Rooms(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]map[string]any, 0, len(rooms))
	for _, rm := range rooms {
		items = append(items, map[string]any{
			"room_id":     rm.ID,
			"room_code":   rm.Code,
			"team_a_name": rm.TeamAName,
			"team_b_name": rm.TeamBName,
			"status":      rm.Status,
			"created_at":  rm.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"total": len(items), "items": items})
}

// Record returns the full committed operation log for a room, the audit
// trail behind the cached state.
func (a *API) Record(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	row, err := a.Store.RoomByCode(r.Context(), code)
	if err != nil {
		if err == store.ErrNotFound {
			err = hub.ErrRoomNotFound
		}
		writeError(w, err)
		return
	}
	ops, err := a.Store.OperationsByRoom(r.Context(), row.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	items := make([]map[string]any, 0, len(ops))
	for _, op := range ops {
		items = append(items, map[string]any{
			"round":     op.Round,
			"kind":      op.Kind,
			"team":      op.Team,
			"map":       op.MapName,
			"value":     op.Value,
			"timestamp": op.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room_code":  row.Code,
		"status":     row.Status,
		"operations": items,
	})
}

// --- rooms ---

func (a *API) GetRoom(w http.ResponseWriter, r *http.Request) {
	rm, err := a.Hub.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	snap, err := ask(r.Context(), rm, func(reply chan wire.Snapshot) room.Msg {
		return room.GetSnapshot{Reply: reply}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (a *API) JoinRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName string `json:"display_name"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.DisplayName == "" {
		writeError(w, errBadRequest)
		return
	}
	rm, err := a.Hub.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := ask(r.Context(), rm, func(reply chan room.UserReply) room.Msg {
		return room.AddParticipant{DisplayName: req.DisplayName, Reply: reply}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Err != nil {
		writeError(w, res.Err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"participant_id": res.User.ID,
		"user":           res.User,
	})
}

// --- users ---

type userRequest struct {
	RoomCode      string `json:"room_code"`
	ParticipantID string `json:"participant_id"`
	Team          string `json:"team"`
	IsReady       bool   `json:"is_ready"`
}

func (a *API) userRoom(r *http.Request) (*room.Room, userRequest, error) {
	var req userRequest
	if err := decode(r, &req); err != nil {
		return nil, req, err
	}
	if req.RoomCode == "" || req.ParticipantID == "" {
		return nil, req, errBadRequest
	}
	rm, err := a.Hub.Get(r.Context(), req.RoomCode)
	return rm, req, err
}

func (a *API) SelectTeam(w http.ResponseWriter, r *http.Request) {
	rm, req, err := a.userRoom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := ask(r.Context(), rm, func(reply chan room.UserReply) room.Msg {
		return room.SetTeam{ParticipantID: req.ParticipantID, Team: draft.Team(req.Team), Reply: reply}
	})
	a.replyUser(w, res, err)
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	rm, req, err := a.userRoom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := ask(r.Context(), rm, func(reply chan room.UserReply) room.Msg {
		return room.SetReady{ParticipantID: req.ParticipantID, Ready: req.IsReady, Reply: reply}
	})
	a.replyUser(w, res, err)
}

func (a *API) RollDice(w http.ResponseWriter, r *http.Request) {
	rm, req, err := a.userRoom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := ask(r.Context(), rm, func(reply chan room.OpReply) room.Msg {
		return room.Roll{ParticipantID: req.ParticipantID, Reply: reply}
	})
	a.replyOp(w, res, err)
}

func (a *API) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	rm, req, err := a.userRoom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := ask(r.Context(), rm, func(reply chan error) room.Msg {
		return room.RemoveParticipant{ParticipantID: req.ParticipantID, Reply: reply}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if res != nil {
		writeError(w, res)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"participant_id": req.ParticipantID})
}

func (a *API) replyUser(w http.ResponseWriter, res room.UserReply, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Err != nil {
		writeError(w, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, res.User)
}

func (a *API) replyOp(w http.ResponseWriter, res room.OpReply, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Err != nil {
		writeError(w, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, res.Op)
}

// --- ban/pick ---

func (a *API) StartDraft(w http.ResponseWriter, r *http.Request) {
	rm, err := a.Hub.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := ask(r.Context(), rm, func(reply chan room.SnapReply) room.Msg {
		return room.StartDraft{Reply: reply}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Err != nil {
		writeError(w, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, res.Snapshot)
}

func (a *API) submit(kind draft.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ParticipantID string `json:"participant_id"`
			MapName       string `json:"map_name"`
		}
		if err := decode(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.ParticipantID == "" || req.MapName == "" {
			writeError(w, errBadRequest)
			return
		}
		rm, err := a.Hub.Get(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			writeError(w, err)
			return
		}
		res, err := ask(r.Context(), rm, func(reply chan room.OpReply) room.Msg {
			return room.Submit{ParticipantID: req.ParticipantID, Kind: kind, Map: req.MapName, Reply: reply}
		})
		a.replyOp(w, res, err)
	}
}

func (a *API) BanMap(w http.ResponseWriter, r *http.Request)  { a.submit(draft.KindBan)(w, r) }
func (a *API) PickMap(w http.ResponseWriter, r *http.Request) { a.submit(draft.KindPick)(w, r) }

func (a *API) DraftState(w http.ResponseWriter, r *http.Request) {
	rm, err := a.Hub.Get(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	snap, err := ask(r.Context(), rm, func(reply chan wire.Snapshot) room.Msg {
		return room.GetSnapshot{Reply: reply}
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
