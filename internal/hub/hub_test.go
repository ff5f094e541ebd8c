package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/csdraft/mapban-backend/internal/draft"
	"github.com/csdraft/mapban-backend/internal/room"
	"github.com/csdraft/mapban-backend/internal/store"
	"github.com/csdraft/mapban-backend/internal/wire"
)

var testPool = []string{"Mirage", "Inferno", "Dust2", "Nuke", "Anubis", "Vertigo", "Ancient"}

func newTestHub(t *testing.T) (*Hub, *store.Store) {
	t.Helper()
	return newTestHubWithConfig(t, room.Config{TurnTimeout: time.Hour})
}

func newTestHubWithConfig(t *testing.T, cfg room.Config) (*Hub, *store.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	st, err := store.New(db)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h := New(ctx, st, st, cfg, zap.NewNop())
	return h, st
}

func persistRoom(t *testing.T, st *store.Store, code string) *store.Room {
	t.Helper()
	state := draft.NewState(testPool, draft.DefaultScript(len(testPool)))
	blob, err := json.Marshal(state)
	require.NoError(t, err)
	row := &store.Room{Code: code, TeamAName: "Alpha", TeamBName: "Bravo", Status: room.StatusWaiting, State: blob}
	maps := make([]store.PoolMap, len(testPool))
	for i, name := range testPool {
		maps[i] = store.PoolMap{Name: name}
	}
	require.NoError(t, st.CreateRoom(context.Background(), row, maps))
	return row
}

func snapshotOf(t *testing.T, rm *room.Room) wire.Snapshot {
	t.Helper()
	reply := make(chan wire.Snapshot, 1)
	rm.Inbox() <- room.GetSnapshot{Reply: reply}
	return <-reply
}

func TestRegisterThenLookupSamePointer(t *testing.T) {
	h, st := newTestHub(t)
	row := persistRoom(t, st, "ZED12345")

	state := draft.NewState(testPool, draft.DefaultScript(len(testPool)))
	rm1, err := h.Create(context.Background(), room.Options{
		ID: row.ID, Code: row.Code, TeamAName: "Alpha", TeamBName: "Bravo", State: state,
	})
	require.NoError(t, err)

	rm2, err := h.Get(context.Background(), "ZED12345")
	require.NoError(t, err)
	assert.Same(t, rm1, rm2)
}

func TestLookupUnknownRoom(t *testing.T) {
	h, _ := newTestHub(t)
	_, err := h.Get(context.Background(), "MISSING1")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestLookupRecoversFromOperationLog(t *testing.T) {
	h, st := newTestHub(t)
	row := persistRoom(t, st, "RECOVER1")
	ctx := context.Background()

	// Simulate a draft that progressed before the session was evicted:
	// rolls decided, two bans committed.
	ops := []draft.Operation{
		{Round: 0, Kind: draft.KindRoll, Team: draft.TeamA, Value: 80, At: time.Now().UTC()},
		{Round: 0, Kind: draft.KindRoll, Team: draft.TeamB, Value: 20, At: time.Now().UTC()},
		{Round: 1, Kind: draft.KindBan, Team: draft.TeamA, Map: "Nuke", At: time.Now().UTC()},
		{Round: 2, Kind: draft.KindBan, Team: draft.TeamB, Map: "Anubis", At: time.Now().UTC()},
	}
	for _, op := range ops {
		require.NoError(t, st.AppendOperation(ctx, row.ID, op))
	}
	require.NoError(t, st.SaveSnapshot(ctx, row.ID, room.StatusInProgress, draft.State{}, false))
	require.NoError(t, st.SaveParticipant(ctx, row.ID, room.Participant{
		ID: "22222222-2222-2222-2222-222222222222", DisplayName: "Player1", Team: draft.TeamA, Ready: true,
	}))

	rm, err := h.Get(ctx, "RECOVER1")
	require.NoError(t, err)

	snap := snapshotOf(t, rm)
	assert.Equal(t, draft.PhaseDrafting, snap.Phase)
	assert.Equal(t, draft.TeamA, snap.FirstTeam)
	assert.Equal(t, draft.TeamA, snap.CurrentTeam, "two bans done, initiative back with the roll winner")
	assert.Equal(t, 4, snap.Version)
	require.Len(t, snap.Users, 1)
	assert.Equal(t, "Player1", snap.Users[0].DisplayName)

	banned := 0
	for _, m := range snap.Maps {
		if m.Status == "banned" {
			banned++
		}
	}
	assert.Equal(t, 2, banned)
}

func TestRecoveredRoomCommitsPendingDecider(t *testing.T) {
	h, st := newTestHub(t)
	row := persistRoom(t, st, "RESUME01")
	ctx := context.Background()

	// The process died after the last scripted ban committed but before the
	// decider did: six actions in the log, one map left, no auto op.
	ops := []draft.Operation{
		{Round: 0, Kind: draft.KindRoll, Team: draft.TeamA, Value: 80, At: time.Now().UTC()},
		{Round: 0, Kind: draft.KindRoll, Team: draft.TeamB, Value: 20, At: time.Now().UTC()},
		{Round: 1, Kind: draft.KindBan, Team: draft.TeamA, Map: "Mirage", At: time.Now().UTC()},
		{Round: 2, Kind: draft.KindBan, Team: draft.TeamB, Map: "Inferno", At: time.Now().UTC()},
		{Round: 3, Kind: draft.KindPick, Team: draft.TeamA, Map: "Dust2", At: time.Now().UTC()},
		{Round: 4, Kind: draft.KindPick, Team: draft.TeamB, Map: "Nuke", At: time.Now().UTC()},
		{Round: 5, Kind: draft.KindBan, Team: draft.TeamA, Map: "Anubis", At: time.Now().UTC()},
		{Round: 6, Kind: draft.KindBan, Team: draft.TeamB, Map: "Vertigo", At: time.Now().UTC()},
	}
	for _, op := range ops {
		require.NoError(t, st.AppendOperation(ctx, row.ID, op))
	}
	require.NoError(t, st.SaveSnapshot(ctx, row.ID, room.StatusInProgress, draft.State{}, false))

	rm, err := h.Get(ctx, "RESUME01")
	require.NoError(t, err)

	snap := snapshotOf(t, rm)
	assert.Equal(t, draft.PhaseDecided, snap.Phase)
	assert.Equal(t, "Ancient", snap.Decider)

	persisted, err := st.OperationsByRoom(ctx, row.ID)
	require.NoError(t, err)
	require.Len(t, persisted, 9)
	assert.Equal(t, "auto", persisted[8].Kind)
	assert.Equal(t, "Ancient", persisted[8].MapName)
}

func TestRecoveredRoomReArmsTurnTimer(t *testing.T) {
	h, st := newTestHubWithConfig(t, room.Config{
		TurnTimeout:   100 * time.Millisecond,
		FinalizeAfter: time.Hour,
		IdleGrace:     time.Hour,
	})
	row := persistRoom(t, st, "TIMER001")
	ctx := context.Background()

	// Rolls decided, first scripted action pending when the session was lost.
	rolls := []draft.Operation{
		{Round: 0, Kind: draft.KindRoll, Team: draft.TeamA, Value: 80, At: time.Now().UTC()},
		{Round: 0, Kind: draft.KindRoll, Team: draft.TeamB, Value: 20, At: time.Now().UTC()},
	}
	for _, op := range rolls {
		require.NoError(t, st.AppendOperation(ctx, row.ID, op))
	}
	require.NoError(t, st.SaveSnapshot(ctx, row.ID, room.StatusInProgress, draft.State{}, false))

	_, err := h.Get(ctx, "TIMER001")
	require.NoError(t, err)

	// The re-armed timer must auto-act for the team on turn.
	require.Eventually(t, func() bool {
		got, err := st.OperationsByRoom(ctx, row.ID)
		return err == nil && len(got) > 2
	}, 2*time.Second, 20*time.Millisecond, "turn timer never fired after recovery")

	got, err := st.OperationsByRoom(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, "ban", got[2].Kind)
	assert.Equal(t, "team_a", got[2].Team)
	assert.Equal(t, "Mirage", got[2].MapName, "timeout acts on the first remaining map in pool order")
}

func TestCompletedRoomRetiresWhenIdle(t *testing.T) {
	h, st := newTestHubWithConfig(t, room.Config{
		TurnTimeout: time.Hour,
		IdleGrace:   50 * time.Millisecond,
	})
	row := persistRoom(t, st, "DONE0001")
	ctx := context.Background()

	ops := []draft.Operation{
		{Round: 0, Kind: draft.KindRoll, Team: draft.TeamA, Value: 80, At: time.Now().UTC()},
		{Round: 0, Kind: draft.KindRoll, Team: draft.TeamB, Value: 20, At: time.Now().UTC()},
		{Round: 1, Kind: draft.KindBan, Team: draft.TeamA, Map: "Mirage", At: time.Now().UTC()},
		{Round: 2, Kind: draft.KindBan, Team: draft.TeamB, Map: "Inferno", At: time.Now().UTC()},
		{Round: 3, Kind: draft.KindPick, Team: draft.TeamA, Map: "Dust2", At: time.Now().UTC()},
		{Round: 4, Kind: draft.KindPick, Team: draft.TeamB, Map: "Nuke", At: time.Now().UTC()},
		{Round: 5, Kind: draft.KindBan, Team: draft.TeamA, Map: "Anubis", At: time.Now().UTC()},
		{Round: 6, Kind: draft.KindBan, Team: draft.TeamB, Map: "Vertigo", At: time.Now().UTC()},
		{Round: 7, Kind: draft.KindAuto, Map: "Ancient", At: time.Now().UTC()},
	}
	for _, op := range ops {
		require.NoError(t, st.AppendOperation(ctx, row.ID, op))
	}
	require.NoError(t, st.SaveSnapshot(ctx, row.ID, room.StatusCompleted, draft.State{}, true))

	rm1, err := h.Get(ctx, "DONE0001")
	require.NoError(t, err)

	// With no subscribers the finished session retires itself; the next
	// lookup recovers a fresh one.
	require.Eventually(t, func() bool {
		rm2, err := h.Get(context.Background(), "DONE0001")
		return err == nil && rm2 != rm1
	}, 2*time.Second, 20*time.Millisecond, "completed session never left the registry")
}

func TestRemoveForgetsSession(t *testing.T) {
	h, st := newTestHub(t)
	row := persistRoom(t, st, "GONE1234")

	state := draft.NewState(testPool, draft.DefaultScript(len(testPool)))
	rm1, err := h.Create(context.Background(), room.Options{ID: row.ID, Code: row.Code, State: state})
	require.NoError(t, err)

	h.Inbox() <- Remove{Code: "GONE1234"}

	// The next lookup recovers a fresh session from the store.
	require.Eventually(t, func() bool {
		rm2, err := h.Get(context.Background(), "GONE1234")
		return err == nil && rm2 != rm1
	}, time.Second, 10*time.Millisecond)
}
