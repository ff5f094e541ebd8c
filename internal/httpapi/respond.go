package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/csdraft/mapban-backend/internal/auth"
	"github.com/csdraft/mapban-backend/internal/draft"
	"github.com/csdraft/mapban-backend/internal/hub"
	"github.com/csdraft/mapban-backend/internal/room"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// writeError maps sentinel errors onto the rejection taxonomy. Every
// user-visible failure carries a structured reason; nothing fails silently.
func writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "internal"

	switch {
	case errors.Is(err, hub.ErrRoomNotFound),
		errors.Is(err, room.ErrUnknownParticipant),
		errors.Is(err, draft.ErrMapNotInPool):
		status, code = http.StatusNotFound, "not_found"

	case errors.Is(err, draft.ErrWrongTurn),
		errors.Is(err, draft.ErrPhaseClosed),
		errors.Is(err, draft.ErrNotAllReady):
		status, code = http.StatusConflict, "turn_violation"

	case errors.Is(err, draft.ErrMapResolved),
		errors.Is(err, draft.ErrAlreadyRolled),
		errors.Is(err, room.ErrRoomClosed),
		errors.Is(err, room.ErrRoomFull):
		status, code = http.StatusConflict, "conflict"

	case errors.Is(err, draft.ErrUnknownTeam),
		errors.Is(err, draft.ErrUnknownKind),
		errors.Is(err, room.ErrNotOnTeam),
		errors.Is(err, room.ErrTeamsIncomplete),
		errors.Is(err, errBadRequest):
		status, code = http.StatusBadRequest, "validation"

	case errors.Is(err, auth.ErrBadCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		status, code = http.StatusUnauthorized, "unauthorized"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: false,
		Error:   &errorBody{Code: code, Message: err.Error()},
	})
}

var errBadRequest = errors.New("malformed request body")

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errBadRequest
	}
	return nil
}
