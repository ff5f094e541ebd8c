package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := New("admin", "hunter2", "test-secret", time.Hour)
	require.NoError(t, err)
	return s
}

func TestLoginAndVerify(t *testing.T) {
	s := newTestService(t)

	token, err := s.Login("admin", "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestService(t)

	_, err := s.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = s.Login("root", "hunter2")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	s := newTestService(t)
	_, err := s.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := New("admin", "hunter2", "other-secret", time.Hour)
	require.NoError(t, err)
	token, err := other.Login("admin", "hunter2")
	require.NoError(t, err)

	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	s := newTestService(t)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := s.Middleware(next)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := s.Login("admin", "hunter2")
	require.NoError(t, err)
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
