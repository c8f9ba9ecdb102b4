// internal/server/server_test.go
package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JayAllanBaker/KingsCorner/internal/auth"
	"github.com/JayAllanBaker/KingsCorner/internal/config"
	"github.com/JayAllanBaker/KingsCorner/internal/game"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	auth.Init("test-secret")
	cfg := config.Config{HTTPAddr: ":0", JWTSecret: "test-secret", AIMoveDelay: 0}
	return New(cfg)
}

func bearerFor(t *testing.T, username string) (uuid.UUID, string) {
	t.Helper()
	uid := uuid.New()
	token, err := auth.CreateToken(uid, username)
	require.NoError(t, err)
	return uid, "Bearer " + token
}

func doJSON(t *testing.T, s *Server, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/api/games", "", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, s, http.MethodPost, "/api/games", "Bearer not-a-token", map[string]string{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateGameInvalidDifficulty(t *testing.T) {
	s := newTestServer(t)
	_, bearer := bearerFor(t, "alice")

	rec := doJSON(t, s, http.MethodPost, "/api/games", bearer, map[string]string{"difficulty": "IMPOSSIBLE"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateAndPlayGame(t *testing.T) {
	s := newTestServer(t)
	_, bearer := bearerFor(t, "alice")

	rec := doJSON(t, s, http.MethodPost, "/api/games", bearer, map[string]string{
		"difficulty": "HARD",
		"seed":       "test-seed",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var st game.SyncGameState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.True(t, st.Started)
	assert.Equal(t, 34, st.DeckCount)
	require.Len(t, st.Players, 2)
	assert.True(t, st.Players[1].IsAI)

	gamePath := "/api/games/" + st.GameID.String()

	// Fetch state.
	rec = doJSON(t, s, http.MethodGet, gamePath, bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Draw a card.
	rec = doJSON(t, s, http.MethodPost, gamePath+"/actions", bearer, map[string]string{"type": "draw"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 33, st.DeckCount)

	// Undo the draw.
	rec = doJSON(t, s, http.MethodPost, gamePath+"/undo", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	assert.Equal(t, 34, st.DeckCount)

	// Nothing left to undo.
	rec = doJSON(t, s, http.MethodPost, gamePath+"/undo", bearer, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGameAccessControl(t *testing.T) {
	s := newTestServer(t)
	_, alice := bearerFor(t, "alice")
	_, mallory := bearerFor(t, "mallory")

	rec := doJSON(t, s, http.MethodPost, "/api/games", alice, map[string]string{"seed": "test-seed"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var st game.SyncGameState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))

	rec = doJSON(t, s, http.MethodGet, "/api/games/"+st.GameID.String(), mallory, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, s, http.MethodGet, "/api/games/"+uuid.NewString(), alice, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
