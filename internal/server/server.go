// internal/server/server.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/JayAllanBaker/KingsCorner/engine"
	"github.com/JayAllanBaker/KingsCorner/engine/ai"
	"github.com/JayAllanBaker/KingsCorner/internal/auth"
	"github.com/JayAllanBaker/KingsCorner/internal/cache"
	"github.com/JayAllanBaker/KingsCorner/internal/config"
	"github.com/JayAllanBaker/KingsCorner/internal/database"
	"github.com/JayAllanBaker/KingsCorner/internal/game"
	"github.com/JayAllanBaker/KingsCorner/internal/models"
)

// Server owns the HTTP API, the WebSocket hub, and the in-memory registry of
// running games.
type Server struct {
	cfg config.Config
	mux *http.ServeMux
	hub *Hub

	gamesMu sync.RWMutex
	games   map[uuid.UUID]*game.KingsGame
}

// New builds the server and registers all routes.
func New(cfg config.Config) *Server {
	s := &Server{
		cfg:   cfg,
		mux:   http.NewServeMux(),
		hub:   NewHub(),
		games: make(map[uuid.UUID]*game.KingsGame),
	}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("POST /api/games", s.requireAuth(s.handleCreateGame))
	s.mux.HandleFunc("GET /api/games/{id}", s.requireAuth(s.handleGetGame))
	s.mux.HandleFunc("POST /api/games/{id}/actions", s.requireAuth(s.handleGameAction))
	s.mux.HandleFunc("POST /api/games/{id}/undo", s.requireAuth(s.handleUndo))
	s.mux.HandleFunc("GET /api/games/{id}/history", s.requireAuth(s.handleGameHistory))
	s.mux.HandleFunc("GET /api/daily", s.requireAuth(s.handleDailyChallenge))
	s.mux.HandleFunc("POST /api/daily/scores", s.requireAuth(s.handleDailySubmit))
	s.mux.HandleFunc("GET /api/daily/leaderboard", s.requireAuth(s.handleDailyLeaderboard))
	s.mux.HandleFunc("GET /api/matches", s.requireAuth(s.handleMatchHistory))
	s.mux.HandleFunc("/ws", s.hub.HandleWS)

	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// statusRecorder captures the response code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// authHandler is an authenticated endpoint.
type authHandler func(w http.ResponseWriter, r *http.Request, claims *auth.Claims)

// requireAuth extracts and validates the bearer token.
func (s *Server) requireAuth(next authHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := auth.ParseToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r, claims)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if database.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || len(req.Password) < 6 {
		writeError(w, http.StatusBadRequest, "username required and password must be at least 6 characters")
		return
	}
	if _, err := database.GetUserByUsername(r.Context(), req.Username); err == nil {
		writeError(w, http.StatusConflict, "username already taken")
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not hash password")
		return
	}
	user, err := database.CreateUser(r.Context(), req.Username, hash)
	if err != nil {
		logrus.Errorf("create user: %v", err)
		writeError(w, http.StatusInternalServerError, "could not create user")
		return
	}
	token, err := auth.CreateToken(user.ID, user.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create token")
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if database.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := database.GetUserByUsername(r.Context(), req.Username)
	if errors.Is(err, database.ErrNotFound) || (err == nil && !auth.CheckPassword(user.PasswordHash, req.Password)) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		logrus.Errorf("login lookup: %v", err)
		writeError(w, http.StatusInternalServerError, "could not look up user")
		return
	}
	token, err := auth.CreateToken(user.ID, user.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create token")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: user})
}

type createGameRequest struct {
	Mode       string `json:"mode"`       // AI (default) or DAILY.
	Difficulty string `json:"difficulty"` // EASY, STANDARD, HARD.
	Seed       string `json:"seed"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Mode == "" {
		req.Mode = "AI"
	}
	if req.Difficulty == "" {
		req.Difficulty = string(ai.Standard)
	}
	difficulty := ai.Difficulty(req.Difficulty)
	switch difficulty {
	case ai.Easy, ai.Standard, ai.Hard:
	default:
		writeError(w, http.StatusBadRequest, "difficulty must be EASY, STANDARD, or HARD")
		return
	}

	seed := req.Seed
	switch req.Mode {
	case "AI":
		if seed == "" {
			seed = uuid.NewString()
		}
	case "DAILY":
		if database.DB == nil {
			writeError(w, http.StatusServiceUnavailable, "daily challenges need persistence")
			return
		}
		challenge, err := database.GetOrCreateDailyChallenge(r.Context(), time.Now().UTC().Format("2006-01-02"))
		if err != nil {
			logrus.Errorf("daily challenge: %v", err)
			writeError(w, http.StatusInternalServerError, "could not load daily challenge")
			return
		}
		seed = challenge.Seed
	default:
		writeError(w, http.StatusBadRequest, "mode must be AI or DAILY")
		return
	}

	g := game.NewKingsGame(seed, engine.DefaultRules(), difficulty)
	g.Mode = req.Mode
	g.AIMoveDelay = s.cfg.AIMoveDelay

	human := &models.Player{
		ID:        claims.UserID,
		Connected: true,
		User:      &models.User{ID: claims.UserID, Username: claims.Username},
	}
	bot := &models.Player{ID: uuid.New(), IsAI: true, AIDifficulty: string(difficulty)}
	g.AddPlayer(human)
	g.AddPlayer(bot)

	gameID := g.ID
	g.BroadcastFn = func(ev game.GameEvent) { s.hub.BroadcastToGame(gameID, ev) }
	g.BroadcastToPlayerFn = func(playerID uuid.UUID, ev game.GameEvent) { s.hub.SendToUser(playerID, ev) }
	g.OnGameEnd = func(id uuid.UUID, _ uuid.UUID, _ map[uuid.UUID]int) { s.removeGameLater(id) }

	if database.DB != nil {
		match := &models.Match{
			ID:         uuid.New(),
			Mode:       req.Mode,
			Player1ID:  claims.UserID,
			Seed:       seed,
			Difficulty: string(difficulty),
		}
		if err := database.CreateMatch(r.Context(), match); err != nil {
			logrus.Errorf("create match: %v", err)
			writeError(w, http.StatusInternalServerError, "could not create match")
			return
		}
		g.MatchID = match.ID
	}

	g.Start()

	s.gamesMu.Lock()
	s.games[g.ID] = g
	s.gamesMu.Unlock()

	writeJSON(w, http.StatusCreated, g.BuildSyncState())
}

// removeGameLater drops a finished game from the registry after a grace
// period so clients can still fetch the final state.
func (s *Server) removeGameLater(id uuid.UUID) {
	time.AfterFunc(time.Hour, func() {
		s.gamesMu.Lock()
		delete(s.games, id)
		s.gamesMu.Unlock()
	})
}

// lookupGame resolves a game the requesting user is seated in.
func (s *Server) lookupGame(w http.ResponseWriter, r *http.Request, claims *auth.Claims) *game.KingsGame {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return nil
	}
	s.gamesMu.RLock()
	g, ok := s.games[id]
	s.gamesMu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "game not found")
		return nil
	}
	if _, seated := g.PlayerToEngine[claims.UserID]; !seated {
		writeError(w, http.StatusForbidden, "not a participant in this game")
		return nil
	}
	return g
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	g := s.lookupGame(w, r, claims)
	if g == nil {
		return
	}
	writeJSON(w, http.StatusOK, g.BuildSyncState())
}

func (s *Server) handleGameAction(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	g := s.lookupGame(w, r, claims)
	if g == nil {
		return
	}
	var action models.GameAction
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		writeError(w, http.StatusBadRequest, "invalid action body")
		return
	}
	g.HandlePlayerAction(claims.UserID, action)
	writeJSON(w, http.StatusOK, g.BuildSyncState())
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	g := s.lookupGame(w, r, claims)
	if g == nil {
		return
	}
	if !g.Undo(claims.UserID) {
		writeError(w, http.StatusConflict, "nothing to undo")
		return
	}
	writeJSON(w, http.StatusOK, g.BuildSyncState())
}

func (s *Server) handleGameHistory(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	g := s.lookupGame(w, r, claims)
	if g == nil {
		return
	}
	if cache.Rdb == nil {
		writeError(w, http.StatusServiceUnavailable, "action history not configured")
		return
	}
	records, err := cache.GameActionHistory(r.Context(), g.ID)
	if err != nil {
		logrus.Errorf("game history: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleDailyChallenge(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	if database.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}
	challenge, err := database.GetOrCreateDailyChallenge(r.Context(), time.Now().UTC().Format("2006-01-02"))
	if err != nil {
		logrus.Errorf("daily challenge: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load daily challenge")
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

type dailyScoreRequest struct {
	ChallengeID int  `json:"challengeId"`
	Score       int  `json:"score"`
	Moves       int  `json:"moves"`
	TimeSeconds int  `json:"timeSeconds"`
	Completed   bool `json:"completed"`
}

func (s *Server) handleDailySubmit(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	if database.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}
	var req dailyScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ChallengeID <= 0 {
		writeError(w, http.StatusBadRequest, "challengeId required")
		return
	}
	score := &models.DailyChallengeScore{
		ChallengeID: req.ChallengeID,
		UserID:      claims.UserID,
		Score:       req.Score,
		Moves:       req.Moves,
		TimeSeconds: req.TimeSeconds,
		Completed:   req.Completed,
	}
	if err := database.SubmitDailyChallengeScore(r.Context(), score); err != nil {
		logrus.Errorf("submit daily score: %v", err)
		writeError(w, http.StatusInternalServerError, "could not submit score")
		return
	}
	writeJSON(w, http.StatusCreated, score)
}

func (s *Server) handleDailyLeaderboard(w http.ResponseWriter, r *http.Request, _ *auth.Claims) {
	if database.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}
	challengeID, err := strconv.Atoi(r.URL.Query().Get("challengeId"))
	if err != nil || challengeID <= 0 {
		writeError(w, http.StatusBadRequest, "challengeId query parameter required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	scores, err := database.DailyChallengeLeaderboard(r.Context(), challengeID, limit)
	if err != nil {
		logrus.Errorf("leaderboard: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

func (s *Server) handleMatchHistory(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	if database.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "persistence not configured")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	matches, err := database.GetMatchHistory(r.Context(), claims.UserID, limit)
	if err != nil {
		logrus.Errorf("match history: %v", err)
		writeError(w, http.StatusInternalServerError, "could not load match history")
		return
	}
	writeJSON(w, http.StatusOK, matches)
}
