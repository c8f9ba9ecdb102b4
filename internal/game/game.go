// internal/game/game.go
package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/JayAllanBaker/KingsCorner/engine"
	"github.com/JayAllanBaker/KingsCorner/engine/ai"
	"github.com/JayAllanBaker/KingsCorner/internal/cache"
	"github.com/JayAllanBaker/KingsCorner/internal/database"
	"github.com/JayAllanBaker/KingsCorner/internal/models"
)

// OnGameEndFunc is the callback executed when a game finishes. It receives
// the game ID, the winner's player ID (Nil on a draw), and the final scores.
type OnGameEndFunc func(gameID uuid.UUID, winner uuid.UUID, scores map[uuid.UUID]int)

// GameEventType represents the type of a game-related event broadcast to clients.
type GameEventType string

// Constants defining the GameEvent types used for client communication.
const (
	EventGameStateSync GameEventType = "game_state"     // Full state sync.
	EventPlayerMove    GameEventType = "player_move"    // Public: an accepted action.
	EventInvalidAction GameEventType = "invalid_action" // Private: action was rejected.
	EventPlayerTurn    GameEventType = "game_player_turn"
	EventUndoApplied   GameEventType = "undo_applied"
	EventGameEnd       GameEventType = "game_end"
)

// EventUser identifies a user within a GameEvent payload.
type EventUser struct {
	ID uuid.UUID `json:"id"`
}

// GameEvent is the standard structure for broadcasting game state changes.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	User    *EventUser             `json:"user,omitempty"`
	Action  *engine.Action         `json:"action,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Payload map[string]interface{} `json:"payload,omitempty"`
	State   *SyncGameState         `json:"state,omitempty"`
}

// maxUndoDepth bounds the per-turn undo history.
const maxUndoDepth = 10

// aiMoveCap bounds a single AI turn. A player can never make more
// consecutive legal placements than there are cards in play.
const aiMoveCap = engine.DeckSize * 2

// KingsGame wraps the engine state for a single match: player identity,
// turn orchestration, the AI opponent, undo history, and event broadcast.
type KingsGame struct {
	ID      uuid.UUID // Unique identifier for this game instance.
	MatchID uuid.UUID // Persistent match row this game belongs to.

	Mode       string // AI, RANKED, FRIEND, DAILY.
	Seed       string
	Rules      engine.Rules
	Difficulty ai.Difficulty

	Players        []*models.Player
	PlayerToEngine map[uuid.UUID]uint8
	EngineToPlayer [engine.MaxPlayers]uuid.UUID

	// Engine holds the authoritative game state.
	Engine engine.GameState

	// AI is the opponent's move selector. Replaceable before Start for
	// deterministic play.
	AI          *ai.Selector
	AIMoveDelay time.Duration // Pacing between AI moves; 0 runs the turn inline.

	// undoStack holds snapshots taken before each accepted human action this
	// turn. Cleared when the turn ends.
	undoStack []engine.Snapshot

	actionIndex      int
	aiTurnInProgress bool

	StartedAt time.Time
	Started   bool
	GameOver  bool

	Mu sync.Mutex // Protects all mutable state above.

	BroadcastFn         func(ev GameEvent)
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)
	OnGameEnd           OnGameEndFunc
}

// NewKingsGame creates a game instance for the given seed, rules, and AI
// difficulty. Players are added with AddPlayer before Start.
func NewKingsGame(seed string, rules engine.Rules, difficulty ai.Difficulty) *KingsGame {
	id, _ := uuid.NewRandom()
	return &KingsGame{
		ID:             id,
		Seed:           seed,
		Rules:          rules,
		Difficulty:     difficulty,
		AI:             ai.New(difficulty, rand.New(rand.NewSource(time.Now().UnixNano()))),
		AIMoveDelay:    700 * time.Millisecond,
		PlayerToEngine: make(map[uuid.UUID]uint8),
	}
}

// AddPlayer seats a player. Seat order determines engine index: the first
// player added moves first.
func (g *KingsGame) AddPlayer(p *models.Player) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	for i, existing := range g.Players {
		if existing.ID == p.ID {
			// Reconnect: refresh the connection, keep the seat.
			g.Players[i].Conn = p.Conn
			g.Players[i].Connected = true
			logrus.Infof("Game %s: player %s reconnected", g.ID, p.ID)
			return
		}
	}
	if g.Started {
		logrus.Warnf("Game %s: player %s cannot join a started game", g.ID, p.ID)
		return
	}
	g.Players = append(g.Players, p)
}

// Start deals the game and begins the first turn. The number of seated
// players must match the rules.
func (g *KingsGame) Start() {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Started || g.GameOver {
		logrus.Warnf("Game %s: Start called in invalid state (started=%v over=%v)", g.ID, g.Started, g.GameOver)
		return
	}
	if len(g.Players) != int(g.Rules.NumPlayers) && !(g.Rules.NumPlayers == 0 && len(g.Players) == engine.MaxPlayers) {
		logrus.Errorf("Game %s: need %d players, have %d", g.ID, g.Rules.NumPlayers, len(g.Players))
		return
	}

	for i, p := range g.Players {
		g.PlayerToEngine[p.ID] = uint8(i)
		g.EngineToPlayer[i] = p.ID
	}

	g.Engine = engine.NewGame(g.Seed, g.Rules)
	g.Started = true
	g.StartedAt = time.Now()
	g.logAction(uuid.Nil, "game_start", map[string]interface{}{"seed": g.Seed, "difficulty": string(g.Difficulty)})

	g.broadcastSyncState()
	g.broadcastPlayerTurn()
	g.persistActiveState()
}

// HandlePlayerAction validates and applies a client-submitted action.
// Rejections never mutate state; the submitting player gets a private
// invalid_action event carrying the engine's error code.
func (g *KingsGame) HandlePlayerAction(playerID uuid.UUID, action models.GameAction) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.GameOver {
		g.rejectAction(playerID, action, engine.ErrGameOver)
		return
	}
	if !g.Started {
		logrus.Warnf("Game %s: action %s from %s before start", g.ID, action.ActionType, playerID)
		return
	}
	player := g.getPlayerByID(playerID)
	if player == nil {
		logrus.Warnf("Game %s: action from unknown player %s", g.ID, playerID)
		return
	}
	engineIdx, ok := g.PlayerToEngine[playerID]
	if !ok {
		logrus.Warnf("Game %s: player %s has no engine seat", g.ID, playerID)
		return
	}
	if g.aiTurnInProgress {
		g.rejectAction(playerID, action, "AITurnInProgress")
		return
	}
	if g.Engine.CurrentPlayer != engineIdx {
		g.rejectAction(playerID, action, "NotYourTurn")
		return
	}

	ea := toEngineAction(action)
	snap := g.Engine.Save()
	res := engine.ApplyMove(g.Engine, ea)
	if !res.Valid {
		g.rejectAction(playerID, action, res.Error)
		return
	}
	g.Engine = res.State

	if ea.Type == engine.ActionEndTurn {
		// A committed turn cannot be unwound.
		g.undoStack = g.undoStack[:0]
	} else {
		g.pushUndo(snap)
	}

	g.actionApplied(playerID, ea)

	if g.Engine.IsTerminal() {
		g.endGame()
		return
	}
	if ea.Type == engine.ActionEndTurn {
		g.broadcastPlayerTurn()
		g.maybeRunAITurn()
	}
}

// Undo reverts the acting player's most recent action this turn.
func (g *KingsGame) Undo(playerID uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	engineIdx, ok := g.PlayerToEngine[playerID]
	if !ok || g.GameOver || !g.Started || g.aiTurnInProgress {
		return false
	}
	if g.Engine.CurrentPlayer != engineIdx || len(g.undoStack) == 0 {
		return false
	}

	snap := g.undoStack[len(g.undoStack)-1]
	g.undoStack = g.undoStack[:len(g.undoStack)-1]
	g.Engine.Restore(snap)

	g.logAction(playerID, string(EventUndoApplied), nil)
	g.fireEvent(GameEvent{Type: EventUndoApplied, User: &EventUser{ID: playerID}})
	g.broadcastSyncState()
	g.persistActiveState()
	return true
}

// CanUndo reports whether the player has an action to revert.
func (g *KingsGame) CanUndo(playerID uuid.UUID) bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	engineIdx, ok := g.PlayerToEngine[playerID]
	return ok && !g.GameOver && !g.aiTurnInProgress &&
		g.Engine.CurrentPlayer == engineIdx && len(g.undoStack) > 0
}

// IsAITurnInProgress reports whether the AI opponent is currently playing.
func (g *KingsGame) IsAITurnInProgress() bool {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.aiTurnInProgress
}

// maybeRunAITurn starts the AI's turn if the new current player is an AI
// seat. With zero pacing delay the turn runs inline; otherwise it runs on
// its own goroutine so the caller's request returns immediately.
// Assumes lock is held by caller.
func (g *KingsGame) maybeRunAITurn() {
	current := g.getPlayerByID(g.EngineToPlayer[g.Engine.CurrentPlayer])
	if current == nil || !current.IsAI {
		return
	}
	if g.AIMoveDelay == 0 {
		g.runAITurn(current.ID)
		return
	}
	g.aiTurnInProgress = true
	go func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		g.runAITurn(current.ID)
	}()
}

// runAITurn plays out one full AI turn: repeated select/apply until the
// selector draws or has nothing, then end_turn. Assumes lock is held.
func (g *KingsGame) runAITurn(aiPlayerID uuid.UUID) {
	g.aiTurnInProgress = true
	defer func() { g.aiTurnInProgress = false }()

	for i := 0; i < aiMoveCap; i++ {
		if g.GameOver {
			return
		}
		action := g.AI.SelectMove(&g.Engine)
		if action == nil {
			break
		}
		if g.AIMoveDelay > 0 {
			g.Mu.Unlock()
			time.Sleep(g.AIMoveDelay)
			g.Mu.Lock()
			if g.GameOver {
				return
			}
		}
		res := engine.ApplyMove(g.Engine, *action)
		if !res.Valid {
			logrus.Errorf("Game %s: AI produced invalid action %+v (%s)", g.ID, action, res.Error)
			break
		}
		g.Engine = res.State
		g.actionApplied(aiPlayerID, *action)

		if g.Engine.IsTerminal() {
			g.endGame()
			return
		}
		if action.Type == engine.ActionDraw {
			break
		}
	}

	res := engine.ApplyMove(g.Engine, engine.Action{Type: engine.ActionEndTurn})
	if !res.Valid {
		logrus.Errorf("Game %s: AI end_turn rejected (%s)", g.ID, res.Error)
		return
	}
	g.Engine = res.State
	g.actionApplied(aiPlayerID, engine.Action{Type: engine.ActionEndTurn})
	if g.Engine.IsTerminal() {
		g.endGame()
		return
	}
	g.broadcastPlayerTurn()
}

// actionApplied handles the common post-apply bookkeeping for an accepted
// action: history, broadcast, live state persistence. Assumes lock is held.
func (g *KingsGame) actionApplied(playerID uuid.UUID, a engine.Action) {
	g.logAction(playerID, string(a.Type), actionPayload(a))
	g.fireEvent(GameEvent{Type: EventPlayerMove, User: &EventUser{ID: playerID}, Action: &a})
	g.broadcastSyncState()
	g.persistActiveState()
}

// rejectAction sends a private invalid_action event with the error code.
// Assumes lock is held by caller.
func (g *KingsGame) rejectAction(playerID uuid.UUID, action models.GameAction, code string) {
	logrus.Debugf("Game %s: rejected %s from %s: %s", g.ID, action.ActionType, playerID, code)
	g.logAction(playerID, string(EventInvalidAction), map[string]interface{}{
		"action": action.ActionType, "error": code,
	})
	g.fireEventToPlayer(playerID, GameEvent{Type: EventInvalidAction, Error: code})
}

// endGame finalizes a terminal state: persists the result, updates human
// profiles, and notifies everyone. Assumes lock is held by caller.
func (g *KingsGame) endGame() {
	if g.GameOver {
		return
	}
	g.GameOver = true
	g.undoStack = g.undoStack[:0]

	var winnerID uuid.UUID
	if g.Engine.Winner != engine.NoWinner {
		winnerID = g.EngineToPlayer[uint8(g.Engine.Winner)]
	}

	scores := make(map[uuid.UUID]int)
	for i := uint8(0); i < g.Engine.NumActivePlayers(); i++ {
		scores[g.EngineToPlayer[i]] = int(g.Engine.Players[i].Score)
	}

	g.logAction(uuid.Nil, string(EventGameEnd), map[string]interface{}{
		"winner": winnerID.String(),
		"moves":  int(g.Engine.Moves),
	})

	payload := map[string]interface{}{
		"winner":     winnerID.String(),
		"totalMoves": int(g.Engine.Moves),
		"scores":     map[string]int{},
	}
	for pid, score := range scores {
		payload["scores"].(map[string]int)[pid.String()] = score
	}
	g.fireEvent(GameEvent{Type: EventGameEnd, Payload: payload})
	g.broadcastSyncState()

	g.persistFinalResult(winnerID, scores)

	if g.OnGameEnd != nil {
		g.OnGameEnd(g.ID, winnerID, scores)
	}
	logrus.Infof("Game %s: ended, winner %s, %d moves", g.ID, winnerID, g.Engine.Moves)
}

// persistFinalResult writes the match outcome and profile stat updates.
// Assumes lock is held by caller.
func (g *KingsGame) persistFinalResult(winnerID uuid.UUID, scores map[uuid.UUID]int) {
	if database.DB == nil {
		return
	}

	var p1Score, p2Score int
	if len(g.Players) > 0 {
		p1Score = scores[g.Players[0].ID]
	}
	if len(g.Players) > 1 {
		p2Score = scores[g.Players[1].ID]
	}

	// The winner column references users, so only human winners are recorded.
	var winnerRef *uuid.UUID
	if winnerID != uuid.Nil {
		if wp := g.getPlayerByID(winnerID); wp != nil && !wp.IsAI {
			id := winnerID
			winnerRef = &id
		}
	}

	matchID := g.MatchID
	gameID := g.ID
	totalMoves := int(g.Engine.Moves)
	state := g.buildSyncState()

	humans := make([]uuid.UUID, 0, len(g.Players))
	for _, p := range g.Players {
		if !p.IsAI {
			humans = append(humans, p.ID)
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.FinalizeMatch(ctx, matchID, winnerRef, p1Score, p2Score, totalMoves, state); err != nil {
			logrus.Errorf("Game %s: finalize match: %v", gameID, err)
		}
		for _, uid := range humans {
			if err := database.ApplyMatchResult(ctx, uid, uid == winnerID); err != nil {
				logrus.Errorf("Game %s: update profile %s: %v", gameID, uid, err)
			}
		}
		if err := database.DeleteActiveGame(ctx, gameID); err != nil {
			logrus.Errorf("Game %s: delete active game: %v", gameID, err)
		}
	}()
}

// persistActiveState upserts the live state snapshot for resume support.
// Assumes lock is held by caller.
func (g *KingsGame) persistActiveState() {
	if database.DB == nil || g.GameOver {
		return
	}
	state := g.buildSyncState()
	currentTurn := g.EngineToPlayer[g.Engine.CurrentPlayer]
	gameID, matchID := g.ID, g.MatchID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := database.UpsertActiveGame(ctx, gameID, matchID, state, &currentTurn, ""); err != nil {
			logrus.Errorf("Game %s: upsert active state: %v", gameID, err)
		}
	}()
}

// pushUndo appends a snapshot, evicting the oldest past maxUndoDepth.
// Assumes lock is held by caller.
func (g *KingsGame) pushUndo(s engine.Snapshot) {
	if len(g.undoStack) >= maxUndoDepth {
		copy(g.undoStack, g.undoStack[1:])
		g.undoStack = g.undoStack[:maxUndoDepth-1]
	}
	g.undoStack = append(g.undoStack, s)
}

// broadcastPlayerTurn announces whose turn it is. Assumes lock is held.
func (g *KingsGame) broadcastPlayerTurn() {
	if g.GameOver {
		return
	}
	current := g.EngineToPlayer[g.Engine.CurrentPlayer]
	g.fireEvent(GameEvent{
		Type: EventPlayerTurn,
		User: &EventUser{ID: current},
		Payload: map[string]interface{}{
			"round": int(g.Engine.Round),
		},
	})
}

// broadcastSyncState sends the full state to every seated player.
// Assumes lock is held by caller.
func (g *KingsGame) broadcastSyncState() {
	if g.BroadcastToPlayerFn == nil {
		return
	}
	state := g.buildSyncState()
	for _, p := range g.Players {
		if p.IsAI || !p.Connected {
			continue
		}
		st := state
		st.CanUndo = g.canUndoLocked(p.ID)
		g.BroadcastToPlayerFn(p.ID, GameEvent{Type: EventGameStateSync, State: &st})
	}
}

// canUndoLocked is CanUndo without the lock round-trip. Assumes lock is held.
func (g *KingsGame) canUndoLocked(playerID uuid.UUID) bool {
	engineIdx, ok := g.PlayerToEngine[playerID]
	return ok && !g.GameOver && !g.aiTurnInProgress &&
		g.Engine.CurrentPlayer == engineIdx && len(g.undoStack) > 0
}

// fireEvent broadcasts an event to all players. Assumes lock is held.
func (g *KingsGame) fireEvent(ev GameEvent) {
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

// fireEventToPlayer sends an event to one player. Assumes lock is held.
func (g *KingsGame) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn == nil {
		return
	}
	p := g.getPlayerByID(playerID)
	if p != nil && p.Connected && !p.IsAI {
		g.BroadcastToPlayerFn(playerID, ev)
	}
}

// getPlayerByID finds a seated player. Assumes lock is held by caller.
func (g *KingsGame) getPlayerByID(playerID uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// logAction publishes an action record to the Redis history queue.
// Assumes lock is held by caller.
func (g *KingsGame) logAction(actorID uuid.UUID, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorUserID:   actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	go func(rec cache.GameActionRecord) {
		if cache.Rdb == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := cache.PublishGameAction(ctx, rec); err != nil {
			logrus.Errorf("Game %s: publish action %d (%s): %v", rec.GameID, rec.ActionIndex, rec.ActionType, err)
		}
	}(record)
}

// toEngineAction converts the client action envelope into an engine action.
func toEngineAction(a models.GameAction) engine.Action {
	ea := engine.Action{Type: engine.ActionType(a.ActionType), CardID: a.CardID}
	if a.From != nil {
		ea.From = &engine.PileRef{Type: engine.PileType(a.From.Type), Index: a.From.Index}
	}
	if a.To != nil {
		ea.To = &engine.PileRef{Type: engine.PileType(a.To.Type), Index: a.To.Index}
	}
	return ea
}

// actionPayload flattens an action for the history record.
func actionPayload(a engine.Action) map[string]interface{} {
	p := map[string]interface{}{}
	if a.CardID != "" {
		p["cardId"] = a.CardID
	}
	if a.From != nil {
		p["from"] = map[string]interface{}{"type": string(a.From.Type), "index": a.From.Index}
	}
	if a.To != nil {
		p["to"] = map[string]interface{}{"type": string(a.To.Type), "index": a.To.Index}
	}
	return p
}
