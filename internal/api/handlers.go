package api

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"trivia-arena/internal/arena"
	"trivia-arena/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Handler methods for routerHandlers
// These are used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"matches":       h.registry.MatchCount(),
		"frozenMatches": h.registry.FrozenCount(),
		"wsClients":     h.hub.ClientCount(),
	})
}

func (h *routerHandlers) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	// Body is optional; an empty body means a generated id
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	if _, err := h.registry.CreateMatch(id, h.hub.BroadcastFunc(id)); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}

	writeJSON(w, map[string]string{"matchId": id})
}

func (h *routerHandlers) handleStartMatch(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	journalPath := ""
	if h.journalDir != "" {
		journalPath = filepath.Join(h.journalDir, matchID+".jsonl")
	}

	if err := h.registry.StartMatch(matchID, journalPath); err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleStopMatch(w http.ResponseWriter, r *http.Request) {
	h.registry.StopMatch(chi.URLParam(r, "matchID"))
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"playerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.PlayerID == "" {
		writeError(w, "playerId is required", http.StatusBadRequest)
		return
	}

	m, ok := h.registry.Match(chi.URLParam(r, "matchID"))
	if !ok {
		writeError(w, "Match not found", http.StatusNotFound)
		return
	}
	if err := m.AddPlayer(req.PlayerID); err != nil {
		writeError(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleLeave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string `json:"playerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if m, ok := h.registry.Match(chi.URLParam(r, "matchID")); ok {
		m.RemovePlayer(req.PlayerID)
	}
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleLoadArena(w http.ResponseWriter, r *http.Request) {
	m, ok := h.registry.Match(chi.URLParam(r, "matchID"))
	if !ok {
		writeError(w, "Match not found", http.StatusNotFound)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	doc, err := arena.ParseConfigDocument(raw)
	if err != nil {
		writeError(w, "Invalid arena config: "+err.Error(), http.StatusBadRequest)
		return
	}

	m.LoadArena(doc)
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	m, ok := h.registry.Match(chi.URLParam(r, "matchID"))
	if !ok {
		writeError(w, "Match not found", http.StatusNotFound)
		return
	}
	writeJSON(w, m.Snapshot())
}

func (h *routerHandlers) handleMove(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string  `json:"playerId"`
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
		DX       float64 `json:"dx"`
		DY       float64 `json:"dy"`
		Seq      uint32  `json:"seq"`
		ClientTS int64   `json:"clientTs"` // Unix milliseconds
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	// Inputs for unknown matches or players are dropped silently; a cheater
	// learns nothing from the response.
	h.registry.QueueMovement(chi.URLParam(r, "matchID"), game.MovementInput{
		PlayerID: req.PlayerID,
		X:        req.X,
		Y:        req.Y,
		DX:       req.DX,
		DY:       req.DY,
		Seq:      req.Seq,
		ClientTS: time.UnixMilli(req.ClientTS),
	})
	writeJSON(w, map[string]bool{"queued": true})
}

func (h *routerHandlers) handleFire(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string  `json:"playerId"`
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
		DirX     float64 `json:"dirX"`
		DirY     float64 `json:"dirY"`
		ClientTS int64   `json:"clientTs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	h.registry.QueueFire(chi.URLParam(r, "matchID"), game.FireInput{
		PlayerID: req.PlayerID,
		X:        req.X,
		Y:        req.Y,
		DirX:     req.DirX,
		DirY:     req.DirY,
		ClientTS: time.UnixMilli(req.ClientTS),
	})
	writeJSON(w, map[string]bool{"queued": true})
}

func (h *routerHandlers) handleCheckHit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TargetID string  `json:"targetId"`
		X        float64 `json:"x"`
		Y        float64 `json:"y"`
		ClientTS int64   `json:"clientTs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	m, ok := h.registry.Match(chi.URLParam(r, "matchID"))
	if !ok {
		writeError(w, "Match not found", http.StatusNotFound)
		return
	}

	hit, debug, err := m.CheckHit(req.TargetID, req.X, req.Y, time.UnixMilli(req.ClientTS))
	if err != nil {
		writeError(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]interface{}{"hit": hit, "debug": debug})
}

func (h *routerHandlers) handleProjectileImpact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	h.registry.NotifyProjectileImpact(chi.URLParam(r, "matchID"), arena.Vec2{X: req.X, Y: req.Y})
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleTriggerLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TriggerID string `json:"triggerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.TriggerID == "" {
		writeError(w, "triggerId is required", http.StatusBadRequest)
		return
	}

	h.registry.TriggerLink(chi.URLParam(r, "matchID"), req.TriggerID)
	writeJSON(w, map[string]bool{"success": true})
}

func (h *routerHandlers) handleQuizOutcome(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID   string `json:"playerId"`
		QuestionID string `json:"questionId"`
		Correct    bool   `json:"correct"`
		AnswerMs   int64  `json:"answerTimeMs"`
		AllottedMs int64  `json:"allottedMs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.PlayerID == "" {
		writeError(w, "playerId is required", http.StatusBadRequest)
		return
	}

	h.registry.SubmitQuizOutcome(chi.URLParam(r, "matchID"), game.QuizOutcome{
		PlayerID:   req.PlayerID,
		QuestionID: req.QuestionID,
		Correct:    req.Correct,
		AnswerTime: time.Duration(req.AnswerMs) * time.Millisecond,
		Allotted:   time.Duration(req.AllottedMs) * time.Millisecond,
	})
	writeJSON(w, map[string]bool{"queued": true})
}

// Helper functions (package-level for reuse)

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
