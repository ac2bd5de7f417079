// Package http exposes the arena engine over a JSON REST gateway plus a
// server-sent-events stream for live match delivery.
package http

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/louisbranch/gridfall/internal/arena/board"
	"github.com/louisbranch/gridfall/internal/arena/engine"
	"github.com/louisbranch/gridfall/internal/arena/event"
	"github.com/louisbranch/gridfall/internal/arena/session"
	"github.com/louisbranch/gridfall/internal/storage"
)

// MapCatalog lists the names the map repository can serve.
type MapCatalog interface {
	Names() []string
}

// Handler serves the gateway routes.
type Handler struct {
	engine  *engine.Engine
	hub     *event.Hub
	journal storage.JournalStore
	results storage.MatchResultStore
	catalog MapCatalog
}

// New builds the gateway router. Journal, results and catalog are
// optional; their routes answer 404 when absent.
func New(eng *engine.Engine, hub *event.Hub, journal storage.JournalStore, results storage.MatchResultStore, catalog MapCatalog) http.Handler {
	h := &Handler{engine: eng, hub: hub, journal: journal, results: results, catalog: catalog}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/maps", h.listMaps)
		r.Get("/results", h.listResults)
		r.Get("/results/{sessionID}", h.getResult)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.createSession)
			r.Get("/", h.listSessions)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", h.getSession)
				r.Get("/events", h.streamEvents)
				r.Get("/journal", h.listJournal)
				r.Get("/reachable", h.reachable)
				r.Get("/adjacent", h.adjacent)

				r.Post("/join", h.join)
				r.Post("/virtual", h.addVirtual)
				r.Post("/start", h.start)
				r.Post("/rename", h.rename)
				r.Post("/leave", h.leave)

				r.Post("/move", h.move)
				r.Post("/end-turn", h.endTurn)
				r.Post("/door", h.toggleDoor)
				r.Post("/wall", h.breakWall)
				r.Post("/drop", h.dropItem)

				r.Post("/combat", h.startCombat)
				r.Post("/combat/attack", h.attack)
				r.Post("/combat/evade", h.evade)
			})
		})
	})
	return r
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MapName     string `json:"map_name"`
		Elimination bool   `json:"elimination"`
		EntryFee    int64  `json:"entry_fee"`
	}
	if !decode(w, r, &req) {
		return
	}
	id, err := h.engine.CreateSession(r.Context(), engine.CreateSessionInput{
		MapName:     req.MapName,
		Elimination: req.Elimination,
		EntryFee:    req.EntryFee,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": h.engine.Sessions()})
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.SessionView(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) reachable(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.Reachable(chi.URLParam(r, "sessionID"), r.URL.Query().Get("channel_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) adjacent(w http.ResponseWriter, r *http.Request) {
	view, err := h.engine.Adjacent(chi.URLParam(r, "sessionID"), r.URL.Query().Get("channel_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID     string `json:"channel_id"`
		Name          string `json:"name"`
		Quick         bool   `json:"quick"`
		AttackHighDie bool   `json:"attack_high_die"`
	}
	if !decode(w, r, &req) {
		return
	}
	name, err := h.engine.Join(r.Context(), engine.JoinInput{
		SessionID:     chi.URLParam(r, "sessionID"),
		ChannelID:     req.ChannelID,
		Name:          req.Name,
		Quick:         req.Quick,
		AttackHighDie: req.AttackHighDie,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name})
}

func (h *Handler) addVirtual(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Profile string `json:"profile"`
	}
	if !decode(w, r, &req) {
		return
	}
	var profile session.Profile
	switch strings.ToLower(req.Profile) {
	case "aggressive":
		profile = session.ProfileAggressive
	case "defensive":
		profile = session.ProfileDefensive
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("INVALID_PROFILE", fmt.Sprintf("unknown virtual profile %q", req.Profile)))
		return
	}
	name, err := h.engine.AddVirtual(r.Context(), engine.AddVirtualInput{
		SessionID: chi.URLParam(r, "sessionID"),
		Name:      req.Name,
		Profile:   profile,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name})
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.StartSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"started": true})
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID string `json:"channel_id"`
		Name      string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	name, err := h.engine.Rename(r.Context(), chi.URLParam(r, "sessionID"), req.ChannelID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name})
}

func (h *Handler) leave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID string `json:"channel_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.engine.Leave(r.Context(), chi.URLParam(r, "sessionID"), req.ChannelID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"left": true})
}

func (h *Handler) move(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID string `json:"channel_id"`
		X         int    `json:"x"`
		Y         int    `json:"y"`
	}
	if !decode(w, r, &req) {
		return
	}
	err := h.engine.Move(r.Context(), chi.URLParam(r, "sessionID"), req.ChannelID, board.Coord{X: req.X, Y: req.Y})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"moving": true})
}

func (h *Handler) endTurn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID string `json:"channel_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.engine.EndTurn(r.Context(), chi.URLParam(r, "sessionID"), req.ChannelID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ended": true})
}

func (h *Handler) toggleDoor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID string `json:"channel_id"`
		X         int    `json:"x"`
		Y         int    `json:"y"`
	}
	if !decode(w, r, &req) {
		return
	}
	err := h.engine.ToggleDoor(r.Context(), chi.URLParam(r, "sessionID"), req.ChannelID, board.Coord{X: req.X, Y: req.Y})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"toggled": true})
}

func (h *Handler) breakWall(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID string `json:"channel_id"`
		X         int    `json:"x"`
		Y         int    `json:"y"`
	}
	if !decode(w, r, &req) {
		return
	}
	err := h.engine.BreakWall(r.Context(), chi.URLParam(r, "sessionID"), req.ChannelID, board.Coord{X: req.X, Y: req.Y})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"broken": true})
}

func (h *Handler) dropItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID string `json:"channel_id"`
		Category  string `json:"category"`
	}
	if !decode(w, r, &req) {
		return
	}
	err := h.engine.DropItem(r.Context(), chi.URLParam(r, "sessionID"), req.ChannelID, board.ItemCategory(req.Category))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"dropped": true})
}

func (h *Handler) startCombat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID string `json:"channel_id"`
		Target    string `json:"target"`
	}
	if !decode(w, r, &req) {
		return
	}
	err := h.engine.StartCombat(r.Context(), chi.URLParam(r, "sessionID"), req.ChannelID, req.Target)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"fighting": true})
}

func (h *Handler) attack(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID string `json:"channel_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.engine.Attack(r.Context(), chi.URLParam(r, "sessionID"), req.ChannelID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"attacked": true})
}

func (h *Handler) evade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID string `json:"channel_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.engine.Evade(r.Context(), chi.URLParam(r, "sessionID"), req.ChannelID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"evaded": true})
}

func (h *Handler) listJournal(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		http.NotFound(w, r)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, next, err := h.journal.ListEntries(r.Context(), chi.URLParam(r, "sessionID"), storage.JournalPage{
		Token: r.URL.Query().Get("token"),
		Limit: limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	type entryBody struct {
		Seq           uint64          `json:"seq"`
		Timestamp     string          `json:"timestamp"`
		Type          string          `json:"type"`
		ParticipantID string          `json:"participant_id,omitempty"`
		Payload       json.RawMessage `json:"payload,omitempty"`
	}
	body := struct {
		Entries   []entryBody `json:"entries"`
		NextToken string      `json:"next_token,omitempty"`
	}{Entries: make([]entryBody, 0, len(entries)), NextToken: next}
	for _, entry := range entries {
		body.Entries = append(body.Entries, entryBody{
			Seq:           entry.Seq,
			Timestamp:     entry.Timestamp.Format(timeLayout),
			Type:          string(entry.Type),
			ParticipantID: entry.ParticipantID,
			Payload:       json.RawMessage(entry.PayloadJSON),
		})
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *Handler) listResults(w http.ResponseWriter, r *http.Request) {
	if h.results == nil {
		http.NotFound(w, r)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.results.ListMatchResults(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (h *Handler) getResult(w http.ResponseWriter, r *http.Request) {
	if h.results == nil {
		http.NotFound(w, r)
		return
	}
	result, err := h.results.GetMatchResult(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) listMaps(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"maps": h.catalog.Names()})
}

// streamEvents serves the session's live event feed as SSE. A channel_id
// query parameter additionally subscribes the caller to private
// participant events.
func (h *Handler) streamEvents(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if _, err := h.engine.SessionView(sessionID); err != nil {
		writeError(w, r, err)
		return
	}

	events, cancel := h.hub.Subscribe(sessionID, r.URL.Query().Get("channel_id"), 0)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case env, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(env)
			if err != nil {
				log.Printf("http: marshal event %s: %v", env.Type, err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", env.Type, data)
			flusher.Flush()
		}
	}
}
