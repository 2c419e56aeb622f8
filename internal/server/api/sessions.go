package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/formcheck/internal/app"
	"github.com/ayusman/formcheck/internal/exercise"
	"github.com/ayusman/formcheck/internal/session"
	"github.com/ayusman/formcheck/internal/store"
)

// SessionHandler serves the workout history.
type SessionHandler struct {
	store *store.Store
	coach Coach
}

type listSessionsResponse struct {
	Sessions []*session.WorkoutSession `json:"sessions"`
}

// NewSessionHandler registers the history routes on router. Saving the live
// session requires coach; it may be nil for a read-only history.
func NewSessionHandler(router *mux.Router, s *store.Store, coach Coach) *SessionHandler {
	h := &SessionHandler{store: s, coach: coach}

	router.HandleFunc("/sessions", h.list).Methods("GET").Name("list-sessions")
	router.HandleFunc("/sessions", h.save).Methods("POST").Name("save-session")
	router.HandleFunc("/sessions/{id}", h.get).Methods("GET").Name("get-session")
	router.HandleFunc("/sessions/{id}", h.delete).Methods("DELETE").Name("delete-session")

	return h
}

// list handles GET /sessions[?exercise=&limit=].
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	var (
		sessions []*session.WorkoutSession
		err      error
	)
	if id := r.URL.Query().Get("exercise"); id != "" {
		ex, ok := exercise.Lookup(id)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown exercise")
			return
		}
		sessions, err = h.store.Sessions().ListByExercise(ex, limit)
	} else {
		sessions, err = h.store.Sessions().List(limit)
	}
	if err != nil {
		log.WithError(err).Error("failed to list sessions")
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	if sessions == nil {
		sessions = []*session.WorkoutSession{}
	}
	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}

// save handles POST /sessions by recording the live session.
func (h *SessionHandler) save(w http.ResponseWriter, r *http.Request) {
	if h.coach == nil {
		writeError(w, http.StatusServiceUnavailable, "no live session")
		return
	}

	ws, err := h.coach.SaveSession()
	if err != nil {
		if errors.Is(err, app.ErrNoReps) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		log.WithError(err).Error("failed to save session")
		writeError(w, http.StatusInternalServerError, "failed to save session")
		return
	}
	writeJSON(w, http.StatusCreated, ws)
}

func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	ws, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get session")
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.store.Sessions().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
