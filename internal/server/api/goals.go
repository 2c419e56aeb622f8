package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/formcheck/internal/exercise"
	"github.com/ayusman/formcheck/internal/store"
)

// GoalHandler serves the per-exercise rep goals.
type GoalHandler struct {
	goals *store.GoalRepository
	coach Coach
}

type goalResponse struct {
	Exercise   exercise.Exercise `json:"exercise"`
	TargetReps int               `json:"targetReps"`
}

type listGoalsResponse struct {
	Goals []goalResponse `json:"goals"`
}

type setGoalRequest struct {
	TargetReps int `json:"targetReps"`
}

// NewGoalHandler registers the goal routes on router. coach, when set, is
// told about changed goals.
func NewGoalHandler(router *mux.Router, goals *store.GoalRepository, coach Coach) *GoalHandler {
	h := &GoalHandler{goals: goals, coach: coach}

	router.HandleFunc("/goals", h.list).Methods("GET").Name("list-goals")
	router.HandleFunc("/goals/{exercise}", h.get).Methods("GET").Name("get-goal")
	router.HandleFunc("/goals/{exercise}", h.set).Methods("PUT").Name("set-goal")

	return h
}

// list returns the goal of every exercise that counts reps, defaults
// included.
func (h *GoalHandler) list(w http.ResponseWriter, r *http.Request) {
	var out []goalResponse
	for _, info := range exercise.All() {
		if !info.CountsReps {
			continue
		}
		target, err := h.goals.Get(info.ID)
		if err != nil {
			log.WithError(err).Error("failed to load goals")
			writeError(w, http.StatusInternalServerError, "failed to load goals")
			return
		}
		out = append(out, goalResponse{Exercise: info.ID, TargetReps: target})
	}
	writeJSON(w, http.StatusOK, listGoalsResponse{Goals: out})
}

func (h *GoalHandler) get(w http.ResponseWriter, r *http.Request) {
	ex, ok := exercise.Lookup(mux.Vars(r)["exercise"])
	if !ok {
		writeError(w, http.StatusNotFound, "unknown exercise")
		return
	}

	target, err := h.goals.Get(ex)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load goal")
		return
	}
	writeJSON(w, http.StatusOK, goalResponse{Exercise: ex, TargetReps: target})
}

func (h *GoalHandler) set(w http.ResponseWriter, r *http.Request) {
	ex, ok := exercise.Lookup(mux.Vars(r)["exercise"])
	if !ok {
		writeError(w, http.StatusNotFound, "unknown exercise")
		return
	}

	var req setGoalRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.goals.Set(ex, req.TargetReps); err != nil {
		if errors.Is(err, store.ErrInvalidGoal) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.WithError(err).Error("failed to save goal")
		writeError(w, http.StatusInternalServerError, "failed to save goal")
		return
	}

	if h.coach != nil {
		h.coach.GoalChanged(ex)
	}
	writeJSON(w, http.StatusOK, goalResponse{Exercise: ex, TargetReps: req.TargetReps})
}
