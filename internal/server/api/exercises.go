package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ayusman/formcheck/internal/exercise"
)

type listExercisesResponse struct {
	Exercises []exercise.Info `json:"exercises"`
}

// ExerciseHandler serves the exercise catalog.
type ExerciseHandler struct{}

// NewExerciseHandler registers the catalog route on router.
func NewExerciseHandler(router *mux.Router) *ExerciseHandler {
	h := &ExerciseHandler{}
	router.HandleFunc("/exercises", h.list).Methods("GET").Name("list-exercises")
	return h
}

func (h *ExerciseHandler) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, listExercisesResponse{Exercises: exercise.All()})
}
