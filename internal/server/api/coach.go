package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/ayusman/formcheck/internal/app"
	"github.com/ayusman/formcheck/internal/exercise"
	"github.com/ayusman/formcheck/internal/pose"
	"github.com/ayusman/formcheck/internal/session"
	"github.com/ayusman/formcheck/internal/speech"
	"github.com/ayusman/formcheck/internal/store"
)

// Coach is the live coaching session the API drives. *app.App implements it.
type Coach interface {
	Start(ctx context.Context) error
	Stop() error
	Running() bool
	SetExercise(id string) exercise.Exercise
	Reset()
	SaveSession() (session.WorkoutSession, error)
	SetVoiceEnabled(enabled bool)
	SetSoundEnabled(enabled bool)
	SetPersona(p speech.Persona)
	GoalChanged(ex exercise.Exercise)
	Snapshot() app.Status
	HandleLandmarks(l pose.Landmarks, timestampMs int64) (app.Update, bool)
}

// CoachHandler controls the coaching session.
type CoachHandler struct {
	coach    Coach
	settings *store.SettingsRepository
}

type exerciseRequest struct {
	Exercise string `json:"exercise"`
}

type voiceRequest struct {
	Enabled *bool   `json:"enabled"`
	Sounds  *bool   `json:"sounds"`
	Persona *string `json:"persona"`
}

type voiceResponse struct {
	Personas []speech.Persona `json:"personas"`
	Status   app.Status       `json:"status"`
}

type landmarksRequest struct {
	Landmarks   pose.Landmarks `json:"landmarks"`
	TimestampMs int64          `json:"timestampMs"`
}

// NewCoachHandler registers the coach routes on router. settings may be nil,
// in which case choices are not remembered across restarts.
func NewCoachHandler(router *mux.Router, coach Coach, settings *store.SettingsRepository) *CoachHandler {
	h := &CoachHandler{coach: coach, settings: settings}

	router.HandleFunc("/coach", h.status).Methods("GET").Name("coach-status")
	router.HandleFunc("/coach/start", h.start).Methods("POST").Name("coach-start")
	router.HandleFunc("/coach/stop", h.stop).Methods("POST").Name("coach-stop")
	router.HandleFunc("/coach/reset", h.reset).Methods("POST").Name("coach-reset")
	router.HandleFunc("/coach/exercise", h.setExercise).Methods("PUT").Name("coach-exercise")
	router.HandleFunc("/coach/voice", h.voice).Methods("GET").Name("coach-voice")
	router.HandleFunc("/coach/voice", h.setVoice).Methods("PUT").Name("coach-voice-update")
	router.HandleFunc("/coach/landmarks", h.landmarks).Methods("POST").Name("coach-landmarks")

	return h
}

func (h *CoachHandler) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.coach.Snapshot())
}

func (h *CoachHandler) start(w http.ResponseWriter, r *http.Request) {
	// the session outlives the request
	if err := h.coach.Start(context.WithoutCancel(r.Context())); err != nil {
		if errors.Is(err, app.ErrFeedbackUnavailable) {
			writeJSON(w, http.StatusServiceUnavailable, h.coach.Snapshot())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.coach.Snapshot())
}

func (h *CoachHandler) stop(w http.ResponseWriter, r *http.Request) {
	if err := h.coach.Stop(); err != nil {
		log.WithError(err).Warn("errors while stopping the coach")
	}
	writeJSON(w, http.StatusOK, h.coach.Snapshot())
}

func (h *CoachHandler) reset(w http.ResponseWriter, r *http.Request) {
	h.coach.Reset()
	writeJSON(w, http.StatusOK, h.coach.Snapshot())
}

func (h *CoachHandler) setExercise(w http.ResponseWriter, r *http.Request) {
	var req exerciseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Exercise == "" {
		writeError(w, http.StatusBadRequest, "exercise is required")
		return
	}

	ex := h.coach.SetExercise(req.Exercise)
	h.remember(store.SettingExercise, string(ex))
	writeJSON(w, http.StatusOK, exercise.Describe(ex))
}

func (h *CoachHandler) voice(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, voiceResponse{
		Personas: speech.Personas(),
		Status:   h.coach.Snapshot(),
	})
}

func (h *CoachHandler) setVoice(w http.ResponseWriter, r *http.Request) {
	var req voiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.Enabled != nil {
		h.coach.SetVoiceEnabled(*req.Enabled)
		h.remember(store.SettingVoiceEnabled, boolString(*req.Enabled))
	}
	if req.Sounds != nil {
		h.coach.SetSoundEnabled(*req.Sounds)
		h.remember(store.SettingSoundEnabled, boolString(*req.Sounds))
	}
	if req.Persona != nil {
		p := speech.LookupPersona(*req.Persona)
		h.coach.SetPersona(p)
		h.remember(store.SettingPersona, p.ID)
	}

	writeJSON(w, http.StatusOK, h.coach.Snapshot())
}

func (h *CoachHandler) landmarks(w http.ResponseWriter, r *http.Request) {
	var req landmarksRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !h.coach.Running() {
		writeError(w, http.StatusConflict, "coach is not running")
		return
	}

	u, ok := h.coach.HandleLandmarks(req.Landmarks, req.TimestampMs)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *CoachHandler) remember(key, value string) {
	if h.settings == nil {
		return
	}
	if err := h.settings.Set(key, value); err != nil {
		log.WithError(err).WithField("key", key).Warn("failed to save setting")
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
