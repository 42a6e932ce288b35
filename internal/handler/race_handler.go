package handler

import (
	"net/http"

	"github.com/gridrace/api/internal/model"
	"github.com/gridrace/api/internal/service"
	"github.com/gridrace/api/internal/track"
)

// RaceHandler handles race endpoints.
type RaceHandler struct {
	raceSvc *service.RaceService
}

// NewRaceHandler creates a RaceHandler.
func NewRaceHandler(raceSvc *service.RaceService) *RaceHandler {
	return &RaceHandler{raceSvc: raceSvc}
}

// CreateRace handles POST /api/v1/races
func (h *RaceHandler) CreateRace(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrackName string              `json:"track_name"`
		Options   service.RaceOptions `json:"options"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TrackName == "" {
		writeError(w, http.StatusBadRequest, "track_name is required")
		return
	}

	race, err := h.raceSvc.CreateRace(r.Context(), req.TrackName, req.Options)
	if err != nil {
		if err == service.ErrUnknownTrack {
			writeError(w, http.StatusBadRequest, "unknown track")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, race)
}

// ListRaces handles GET /api/v1/races
func (h *RaceHandler) ListRaces(w http.ResponseWriter, r *http.Request) {
	races, err := h.raceSvc.ListRaces(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if races == nil {
		races = []model.Race{}
	}
	writeJSON(w, http.StatusOK, races)
}

// GetRace handles GET /api/v1/races/{id}
func (h *RaceHandler) GetRace(w http.ResponseWriter, r *http.Request) {
	race, err := h.raceSvc.GetRace(r.Context(), r.PathValue("id"))
	if err != nil {
		if err == service.ErrRaceNotFound {
			writeError(w, http.StatusNotFound, "race not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, race)
}

// GetRaceTurns handles GET /api/v1/races/{id}/turns
func (h *RaceHandler) GetRaceTurns(w http.ResponseWriter, r *http.Request) {
	turns, err := h.raceSvc.RaceTurns(r.Context(), r.PathValue("id"))
	if err != nil {
		if err == service.ErrRaceNotFound {
			writeError(w, http.StatusNotFound, "race not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if turns == nil {
		turns = []model.RaceTurn{}
	}
	writeJSON(w, http.StatusOK, turns)
}

// GetLiveState handles GET /api/v1/races/{id}/live
func (h *RaceHandler) GetLiveState(w http.ResponseWriter, r *http.Request) {
	state, err := h.raceSvc.LiveState(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if state == nil {
		writeError(w, http.StatusNotFound, "no live state for race")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(state)
}

// GetLatestDecision handles GET /api/v1/races/{id}/decision
func (h *RaceHandler) GetLatestDecision(w http.ResponseWriter, r *http.Request) {
	decision, err := h.raceSvc.LatestDecision(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if decision == nil {
		writeError(w, http.StatusNotFound, "no decision for race")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(decision)
}

// CancelRace handles POST /api/v1/races/{id}/cancel
func (h *RaceHandler) CancelRace(w http.ResponseWriter, r *http.Request) {
	if err := h.raceSvc.CancelRace(r.Context(), r.PathValue("id")); err != nil {
		if err == service.ErrRaceNotRunning {
			writeError(w, http.StatusConflict, "race is not running")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// ListTracks handles GET /api/v1/tracks
func (h *RaceHandler) ListTracks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"tracks": track.Names()})
}
