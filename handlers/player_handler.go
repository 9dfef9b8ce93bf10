package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/volley-mixer/services"
)

type PlayerHandler struct {
	rosterService services.RosterService
}

func NewPlayerHandler(rs services.RosterService) *PlayerHandler {
	return &PlayerHandler{rosterService: rs}
}

// ListPlayers godoc
// @Summary Список игроков
// @Tags players
// @Produce json
// @Param active query bool false "Только активные игроки"
// @Success 200 {object} map[string]interface{}
// @Router /players [get]
func (h *PlayerHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	activeOnly, err := boolQuery(r, "active", false)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	players, err := h.rosterService.ListPlayers(r.Context(), activeOnly)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AddPlayer godoc
// @Summary Добавить игрока
// @Tags players
// @Accept json
// @Produce json
// @Param body body services.PlayerInput true "Игрок"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /players [post]
func (h *PlayerHandler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	var input services.PlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.rosterService.AddPlayer(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.PlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.rosterService.UpdatePlayer(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type activeInput struct {
	Active *bool `json:"active"`
}

func (in activeInput) validate() error {
	if in.Active == nil {
		return errors.New("active is required")
	}
	return nil
}

func (h *PlayerHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input activeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := input.validate(); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.rosterService.SetActive(r.Context(), id, *input.Active); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetAllActive switches the whole roster in or out of the draw.
func (h *PlayerHandler) SetAllActive(w http.ResponseWriter, r *http.Request) {
	var input activeInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := input.validate(); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	n, err := h.rosterService.SetAllActive(r.Context(), *input.Active)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"updated": n}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.rosterService.RemovePlayer(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReplaceRoster godoc
// @Summary Заменить состав и начать новое мероприятие
// @Description Удаляет все раунды и игроков, затем создаёт переданный состав.
// @Tags players
// @Accept json
// @Produce json
// @Param body body []services.PlayerInput true "Новый состав"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /players [put]
func (h *PlayerHandler) ReplaceRoster(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Players []services.PlayerInput `json:"players"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	players, err := h.rosterService.ReplaceRoster(r.Context(), input.Players)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) ResetEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.rosterService.ResetEvent(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
