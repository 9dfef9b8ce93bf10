package handlers

import (
	"errors"
	"net/http"
)

// RecordWinner godoc
// @Summary Записать победителя матча
// @Description Победитель выставляется один раз; повторная запись возвращает 409.
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param body body object true "winner_team_id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Команда не играет в этом матче"
// @Failure 404 {object} map[string]string "Матч не найден"
// @Failure 409 {object} map[string]string "Победитель уже записан"
// @Security BearerAuth
// @Router /matches/{matchID}/winner [post]
func (h *RoundHandler) RecordWinner(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		WinnerTeamID int `json:"winner_team_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.WinnerTeamID <= 0 {
		badRequestResponse(w, r, errors.New("winner_team_id is required"))
		return
	}

	match, err := h.matchService.RecordWinner(r.Context(), matchID, input.WinnerTeamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
