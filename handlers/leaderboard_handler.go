package handlers

import (
	"net/http"

	"github.com/Dosada05/volley-mixer/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(ls services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: ls}
}

func (h *LeaderboardHandler) Standings(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboardService.Standings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Publish godoc
// @Summary Опубликовать таблицу в объектное хранилище
// @Tags leaderboard
// @Produce json
// @Success 201 {object} services.PublishResult
// @Failure 503 {object} map[string]string "Публикация не настроена"
// @Security BearerAuth
// @Router /leaderboard/publish [post]
func (h *LeaderboardHandler) Publish(w http.ResponseWriter, r *http.Request) {
	result, err := h.leaderboardService.Publish(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
