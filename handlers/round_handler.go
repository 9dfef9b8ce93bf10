package handlers

import (
	"net/http"

	"github.com/Dosada05/volley-mixer/services"
)

type RoundHandler struct {
	roundService services.RoundService
	matchService services.MatchService
}

func NewRoundHandler(rs services.RoundService, ms services.MatchService) *RoundHandler {
	return &RoundHandler{
		roundService: rs,
		matchService: ms,
	}
}

// Preview godoc
// @Summary Предпросмотр следующего раунда
// @Description Составляет раунд без сохранения. Один и тот же seed даёт один и тот же результат.
// @Tags rounds
// @Accept json
// @Produce json
// @Param body body seedInput false "Seed"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string "Недостаточно игроков"
// @Security BearerAuth
// @Router /rounds/preview [post]
func (h *RoundHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var input seedInput
	if err := readOptionalJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	draw, err := h.roundService.Preview(r.Context(), input.Seed)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"draw": draw}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Generate godoc
// @Summary Сгенерировать и сохранить следующий раунд
// @Tags rounds
// @Accept json
// @Produce json
// @Param body body seedInput false "Seed"
// @Success 201 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Параллельная генерация"
// @Failure 422 {object} map[string]string "Недостаточно игроков"
// @Security BearerAuth
// @Router /rounds [post]
func (h *RoundHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var input seedInput
	if err := readOptionalJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.Generate(r.Context(), input.Seed)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) ListRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.roundService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"rounds": rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) CurrentRound(w http.ResponseWriter, r *http.Request) {
	round, err := h.roundService.Current(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RoundHandler) GetRound(w http.ResponseWriter, r *http.Request) {
	number, err := getIDFromURL(r, "number")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	round, err := h.roundService.GetByNumber(r.Context(), number)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteRound removes the latest round so it can be drawn again.
func (h *RoundHandler) DeleteRound(w http.ResponseWriter, r *http.Request) {
	number, err := getIDFromURL(r, "number")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.roundService.DeleteLatest(r.Context(), number); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
