package forecast

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"HabitusForecast/api"
	"HabitusForecast/api/constants"
	"HabitusForecast/internal/model"
	"HabitusForecast/internal/scenario"
)

type settingsPayload struct {
	Pessimista decimal.Decimal `json:"pessimista"`
	Realista   decimal.Decimal `json:"realista"`
	Otimista   decimal.Decimal `json:"otimista"`
	Agressivo  decimal.Decimal `json:"agressivo"`
}

// GetScenarioSettings returns the user's percentage offsets, zeroes when
// nothing was saved yet.
func (h *Handlers) GetScenarioSettings(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrMissingUserID)
		return
	}
	cfg, found, err := h.reads.ScenarioConfigByUser(r.Context(), userID)
	if err != nil {
		api.LogError("settings: read for user %d failed: %v", userID, err)
		api.RespondWithError(w, http.StatusInternalServerError, constants.ErrSettingsReadFailed)
		return
	}
	if !found {
		cfg = model.ScenarioConfig{}
	}
	api.RespondWithPayload(w, true, "", settingsPayload{
		Pessimista: cfg.Pessimista,
		Realista:   cfg.Realista,
		Otimista:   cfg.Otimista,
		Agressivo:  cfg.Agressivo,
	})
}

// SaveScenarioSettings validates and upserts the user's percentage offsets.
// Validation failures surface the rule text to the frontend.
func (h *Handlers) SaveScenarioSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID int64 `json:"user_id"`
		settingsPayload
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestPayload)
		return
	}
	if req.UserID <= 0 {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrMissingUserID)
		return
	}

	cfg := model.ScenarioConfig{
		Pessimista: req.Pessimista,
		Realista:   req.Realista,
		Otimista:   req.Otimista,
		Agressivo:  req.Agressivo,
	}
	if err := scenario.ValidateConfig(cfg); err != nil {
		api.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.reads.SaveScenarioConfig(r.Context(), req.UserID, cfg); err != nil {
		api.LogError("settings: save for user %d failed: %v", req.UserID, err)
		api.RespondWithError(w, http.StatusInternalServerError, constants.ErrSettingsSaveFailed)
		return
	}
	api.RespondWithPayload(w, true, "", map[string]interface{}{
		"message": constants.MsgSettingsSaved,
	})
}
