package forecast

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"HabitusForecast/api"
	"HabitusForecast/api/constants"
	"HabitusForecast/api/utils"
	"HabitusForecast/internal/history"
	"HabitusForecast/internal/store"
)

func scenarioID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

// CreateSnapshot saves the scenario's current state as a named version.
func (h *Handlers) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := scenarioID(r)
	if !ok {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidScenarioID)
		return
	}
	var req struct {
		UserID    int64  `json:"user_id"`
		Descricao string `json:"descricao"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestPayload)
		return
	}
	if req.UserID <= 0 {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrMissingUserID)
		return
	}

	snapshotID, err := h.versions.CreateSnapshot(r.Context(), id, req.UserID, req.Descricao)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			api.RespondWithError(w, http.StatusNotFound, constants.ErrScenarioNotFound)
			return
		}
		api.LogError("history: snapshot of scenario %d failed: %v", id, err)
		api.RespondWithError(w, http.StatusInternalServerError, constants.ErrSnapshotCreateFailed)
		return
	}
	api.RespondWithPayload(w, true, "", map[string]interface{}{
		"message":    constants.MsgSnapshotCreated,
		"versao_id":  snapshotID,
		"cenario_id": id,
	})
}

// historyItem is the list representation of one version: metadata plus the
// totals decoded from the stored payload.
type historyItem struct {
	ID        int64           `json:"id"`
	Descricao string          `json:"descricao"`
	CriadoEm  string          `json:"criado_em"`
	Totais    *history.Totals `json:"totais,omitempty"`
}

// ListHistory returns the scenario's versions, newest first, paginated.
func (h *Handlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := scenarioID(r)
	if !ok {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidScenarioID)
		return
	}
	pagination, err := utils.ExtractPagination(r)
	if err != nil {
		api.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	snapshots, err := h.versions.ListSnapshots(r.Context(), id)
	if err != nil {
		api.LogError("history: listing versions of scenario %d failed: %v", id, err)
		api.RespondWithError(w, http.StatusInternalServerError, constants.ErrHistoryListFailed)
		return
	}
	start, end := pagination.Slice(len(snapshots))

	items := make([]historyItem, 0, end-start)
	for _, s := range snapshots[start:end] {
		item := historyItem{
			ID:        s.ID,
			Descricao: s.Description,
			CriadoEm:  s.CreatedAt.Format(time.RFC3339),
		}
		var p history.Payload
		if err := json.Unmarshal(s.Payload, &p); err == nil {
			item.Totais = &p.Totais
		}
		items = append(items, item)
	}
	api.RespondWithPayload(w, true, "", map[string]interface{}{
		"cenario_id": id,
		"versoes":    items,
		"paginacao":  pagination,
	})
}

// RestoreVersion swaps the scenario's live entries for a saved version,
// backing up the current state first.
func (h *Handlers) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	id, ok := scenarioID(r)
	if !ok {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidScenarioID)
		return
	}
	versionID, err := strconv.ParseInt(mux.Vars(r)["versionID"], 10, 64)
	if err != nil || versionID <= 0 {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidVersionID)
		return
	}
	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidRequestPayload)
		return
	}
	if req.UserID <= 0 {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrMissingUserID)
		return
	}

	result, err := h.versions.Restore(r.Context(), id, versionID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, history.ErrScenarioNotEditable):
			api.RespondWithError(w, http.StatusConflict, constants.ErrScenarioNotEditable)
		case errors.Is(err, history.ErrSnapshotMismatch):
			api.RespondWithError(w, http.StatusNotFound, constants.ErrSnapshotNotFound)
		case errors.Is(err, store.ErrNotFound):
			api.RespondWithError(w, http.StatusNotFound, constants.ErrSnapshotNotFound)
		default:
			api.LogError("history: restore of scenario %d to version %d failed: %v", id, versionID, err)
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrRestoreFailed)
		}
		return
	}
	api.RespondWithPayload(w, true, "", map[string]interface{}{
		"message":                 constants.MsgScenarioRestored,
		"lancamentos_restaurados": result.EntriesRestored,
		"categorias_ignoradas":    result.SkippedCategories,
		"backup_versao_id":        result.BackupSnapshotID,
	})
}
