package forecast

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"HabitusForecast/api"
	"HabitusForecast/api/constants"
	"HabitusForecast/internal/config"
	"HabitusForecast/internal/extract"
	"HabitusForecast/internal/ingest"
	"HabitusForecast/internal/layout"
	"HabitusForecast/internal/workbook"
)

// UploadWorkbook ingests one spreadsheet end to end: store the file, open
// and detect its layout, create the project with its four scenarios and
// record the upload, all server-side in one request.
func (h *Handlers) UploadWorkbook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrFailedToParseMultipartForm)
		return
	}
	userID, err := strconv.ParseInt(r.FormValue("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrMissingUserID)
		return
	}

	file, fh, err := r.FormFile(constants.FormFieldFile)
	if err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrMissingFile)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext != constants.ExtXLSX && ext != constants.ExtXLS {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrUnsupportedFileType)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrFileTooLarge)
		return
	}

	storageName := uuid.New().String() + "_" + filepath.Base(fh.Filename)
	storagePath := filepath.Join(h.uploadDir, storageName)
	if err := os.WriteFile(storagePath, data, 0o644); err != nil {
		api.LogError("upload: failed to store %s: %v", fh.Filename, err)
		api.RespondWithError(w, http.StatusInternalServerError, constants.ErrFailedToStoreFile)
		return
	}

	wb, err := workbook.Open(storagePath)
	if err != nil {
		api.LogError("upload: failed to open %s: %v", fh.Filename, err)
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrFailedToOpenWorkbook)
		return
	}

	result, err := h.coordinator.Process(r.Context(), ingest.Input{
		UserID:       userID,
		OriginalName: fh.Filename,
		StoragePath:  storagePath,
		FileHash:     ingest.BytesHash(data),
		Workbook:     wb,
		Today:        time.Now().UTC(),
	})
	if err != nil {
		var layoutErr *layout.UnsupportedLayoutError
		if errors.As(err, &layoutErr) {
			api.RespondWithError(w, http.StatusUnprocessableEntity, constants.ErrUnsupportedLayout)
			return
		}
		api.LogError("upload: ingestion of %s failed: %v", fh.Filename, err)
		api.RespondWithError(w, http.StatusInternalServerError, constants.ErrIngestionFailed)
		return
	}

	api.LogInfo("upload: %s ingested into project %d", fh.Filename, result.ProjectID)
	api.RespondWithPayload(w, true, "", map[string]interface{}{
		"message":    constants.MsgUploadProcessed,
		"projeto_id": result.ProjectID,
		"upload_id":  result.UploadID,
		"cenarios":   result.ScenarioIDs,
		"relatorio":  result.Report,
	})
}

// ValidateWorkbook is the dry-run counterpart of UploadWorkbook: it detects
// the layout and echoes the header parameters without touching the database.
func (h *Handlers) ValidateWorkbook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes)
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrFailedToParseMultipartForm)
		return
	}
	file, fh, err := r.FormFile(constants.FormFieldFile)
	if err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrMissingFile)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext != constants.ExtXLSX && ext != constants.ExtXLS {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrUnsupportedFileType)
		return
	}

	tmp, err := os.CreateTemp("", "forecast-validate-*"+ext)
	if err != nil {
		api.RespondWithError(w, http.StatusInternalServerError, constants.ErrFailedToStoreFile)
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		api.RespondWithError(w, http.StatusInternalServerError, constants.ErrFailedToStoreFile)
		return
	}
	tmp.Close()

	wb, err := workbook.Open(tmp.Name())
	if err != nil {
		api.RespondWithError(w, http.StatusBadRequest, constants.ErrFailedToOpenWorkbook)
		return
	}
	sig, err := layout.Detect(wb.SheetNames())
	if err != nil {
		api.RespondWithError(w, http.StatusUnprocessableEntity, constants.ErrUnsupportedLayout)
		return
	}
	params := extract.ExtractParams(wb, sig.Variant, time.Now().UTC())

	api.RespondWithPayload(w, true, "", map[string]interface{}{
		"layout":       sig.Variant.String(),
		"abas":         wb.SheetNames(),
		"nome_cliente": params.ClientName,
		"origem":       params.Provenance,
	})
}
