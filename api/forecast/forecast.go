// Package forecast exposes the HTTP surface of the cash-flow forecast
// engine: workbook upload and validation, scenario history and restore,
// and per-user scenario settings.
package forecast

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"HabitusForecast/internal/config"
	"HabitusForecast/internal/history"
	"HabitusForecast/internal/ingest"
	"HabitusForecast/internal/store"
)

type Handlers struct {
	coordinator *ingest.Coordinator
	versions    *history.Manager
	reads       store.Queries
	uploadDir   string
}

func StartForecastService(pool *pgxpool.Pool, cfg map[string]interface{}) {
	st := store.New(pool)

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = config.DefaultUploadDir
	}
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		log.Fatalf("[Forecast] failed to create upload dir %s: %v", uploadDir, err)
	}

	h := &Handlers{
		coordinator: ingest.NewCoordinator(st, st.Queries()),
		versions:    history.NewManager(st, st.Queries()),
		reads:       st.Queries(),
		uploadDir:   uploadDir,
	}

	r := newRouter(h)

	port := config.DefaultForecastPort
	if cfg != nil {
		if v, ok := cfg["port"]; ok && v != nil {
			port = fmt.Sprintf(":%v", v)
		}
	}
	log.Printf("[Forecast] service listening on %s", port)
	if err := http.ListenAndServe(port, r); err != nil {
		log.Fatalf("[Forecast] server stopped: %v", err)
	}
}

func newRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/forecast/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Forecast Service is active"))
	})
	r.HandleFunc("/forecast/upload", h.UploadWorkbook).Methods(http.MethodPost)
	r.HandleFunc("/forecast/validate", h.ValidateWorkbook).Methods(http.MethodPost)
	r.HandleFunc("/forecast/cenarios/{id}/snapshot", h.CreateSnapshot).Methods(http.MethodPost)
	r.HandleFunc("/forecast/cenarios/{id}/historico", h.ListHistory).Methods(http.MethodGet)
	r.HandleFunc("/forecast/cenarios/{id}/restaurar/{versionID}", h.RestoreVersion).Methods(http.MethodPost)
	r.HandleFunc("/forecast/settings/cenarios", h.GetScenarioSettings).Methods(http.MethodGet)
	r.HandleFunc("/forecast/settings/cenarios", h.SaveScenarioSettings).Methods(http.MethodPost)
	return r
}
