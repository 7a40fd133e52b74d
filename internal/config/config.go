package config

import "time"

const (
	// Forecast horizon. Competence dates are synthesized from this anchor
	// because the source sheets do not carry reliable date headers.
	AnchorYear     = 2025
	AnchorMonth    = time.October
	ForecastMonths = 12

	DateFormat = "2006-01-02"

	DefaultScenarioName = "Realista"

	DefaultUploadDir    = "./uploads"
	DefaultForecastPort = ":6310"
	DefaultCleanupCron  = "0 3 * * *"
	UploadRetentionDays = 30
	MaxUploadBytes      = 32 << 20
	EntryCopyBatchSize  = 5000
)
