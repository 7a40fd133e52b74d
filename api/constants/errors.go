package constants

// ============================================================================
// REQUEST ERRORS
// ============================================================================

const (
	ErrMissingUserID              = "user_id is required in the request"
	ErrInvalidRequestPayload      = "Invalid request payload"
	ErrFailedToParseMultipartForm = "Failed to parse multipart form"
	ErrMissingFile                = "No file found in the request"
	ErrInvalidScenarioID          = "Invalid scenario id"
	ErrInvalidVersionID           = "Invalid version id"
)

// ============================================================================
// UPLOAD & INGESTION ERRORS
// ============================================================================

const (
	ErrUnsupportedFileType  = "Unsupported file type. Only .xlsx and .xls are accepted"
	ErrFileTooLarge         = "Uploaded file exceeds the size limit"
	ErrFailedToStoreFile    = "Failed to store the uploaded file"
	ErrFailedToOpenWorkbook = "Failed to open the uploaded workbook"
	ErrUnsupportedLayout    = "The workbook does not match any supported layout"
	ErrIngestionFailed      = "Failed to process the workbook"
)

// ============================================================================
// SCENARIO & HISTORY ERRORS
// ============================================================================

const (
	ErrScenarioNotFound     = "Scenario not found"
	ErrScenarioNotEditable  = "Scenario is not active and cannot be modified"
	ErrSnapshotNotFound     = "Version not found for this scenario"
	ErrSnapshotCreateFailed = "Failed to save the scenario version"
	ErrRestoreFailed        = "Failed to restore the scenario version"
	ErrHistoryListFailed    = "Failed to list scenario versions"
)

// ============================================================================
// SETTINGS ERRORS
// ============================================================================

const (
	ErrSettingsReadFailed = "Failed to read scenario settings"
	ErrSettingsSaveFailed = "Failed to save scenario settings"
)
