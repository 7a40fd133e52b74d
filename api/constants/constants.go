package constants

// Multipart form field and limits used by the upload endpoints.
const (
	FormFieldFile = "file"
)

// Supported workbook extensions.
const (
	ExtXLSX = ".xlsx"
	ExtXLS  = ".xls"
)

// Success messages returned to the frontend.
const (
	MsgUploadProcessed  = "Planilha processada com sucesso"
	MsgSnapshotCreated  = "Versão do cenário salva com sucesso"
	MsgScenarioRestored = "Cenário restaurado com sucesso"
	MsgSettingsSaved    = "Configurações de cenários salvas com sucesso"
)
