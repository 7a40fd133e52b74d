package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Enumerations mirror the database enums in db/schema.sql.
type FlowType string

const (
	FlowOperacional   FlowType = "OPERACIONAL"
	FlowInvestimento  FlowType = "INVESTIMENTO"
	FlowFinanciamento FlowType = "FINANCIAMENTO"
)

type Direction string

const (
	DirectionEntrada Direction = "ENTRADA"
	DirectionSaida   Direction = "SAIDA"
)

type Source string

const (
	SourceProjetado Source = "PROJETADO"
	SourceRealizado Source = "REALIZADO"
)

// Upload processing statuses.
const (
	UploadPending   = "pendente"
	UploadProcessed = "processado"
	UploadError     = "erro"
)

// Project is one forecasting engagement for one end client. One workbook
// upload always creates a new project, never merges into an existing one.
type Project struct {
	ID             int64
	UserID         int64
	ClientName     string
	BaseDate       time.Time
	OpeningBalance decimal.Decimal

	// Optional derived indicators from the INDICADORES sheet.
	FreeCashFlowGen decimal.Decimal
	BreakEvenPoint  decimal.Decimal
	FixedCostPct    decimal.Decimal
}

// Scenario is a named variant of a project's forecast. Four canonical
// scenarios exist per ingested workbook; only the active one is editable.
type Scenario struct {
	ID          int64
	ProjectID   int64
	Name        string
	Description string
	Active      bool
}

type Category struct {
	ID   int64
	Name string
	Flow FlowType
}

// Entry is one monetary fact: a non-negative magnitude with a separate
// direction tag and a projected/realized source tag.
type Entry struct {
	ID             int64
	ScenarioID     int64
	CategoryID     int64
	CompetenceDate time.Time
	Amount         decimal.Decimal
	Direction      Direction
	Source         Source
}

// EntryWithCategory joins an entry with its category name, used when
// serializing snapshots (restore matches categories by name).
type EntryWithCategory struct {
	Entry
	CategoryName string
}

// UploadRecord keeps the provenance of one ingested file. FileHash is a
// sha256 digest of the raw bytes, kept for traceability.
type UploadRecord struct {
	ID           int64
	ProjectID    int64
	OriginalName string
	StoragePath  string
	FileHash     string
	Status       string
	Report       []byte
	UploadedAt   time.Time
}

// ScenarioConfig holds the per-user percentage offsets applied when
// deriving sibling scenarios from the Realista baseline.
type ScenarioConfig struct {
	Pessimista decimal.Decimal
	Realista   decimal.Decimal
	Otimista   decimal.Decimal
	Agressivo  decimal.Decimal
}

// HistorySnapshot is an immutable serialized copy of a scenario's entry set
// at a point in time. Payload is the JSON document built by internal/history.
type HistorySnapshot struct {
	ID          int64
	ScenarioID  int64
	UserID      int64
	Description string
	Payload     []byte
	CreatedAt   time.Time
}
