package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldBinID       = "bin_id"
	FieldEntryID     = "entry_id"
	FieldKind        = "kind"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldEventID     = "event_id"
	FieldFormat      = "format"
	FieldBackend     = "backend"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentSession    = "session"
	ComponentStore      = "store"
	ComponentCategories = "categories"
	ComponentExport     = "export"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentBackend    = "backend"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpLoad     = "load"
	OpSave     = "save"
	OpClear    = "clear"
	OpExport   = "export"
	OpArchive  = "archive"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
