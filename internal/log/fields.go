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
	FieldOwner       = "owner"
	FieldExpenseID   = "expense_id"
	FieldTitle       = "title"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldWindowFrom  = "window_from"
	FieldWindowTo    = "window_to"
	FieldCount       = "count"
	FieldReceiptPath = "receipt_path"
	FieldBackend     = "backend"
	FieldEmail       = "email"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentViewStore = "viewstore"
	ComponentGateway   = "gateway"
	ComponentReceipts  = "receipts"
	ComponentAuth      = "auth"
	ComponentEvents    = "events"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
)
