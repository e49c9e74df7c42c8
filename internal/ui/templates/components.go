package templates

// Element IDs patched by the SSE endpoint.
const (
	WarningID = "warning"
	MetricsID = "metrics"
	PreviewID = "preview"
)
