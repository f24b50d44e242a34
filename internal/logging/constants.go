package logging

// Field names shared by all components.
const (
	FieldCount     = "count"
	FieldFile      = "file_path"
	FieldFormat    = "format"
	FieldSource    = "source"
	FieldSnapshot  = "snapshot"
	FieldMerchant  = "merchant"
	FieldOperation = "operation"
	FieldDuration  = "duration_ms"
	FieldBackend   = "backend"
)
