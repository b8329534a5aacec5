package logger

// Standard field names for consistent structured logging across nanoform.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldCaseCode = "case_code" // Thesaurus concept code (e.g. C102875)
	FieldRunID    = "run_id"    // Batch run identifier
	FieldRule     = "rule"      // Rule id that produced a conclusion

	// Components
	FieldComponent = "component"

	// Operations
	FieldOperation = "operation"
	FieldPath      = "path"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount     = "count"
	FieldBatchSize = "batch_size"

	// Knowledge base
	FieldKBVersion  = "kb_version"
	FieldRuleCount  = "rule_count"
	FieldConfidence = "confidence"
)
