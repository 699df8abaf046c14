package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeSchemaMismatch       ErrorCode = 102
	ErrCodeWrongFieldCount      ErrorCode = 103
	ErrCodeBadTimestamp         ErrorCode = 104
	ErrCodeBadPrice             ErrorCode = 105
	ErrCodeBadVolume            ErrorCode = 106
	ErrCodeUnorderedSeries      ErrorCode = 107

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeEmptyFile             ErrorCode = 203

	// File/IO errors (300-399)
	ErrCodeFileOpenFailed  ErrorCode = 300
	ErrCodeFileReadFailed  ErrorCode = 301
	ErrCodeFileWriteFailed ErrorCode = 302
	ErrCodeNoInputFiles    ErrorCode = 303

	// Ingest errors (400-499)
	ErrCodeIngestFailed       ErrorCode = 400
	ErrCodeExportFailed       ErrorCode = 401
	ErrCodeWriterNotReady     ErrorCode = 402
	ErrCodeDatabaseInitFailed ErrorCode = 403
)
