package errors

// ErrorCode is the stable machine-readable code returned to API clients
type ErrorCode int32

const (
	ErrorCode_UNSPECIFIED ErrorCode = 0
	ErrorCode_HTTP_OK     ErrorCode = 200

	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_NOT_FOUND        ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS   ErrorCode = 1003
	ErrorCode_CONFLICT         ErrorCode = 1004
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1005
	ErrorCode_FORBIDDEN        ErrorCode = 1006

	ErrorCode_RECORDING_TERMINAL ErrorCode = 2001

	ErrorCode_NO_CHUNKS_FOUND           ErrorCode = 3001
	ErrorCode_CONCATENATION_FAILED      ErrorCode = 3002
	ErrorCode_CONCATENATION_IN_PROGRESS ErrorCode = 3003
	ErrorCode_UPLOAD_FAILED             ErrorCode = 3004
	ErrorCode_TRANSCRIPTION_FAILED      ErrorCode = 3005
	ErrorCode_EXTRACTION_FAILED         ErrorCode = 3006
	ErrorCode_MISSING_TRANSCRIPT        ErrorCode = 3007
	ErrorCode_MISSING_RECORDING_URL     ErrorCode = 3008

	ErrorCode_INTEGRATION_CACHE_FAILED        ErrorCode = 4001
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED ErrorCode = 4002

	ErrorCode_DB_CONNECTION_FAILED  ErrorCode = 5001
	ErrorCode_DB_QUERY_FAILED       ErrorCode = 5002
	ErrorCode_DB_TRANSACTION_FAILED ErrorCode = 5003
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNSPECIFIED:                     "UNSPECIFIED",
	ErrorCode_HTTP_OK:                         "HTTP_OK",
	ErrorCode_INTERNAL:                        "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:                "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                       "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:                  "ALREADY_EXISTS",
	ErrorCode_CONFLICT:                        "CONFLICT",
	ErrorCode_INVALID_PAYLOAD:                 "INVALID_PAYLOAD",
	ErrorCode_FORBIDDEN:                       "FORBIDDEN",
	ErrorCode_RECORDING_TERMINAL:              "RECORDING_TERMINAL",
	ErrorCode_NO_CHUNKS_FOUND:                 "NO_CHUNKS_FOUND",
	ErrorCode_CONCATENATION_FAILED:            "CONCATENATION_FAILED",
	ErrorCode_CONCATENATION_IN_PROGRESS:       "CONCATENATION_IN_PROGRESS",
	ErrorCode_UPLOAD_FAILED:                   "UPLOAD_FAILED",
	ErrorCode_TRANSCRIPTION_FAILED:            "TRANSCRIPTION_FAILED",
	ErrorCode_EXTRACTION_FAILED:               "EXTRACTION_FAILED",
	ErrorCode_MISSING_TRANSCRIPT:              "MISSING_TRANSCRIPT",
	ErrorCode_MISSING_RECORDING_URL:           "MISSING_RECORDING_URL",
	ErrorCode_INTEGRATION_CACHE_FAILED:        "INTEGRATION_CACHE_FAILED",
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED: "INTEGRATION_EXTERNAL_API_FAILED",
	ErrorCode_DB_CONNECTION_FAILED:            "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:                 "DB_QUERY_FAILED",
	ErrorCode_DB_TRANSACTION_FAILED:           "DB_TRANSACTION_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalText renders the symbolic name in JSON bodies
func (c ErrorCode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
