package pitch

// ExtractorError represents a failure of the external pitch extractor.
type ExtractorError struct {
	Code    string `json:"code"`
	Command string `json:"command,omitempty"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *ExtractorError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ExtractorError) Unwrap() error {
	return e.Cause
}

// Error codes, one per failure mode. None of these are retried here; a
// caller that wants a retry policy wraps the backend.
const (
	ErrCodeMissingExecutable = "MISSING_EXECUTABLE"  // configuration: executable absent from the installation root
	ErrCodeWorkspace         = "WORKSPACE_FAILED"    // resource: temporary directory or manifest could not be written
	ErrCodeExecution         = "EXECUTION_FAILED"    // execution: tool exited nonzero or could not be started
	ErrCodeOutputParse       = "OUTPUT_PARSE_FAILED" // parsing: tool output table malformed
)

// NewExtractorError creates a new extractor error
func NewExtractorError(code, command, message string, cause error) *ExtractorError {
	return &ExtractorError{
		Code:    code,
		Command: command,
		Message: message,
		Cause:   cause,
	}
}
