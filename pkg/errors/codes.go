package errors

import "strings"

// ErrorCode is a string representation of a specific error condition.  The
// segment before the first underscore names the owning module.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal        ErrorCode = "COMMON_001"
	ErrCodeBadRequest      ErrorCode = "COMMON_002"
	ErrCodeNotFound        ErrorCode = "COMMON_005"
	ErrCodeConflict        ErrorCode = "COMMON_006"
	ErrCodeTimeout         ErrorCode = "COMMON_009"
	ErrCodeValidation      ErrorCode = "COMMON_010"
	ErrCodeSerialization   ErrorCode = "COMMON_011"
	ErrCodeNotImplemented  ErrorCode = "COMMON_016"
	ErrCodeConfigInvalid   ErrorCode = "COMMON_017"
	ErrCodeUnknownInternal ErrorCode = "COMMON_000"
)

// CML codec error codes
const (
	ErrCodeCMLParse         ErrorCode = "CML_001"
	ErrCodeCMLSerialization ErrorCode = "CML_002"
	ErrCodeCMLTooManyErrors ErrorCode = "CML_003"
)

// Chemistry graph error codes
const (
	ErrCodeInvalidArgument  ErrorCode = "CHEM_001"
	ErrCodeDuplicateID      ErrorCode = "CHEM_002"
	ErrCodeEntityNotFound   ErrorCode = "CHEM_003"
	ErrCodeUnknownBondOrder ErrorCode = "CHEM_004"
)

// Infrastructure error codes
const (
	ErrCodePartNotFound      ErrorCode = "STORE_001"
	ErrCodeStorageFailure    ErrorCode = "STORE_002"
	ErrCodeCacheMiss         ErrorCode = "CACHE_001"
	ErrCodeCacheFailure      ErrorCode = "CACHE_002"
	ErrCodeTelemetryFailure  ErrorCode = "TEL_001"
	ErrCodeNothingToUndoRedo ErrorCode = "UNDO_001"
)

// Short aliases used at call sites.
const (
	CodeOK              = ErrorCode("OK")
	CodeUnknown         = ErrCodeUnknownInternal
	CodeInternal        = ErrCodeInternal
	CodeInvalidParam    = ErrCodeBadRequest
	CodeNotFound        = ErrCodeNotFound
	CodeConflict        = ErrCodeConflict
	CodeValidation      = ErrCodeValidation
	CodeNotImplemented  = ErrCodeNotImplemented
	CodeConfigInvalid   = ErrCodeConfigInvalid
	CodeCMLParse        = ErrCodeCMLParse
	CodeCMLSerialize    = ErrCodeCMLSerialization
	CodeCMLTooManyErrs  = ErrCodeCMLTooManyErrors
	CodeInvalidArgument = ErrCodeInvalidArgument
	CodeDuplicateID     = ErrCodeDuplicateID
	CodeEntityNotFound  = ErrCodeEntityNotFound
	CodeUnknownOrder    = ErrCodeUnknownBondOrder
	CodePartNotFound    = ErrCodePartNotFound
	CodeStorage         = ErrCodeStorageFailure
	CodeCacheMiss       = ErrCodeCacheMiss
	CodeCache           = ErrCodeCacheFailure
	CodeTelemetry       = ErrCodeTelemetryFailure
	CodeNothingToUndo   = ErrCodeNothingToUndoRedo
)

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:        "internal error",
	ErrCodeBadRequest:      "bad request",
	ErrCodeNotFound:        "resource not found",
	ErrCodeConflict:        "resource conflict",
	ErrCodeTimeout:         "operation timed out",
	ErrCodeValidation:      "validation failed",
	ErrCodeSerialization:   "serialization failed",
	ErrCodeNotImplemented:  "not implemented",
	ErrCodeConfigInvalid:   "invalid configuration",
	ErrCodeUnknownInternal: "unknown error",

	ErrCodeCMLParse:         "malformed CML document",
	ErrCodeCMLSerialization: "failed to serialize CML document",
	ErrCodeCMLTooManyErrors: "CML document has too many errors",

	ErrCodeInvalidArgument:  "invalid argument",
	ErrCodeDuplicateID:      "duplicate identifier",
	ErrCodeEntityNotFound:   "chemistry entity not found",
	ErrCodeUnknownBondOrder: "unknown bond order",

	ErrCodePartNotFound:      "document part not found",
	ErrCodeStorageFailure:    "document part storage failure",
	ErrCodeCacheMiss:         "cache miss",
	ErrCodeCacheFailure:      "cache failure",
	ErrCodeTelemetryFailure:  "telemetry publish failed",
	ErrCodeNothingToUndoRedo: "nothing to undo or redo",
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

// IsCallerError reports whether code describes a problem with the caller's
// input rather than with the process or its collaborators.
func IsCallerError(code ErrorCode) bool {
	switch code {
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeInvalidArgument,
		ErrCodeDuplicateID, ErrCodeUnknownBondOrder, ErrCodeCMLParse,
		ErrCodeCMLTooManyErrors, ErrCodeConfigInvalid:
		return true
	}
	return false
}
