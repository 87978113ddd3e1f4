package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound              = NewDomainError("NOT_FOUND", "Resource not found")
	ErrInvalidInput          = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInputShape            = NewDomainError("INPUT_SHAPE", "Input file does not match the expected layout")
	ErrUnsupportedIndex      = NewDomainError("UNSUPPORTED_INDEX", "Economic index is not in the accepted set")
	ErrDomainRuleViolation   = NewDomainError("DOMAIN_RULE", "Operation violates a business rule")
	ErrPersistenceConflict   = NewDomainError("PERSISTENCE_CONFLICT", "Conflicting write detected on the calculation partition")
	ErrPrejudicePrecondition = NewDomainError("PREJUDICE_PRECONDITION", "No persisted calculation found for one of the reference dates")
)
