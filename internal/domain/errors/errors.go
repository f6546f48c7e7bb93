package errors

import (
	"fmt"
	"net/http"

	"brokerage/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface.
// Two BaseErrors are the same kind when their error codes match, so copies made
// by WithDetails or the New*Error constructors still satisfy errors.Is against
// the predefined values below. A sub-kind also matches its parent kind.
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
	parent    *BaseError
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// newSubError creates a kind that also matches parent through errors.Is.
func newSubError(parent *BaseError, errorCode, message string) *BaseError {
	return &BaseError{
		httpCode:  parent.httpCode,
		errorCode: errorCode,
		message:   message,
		parent:    parent,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.details != "" {
		return e.message + ": " + e.details
	}

	return e.message
}

// Is matches on error code, walking up to the parent kind.
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	if !ok {
		return false
	}
	for cur := e; cur != nil; cur = cur.parent {
		if cur.errorCode == t.errorCode {
			return true
		}
	}

	return false
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
		parent:    e.parent,
	}
}

// withMessage returns a copy of the kind carrying a specific message.
func (e *BaseError) withMessage(message string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   message,
		details:   e.details,
		parent:    e.parent,
	}
}

// Predefined error types
var (
	// Authentication errors
	ErrEmailAlreadyExists = NewBaseError(
		http.StatusConflict,
		"EMAIL_ALREADY_EXISTS",
		"El email ya está registrado",
		"",
	)

	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Email o contraseña incorrectos",
		"",
	)

	ErrInvalidToken = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_TOKEN",
		"Token inválido o expirado",
		"",
	)

	ErrUserNotFound = NewBaseError(
		http.StatusNotFound,
		"USER_NOT_FOUND",
		"Usuario no encontrado",
		"",
	)

	ErrPasswordHashFailed = NewBaseError(
		http.StatusInternalServerError,
		"PASSWORD_HASH_FAILED",
		"Error al procesar la contraseña",
		"",
	)

	ErrTokenIssueFailed = NewBaseError(
		http.StatusInternalServerError,
		"TOKEN_ISSUE_FAILED",
		"Error al generar los tokens",
		"",
	)

	// Property errors
	ErrPropertyNotFound = NewBaseError(
		http.StatusNotFound,
		"PROPERTY_NOT_FOUND",
		"Propiedad no encontrada",
		"",
	)

	ErrDuplicatePublicCode = NewBaseError(
		http.StatusConflict,
		"DUPLICATE_PUBLIC_CODE",
		"El código público ya está en uso",
		"",
	)

	ErrInvalidStateTransition = NewBaseError(
		http.StatusConflict,
		"INVALID_STATE_TRANSITION",
		"Transición de estado inválida",
		"",
	)

	// Rule errors
	ErrBusinessRuleViolation = NewBaseError(
		http.StatusUnprocessableEntity,
		"BUSINESS_RULE_VIOLATION",
		"Regla de negocio violada",
		"",
	)

	ErrAlreadyClosed = newSubError(
		ErrBusinessRuleViolation,
		"PROPERTY_ALREADY_CLOSED",
		"La propiedad ya fue cerrada",
	)

	ErrCannotDeactivateClosed = newSubError(
		ErrBusinessRuleViolation,
		"CANNOT_DEACTIVATE_CLOSED",
		"No se puede desactivar una propiedad cerrada",
	)

	ErrCannotModifyClosed = newSubError(
		ErrBusinessRuleViolation,
		"CANNOT_MODIFY_CLOSED",
		"No se puede cambiar el precio de una propiedad cerrada",
	)

	ErrUnauthorizedOperation = NewBaseError(
		http.StatusForbidden,
		"UNAUTHORIZED_OPERATION",
		"Operación no permitida para el rol",
		"",
	)

	ErrInvalidValue = NewBaseError(
		http.StatusUnprocessableEntity,
		"INVALID_VALUE",
		"Valor inválido",
		"",
	)

	// General errors
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Los datos de entrada no son válidos",
		"",
	)

	ErrTransactionFailed = NewBaseError(
		http.StatusInternalServerError,
		"TRANSACTION_FAILED",
		"La transacción de base de datos falló",
		"",
	)

	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Error interno del sistema",
		"",
	)
)

// NewInvalidValueError reports a value object that failed validation.
func NewInvalidValueError(field string, value any, reason string) *BaseError {
	return ErrInvalidValue.withMessage(
		fmt.Sprintf("Valor inválido para '%s': %v. Razón: %s", field, value, reason),
	)
}

// NewInvalidStateTransitionError reports a lifecycle move that is not allowed.
func NewInvalidStateTransitionError(entity, from, to string) *BaseError {
	return ErrInvalidStateTransition.withMessage(
		fmt.Sprintf("Transición inválida para %s: de '%s' a '%s'", entity, from, to),
	)
}

// NewUnauthorizedOperationError reports a role lacking a capability.
func NewUnauthorizedOperationError(operation, role string) *BaseError {
	return ErrUnauthorizedOperation.withMessage(
		fmt.Sprintf("El rol '%s' no tiene permisos para: %s", role, operation),
	)
}

// NewBusinessRuleViolationError reports a generic rule failure.
func NewBusinessRuleViolationError(reason string) *BaseError {
	return ErrBusinessRuleViolation.withMessage(reason)
}

// NewEmailAlreadyExistsError names the email that is already registered.
func NewEmailAlreadyExistsError(email string) *BaseError {
	return ErrEmailAlreadyExists.withMessage(fmt.Sprintf("El email '%s' ya está registrado", email))
}

// NewDuplicatePublicCodeError names the public code already in use.
func NewDuplicatePublicCodeError(code string) *BaseError {
	return ErrDuplicatePublicCode.withMessage(fmt.Sprintf("El código público '%s' ya está en uso", code))
}

// DatabaseExecuteError represents a database execution error, implementing the AppError interface
type DatabaseExecuteError struct {
	err     error
	details string
}

// NewDatabaseExecuteError creates a database-related error
func NewDatabaseExecuteError(err error, details string) AppError {
	return &DatabaseExecuteError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *DatabaseExecuteError) Error() string {
	return errors.Wrap(e.err, "database execution failed: "+e.details).Error()
}

// Unwrap exposes the driver error.
func (e *DatabaseExecuteError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *DatabaseExecuteError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *DatabaseExecuteError) ErrorCode() string {
	return "DATABASE_EXECUTE_FAILED"
}

// Message returns the user-friendly error message
func (e *DatabaseExecuteError) Message() string {
	return "Error al ejecutar la operación en base de datos"
}

// Details returns detailed error information
func (e *DatabaseExecuteError) Details() string {
	return e.details
}
