package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"brokerage/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseError_IsMatchesCopies(t *testing.T) {
	err := ErrPropertyNotFound.WithDetails("id=123")

	assert.True(t, errors.Is(err, ErrPropertyNotFound))
	assert.False(t, errors.Is(err, ErrUserNotFound))
	assert.Equal(t, "id=123", err.Details())
}

func TestBaseError_IsSurvivesWrapping(t *testing.T) {
	err := errors.Wrap(ErrInvalidCredentials, "login failed")

	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	var appErr AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusUnauthorized, appErr.HTTPCode())
	assert.Equal(t, "INVALID_CREDENTIALS", appErr.ErrorCode())
}

func TestSubErrors_MatchParentKind(t *testing.T) {
	tests := []struct {
		name string
		err  *BaseError
	}{
		{name: "already closed", err: ErrAlreadyClosed},
		{name: "cannot deactivate closed", err: ErrCannotDeactivateClosed},
		{name: "cannot modify closed", err: ErrCannotModifyClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, ErrBusinessRuleViolation))
			assert.True(t, errors.Is(tt.err, tt.err))
			assert.False(t, errors.Is(ErrBusinessRuleViolation, tt.err))
		})
	}

	assert.False(t, errors.Is(ErrAlreadyClosed, ErrCannotModifyClosed))
}

func TestConstructors_FormatMessages(t *testing.T) {
	invalid := NewInvalidValueError("CI", "12a", "Debe contener solo numeros")
	assert.Equal(t, "Valor inválido para 'CI': 12a. Razón: Debe contener solo numeros", invalid.Message())
	assert.True(t, errors.Is(invalid, ErrInvalidValue))

	transition := NewInvalidStateTransitionError("Propiedad", "RESERVADA", "EN_PROCESO")
	assert.Equal(t, "Transición inválida para Propiedad: de 'RESERVADA' a 'EN_PROCESO'", transition.Message())
	assert.True(t, errors.Is(transition, ErrInvalidStateTransition))

	unauthorized := NewUnauthorizedOperationError("users:deactivate", "ASESOR")
	assert.Equal(t, "El rol 'ASESOR' no tiene permisos para: users:deactivate", unauthorized.Message())
	assert.Equal(t, http.StatusForbidden, unauthorized.HTTPCode())

	rule := NewBusinessRuleViolationError("La superficie debe ser mayor a 0")
	assert.True(t, errors.Is(rule, ErrBusinessRuleViolation))
	assert.False(t, errors.Is(rule, ErrAlreadyClosed))
}

func TestDatabaseExecuteError(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewDatabaseExecuteError(cause, "failed to update property")

	assert.Equal(t, http.StatusInternalServerError, err.HTTPCode())
	assert.Equal(t, "DATABASE_EXECUTE_FAILED", err.ErrorCode())
	assert.Contains(t, err.Error(), "connection reset")
	assert.True(t, errors.Is(err, cause))
}
