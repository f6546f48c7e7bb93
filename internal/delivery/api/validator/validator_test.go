package validator

import (
	"testing"

	domainerrors "brokerage/internal/domain/errors"
	"brokerage/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Code  string  `json:"public_code" validate:"required,notblank"`
	Email string  `json:"email" validate:"omitempty,email"`
	Price float64 `json:"price" validate:"gte=0"`
	Kind  string  `json:"kind" validate:"omitempty,oneof=VENTA ALQUILER"`
	Pass  string  `json:"password"`
	Again string  `json:"password_confirm" validate:"eqfield=Pass"`
}

func TestValidator(t *testing.T) {
	v := New()

	require.NoError(t, v.Validate(&sample{Code: "P-1", Email: "a@b.com", Kind: "VENTA", Pass: "x", Again: "x"}))

	tests := []struct {
		name string
		in   sample
		want string
	}{
		{name: "required", in: sample{}, want: "public_code is required"},
		{name: "blank", in: sample{Code: "   "}, want: "public_code must not be blank"},
		{name: "email", in: sample{Code: "P", Email: "nope"}, want: "email must be a valid email"},
		{name: "gte", in: sample{Code: "P", Price: -1}, want: "price must be at least 0"},
		{name: "oneof", in: sample{Code: "P", Kind: "X"}, want: "kind must be one of [VENTA ALQUILER]"},
		{name: "eqfield", in: sample{Code: "P", Pass: "Password123", Again: "Password124"}, want: "password_confirm does not match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

			var appErr domainerrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.want, appErr.Details())
		})
	}

	assert.Equal(t, "invalid request body", Message(errors.New("boom")))
}
