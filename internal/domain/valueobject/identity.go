// Package valueobject holds immutable, self-validating domain values.
// Every constructor returns a domain InvalidValue error on bad input.
package valueobject

import (
	"regexp"
	"strings"

	domainerrors "brokerage/internal/domain/errors"
)

var (
	ciSeparators    = regexp.MustCompile(`[\s-]`)
	phoneSeparators = regexp.MustCompile(`[\s\-()]`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

const (
	ciMinLength    = 6
	ciMaxLength    = 20
	phoneMinLength = 7
	phoneMaxLength = 15
)

// CI is a national identity number, digits only.
type CI struct {
	value string
}

// NewCI strips spaces and dashes and validates the remaining digits.
func NewCI(raw string) (CI, error) {
	if strings.TrimSpace(raw) == "" {
		return CI{}, domainerrors.NewInvalidValueError("CI", raw, "No puede estar vacio")
	}

	clean := ciSeparators.ReplaceAllString(raw, "")
	if !isDigits(clean) {
		return CI{}, domainerrors.NewInvalidValueError("CI", raw, "Debe contener solo numeros")
	}
	if len(clean) < ciMinLength || len(clean) > ciMaxLength {
		return CI{}, domainerrors.NewInvalidValueError("CI", raw, "Debe tener entre 6 y 20 caracteres")
	}

	return CI{value: clean}, nil
}

func (c CI) String() string { return c.value }

// Email is a syntactically valid, lower-cased address.
type Email struct {
	value string
}

func NewEmail(raw string) (Email, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Email{}, domainerrors.NewInvalidValueError("Email", raw, "No puede estar vacio")
	}
	if !emailPattern.MatchString(trimmed) {
		return Email{}, domainerrors.NewInvalidValueError("Email", raw, "Formato invalido")
	}

	return Email{value: strings.ToLower(trimmed)}, nil
}

func (e Email) String() string { return e.value }

// LocalPart returns the text before the '@'.
func (e Email) LocalPart() string {
	local, _, _ := strings.Cut(e.value, "@")

	return local
}

// Phone is a phone number stored without separators.
type Phone struct {
	value string
}

func NewPhone(raw string) (Phone, error) {
	if strings.TrimSpace(raw) == "" {
		return Phone{}, domainerrors.NewInvalidValueError("Telefono", raw, "No puede estar vacio")
	}

	clean := phoneSeparators.ReplaceAllString(raw, "")
	if !isDigits(clean) {
		return Phone{}, domainerrors.NewInvalidValueError("Telefono", raw, "Debe contener solo numeros")
	}
	if len(clean) < phoneMinLength || len(clean) > phoneMaxLength {
		return Phone{}, domainerrors.NewInvalidValueError("Telefono", raw, "Debe tener entre 7 y 15 digitos")
	}

	return Phone{value: clean}, nil
}

func (p Phone) String() string { return p.value }

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
