package valueobject

import (
	"math"
	"strconv"
	"strings"

	domainerrors "brokerage/internal/domain/errors"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency is an ISO 4217 code accepted by the brokerage.
type Currency string

const (
	CurrencyBOB Currency = "BOB"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"

	// DefaultCurrency is used when no currency is given.
	DefaultCurrency = CurrencyBOB
)

// maxCentsFloat is 2^63, the first float64 that no longer fits in an int64.
const maxCentsFloat = float64(math.MaxInt64)

//nolint:gochecknoglobals
var amountPrinter = message.NewPrinter(language.English)

// ParseCurrency accepts BOB, USD or EUR case-insensitively. Empty means BOB.
func ParseCurrency(raw string) (Currency, error) {
	code := Currency(strings.ToUpper(strings.TrimSpace(raw)))
	switch code {
	case "":
		return DefaultCurrency, nil
	case CurrencyBOB, CurrencyUSD, CurrencyEUR:
		return code, nil
	default:
		return "", domainerrors.NewInvalidValueError("Moneda", raw, "Moneda no soportada")
	}
}

// Money is a non-negative amount in a single currency, held in cents.
type Money struct {
	cents    int64
	currency Currency
}

// NewMoney rounds amount to cents.
func NewMoney(amount float64, currency string) (Money, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, domainerrors.NewInvalidValueError("Dinero", amount, "Monto invalido")
	}
	if amount < 0 {
		return Money{}, domainerrors.NewInvalidValueError("Dinero", amount, "No puede ser negativo")
	}

	cents := math.Round(amount * 100)
	if cents >= maxCentsFloat {
		return Money{}, domainerrors.NewInvalidValueError("Dinero", amount, "Monto fuera de rango")
	}

	cur, err := ParseCurrency(currency)
	if err != nil {
		return Money{}, err
	}

	return Money{cents: int64(cents), currency: cur}, nil
}

// NewMoneyFromCents builds Money from an integer amount of cents.
func NewMoneyFromCents(cents int64, currency string) (Money, error) {
	if cents < 0 {
		return Money{}, domainerrors.NewInvalidValueError("Dinero", float64(cents)/100, "No puede ser negativo")
	}

	cur, err := ParseCurrency(currency)
	if err != nil {
		return Money{}, err
	}

	return Money{cents: cents, currency: cur}, nil
}

func (m Money) Amount() float64    { return float64(m.cents) / 100 }
func (m Money) Cents() int64       { return m.cents }
func (m Money) Currency() Currency { return m.currency }
func (m Money) IsZero() bool       { return m.cents == 0 }

// String renders "BOB 1,234.50".
func (m Money) String() string {
	return amountPrinter.Sprintf("%s %.2f", m.currency, m.Amount())
}

func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, domainerrors.NewInvalidValueError("Moneda", other.currency, "No se pueden sumar diferentes monedas")
	}

	if m.cents > math.MaxInt64-other.cents {
		return Money{}, domainerrors.NewInvalidValueError("Dinero", m.Amount()+other.Amount(), "Monto fuera de rango")
	}

	return Money{cents: m.cents + other.cents, currency: m.currency}, nil
}

// Sub fails when currencies differ or the result would be negative.
func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, domainerrors.NewInvalidValueError("Moneda", other.currency, "No se pueden restar diferentes monedas")
	}

	result := m.cents - other.cents
	if result < 0 {
		return Money{}, domainerrors.NewInvalidValueError("Dinero", float64(result)/100, "El resultado no puede ser negativo")
	}

	return Money{cents: result, currency: m.currency}, nil
}

func (m Money) Equal(other Money) bool {
	return m.cents == other.cents && m.currency == other.currency
}

// Percentage is a value in [0, 100].
type Percentage struct {
	value float64
}

func NewPercentage(value float64) (Percentage, error) {
	if math.IsNaN(value) || value < 0 || value > 100 {
		return Percentage{}, domainerrors.NewInvalidValueError("Porcentaje", value, "Debe estar entre 0 y 100")
	}

	return Percentage{value: value}, nil
}

func (p Percentage) Value() float64 { return p.value }

// ApplyTo returns amount * p / 100.
func (p Percentage) ApplyTo(amount float64) float64 {
	return amount * p.value / 100
}

// ApplyToMoney applies the percentage in the money's own currency, rounding to cents.
func (p Percentage) ApplyToMoney(m Money) Money {
	cents := math.Round(float64(m.cents) * p.value / 100)
	if cents >= maxCentsFloat {
		return m
	}

	return Money{cents: int64(cents), currency: m.currency}
}

func (p Percentage) String() string {
	return strconv.FormatFloat(p.value, 'f', -1, 64) + "%"
}
