package valueobject

import (
	"math"
	"testing"

	domainerrors "brokerage/internal/domain/errors"
	"brokerage/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "plain digits", raw: "1234567", want: "1234567"},
		{name: "with dashes and spaces", raw: "12 345-67", want: "1234567"},
		{name: "twenty digits", raw: "12345678901234567890", want: "12345678901234567890"},
		{name: "empty", raw: "  ", wantErr: true},
		{name: "letters", raw: "12345A7", wantErr: true},
		{name: "too short", raw: "12345", wantErr: true},
		{name: "too long", raw: "123456789012345678901", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ci, err := NewCI(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domainerrors.ErrInvalidValue))

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ci.String())
		})
	}
}

func TestNewEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "valid", raw: "broker@inmobiliaria.com", want: "broker@inmobiliaria.com"},
		{name: "normalized", raw: "  Ana.Perez@Mail.BO ", want: "ana.perez@mail.bo"},
		{name: "plus alias", raw: "a+b@c.io", want: "a+b@c.io"},
		{name: "missing at", raw: "broker.inmobiliaria.com", wantErr: true},
		{name: "short tld", raw: "a@b.c", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			email, err := NewEmail(tt.raw)
			if tt.wantErr {
				assert.True(t, errors.Is(err, domainerrors.ErrInvalidValue))

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, email.String())
		})
	}
}

func TestEmail_LocalPart(t *testing.T) {
	email, err := NewEmail("juan.perez@inmobiliaria.com")
	require.NoError(t, err)
	assert.Equal(t, "juan.perez", email.LocalPart())
}

func TestNewPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "mobile", raw: "71234567", want: "71234567"},
		{name: "formatted", raw: "(591) 712-345 67", want: "59171234567"},
		{name: "too short", raw: "12345", wantErr: true},
		{name: "too long", raw: "1234567890123456", wantErr: true},
		{name: "plus sign", raw: "+59171234567", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			phone, err := NewPhone(tt.raw)
			if tt.wantErr {
				assert.True(t, errors.Is(err, domainerrors.ErrInvalidValue))

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, phone.String())
		})
	}
}

func TestMoney_Construction(t *testing.T) {
	m, err := NewMoney(1234.5, "")
	require.NoError(t, err)
	assert.Equal(t, CurrencyBOB, m.Currency())
	assert.Equal(t, int64(123450), m.Cents())
	assert.Equal(t, "BOB 1,234.50", m.String())

	usd, err := NewMoney(10, "usd")
	require.NoError(t, err)
	assert.Equal(t, CurrencyUSD, usd.Currency())

	_, err = NewMoney(-0.01, "BOB")
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidValue))

	_, err = NewMoney(10, "ARS")
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidValue))

	_, err = NewMoneyFromCents(-1, "BOB")
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidValue))
}

func TestMoney_Arithmetic(t *testing.T) {
	hundred, _ := NewMoney(100, "BOB")
	forty, _ := NewMoney(40, "BOB")
	tenUSD, _ := NewMoney(10, "USD")

	sum, err := hundred.Add(forty)
	require.NoError(t, err)
	assert.InDelta(t, 140.0, sum.Amount(), 0.0001)

	diff, err := hundred.Sub(forty)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, diff.Amount(), 0.0001)

	_, err = forty.Sub(hundred)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidValue))

	_, err = hundred.Add(tenUSD)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidValue))

	_, err = hundred.Sub(tenUSD)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidValue))

	zero, err := hundred.Sub(hundred)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

func TestMoney_Range(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		amount  float64
		wantErr bool
	}{
		{name: "large but representable", amount: 9e16},
		{name: "above int64 cents", amount: 1e17, wantErr: true},
		{name: "float max", amount: math.MaxFloat64, wantErr: true},
		{name: "infinite", amount: math.Inf(1), wantErr: true},
		{name: "not a number", amount: math.NaN(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, err := NewMoney(tt.amount, "BOB")
			if tt.wantErr {
				assert.True(t, errors.Is(err, domainerrors.ErrInvalidValue), "got %v", err)

				return
			}
			require.NoError(t, err)
			assert.Positive(t, m.Cents())
		})
	}

	top, err := NewMoneyFromCents(math.MaxInt64, "BOB")
	require.NoError(t, err)
	oneCent, err := NewMoneyFromCents(1, "BOB")
	require.NoError(t, err)

	_, err = top.Add(oneCent)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidValue))

	sum, err := oneCent.Add(oneCent)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Cents())

	full, err := NewPercentage(100)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, full.ApplyToMoney(top).Cents(), int64(0))
}

func TestPercentage(t *testing.T) {
	three, err := NewPercentage(3)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, three.ApplyTo(1000), 0.0001)
	assert.Equal(t, "3%", three.String())

	price, _ := NewMoney(150000, "BOB")
	commission := three.ApplyToMoney(price)
	assert.InDelta(t, 4500.0, commission.Amount(), 0.0001)
	assert.Equal(t, CurrencyBOB, commission.Currency())

	for _, bad := range []float64{-0.1, 100.01} {
		_, err := NewPercentage(bad)
		assert.True(t, errors.Is(err, domainerrors.ErrInvalidValue), "value %v", bad)
	}

	for _, edge := range []float64{0, 100} {
		_, err := NewPercentage(edge)
		assert.NoError(t, err)
	}
}

func TestCoordinates(t *testing.T) {
	laPaz, err := NewCoordinates(-16.4897, -68.1193)
	require.NoError(t, err)
	assert.Equal(t, -68.1193, laPaz.Point().Lon())
	assert.Equal(t, -16.4897, laPaz.Point().Lat())

	santaCruz, err := NewCoordinates(-17.7833, -63.1821)
	require.NoError(t, err)

	distance := laPaz.DistanceTo(santaCruz)
	assert.InDelta(t, 550_000, distance, 25_000)
	assert.Zero(t, laPaz.DistanceTo(laPaz))

	_, err = NewCoordinates(90.1, 0)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidValue))

	_, err = NewCoordinates(0, -180.5)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidValue))
}
