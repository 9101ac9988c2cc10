package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MinorUnits is the number of decimal places a currency amount is settled to.
const MinorUnits int32 = 2

// QuantityPlaces is the number of decimal places a weight is stored with.
const QuantityPlaces int32 = 3

func withinPlaces(d decimal.Decimal, places int32) bool {
	return d.Truncate(places).Equal(d)
}

// Money is a fixed-point currency amount. The zero value is 0.00.
type Money struct {
	amount decimal.Decimal
}

// NewMoney wraps a decimal amount. Sign is not checked; callers that need a
// non-negative amount use NewPrice.
func NewMoney(d decimal.Decimal) Money {
	return Money{amount: d}
}

// ParseMoney parses a decimal string such as "10.00".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q is not a decimal amount", ErrInvalidAmount, s)
	}
	return Money{amount: d}, nil
}

// MustMoney is ParseMoney for literals; it panics on malformed input.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// NewPrice validates a price per unit: strictly positive, at most MinorUnits
// decimal places.
func NewPrice(d decimal.Decimal) (Money, error) {
	if !d.IsPositive() {
		return Money{}, InvalidAmount("price must be greater than zero")
	}
	if !withinPlaces(d, MinorUnits) {
		return Money{}, InvalidAmount(fmt.Sprintf("price %s has more than %d decimal places", d.String(), MinorUnits))
	}
	return Money{amount: d}, nil
}

func (m Money) Decimal() decimal.Decimal { return m.amount }
func (m Money) WithinMinorUnits() bool   { return withinPlaces(m.amount, MinorUnits) }
func (m Money) IsNegative() bool         { return m.amount.IsNegative() }
func (m Money) IsZero() bool             { return m.amount.IsZero() }
func (m Money) Equal(o Money) bool       { return m.amount.Equal(o.amount) }
func (m Money) Add(o Money) Money        { return Money{amount: m.amount.Add(o.amount)} }
func (m Money) Sub(o Money) Money        { return Money{amount: m.amount.Sub(o.amount)} }

// String renders at least MinorUnits places; extra precision is kept.
func (m Money) String() string {
	if m.amount.Exponent() < -MinorUnits {
		return m.amount.String()
	}
	return m.amount.StringFixed(MinorUnits)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.amount = d
	return nil
}

// Quantity is a non-negative weight (kg) or piece count.
type Quantity struct {
	value decimal.Decimal
}

// NewQuantity rejects negative values and more than QuantityPlaces decimals.
func NewQuantity(d decimal.Decimal) (Quantity, error) {
	if d.IsNegative() {
		return Quantity{}, InvalidAmount("quantity cannot be negative")
	}
	if !withinPlaces(d, QuantityPlaces) {
		return Quantity{}, InvalidAmount(fmt.Sprintf("quantity %s has more than %d decimal places", d.String(), QuantityPlaces))
	}
	return Quantity{value: d}, nil
}

// ParseQuantity parses a decimal string and rejects negatives.
func ParseQuantity(s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Quantity{}, fmt.Errorf("%w: %q is not a decimal quantity", ErrInvalidAmount, s)
	}
	return NewQuantity(d)
}

// MustQuantity is ParseQuantity for literals; it panics on malformed input.
func MustQuantity(s string) Quantity {
	q, err := ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Quantity) Decimal() decimal.Decimal     { return q.value }
func (q Quantity) IsPositive() bool             { return q.value.IsPositive() }
func (q Quantity) Equal(o Quantity) bool        { return q.value.Equal(o.value) }
func (q Quantity) GreaterThan(o Quantity) bool  { return q.value.GreaterThan(o.value) }
func (q Quantity) String() string               { return q.value.String() }
func (q Quantity) MarshalJSON() ([]byte, error) { return []byte(`"` + q.String() + `"`), nil }

func (q *Quantity) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	parsed, err := NewQuantity(d)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// Times returns quantity × unit price without rounding.
func (q Quantity) Times(price Money) Money {
	return Money{amount: q.value.Mul(price.amount)}
}

// Rate is a fraction in [0, 1], used for the platform commission.
type Rate struct {
	value decimal.Decimal
}

// NewRate validates that the fraction lies in [0, 1].
func NewRate(d decimal.Decimal) (Rate, error) {
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return Rate{}, fmt.Errorf("%w: rate %s outside [0, 1]", ErrInvalidAmount, d.String())
	}
	return Rate{value: d}, nil
}

// ParseRate parses a fraction such as "0.10".
func ParseRate(s string) (Rate, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Rate{}, fmt.Errorf("%w: %q is not a decimal rate", ErrInvalidAmount, s)
	}
	return NewRate(d)
}

// MustRate is ParseRate for literals; it panics on malformed input.
func MustRate(s string) Rate {
	r, err := ParseRate(s)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Rate) Decimal() decimal.Decimal { return r.value }
func (r Rate) String() string           { return r.value.String() }
