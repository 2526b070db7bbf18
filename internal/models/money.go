package models

import (
	"fmt"

	"ecoride/internal/utils"
)

// Money is an immutable amount in a single ISO-4217 currency. Amounts are
// rounded to the nearest cent on construction and after every arithmetic
// operation; exact half-cent inputs round according to their float64
// representation (10.005 becomes 10.01, 2.675 becomes 2.67).
type Money struct {
	amount   float64
	currency string
}

func NewMoney(amount float64, currency string) (Money, error) {
	if amount < 0 {
		return Money{}, fmt.Errorf("amount must not be negative, got %f", amount)
	}
	if !utils.ValidateCurrencyCode(currency) {
		return Money{}, fmt.Errorf("unsupported currency code %q", currency)
	}

	return Money{amount: utils.RoundAmount(amount), currency: currency}, nil
}

// MustMoney is a convenience for constants and tests; it panics on invalid input.
func MustMoney(amount float64, currency string) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Amount() float64 {
	return m.amount
}

func (m Money) Currency() string {
	return m.currency
}

func (m Money) IsZero() bool {
	return m.amount == 0 && m.currency == ""
}

func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: utils.RoundAmount(m.amount + other.amount), currency: m.currency}, nil
}

func (m Money) Subtract(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	result := utils.RoundAmount(m.amount - other.amount)
	if result < 0 {
		return Money{}, fmt.Errorf("subtraction would yield negative amount %f", result)
	}
	return Money{amount: result, currency: m.currency}, nil
}

func (m Money) Multiply(factor float64) (Money, error) {
	if factor < 0 {
		return Money{}, fmt.Errorf("factor must not be negative, got %f", factor)
	}
	return Money{amount: utils.RoundAmount(m.amount * factor), currency: m.currency}, nil
}

func (m Money) Divide(divisor float64) (Money, error) {
	if divisor <= 0 {
		return Money{}, fmt.Errorf("divisor must be positive, got %f", divisor)
	}
	return Money{amount: utils.RoundAmount(m.amount / divisor), currency: m.currency}, nil
}

func (m Money) Equals(other Money) bool {
	return m.amount == other.amount && m.currency == other.currency
}

func (m Money) String() string {
	return utils.FormatCurrency(m.amount, m.currency)
}

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return fmt.Errorf("currency mismatch: %s vs %s", m.currency, other.currency)
	}
	return nil
}
