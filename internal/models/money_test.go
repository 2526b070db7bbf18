package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(12.5, "EUR")
	require.NoError(t, err)
	assert.Equal(t, 12.5, m.Amount())
	assert.Equal(t, "EUR", m.Currency())
}

func TestNewMoney_RoundsToTwoDecimals(t *testing.T) {
	m, err := NewMoney(10.999, "EUR")
	require.NoError(t, err)
	assert.Equal(t, 11.0, m.Amount())

	m, err = NewMoney(10.004, "EUR")
	require.NoError(t, err)
	assert.Equal(t, 10.0, m.Amount())

	// 10.005*100 lands just above 1000.5 in float64 and rounds up.
	m, err = NewMoney(10.005, "EUR")
	require.NoError(t, err)
	assert.Equal(t, 10.01, m.Amount())
}

func TestNewMoney_RejectsNegativeAmount(t *testing.T) {
	_, err := NewMoney(-1, "EUR")
	assert.Error(t, err)
}

func TestNewMoney_RejectsUnknownCurrency(t *testing.T) {
	_, err := NewMoney(10, "XYZ")
	assert.Error(t, err)

	_, err = NewMoney(10, "eur")
	assert.Error(t, err)
}

func TestMoney_Add(t *testing.T) {
	a := MustMoney(10.10, "EUR")
	b := MustMoney(5.25, "EUR")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, 15.35, sum.Amount())

	// Operands are unchanged.
	assert.Equal(t, 10.10, a.Amount())
	assert.Equal(t, 5.25, b.Amount())
}

func TestMoney_Add_CurrencyMismatch(t *testing.T) {
	a := MustMoney(10, "EUR")
	b := MustMoney(10, "USD")

	_, err := a.Add(b)
	assert.Error(t, err)
}

func TestMoney_Subtract(t *testing.T) {
	a := MustMoney(10, "EUR")
	b := MustMoney(4, "EUR")

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, 6.0, diff.Amount())
}

func TestMoney_Subtract_NegativeResult(t *testing.T) {
	a := MustMoney(4, "EUR")
	b := MustMoney(10, "EUR")

	_, err := a.Subtract(b)
	assert.Error(t, err)
}

func TestMoney_Multiply(t *testing.T) {
	m := MustMoney(3.33, "EUR")

	result, err := m.Multiply(3)
	require.NoError(t, err)
	assert.Equal(t, 9.99, result.Amount())

	_, err = m.Multiply(-1)
	assert.Error(t, err)
}

func TestMoney_Divide(t *testing.T) {
	m := MustMoney(10, "EUR")

	result, err := m.Divide(3)
	require.NoError(t, err)
	assert.Equal(t, 3.33, result.Amount())

	_, err = m.Divide(0)
	assert.Error(t, err)
}

func TestMoney_Equals(t *testing.T) {
	assert.True(t, MustMoney(10, "EUR").Equals(MustMoney(10.00, "EUR")))
	assert.False(t, MustMoney(10, "EUR").Equals(MustMoney(10, "USD")))
	assert.False(t, MustMoney(10, "EUR").Equals(MustMoney(11, "EUR")))
}
