package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Money is an amount in hundredths of the currency unit.
type Money int64

// MoneyFromUnits converts whole currency units to Money.
func MoneyFromUnits(units int64) Money {
	return Money(units * 100)
}

// Mul returns the amount multiplied by n.
func (m Money) Mul(n int) Money {
	return m * Money(n)
}

func (m Money) String() string {
	value := int64(m)
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	return fmt.Sprintf("%s%d.%02d", sign, value/100, value%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	parsed, err := ParseMoney(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMoney parses a decimal string with at most two fractional digits.
func ParseMoney(raw string) (Money, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("parse money: empty value")
	}

	negative := strings.HasPrefix(raw, "-")
	raw = strings.TrimPrefix(raw, "-")

	whole, fraction, hasFraction := strings.Cut(raw, ".")
	if hasFraction && (len(fraction) == 0 || len(fraction) > 2) {
		return 0, fmt.Errorf("parse money %q: expected at most two decimals", raw)
	}
	for len(fraction) < 2 {
		fraction += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", raw, err)
	}
	cents, err := strconv.ParseInt(fraction, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse money %q: %w", raw, err)
	}

	amount := Money(units*100 + cents)
	if negative {
		amount = -amount
	}
	return amount, nil
}
