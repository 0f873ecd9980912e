package renderer

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is a price formatted in its currency.
type Money struct {
	value *money.Money
}

// NewMoney returns the Money for amount in currency, rounded to the currency fraction.
func NewMoney(amount decimal.Decimal, currency string) Money {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return Money{}
	}
	factor := decimal.New(1, int32(cur.Fraction))
	return Money{money.New(amount.Mul(factor).Round(0).IntPart(), cur.Code)}
}

// NewMoneyFromFloat is NewMoney for a float amount.
func NewMoneyFromFloat(amount float64, currency string) Money {
	return NewMoney(decimal.NewFromFloat(amount), currency)
}

func (m Money) String() string {
	if m.value == nil {
		return "-"
	}
	return m.value.Display()
}

// SignedString returns the money value with an explicit sign.
func (m Money) SignedString() string {
	if m.value != nil && m.value.IsPositive() {
		return "+" + m.value.Display()
	}
	return m.String()
}

// Percent is a percentage, 1.5 is 1.5%.
type Percent float64

func (p Percent) String() string { return fmt.Sprintf("%.2f%%", float64(p)) }

// SignedString returns the percentage with an explicit sign.
func (p Percent) SignedString() string { return fmt.Sprintf("%+.2f%%", float64(p)) }
