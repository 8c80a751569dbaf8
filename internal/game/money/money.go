package money

import "github.com/shopspring/decimal"

// Money 不可变的十进制金额，链式运算返回新值。
type Money struct {
	amount decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// New builds a Money from an int64 chip amount.
func New(amount int64) Money {
	return Money{amount: decimal.NewFromInt(amount)}
}

// FromDecimal wraps an existing decimal value.
func FromDecimal(d decimal.Decimal) Money {
	return Money{amount: d}
}

// Parse reads a decimal string such as "10" or "2.5".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: d}, nil
}

// MustParse is Parse for trusted literals (config defaults, tests).
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(o Money) Money        { return Money{amount: m.amount.Add(o.amount)} }
func (m Money) Sub(o Money) Money        { return Money{amount: m.amount.Sub(o.amount)} }
func (m Money) Mul(o Money) Money        { return Money{amount: m.amount.Mul(o.amount)} }
func (m Money) Neg() Money               { return Money{amount: m.amount.Neg()} }
func (m Money) Cmp(o Money) int          { return m.amount.Cmp(o.amount) }
func (m Money) Equal(o Money) bool       { return m.amount.Equal(o.amount) }
func (m Money) LessThan(o Money) bool    { return m.amount.LessThan(o.amount) }
func (m Money) IsPositive() bool         { return m.amount.IsPositive() }
func (m Money) IsNegative() bool         { return m.amount.IsNegative() }
func (m Money) Decimal() decimal.Decimal { return m.amount }
func (m Money) String() string           { return m.amount.String() }

// MarshalJSON renders the amount as a decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.amount.String() + `"`), nil
}

// UnmarshalJSON accepts either a quoted or bare decimal.
func (m *Money) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	m.amount = d
	return nil
}
