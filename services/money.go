package services

import "github.com/shopspring/decimal"

// moneySum accumulates currency values in decimal and reports them as float64.
type moneySum struct {
	d decimal.Decimal
}

func (m *moneySum) Add(v float64) {
	m.d = m.d.Add(decimal.NewFromFloat(v))
}

func (m moneySum) Float() float64 {
	return m.d.InexactFloat64()
}

// lineTotal is quantity × unit value rounded to cents.
func lineTotal(quantity int, perUnit float64) float64 {
	return decimal.NewFromFloat(perUnit).Mul(decimal.NewFromInt(int64(quantity))).Round(2).InexactFloat64()
}
