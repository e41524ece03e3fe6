package models

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// ComputeDiscount calcula (original - preço) / original * 100 com duas casas.
// Retorna nil quando não há preço original ou ele não é maior que o preço.
func ComputeDiscount(price float64, original *float64) *float64 {
	if original == nil || *original <= 0 || *original <= price {
		return nil
	}
	o := decimal.NewFromFloat(*original)
	p := decimal.NewFromFloat(price)
	pct, _ := o.Sub(p).Div(o).Mul(hundred).Round(2).Float64()
	return &pct
}

// DropPercentage calcula a queda percentual de old para new (0 quando subiu)
func DropPercentage(oldPrice, newPrice float64) float64 {
	if oldPrice <= 0 || newPrice >= oldPrice {
		return 0
	}
	o := decimal.NewFromFloat(oldPrice)
	pct, _ := o.Sub(decimal.NewFromFloat(newPrice)).Div(o).Mul(hundred).Round(2).Float64()
	return pct
}

// RoundPrice arredonda um preço para centavos
func RoundPrice(v float64) float64 {
	r, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return r
}

// Float devolve um ponteiro para v; útil para campos opcionais
func Float(v float64) *float64 {
	return &v
}
