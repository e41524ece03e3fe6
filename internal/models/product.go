package models

import "time"

// Product representa um produto com link de afiliado no catálogo
type Product struct {
	ID                 int64
	Title              string
	Description        string
	Price              float64
	OriginalPrice      *float64 // Preço original (antes do desconto), opcional
	DiscountPercentage *float64 // Derivado de Price e OriginalPrice (0-100)
	ImageURL           string
	ProductURL         string
	AffiliateURL       string // Derivado de ProductURL + nome da loja
	CategoryID         int64
	CategoryName       string
	StoreID            int64
	StoreName          string
	IsDailyDeal        bool
	IsFeatured         bool
	IsActive           bool
	Rating             *float64
	ReviewCount        int
	CreatedAt          time.Time
	UpdatedAt          time.Time
	ExpiresAt          *time.Time
}

// SetPrice atualiza o preço e recalcula o desconto contra o preço original
func (p *Product) SetPrice(price float64) {
	p.Price = price
	p.DiscountPercentage = ComputeDiscount(price, p.OriginalPrice)
}

// SetPrices atualiza preço atual e original mantendo o desconto consistente
func (p *Product) SetPrices(price float64, original *float64) {
	p.OriginalPrice = original
	p.SetPrice(price)
}

// Discount retorna o desconto atual ou 0 quando não há desconto
func (p Product) Discount() float64 {
	if p.DiscountPercentage == nil {
		return 0
	}
	return *p.DiscountPercentage
}

// PriceDrop descreve uma queda de preço relevante detectada pelo monitor
type PriceDrop struct {
	Product  Product
	OldPrice float64
	NewPrice float64
	Discount float64 // Queda em relação ao preço anterior (0-100)
}

// PriceUpdate é a alteração de preço aplicada a um produto numa rodada do monitor
type PriceUpdate struct {
	ProductID          int64
	Price              float64
	DiscountPercentage *float64
	UpdatedAt          time.Time
}
