package models

import "time"

// Category é um dado de referência estático (chave, nome de exibição e ícone)
type Category struct {
	ID          int64
	Name        string
	DisplayName string
	Emoji       string
	Description string
	CreatedAt   time.Time
}

// Label devolve o nome com o ícone para exibição no chat
func (c Category) Label() string {
	if c.Emoji == "" {
		return "• " + c.DisplayName
	}
	return c.Emoji + " " + c.DisplayName
}

// Store é uma loja parceira e o programa de afiliados associado
type Store struct {
	ID               int64
	Name             string
	WebsiteURL       string
	AffiliateNetwork string
	CommissionRate   float64
	CreatedAt        time.Time
}

// Group é um grupo do Telegram autorizado a receber ofertas
type Group struct {
	ChatID       int64
	Title        string
	AuthorizedBy int64
	AutoDeals    bool
	IsActive     bool
	AuthorizedAt time.Time
}
