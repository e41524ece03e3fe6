package models

import "time"

// Tipos de clique registrados
const (
	ClickAffiliateLink = "affiliate_link"
	ClickActionPrefix  = "action_"
)

// ClickEvent é um registro imutável de interação do usuário
type ClickEvent struct {
	ID        int64
	UserID    int64
	ProductID *int64 // nil para ações genéricas
	ClickType string
	ClickedAt time.Time
	IPAddress string
	UserAgent string
	Metadata  string // JSON opcional
}

// ProductClickStats agrega os cliques de um produto
type ProductClickStats struct {
	TotalClicks  int64
	UniqueUsers  int64
	RecentClicks int64
	ByType       map[string]int64
}

// ProductClicks é uma linha do ranking de produtos mais clicados
type ProductClicks struct {
	ProductID int64
	Title     string
	Clicks    int64
}

// DailyClicks é o total de cliques em um dia (YYYY-MM-DD)
type DailyClicks struct {
	Date   string
	Clicks int64
}

// GlobalStats resume o uso do bot
type GlobalStats struct {
	TotalUsers      int64
	ActiveUsers     int64
	TotalClicks     int64
	PopularProducts []ProductClicks
	DailyActivity   []DailyClicks
	Engagement      EngagementLevels
}

// EngagementLevels classifica usuários pelo volume de cliques
type EngagementLevels struct {
	High   int64 // 10+ cliques
	Medium int64 // 3-9 cliques
	Low    int64 // 1-2 cliques
}

// MonitoringStats resume o estado do catálogo para o monitor
type MonitoringStats struct {
	TotalProducts  int64      `json:"total_products"`
	ActiveProducts int64      `json:"active_products"`
	DailyDeals     int64      `json:"daily_deals"`
	LastUpdate     *time.Time `json:"last_update,omitempty"`
}
