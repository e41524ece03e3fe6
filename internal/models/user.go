package models

import (
	"sort"
	"strings"
	"time"
)

// User representa um usuário do bot identificado pelo Telegram
type User struct {
	ID                   int64
	TelegramID           int64
	Username             string
	FirstName            string
	LastName             string
	IsAdmin              bool
	IsActive             bool
	NotificationsEnabled bool
	MaxPriceFilter       *float64
	MinDiscountFilter    *float64
	PreferredCategories  []string // Conjunto sem ordem; normalizado por NormalizeCategories
	CreatedAt            time.Time
	LastActive           time.Time
}

// Accepts indica se o produto passa pelos filtros de preferência do usuário
func (u User) Accepts(p Product) bool {
	if u.MaxPriceFilter != nil && p.Price > *u.MaxPriceFilter {
		return false
	}
	if u.MinDiscountFilter != nil && p.Discount() < *u.MinDiscountFilter {
		return false
	}
	if len(u.PreferredCategories) == 0 {
		return true
	}
	for _, c := range u.PreferredCategories {
		if c == p.CategoryName {
			return true
		}
	}
	return false
}

// NormalizeCategories remove duplicados e vazios e ordena as chaves
func NormalizeCategories(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
