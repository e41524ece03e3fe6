package notifier

import (
	"fmt"
	"html"
	"strings"

	"bot-afiliados/internal/models"
)

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func storeName(p models.Product) string {
	if p.StoreName == "" {
		return "Várias lojas"
	}
	return p.StoreName
}

// FormatPriceDrop monta o alerta de queda de preço em HTML
func FormatPriceDrop(d models.PriceDrop) string {
	var b strings.Builder
	b.WriteString("🚨 <b>ALERTA DE QUEDA DE PREÇO</b> 🚨\n\n")
	fmt.Fprintf(&b, "🛒 <b>%s</b>\n\n", html.EscapeString(shorten(d.Product.Title, 60)))
	fmt.Fprintf(&b, "💰 <b>Antes:</b> $%.2f\n", d.OldPrice)
	fmt.Fprintf(&b, "💸 <b>Agora:</b> $%.2f\n", d.NewPrice)
	fmt.Fprintf(&b, "📉 <b>Economia:</b> $%.2f (%.0f%% OFF)\n\n", d.OldPrice-d.NewPrice, d.Discount)
	fmt.Fprintf(&b, "🏪 <b>Loja:</b> %s\n", html.EscapeString(storeName(d.Product)))
	if d.Product.AffiliateURL != "" {
		fmt.Fprintf(&b, "🔗 <a href=\"%s\">Ver oferta</a>\n", html.EscapeString(d.Product.AffiliateURL))
	}
	b.WriteString("\nUse /deals para ver mais ofertas!")
	return b.String()
}

// FormatDailyDeals monta o resumo das ofertas do dia em HTML
func FormatDailyDeals(deals []models.Product) string {
	var b strings.Builder
	b.WriteString("🔥 <b>Ofertas do Dia</b> 🔥\n\n")
	for i, p := range deals {
		fmt.Fprintf(&b, "%d. <b>%s</b>\n", i+1, html.EscapeString(shorten(p.Title, 40)))
		fmt.Fprintf(&b, "💰 $%.2f", p.Price)
		if d := p.Discount(); d > 0 {
			fmt.Fprintf(&b, " (-%.0f%%)", d)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "🏪 %s\n\n", html.EscapeString(storeName(p)))
	}
	b.WriteString("Use /deals para ver todas as ofertas! 🛒")
	return b.String()
}
