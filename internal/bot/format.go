package bot

import (
	"fmt"
	"strings"

	"bot-afiliados/internal/models"
)

// escapeHTML escapa caracteres especiais do HTML
func escapeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return text
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// formatProduct monta o bloco de um produto; link é o endereço mostrado ao usuário
func formatProduct(p models.Product, link string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🆔 <b>%d</b> · %s\n", p.ID, escapeHTML(truncate(p.Title, 80)))

	if d := p.Discount(); d > 0 && p.OriginalPrice != nil {
		fmt.Fprintf(&b, "💰 <b>$%.2f</b> <s>$%.2f</s> 🎉 <b>%.0f%% OFF</b>\n", p.Price, *p.OriginalPrice, d)
	} else {
		fmt.Fprintf(&b, "💰 <b>$%.2f</b>\n", p.Price)
	}

	var extra []string
	if p.StoreName != "" {
		extra = append(extra, "🏪 "+escapeHTML(p.StoreName))
	}
	if p.Rating != nil {
		extra = append(extra, fmt.Sprintf("⭐ %.1f (%d)", *p.Rating, p.ReviewCount))
	}
	if len(extra) > 0 {
		b.WriteString(strings.Join(extra, " · "))
		b.WriteString("\n")
	}
	if link != "" {
		fmt.Fprintf(&b, "🔗 <a href=\"%s\">Comprar</a>\n", escapeHTML(link))
	}
	return b.String()
}

// formatProductList monta uma lista de produtos com título
func formatProductList(title string, products []models.Product, link func(models.Product) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", title)
	for _, p := range products {
		b.WriteString(formatProduct(p, link(p)))
		b.WriteString("\n")
	}
	b.WriteString("Use /link &lt;id&gt; para receber o link de um produto.")
	return b.String()
}

func formatCategories(categories []models.Category) string {
	var b strings.Builder
	b.WriteString("📂 <b>Categorias</b>\n\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "%s · /category %s\n", escapeHTML(c.Label()), c.Name)
	}
	return b.String()
}

func formatPreferences(u models.User) string {
	var b strings.Builder
	b.WriteString("⚙️ <b>Suas preferências</b>\n\n")

	if u.NotificationsEnabled {
		b.WriteString("🔔 Alertas: ligados\n")
	} else {
		b.WriteString("🔕 Alertas: desligados\n")
	}
	if u.MaxPriceFilter != nil {
		fmt.Fprintf(&b, "💰 Preço máximo: $%.2f\n", *u.MaxPriceFilter)
	} else {
		b.WriteString("💰 Preço máximo: sem limite\n")
	}
	if u.MinDiscountFilter != nil {
		fmt.Fprintf(&b, "📉 Desconto mínimo: %.0f%%\n", *u.MinDiscountFilter)
	} else {
		b.WriteString("📉 Desconto mínimo: qualquer\n")
	}
	if len(u.PreferredCategories) > 0 {
		fmt.Fprintf(&b, "📂 Categorias: %s\n", escapeHTML(strings.Join(u.PreferredCategories, ", ")))
	} else {
		b.WriteString("📂 Categorias: todas\n")
	}

	b.WriteString("\nPara alterar: /prefs max=100 desconto=20 categorias=electronics,beauty\n")
	b.WriteString("Para remover um filtro use -, por exemplo max=-. Para remover todos: /prefs limpar")
	return b.String()
}

func formatAdminStats(m *models.MonitoringStats, g *models.GlobalStats) string {
	var b strings.Builder
	b.WriteString("📊 <b>Painel do Administrador</b>\n\n")

	fmt.Fprintf(&b, "📦 Produtos: %d (%d ativos)\n", m.TotalProducts, m.ActiveProducts)
	fmt.Fprintf(&b, "🔥 Ofertas do dia: %d\n", m.DailyDeals)
	if m.LastUpdate != nil {
		fmt.Fprintf(&b, "🕐 Última atualização: %s UTC\n", m.LastUpdate.Format("02/01/2006 15:04"))
	}

	fmt.Fprintf(&b, "\n👥 Usuários: %d (%d ativos em 30 dias)\n", g.TotalUsers, g.ActiveUsers)
	fmt.Fprintf(&b, "🖱 Cliques: %d\n", g.TotalClicks)
	fmt.Fprintf(&b, "📈 Engajamento: %d alto · %d médio · %d baixo\n",
		g.Engagement.High, g.Engagement.Medium, g.Engagement.Low)

	if len(g.PopularProducts) > 0 {
		b.WriteString("\n🏆 <b>Mais clicados</b>\n")
		for i, p := range g.PopularProducts {
			fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, escapeHTML(truncate(p.Title, 40)), p.Clicks)
		}
	}
	if len(g.DailyActivity) > 0 {
		b.WriteString("\n📅 <b>Últimos 7 dias</b>\n")
		for _, d := range g.DailyActivity {
			fmt.Fprintf(&b, "%s: %d\n", d.Date, d.Clicks)
		}
	}
	return b.String()
}

const userHelp = `🛍 <b>Bot de Ofertas</b>

<b>Comandos:</b>

<b>/deals</b> - Ofertas do dia
<b>/categories</b> - Listar categorias
<b>/category &lt;nome&gt;</b> - Produtos de uma categoria
Exemplo: /category electronics
<b>/search &lt;termo&gt;</b> - Buscar produtos
Exemplo: /search fone bluetooth
<b>/link &lt;id&gt;</b> - Receber o link de compra de um produto
<b>/notifications [on|off]</b> - Ligar ou desligar alertas de preço
<b>/prefs</b> - Ver ou alterar filtros de preço, desconto e categorias
<b>/help</b> - Mostrar esta mensagem de ajuda
`

const adminHelp = `
<b>Administração:</b>

<b>/admin</b> - Estatísticas
<b>/addproduct</b> - Cadastrar produto (uma linha "campo: valor" por campo)
Campos: titulo, preco, original, url, categoria, loja, descricao, imagem, nota, avaliacoes, oferta, destaque
<b>/scrapeproducts</b> - Coletar ofertas da Amazon e do eBay
<b>/refresh &lt;rodada&gt;</b> - Rodar prices, deals, cleanup, digest ou scrape
<b>/relink [id]</b> - Regenerar links de afiliado
<b>/validate &lt;id&gt;</b> - Verificar se o link de afiliado responde
<b>/commission &lt;loja&gt; &lt;taxa&gt;</b> - Alterar comissão de uma loja
<b>/toggle &lt;id&gt;</b> - Ativar ou desativar produto
<b>/delete &lt;id&gt;</b> - Remover produto

<b>Grupos:</b>
<b>/authorize_group</b> e <b>/deauthorize_group</b> - Liberar ou bloquear ofertas no grupo
`

const addProductUsage = `❌ Formato incorreto.

Uso:
/addproduct
titulo: Fone Bluetooth
preco: 79.99
original: 99.99
url: https://www.amazon.com/dp/B0CHX1W1XY
categoria: electronics
loja: Amazon`
