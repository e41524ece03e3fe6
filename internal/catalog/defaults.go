package catalog

import "bot-afiliados/internal/models"

// DailyDealsCategory é a categoria virtual que lista as ofertas do dia
const DailyDealsCategory = "daily_deals"

// DefaultCategory recebe produtos coletados sem categoria conhecida
const DefaultCategory = "electronics"

// DefaultCategories são as categorias criadas na inicialização
var DefaultCategories = []models.Category{
	{Name: DailyDealsCategory, DisplayName: "Ofertas do Dia", Emoji: "🔥"},
	{Name: "electronics", DisplayName: "Eletrônicos", Emoji: "📱", Description: "Smartphones, notebooks e gadgets"},
	{Name: "mens_clothing", DisplayName: "Moda Masculina", Emoji: "👔"},
	{Name: "womens_clothing", DisplayName: "Moda Feminina", Emoji: "👗"},
	{Name: "beauty", DisplayName: "Beleza", Emoji: "💄", Description: "Cosméticos e cuidados com a pele"},
	{Name: "household", DisplayName: "Casa", Emoji: "🏠"},
	{Name: "kitchen", DisplayName: "Cozinha", Emoji: "🍳"},
	{Name: "sports", DisplayName: "Esporte e Fitness", Emoji: "⚽"},
	{Name: "books", DisplayName: "Livros", Emoji: "📚"},
	{Name: "toys", DisplayName: "Brinquedos e Jogos", Emoji: "🧸"},
	{Name: "automotive", DisplayName: "Automotivo", Emoji: "🚗"},
	{Name: "health", DisplayName: "Saúde e Bem-estar", Emoji: "💊"},
}
