package scraper

import (
	"context"

	"go.uber.org/zap"
)

// Limites de produtos coletados por loja em cada rodada
const (
	MaxAmazonProducts = 50
	MaxEbayProducts   = 30
)

// ScrapedProduct é um produto coletado de uma listagem, ainda sem link de afiliado
type ScrapedProduct struct {
	Title              string
	Price              float64
	OriginalPrice      *float64
	Description        string
	ImageURL           string
	ProductURL         string
	StoreName          string
	Category           string
	Rating             *float64
	ReviewCount        int
	DiscountPercentage *float64
}

// PriceInfo é o preço lido da página de um produto
type PriceInfo struct {
	Price         float64
	OriginalPrice *float64 // nil quando a página não mostra preço riscado
}

// Scraper define a interface para scrapers de diferentes lojas
type Scraper interface {
	Name() string
	CanHandle(url string) bool
	GetPrice(ctx context.Context, url string) (*PriceInfo, error)
	ScrapeDeals(ctx context.Context, limit int) ([]ScrapedProduct, error)
}

// Registry mantém um registro de todos os scrapers disponíveis
type Registry struct {
	scrapers []Scraper
	limits   map[string]int
	log      *zap.Logger
}

// NewRegistry cria um novo registro com os scrapers da Amazon e do eBay
func NewRegistry(f *Fetcher, log *zap.Logger) *Registry {
	return NewRegistryWith(log, NewAmazonScraper(f, log), NewEbayScraper(f, log))
}

// NewRegistryWith cria um registro com os scrapers informados
func NewRegistryWith(log *zap.Logger, scrapers ...Scraper) *Registry {
	return &Registry{
		scrapers: scrapers,
		limits: map[string]int{
			"Amazon": MaxAmazonProducts,
			"eBay":   MaxEbayProducts,
		},
		log: log,
	}
}

// FindScraper encontra o scraper apropriado para uma URL
func (r *Registry) FindScraper(url string) Scraper {
	for _, scraper := range r.scrapers {
		if scraper.CanHandle(url) {
			return scraper
		}
	}
	return nil
}

// ScrapeAll coleta ofertas de todas as lojas. Falha em uma loja é registrada
// e não impede as demais.
func (r *Registry) ScrapeAll(ctx context.Context) []ScrapedProduct {
	var all []ScrapedProduct
	for _, s := range r.scrapers {
		if ctx.Err() != nil {
			break
		}

		limit, ok := r.limits[s.Name()]
		if !ok {
			limit = MaxEbayProducts
		}

		r.log.Info("Coletando ofertas", zap.String("store", s.Name()), zap.Int("limit", limit))
		products, err := s.ScrapeDeals(ctx, limit)
		if err != nil {
			r.log.Error("Erro ao coletar ofertas", zap.String("store", s.Name()), zap.Error(err))
		}
		if len(products) > limit {
			products = products[:limit]
		}
		all = append(all, products...)
	}
	return all
}
