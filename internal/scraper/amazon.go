package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"bot-afiliados/internal/models"
)

var amazonListings = []string{
	"https://www.amazon.com/gp/goldbox",
	"https://www.amazon.com/Best-Sellers/zgbs",
	"https://www.amazon.com/gp/new-releases",
}

// Seletores testados em ordem; o primeiro que encontrar itens é usado
var amazonCardSelectors = []string{
	`[data-testid="product-card"]`,
	".s-result-item",
	".dealContainer",
	".a-carousel-card",
	".octopus-dlp-asin-section",
}

// AmazonScraper coleta ofertas e preços da Amazon
type AmazonScraper struct {
	fetcher  *Fetcher
	listings []string
	log      *zap.Logger
}

// NewAmazonScraper cria uma nova instância do scraper da Amazon
func NewAmazonScraper(f *Fetcher, log *zap.Logger) *AmazonScraper {
	return &AmazonScraper{fetcher: f, listings: amazonListings, log: log}
}

func (a *AmazonScraper) Name() string { return "Amazon" }

// CanHandle verifica se a URL é de alguma loja da Amazon
func (a *AmazonScraper) CanHandle(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return strings.Contains(host, "amazon.") || host == "amzn.to"
}

// GetPrice lê o preço atual e o preço riscado da página do produto
func (a *AmazonScraper) GetPrice(ctx context.Context, url string) (*PriceInfo, error) {
	doc, err := a.fetcher.Document(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseAmazonPrice(doc.Selection)
}

func parseAmazonPrice(doc *goquery.Selection) (*PriceInfo, error) {
	text := firstText(doc,
		"#corePrice_feature_div .a-price .a-offscreen",
		"#corePriceDisplay_desktop_feature_div .a-price .a-offscreen",
		"#priceblock_dealprice",
		"#priceblock_ourprice",
		".a-price .a-offscreen",
	)
	price, ok := parsePrice(text)
	if !ok {
		return nil, fmt.Errorf("preço não encontrado na página")
	}

	info := &PriceInfo{Price: price}
	orig := firstText(doc,
		"#corePriceDisplay_desktop_feature_div .a-text-price .a-offscreen",
		".basisPrice .a-offscreen",
		".a-text-price .a-offscreen",
	)
	if op, ok := parsePrice(orig); ok && op > price {
		info.OriginalPrice = &op
	}
	return info, nil
}

// ScrapeDeals percorre as listagens de ofertas, mais vendidos e lançamentos
func (a *AmazonScraper) ScrapeDeals(ctx context.Context, limit int) ([]ScrapedProduct, error) {
	var products []ScrapedProduct
	var lastErr error

	for i, listing := range a.listings {
		if i > 0 {
			if err := a.fetcher.Wait(ctx); err != nil {
				return products, err
			}
		}

		doc, err := a.fetcher.Document(ctx, listing)
		if err != nil {
			a.log.Warn("Erro ao baixar listagem da Amazon", zap.String("url", listing), zap.Error(err))
			lastErr = err
			continue
		}

		products = append(products, parseAmazonListing(doc.Selection, listing)...)
		if len(products) >= limit {
			break
		}
	}

	if len(products) > limit {
		products = products[:limit]
	}
	if len(products) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return products, nil
}

func parseAmazonListing(doc *goquery.Selection, base string) []ScrapedProduct {
	var products []ScrapedProduct
	for _, sel := range amazonCardSelectors {
		items := doc.Find(sel)
		if items.Length() == 0 {
			continue
		}
		items.EachWithBreak(func(i int, item *goquery.Selection) bool {
			if i >= 10 {
				return false
			}
			if p, ok := parseAmazonCard(item, base); ok {
				products = append(products, p)
			}
			return true
		})
		break
	}
	return products
}

func parseAmazonCard(item *goquery.Selection, base string) (ScrapedProduct, bool) {
	title := firstText(item, "h3 a span", ".s-title-instructions-style h3 a span", "h2 a span", ".dealTitleTwoLine a")
	if len(title) < 10 {
		return ScrapedProduct{}, false
	}

	href := firstAttr(item, "href", "h3 a", "h2 a", ".dealTitleTwoLine a")
	if href == "" {
		return ScrapedProduct{}, false
	}

	price, ok := parsePrice(firstText(item, ".a-price .a-offscreen", ".a-price-whole", ".dealPriceText"))
	if !ok {
		return ScrapedProduct{}, false
	}

	p := ScrapedProduct{
		Title:       truncate(title, 255),
		Price:       price,
		Description: title,
		ImageURL:    firstAttr(item, "src", "img.s-image", ".dealImage img", "img[data-src]"),
		ProductURL:  resolveURL(base, href),
		StoreName:   "Amazon",
		Category:    Categorize(title),
		Rating:      parseRating(firstText(item, ".a-icon-alt")),
		ReviewCount: parseCount(firstText(item, ".a-size-base.s-underline-text", `[aria-label$="ratings"]`)),
	}
	if p.ImageURL == "" {
		p.ImageURL = firstAttr(item, "data-src", "img[data-src]")
	}
	if op, ok := parsePrice(firstText(item, ".a-text-price .a-offscreen", ".dealStrikeThroughPrice")); ok && op > price {
		p.OriginalPrice = &op
		p.DiscountPercentage = models.ComputeDiscount(price, p.OriginalPrice)
	}
	return p, true
}
