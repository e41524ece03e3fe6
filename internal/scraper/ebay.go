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

// Busca do eBay: compre já, com desconto, ordenada por recém-listados
const ebayDealsURL = "https://www.ebay.com/sch/i.html?_nkw=&_sacat=0&LH_BIN=1&_sadis=15&_salic=1&_sop=12&_dmd=1&_ipg=60"

// EbayScraper coleta ofertas e preços do eBay
type EbayScraper struct {
	fetcher  *Fetcher
	listings []string
	log      *zap.Logger
}

// NewEbayScraper cria uma nova instância do scraper do eBay
func NewEbayScraper(f *Fetcher, log *zap.Logger) *EbayScraper {
	return &EbayScraper{fetcher: f, listings: []string{ebayDealsURL}, log: log}
}

func (e *EbayScraper) Name() string { return "eBay" }

// CanHandle verifica se a URL é do eBay
func (e *EbayScraper) CanHandle(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.Hostname()), "ebay.")
}

// GetPrice lê o preço do anúncio
func (e *EbayScraper) GetPrice(ctx context.Context, url string) (*PriceInfo, error) {
	doc, err := e.fetcher.Document(ctx, url)
	if err != nil {
		return nil, err
	}
	return parseEbayPrice(doc.Selection)
}

func parseEbayPrice(doc *goquery.Selection) (*PriceInfo, error) {
	text := firstAttr(doc, "content", `[itemprop="price"]`)
	if text == "" {
		text = firstText(doc, ".x-price-primary .ux-textspans", ".x-price-primary", "#prcIsum", ".s-item__price")
	}
	price, ok := parsePrice(text)
	if !ok {
		return nil, fmt.Errorf("preço não encontrado na página")
	}

	info := &PriceInfo{Price: price}
	orig := firstText(doc, ".x-additional-info .ux-textspans--STRIKETHROUGH", ".x-price-transparency .ux-textspans--STRIKETHROUGH", "#orgPrc")
	if op, ok := parsePrice(orig); ok && op > price {
		info.OriginalPrice = &op
	}
	return info, nil
}

// ScrapeDeals lê a busca de ofertas do eBay
func (e *EbayScraper) ScrapeDeals(ctx context.Context, limit int) ([]ScrapedProduct, error) {
	var products []ScrapedProduct
	var lastErr error

	for i, listing := range e.listings {
		if i > 0 {
			if err := e.fetcher.Wait(ctx); err != nil {
				return products, err
			}
		}

		doc, err := e.fetcher.Document(ctx, listing)
		if err != nil {
			e.log.Warn("Erro ao baixar listagem do eBay", zap.String("url", listing), zap.Error(err))
			lastErr = err
			continue
		}
		products = append(products, parseEbayListing(doc.Selection)...)
	}

	if len(products) > limit {
		products = products[:limit]
	}
	if len(products) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return products, nil
}

func parseEbayListing(doc *goquery.Selection) []ScrapedProduct {
	var products []ScrapedProduct
	doc.Find(".s-item").EachWithBreak(func(i int, item *goquery.Selection) bool {
		if i >= 20 {
			return false
		}
		if p, ok := parseEbayItem(item); ok {
			products = append(products, p)
		}
		return true
	})
	return products
}

func parseEbayItem(item *goquery.Selection) (ScrapedProduct, bool) {
	title := firstText(item, ".s-item__title")
	if title == "" || strings.Contains(strings.ToLower(title), "shop on ebay") {
		return ScrapedProduct{}, false
	}

	price, ok := parsePrice(firstText(item, ".s-item__price"))
	if !ok {
		return ScrapedProduct{}, false
	}

	link := firstAttr(item, "href", ".s-item__link")
	if link == "" {
		return ScrapedProduct{}, false
	}

	p := ScrapedProduct{
		Title:       truncate(title, 255),
		Price:       price,
		Description: title,
		ImageURL:    firstAttr(item, "src", ".s-item__image img"),
		ProductURL:  link,
		StoreName:   "eBay",
		Category:    Categorize(title),
	}
	if op, ok := parsePrice(firstText(item, ".s-item__trending-price .STRIKETHROUGH", ".STRIKETHROUGH")); ok && op > price {
		p.OriginalPrice = &op
		p.DiscountPercentage = models.ComputeDiscount(price, p.OriginalPrice)
	}
	return p, true
}
