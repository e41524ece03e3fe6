package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap/zaptest"
)

const amazonListingHTML = `<html><body>
<div class="s-result-item">
  <h2><a href="/dp/B0CHX1W1XY/ref=sr_1"><span>Sony Wireless Noise Cancelling Headphones</span></a></h2>
  <span class="a-price"><span class="a-offscreen">$248.00</span></span>
  <span class="a-text-price"><span class="a-offscreen">$399.99</span></span>
  <img class="s-image" src="https://m.media-amazon.com/images/I/1.jpg">
  <span class="a-icon-alt">4.6 out of 5 stars</span>
</div>
<div class="s-result-item">
  <h2><a href="/dp/B000000002"><span>Short</span></a></h2>
  <span class="a-price"><span class="a-offscreen">$10.00</span></span>
</div>
<div class="s-result-item">
  <h2><a href="https://www.amazon.com/dp/B000000003"><span>Womens Running Shoes Lightweight</span></a></h2>
  <span class="a-price-whole">1,059.</span>
</div>
<div class="s-result-item">
  <h2><span>Item sem link nenhum aqui</span></h2>
</div>
</body></html>`

const ebayListingHTML = `<html><body><ul>
<li class="s-item"><div class="s-item__title">Shop on eBay</div><span class="s-item__price">$20.00</span><a class="s-item__link" href="https://www.ebay.com/itm/1"></a></li>
<li class="s-item">
  <div class="s-item__title">Stainless Steel Cookware Pan Set</div>
  <span class="s-item__price">$79.99</span>
  <span class="STRIKETHROUGH">$99.99</span>
  <a class="s-item__link" href="https://www.ebay.com/itm/123456789012"></a>
  <div class="s-item__image"><img src="https://i.ebayimg.com/1.jpg"></div>
</li>
<li class="s-item"><div class="s-item__title">Sem preço</div><a class="s-item__link" href="https://www.ebay.com/itm/2"></a></li>
</ul></body></html>`

func doc(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return d.Selection
}

func TestParseAmazonListing(t *testing.T) {
	products := parseAmazonListing(doc(t, amazonListingHTML), "https://www.amazon.com/gp/goldbox")
	if len(products) != 2 {
		t.Fatalf("len(products) = %d, want 2", len(products))
	}

	p := products[0]
	if p.ProductURL != "https://www.amazon.com/dp/B0CHX1W1XY/ref=sr_1" {
		t.Errorf("ProductURL = %q", p.ProductURL)
	}
	if p.Price != 248 || p.OriginalPrice == nil || *p.OriginalPrice != 399.99 {
		t.Errorf("preços = %v / %v", p.Price, p.OriginalPrice)
	}
	if p.DiscountPercentage == nil || *p.DiscountPercentage != 38 {
		t.Errorf("DiscountPercentage = %v, want 38", p.DiscountPercentage)
	}
	if p.Rating == nil || *p.Rating != 4.6 {
		t.Errorf("Rating = %v", p.Rating)
	}
	if p.Category != "electronics" || p.StoreName != "Amazon" || p.ImageURL == "" {
		t.Errorf("produto = %+v", p)
	}

	shoes := products[1]
	if shoes.Price != 1059 || shoes.Category != "womens_clothing" || shoes.OriginalPrice != nil {
		t.Errorf("segundo produto = %+v", shoes)
	}
}

func TestParseEbayListing(t *testing.T) {
	products := parseEbayListing(doc(t, ebayListingHTML))
	if len(products) != 1 {
		t.Fatalf("len(products) = %d, want 1", len(products))
	}
	p := products[0]
	if p.Price != 79.99 || p.Category != "kitchen" || p.StoreName != "eBay" {
		t.Errorf("produto = %+v", p)
	}
	if p.DiscountPercentage == nil || *p.DiscountPercentage != 20 {
		t.Errorf("DiscountPercentage = %v", p.DiscountPercentage)
	}
}

func TestParseProductPages(t *testing.T) {
	amazon := `<div id="corePrice_feature_div"><span class="a-price"><span class="a-offscreen">$19.99</span></span></div>
		<span class="basisPrice"><span class="a-offscreen">$29.99</span></span>`
	info, err := parseAmazonPrice(doc(t, amazon))
	if err != nil || info.Price != 19.99 || info.OriginalPrice == nil || *info.OriginalPrice != 29.99 {
		t.Errorf("parseAmazonPrice() = %+v, %v", info, err)
	}

	ebay := `<div class="x-price-primary"><span class="ux-textspans">US $45.50</span></div>`
	info, err = parseEbayPrice(doc(t, ebay))
	if err != nil || info.Price != 45.5 || info.OriginalPrice != nil {
		t.Errorf("parseEbayPrice() = %+v, %v", info, err)
	}

	if _, err := parseAmazonPrice(doc(t, "<p>nada</p>")); err == nil {
		t.Error("parseAmazonPrice() sem preço deveria falhar")
	}
}

func TestCategorize(t *testing.T) {
	tests := map[string]string{
		"Apple iPhone 15 Pro":  "electronics",
		"Men's Denim Jacket":   "mens_clothing",
		"Women's Winter Coat":  "womens_clothing",
		"Hydrating Face Serum": "beauty",
		"Chef Knife 8 inch":    "kitchen",
		"Robot Vacuum Cleaner": "household",
		"Garden Gnome Statue":  "electronics",
	}
	for title, want := range tests {
		if got := Categorize(title); got != want {
			t.Errorf("Categorize(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestParseHelpers(t *testing.T) {
	if v, ok := parsePrice("$1,299.99"); !ok || v != 1299.99 {
		t.Errorf("parsePrice() = %v, %v", v, ok)
	}
	if _, ok := parsePrice("grátis"); ok {
		t.Error("parsePrice(grátis) deveria falhar")
	}
	if r := parseRating("7.0 out of 5"); r != nil {
		t.Errorf("parseRating() fora da escala = %v", *r)
	}
	if n := parseCount("(12,345)"); n != 12345 {
		t.Errorf("parseCount() = %d", n)
	}
}

func TestAmazonScrapeDealsFromServer(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(amazonListingHTML))
	}))
	defer srv.Close()

	f := NewFetcher("test-agent", 0)
	a := NewAmazonScraper(f, zaptest.NewLogger(t))
	a.listings = []string{srv.URL + "/broken", srv.URL + "/deals", srv.URL + "/deals"}

	products, err := a.ScrapeDeals(context.Background(), 3)
	if err != nil {
		t.Fatalf("ScrapeDeals() error = %v", err)
	}
	if len(products) != 3 {
		t.Errorf("len(products) = %d, want 3 (limite)", len(products))
	}
	if gotUA != "test-agent" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if !strings.HasPrefix(products[0].ProductURL, srv.URL+"/dp/") {
		t.Errorf("ProductURL = %q, want relativo ao servidor", products[0].ProductURL)
	}
}

type fakeScraper struct {
	name     string
	products []ScrapedProduct
	err      error
	gotLimit int
}

func (f *fakeScraper) Name() string { return f.name }
func (f *fakeScraper) CanHandle(url string) bool {
	return strings.Contains(url, strings.ToLower(f.name))
}
func (f *fakeScraper) GetPrice(context.Context, string) (*PriceInfo, error) {
	return &PriceInfo{Price: 1}, nil
}
func (f *fakeScraper) ScrapeDeals(_ context.Context, limit int) ([]ScrapedProduct, error) {
	f.gotLimit = limit
	return f.products, f.err
}

func TestRegistry(t *testing.T) {
	amazon := &fakeScraper{name: "Amazon", products: make([]ScrapedProduct, 60)}
	ebay := &fakeScraper{name: "eBay", err: errors.New("bloqueado")}
	r := NewRegistryWith(zaptest.NewLogger(t), amazon, ebay)

	all := r.ScrapeAll(context.Background())
	if len(all) != MaxAmazonProducts {
		t.Errorf("len(ScrapeAll()) = %d, want %d", len(all), MaxAmazonProducts)
	}
	if amazon.gotLimit != MaxAmazonProducts || ebay.gotLimit != MaxEbayProducts {
		t.Errorf("limites = %d/%d", amazon.gotLimit, ebay.gotLimit)
	}

	if s := r.FindScraper("https://www.ebay.com/itm/1"); s != ebay {
		t.Errorf("FindScraper(ebay) = %v", s)
	}
	if s := r.FindScraper("https://www.nike.com/x"); s != nil {
		t.Errorf("FindScraper(nike) = %v, want nil", s)
	}
}

func TestCanHandle(t *testing.T) {
	a := NewAmazonScraper(nil, zaptest.NewLogger(t))
	e := NewEbayScraper(nil, zaptest.NewLogger(t))
	if !a.CanHandle("https://www.amazon.com.br/dp/B0CHX1W1XY") || a.CanHandle("https://www.ebay.com/itm/1") {
		t.Error("AmazonScraper.CanHandle incorreto")
	}
	if !e.CanHandle("https://www.ebay.com/itm/1") || e.CanHandle("https://www.amazon.com/dp/x") {
		t.Error("EbayScraper.CanHandle incorreto")
	}
}
