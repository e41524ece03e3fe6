package affiliate

import (
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func testGenerator(t *testing.T) *Generator {
	t.Helper()
	g := NewGenerator(Credentials{
		AmazonTag:            "dealsbot-20",
		EbayCampaignID:       "5338000000",
		AliExpressTrackingID: "ali123",
		WalmartPublisherID:   "wm42",
		TargetPublisherID:    "tg42",
		BestBuyPublisherID:   "bb42",
	}, zaptest.NewLogger(t))
	return g
}

func TestDetectNetwork(t *testing.T) {
	tests := []struct {
		store string
		want  Network
	}{
		{"Amazon", Amazon},
		{"amazon.com.br", Amazon},
		{"eBay", Ebay},
		{"AliExpress", AliExpress},
		{"Walmart", Walmart},
		{"Target", Target},
		{"Best Buy", BestBuy},
		{"BESTBUY", BestBuy},
		{"Nike", Generic},
		{"", Generic},
		// amazon vem antes de ebay na ordem de prioridade
		{"Amazon eBay Outlet", Amazon},
	}

	for _, tt := range tests {
		if got := DetectNetwork(tt.store); got != tt.want {
			t.Errorf("DetectNetwork(%q) = %v, want %v", tt.store, got, tt.want)
		}
	}
}

func TestGenerateCoversEveryNetwork(t *testing.T) {
	g := testGenerator(t)
	stores := map[Network]string{
		Generic:    "Nike",
		Amazon:     "Amazon",
		Ebay:       "eBay",
		AliExpress: "AliExpress",
		Walmart:    "Walmart",
		Target:     "Target",
		BestBuy:    "Best Buy",
	}

	for _, n := range Networks {
		store, ok := stores[n]
		if !ok {
			t.Fatalf("rede %v sem loja de teste", n)
		}
		if DetectNetwork(store) != n {
			t.Fatalf("DetectNetwork(%q) != %v", store, n)
		}
		const product = "https://shop.example.com/p/123?color=red"
		if got := g.Generate(product, store, ""); got == product {
			t.Errorf("Generate() para %v não alterou a URL", n)
		}
	}
}

func TestGenerateAmazon(t *testing.T) {
	g := testGenerator(t)

	tests := []struct {
		name      string
		url       string
		productID string
		want      string
	}{
		{
			name: "dp com query",
			url:  "https://www.amazon.com/dp/B0CHX1W1XY?x=1",
			want: "https://www.amazon.com/dp/B0CHX1W1XY?tag=dealsbot-20&linkCode=ogi&th=1&psc=1",
		},
		{
			name: "gp product",
			url:  "https://www.amazon.com/gp/product/B08N5WRWNW/ref=x",
			want: "https://www.amazon.com/dp/B08N5WRWNW?tag=dealsbot-20&linkCode=ogi&th=1&psc=1",
		},
		{
			name: "asin na query",
			url:  "https://www.amazon.com/s?asin=B07XJ8C8F5",
			want: "https://www.amazon.com/dp/B07XJ8C8F5?tag=dealsbot-20&linkCode=ogi&th=1&psc=1",
		},
		{
			name: "sem asin",
			url:  "https://www.amazon.com/s?k=headphones",
			want: "https://www.amazon.com/s?k=headphones&tag=dealsbot-20",
		},
		{
			name:      "id numérico do banco não é asin",
			url:       "https://www.amazon.com/deals",
			productID: "42",
			want:      "https://www.amazon.com/deals?tag=dealsbot-20",
		},
		{
			name:      "id informado é asin",
			url:       "https://www.amazon.com/deals",
			productID: "B0CHX1W1XY",
			want:      "https://www.amazon.com/dp/B0CHX1W1XY?tag=dealsbot-20&linkCode=ogi&th=1&psc=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Generate(tt.url, "Amazon", tt.productID); got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractASIN(t *testing.T) {
	if got := ExtractASIN("https://www.amazon.com/dp/B0CHX1W1XY?x=1"); got != "B0CHX1W1XY" {
		t.Errorf("ExtractASIN() = %q, want B0CHX1W1XY", got)
	}
	if got := ExtractASIN("https://www.amazon.com/s?k=tv"); got != "" {
		t.Errorf("ExtractASIN() = %q, want empty", got)
	}
}

func TestGenerateEbay(t *testing.T) {
	g := testGenerator(t)
	original := "https://www.ebay.com/itm/123456789012?hash=abc"

	got := g.Generate(original, "eBay", "")
	if !strings.HasPrefix(got, ebayRoverURL+"?") {
		t.Fatalf("Generate() = %q, want rover prefix", got)
	}

	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("url.Parse() error = %v", err)
	}
	q := u.Query()
	checks := map[string]string{
		"campid":    "5338000000",
		"pub":       "5338000000",
		"icep_item": "123456789012",
		"mpre":      original,
	}
	for k, want := range checks {
		if q.Get(k) != want {
			t.Errorf("param %s = %q, want %q", k, q.Get(k), want)
		}
	}
	if !strings.HasSuffix(got, "&mpre="+url.QueryEscape(original)) {
		t.Errorf("mpre deve ser o último parâmetro: %q", got)
	}
	if again := g.Generate(original, "eBay", ""); again != got {
		t.Errorf("Generate() não é determinístico:\n%q\n%q", got, again)
	}
}

func TestGenerateEbayWithoutItem(t *testing.T) {
	g := testGenerator(t)
	got := g.Generate("https://www.ebay.com/deals", "eBay", "abc")
	u, _ := url.Parse(got)
	if _, ok := u.Query()["icep_item"]; ok {
		t.Errorf("icep_item não deveria existir: %q", got)
	}
}

func TestGenerateQueryNetworks(t *testing.T) {
	g := testGenerator(t)

	tests := []struct {
		store string
		url   string
		want  string
	}{
		{
			store: "AliExpress",
			url:   "https://www.aliexpress.com/item/1005.html",
			want:  "https://www.aliexpress.com/item/1005.html?aff_trace_key=ali123&terminal_id=" + aliexpressTerminal,
		},
		{
			store: "Walmart",
			url:   "https://www.walmart.com/ip/55?athbdg=L1600",
			want:  "https://www.walmart.com/ip/55?athbdg=L1600&veh=aff&sourceid=wm42",
		},
		{
			store: "Target",
			url:   "https://www.target.com/p/-/A-1",
			want:  "https://www.target.com/p/-/A-1?veh=aff&afid=tg42",
		},
		{
			store: "Best Buy",
			url:   "https://www.bestbuy.com/site/1.p?skuId=1&ref=old",
			want:  "https://www.bestbuy.com/site/1.p?skuId=1&ref=bb42&veh=aff",
		},
		{
			store: "Home Depot",
			url:   "https://www.homedepot.com/p/1",
			want:  "https://www.homedepot.com/p/1?utm_source=telegram_bot&utm_medium=affiliate&utm_campaign=deals_bot&utm_content=home_depot",
		},
	}

	for _, tt := range tests {
		t.Run(tt.store, func(t *testing.T) {
			got := g.Generate(tt.url, tt.store, "")
			if got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
			if again := g.Generate(got, tt.store, ""); again != got {
				t.Errorf("Generate() não é idempotente: %q != %q", again, got)
			}
		})
	}
}

func TestGenerateMissingCredentials(t *testing.T) {
	g := NewGenerator(Credentials{}, zaptest.NewLogger(t))

	for _, store := range []string{"Amazon", "eBay", "AliExpress", "Walmart", "Target", "Best Buy"} {
		const original = "https://example.com/item/1"
		if got := g.Generate(original, store, ""); got != original {
			t.Errorf("Generate(%s) sem credencial = %q, want original", store, got)
		}
	}
}

func TestGenerateUnparseableURL(t *testing.T) {
	g := testGenerator(t)
	for _, raw := range []string{"not a url", "http://[::1", ""} {
		if got := g.Generate(raw, "Walmart", ""); got != raw {
			t.Errorf("Generate(%q) = %q, want original", raw, got)
		}
		if got := g.Generate(raw, "Nike", ""); got != raw {
			t.Errorf("Generate(%q) = %q, want original", raw, got)
		}
	}
}

func TestConfigured(t *testing.T) {
	g := NewGenerator(Credentials{AmazonTag: "x"}, zaptest.NewLogger(t))
	if !g.Configured(Amazon) || g.Configured(Ebay) || !g.Configured(Generic) {
		t.Error("Configured() incorreto")
	}
}
