package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"bot-afiliados/internal/affiliate"
	"bot-afiliados/internal/database"
	"bot-afiliados/internal/database/dbtest"
	"bot-afiliados/internal/models"
	"bot-afiliados/internal/scraper"
)

func newService(t *testing.T, creds affiliate.Credentials) (*Service, *database.DB) {
	t.Helper()
	db := dbtest.New(t)
	dir, err := affiliate.LoadDirectory("")
	if err != nil {
		t.Fatalf("LoadDirectory() error = %v", err)
	}
	log := zaptest.NewLogger(t)
	s := NewService(db, affiliate.NewGenerator(creds, log), dir, log)
	if err := s.SeedDefaults(context.Background()); err != nil {
		t.Fatalf("SeedDefaults() error = %v", err)
	}
	return s, db
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	s, db := newService(t, affiliate.Credentials{})
	ctx := context.Background()
	if err := s.SeedDefaults(ctx); err != nil {
		t.Fatalf("SeedDefaults() de novo error = %v", err)
	}

	cats, err := db.ListCategories(ctx)
	if err != nil || len(cats) != len(DefaultCategories) {
		t.Fatalf("ListCategories() = %d, %v", len(cats), err)
	}
	stores, err := db.ListStores(ctx)
	if err != nil || len(stores) != 16 {
		t.Fatalf("ListStores() = %d, %v", len(stores), err)
	}
	bb, err := db.GetStoreByName(ctx, "best buy")
	if err != nil || bb.AffiliateNetwork != "bestbuy" {
		t.Errorf("GetStoreByName(best buy) = %+v, %v", bb, err)
	}
}

func TestAddProductAmazon(t *testing.T) {
	s, db := newService(t, affiliate.Credentials{AmazonTag: "bot-20"})
	ctx := context.Background()

	p, err := s.AddProduct(ctx, ProductInput{
		Title:         "Echo Dot",
		Price:         100,
		OriginalPrice: models.Float(100),
		ProductURL:    "https://www.amazon.com/Echo-Dot/dp/ABCDEFGHIJ/ref=sr_1_1",
		Category:      "Electronics",
		Store:         "Amazon",
	})
	if err != nil {
		t.Fatalf("AddProduct() error = %v", err)
	}
	if !strings.Contains(p.AffiliateURL, "tag=bot-20") || !strings.Contains(p.AffiliateURL, "/dp/ABCDEFGHIJ") {
		t.Errorf("AffiliateURL = %q", p.AffiliateURL)
	}
	if p.DiscountPercentage != nil {
		t.Errorf("DiscountPercentage = %v, want nil com preço igual ao original", *p.DiscountPercentage)
	}

	got, err := db.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProduct() error = %v", err)
	}
	if got.AffiliateURL != p.AffiliateURL || got.CategoryName != "electronics" || got.StoreName != "Amazon" {
		t.Errorf("GetProduct() = %+v", got)
	}
}

func TestAddProductValidation(t *testing.T) {
	s, _ := newService(t, affiliate.Credentials{})
	ctx := context.Background()
	valid := ProductInput{Title: "Tênis", Price: 50, ProductURL: "https://www.nike.com/t/x", Category: "sports", Store: "Nike"}

	if _, err := s.AddProduct(ctx, valid); err != nil {
		t.Fatalf("AddProduct() error = %v", err)
	}

	bad := valid
	bad.Category = "garden"
	if _, err := s.AddProduct(ctx, bad); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("categoria desconhecida error = %v", err)
	}

	bad = valid
	bad.ProductURL = "www.nike.com/t/x"
	if _, err := s.AddProduct(ctx, bad); !errors.Is(err, ErrInvalidProduct) {
		t.Errorf("URL inválida error = %v", err)
	}

	bad = valid
	bad.Price = 0
	if _, err := s.AddProduct(ctx, bad); !errors.Is(err, ErrInvalidProduct) {
		t.Errorf("preço zero error = %v", err)
	}
}

func TestAddProductCreatesUnknownStore(t *testing.T) {
	s, db := newService(t, affiliate.Credentials{})
	ctx := context.Background()

	p, err := s.AddProduct(ctx, ProductInput{
		Title: "Panela", Price: 30, ProductURL: "https://loja.example.com/panela", Category: "kitchen", Store: "Loja Exemplo",
	})
	if err != nil {
		t.Fatalf("AddProduct() error = %v", err)
	}
	st, err := db.GetStoreByName(ctx, "Loja Exemplo")
	if err != nil || st.AffiliateNetwork != "generic" || p.StoreID != st.ID {
		t.Errorf("loja criada = %+v, %v", st, err)
	}
	if !strings.Contains(p.AffiliateURL, "utm_source=") {
		t.Errorf("AffiliateURL = %q", p.AffiliateURL)
	}
}

func TestImportScraped(t *testing.T) {
	s, db := newService(t, affiliate.Credentials{EbayCampaignID: "5338"})
	ctx := context.Background()

	scraped := []scraper.ScrapedProduct{
		{Title: "Notebook", Price: 700, OriginalPrice: models.Float(1000), ProductURL: "https://www.ebay.com/itm/123456789012", StoreName: "eBay", Category: "electronics"},
		{Title: "Bola", Price: 95, OriginalPrice: models.Float(100), ProductURL: "https://www.ebay.com/itm/223456789012", StoreName: "eBay", Category: "garden"},
		{Title: "Notebook repetido", Price: 650, ProductURL: "https://www.ebay.com/itm/123456789012", StoreName: "eBay"},
		{Title: "", Price: 10, ProductURL: "https://www.ebay.com/itm/1"},
	}

	added, err := s.ImportScraped(ctx, scraped)
	if err != nil || added != 2 {
		t.Fatalf("ImportScraped() = %d, %v, want 2", added, err)
	}

	deals, _ := db.ListDailyDeals(ctx, 10)
	if len(deals) != 1 || deals[0].Title != "Notebook" {
		t.Fatalf("ofertas do dia = %+v", deals)
	}
	if !strings.Contains(deals[0].AffiliateURL, "campid=5338") {
		t.Errorf("AffiliateURL = %q", deals[0].AffiliateURL)
	}

	// categoria desconhecida cai na padrão
	found, _ := db.SearchProducts(ctx, "Bola", 10)
	if len(found) != 1 || found[0].CategoryName != DefaultCategory {
		t.Errorf("SearchProducts(Bola) = %+v", found)
	}

	added, _ = s.ImportScraped(ctx, scraped)
	if added != 0 {
		t.Errorf("reimportação adicionou %d", added)
	}
}

func TestRegenerateAffiliateLinks(t *testing.T) {
	s, db := newService(t, affiliate.Credentials{})
	ctx := context.Background()

	p, err := s.AddProduct(ctx, ProductInput{
		Title: "Kindle", Price: 90, ProductURL: "https://www.amazon.com/dp/B0CFPJYX7P", Category: "books", Store: "Amazon",
	})
	if err != nil {
		t.Fatalf("AddProduct() error = %v", err)
	}
	if p.AffiliateURL != p.ProductURL {
		t.Fatalf("sem tag configurada AffiliateURL = %q", p.AffiliateURL)
	}

	// credencial configurada depois: o relink aplica a tag
	log := zaptest.NewLogger(t)
	s.links = affiliate.NewGenerator(affiliate.Credentials{AmazonTag: "bot-20"}, log)

	n, err := s.RegenerateAffiliateLinks(ctx, 0)
	if err != nil || n != 1 {
		t.Fatalf("RegenerateAffiliateLinks() = %d, %v", n, err)
	}
	n, _ = s.RegenerateAffiliateLinks(ctx, p.ID)
	if n != 0 {
		t.Errorf("segundo relink mudou %d links", n)
	}
	if _, err := s.RegenerateAffiliateLinks(ctx, 999); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("relink de produto inexistente error = %v", err)
	}

	// link do eBay depende só da URL e da loja
	s.links = affiliate.NewGenerator(affiliate.Credentials{AmazonTag: "bot-20", EbayCampaignID: "5338"}, log)
	item, err := s.AddProduct(ctx, ProductInput{
		Title: "Fone", Price: 50, ProductURL: "https://www.ebay.com/itm/123456789012", Category: "electronics", Store: "eBay",
	})
	if err != nil {
		t.Fatalf("AddProduct(eBay) error = %v", err)
	}
	if !strings.Contains(item.AffiliateURL, "campid=5338") {
		t.Fatalf("AffiliateURL eBay = %q", item.AffiliateURL)
	}
	for i := 0; i < 2; i++ {
		if n, err := s.RegenerateAffiliateLinks(ctx, 0); err != nil || n != 0 {
			t.Errorf("relink %d = %d, %v, want 0", i+1, n, err)
		}
	}

	updated, err := s.UpdateProductURL(ctx, p.ID, "https://www.amazon.com/gp/product/B09B8V1LZ3")
	if err != nil {
		t.Fatalf("UpdateProductURL() error = %v", err)
	}
	got, _ := db.GetProduct(ctx, p.ID)
	if got.AffiliateURL != updated.AffiliateURL || !strings.Contains(got.AffiliateURL, "/dp/B09B8V1LZ3") {
		t.Errorf("AffiliateURL = %q", got.AffiliateURL)
	}
}

func TestTrackingAndResolveClick(t *testing.T) {
	s, db := newService(t, affiliate.Credentials{})
	ctx := context.Background()

	user, err := s.RegisterUser(ctx, models.User{TelegramID: 42, Username: "ana"})
	if err != nil {
		t.Fatalf("RegisterUser() error = %v", err)
	}
	p, err := s.AddProduct(ctx, ProductInput{
		Title: "Mouse", Price: 20, ProductURL: "https://www.target.com/p/mouse", Category: "electronics", Store: "Target",
	})
	if err != nil {
		t.Fatalf("AddProduct() error = %v", err)
	}

	link, err := s.ResolveClick(ctx, p.ID, 42, ClickInfo{IPAddress: "10.0.0.1", UserAgent: "test"})
	if err != nil || link != p.AffiliateURL {
		t.Fatalf("ResolveClick() = %q, %v", link, err)
	}
	if err := s.TrackAction(ctx, 42, "search", map[string]any{"query": "mouse"}); err != nil {
		t.Fatalf("TrackAction() error = %v", err)
	}
	// clique anônimo também é registrado
	if err := s.TrackClick(ctx, 7, p.ID, ClickInfo{}); err != nil {
		t.Fatalf("TrackClick() error = %v", err)
	}

	if n, _ := db.UserClickCount(ctx, user.ID); n != 2 {
		t.Errorf("UserClickCount() = %d, want 2", n)
	}
	if n, _ := db.CountClicks(ctx); n != 3 {
		t.Errorf("CountClicks() = %d, want 3", n)
	}

	if err := db.SetProductActive(ctx, p.ID, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ResolveClick(ctx, p.ID, 42, ClickInfo{}); !errors.Is(err, ErrProductUnavailable) {
		t.Errorf("produto inativo error = %v", err)
	}
	if _, err := s.ResolveClick(ctx, 999, 42, ClickInfo{}); !errors.Is(err, ErrProductUnavailable) {
		t.Errorf("produto inexistente error = %v", err)
	}
}
