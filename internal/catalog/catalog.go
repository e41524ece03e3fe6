// Package catalog concentra as regras de escrita do catálogo: produtos,
// lojas, usuários e cliques.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"bot-afiliados/internal/affiliate"
	"bot-afiliados/internal/database"
	"bot-afiliados/internal/metrics"
	"bot-afiliados/internal/models"
	"bot-afiliados/internal/scraper"
)

// Limiar de desconto para um produto coletado já entrar como oferta do dia
const importDealDiscount = 20

var (
	// ErrCategoryNotFound indica categoria inexistente no cadastro
	ErrCategoryNotFound = errors.New("categoria não encontrada")
	// ErrInvalidProduct indica dados obrigatórios ausentes ou inválidos
	ErrInvalidProduct = errors.New("produto inválido")
	// ErrProductUnavailable indica produto inexistente ou desativado
	ErrProductUnavailable = errors.New("produto indisponível")
)

// Service aplica as regras de negócio sobre o banco
type Service struct {
	db    *database.DB
	links *affiliate.Generator
	dir   *affiliate.Directory
	log   *zap.Logger
}

// NewService cria o serviço do catálogo
func NewService(db *database.DB, links *affiliate.Generator, dir *affiliate.Directory, log *zap.Logger) *Service {
	return &Service{db: db, links: links, dir: dir, log: log}
}

// SeedDefaults cria as categorias padrão e as lojas do diretório
func (s *Service) SeedDefaults(ctx context.Context) error {
	for _, c := range DefaultCategories {
		if err := s.db.UpsertCategory(ctx, c); err != nil {
			return fmt.Errorf("criando categoria %s: %w", c.Name, err)
		}
	}
	for _, info := range s.dir.Stores() {
		if _, err := s.db.UpsertStore(ctx, storeFromInfo(info)); err != nil {
			return fmt.Errorf("criando loja %s: %w", info.Name, err)
		}
	}
	s.log.Info("Cadastro inicial conferido",
		zap.Int("categories", len(DefaultCategories)),
		zap.Int("stores", len(s.dir.Stores())))
	return nil
}

func storeFromInfo(info affiliate.StoreInfo) models.Store {
	return models.Store{
		Name:             info.Name,
		WebsiteURL:       info.Website,
		AffiliateNetwork: info.AffiliateNetwork().String(),
		CommissionRate:   info.CommissionRate,
	}
}

// store busca a loja pelo nome e a cria quando não existe, usando os dados
// do diretório quando a loja é conhecida
func (s *Service) store(ctx context.Context, name string) (*models.Store, error) {
	st, err := s.db.GetStoreByName(ctx, name)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	if info, ok := s.dir.Lookup(name); ok {
		return s.db.UpsertStore(ctx, storeFromInfo(info))
	}
	return s.db.UpsertStore(ctx, models.Store{
		Name:             name,
		AffiliateNetwork: affiliate.DetectNetwork(name).String(),
	})
}

// ProductInput são os dados informados pelo administrador para um novo produto
type ProductInput struct {
	Title         string
	Description   string
	Price         float64
	OriginalPrice *float64
	ImageURL      string
	ProductURL    string
	Category      string
	Store         string
	Rating        *float64
	ReviewCount   int
	IsDailyDeal   bool
	IsFeatured    bool
}

func (in ProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: título obrigatório", ErrInvalidProduct)
	case in.Price <= 0:
		return fmt.Errorf("%w: preço deve ser maior que zero", ErrInvalidProduct)
	case !strings.HasPrefix(in.ProductURL, "http://") && !strings.HasPrefix(in.ProductURL, "https://"):
		return fmt.Errorf("%w: URL deve começar com http:// ou https://", ErrInvalidProduct)
	case strings.TrimSpace(in.Store) == "":
		return fmt.Errorf("%w: loja obrigatória", ErrInvalidProduct)
	}
	return nil
}

// AddProduct cadastra um produto. O desconto é derivado dos preços e o link
// de afiliado é gerado na gravação.
func (s *Service) AddProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	category, err := s.db.GetCategoryByName(ctx, strings.ToLower(strings.TrimSpace(in.Category)))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, in.Category)
	}
	if err != nil {
		return nil, err
	}

	store, err := s.store(ctx, strings.TrimSpace(in.Store))
	if err != nil {
		return nil, fmt.Errorf("buscando loja: %w", err)
	}

	p := &models.Product{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		ImageURL:     in.ImageURL,
		ProductURL:   in.ProductURL,
		AffiliateURL: s.links.Generate(in.ProductURL, store.Name, ""),
		CategoryID:   category.ID,
		CategoryName: category.Name,
		StoreID:      store.ID,
		StoreName:    store.Name,
		IsDailyDeal:  in.IsDailyDeal,
		IsFeatured:   in.IsFeatured,
		IsActive:     true,
		Rating:       in.Rating,
		ReviewCount:  in.ReviewCount,
	}
	p.SetPrices(models.RoundPrice(in.Price), in.OriginalPrice)

	if err := s.db.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("Produto adicionado",
		zap.Int64("product_id", p.ID),
		zap.String("store", p.StoreName),
		zap.String("category", p.CategoryName))
	return p, nil
}

// ImportScraped grava os produtos coletados que ainda não existem no
// catálogo. Retorna quantos foram adicionados.
func (s *Service) ImportScraped(ctx context.Context, products []scraper.ScrapedProduct) (int, error) {
	added := 0
	for _, sp := range products {
		if err := ctx.Err(); err != nil {
			return added, err
		}

		ok, err := s.importOne(ctx, sp)
		switch {
		case err != nil:
			metrics.ProductsImported.WithLabelValues("failed").Inc()
			s.log.Error("Erro ao importar produto", zap.String("url", sp.ProductURL), zap.Error(err))
		case ok:
			added++
			metrics.ProductsImported.WithLabelValues("added").Inc()
		default:
			metrics.ProductsImported.WithLabelValues("duplicate").Inc()
		}
	}
	s.log.Info("Produtos coletados importados", zap.Int("added", added), zap.Int("scraped", len(products)))
	return added, nil
}

func (s *Service) importOne(ctx context.Context, sp scraper.ScrapedProduct) (bool, error) {
	if sp.ProductURL == "" || sp.Title == "" || sp.Price <= 0 {
		return false, fmt.Errorf("%w: dados incompletos", ErrInvalidProduct)
	}

	exists, err := s.db.ProductExistsByURL(ctx, sp.ProductURL)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	store, err := s.store(ctx, sp.StoreName)
	if err != nil {
		return false, fmt.Errorf("buscando loja: %w", err)
	}

	category, err := s.db.GetCategoryByName(ctx, sp.Category)
	if errors.Is(err, database.ErrNotFound) {
		category, err = s.db.GetCategoryByName(ctx, DefaultCategory)
	}
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return false, err
	}

	p := &models.Product{
		Title:        sp.Title,
		Description:  sp.Description,
		ImageURL:     sp.ImageURL,
		ProductURL:   sp.ProductURL,
		AffiliateURL: s.links.Generate(sp.ProductURL, store.Name, ""),
		StoreID:      store.ID,
		StoreName:    store.Name,
		IsActive:     true,
		Rating:       sp.Rating,
		ReviewCount:  sp.ReviewCount,
	}
	if category != nil {
		p.CategoryID = category.ID
		p.CategoryName = category.Name
	}
	p.SetPrices(sp.Price, sp.OriginalPrice)
	p.IsDailyDeal = p.Discount() > importDealDiscount

	if err := s.db.CreateProduct(ctx, p); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateProductURL troca a URL do produto e recalcula o link de afiliado
func (s *Service) UpdateProductURL(ctx context.Context, id int64, productURL string) (*models.Product, error) {
	p, err := s.db.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	p.ProductURL = productURL
	p.AffiliateURL = s.links.Generate(productURL, p.StoreName, "")
	if err := s.db.UpdateProductLinks(ctx, p.ID, p.ProductURL, p.AffiliateURL); err != nil {
		return nil, err
	}
	return p, nil
}

// RegenerateAffiliateLinks recalcula os links de todos os produtos, ou só do
// produto informado quando id > 0. Retorna quantos links mudaram.
func (s *Service) RegenerateAffiliateLinks(ctx context.Context, id int64) (int, error) {
	products, err := s.db.ListProductsForRelink(ctx, id)
	if err != nil {
		return 0, err
	}
	if id > 0 && len(products) == 0 {
		return 0, database.ErrNotFound
	}

	changed := 0
	for _, p := range products {
		link := s.links.Generate(p.ProductURL, p.StoreName, "")
		if link == p.AffiliateURL {
			continue
		}
		if err := s.db.UpdateProductLinks(ctx, p.ID, p.ProductURL, link); err != nil {
			s.log.Error("Erro ao atualizar link de afiliado", zap.Int64("product_id", p.ID), zap.Error(err))
			continue
		}
		changed++
	}
	s.log.Info("Links de afiliado regenerados", zap.Int("products", len(products)), zap.Int("changed", changed))
	return changed, nil
}

// RegisterUser registra o usuário no primeiro contato ou atualiza seus dados
func (s *Service) RegisterUser(ctx context.Context, u models.User) (*models.User, error) {
	user, created, err := s.db.UpsertUser(ctx, u)
	if err != nil {
		return nil, err
	}
	if created {
		s.log.Info("Novo usuário registrado", zap.Int64("telegram_id", u.TelegramID), zap.String("username", u.Username))
	}
	return user, nil
}

// ClickInfo são os dados opcionais da requisição que originou o clique
type ClickInfo struct {
	IPAddress string
	UserAgent string
}

// TrackClick registra o clique de um usuário no link de afiliado de um produto
func (s *Service) TrackClick(ctx context.Context, telegramID, productID int64, info ClickInfo) error {
	return s.record(ctx, telegramID, &models.ClickEvent{
		ProductID: &productID,
		ClickType: models.ClickAffiliateLink,
		IPAddress: info.IPAddress,
		UserAgent: info.UserAgent,
	})
}

// TrackAction registra uma ação genérica do usuário, como uma busca
func (s *Service) TrackAction(ctx context.Context, telegramID int64, action string, metadata map[string]any) error {
	c := &models.ClickEvent{ClickType: models.ClickActionPrefix + action}
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("serializando metadados: %w", err)
		}
		c.Metadata = string(b)
	}
	return s.record(ctx, telegramID, c)
}

// record associa o evento ao usuário cadastrado; cliques de quem ainda não
// falou com o bot ficam sem usuário
func (s *Service) record(ctx context.Context, telegramID int64, c *models.ClickEvent) error {
	if telegramID != 0 {
		u, err := s.db.GetUserByTelegramID(ctx, telegramID)
		switch {
		case err == nil:
			c.UserID = u.ID
		case !errors.Is(err, database.ErrNotFound):
			return err
		}
	}
	return s.db.RecordClick(ctx, c)
}

// ResolveClick registra o clique e devolve o link de afiliado para o
// redirecionamento
func (s *Service) ResolveClick(ctx context.Context, productID, telegramID int64, info ClickInfo) (string, error) {
	p, err := s.db.GetProduct(ctx, productID)
	if errors.Is(err, database.ErrNotFound) {
		return "", ErrProductUnavailable
	}
	if err != nil {
		return "", err
	}
	if !p.IsActive || p.AffiliateURL == "" {
		return "", ErrProductUnavailable
	}

	if err := s.TrackClick(ctx, telegramID, productID, info); err != nil {
		// o redirecionamento não depende do registro do clique
		s.log.Error("Erro ao registrar clique", zap.Int64("product_id", productID), zap.Error(err))
	}
	return p.AffiliateURL, nil
}
