package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bot-afiliados/internal/models"
)

const productSelect = `
	SELECT p.id, p.title, COALESCE(p.description, ''), p.price, p.original_price, p.discount_percentage,
		COALESCE(p.image_url, ''), p.product_url, p.affiliate_url,
		COALESCE(p.category_id, 0), COALESCE(c.name, ''), COALESCE(p.store_id, 0), COALESCE(s.name, ''),
		p.is_daily_deal, p.is_featured, p.is_active, p.rating, COALESCE(p.review_count, 0),
		p.created_at, p.updated_at, p.expires_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN stores s ON s.id = p.store_id`

func scanProduct(s scanner) (models.Product, error) {
	var p models.Product
	var originalPrice, discount, rating sql.NullFloat64
	var createdAt, updatedAt, expiresAt dbTime
	err := s.Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &originalPrice, &discount,
		&p.ImageURL, &p.ProductURL, &p.AffiliateURL,
		&p.CategoryID, &p.CategoryName, &p.StoreID, &p.StoreName,
		&p.IsDailyDeal, &p.IsFeatured, &p.IsActive, &rating, &p.ReviewCount,
		&createdAt, &updatedAt, &expiresAt,
	)
	if err != nil {
		return p, err
	}
	if originalPrice.Valid {
		p.OriginalPrice = &originalPrice.Float64
	}
	if discount.Valid {
		p.DiscountPercentage = &discount.Float64
	}
	if rating.Valid {
		p.Rating = &rating.Float64
	}
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	p.ExpiresAt = expiresAt.ptr()
	return p, nil
}

func (db *DB) queryProducts(ctx context.Context, q querier, query string, args ...any) ([]models.Product, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// CreateProduct grava um novo produto e preenche ID e datas
func (db *DB) CreateProduct(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO products (title, description, price, original_price, discount_percentage, image_url,
			product_url, affiliate_url, category_id, store_id, is_daily_deal, is_featured, is_active,
			rating, review_count, created_at, updated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Title, p.Description, p.Price, nullFloat(p.OriginalPrice), nullFloat(p.DiscountPercentage), p.ImageURL,
		p.ProductURL, p.AffiliateURL, nullID(p.CategoryID), nullID(p.StoreID), p.IsDailyDeal, p.IsFeatured, p.IsActive,
		nullFloat(p.Rating), p.ReviewCount, formatTime(now), formatTime(now), formatTimePtr(p.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("inserindo produto: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

// GetProduct retorna um produto pelo ID
func (db *DB) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	p, err := scanProduct(db.conn.QueryRowContext(ctx, productSelect+" WHERE p.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ProductExistsByURL indica se já existe produto com a URL informada
func (db *DB) ProductExistsByURL(ctx context.Context, productURL string) (bool, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM products WHERE product_url = ?", productURL).Scan(&n)
	return n > 0, err
}

// UpdateProductLinks grava a URL do produto e o link de afiliado recalculado
func (db *DB) UpdateProductLinks(ctx context.Context, id int64, productURL, affiliateURL string) error {
	res, err := db.conn.ExecContext(ctx,
		"UPDATE products SET product_url = ?, affiliate_url = ?, updated_at = ? WHERE id = ?",
		productURL, affiliateURL, formatTime(time.Now()), id,
	)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// SetProductActive ativa ou desativa um produto
func (db *DB) SetProductActive(ctx context.Context, id int64, active bool) error {
	res, err := db.conn.ExecContext(ctx, "UPDATE products SET is_active = ? WHERE id = ?", active, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// DeleteProduct remove um produto. Os cliques registrados são mantidos.
func (db *DB) DeleteProduct(ctx context.Context, id int64) error {
	res, err := db.conn.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// ListDailyDeals retorna as ofertas do dia ativas, maiores descontos primeiro
func (db *DB) ListDailyDeals(ctx context.Context, limit int) ([]models.Product, error) {
	return db.queryProducts(ctx, db.conn, productSelect+`
		WHERE p.is_active = 1 AND p.is_daily_deal = 1
		ORDER BY COALESCE(p.discount_percentage, 0) DESC, p.id
		LIMIT ?`, limit)
}

// ListByCategory retorna produtos ativos de uma categoria
func (db *DB) ListByCategory(ctx context.Context, category string, limit int) ([]models.Product, error) {
	return db.queryProducts(ctx, db.conn, productSelect+`
		WHERE p.is_active = 1 AND c.name = ?
		ORDER BY COALESCE(p.discount_percentage, 0) DESC, p.id
		LIMIT ?`, category, limit)
}

// SearchProducts busca produtos ativos pelo título ou descrição
func (db *DB) SearchProducts(ctx context.Context, term string, limit int) ([]models.Product, error) {
	like := "%" + term + "%"
	return db.queryProducts(ctx, db.conn, productSelect+`
		WHERE p.is_active = 1 AND (p.title LIKE ? OR p.description LIKE ?)
		ORDER BY COALESCE(p.discount_percentage, 0) DESC, p.id
		LIMIT ?`, like, like, limit)
}

// ListProductsForRelink retorna todos os produtos, ou só o informado quando id > 0
func (db *DB) ListProductsForRelink(ctx context.Context, id int64) ([]models.Product, error) {
	if id > 0 {
		return db.queryProducts(ctx, db.conn, productSelect+" WHERE p.id = ?", id)
	}
	return db.queryProducts(ctx, db.conn, productSelect+" ORDER BY p.id")
}

// ListStaleProducts retorna produtos ativos não atualizados desde cutoff,
// os mais antigos primeiro, no máximo limit
func (db *DB) ListStaleProducts(ctx context.Context, cutoff time.Time, limit int) ([]models.Product, error) {
	return db.queryProducts(ctx, db.conn, productSelect+`
		WHERE p.is_active = 1 AND p.updated_at < ?
		ORDER BY p.updated_at ASC, p.id
		LIMIT ?`, formatCutoff(cutoff), limit)
}

// ApplyPriceUpdates grava todas as alterações de preço numa única transação
func (db *DB) ApplyPriceUpdates(ctx context.Context, updates []models.PriceUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		"UPDATE products SET price = ?, discount_percentage = ?, updated_at = ? WHERE id = ?")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, u := range updates {
		if _, err := stmt.ExecContext(ctx, u.Price, nullFloat(u.DiscountPercentage), formatTime(u.UpdatedAt), u.ProductID); err != nil {
			tx.Rollback()
			return fmt.Errorf("atualizando produto %d: %w", u.ProductID, err)
		}
	}

	return tx.Commit()
}

// DealCriteria define quais produtos podem virar oferta do dia
type DealCriteria struct {
	MinDiscount float64
	MinRating   float64
	Candidates  int
}

// ReselectDailyDeals refaz a seleção de ofertas do dia numa única transação:
// limpa todas as marcações, busca os candidatos, aplica pick e marca os escolhidos.
func (db *DB) ReselectDailyDeals(ctx context.Context, c DealCriteria, now time.Time, pick func([]models.Product) []models.Product) ([]models.Product, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, "UPDATE products SET is_daily_deal = 0 WHERE is_daily_deal = 1"); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("limpando ofertas do dia: %w", err)
	}

	candidates, err := db.queryProducts(ctx, tx, productSelect+`
		WHERE p.is_active = 1 AND p.discount_percentage >= ? AND p.rating >= ?
		ORDER BY p.discount_percentage DESC, p.id
		LIMIT ?`, c.MinDiscount, c.MinRating, c.Candidates)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("buscando candidatos: %w", err)
	}

	selected := pick(candidates)
	for i := range selected {
		if _, err := tx.ExecContext(ctx,
			"UPDATE products SET is_daily_deal = 1, updated_at = ? WHERE id = ?",
			formatTime(now), selected[i].ID,
		); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("marcando oferta %d: %w", selected[i].ID, err)
		}
		selected[i].IsDailyDeal = true
		selected[i].UpdatedAt = now.UTC().Truncate(time.Second)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return selected, nil
}

// MonitoringStats retorna os totais usados pelo monitor e pelo painel
func (db *DB) MonitoringStats(ctx context.Context) (*models.MonitoringStats, error) {
	var s models.MonitoringStats
	var last dbTime
	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN is_active = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_active = 1 AND is_daily_deal = 1 THEN 1 ELSE 0 END), 0),
			MAX(updated_at)
		FROM products`).Scan(&s.TotalProducts, &s.ActiveProducts, &s.DailyDeals, &last)
	if err != nil {
		return nil, err
	}
	s.LastUpdate = last.ptr()
	return &s, nil
}
