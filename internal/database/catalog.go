package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bot-afiliados/internal/models"
)

// UpsertCategory cria a categoria ou atualiza nome de exibição, ícone e descrição
func (db *DB) UpsertCategory(ctx context.Context, c models.Category) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO categories (name, display_name, emoji, description, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			display_name = excluded.display_name,
			emoji = excluded.emoji,
			description = excluded.description`,
		c.Name, c.DisplayName, c.Emoji, c.Description, formatTime(time.Now()),
	)
	return err
}

const categoryColumns = "id, name, display_name, COALESCE(emoji, ''), COALESCE(description, ''), created_at"

func scanCategory(s scanner) (models.Category, error) {
	var c models.Category
	var createdAt dbTime
	if err := s.Scan(&c.ID, &c.Name, &c.DisplayName, &c.Emoji, &c.Description, &createdAt); err != nil {
		return c, err
	}
	c.CreatedAt = createdAt.Time
	return c, nil
}

// ListCategories retorna todas as categorias em ordem de cadastro
func (db *DB) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT "+categoryColumns+" FROM categories ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategoryByName retorna uma categoria pela chave
func (db *DB) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+categoryColumns+" FROM categories WHERE name = ?", name)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertStore cria a loja se ainda não existir e devolve o registro gravado.
// Lojas existentes não são alteradas.
func (db *DB) UpsertStore(ctx context.Context, s models.Store) (*models.Store, error) {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO stores (name, website_url, affiliate_network, commission_rate, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO NOTHING`,
		s.Name, s.WebsiteURL, s.AffiliateNetwork, s.CommissionRate, formatTime(time.Now()),
	)
	if err != nil {
		return nil, err
	}
	return db.GetStoreByName(ctx, s.Name)
}

const storeColumns = "id, name, COALESCE(website_url, ''), COALESCE(affiliate_network, ''), COALESCE(commission_rate, 0), created_at"

func scanStore(s scanner) (models.Store, error) {
	var st models.Store
	var createdAt dbTime
	if err := s.Scan(&st.ID, &st.Name, &st.WebsiteURL, &st.AffiliateNetwork, &st.CommissionRate, &createdAt); err != nil {
		return st, err
	}
	st.CreatedAt = createdAt.Time
	return st, nil
}

// GetStoreByName busca a loja pelo nome sem diferenciar maiúsculas
func (db *DB) GetStoreByName(ctx context.Context, name string) (*models.Store, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+storeColumns+" FROM stores WHERE name = ? COLLATE NOCASE", name)
	s, err := scanStore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListStores retorna todas as lojas cadastradas
func (db *DB) ListStores(ctx context.Context) ([]models.Store, error) {
	rows, err := db.conn.QueryContext(ctx, "SELECT "+storeColumns+" FROM stores ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []models.Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// UpdateStoreCommission altera a comissão de uma loja
func (db *DB) UpdateStoreCommission(ctx context.Context, name string, rate float64) error {
	res, err := db.conn.ExecContext(ctx, "UPDATE stores SET commission_rate = ? WHERE name = ? COLLATE NOCASE", rate, name)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
