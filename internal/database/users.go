package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"bot-afiliados/internal/models"
)

const userColumns = `id, telegram_id, COALESCE(username, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
	is_admin, is_active, notifications_enabled, COALESCE(preferred_categories, ''),
	max_price_filter, min_discount_filter, created_at, last_active`

func scanUser(s scanner) (models.User, error) {
	var u models.User
	var categories string
	var maxPrice, minDiscount sql.NullFloat64
	var createdAt, lastActive dbTime
	err := s.Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName,
		&u.IsAdmin, &u.IsActive, &u.NotificationsEnabled, &categories,
		&maxPrice, &minDiscount, &createdAt, &lastActive)
	if err != nil {
		return u, err
	}
	if categories != "" {
		// valor inválido vira lista vazia
		_ = json.Unmarshal([]byte(categories), &u.PreferredCategories)
	}
	if maxPrice.Valid {
		u.MaxPriceFilter = &maxPrice.Float64
	}
	if minDiscount.Valid {
		u.MinDiscountFilter = &minDiscount.Float64
	}
	u.CreatedAt = createdAt.Time
	u.LastActive = lastActive.Time
	return u, nil
}

// UpsertUser registra o usuário no primeiro contato ou atualiza o perfil e
// a última atividade. Retorna o usuário gravado e se ele foi criado agora.
func (db *DB) UpsertUser(ctx context.Context, u models.User) (*models.User, bool, error) {
	now := formatTime(time.Now())

	existing, err := db.GetUserByTelegramID(ctx, u.TelegramID)
	switch {
	case errors.Is(err, ErrNotFound):
		_, err = db.conn.ExecContext(ctx, `
			INSERT INTO users (telegram_id, username, first_name, last_name, is_admin, is_active,
				notifications_enabled, created_at, last_active)
			VALUES (?, ?, ?, ?, ?, 1, 1, ?, ?)`,
			u.TelegramID, u.Username, u.FirstName, u.LastName, u.IsAdmin, now, now,
		)
		if err != nil {
			return nil, false, err
		}
		created, err := db.GetUserByTelegramID(ctx, u.TelegramID)
		return created, true, err
	case err != nil:
		return nil, false, err
	}

	_, err = db.conn.ExecContext(ctx, `
		UPDATE users SET username = ?, first_name = ?, last_name = ?, is_admin = ?, is_active = 1, last_active = ?
		WHERE id = ?`,
		u.Username, u.FirstName, u.LastName, u.IsAdmin, now, existing.ID,
	)
	if err != nil {
		return nil, false, err
	}
	updated, err := db.GetUserByTelegramID(ctx, u.TelegramID)
	return updated, false, err
}

// GetUserByTelegramID busca um usuário pelo ID do Telegram
func (db *DB) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE telegram_id = ?", telegramID)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetNotifications liga ou desliga os alertas do usuário
func (db *DB) SetNotifications(ctx context.Context, telegramID int64, enabled bool) error {
	res, err := db.conn.ExecContext(ctx, "UPDATE users SET notifications_enabled = ? WHERE telegram_id = ?", enabled, telegramID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// UpdatePreferences grava os filtros de preferência do usuário
func (db *DB) UpdatePreferences(ctx context.Context, telegramID int64, maxPrice, minDiscount *float64, categories []string) error {
	var encoded any
	if cats := models.NormalizeCategories(categories); len(cats) > 0 {
		b, err := json.Marshal(cats)
		if err != nil {
			return err
		}
		encoded = string(b)
	}

	res, err := db.conn.ExecContext(ctx, `
		UPDATE users SET max_price_filter = ?, min_discount_filter = ?, preferred_categories = ?
		WHERE telegram_id = ?`,
		nullFloat(maxPrice), nullFloat(minDiscount), encoded, telegramID,
	)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// DeactivateUser marca o usuário como inativo (ex.: bloqueou o bot)
func (db *DB) DeactivateUser(ctx context.Context, telegramID int64) error {
	_, err := db.conn.ExecContext(ctx, "UPDATE users SET is_active = 0 WHERE telegram_id = ?", telegramID)
	return err
}

// ListNotifiableUsers retorna usuários ativos com alertas ligados
func (db *DB) ListNotifiableUsers(ctx context.Context) ([]models.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE is_active = 1 AND notifications_enabled = 1 ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers retorna o total de usuários e quantos estão ativos
func (db *DB) CountUsers(ctx context.Context) (total, active int64, err error) {
	err = db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(CASE WHEN is_active = 1 THEN 1 ELSE 0 END), 0) FROM users",
	).Scan(&total, &active)
	return total, active, err
}
