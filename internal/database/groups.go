package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bot-afiliados/internal/models"
)

// AuthorizeGroup autoriza (ou reativa) um grupo para receber ofertas
func (db *DB) AuthorizeGroup(ctx context.Context, g models.Group) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO telegram_groups (chat_id, title, authorized_by, auto_deals, is_active, authorized_at)
		VALUES (?, ?, ?, 1, 1, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			title = excluded.title,
			authorized_by = excluded.authorized_by,
			is_active = 1,
			authorized_at = excluded.authorized_at`,
		g.ChatID, g.Title, g.AuthorizedBy, formatTime(time.Now()),
	)
	return err
}

// DeauthorizeGroup remove a autorização do grupo. ErrNotFound se ele não estava autorizado.
func (db *DB) DeauthorizeGroup(ctx context.Context, chatID int64) error {
	res, err := db.conn.ExecContext(ctx, "UPDATE telegram_groups SET is_active = 0 WHERE chat_id = ? AND is_active = 1", chatID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// DeactivateGroup desativa um grupo que não aceita mais mensagens do bot
func (db *DB) DeactivateGroup(ctx context.Context, chatID int64) error {
	_, err := db.conn.ExecContext(ctx, "UPDATE telegram_groups SET is_active = 0 WHERE chat_id = ?", chatID)
	return err
}

// IsGroupAuthorized indica se o grupo está autorizado
func (db *DB) IsGroupAuthorized(ctx context.Context, chatID int64) (bool, error) {
	var active bool
	err := db.conn.QueryRowContext(ctx, "SELECT is_active FROM telegram_groups WHERE chat_id = ?", chatID).Scan(&active)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return active, err
}

// SetGroupAutoDeals liga ou desliga o envio automático de ofertas no grupo
func (db *DB) SetGroupAutoDeals(ctx context.Context, chatID int64, enabled bool) error {
	res, err := db.conn.ExecContext(ctx, "UPDATE telegram_groups SET auto_deals = ? WHERE chat_id = ?", enabled, chatID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// ListDealGroups retorna os grupos ativos que recebem ofertas automáticas
func (db *DB) ListDealGroups(ctx context.Context) ([]models.Group, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT chat_id, COALESCE(title, ''), COALESCE(authorized_by, 0), auto_deals, is_active, authorized_at
		FROM telegram_groups
		WHERE is_active = 1 AND auto_deals = 1
		ORDER BY chat_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		var authorizedAt dbTime
		if err := rows.Scan(&g.ChatID, &g.Title, &g.AuthorizedBy, &g.AutoDeals, &g.IsActive, &authorizedAt); err != nil {
			return nil, err
		}
		g.AuthorizedAt = authorizedAt.Time
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
