package database

import (
	"context"
	"time"

	"bot-afiliados/internal/models"
)

// RecordClick grava um evento de clique. Eventos nunca são alterados.
func (db *DB) RecordClick(ctx context.Context, c *models.ClickEvent) error {
	if c.ClickedAt.IsZero() {
		c.ClickedAt = time.Now().UTC().Truncate(time.Second)
	}
	if c.ClickType == "" {
		c.ClickType = models.ClickAffiliateLink
	}

	var productID any
	if c.ProductID != nil {
		productID = *c.ProductID
	}
	var metadata any
	if c.Metadata != "" {
		metadata = c.Metadata
	}

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO click_tracking (user_id, product_id, click_type, clicked_at, ip_address, user_agent, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullID(c.UserID), productID, c.ClickType, formatTime(c.ClickedAt), c.IPAddress, c.UserAgent, metadata,
	)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}

// DeleteClicksBefore remove cliques com clicked_at estritamente anterior a cutoff
func (db *DB) DeleteClicksBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := db.conn.ExecContext(ctx, "DELETE FROM click_tracking WHERE clicked_at < ?", formatCutoff(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountClicks retorna o total de cliques registrados
func (db *DB) CountClicks(ctx context.Context) (int64, error) {
	var n int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM click_tracking").Scan(&n)
	return n, err
}

// ProductClickStats agrega os cliques de um produto; recentes são os desde since
func (db *DB) ProductClickStats(ctx context.Context, productID int64, since time.Time) (*models.ProductClickStats, error) {
	s := &models.ProductClickStats{ByType: map[string]int64{}}
	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT user_id),
			COALESCE(SUM(CASE WHEN clicked_at >= ? THEN 1 ELSE 0 END), 0)
		FROM click_tracking WHERE product_id = ?`,
		formatTime(since), productID,
	).Scan(&s.TotalClicks, &s.UniqueUsers, &s.RecentClicks)
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx,
		"SELECT click_type, COUNT(*) FROM click_tracking WHERE product_id = ? GROUP BY click_type", productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var n int64
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		s.ByType[kind] = n
	}
	return s, rows.Err()
}

// GlobalStats resume o uso do bot: usuários ativos nos últimos 30 dias,
// produtos mais clicados e atividade dos últimos 7 dias
func (db *DB) GlobalStats(ctx context.Context, now time.Time, top int) (*models.GlobalStats, error) {
	s := &models.GlobalStats{}

	err := db.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN last_active >= ? THEN 1 ELSE 0 END), 0) FROM users`,
		formatTime(now.AddDate(0, 0, -30)),
	).Scan(&s.TotalUsers, &s.ActiveUsers)
	if err != nil {
		return nil, err
	}

	if s.TotalClicks, err = db.CountClicks(ctx); err != nil {
		return nil, err
	}

	if s.PopularProducts, err = db.popularProducts(ctx, top); err != nil {
		return nil, err
	}

	if s.DailyActivity, err = db.dailyActivity(ctx, now.AddDate(0, 0, -7)); err != nil {
		return nil, err
	}

	if s.Engagement, err = db.EngagementLevels(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (db *DB) popularProducts(ctx context.Context, limit int) ([]models.ProductClicks, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT p.id, p.title, COUNT(c.id) AS clicks
		FROM click_tracking c
		JOIN products p ON p.id = c.product_id
		GROUP BY p.id, p.title
		ORDER BY clicks DESC, p.id
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ProductClicks
	for rows.Next() {
		var pc models.ProductClicks
		if err := rows.Scan(&pc.ProductID, &pc.Title, &pc.Clicks); err != nil {
			return nil, err
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

func (db *DB) dailyActivity(ctx context.Context, since time.Time) ([]models.DailyClicks, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT substr(clicked_at, 1, 10) AS day, COUNT(*)
		FROM click_tracking
		WHERE clicked_at >= ?
		GROUP BY day
		ORDER BY day`, formatTime(since))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DailyClicks
	for rows.Next() {
		var d models.DailyClicks
		if err := rows.Scan(&d.Date, &d.Clicks); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// EngagementLevels agrupa usuários pela quantidade de cliques
func (db *DB) EngagementLevels(ctx context.Context) (models.EngagementLevels, error) {
	var e models.EngagementLevels
	err := db.conn.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN n >= 10 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN n BETWEEN 3 AND 9 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN n BETWEEN 1 AND 2 THEN 1 ELSE 0 END), 0)
		FROM (SELECT user_id, COUNT(*) AS n FROM click_tracking WHERE user_id IS NOT NULL GROUP BY user_id)`,
	).Scan(&e.High, &e.Medium, &e.Low)
	return e, err
}

// UserClickCount retorna quantos cliques o usuário registrou
func (db *DB) UserClickCount(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM click_tracking WHERE user_id = ?", userID).Scan(&n)
	return n, err
}
