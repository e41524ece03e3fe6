package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	_ "github.com/mattn/go-sqlite3"                      // sqlite3 (cgo)
	_ "github.com/tursodatabase/libsql-client-go/libsql" // libsql (Turso)
	_ "modernc.org/sqlite"                               // sqlite (Go puro)
)

// Drivers suportados
const (
	DriverSQLite3 = "sqlite3"
	DriverSQLite  = "sqlite"
	DriverLibSQL  = "libsql"
)

// ErrNotFound indica que o registro procurado não existe
var ErrNotFound = errors.New("registro não encontrado")

// DB encapsula a conexão com o banco de dados
type DB struct {
	conn   *sql.DB
	driver string
	log    *zap.Logger
}

// DriverFor escolhe o driver pela URL do banco
func DriverFor(dsn string) string {
	if strings.Contains(dsn, "libsql://") || strings.Contains(dsn, "wss://") {
		return DriverLibSQL
	}
	return DriverSQLite3
}

// NormalizeDSN remove o prefixo sqlite:/// usado por outras ferramentas
func NormalizeDSN(dsn string) string {
	return strings.TrimPrefix(dsn, "sqlite:///")
}

// New cria uma nova instância do banco escolhendo o driver pela URL
func New(dsn string, log *zap.Logger) (*DB, error) {
	dsn = NormalizeDSN(dsn)
	return Open(DriverFor(dsn), dsn, log)
}

// Open abre o banco com o driver informado e cria as tabelas
func Open(driver, dsn string, log *zap.Logger) (*DB, error) {
	dsn = NormalizeDSN(dsn)
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("abrindo banco (%s): %w", driver, err)
	}

	// SQLite local aceita um único escritor; uma conexão evita "database is locked"
	if driver != DriverLibSQL {
		conn.SetMaxOpenConns(1)
	}

	db := &DB{conn: conn, driver: driver, log: log}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("conectando ao banco: %w", err)
	}

	if err := db.init(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("criando tabelas: %w", err)
	}

	log.Info("Banco de dados inicializado com sucesso", zap.String("driver", driver))
	return db, nil
}

// Close fecha a conexão com o banco de dados
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifica se o banco responde
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		emoji TEXT,
		description TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS stores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		website_url TEXT,
		affiliate_network TEXT,
		commission_rate REAL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT,
		price REAL NOT NULL,
		original_price REAL,
		discount_percentage REAL,
		image_url TEXT,
		product_url TEXT NOT NULL,
		affiliate_url TEXT NOT NULL,
		category_id INTEGER REFERENCES categories(id),
		store_id INTEGER REFERENCES stores(id),
		is_daily_deal BOOLEAN DEFAULT 0,
		is_featured BOOLEAN DEFAULT 0,
		is_active BOOLEAN DEFAULT 1,
		rating REAL,
		review_count INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		expires_at DATETIME
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_updated_at ON products(updated_at)`,
	`CREATE INDEX IF NOT EXISTS idx_products_product_url ON products(product_url)`,
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		telegram_id INTEGER NOT NULL UNIQUE,
		username TEXT,
		first_name TEXT,
		last_name TEXT,
		is_admin BOOLEAN DEFAULT 0,
		is_active BOOLEAN DEFAULT 1,
		notifications_enabled BOOLEAN DEFAULT 1,
		preferred_categories TEXT,
		max_price_filter REAL,
		min_discount_filter REAL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_active DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS click_tracking (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER REFERENCES users(id),
		product_id INTEGER,
		click_type TEXT NOT NULL DEFAULT 'affiliate_link',
		clicked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		ip_address TEXT,
		user_agent TEXT,
		metadata TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_click_tracking_clicked_at ON click_tracking(clicked_at)`,
	`CREATE INDEX IF NOT EXISTS idx_click_tracking_product_id ON click_tracking(product_id)`,
	`CREATE TABLE IF NOT EXISTS telegram_groups (
		chat_id INTEGER PRIMARY KEY,
		title TEXT,
		authorized_by INTEGER,
		auto_deals BOOLEAN DEFAULT 1,
		is_active BOOLEAN DEFAULT 1,
		authorized_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
}

// init cria as tabelas necessárias
func (db *DB) init() error {
	for _, stmt := range schema {
		if _, err := db.conn.Exec(stmt); err != nil {
			return err
		}
	}

	// Tentar adicionar colunas se não existirem (migração)
	// SQLite não suporta IF NOT EXISTS em ALTER TABLE, então ignoramos o erro
	_, _ = db.conn.Exec("ALTER TABLE users ADD COLUMN notifications_enabled BOOLEAN DEFAULT 1")
	_, _ = db.conn.Exec("ALTER TABLE click_tracking ADD COLUMN click_type TEXT NOT NULL DEFAULT 'affiliate_link'")
	_, _ = db.conn.Exec("ALTER TABLE click_tracking ADD COLUMN metadata TEXT")

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}
