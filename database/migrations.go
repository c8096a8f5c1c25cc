package database

import (
	"database/sql"
	"fmt"
)

// Схема каталога. Выполняется при каждом открытии базы,
// все выражения идемпотентны.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS master_products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		canonical_name TEXT NOT NULL,
		brand TEXT,
		model TEXT,
		category TEXT,
		normalized_name TEXT NOT NULL,
		search_tokens TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS master_product_variants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		master_product_id INTEGER NOT NULL REFERENCES master_products(id) ON DELETE CASCADE,
		capacity TEXT NOT NULL,
		UNIQUE(master_product_id, capacity)
	)`,

	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		store TEXT NOT NULL,
		store_product_id TEXT NOT NULL,
		url TEXT,
		name TEXT NOT NULL,
		description TEXT,
		category TEXT,
		brand TEXT,
		price REAL NOT NULL,
		currency TEXT DEFAULT 'EUR',
		original_price REAL,
		discount_percentage REAL,
		image_url TEXT,
		availability TEXT DEFAULT 'unknown',
		specifications TEXT,
		master_product_id INTEGER REFERENCES master_products(id) ON DELETE SET NULL,
		variant_id INTEGER REFERENCES master_product_variants(id) ON DELETE SET NULL,
		first_seen TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(store, store_product_id)
	)`,

	`CREATE TABLE IF NOT EXISTS price_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		price REAL NOT NULL,
		currency TEXT DEFAULT 'EUR',
		timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	`CREATE INDEX IF NOT EXISTS idx_products_master ON products(master_product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_products_variant ON products(variant_id)`,
	`CREATE INDEX IF NOT EXISTS idx_products_store ON products(store)`,
	`CREATE INDEX IF NOT EXISTS idx_masters_normalized ON master_products(normalized_name)`,
	`CREATE INDEX IF NOT EXISTS idx_variants_master ON master_product_variants(master_product_id)`,
	`CREATE INDEX IF NOT EXISTS idx_price_history_product ON price_history(product_id)`,
}

// initSchema создает таблицы и индексы каталога
func initSchema(conn *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}
