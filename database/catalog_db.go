package database

import (
	"database/sql"
	"fmt"

	"pricecompare/models"
)

// Реализация хранилища каталога для движка сопоставления.
// Привязки карточек накапливаются в памяти и фиксируются
// одной транзакцией в Commit.

// UnassignedListings карточки без мастера или без варианта
func (db *CatalogDB) UnassignedListings() ([]*models.Listing, error) {
	rows, err := db.conn.Query(
		`SELECT ` + listingColumns + ` FROM products
		 WHERE master_product_id IS NULL OR variant_id IS NULL
		 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query unassigned listings: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}

	return listings, rows.Err()
}

// Masters все мастера каталога в порядке создания
func (db *CatalogDB) Masters() ([]*models.MasterProduct, error) {
	rows, err := db.conn.Query(
		`SELECT id, canonical_name, brand, model, category, normalized_name, search_tokens
		 FROM master_products ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query masters: %w", err)
	}
	defer rows.Close()

	var masters []*models.MasterProduct
	for rows.Next() {
		m, err := scanMaster(rows)
		if err != nil {
			return nil, fmt.Errorf("scan master: %w", err)
		}
		masters = append(masters, m)
	}

	return masters, rows.Err()
}

// MasterByID мастер по id, (nil, nil) если мастер не существует
func (db *CatalogDB) MasterByID(id int64) (*models.MasterProduct, error) {
	row := db.conn.QueryRow(
		`SELECT id, canonical_name, brand, model, category, normalized_name, search_tokens
		 FROM master_products WHERE id = ?`,
		id,
	)
	m, err := scanMaster(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup master %d: %w", id, err)
	}
	return m, nil
}

// CreateMaster сохраняет нового мастера и проставляет ему ID
func (db *CatalogDB) CreateMaster(m *models.MasterProduct) error {
	res, err := db.conn.Exec(
		`INSERT INTO master_products (canonical_name, brand, model, category, normalized_name, search_tokens)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.CanonicalName, m.Brand, m.Model, m.Category, m.NormalizedName, m.SearchTokens,
	)
	if err != nil {
		return fmt.Errorf("insert master %q: %w", m.CanonicalName, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("master insert id: %w", err)
	}
	m.ID = id
	return nil
}

// VariantByCapacity вариант мастера по объему, (nil, nil) если его нет
func (db *CatalogDB) VariantByCapacity(masterID int64, capacity string) (*models.Variant, error) {
	var v models.Variant
	err := db.conn.QueryRow(
		`SELECT id, master_product_id, capacity FROM master_product_variants
		 WHERE master_product_id = ? AND capacity = ?`,
		masterID, capacity,
	).Scan(&v.ID, &v.MasterProductID, &v.Capacity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup variant %q of master %d: %w", capacity, masterID, err)
	}
	return &v, nil
}

// CreateVariant сохраняет новый вариант и проставляет ему ID
func (db *CatalogDB) CreateVariant(v *models.Variant) error {
	res, err := db.conn.Exec(
		`INSERT INTO master_product_variants (master_product_id, capacity) VALUES (?, ?)`,
		v.MasterProductID, v.Capacity,
	)
	if err != nil {
		return fmt.Errorf("insert variant %q of master %d: %w", v.Capacity, v.MasterProductID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("variant insert id: %w", err)
	}
	v.ID = id
	return nil
}

// AssignListing ставит привязку карточки в очередь на фиксацию
func (db *CatalogDB) AssignListing(listingID, masterID, variantID int64) error {
	db.pendingAssignments = append(db.pendingAssignments, assignment{
		listingID: listingID,
		masterID:  masterID,
		variantID: variantID,
	})
	return nil
}

// Commit фиксирует накопленные привязки одной транзакцией.
// При ошибке пачка откатывается целиком и остается в очереди.
func (db *CatalogDB) Commit() error {
	if len(db.pendingAssignments) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin assignment transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range db.pendingAssignments {
		if _, err := tx.Exec(
			`UPDATE products SET master_product_id = ?, variant_id = ?, last_updated = CURRENT_TIMESTAMP
			 WHERE id = ?`,
			a.masterID, a.variantID, a.listingID,
		); err != nil {
			return fmt.Errorf("assign listing %d: %w", a.listingID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assignments: %w", err)
	}

	db.pendingAssignments = db.pendingAssignments[:0]
	return nil
}

// ResetCatalog снимает все привязки и удаляет мастеров с вариантами.
// Используется только полной пересборкой каталога.
func (db *CatalogDB) ResetCatalog() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin reset transaction: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		`UPDATE products SET master_product_id = NULL, variant_id = NULL`,
		`DELETE FROM master_product_variants`,
		`DELETE FROM master_products`,
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("reset catalog: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}

	db.pendingAssignments = db.pendingAssignments[:0]
	return nil
}

func scanMaster(row rowScanner) (*models.MasterProduct, error) {
	var m models.MasterProduct
	var brand, model, category sql.NullString

	err := row.Scan(&m.ID, &m.CanonicalName, &brand, &model, &category, &m.NormalizedName, &m.SearchTokens)
	if err != nil {
		return nil, err
	}

	m.Brand = brand.String
	m.Model = model.String
	m.Category = category.String
	return &m, nil
}
