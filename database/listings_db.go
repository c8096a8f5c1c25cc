package database

import (
	"database/sql"
	"fmt"
	"log"

	"pricecompare/models"
)

const listingColumns = `id, store, store_product_id, url, name, description, category, brand,
	price, currency, original_price, discount_percentage, image_url, availability,
	specifications, master_product_id, variant_id`

// SaveListings сохраняет карточки после скрапинга: новые вставляются,
// существующие (по паре магазин + внутренний ID) обновляются.
// При изменении цены пишется запись в историю цен.
func (db *CatalogDB) SaveListings(listings []*models.Listing) (*models.SaveStats, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin save transaction: %w", err)
	}
	defer tx.Rollback()

	stats := &models.SaveStats{}

	for _, l := range listings {
		var existingID int64
		var existingPrice float64
		err := tx.QueryRow(
			`SELECT id, price FROM products WHERE store = ? AND store_product_id = ?`,
			l.Store, l.StoreProductID,
		).Scan(&existingID, &existingPrice)

		switch {
		case err == sql.ErrNoRows:
			res, err := tx.Exec(
				`INSERT INTO products (store, store_product_id, url, name, description, category,
					brand, price, currency, original_price, discount_percentage, image_url,
					availability, specifications)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				l.Store, l.StoreProductID, l.URL, l.Name, l.Description, l.Category,
				l.Brand, l.Price, l.Currency, l.OriginalPrice, l.DiscountPct, l.ImageURL,
				l.Availability, l.Specifications,
			)
			if err != nil {
				return nil, fmt.Errorf("insert listing %s/%s: %w", l.Store, l.StoreProductID, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return nil, fmt.Errorf("listing insert id: %w", err)
			}
			l.ID = id

			if _, err := tx.Exec(
				`INSERT INTO price_history (product_id, price, currency) VALUES (?, ?, ?)`,
				id, l.Price, l.Currency,
			); err != nil {
				return nil, fmt.Errorf("insert price history for listing %d: %w", id, err)
			}
			stats.Created++

		case err != nil:
			return nil, fmt.Errorf("lookup listing %s/%s: %w", l.Store, l.StoreProductID, err)

		default:
			if _, err := tx.Exec(
				`UPDATE products SET url = ?, name = ?, description = ?, category = ?, brand = ?,
					price = ?, currency = ?, original_price = ?, discount_percentage = ?,
					image_url = ?, availability = ?, specifications = ?,
					last_updated = CURRENT_TIMESTAMP
				 WHERE id = ?`,
				l.URL, l.Name, l.Description, l.Category, l.Brand,
				l.Price, l.Currency, l.OriginalPrice, l.DiscountPct,
				l.ImageURL, l.Availability, l.Specifications,
				existingID,
			); err != nil {
				return nil, fmt.Errorf("update listing %d: %w", existingID, err)
			}
			l.ID = existingID

			// История пополняется только при реальном изменении цены
			if l.Price != existingPrice {
				if _, err := tx.Exec(
					`INSERT INTO price_history (product_id, price, currency) VALUES (?, ?, ?)`,
					existingID, l.Price, l.Currency,
				); err != nil {
					return nil, fmt.Errorf("insert price history for listing %d: %w", existingID, err)
				}
			}
			stats.Updated++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit save transaction: %w", err)
	}

	log.Printf("[CatalogDB] Сохранено карточек: %d новых, %d обновлено", stats.Created, stats.Updated)
	return stats, nil
}

// ListingByID возвращает карточку по id, (nil, nil) если ее нет
func (db *CatalogDB) ListingByID(id int64) (*models.Listing, error) {
	row := db.conn.QueryRow(`SELECT `+listingColumns+` FROM products WHERE id = ?`, id)
	l, err := scanListing(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup listing %d: %w", id, err)
	}
	return l, nil
}

// PriceHistory возвращает историю цен карточки, новые записи первыми
func (db *CatalogDB) PriceHistory(listingID int64) ([]models.PriceEntry, error) {
	rows, err := db.conn.Query(
		`SELECT id, product_id, price, currency, timestamp
		 FROM price_history WHERE product_id = ? ORDER BY timestamp DESC`,
		listingID,
	)
	if err != nil {
		return nil, fmt.Errorf("query price history for listing %d: %w", listingID, err)
	}
	defer rows.Close()

	var entries []models.PriceEntry
	for rows.Next() {
		var e models.PriceEntry
		if err := rows.Scan(&e.ID, &e.ListingID, &e.Price, &e.Currency, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan price entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// rowScanner общий интерфейс sql.Row и sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*models.Listing, error) {
	var l models.Listing
	var description, category, brand, url, imageURL, availability, specs sql.NullString
	var originalPrice, discountPct sql.NullFloat64
	var masterID, variantID sql.NullInt64

	err := row.Scan(
		&l.ID, &l.Store, &l.StoreProductID, &url, &l.Name, &description, &category, &brand,
		&l.Price, &l.Currency, &originalPrice, &discountPct, &imageURL, &availability,
		&specs, &masterID, &variantID,
	)
	if err != nil {
		return nil, err
	}

	l.URL = url.String
	l.Description = description.String
	l.Category = category.String
	l.Brand = brand.String
	l.OriginalPrice = originalPrice.Float64
	l.DiscountPct = discountPct.Float64
	l.ImageURL = imageURL.String
	l.Availability = availability.String
	l.Specifications = specs.String
	l.MasterProductID = masterID.Int64
	l.VariantID = variantID.Int64

	return &l, nil
}
