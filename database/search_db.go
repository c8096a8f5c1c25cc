package database

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"pricecompare/models"

	"github.com/kljensen/snowball"
)

// Минимальное пересечение токенов для нечеткого поиска
const searchOverlapThreshold = 0.3

// SearchProducts ищет мастеров по запросу. Сначала поиск подстроки
// по нормализованному имени; если ничего не нашлось, нечеткий поиск
// по пересечению стеммированных токенов.
func (db *CatalogDB) SearchProducts(query string, limit int) ([]models.SearchResult, error) {
	if limit <= 0 {
		limit = 50
	}

	normalized := db.norm.Normalize(query)
	if normalized == "" {
		return []models.SearchResult{}, nil
	}

	ids, err := db.searchSubstring(normalized, limit)
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		ids, err = db.searchTokenOverlap(normalized, limit)
		if err != nil {
			return nil, err
		}
	}

	results := make([]models.SearchResult, 0, len(ids))
	for _, id := range ids {
		r, err := db.buildSearchResult(id)
		if err != nil {
			return nil, err
		}
		if r != nil {
			results = append(results, *r)
		}
	}

	return results, nil
}

// searchSubstring поиск вхождения нормализованного запроса в имя мастера
func (db *CatalogDB) searchSubstring(normalized string, limit int) ([]int64, error) {
	rows, err := db.conn.Query(
		`SELECT id FROM master_products WHERE normalized_name LIKE ? ORDER BY id LIMIT ?`,
		"%"+normalized+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("substring search: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan search id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// searchTokenOverlap нечеткий поиск: пересечение стеммированных токенов
// запроса и поисковых токенов мастера (индекс Жаккара)
func (db *CatalogDB) searchTokenOverlap(normalized string, limit int) ([]int64, error) {
	queryTokens := stemTokens(strings.Fields(normalized))
	if len(queryTokens) == 0 {
		return nil, nil
	}

	rows, err := db.conn.Query(`SELECT id, search_tokens FROM master_products`)
	if err != nil {
		return nil, fmt.Errorf("token search: %w", err)
	}
	defer rows.Close()

	type scored struct {
		id    int64
		score float64
	}
	var candidates []scored

	for rows.Next() {
		var id int64
		var tokens string
		if err := rows.Scan(&id, &tokens); err != nil {
			return nil, fmt.Errorf("scan master tokens: %w", err)
		}

		masterTokens := stemTokens(strings.Fields(tokens))
		score := jaccard(queryTokens, masterTokens)
		if score >= searchOverlapThreshold {
			candidates = append(candidates, scored{id: id, score: score})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	ids := make([]int64, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
	}
	return ids, nil
}

// buildSearchResult собирает сводку цен мастера по магазинам.
// Возвращает nil для мастера без единой карточки с ценой.
func (db *CatalogDB) buildSearchResult(masterID int64) (*models.SearchResult, error) {
	master, err := db.MasterByID(masterID)
	if err != nil {
		return nil, err
	}
	if master == nil {
		return nil, nil
	}

	offers, err := db.storeOffers(`master_product_id = ?`, masterID)
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, nil
	}

	result := &models.SearchResult{
		MasterID:   master.ID,
		Name:       master.CanonicalName,
		Brand:      master.Brand,
		Model:      master.Model,
		Category:   master.Category,
		Stores:     offers,
		StoreCount: countStores(offers),
	}
	result.CheapestPrice, result.MostExpensive = priceRange(offers)
	result.PriceDifference = result.MostExpensive - result.CheapestPrice

	return result, nil
}

// MasterDetail карточка мастера со сводкой по вариантам
func (db *CatalogDB) MasterDetail(masterID int64) (*models.MasterDetail, error) {
	master, err := db.MasterByID(masterID)
	if err != nil {
		return nil, err
	}
	if master == nil {
		return nil, nil
	}

	rows, err := db.conn.Query(
		`SELECT id, capacity FROM master_product_variants WHERE master_product_id = ? ORDER BY capacity`,
		masterID,
	)
	if err != nil {
		return nil, fmt.Errorf("query variants of master %d: %w", masterID, err)
	}
	defer rows.Close()

	detail := &models.MasterDetail{
		MasterID:      master.ID,
		CanonicalName: master.CanonicalName,
		Brand:         master.Brand,
		Model:         master.Model,
		Category:      master.Category,
		Variants:      []models.VariantSummary{},
	}

	for rows.Next() {
		var v models.VariantSummary
		if err := rows.Scan(&v.VariantID, &v.Capacity); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}

		offers, err := db.storeOffers(`variant_id = ?`, v.VariantID)
		if err != nil {
			return nil, err
		}
		if len(offers) > 0 {
			v.CheapestPrice, v.MostExpensive = priceRange(offers)
			v.StoreCount = countStores(offers)
			v.ImageURL = offers[0].ImageURL
		}
		detail.Variants = append(detail.Variants, v)
	}

	return detail, rows.Err()
}

// VariantDetail сравнение магазинов внутри одного варианта
func (db *CatalogDB) VariantDetail(variantID int64) (*models.VariantDetail, error) {
	var v models.Variant
	err := db.conn.QueryRow(
		`SELECT id, master_product_id, capacity FROM master_product_variants WHERE id = ?`,
		variantID,
	).Scan(&v.ID, &v.MasterProductID, &v.Capacity)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup variant %d: %w", variantID, err)
	}

	master, err := db.MasterByID(v.MasterProductID)
	if err != nil {
		return nil, err
	}
	if master == nil {
		return nil, nil
	}

	offers, err := db.storeOffers(`variant_id = ?`, variantID)
	if err != nil {
		return nil, err
	}

	detail := &models.VariantDetail{
		VariantID:     v.ID,
		MasterID:      master.ID,
		CanonicalName: master.CanonicalName,
		Brand:         master.Brand,
		Model:         master.Model,
		Capacity:      v.Capacity,
		Stores:        offers,
	}

	if len(offers) > 0 {
		detail.CheapestPrice, detail.MostExpensive = priceRange(offers)
		detail.PriceDifference = detail.MostExpensive - detail.CheapestPrice

		sum := 0.0
		for _, o := range offers {
			sum += o.Price
		}
		detail.AveragePrice = sum / float64(len(offers))
	}

	return detail, nil
}

// Deals карточки с наибольшими скидками, опционально по одному магазину
func (db *CatalogDB) Deals(store string, limit int) ([]models.Deal, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `SELECT store, name, price, original_price, discount_percentage, url
		 FROM products
		 WHERE discount_percentage > 0 AND original_price > price`
	args := []interface{}{}
	if store != "" {
		query += ` AND store = ?`
		args = append(args, store)
	}
	query += ` ORDER BY discount_percentage DESC LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query deals: %w", err)
	}
	defer rows.Close()

	deals := []models.Deal{}
	for rows.Next() {
		var d models.Deal
		var url sql.NullString
		if err := rows.Scan(&d.Store, &d.Name, &d.Price, &d.OriginalPrice, &d.DiscountPct, &url); err != nil {
			return nil, fmt.Errorf("scan deal: %w", err)
		}
		d.URL = url.String
		d.Savings = d.OriginalPrice - d.Price
		deals = append(deals, d)
	}

	return deals, rows.Err()
}

// Stats сводная статистика каталога
func (db *CatalogDB) Stats() (*models.CatalogStats, error) {
	stats := &models.CatalogStats{Stores: map[string]int{}}

	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&stats.TotalListings); err != nil {
		return nil, fmt.Errorf("count listings: %w", err)
	}
	if err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM products WHERE master_product_id IS NOT NULL`,
	).Scan(&stats.MatchedListings); err != nil {
		return nil, fmt.Errorf("count matched listings: %w", err)
	}
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM master_products`).Scan(&stats.TotalMasters); err != nil {
		return nil, fmt.Errorf("count masters: %w", err)
	}

	rows, err := db.conn.Query(`SELECT store, COUNT(*) FROM products GROUP BY store`)
	if err != nil {
		return nil, fmt.Errorf("count by store: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var store string
		var count int
		if err := rows.Scan(&store, &count); err != nil {
			return nil, fmt.Errorf("scan store count: %w", err)
		}
		stats.Stores[store] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.TotalMasters > 0 {
		stats.AvgListingsPerMaster = float64(stats.MatchedListings) / float64(stats.TotalMasters)
	}

	return stats, nil
}

// storeOffers предложения магазинов по условию на таблицу products
func (db *CatalogDB) storeOffers(where string, args ...interface{}) ([]models.StoreOffer, error) {
	rows, err := db.conn.Query(
		`SELECT store, name, price, original_price, discount_percentage, availability, url, image_url
		 FROM products WHERE `+where+` ORDER BY price`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query offers: %w", err)
	}
	defer rows.Close()

	var offers []models.StoreOffer
	for rows.Next() {
		var o models.StoreOffer
		var originalPrice, discountPct sql.NullFloat64
		var availability, url, imageURL sql.NullString
		if err := rows.Scan(&o.Store, &o.Name, &o.Price, &originalPrice, &discountPct, &availability, &url, &imageURL); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		o.OriginalPrice = originalPrice.Float64
		o.DiscountPct = discountPct.Float64
		o.Availability = availability.String
		o.URL = url.String
		o.ImageURL = imageURL.String
		offers = append(offers, o)
	}

	return offers, rows.Err()
}

// priceRange минимальная и максимальная цена среди предложений
func priceRange(offers []models.StoreOffer) (min, max float64) {
	min, max = offers[0].Price, offers[0].Price
	for _, o := range offers[1:] {
		if o.Price < min {
			min = o.Price
		}
		if o.Price > max {
			max = o.Price
		}
	}
	return min, max
}

// countStores число различных магазинов среди предложений
func countStores(offers []models.StoreOffer) int {
	stores := make(map[string]struct{}, len(offers))
	for _, o := range offers {
		stores[o.Store] = struct{}{}
	}
	return len(stores)
}

// stemTokens стеммирует буквенные токены; токены с цифрами ("128gb", "s24")
// остаются как есть. Ошибка стеммера не фатальна, токен берется исходным.
func stemTokens(tokens []string) map[string]struct{} {
	result := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if strings.IndexFunc(t, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0 {
			result[t] = struct{}{}
			continue
		}
		stemmed, err := snowball.Stem(t, "english", true)
		if err != nil || stemmed == "" {
			result[t] = struct{}{}
			continue
		}
		result[stemmed] = struct{}{}
	}
	return result
}

// jaccard индекс Жаккара по множествам токенов
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}
