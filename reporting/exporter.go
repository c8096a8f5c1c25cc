package reporting

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"pricecompare/database"
)

// ExportFormat формат экспорта
type ExportFormat string

const (
	FormatJSON  ExportFormat = "json"
	FormatCSV   ExportFormat = "csv"
	FormatExcel ExportFormat = "excel"
)

// ExportedOffer строка отчета: предложение магазина с привязкой к каталогу
type ExportedOffer struct {
	ListingID     int64   `json:"listing_id"`
	Store         string  `json:"store"`
	Name          string  `json:"name"`
	CanonicalName string  `json:"canonical_name"`
	Brand         string  `json:"brand"`
	Model         string  `json:"model"`
	Capacity      string  `json:"capacity"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	OriginalPrice float64 `json:"original_price"`
	DiscountPct   float64 `json:"discount_percentage"`
	Availability  string  `json:"availability"`
	URL           string  `json:"url"`
}

// ExportFilters фильтры выборки для отчета
type ExportFilters struct {
	Store     string  // только один магазин
	Brand     string  // только один бренд мастера
	MinPrice  float64 // нижняя граница цены
	MaxPrice  float64 // верхняя граница цены
	OnlySales bool    // только карточки со скидкой
	Limit     int
}

// Exporter выгружает сопоставленный каталог в файлы отчетов
type Exporter struct {
	db *database.CatalogDB
}

// NewExporter создает экспортер поверх базы каталога
func NewExporter(db *database.CatalogDB) *Exporter {
	return &Exporter{db: db}
}

// Export выгружает отчет в указанном формате
func (e *Exporter) Export(format ExportFormat, filename string, filters ExportFilters) error {
	switch format {
	case FormatJSON:
		return e.ExportToJSON(filename, filters)
	case FormatCSV:
		return e.ExportToCSV(filename, filters)
	case FormatExcel:
		return e.ExportToExcel(filename, filters)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

// ExportToJSON экспортирует данные в JSON
func (e *Exporter) ExportToJSON(filename string, filters ExportFilters) error {
	offers, err := e.fetchOffers(filters)
	if err != nil {
		return fmt.Errorf("failed to fetch offers: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	result := map[string]interface{}{
		"exported_at": time.Now().Format(time.RFC3339),
		"total":       len(offers),
		"offers":      offers,
	}

	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

var exportHeaders = []string{
	"Listing ID", "Store", "Name", "Canonical Name", "Brand", "Model",
	"Capacity", "Price", "Currency", "Original Price", "Discount %",
	"Availability", "URL",
}

// ExportToCSV экспортирует данные в CSV
func (e *Exporter) ExportToCSV(filename string, filters ExportFilters) error {
	offers, err := e.fetchOffers(filters)
	if err != nil {
		return fmt.Errorf("failed to fetch offers: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(exportHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for _, o := range offers {
		record := []string{
			fmt.Sprintf("%d", o.ListingID),
			o.Store,
			o.Name,
			o.CanonicalName,
			o.Brand,
			o.Model,
			o.Capacity,
			fmt.Sprintf("%.2f", o.Price),
			o.Currency,
			fmt.Sprintf("%.2f", o.OriginalPrice),
			fmt.Sprintf("%.1f", o.DiscountPct),
			o.Availability,
			o.URL,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	return nil
}

// ExportToExcel экспортирует данные в Excel
func (e *Exporter) ExportToExcel(filename string, filters ExportFilters) error {
	offers, err := e.fetchOffers(filters)
	if err != nil {
		return fmt.Errorf("failed to fetch offers: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Price Comparison"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, o := range offers {
		row := rowIdx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), o.ListingID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), o.Store)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), o.Name)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), o.CanonicalName)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), o.Brand)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), o.Model)
		f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), o.Capacity)
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), o.Price)
		f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), o.Currency)
		f.SetCellValue(sheetName, fmt.Sprintf("J%d", row), o.OriginalPrice)
		f.SetCellValue(sheetName, fmt.Sprintf("K%d", row), o.DiscountPct)
		f.SetCellValue(sheetName, fmt.Sprintf("L%d", row), o.Availability)
		f.SetCellValue(sheetName, fmt.Sprintf("M%d", row), o.URL)
	}

	for i := range exportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	f.SetActiveSheet(index)

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("failed to save Excel file: %w", err)
	}

	return nil
}

// fetchOffers выбирает предложения с привязкой к каталогу
func (e *Exporter) fetchOffers(filters ExportFilters) ([]ExportedOffer, error) {
	query := `
		SELECT
			p.id,
			p.store,
			p.name,
			COALESCE(m.canonical_name, '') AS canonical_name,
			COALESCE(m.brand, '') AS brand,
			COALESCE(m.model, '') AS model,
			COALESCE(v.capacity, '') AS capacity,
			p.price,
			COALESCE(p.currency, 'EUR') AS currency,
			COALESCE(p.original_price, 0) AS original_price,
			COALESCE(p.discount_percentage, 0) AS discount_percentage,
			COALESCE(p.availability, 'unknown') AS availability,
			COALESCE(p.url, '') AS url
		FROM products p
		LEFT JOIN master_products m ON m.id = p.master_product_id
		LEFT JOIN master_product_variants v ON v.id = p.variant_id
		WHERE 1=1
	`

	args := []interface{}{}

	if filters.Store != "" {
		query += " AND p.store = ?"
		args = append(args, filters.Store)
	}
	if filters.Brand != "" {
		query += " AND m.brand = ?"
		args = append(args, filters.Brand)
	}
	if filters.MinPrice > 0 {
		query += " AND p.price >= ?"
		args = append(args, filters.MinPrice)
	}
	if filters.MaxPrice > 0 {
		query += " AND p.price <= ?"
		args = append(args, filters.MaxPrice)
	}
	if filters.OnlySales {
		query += " AND p.discount_percentage > 0"
	}

	query += " ORDER BY p.id"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filters.Limit)
	}

	rows, err := e.db.GetDB().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	defer rows.Close()

	offers := []ExportedOffer{}
	for rows.Next() {
		var o ExportedOffer
		err := rows.Scan(
			&o.ListingID, &o.Store, &o.Name, &o.CanonicalName, &o.Brand, &o.Model,
			&o.Capacity, &o.Price, &o.Currency, &o.OriginalPrice, &o.DiscountPct,
			&o.Availability, &o.URL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, o)
	}

	return offers, rows.Err()
}
