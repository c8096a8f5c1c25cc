package reporting

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"pricecompare/database"
	"pricecompare/matching"
	"pricecompare/models"
)

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()

	db, err := database.NewCatalogDB(":memory:", matching.MustNormalizer())
	if err != nil {
		t.Fatalf("NewCatalogDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	listings := []*models.Listing{
		{Store: "public", StoreProductID: "p-1", Name: "Apple iPhone 15 Pro 128GB", Price: 899.0, OriginalPrice: 999.0, DiscountPct: 10.0, Currency: "EUR"},
		{Store: "stephanis", StoreProductID: "s-1", Name: "Samsung Galaxy S24 256GB", Price: 799.0, Currency: "EUR"},
	}
	if _, err := db.SaveListings(listings); err != nil {
		t.Fatalf("SaveListings: %v", err)
	}

	norm := matching.MustNormalizer()
	fe, err := matching.NewFeatureExtractor(norm)
	if err != nil {
		t.Fatalf("NewFeatureExtractor: %v", err)
	}
	engine := matching.NewMatchEngine(db, norm, fe, matching.NewScorer(norm, fe))
	if _, err := engine.MatchBatch(0); err != nil {
		t.Fatalf("MatchBatch: %v", err)
	}

	return NewExporter(db)
}

// Тесты экспорта отчетов
func TestExporter_JSON(t *testing.T) {
	e := newTestExporter(t)
	path := filepath.Join(t.TempDir(), "report.json")

	if err := e.ExportToJSON(path, ExportFilters{}); err != nil {
		t.Fatalf("ExportToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}

	var report struct {
		Total  int             `json:"total"`
		Offers []ExportedOffer `json:"offers"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}

	if report.Total != 2 {
		t.Errorf("total = %d, want 2", report.Total)
	}
	if len(report.Offers) != 2 {
		t.Fatalf("offers = %d, want 2", len(report.Offers))
	}
	if report.Offers[0].CanonicalName == "" {
		t.Error("offer has no canonical name after matching")
	}
	if report.Offers[0].Capacity != "128gb" {
		t.Errorf("capacity = %q, want 128gb", report.Offers[0].Capacity)
	}
}

func TestExporter_CSV(t *testing.T) {
	e := newTestExporter(t)
	path := filepath.Join(t.TempDir(), "report.csv")

	if err := e.ExportToCSV(path, ExportFilters{Store: "public"}); err != nil {
		t.Fatalf("ExportToCSV: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}

	// Заголовок и одна строка по фильтру магазина
	if len(records) != 2 {
		t.Fatalf("rows = %d, want 2", len(records))
	}
	if records[1][1] != "public" {
		t.Errorf("store column = %q, want public", records[1][1])
	}
}

func TestExporter_Excel(t *testing.T) {
	e := newTestExporter(t)
	path := filepath.Join(t.TempDir(), "report.xlsx")

	if err := e.ExportToExcel(path, ExportFilters{OnlySales: true}); err != nil {
		t.Fatalf("ExportToExcel: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Price Comparison")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}

	// Заголовок и одна карточка со скидкой
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0][0] != "Listing ID" {
		t.Errorf("header = %q", rows[0][0])
	}
}

func TestExporter_UnknownFormat(t *testing.T) {
	e := newTestExporter(t)

	if err := e.Export(ExportFormat("xml"), "report.xml", ExportFilters{}); err == nil {
		t.Error("Export should reject unknown format")
	}
}
