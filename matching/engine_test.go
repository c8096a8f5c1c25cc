package matching

import (
	"testing"

	"pricecompare/models"
)

func newTestEngine(t *testing.T, catalog CatalogStore) *MatchEngine {
	t.Helper()
	norm := MustNormalizer()
	fe, err := NewFeatureExtractor(norm)
	if err != nil {
		t.Fatalf("NewFeatureExtractor: %v", err)
	}
	return NewMatchEngine(catalog, norm, fe, NewScorer(norm, fe))
}

// Тесты движка сопоставления на каталоге в памяти
func TestMatchEngine_CrossStoreMatch(t *testing.T) {
	catalog := NewMemoryCatalog()
	catalog.AddListing(&models.Listing{ID: 1, Store: "public", Name: "Apple iPhone 15 Pro 128GB Black"})
	catalog.AddListing(&models.Listing{ID: 2, Store: "stephanis", Name: "APPLE iPhone 15 Pro 128GB"})

	engine := newTestEngine(t, catalog)
	stats, err := engine.MatchBatch(0)
	if err != nil {
		t.Fatalf("MatchBatch: %v", err)
	}

	if stats.Total != 2 {
		t.Errorf("Total = %d, want 2", stats.Total)
	}
	if stats.Created != 1 {
		t.Errorf("Created = %d, want 1", stats.Created)
	}
	if stats.MatchedExisting != 1 {
		t.Errorf("MatchedExisting = %d, want 1", stats.MatchedExisting)
	}
	if catalog.MasterCount() != 1 {
		t.Errorf("masters = %d, want 1", catalog.MasterCount())
	}

	// Одинаковый объем памяти — один общий вариант
	if catalog.VariantCount() != 1 {
		t.Errorf("variants = %d, want 1", catalog.VariantCount())
	}

	l1, l2 := catalog.Listing(1), catalog.Listing(2)
	if l1.MasterProductID != l2.MasterProductID {
		t.Errorf("listings assigned to different masters: %d vs %d", l1.MasterProductID, l2.MasterProductID)
	}
	if l1.VariantID != l2.VariantID {
		t.Errorf("listings assigned to different variants: %d vs %d", l1.VariantID, l2.VariantID)
	}
}

func TestMatchEngine_CapacityVariants(t *testing.T) {
	catalog := NewMemoryCatalog()
	catalog.AddListing(&models.Listing{ID: 1, Store: "public", Name: "Apple iPhone 16 Pro 128GB"})
	catalog.AddListing(&models.Listing{ID: 2, Store: "public", Name: "Apple iPhone 16 Pro 256GB"})
	catalog.AddListing(&models.Listing{ID: 3, Store: "stephanis", Name: "Apple iPhone 16 Pro"})

	engine := newTestEngine(t, catalog)
	if _, err := engine.MatchBatch(0); err != nil {
		t.Fatalf("MatchBatch: %v", err)
	}

	if catalog.MasterCount() != 1 {
		t.Fatalf("masters = %d, want 1", catalog.MasterCount())
	}

	// 128gb, 256gb и "unknown" — три варианта одного мастера
	if catalog.VariantCount() != 3 {
		t.Errorf("variants = %d, want 3", catalog.VariantCount())
	}

	masterID := catalog.Listing(1).MasterProductID
	v, err := catalog.VariantByCapacity(masterID, models.CapacityUnknown)
	if err != nil {
		t.Fatalf("VariantByCapacity: %v", err)
	}
	if v == nil {
		t.Error("expected variant with capacity \"unknown\" for listing without capacity")
	} else if catalog.Listing(3).VariantID != v.ID {
		t.Errorf("listing 3 variant = %d, want %d", catalog.Listing(3).VariantID, v.ID)
	}
}

func TestMatchEngine_DifferentBrandsSeparateMasters(t *testing.T) {
	catalog := NewMemoryCatalog()
	catalog.AddListing(&models.Listing{ID: 1, Name: "Apple iPhone 15 128GB"})
	catalog.AddListing(&models.Listing{ID: 2, Name: "Samsung Galaxy S24 128GB"})

	engine := newTestEngine(t, catalog)
	stats, err := engine.MatchBatch(0)
	if err != nil {
		t.Fatalf("MatchBatch: %v", err)
	}

	if stats.Created != 2 {
		t.Errorf("Created = %d, want 2", stats.Created)
	}
	if catalog.MasterCount() != 2 {
		t.Errorf("masters = %d, want 2", catalog.MasterCount())
	}
}

func TestMatchEngine_Idempotent(t *testing.T) {
	catalog := NewMemoryCatalog()
	catalog.AddListing(&models.Listing{ID: 1, Name: "Apple iPhone 15 Pro 128GB"})
	catalog.AddListing(&models.Listing{ID: 2, Name: "Apple iPhone 15 Pro 256GB"})

	engine := newTestEngine(t, catalog)
	if _, err := engine.MatchBatch(0); err != nil {
		t.Fatalf("first MatchBatch: %v", err)
	}

	masters := catalog.MasterCount()
	variants := catalog.VariantCount()
	master1 := catalog.Listing(1).MasterProductID

	// Повторный прогон не должен ничего менять
	stats, err := engine.MatchBatch(0)
	if err != nil {
		t.Fatalf("second MatchBatch: %v", err)
	}

	if stats.Total != 0 {
		t.Errorf("second run Total = %d, want 0", stats.Total)
	}
	if catalog.MasterCount() != masters {
		t.Errorf("masters changed: %d -> %d", masters, catalog.MasterCount())
	}
	if catalog.VariantCount() != variants {
		t.Errorf("variants changed: %d -> %d", variants, catalog.VariantCount())
	}
	if catalog.Listing(1).MasterProductID != master1 {
		t.Errorf("listing reassigned: %d -> %d", master1, catalog.Listing(1).MasterProductID)
	}
}

// Карточка с привязкой к удаленному мастеру привязывается заново
func TestMatchEngine_DanglingMasterRelinked(t *testing.T) {
	catalog := NewMemoryCatalog()
	catalog.AddListing(&models.Listing{ID: 1, Name: "Apple iPhone 15 Pro 128GB", MasterProductID: 999})

	engine := newTestEngine(t, catalog)
	stats, err := engine.MatchBatch(0)
	if err != nil {
		t.Fatalf("MatchBatch: %v", err)
	}

	if stats.Created != 1 {
		t.Errorf("Created = %d, want 1", stats.Created)
	}
	l := catalog.Listing(1)
	if l.MasterProductID == 999 || l.MasterProductID == 0 {
		t.Errorf("listing still points to master %d", l.MasterProductID)
	}
	if l.VariantID == 0 {
		t.Error("listing has no variant after relink")
	}
}

// Карточка с живым мастером, но без варианта, дополучает вариант
func TestMatchEngine_AlreadyMatchedGetsVariant(t *testing.T) {
	catalog := NewMemoryCatalog()

	master := &models.MasterProduct{
		CanonicalName:  "Apple iPhone 15 Pro",
		Brand:          "apple",
		NormalizedName: "apple iphone 15 pro",
		SearchTokens:   "apple iphone 15 pro",
	}
	if err := catalog.CreateMaster(master); err != nil {
		t.Fatalf("CreateMaster: %v", err)
	}
	catalog.AddListing(&models.Listing{ID: 1, Name: "Apple iPhone 15 Pro 128GB", MasterProductID: master.ID})

	engine := newTestEngine(t, catalog)
	stats, err := engine.MatchBatch(0)
	if err != nil {
		t.Fatalf("MatchBatch: %v", err)
	}

	if stats.AlreadyMatched != 1 {
		t.Errorf("AlreadyMatched = %d, want 1", stats.AlreadyMatched)
	}
	if stats.Created != 0 {
		t.Errorf("Created = %d, want 0", stats.Created)
	}
	l := catalog.Listing(1)
	if l.MasterProductID != master.ID {
		t.Errorf("listing master = %d, want %d", l.MasterProductID, master.ID)
	}
	if l.VariantID == 0 {
		t.Error("listing has no variant")
	}
}

func TestMatchEngine_RebuildAll(t *testing.T) {
	catalog := NewMemoryCatalog()
	catalog.AddListing(&models.Listing{ID: 1, Name: "Apple iPhone 15 Pro 128GB"})
	catalog.AddListing(&models.Listing{ID: 2, Name: "Samsung Galaxy S24 256GB"})

	engine := newTestEngine(t, catalog)
	if _, err := engine.MatchBatch(0); err != nil {
		t.Fatalf("MatchBatch: %v", err)
	}

	stats, err := engine.RebuildAll(0)
	if err != nil {
		t.Fatalf("RebuildAll: %v", err)
	}

	// После сноса каталога все карточки проходят сопоставление заново
	if stats.Total != 2 {
		t.Errorf("Total = %d, want 2", stats.Total)
	}
	if stats.Created != 2 {
		t.Errorf("Created = %d, want 2", stats.Created)
	}
	if catalog.MasterCount() != 2 {
		t.Errorf("masters = %d, want 2", catalog.MasterCount())
	}
	if catalog.Listing(1).MasterProductID == 0 || catalog.Listing(2).MasterProductID == 0 {
		t.Error("listings unassigned after rebuild")
	}
}

func TestMatchEngine_CreateMasterFrom(t *testing.T) {
	catalog := NewMemoryCatalog()
	engine := newTestEngine(t, catalog)

	listing := &models.Listing{ID: 1, Name: "Apple iPhone 17 256GB Mist Blue", Category: "smartphones"}
	master, err := engine.CreateMasterFrom(listing)
	if err != nil {
		t.Fatalf("CreateMasterFrom: %v", err)
	}

	if master.CanonicalName != "Apple iPhone 17" {
		t.Errorf("CanonicalName = %q, want %q", master.CanonicalName, "Apple iPhone 17")
	}
	if master.Brand != "apple" {
		t.Errorf("Brand = %q, want %q", master.Brand, "apple")
	}
	if master.Model != "iphone 17" {
		t.Errorf("Model = %q, want %q", master.Model, "iphone 17")
	}
	if master.NormalizedName != "apple iphone 17" {
		t.Errorf("NormalizedName = %q, want %q", master.NormalizedName, "apple iphone 17")
	}
	if master.SearchTokens != "apple iphone 17" {
		t.Errorf("SearchTokens = %q, want %q", master.SearchTokens, "apple iphone 17")
	}
	if master.ID == 0 {
		t.Error("master has no ID after save")
	}
}
