package models

import "time"

// Статусы наличия товара в магазине
const (
	AvailabilityInStock    = "in_stock"
	AvailabilityOutOfStock = "out_of_stock"
	AvailabilityPreOrder   = "pre_order"
	AvailabilityUnknown    = "unknown"
)

// CapacityUnknown метка варианта, для которого не удалось извлечь объем памяти
const CapacityUnknown = "unknown"

// Listing сырая карточка товара из одного магазина.
// Уникально идентифицируется парой (Store, StoreProductID).
type Listing struct {
	ID             int64   `json:"id"`
	Store          string  `json:"store"`
	StoreProductID string  `json:"store_product_id"`
	URL            string  `json:"url"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	Category       string  `json:"category,omitempty"`
	Brand          string  `json:"brand,omitempty"`
	Price          float64 `json:"price"`
	Currency       string  `json:"currency"`
	OriginalPrice  float64 `json:"original_price,omitempty"`
	DiscountPct    float64 `json:"discount_percentage,omitempty"`
	ImageURL       string  `json:"image_url,omitempty"`
	Availability   string  `json:"availability"`
	Specifications string  `json:"specifications,omitempty"` // JSON-строка характеристик

	// Связь с каноническим каталогом. 0 означает "не привязан".
	MasterProductID int64 `json:"master_product_id,omitempty"`
	VariantID       int64 `json:"variant_id,omitempty"`

	FirstSeen   time.Time `json:"first_seen,omitempty"`
	LastUpdated time.Time `json:"last_updated,omitempty"`
}

// MasterProduct каноническая запись товара, объединяющая карточки разных магазинов.
// После создания запись не переименовывается, к ней только привязываются карточки.
type MasterProduct struct {
	ID            int64  `json:"id"`
	CanonicalName string `json:"canonical_name"`
	Brand         string `json:"brand,omitempty"`
	Model         string `json:"model,omitempty"`
	Category      string `json:"category,omitempty"`

	// Поисковые поля, производные от CanonicalName
	NormalizedName string `json:"normalized_name"`
	SearchTokens   string `json:"search_tokens"` // токены через пробел

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Variant вариант товара по объему памяти внутри одного мастера.
// Для пары (MasterProductID, Capacity) существует не более одной записи.
type Variant struct {
	ID              int64  `json:"id"`
	MasterProductID int64  `json:"master_product_id"`
	Capacity        string `json:"capacity"`
}

// PriceEntry запись истории цены карточки
type PriceEntry struct {
	ID        int64     `json:"id"`
	ListingID int64     `json:"listing_id"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}

// MatchStats статистика одного прогона сопоставления
type MatchStats struct {
	Total           int `json:"total_products"`
	MatchedExisting int `json:"matched_to_existing"`
	Created         int `json:"new_master_created"`
	AlreadyMatched  int `json:"already_matched"`
}

// SaveStats статистика сохранения карточек после скрапинга
type SaveStats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// StoreOffer предложение конкретного магазина внутри результата сравнения
type StoreOffer struct {
	Store         string  `json:"store"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price,omitempty"`
	DiscountPct   float64 `json:"discount_percentage,omitempty"`
	Availability  string  `json:"availability"`
	URL           string  `json:"url"`
	ImageURL      string  `json:"image_url,omitempty"`
}

// SearchResult мастер с агрегированными ценами по магазинам
type SearchResult struct {
	MasterID        int64        `json:"master_id"`
	Name            string       `json:"name"`
	Brand           string       `json:"brand,omitempty"`
	Model           string       `json:"model,omitempty"`
	Category        string       `json:"category,omitempty"`
	CheapestPrice   float64      `json:"cheapest_price"`
	MostExpensive   float64      `json:"most_expensive"`
	PriceDifference float64      `json:"price_difference"`
	StoreCount      int          `json:"store_count"`
	Stores          []StoreOffer `json:"stores"`
}

// VariantSummary сводка по варианту в карточке мастера
type VariantSummary struct {
	VariantID     int64   `json:"variant_id"`
	Capacity      string  `json:"capacity"`
	CheapestPrice float64 `json:"cheapest_price"`
	MostExpensive float64 `json:"most_expensive"`
	StoreCount    int     `json:"store_count"`
	ImageURL      string  `json:"image_url,omitempty"`
}

// MasterDetail карточка мастера с вариантами
type MasterDetail struct {
	MasterID      int64            `json:"master_id"`
	CanonicalName string           `json:"canonical_name"`
	Brand         string           `json:"brand,omitempty"`
	Model         string           `json:"model,omitempty"`
	Category      string           `json:"category,omitempty"`
	Variants      []VariantSummary `json:"variants"`
}

// VariantDetail карточка варианта со сравнением магазинов
type VariantDetail struct {
	VariantID       int64        `json:"variant_id"`
	MasterID        int64        `json:"master_id"`
	CanonicalName   string       `json:"canonical_name"`
	Brand           string       `json:"brand,omitempty"`
	Model           string       `json:"model,omitempty"`
	Capacity        string       `json:"capacity"`
	CheapestPrice   float64      `json:"cheapest_price"`
	MostExpensive   float64      `json:"most_expensive"`
	AveragePrice    float64      `json:"avg_price"`
	PriceDifference float64      `json:"price_difference"`
	Stores          []StoreOffer `json:"stores"`
}

// Deal карточка со скидкой для подборки выгодных предложений
type Deal struct {
	Store         string  `json:"store"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"original_price"`
	DiscountPct   float64 `json:"discount_percentage"`
	Savings       float64 `json:"savings"`
	URL           string  `json:"url"`
}

// CatalogStats статистика каталога
type CatalogStats struct {
	TotalListings        int            `json:"total_products"`
	MatchedListings      int            `json:"matched_products"`
	TotalMasters         int            `json:"unique_products"`
	Stores               map[string]int `json:"stores"`
	AvgListingsPerMaster float64        `json:"avg_products_per_master"`
}
