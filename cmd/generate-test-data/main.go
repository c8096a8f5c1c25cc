package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"pricecompare/database"
	"pricecompare/internal/config"
	"pricecompare/matching"
	"pricecompare/models"
)

// catalogItem шаблон товара для генерации тестовых карточек
type catalogItem struct {
	brand      string
	name       string
	category   string
	basePrice  float64
	capacities []string
}

var catalogTemplates = []catalogItem{
	{"Apple", "iPhone 15 Pro", "smartphones", 1199, []string{"128GB", "256GB", "512GB"}},
	{"Apple", "iPhone 15", "smartphones", 949, []string{"128GB", "256GB"}},
	{"Samsung", "Galaxy S24 Ultra", "smartphones", 1449, []string{"256GB", "512GB"}},
	{"Samsung", "Galaxy A56 5G", "smartphones", 499, []string{"128GB", "256GB"}},
	{"Xiaomi", "Redmi Note 13 Pro", "smartphones", 349, []string{"256GB"}},
	{"Apple", "MacBook Air 13 M3", "laptops", 1299, []string{"256GB", "512GB"}},
	{"Lenovo", "IdeaPad Slim 5", "laptops", 749, []string{"512GB", "1TB"}},
	{"Samsung", "Galaxy Tab S9", "tablets", 899, []string{"128GB", "256GB"}},
	{"Sony", "Bravia XR-55A80L", "televisions", 1599, nil},
	{"LG", "OLED55C4", "televisions", 1399, nil},
	{"Sony", "PlayStation 5 Slim", "gaming", 549, nil},
	{"Logitech", "MX Master 3S", "accessories", 119, nil},
}

// storeStyles варианты оформления названия в разных магазинах
var storeStyles = map[string]func(item catalogItem, capacity string) string{
	"public": func(item catalogItem, capacity string) string {
		name := item.brand + " " + item.name
		if capacity != "" {
			name += " " + capacity
		}
		return name
	},
	"stephanis": func(item catalogItem, capacity string) string {
		name := strings.ToUpper(item.brand) + " " + item.name
		if capacity != "" {
			name += " (" + capacity + ")"
		}
		return name + " - " + strings.ToUpper(item.category[:1]) + item.category[1:]
	},
}

func main() {
	var (
		seedFlag  = flag.Int64("seed", 0, "сид генератора (0 — случайный)")
		matchFlag = flag.Bool("match", true, "запустить сопоставление после генерации")
	)
	flag.Parse()

	if *seedFlag != 0 {
		gofakeit.Seed(*seedFlag)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	norm := matching.MustNormalizer()
	db, err := database.NewCatalogDB(cfg.DatabasePath, norm)
	if err != nil {
		log.Fatalf("Ошибка открытия базы данных: %v", err)
	}
	defer db.Close()

	listings := generateListings()
	stats, err := db.SaveListings(listings)
	if err != nil {
		log.Fatalf("Ошибка сохранения тестовых карточек: %v", err)
	}
	log.Printf("Сгенерировано %d карточек (%d новых, %d обновлено)", len(listings), stats.Created, stats.Updated)

	if *matchFlag {
		extractor, err := matching.NewFeatureExtractor(norm)
		if err != nil {
			log.Fatalf("Ошибка инициализации экстрактора: %v", err)
		}
		engine := matching.NewMatchEngine(db, norm, extractor, matching.NewScorer(norm, extractor))
		engine.MasterThreshold = cfg.MasterThreshold

		mstats, err := engine.MatchBatch(cfg.MatchBatchSize)
		if err != nil {
			log.Fatalf("Сопоставление прервано: %v", err)
		}
		log.Printf("Сопоставление: %d карточек, %d к существующим, %d новых мастеров",
			mstats.Total, mstats.MatchedExisting, mstats.Created)
	}
}

// generateListings строит карточки обоих магазинов по шаблонам каталога.
// Цены немного расходятся между магазинами, часть карточек со скидкой.
func generateListings() []*models.Listing {
	var listings []*models.Listing
	for i, item := range catalogTemplates {
		capacities := item.capacities
		if capacities == nil {
			capacities = []string{""}
		}
		for j, capacity := range capacities {
			// Каждый следующий объём памяти дороже базовой цены
			listPrice := item.basePrice + float64(j)*100

			for store, styleName := range storeStyles {
				// У каждого магазина цена гуляет в пределах ±8%
				price := round2(listPrice * gofakeit.Float64Range(0.92, 1.08))

				l := &models.Listing{
					Store:          store,
					StoreProductID: fmt.Sprintf("%s-%d-%d", store[:1], i+1, j+1),
					URL:            fmt.Sprintf("https://www.%s.example/product/%d%d", store, i+1, j+1),
					Name:           styleName(item, capacity),
					Brand:          item.brand,
					Category:       item.category,
					Price:          price,
					Currency:       "EUR",
					Availability:   pickAvailability(),
					ImageURL:       gofakeit.ImageURL(640, 480),
				}

				// Примерно треть карточек со скидкой
				if gofakeit.Number(0, 2) == 0 {
					l.OriginalPrice = round2(price * gofakeit.Float64Range(1.05, 1.30))
					l.DiscountPct = round2((l.OriginalPrice - price) / l.OriginalPrice * 100)
				}

				listings = append(listings, l)
			}
		}
	}
	return listings
}

func pickAvailability() string {
	switch gofakeit.Number(0, 9) {
	case 0:
		return "out_of_stock"
	case 1:
		return "pre_order"
	default:
		return "in_stock"
	}
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
