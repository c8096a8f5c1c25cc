package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"pricecompare/database"
	"pricecompare/internal/config"
	"pricecompare/matching"
)

func main() {
	var limitFlag = flag.Int("limit", 10, "максимум результатов")
	flag.Parse()

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "Использование: search [-limit N] <запрос>")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := database.NewCatalogDB(cfg.DatabasePath, matching.MustNormalizer())
	if err != nil {
		log.Fatalf("Ошибка открытия базы данных: %v", err)
	}
	defer db.Close()

	results, err := db.SearchProducts(query, *limitFlag)
	if err != nil {
		log.Fatalf("Ошибка поиска: %v", err)
	}

	if len(results) == 0 {
		fmt.Printf("По запросу %q ничего не найдено\n", query)
		return
	}

	fmt.Printf("Найдено товаров: %d\n\n", len(results))
	for _, r := range results {
		fmt.Printf("[%d] %s\n", r.MasterID, r.Name)
		if r.Brand != "" {
			fmt.Printf("    Бренд: %s\n", r.Brand)
		}
		fmt.Printf("    Цена: %.2f - %.2f EUR (%d магазинов, разница %.2f)\n",
			r.CheapestPrice, r.MostExpensive, r.StoreCount, r.PriceDifference)
		for _, offer := range r.Stores {
			line := fmt.Sprintf("    %-10s %.2f EUR", offer.Store, offer.Price)
			if offer.DiscountPct > 0 {
				line += fmt.Sprintf(" (скидка %.0f%%)", offer.DiscountPct)
			}
			fmt.Println(line)
		}
		fmt.Println()
	}
}
