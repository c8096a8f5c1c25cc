package main

import (
	"context"
	"flag"
	"log"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"pricecompare/database"
	"pricecompare/internal/config"
	"pricecompare/matching"
	"pricecompare/scrapers"
)

func main() {
	var (
		storeFlag = flag.String("store", "", "скрапить только один магазин (public|stephanis)")
		matchFlag = flag.Bool("match", true, "запустить сопоставление после сохранения")
	)
	flag.Parse()

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

	active := buildScrapers(cfg, *storeFlag)
	if len(active) == 0 {
		log.Fatalf("Нет активных скраперов (store=%q)", *storeFlag)
	}

	ctx := context.Background()
	for _, s := range active {
		started := time.Now()
		listings, err := s.Scrape(ctx)
		if err != nil {
			log.Printf("Скрапер %s завершился с ошибкой: %v", s.Store(), err)
			continue
		}

		stats, err := db.SaveListings(listings)
		if err != nil {
			log.Printf("Сохранение карточек %s не удалось: %v", s.Store(), err)
			continue
		}

		log.Printf("Магазин %s: %d карточек (%d новых, %d обновлено) за %s",
			s.Store(), len(listings), stats.Created, stats.Updated, time.Since(started).Round(time.Second))
	}

	if *matchFlag {
		extractor, err := matching.NewFeatureExtractor(norm)
		if err != nil {
			log.Fatalf("Ошибка инициализации экстрактора: %v", err)
		}
		engine := matching.NewMatchEngine(db, norm, extractor, matching.NewScorer(norm, extractor))
		engine.MasterThreshold = cfg.MasterThreshold

		stats, err := engine.MatchBatch(cfg.MatchBatchSize)
		if err != nil {
			log.Fatalf("Сопоставление прервано: %v", err)
		}
		log.Printf("Сопоставление: %d карточек, %d к существующим, %d новых мастеров",
			stats.Total, stats.MatchedExisting, stats.Created)
	}
}

// buildScrapers собирает скраперы по конфигурации и флагу -store
func buildScrapers(cfg *config.Config, only string) []scrapers.Scraper {
	newFetcher := func(baseURL, store string) *scrapers.Fetcher {
		return scrapers.NewFetcher(scrapers.FetcherConfig{
			BaseURL:      baseURL,
			Timeout:      cfg.ScrapeTimeout,
			RateLimit:    rate.Every(cfg.ScrapeRateDelay),
			UserAgent:    cfg.ScrapeUserAgent,
			CacheDir:     filepath.Join(cfg.CacheDir, store),
			CacheEnabled: cfg.CacheEnabled,
			CacheTTL:     cfg.CacheTTL,
		})
	}

	var active []scrapers.Scraper
	if cfg.PublicEnabled && (only == "" || only == scrapers.StorePublic) {
		active = append(active, scrapers.NewPublicScraper(newFetcher("https://www.public.cy", scrapers.StorePublic)))
	}
	if cfg.StephanisEnabled && (only == "" || only == scrapers.StoreStephanis) {
		active = append(active, scrapers.NewStephanisScraper(newFetcher("https://www.stephanis.com.cy", scrapers.StoreStephanis)))
	}
	return active
}
