package main

import (
	"flag"
	"log"

	"pricecompare/database"
	"pricecompare/internal/config"
	"pricecompare/matching"
	"pricecompare/models"
)

func main() {
	var (
		rebuildFlag = flag.Bool("rebuild", false, "снести канонический каталог и пересобрать заново")
		batchFlag   = flag.Int("batch", 0, "размер пачки фиксации (0 — из конфигурации)")
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

	extractor, err := matching.NewFeatureExtractor(norm)
	if err != nil {
		log.Fatalf("Ошибка инициализации экстрактора: %v", err)
	}
	engine := matching.NewMatchEngine(db, norm, extractor, matching.NewScorer(norm, extractor))
	engine.MasterThreshold = cfg.MasterThreshold

	batchSize := *batchFlag
	if batchSize <= 0 {
		batchSize = cfg.MatchBatchSize
	}

	var stats *models.MatchStats
	if *rebuildFlag {
		stats, err = engine.RebuildAll(batchSize)
	} else {
		stats, err = engine.MatchBatch(batchSize)
	}
	if err != nil {
		log.Fatalf("Сопоставление прервано: %v", err)
	}

	log.Printf("Итог: %d карточек, %d к существующим, %d новых мастеров, %d уже привязаны",
		stats.Total, stats.MatchedExisting, stats.Created, stats.AlreadyMatched)
}
