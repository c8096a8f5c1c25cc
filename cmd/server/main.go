package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pricecompare/database"
	"pricecompare/internal/config"
	"pricecompare/matching"
	"pricecompare/server"
)

func main() {
	log.Println("Запуск сервера сравнения цен...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	norm := matching.MustNormalizer()
	db, err := database.NewCatalogDBWithConfig(cfg.DatabasePath, norm, database.DBConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
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

	srv := server.New(cfg, db, engine)

	// Грейсфул-шатдаун по SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Ошибка остановки сервера: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("Ошибка сервера: %v", err)
	}

	log.Println("Сервер остановлен")
}
