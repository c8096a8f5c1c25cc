package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pricecompare/database"
	"pricecompare/internal/config"
	"pricecompare/matching"
	"pricecompare/reporting"
	"pricecompare/server/handlers"
	"pricecompare/server/middleware"
)

// Server HTTP-сервер API сравнения цен
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
}

// New собирает сервер с роутером и обработчиками
func New(cfg *config.Config, db *database.CatalogDB, engine *matching.MatchEngine) *Server {
	router := NewRouter(cfg, db, engine)

	return &Server{
		cfg:    cfg,
		router: router,
		http: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
	}
}

// NewRouter настраивает маршруты API
func NewRouter(cfg *config.Config, db *database.CatalogDB, engine *matching.MatchEngine) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())

	exporter := reporting.NewExporter(db)
	h := handlers.NewCatalogHandler(db, engine, exporter, cfg.ExportDir, cfg.MatchBatchSize, cfg.MatchThreshold)

	api := router.Group("/api")
	{
		api.GET("/health", h.HandleHealth)
		api.GET("/search", h.HandleSearch)
		api.GET("/products/:id", h.HandleMasterDetail)
		api.GET("/variants/:id", h.HandleVariantDetail)
		api.GET("/compare", h.HandleCompare)
		api.GET("/deals", h.HandleDeals)
		api.GET("/stats", h.HandleStats)
		api.GET("/export", h.HandleExport)

		api.POST("/match", h.HandleMatch)
		api.POST("/match/rebuild", h.HandleRebuild)
	}

	return router
}

// Start запускает сервер и блокируется до его остановки
func (s *Server) Start() error {
	log.Printf("[Server] Запуск HTTP-сервера на порту %s", s.cfg.Port)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown останавливает сервер, дожидаясь активных запросов
func (s *Server) Shutdown(ctx context.Context) error {
	log.Printf("[Server] Остановка HTTP-сервера")
	return s.http.Shutdown(ctx)
}
