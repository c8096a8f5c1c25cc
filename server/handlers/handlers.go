package handlers

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"pricecompare/database"
	"pricecompare/matching"
	"pricecompare/models"
	"pricecompare/reporting"
	"pricecompare/server/apperrors"
)

// CatalogHandler обработчики HTTP API каталога
type CatalogHandler struct {
	db       *database.CatalogDB
	engine   *matching.MatchEngine
	exporter *reporting.Exporter

	exportDir      string
	batchSize      int
	matchThreshold float64

	// Движок сопоставления не потокобезопасен, прогоны сериализуются
	matchMu sync.Mutex
}

// NewCatalogHandler создает обработчики поверх базы и движка сопоставления
func NewCatalogHandler(db *database.CatalogDB, engine *matching.MatchEngine, exporter *reporting.Exporter, exportDir string, batchSize int, matchThreshold float64) *CatalogHandler {
	if matchThreshold <= 0 {
		matchThreshold = matching.DefaultMatchThreshold
	}
	return &CatalogHandler{
		db:             db,
		engine:         engine,
		exporter:       exporter,
		exportDir:      exportDir,
		batchSize:      batchSize,
		matchThreshold: matchThreshold,
	}
}

// ErrorResponse структура ошибки
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// SendJSONError отправляет ошибку в едином формате
func SendJSONError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: true, Message: message})
}

// sendAppError логирует и отправляет ошибку приложения
func sendAppError(c *gin.Context, err *apperrors.AppError) {
	if err.StatusCode() >= http.StatusInternalServerError {
		log.Printf("[API] %v", err)
	}
	SendJSONError(c, err.StatusCode(), err.UserMessage())
}

// HandleHealth проверка живости сервиса
func (h *CatalogHandler) HandleHealth(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		sendAppError(c, apperrors.WrapError(err, "база данных недоступна"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleSearch поиск товаров с агрегацией цен по магазинам
func (h *CatalogHandler) HandleSearch(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		sendAppError(c, apperrors.NewValidationError("параметр q обязателен", nil))
		return
	}

	limit := queryInt(c, "limit", 50)
	results, err := h.db.SearchProducts(query, limit)
	if err != nil {
		sendAppError(c, apperrors.WrapError(err, "поиск не выполнен"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"total":   len(results),
		"results": results,
	})
}

// HandleMasterDetail карточка мастера с вариантами
func (h *CatalogHandler) HandleMasterDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		sendAppError(c, apperrors.NewValidationError("некорректный id товара", err))
		return
	}

	detail, err := h.db.MasterDetail(id)
	if err != nil {
		sendAppError(c, apperrors.WrapError(err, "не удалось получить товар"))
		return
	}
	if detail == nil {
		sendAppError(c, apperrors.NewNotFoundError("товар не найден", nil))
		return
	}

	c.JSON(http.StatusOK, detail)
}

// HandleVariantDetail сравнение магазинов внутри варианта
func (h *CatalogHandler) HandleVariantDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		sendAppError(c, apperrors.NewValidationError("некорректный id варианта", err))
		return
	}

	detail, err := h.db.VariantDetail(id)
	if err != nil {
		sendAppError(c, apperrors.WrapError(err, "не удалось получить вариант"))
		return
	}
	if detail == nil {
		sendAppError(c, apperrors.NewNotFoundError("вариант не найден", nil))
		return
	}

	c.JSON(http.StatusOK, detail)
}

// HandleDeals подборка карточек с наибольшими скидками
func (h *CatalogHandler) HandleDeals(c *gin.Context) {
	limit := queryInt(c, "limit", 20)

	deals, err := h.db.Deals(c.Query("store"), limit)
	if err != nil {
		sendAppError(c, apperrors.WrapError(err, "не удалось получить скидки"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total": len(deals),
		"deals": deals,
	})
}

// HandleStats сводная статистика каталога
func (h *CatalogHandler) HandleStats(c *gin.Context) {
	stats, err := h.db.Stats()
	if err != nil {
		sendAppError(c, apperrors.WrapError(err, "не удалось получить статистику"))
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HandleCompare проверяет, описывают ли два названия один товар.
// Возвращает составляющие оценки для отладки словарей.
func (h *CatalogHandler) HandleCompare(c *gin.Context) {
	a := c.Query("a")
	b := c.Query("b")
	if a == "" || b == "" {
		sendAppError(c, apperrors.NewValidationError("параметры a и b обязательны", nil))
		return
	}

	scorer := h.engine.Scorer()
	l1 := &models.Listing{Name: a, Brand: c.Query("brand_a")}
	l2 := &models.Listing{Name: b, Brand: c.Query("brand_b")}

	c.JSON(http.StatusOK, gin.H{
		"match":           scorer.IsMatch(l1, l2, h.matchThreshold),
		"base_similarity": scorer.BaseStringSimilarity(a, b),
		"threshold":       h.matchThreshold,
	})
}

// HandleMatch запускает сопоставление непривязанных карточек
func (h *CatalogHandler) HandleMatch(c *gin.Context) {
	batchSize := queryInt(c, "batch_size", h.batchSize)

	h.matchMu.Lock()
	stats, err := h.engine.MatchBatch(batchSize)
	h.matchMu.Unlock()

	if err != nil {
		sendAppError(c, apperrors.WrapError(err, "сопоставление прервано"))
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HandleRebuild полная пересборка канонического каталога
func (h *CatalogHandler) HandleRebuild(c *gin.Context) {
	batchSize := queryInt(c, "batch_size", h.batchSize)

	h.matchMu.Lock()
	stats, err := h.engine.RebuildAll(batchSize)
	h.matchMu.Unlock()

	if err != nil {
		sendAppError(c, apperrors.WrapError(err, "пересборка прервана"))
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HandleExport выгружает отчет и отдает файл
func (h *CatalogHandler) HandleExport(c *gin.Context) {
	format := reporting.ExportFormat(c.DefaultQuery("format", string(reporting.FormatJSON)))

	ext := map[reporting.ExportFormat]string{
		reporting.FormatJSON:  "json",
		reporting.FormatCSV:   "csv",
		reporting.FormatExcel: "xlsx",
	}[format]
	if ext == "" {
		sendAppError(c, apperrors.NewValidationError(fmt.Sprintf("неизвестный формат %q", format), nil))
		return
	}

	filters := reporting.ExportFilters{
		Store:     c.Query("store"),
		Brand:     c.Query("brand"),
		MinPrice:  queryFloat(c, "min_price"),
		MaxPrice:  queryFloat(c, "max_price"),
		OnlySales: c.Query("only_sales") == "true",
		Limit:     queryInt(c, "limit", 0),
	}

	if err := os.MkdirAll(h.exportDir, 0o755); err != nil {
		sendAppError(c, apperrors.WrapError(err, "каталог экспорта недоступен"))
		return
	}

	filename := fmt.Sprintf("report_%s.%s", time.Now().Format("20060102_150405"), ext)
	path := filepath.Join(h.exportDir, filename)

	if err := h.exporter.Export(format, path, filters); err != nil {
		sendAppError(c, apperrors.WrapError(err, "экспорт не выполнен"))
		return
	}

	c.FileAttachment(path, filename)
}

// queryInt числовой query-параметр с значением по умолчанию
func queryInt(c *gin.Context, name string, defaultValue int) int {
	if raw := c.Query(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return defaultValue
}

// queryFloat вещественный query-параметр, 0 если не задан
func queryFloat(c *gin.Context, name string) float64 {
	if raw := c.Query(name); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return 0
}
