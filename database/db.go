package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"pricecompare/matching"

	_ "github.com/mattn/go-sqlite3"
)

// DBConfig конфигурация подключения к БД
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// CatalogDB обертка над SQLite-базой каталога товаров.
// Хранит карточки магазинов, канонический каталог и историю цен.
type CatalogDB struct {
	conn *sql.DB
	norm *matching.Normalizer

	// Привязки, накопленные движком сопоставления до фиксации
	pendingAssignments []assignment
}

type assignment struct {
	listingID int64
	masterID  int64
	variantID int64
}

// NewCatalogDB открывает базу каталога по пути и инициализирует схему
func NewCatalogDB(dbPath string, norm *matching.Normalizer) (*CatalogDB, error) {
	config := DBConfig{}

	// Для in-memory SQLite требуется ровно одно соединение,
	// иначе каждое новое соединение получает пустую БД без таблиц
	if isInMemoryDB(dbPath) {
		config.MaxOpenConns = 1
		config.MaxIdleConns = 1
	}

	return NewCatalogDBWithConfig(dbPath, norm, config)
}

// isInMemoryDB определяет, что путь относится к in-memory SQLite
func isInMemoryDB(dbPath string) bool {
	if dbPath == ":memory:" {
		return true
	}

	// Формат file:memdb?mode=memory&cache=shared также хранит БД в памяти
	if strings.HasPrefix(dbPath, "file:") && strings.Contains(dbPath, "mode=memory") {
		return true
	}

	return false
}

// NewCatalogDBWithConfig открывает базу каталога с настройками пула соединений
func NewCatalogDBWithConfig(dbPath string, norm *matching.Normalizer, config DBConfig) (*CatalogDB, error) {
	if norm == nil {
		norm = matching.MustNormalizer()
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	// SQLite плохо справляется с большим количеством одновременных
	// соединений, ограничиваем пул
	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		conn.SetMaxOpenConns(10)
	}

	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		conn.SetMaxIdleConns(3)
	}

	if config.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	} else {
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping catalog database: %w", err)
	}

	// FOREIGN KEY constraints в SQLite выключены по умолчанию
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// WAL позволяет множественным читателям работать одновременно без блокировок
	if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
		// Не критично, логируем и продолжаем
		log.Printf("[CatalogDB] Warning: Failed to enable WAL mode: %v", err)
	}

	db := &CatalogDB{conn: conn, norm: norm}

	if err := initSchema(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize catalog schema: %w", err)
	}

	return db, nil
}

// Close закрывает подключение к базе каталога
func (db *CatalogDB) Close() error {
	return db.conn.Close()
}

// Ping проверяет подключение к базе данных
func (db *CatalogDB) Ping() error {
	return db.conn.Ping()
}

// GetDB возвращает указатель на sql.DB для прямого доступа
func (db *CatalogDB) GetDB() *sql.DB {
	return db.conn
}
