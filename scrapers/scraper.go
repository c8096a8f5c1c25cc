package scrapers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pricecompare/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

// Scraper скрапер одного магазина
type Scraper interface {
	// Store машинное имя магазина ("public", "stephanis")
	Store() string

	// Scrape собирает карточки всех отслеживаемых категорий
	Scrape(ctx context.Context) ([]*models.Listing, error)
}

// Пути, на которые скрапер не ходит независимо от robots.txt
var blockedPaths = []string{
	"/cart", "/checkout", "/login", "/account", "/register", "/wishlist",
}

// Fetcher загрузчик страниц с лимитом запросов, дисковым кэшем
// и учетом robots.txt
type Fetcher struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string

	cacheDir     string
	cacheEnabled bool
	cacheTTL     time.Duration

	// Префиксы Disallow из robots.txt для User-agent: *
	disallow []string
}

// FetcherConfig конфигурация загрузчика
type FetcherConfig struct {
	BaseURL      string
	Timeout      time.Duration
	RateLimit    rate.Limit
	UserAgent    string
	CacheDir     string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// NewFetcher создает загрузчик страниц магазина
func NewFetcher(config FetcherConfig) *Fetcher {
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = rate.Every(2 * time.Second) // 1 запрос в 2 секунды
	}
	if config.UserAgent == "" {
		config.UserAgent = "PriceCompareBot/1.0"
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = 6 * time.Hour
	}

	return &Fetcher{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter:      rate.NewLimiter(config.RateLimit, 1),
		userAgent:    config.UserAgent,
		cacheDir:     config.CacheDir,
		cacheEnabled: config.CacheEnabled && config.CacheDir != "",
		cacheTTL:     config.CacheTTL,
	}
}

// LoadRobots загружает и разбирает robots.txt магазина.
// Недоступный robots.txt не считается ошибкой: ограничения просто пусты.
func (f *Fetcher) LoadRobots(ctx context.Context) {
	body, err := f.fetchRaw(ctx, f.baseURL+"/robots.txt")
	if err != nil {
		log.Printf("[Scraper] robots.txt недоступен для %s: %v", f.baseURL, err)
		return
	}

	f.disallow = parseRobots(string(body))
	log.Printf("[Scraper] robots.txt для %s: %d запретов", f.baseURL, len(f.disallow))
}

// Allowed проверяет, что путь не запрещен robots.txt и не входит
// в список служебных страниц
func (f *Fetcher) Allowed(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}

	for _, blocked := range blockedPaths {
		if strings.HasPrefix(u.Path, blocked) {
			return false
		}
	}

	for _, prefix := range f.disallow {
		if strings.HasPrefix(u.Path, prefix) {
			return false
		}
	}

	return true
}

// FetchDocument загружает страницу и разбирает ее в goquery-документ.
// Кодировка определяется по заголовкам и метатегам: магазины Кипра
// местами отдают греческие страницы в ISO-8859-7.
func (f *Fetcher) FetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if !f.Allowed(pageURL) {
		return nil, fmt.Errorf("url %s is disallowed", pageURL)
	}

	// Кэш хранится уже перекодированным в UTF-8
	if body, ok := f.cacheGet(pageURL); ok {
		return goquery.NewDocumentFromReader(bytes.NewReader(body))
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, pageURL)
	}

	// Перекодируем тело в UTF-8 до разбора
	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("charset detection failed: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	f.cachePut(pageURL, doc)
	return doc, nil
}

// fetchRaw загружает тело без кэша и разбора (для robots.txt)
func (f *Fetcher) fetchRaw(ctx context.Context, pageURL string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	return body, nil
}

// cacheGet возвращает закэшированное тело страницы, если оно не протухло
func (f *Fetcher) cacheGet(pageURL string) ([]byte, bool) {
	if !f.cacheEnabled {
		return nil, false
	}

	path := f.cachePath(pageURL)
	info, err := os.Stat(path)
	if err != nil || time.Since(info.ModTime()) > f.cacheTTL {
		return nil, false
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return body, true
}

// cachePut сохраняет страницу на диск. Ошибки кэша не фатальны.
func (f *Fetcher) cachePut(pageURL string, doc *goquery.Document) {
	if !f.cacheEnabled {
		return
	}

	html, err := doc.Html()
	if err != nil {
		return
	}

	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		log.Printf("[Scraper] Не удалось создать каталог кэша %s: %v", f.cacheDir, err)
		return
	}
	if err := os.WriteFile(f.cachePath(pageURL), []byte(html), 0o644); err != nil {
		log.Printf("[Scraper] Не удалось записать кэш для %s: %v", pageURL, err)
	}
}

func (f *Fetcher) cachePath(pageURL string) string {
	hash := sha256.Sum256([]byte(pageURL))
	return filepath.Join(f.cacheDir, hex.EncodeToString(hash[:])+".html")
}

// AbsURL разворачивает относительную ссылку относительно базового URL магазина
func (f *Fetcher) AbsURL(href string) string {
	base, err := url.Parse(f.baseURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// parseRobots выбирает префиксы Disallow из групп User-agent: *
func parseRobots(body string) []string {
	var disallow []string
	appliesToUs := false

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		field := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])

		switch field {
		case "user-agent":
			appliesToUs = value == "*"
		case "disallow":
			if appliesToUs && value != "" {
				disallow = append(disallow, value)
			}
		}
	}

	return disallow
}
