package scrapers

import (
	"context"
	"log"
	"regexp"
	"strings"

	"pricecompare/models"

	"github.com/PuerkitoBio/goquery"
)

// StorePublic машинное имя магазина Public Cyprus
const StorePublic = "public"

// Формат ссылок на товар: /product/.../1234567, /p/1234567, ?id=1234567
var productIDPattern = regexp.MustCompile(`/product/.+/(\d+)$|/product/(\d+)|/p/(\d+)|id=(\d+)`)

// PublicScraper скрапер витрины public.cy
type PublicScraper struct {
	fetcher    *Fetcher
	categories []string
}

// NewPublicScraper создает скрапер public.cy поверх загрузчика
func NewPublicScraper(fetcher *Fetcher) *PublicScraper {
	return &PublicScraper{
		fetcher: fetcher,
		categories: []string{
			"electronics", "smartphones", "laptops", "televisions", "gaming",
		},
	}
}

// Store машинное имя магазина
func (s *PublicScraper) Store() string {
	return StorePublic
}

// Scrape обходит отслеживаемые категории и собирает карточки товаров.
// Недоступная категория логируется и пропускается, остальные
// продолжают обрабатываться.
func (s *PublicScraper) Scrape(ctx context.Context) ([]*models.Listing, error) {
	s.fetcher.LoadRobots(ctx)

	var listings []*models.Listing
	seen := make(map[string]struct{})

	for _, category := range s.categories {
		pageURL := s.fetcher.AbsURL("/" + category)
		doc, err := s.fetcher.FetchDocument(ctx, pageURL)
		if err != nil {
			log.Printf("[Public] Категория %s недоступна: %v", category, err)
			continue
		}

		parsed := s.ParseCatalog(doc)
		for _, l := range parsed {
			if _, dup := seen[l.StoreProductID]; dup {
				continue
			}
			seen[l.StoreProductID] = struct{}{}
			l.Category = category
			listings = append(listings, l)
		}

		log.Printf("[Public] Категория %s: %d карточек", category, len(parsed))
	}

	return listings, nil
}

// ParseCatalog разбирает карточки товаров со страницы категории
func (s *PublicScraper) ParseCatalog(doc *goquery.Document) []*models.Listing {
	var listings []*models.Listing

	doc.Find(".product-card, .product-item, .product-tile").Each(func(_ int, card *goquery.Selection) {
		if l := s.parseCard(card); l != nil {
			listings = append(listings, l)
		}
	})

	return listings
}

// parseCard разбирает одну карточку. Возвращает nil для карточек
// без названия или со ссылкой на служебную страницу.
func (s *PublicScraper) parseCard(card *goquery.Selection) *models.Listing {
	link := card.Find("a[href]").First()
	href, ok := link.Attr("href")
	if !ok {
		return nil
	}
	productURL := s.fetcher.AbsURL(href)
	if !s.fetcher.Allowed(productURL) {
		return nil
	}

	name := strings.TrimSpace(card.Find("h2, h3, h4, .product-title, .product-name").First().Text())
	if name == "" {
		name = strings.TrimSpace(link.Text())
	}
	if len(name) < 3 {
		return nil
	}

	listing := &models.Listing{
		Store:          StorePublic,
		StoreProductID: extractProductID(card, productURL, "data-product-id", "data-id"),
		URL:            productURL,
		Name:           name,
		Currency:       "EUR",
		Availability:   parseAvailability(card),
	}

	if priceText := card.Find(`[class*="product__price"], .price`).First().Text(); priceText != "" {
		if price, err := ParsePrice(priceText); err == nil {
			listing.Price = price
		}
	}
	if oldText := card.Find(`.original-price, .old-price`).First().Text(); oldText != "" {
		if original, err := ParsePrice(oldText); err == nil && original > listing.Price {
			listing.OriginalPrice = original
			listing.DiscountPct = discountPercent(listing.Price, original)
		}
	}

	if src, ok := card.Find("img[src]").First().Attr("src"); ok {
		listing.ImageURL = s.fetcher.AbsURL(src)
	}
	listing.Brand = strings.TrimSpace(card.Find(".brand").First().Text())

	return listing
}

// extractProductID внутренний ID товара: data-атрибут карточки,
// затем числовой ID из URL, затем сам URL как последний вариант
func extractProductID(card *goquery.Selection, productURL string, attrs ...string) string {
	for _, attr := range attrs {
		if id, ok := card.Attr(attr); ok && id != "" {
			return id
		}
	}

	if m := productIDPattern.FindStringSubmatch(productURL); m != nil {
		for _, group := range m[1:] {
			if group != "" {
				return group
			}
		}
	}

	return productURL
}

// parseAvailability определяет наличие по тексту карточки
func parseAvailability(card *goquery.Selection) string {
	text := strings.ToLower(strings.TrimSpace(
		card.Find(`.availability, .stock, [class*="stock"], [class*="available"]`).First().Text(),
	))
	if text == "" {
		return models.AvailabilityUnknown
	}

	switch {
	case strings.Contains(text, "out") || strings.Contains(text, "unavailable"):
		return models.AvailabilityOutOfStock
	case strings.Contains(text, "pre-order") || strings.Contains(text, "preorder"):
		return models.AvailabilityPreOrder
	case strings.Contains(text, "in stock") || strings.Contains(text, "available"):
		return models.AvailabilityInStock
	default:
		return models.AvailabilityUnknown
	}
}
