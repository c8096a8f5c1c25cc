package scrapers

import (
	"context"
	"log"
	"strings"

	"pricecompare/models"

	"github.com/PuerkitoBio/goquery"
)

// StoreStephanis машинное имя магазина Stephanis
const StoreStephanis = "stephanis"

// StephanisScraper скрапер витрины stephanis.com.cy
type StephanisScraper struct {
	fetcher    *Fetcher
	categories []string
}

// NewStephanisScraper создает скрапер stephanis.com.cy поверх загрузчика
func NewStephanisScraper(fetcher *Fetcher) *StephanisScraper {
	return &StephanisScraper{
		fetcher: fetcher,
		categories: []string{
			"mobile-phones", "tablets", "laptops", "televisions", "gaming",
		},
	}
}

// Store машинное имя магазина
func (s *StephanisScraper) Store() string {
	return StoreStephanis
}

// Scrape обходит отслеживаемые категории и собирает карточки товаров
func (s *StephanisScraper) Scrape(ctx context.Context) ([]*models.Listing, error) {
	s.fetcher.LoadRobots(ctx)

	var listings []*models.Listing
	seen := make(map[string]struct{})

	for _, category := range s.categories {
		pageURL := s.fetcher.AbsURL("/en/" + category)
		doc, err := s.fetcher.FetchDocument(ctx, pageURL)
		if err != nil {
			log.Printf("[Stephanis] Категория %s недоступна: %v", category, err)
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

		log.Printf("[Stephanis] Категория %s: %d карточек", category, len(parsed))
	}

	return listings, nil
}

// ParseCatalog разбирает карточки товаров со страницы категории
func (s *StephanisScraper) ParseCatalog(doc *goquery.Document) []*models.Listing {
	var listings []*models.Listing

	doc.Find(".product-tile, .product-card, .product-item").Each(func(_ int, card *goquery.Selection) {
		if l := s.parseCard(card); l != nil {
			listings = append(listings, l)
		}
	})

	return listings
}

func (s *StephanisScraper) parseCard(card *goquery.Selection) *models.Listing {
	link := card.Find("a[href]").First()
	href, ok := link.Attr("href")
	if !ok {
		return nil
	}
	productURL := s.fetcher.AbsURL(href)
	if !s.fetcher.Allowed(productURL) {
		return nil
	}

	// У Stephanis название лежит в элементе вида tile-product-name
	name := strings.TrimSpace(card.Find(`[class*="product-name"], h2, h3, h4`).First().Text())
	if name == "" {
		name = strings.TrimSpace(link.Text())
	}
	if len(name) < 3 {
		return nil
	}

	listing := &models.Listing{
		Store:          StoreStephanis,
		StoreProductID: extractProductID(card, productURL, "data-productid", "data-id"),
		URL:            productURL,
		Name:           name,
		Currency:       "EUR",
		Availability:   parseAvailability(card),
	}

	// Текущая цена в now-price, при отсутствии — любой ценовой элемент
	priceText := card.Find(`[class*="now-price"]`).First().Text()
	if priceText == "" {
		priceText = card.Find(`.price, [class*="price"]`).First().Text()
	}
	if priceText != "" {
		if price, err := ParsePrice(priceText); err == nil {
			listing.Price = price
		}
	}

	if oldText := card.Find(`.original-price, .old-price, [class*="was-price"]`).First().Text(); oldText != "" {
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
