package scrapers

import (
	"fmt"
	"strconv"
	"strings"
)

// Границы правдоподобия цены. Все, что вне диапазона, считается
// ошибкой разметки витрины, а не реальной ценой.
const (
	minSanePrice = 1.0
	maxSanePrice = 1_000_000.0
)

// ParsePrice разбирает цену из текста витрины. Поддерживает европейский
// формат ("1.234,56 €") и англо-американский ("€1,234.56"); валютные
// символы и пробелы игнорируются.
func ParsePrice(text string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' || r == '.' || r == ',' {
			return r
		}
		return -1
	}, text)

	if cleaned == "" {
		return 0, fmt.Errorf("no digits in price %q", text)
	}

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Оба разделителя: последний — десятичный, первый — тысячный
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		// Одна запятая: десятичная при одном-двух знаках после нее,
		// иначе разделитель тысяч ("1,299")
		if decimals := len(cleaned) - lastComma - 1; decimals >= 1 && decimals <= 2 && strings.Count(cleaned, ",") == 1 {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastDot >= 0:
		// Одна точка: аналогично, "1.299" — это тысяча двести
		if decimals := len(cleaned) - lastDot - 1; decimals == 3 && strings.Count(cleaned, ".") == 1 {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		} else if strings.Count(cleaned, ".") > 1 {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable price %q: %w", text, err)
	}

	if price < minSanePrice || price > maxSanePrice {
		return 0, fmt.Errorf("price %.2f out of sane range", price)
	}

	return price, nil
}

// discountPercent вычисляет процент скидки по старой и новой цене
func discountPercent(price, originalPrice float64) float64 {
	if originalPrice <= price || originalPrice <= 0 {
		return 0
	}
	return (originalPrice - price) / originalPrice * 100
}
