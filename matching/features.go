package matching

import (
	"fmt"
	"regexp"
	"strings"
)

// FeatureExtractor извлекает структурные атрибуты (бренд, модель, объем,
// цвет) из свободного текста названия карточки
type FeatureExtractor struct {
	norm  *Normalizer
	vocab *Vocabulary

	modelRes   []*regexp.Regexp
	capacityRe *regexp.Regexp
}

// NewFeatureExtractor создает экстрактор поверх нормализатора
func NewFeatureExtractor(norm *Normalizer) (*FeatureExtractor, error) {
	vocab := norm.vocab

	fe := &FeatureExtractor{
		norm:       norm,
		vocab:      vocab,
		capacityRe: regexp.MustCompile(`\d+(?:gb|tb|mb)`),
	}

	for _, pattern := range vocab.ModelPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid model pattern %q: %w", pattern, err)
		}
		fe.modelRes = append(fe.modelRes, re)
	}

	return fe, nil
}

// ExtractBrand ищет бренд: сначала точное совпадение токена, затем
// вхождение подстроки. Возвращает первый найденный бренд словаря,
// пустую строку если бренд не распознан.
func (fe *FeatureExtractor) ExtractBrand(name string) string {
	normalized := fe.norm.Normalize(name)
	if normalized == "" {
		return ""
	}

	for _, token := range strings.Fields(normalized) {
		if hasToken(fe.vocab.Brands, token) {
			return token
		}
	}

	for _, brand := range fe.vocab.Brands {
		if strings.Contains(normalized, brand) {
			return brand
		}
	}

	return ""
}

// ExtractModel извлекает идентификатор модели. Бренд, если известен,
// предварительно вырезается из названия. Шаблоны применяются по порядку:
// специфичные семейства до общего "слово+число", срабатывает первый.
func (fe *FeatureExtractor) ExtractModel(name, brand string) string {
	normalized := fe.norm.Normalize(name)
	if normalized == "" {
		return ""
	}

	if brand != "" {
		normalized = strings.TrimSpace(strings.ReplaceAll(normalized, strings.ToLower(brand), ""))
	}

	for _, re := range fe.modelRes {
		if match := re.FindStringSubmatch(normalized); match != nil {
			return strings.TrimSpace(match[1])
		}
	}

	return ""
}

// ExtractCapacity извлекает объем памяти ("128gb", "1tb").
// Возвращает первое совпадение в нормализованном тексте.
func (fe *FeatureExtractor) ExtractCapacity(name string) string {
	normalized := fe.norm.Normalize(name)
	if normalized == "" {
		return ""
	}
	return fe.capacityRe.FindString(normalized)
}

// ExtractColor извлекает цвет: сначала одиночный токен из словаря цветов,
// затем пары соседних токенов через проверку вхождения, чтобы ловить
// двухсловные цвета ("space gray", "sierra blue") и их дефисные варианты,
// схлопнутые нормализацией.
func (fe *FeatureExtractor) ExtractColor(name string) string {
	normalized := fe.norm.Normalize(name)
	if normalized == "" {
		return ""
	}

	tokens := strings.Fields(normalized)

	for _, token := range tokens {
		if hasToken(fe.vocab.Colors, token) {
			return token
		}
	}

	for i := 0; i+1 < len(tokens); i++ {
		pair := tokens[i] + " " + tokens[i+1]
		for _, color := range fe.vocab.Colors {
			if strings.Contains(pair, color) {
				return pair
			}
		}
	}

	return ""
}
