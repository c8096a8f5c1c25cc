package matching

import (
	"strings"

	"pricecompare/models"
)

// DefaultMatchThreshold порог парного сопоставления карточек
const DefaultMatchThreshold = 0.7

// ScoreWeights веса сигналов парного сопоставления
type ScoreWeights struct {
	NameSimilarity float64 // схожесть базовых названий
	TokenOverlap   float64 // пересечение базовых токенов (Жаккар)
	Capacity       float64 // согласие по объему памяти
	Model          float64 // согласие по модели
}

// DefaultScoreWeights веса по умолчанию
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		NameSimilarity: 0.4,
		TokenOverlap:   0.4,
		Capacity:       0.1,
		Model:          0.1,
	}
}

// Scorer вычисляет схожесть карточек и принимает решение о совпадении
type Scorer struct {
	norm      *Normalizer
	extractor *FeatureExtractor
	weights   ScoreWeights
}

// NewScorer создает скоринг поверх нормализатора и экстрактора
func NewScorer(norm *Normalizer, extractor *FeatureExtractor) *Scorer {
	return &Scorer{
		norm:      norm,
		extractor: extractor,
		weights:   DefaultScoreWeights(),
	}
}

// StringSimilarity посимвольная схожесть нормализованных строк, [0,1]
func (s *Scorer) StringSimilarity(a, b string) float64 {
	return sequenceRatio(s.norm.Normalize(a), s.norm.Normalize(b))
}

// BaseStringSimilarity то же по базовой нормализации (без объема и цвета)
func (s *Scorer) BaseStringSimilarity(a, b string) float64 {
	return sequenceRatio(s.norm.NormalizeBase(a), s.norm.NormalizeBase(b))
}

// TokenOverlap индекс Жаккара по множествам токенов: |A∩B| / |A∪B|.
// Порядок и повторы токенов не учитываются; 0.0 если одно из множеств пусто.
func (s *Scorer) TokenOverlap(tokens1, tokens2 []string) float64 {
	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0.0
	}

	set1 := make(map[string]struct{}, len(tokens1))
	for _, t := range tokens1 {
		set1[t] = struct{}{}
	}
	set2 := make(map[string]struct{}, len(tokens2))
	for _, t := range tokens2 {
		set2[t] = struct{}{}
	}

	intersection := 0
	for t := range set1 {
		if _, ok := set2[t]; ok {
			intersection++
		}
	}

	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 0.0
	}

	return float64(intersection) / float64(union)
}

// IsMatch решает, являются ли две карточки одним товаром.
// Несовпадение явных брендов и несовпадение извлеченных моделей —
// абсолютные запреты: высокая текстовая схожесть их не перекрывает.
// Карточки одного семейства ("Galaxy A36" и "Galaxy A56") иначе набирали бы
// проходной балл на одной лишь близости названий.
func (s *Scorer) IsMatch(l1, l2 *models.Listing, threshold float64) bool {
	brand1 := s.resolveBrand(l1)
	brand2 := s.resolveBrand(l2)

	if brand1 != "" && brand2 != "" && !strings.EqualFold(brand1, brand2) {
		return false
	}

	model1 := s.extractor.ExtractModel(l1.Name, brand1)
	model2 := s.extractor.ExtractModel(l2.Name, brand2)
	if model1 != "" && model2 != "" && model1 != model2 {
		return false
	}

	nameSim := s.BaseStringSimilarity(l1.Name, l2.Name)
	overlap := s.TokenOverlap(s.norm.BaseTokens(l1.Name), s.norm.BaseTokens(l2.Name))

	// Отсутствие объема/модели на любой из сторон не штрафуется:
	// многие карточки их не содержат, и трактовка "неизвестно" как
	// "разное" давала бы ложные отказы
	cap1 := s.extractor.ExtractCapacity(l1.Name)
	cap2 := s.extractor.ExtractCapacity(l2.Name)
	capacityAgree := 1.0
	if cap1 != "" && cap2 != "" && cap1 != cap2 {
		capacityAgree = 0.0
	}

	modelAgree := 1.0 // несовпадение уже отсечено выше

	score := nameSim*s.weights.NameSimilarity +
		overlap*s.weights.TokenOverlap +
		capacityAgree*s.weights.Capacity +
		modelAgree*s.weights.Model

	return score >= threshold
}

// resolveBrand бренд карточки: явное поле либо извлечение из названия
func (s *Scorer) resolveBrand(l *models.Listing) string {
	if l.Brand != "" {
		return l.Brand
	}
	return s.extractor.ExtractBrand(l.Name)
}
