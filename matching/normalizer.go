package matching

import (
	"fmt"
	"regexp"
	"strings"
)

// capacityPattern объем памяти в уже нормализованном тексте ("128gb", "1tb")
const capacityPattern = `\b\d+(?:gb|tb|mb)\b`

// rawCapacityPattern объем памяти в исходном тексте, до нормализации ("128 GB")
const rawCapacityPattern = `(?i)\b\d+\s*(?:gb|tb|mb)\b`

// Normalizer чистые текстовые преобразования для сопоставления карточек.
// Все методы детерминированы и не имеют побочных эффектов.
type Normalizer struct {
	vocab *Vocabulary

	unitRules   []compiledUnitRule
	capacityRe  *regexp.Regexp
	rawCapRe    *regexp.Regexp
	nonAlnumRe  *regexp.Regexp
	colorSet    map[string]struct{}
	modifierSet map[string]struct{}
	stopSet     map[string]struct{}
}

type compiledUnitRule struct {
	re   *regexp.Regexp
	repl string
}

// NewNormalizer создает нормализатор с переданными словарями
func NewNormalizer(vocab *Vocabulary) (*Normalizer, error) {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}

	n := &Normalizer{
		vocab:       vocab,
		capacityRe:  regexp.MustCompile(capacityPattern),
		rawCapRe:    regexp.MustCompile(rawCapacityPattern),
		nonAlnumRe:  regexp.MustCompile(`[^a-z0-9\s]`),
		colorSet:    make(map[string]struct{}, len(vocab.Colors)),
		modifierSet: make(map[string]struct{}, len(vocab.ColorModifiers)),
		stopSet:     make(map[string]struct{}, len(vocab.StopWords)),
	}

	for _, rule := range vocab.UnitRules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid unit rule %q: %w", rule.Pattern, err)
		}
		n.unitRules = append(n.unitRules, compiledUnitRule{re: re, repl: rule.Replacement})
	}

	for _, c := range vocab.Colors {
		n.colorSet[c] = struct{}{}
	}
	for _, m := range vocab.ColorModifiers {
		n.modifierSet[m] = struct{}{}
	}
	for _, s := range vocab.StopWords {
		n.stopSet[s] = struct{}{}
	}

	return n, nil
}

// MustNormalizer создает нормализатор со словарями по умолчанию.
// Паникует только при ошибке в захардкоженных шаблонах.
func MustNormalizer() *Normalizer {
	n, err := NewNormalizer(DefaultVocabulary())
	if err != nil {
		panic(err)
	}
	return n
}

// Normalize приводит текст к форме для сопоставления: нижний регистр,
// стандартизация единиц, только [a-z0-9 ], одиночные пробелы.
// Тотальная функция: для пустой строки возвращает пустую строку.
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ToLower(strings.TrimSpace(text))

	// Стандартизация единиц в фиксированном порядке
	for _, rule := range n.unitRules {
		text = rule.re.ReplaceAllString(text, rule.repl)
	}

	// Все, кроме латиницы, цифр и пробелов, заменяем пробелом
	text = n.nonAlnumRe.ReplaceAllString(text, " ")

	return strings.Join(strings.Fields(text), " ")
}

// NormalizeBase нормализация для межмагазинного сопоставления:
// дополнительно убирает объем памяти и цветовые токены, чтобы варианты
// одного товара считались одним базовым продуктом.
func (n *Normalizer) NormalizeBase(text string) string {
	normalized := n.Normalize(text)
	if normalized == "" {
		return ""
	}

	normalized = n.capacityRe.ReplaceAllString(normalized, "")

	tokens := strings.Fields(normalized)
	kept := tokens[:0]
	for _, t := range tokens {
		if n.isColorWord(t) {
			continue
		}
		kept = append(kept, t)
	}

	return strings.Join(kept, " ")
}

// Tokens токены нормализованного текста без стоп-слов, в исходном порядке
func (n *Normalizer) Tokens(text string) []string {
	return n.filterStopWords(strings.Fields(n.Normalize(text)))
}

// BaseTokens токены базовой нормализации без стоп-слов
func (n *Normalizer) BaseTokens(text string) []string {
	return n.filterStopWords(strings.Fields(n.NormalizeBase(text)))
}

// BaseDisplayName человекочитаемое имя без объема памяти и первого
// распознанного цветового словосочетания. Работает по исходному тексту,
// чтобы сохранить регистр для отображения. Если убрать нечего,
// возвращает исходную строку.
func (n *Normalizer) BaseDisplayName(text string) string {
	if text == "" {
		return ""
	}

	base := n.rawCapRe.ReplaceAllString(text, "")

	if phrase := n.colorPhrase(base); phrase != "" {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`)
		if err == nil {
			base = re.ReplaceAllString(base, "")
		}
	}

	base = strings.TrimSpace(strings.Join(strings.Fields(base), " "))
	if base == "" {
		return text
	}
	return base
}

// colorPhrase находит первое цветовое словосочетание в тексте:
// базовый цвет, при наличии расширенный предшествующим модификатором
// ("mist blue" целиком, а не только "blue")
func (n *Normalizer) colorPhrase(text string) string {
	tokens := strings.Fields(n.Normalize(text))
	for i, t := range tokens {
		if _, ok := n.colorSet[t]; !ok {
			continue
		}
		if i > 0 {
			if _, mod := n.modifierSet[tokens[i-1]]; mod {
				return tokens[i-1] + " " + t
			}
		}
		return t
	}
	return ""
}

// isColorWord цвет или цветовой модификатор
func (n *Normalizer) isColorWord(token string) bool {
	if _, ok := n.colorSet[token]; ok {
		return true
	}
	_, ok := n.modifierSet[token]
	return ok
}

// filterStopWords убирает стоп-слова, сохраняя порядок
func (n *Normalizer) filterStopWords(tokens []string) []string {
	result := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, stop := n.stopSet[t]; stop {
			continue
		}
		result = append(result, t)
	}
	return result
}
