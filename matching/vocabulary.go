package matching

// Vocabulary справочные таблицы эвристик сопоставления.
// Передается явно в нормализатор и экстрактор, чтобы тесты могли
// подменять словари без глобального состояния.
type Vocabulary struct {
	// Brands известные бренды (в нижнем регистре)
	Brands []string

	// StopWords слова, бесполезные для сопоставления (категории, связность)
	StopWords []string

	// Colors базовые названия цветов
	Colors []string

	// ColorModifiers маркетинговые уточнения цвета ("mist", "cosmic"...),
	// удаляются при базовой нормализации, но сами по себе цветом не считаются
	ColorModifiers []string

	// UnitRules правила стандартизации единиц, применяются в фиксированном порядке
	UnitRules []UnitRule

	// ModelPatterns шаблоны моделей, от специфичных к общему.
	// Порядок важен: общий шаблон "слово+число" стоит последним, иначе он
	// перехватывал бы известные семейства.
	ModelPatterns []string
}

// UnitRule одно правило переписывания единиц измерения
type UnitRule struct {
	Pattern     string
	Replacement string
}

// DefaultVocabulary возвращает словари по умолчанию для электроники
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Brands: []string{
			"apple", "samsung", "xiaomi", "huawei", "oppo", "oneplus", "google", "nokia",
			"sony", "lg", "lenovo", "asus", "acer", "hp", "dell", "msi", "razer",
			"microsoft", "logitech", "corsair", "steelseries", "hyperx", "intel", "amd",
			"nvidia", "bosch", "philips", "panasonic", "canon", "nikon", "gopro",
		},
		StopWords: []string{
			"smartphone", "tablet", "laptop", "notebook", "desktop", "computer",
			"new", "original", "genuine", "official", "unlocked", "sealed",
			"dual", "sim", "esim", "wifi", "wi-fi", "bluetooth", "inch", "screen", "5g", "4g",
		},
		Colors: []string{
			"black", "white", "silver", "gold", "blue", "red", "green", "yellow",
			"pink", "purple", "gray", "grey", "orange", "titanium", "bronze",
			"midnight", "starlight", "graphite", "lavender", "ultramarine",
			"cream", "mint", "coral", "teal", "navy",
		},
		ColorModifiers: []string{
			"mist", "sage", "cosmic", "deep", "sky", "light", "dark", "space",
			"sierra", "rose", "natural", "awesome", "phantom", "jet", "desert",
			"pacific", "alpine", "forest", "ice",
		},
		UnitRules: []UnitRule{
			{Pattern: `(\d+)\s*gb`, Replacement: "${1}gb"},
			{Pattern: `(\d+)\s*tb`, Replacement: "${1}tb"},
			{Pattern: `(\d+)\s*mb`, Replacement: "${1}mb"},
			{Pattern: `(\d+(?:\.\d+)?)"`, Replacement: "${1}inch"},
			{Pattern: `(\d+(?:\.\d+)?)'`, Replacement: "${1}inch"},
		},
		ModelPatterns: []string{
			`(iphone\s*\d+\s*(?:pro|plus|max|mini)?)`,
			`(galaxy\s*[a-z]\d+\s*(?:ultra|plus)?)`,
			`(pixel\s*\d+\s*(?:pro|xl)?)`,
			`(ipad\s*(?:pro|air|mini)?\s*\d*)`,
			`(macbook\s*(?:pro|air)?\s*\d*)`,
			`([a-z]+\s*\d+\s*(?:pro|plus|max|ultra)?)`,
		},
	}
}

// hasToken проверяет вхождение токена в список
func hasToken(list []string, token string) bool {
	for _, item := range list {
		if item == token {
			return true
		}
	}
	return false
}
