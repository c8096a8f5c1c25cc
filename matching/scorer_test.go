package matching

import (
	"testing"

	"pricecompare/models"
)

func newTestScorer(t *testing.T) *Scorer {
	t.Helper()
	norm := MustNormalizer()
	fe, err := NewFeatureExtractor(norm)
	if err != nil {
		t.Fatalf("NewFeatureExtractor: %v", err)
	}
	return NewScorer(norm, fe)
}

// Тесты посимвольной схожести
func TestSequenceRatio(t *testing.T) {
	tests := []struct {
		s1, s2   string
		expected float64
	}{
		{"abc", "abc", 1.0},
		{"", "", 1.0},
		{"abc", "", 0.0},
		{"abc", "xyz", 0.0},
		{"abcd", "bcde", 0.75}, // общий блок "bcd": 2*3/8
	}

	for _, tt := range tests {
		result := sequenceRatio(tt.s1, tt.s2)
		if !almostEqual(result, tt.expected) {
			t.Errorf("sequenceRatio(%q, %q) = %f, want %f", tt.s1, tt.s2, result, tt.expected)
		}
	}
}

func TestSequenceRatio_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"apple iphone 15", "iphone 15 apple"},
		{"samsung galaxy", "galaxy samsung s24"},
	}

	for _, p := range pairs {
		ab := sequenceRatio(p[0], p[1])
		ba := sequenceRatio(p[1], p[0])
		if !almostEqual(ab, ba) {
			t.Errorf("sequenceRatio not symmetric for %q / %q: %f vs %f", p[0], p[1], ab, ba)
		}
	}
}

func TestScorer_TokenOverlap(t *testing.T) {
	s := newTestScorer(t)

	tests := []struct {
		t1, t2   []string
		expected float64
	}{
		{[]string{"a", "b", "c"}, []string{"a", "b", "c"}, 1.0},
		{[]string{"a", "b"}, []string{"b", "c"}, 1.0 / 3.0},
		{[]string{"a"}, []string{"b"}, 0.0},
		{nil, []string{"a"}, 0.0},
		{nil, nil, 0.0},
		// Повторы не учитываются
		{[]string{"a", "a", "b"}, []string{"a", "b"}, 1.0},
	}

	for _, tt := range tests {
		result := s.TokenOverlap(tt.t1, tt.t2)
		if !almostEqual(result, tt.expected) {
			t.Errorf("TokenOverlap(%v, %v) = %f, want %f", tt.t1, tt.t2, result, tt.expected)
		}
	}
}

// Тесты решения о совпадении карточек
func TestScorer_IsMatch(t *testing.T) {
	s := newTestScorer(t)

	tests := []struct {
		name     string
		n1, n2   string
		expected bool
	}{
		{
			name:     "идентичные названия",
			n1:       "Apple iPhone 15 Pro 128GB",
			n2:       "Apple iPhone 15 Pro 128GB",
			expected: true,
		},
		{
			name:     "разный объем памяти одного товара",
			n1:       "Apple iPhone 16 128GB Black",
			n2:       "Apple iPhone 16 256GB White",
			expected: true,
		},
		{
			name:     "объем указан только с одной стороны",
			n1:       "Apple iPhone 16",
			n2:       "Apple iPhone 16 128GB",
			expected: true,
		},
		{
			name:     "разные бренды",
			n1:       "Apple iPhone 15",
			n2:       "Samsung Galaxy S24",
			expected: false,
		},
		{
			name:     "разные модели одного семейства",
			n1:       "Samsung Galaxy A36 5G 128GB",
			n2:       "Samsung Galaxy A56 5G 128GB",
			expected: false,
		},
		{
			name:     "один бренд, разные товары без моделей",
			n1:       "Logitech MX Keys Keyboard",
			n2:       "Logitech MX Master Mouse",
			expected: false,
		},
	}

	for _, tt := range tests {
		l1 := &models.Listing{Name: tt.n1}
		l2 := &models.Listing{Name: tt.n2}
		result := s.IsMatch(l1, l2, DefaultMatchThreshold)
		if result != tt.expected {
			t.Errorf("%s: IsMatch(%q, %q) = %v, want %v", tt.name, tt.n1, tt.n2, result, tt.expected)
		}
	}
}

// Явный бренд в карточке имеет приоритет над извлечением из названия
func TestScorer_IsMatch_ExplicitBrandVeto(t *testing.T) {
	s := newTestScorer(t)

	l1 := &models.Listing{Name: "Galaxy Buds 3 Pro", Brand: "samsung"}
	l2 := &models.Listing{Name: "Galaxy Buds 3 Pro", Brand: "xiaomi"}

	if s.IsMatch(l1, l2, DefaultMatchThreshold) {
		t.Error("IsMatch should reject identical names with different explicit brands")
	}
}

func almostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
