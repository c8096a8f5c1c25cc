package matching

import "testing"

func newTestExtractor(t *testing.T) *FeatureExtractor {
	t.Helper()
	fe, err := NewFeatureExtractor(MustNormalizer())
	if err != nil {
		t.Fatalf("NewFeatureExtractor: %v", err)
	}
	return fe
}

// Тесты извлечения атрибутов из названий
func TestFeatureExtractor_ExtractBrand(t *testing.T) {
	fe := newTestExtractor(t)

	tests := []struct {
		input    string
		expected string
	}{
		{"Apple iPhone 15 Pro", "apple"},
		{"SAMSUNG Galaxy S24", "samsung"},
		{"Смартфон Xiaomi Redmi Note 13", "xiaomi"},
		{"Generic USB Cable 2m", ""},
		{"", ""},
	}

	for _, tt := range tests {
		result := fe.ExtractBrand(tt.input)
		if result != tt.expected {
			t.Errorf("ExtractBrand(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestFeatureExtractor_ExtractModel(t *testing.T) {
	fe := newTestExtractor(t)

	tests := []struct {
		input    string
		brand    string
		expected string
	}{
		{"Apple iPhone 15 Pro 128GB", "apple", "iphone 15 pro"},
		{"Samsung Galaxy A36 5G", "samsung", "galaxy a36"},
		{"Samsung Galaxy A56 5G", "samsung", "galaxy a56"},
		{"Google Pixel 9 Pro", "google", "pixel 9 pro"},
		{"MacBook Air M2", "apple", "macbook air"},
		{"", "", ""},
	}

	for _, tt := range tests {
		result := fe.ExtractModel(tt.input, tt.brand)
		if result != tt.expected {
			t.Errorf("ExtractModel(%q, %q) = %q, want %q", tt.input, tt.brand, result, tt.expected)
		}
	}
}

func TestFeatureExtractor_ExtractCapacity(t *testing.T) {
	fe := newTestExtractor(t)

	tests := []struct {
		input    string
		expected string
	}{
		{"Apple iPhone 15 128GB", "128gb"},
		{"Samsung SSD 1 TB", "1tb"},
		{"iPhone 16 Pro Max 256 gb Black", "256gb"},
		{"Logitech MX Keys", ""},
		{"", ""},
	}

	for _, tt := range tests {
		result := fe.ExtractCapacity(tt.input)
		if result != tt.expected {
			t.Errorf("ExtractCapacity(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestFeatureExtractor_ExtractColor(t *testing.T) {
	fe := newTestExtractor(t)

	tests := []struct {
		input    string
		expected string
	}{
		{"Apple iPhone 15 Pro Black", "black"},
		// Маркетинговый модификатор сам по себе цветом не является:
		// извлекается базовый цветовой токен
		{"Apple iPhone 17 256GB Mist Blue", "blue"},
		{"Samsung Galaxy S24 Titanium", "titanium"},
		{"Sony PlayStation 5", ""},
		{"", ""},
	}

	for _, tt := range tests {
		result := fe.ExtractColor(tt.input)
		if result != tt.expected {
			t.Errorf("ExtractColor(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}
