package matching

import (
	"reflect"
	"testing"
)

// Тесты нормализации названий
func TestNormalizer_Normalize(t *testing.T) {
	n := MustNormalizer()

	tests := []struct {
		input    string
		expected string
	}{
		{"Apple iPhone 15 Pro 128GB Black!", "apple iphone 15 pro 128gb black"},
		{"Samsung Galaxy S24 Ultra, 256 GB", "samsung galaxy s24 ultra 256gb"},
		{"  MacBook   Air  ", "macbook air"},
		{"Xiaomi 1 TB", "xiaomi 1tb"},
		{`Monitor 27" LED`, "monitor 27inch led"},
		{"Ноутбук Lenovo", "lenovo"}, // не-латиница выбрасывается
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		result := n.Normalize(tt.input)
		if result != tt.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestNormalizer_NormalizeBase(t *testing.T) {
	n := MustNormalizer()

	tests := []struct {
		input    string
		expected string
	}{
		// Объем памяти и цвет не должны различать базовые продукты
		{"Apple iPhone 17 256GB Mist Blue", "apple iphone 17"},
		{"Apple iPhone 17 512GB Lavender", "apple iphone 17"},
		{"Samsung Galaxy S24 Black", "samsung galaxy s24"},
		{"Samsung Galaxy S24 Titanium Gray", "samsung galaxy s24"},
		{"Sony WH-1000XM5", "sony wh 1000xm5"},
		{"", ""},
	}

	for _, tt := range tests {
		result := n.NormalizeBase(tt.input)
		if result != tt.expected {
			t.Errorf("NormalizeBase(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestNormalizer_BaseVariantsCollapse(t *testing.T) {
	n := MustNormalizer()

	// Варианты одного товара должны давать одинаковую базовую форму
	variants := []string{
		"Apple iPhone 16 Pro 128GB Black",
		"Apple iPhone 16 Pro 256GB White",
		"Apple iPhone 16 Pro 1TB Desert Titanium",
	}

	base := n.NormalizeBase(variants[0])
	for _, v := range variants[1:] {
		if got := n.NormalizeBase(v); got != base {
			t.Errorf("NormalizeBase(%q) = %q, want %q", v, got, base)
		}
	}
}

func TestNormalizer_Tokens(t *testing.T) {
	n := MustNormalizer()

	tests := []struct {
		input    string
		expected []string
	}{
		// Стоп-слова (категория, связность) отбрасываются
		{"Samsung Galaxy S24 Smartphone Dual SIM 5G", []string{"samsung", "galaxy", "s24"}},
		{"New Original Apple iPhone 15", []string{"apple", "iphone", "15"}},
		{"", nil},
	}

	for _, tt := range tests {
		result := n.Tokens(tt.input)
		if len(result) == 0 && len(tt.expected) == 0 {
			continue
		}
		if !reflect.DeepEqual(result, tt.expected) {
			t.Errorf("Tokens(%q) = %v, want %v", tt.input, result, tt.expected)
		}
	}
}

func TestNormalizer_BaseDisplayName(t *testing.T) {
	n := MustNormalizer()

	tests := []struct {
		input    string
		expected string
	}{
		// Регистр исходного названия сохраняется
		{"Apple iPhone 17 256GB Mist Blue", "Apple iPhone 17"},
		{"Samsung Galaxy S24 Black", "Samsung Galaxy S24"},
		{"Apple iPhone 15 Pro", "Apple iPhone 15 Pro"},
		{"", ""},
	}

	for _, tt := range tests {
		result := n.BaseDisplayName(tt.input)
		if result != tt.expected {
			t.Errorf("BaseDisplayName(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}
