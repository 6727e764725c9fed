package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_BasicASCII(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"foo bar baz", "foo-bar-baz"},
		{"Simple", "simple"},
		{"ALL UPPER CASE", "all-upper-case"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}

func TestGenerate_AccentedCharacters(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Nezaradené", "nezaradene"},
		{"Pleťová kozmetika", "pletova-kozmetika"},
		{"Vlasová starostlivosť", "vlasova-starostlivost"},
		{"Kadın Giyim", "kadin-giyim"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}

func TestGenerate_WhitespaceHandling(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"leading spaces", "   hello world   ", "hello-world"},
		{"multiple spaces", "hello   world", "hello-world"},
		{"tabs and spaces", "hello\t\tworld", "hello-world"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}

func TestGenerate_EdgeCases(t *testing.T) {
	assert.Equal(t, "", Generate(""))
	assert.Equal(t, "", Generate("   "))
	assert.Equal(t, "a", Generate("a"))
	assert.Equal(t, "123", Generate("123"))
	assert.Equal(t, "a-b", Generate("a---b"))
}

func TestSet(t *testing.T) {
	set := Set([]string{"uncategorized", " Nezaradené ", ""})

	assert.Len(t, set, 2)
	assert.Contains(t, set, "uncategorized")
	assert.Contains(t, set, "nezaradene")
}
