package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "single value",
			input:    "Mid Cap",
			expected: []string{"Mid Cap"},
		},
		{
			name:     "two values",
			input:    "Smallest Cap, Largest Cap",
			expected: []string{"Smallest Cap", "Largest Cap"},
		},
		{
			name:     "varied spacing",
			input:    "Small Cap,  Mid Cap , Large Cap",
			expected: []string{"Small Cap", "Mid Cap", "Large Cap"},
		},
		{
			name:     "trailing comma",
			input:    "Mid Cap,",
			expected: []string{"Mid Cap"},
		},
		{
			name:     "leading comma",
			input:    ",Large Cap",
			expected: []string{"Large Cap"},
		},
		{
			name:     "only spaces",
			input:    "   ",
			expected: nil,
		},
		{
			name:     "comma only",
			input:    ",",
			expected: nil,
		},
		{
			name:     "multiple commas",
			input:    ",,Mid Cap,,Large Cap,,",
			expected: []string{"Mid Cap", "Large Cap"},
		},
		{
			name:     "internal spaces preserved",
			input:    "Smallest Cap, Small Cap",
			expected: []string{"Smallest Cap", "Small Cap"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseCSV(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseCSV_PreservesInput(t *testing.T) {
	input := "Smallest Cap, Largest Cap"
	originalInput := input

	_ = ParseCSV(input)

	assert.Equal(t, originalInput, input, "input should not be modified")
}
