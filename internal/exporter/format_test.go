package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{
			name:     "zero value",
			input:    0.0,
			expected: "0.00",
		},
		{
			name:     "whole number keeps two decimals",
			input:    100.0,
			expected: "100.00",
		},
		{
			name:     "single decimal padded",
			input:    13.4,
			expected: "13.40",
		},
		{
			name:     "rounded down",
			input:    33.333333,
			expected: "33.33",
		},
		{
			name:     "rounded up",
			input:    66.666666,
			expected: "66.67",
		},
		{
			name:     "negative value",
			input:    -5.5,
			expected: "-5.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatFloat(tt.input)
			assert.Equal(t, tt.expected, result, "formatFloat(%f) = %s, want %s", tt.input, result, tt.expected)
		})
	}
}

func TestFormatInt(t *testing.T) {
	tests := []struct {
		name     string
		input    int
		expected string
	}{
		{
			name:     "zero value",
			input:    0,
			expected: "0",
		},
		{
			name:     "positive value",
			input:    42,
			expected: "42",
		},
		{
			name:     "negative value",
			input:    -7,
			expected: "-7",
		},
		{
			name:     "typical row count",
			input:    100000,
			expected: "100000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatInt(tt.input)
			assert.Equal(t, tt.expected, result, "formatInt(%d) = %s, want %s", tt.input, result, tt.expected)
		})
	}
}
