package utils

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"int", 3, 3},
		{"float", 2.9, 2},
		{"string", " 4 ", 4},
		{"json number", json.Number("7"), 7},
		{"json float", json.Number("7.5"), 7},
		{"bytes", []byte("12"), 12},
		{"garbage", "abc", 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToInt(tt.in))
		})
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "abc", ToString("abc"))
	assert.Equal(t, "abc", ToString([]byte("abc")))
	assert.Equal(t, "42", ToString(42))
}

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"float", 49.99, "49.99"},
		{"string", "72.45", "72.45"},
		{"json number", json.Number("15.00"), "15"},
		{"int", 5000, "5000"},
		{"decimal", decimal.RequireFromString("1.5"), "1.5"},
		{"bad string", "n/a", "0"},
		{"nil", nil, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDecimal(tt.in)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}
