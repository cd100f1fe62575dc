package fmtutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestFormatCount tests FormatCount function
// TestFormatCount 测试 FormatCount 函数
func TestFormatCount(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "123,456"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}

	for _, tt := range tests {
		result := FormatCount(tt.input)
		assert.Equal(t, tt.expected, result, "FormatCount(%d) = %s, want %s", tt.input, result, tt.expected)
	}
}

// TestFormatDuration tests FormatDuration function
// TestFormatDuration 测试 FormatDuration 函数
func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{0, "0s"},
		{1234 * time.Microsecond, "1ms"},
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.50s"},
		{90 * time.Second, "1m 30.00s"},
		{time.Hour + 2*time.Minute + 5*time.Second, "1h 2m 5.00s"},
	}

	for _, tt := range tests {
		result := FormatDuration(tt.input)
		assert.Equal(t, tt.expected, result, "FormatDuration(%v) = %s, want %s", tt.input, result, tt.expected)
	}
}

// TestFormatRate tests FormatRate function
// TestFormatRate 测试 FormatRate 函数
func TestFormatRate(t *testing.T) {
	tests := []struct {
		rate     float64
		unit     string
		expected string
	}{
		{0, "lines/s", "0 lines/s"},
		{999.4, "lines/s", "999 lines/s"},
		{1500, "lines/s", "1.50 Klines/s"},
		{2500000, "lines/s", "2.50 Mlines/s"},
	}

	for _, tt := range tests {
		result := FormatRate(tt.rate, tt.unit)
		assert.Equal(t, tt.expected, result, "FormatRate(%v, %s) = %s, want %s", tt.rate, tt.unit, result, tt.expected)
	}
}
