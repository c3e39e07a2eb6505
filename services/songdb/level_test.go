package songdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatLevel(t *testing.T) {
	testCases := []struct {
		constant float64
		expected string
	}{
		{7.0, "7"},
		{7.4, "7"},
		{7.5, "7+"},
		{7.9, "7+"},
		{10.4, "10"},
		{10.5, "10+"},
		{14.3, "14"},
		{0, ""},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, FormatLevel(test.constant), "constant: %v", test.constant)
	}
}

func TestConstantForLevel(t *testing.T) {
	testCases := []struct {
		level    string
		expected float64
		ok       bool
	}{
		{"7", 7.0, true},
		{"7+", 7.5, true},
		{"1", 1.0, true},
		{"10+", 10.5, true},
		{"11", 0, false},
		{"12+", 0, false},
		{"", 0, false},
		{"garbage", 0, false},
	}
	for _, test := range testCases {
		value, ok := ConstantForLevel(test.level)
		require.Equal(t, test.ok, ok, "level: %q", test.level)
		require.Equal(t, test.expected, value, "level: %q", test.level)
	}
}

func TestLevelConstantRoundTrip(t *testing.T) {
	for _, level := range []string{"1", "1+", "5", "5+", "10", "10+"} {
		constant, ok := ConstantForLevel(level)
		require.True(t, ok)
		require.Equal(t, level, FormatLevel(constant))
	}
}
