package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeTitle(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"ABC!", "abc"},
		{"abc！", "abc"},
		{"Ｔｉｔｌｅ　Ｓｏｎｇ", "titlesong"},
		{"  spaced   out  ", "spacedout"},
		{"No.9 -灼熱-", "no9灼熱"},
		{"", ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, NormalizeTitle(test.input), "input: %q", test.input)
	}
}

func TestNormalizeTitleIdempotent(t *testing.T) {
	inputs := []string{"ABC!", "abc！", "Ｔｉｔｌｅ　Ｓｏｎｇ", "G e n g a o z o"}
	for _, in := range inputs {
		once := NormalizeTitle(in)
		require.Equal(t, once, NormalizeTitle(once))
	}
}

func TestClosestTitle(t *testing.T) {
	candidates := []string{"garakuta doll play", "world vanquisher", "ouroboros"}

	require.Equal(t, "garakuta doll play", ClosestTitle("garakuta dollplay", candidates, 0.9))
	require.Equal(t, "", ClosestTitle("completely unrelated", candidates, 0.9))
	require.Equal(t, "", ClosestTitle("anything", nil, 0.9))
}
