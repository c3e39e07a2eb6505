package textutil

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// NormalizeTitle produces the join key used to match song titles across
// sources that disagree on casing, character width and punctuation.
func NormalizeTitle(title string) string {
	title = width.Fold.String(title)
	title = norm.NFKC.String(title)
	title = strings.ToLower(title)

	out := strings.Builder{}
	for _, c := range title {
		if unicode.IsSpace(c) || unicode.IsPunct(c) || unicode.IsSymbol(c) {
			continue
		}
		out.WriteRune(c)
	}
	return out.String()
}

// ClosestTitle returns the candidate most similar to name under JaroWinkler,
// or "" when nothing clears the threshold.
func ClosestTitle(name string, candidates []string, threshold float64) string {
	var mostSimilar string
	var mostSimilarity float64

	for _, c := range candidates {
		similarity := matchr.JaroWinkler(name, c, false)
		if similarity > mostSimilarity {
			mostSimilarity = similarity
			mostSimilar = c
		}
	}

	if mostSimilarity < threshold {
		return ""
	}
	return mostSimilar
}
