package songdb

import (
	"sort"

	"chunidata-backend/lib/scrapers/chuninet"
)

// CategoryEntry is one song under one category in the persisted
// category map.
type CategoryEntry struct {
	MusicName string `json:"music_name"`
	// difficulty code, only present for the level-browsing pass where
	// entries are per-chart
	Diff string `json:"diff,omitempty"`
}

// CategoryData is the persisted category-data.json artifact: the
// portal's genre/version/level browsing snapshot, keyed
// category name -> entry key (song id) -> entry.
type CategoryData struct {
	Genre   map[string]map[string]CategoryEntry `json:"genre"`
	Version map[string]map[string]CategoryEntry `json:"version"`
	Level   map[string]map[string]CategoryEntry `json:"level"`
}

// the catch-all category the portal lists every song under, skipped so
// categorical metadata comes from the real buckets
const categoryAll = "ALL"

func categoryFromEntries(scraped map[string][]chuninet.MusicEntry, perChart bool) map[string]map[string]CategoryEntry {
	out := map[string]map[string]CategoryEntry{}
	for category, entries := range scraped {
		if category == categoryAll {
			continue
		}
		bucket := map[string]CategoryEntry{}
		for _, e := range entries {
			if e.Id == "" {
				continue
			}
			entry := CategoryEntry{MusicName: e.Title}
			if perChart {
				if d, ok := DifficultyFromTag(e.Difficulty); ok {
					entry.Diff = d.Code()
				}
			}
			key := e.Id
			if perChart && entry.Diff != "" {
				// one song can chart the same level on two tiers
				key = e.Id + ":" + entry.Diff
			}
			bucket[key] = entry
		}
		out[category] = bucket
	}
	return out
}

// CategoryDataFromScrape converts a raw category scrape into the
// persisted artifact form.
func CategoryDataFromScrape(s chuninet.CategoryScrape) CategoryData {
	return CategoryData{
		Genre:   categoryFromEntries(s.Genre, false),
		Version: categoryFromEntries(s.Version, false),
		Level:   categoryFromEntries(s.Level, true),
	}
}

// sortedKeys gives deterministic iteration order over the category
// maps, which fixes the skeleton's first-seen song order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
