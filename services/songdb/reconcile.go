package songdb

import (
	"context"
	"log/slog"
)

// Reconcile merges the four constant sources into one canonical song
// database. precedence, lowest to highest: level-derived defaults,
// prior finalized dataset, spreadsheet export, operator input. the
// category scrape decides which songs exist at all: anything the live
// portal no longer lists is dropped even if older sources still carry
// it.
func Reconcile(
	ctx context.Context,
	category CategoryData,
	sheet SheetData,
	prior []SongRecord,
	resolver ConstantResolver,
) ([]SongRecord, error) {
	songs, index := buildSkeleton(ctx, category)

	overlayPrior(songs, index, prior)

	sheetIdx := newSheetIndex(sheet)
	overlaySheet(ctx, songs, sheetIdx)

	fillLevels(category, songs, index)
	deriveConstants(songs)
	reformatLevels(songs)

	// the sheet overlay runs a second time on purpose: it guarantees
	// spreadsheet precedence survives the derivation passes above.
	// intentional source behavior, do not collapse into one pass.
	overlaySheet(ctx, songs, sheetIdx)

	err := resolveRemaining(ctx, songs, resolver)
	if err != nil {
		return nil, err
	}

	return songs, nil
}

// buildSkeleton constructs the output song set from the category
// scrape: genre buckets define the songs, version buckets fill
// version, level buckets define which difficulties chart. returns the
// records in first-seen order plus an id index into the slice.
func buildSkeleton(ctx context.Context, category CategoryData) ([]SongRecord, map[string]int) {
	var songs []SongRecord
	index := map[string]int{}

	ensure := func(id, title string) int {
		at, ok := index[id]
		if ok {
			return at
		}
		songs = append(songs, SongRecord{
			Id:      id,
			Title:   title,
			Genre:   MetadataUnknown,
			Version: MetadataUnknown,
			Charts:  map[Difficulty]ChartConstant{},
		})
		index[id] = len(songs) - 1
		return len(songs) - 1
	}

	for _, genre := range sortedKeys(category.Genre) {
		entries := category.Genre[genre]
		for _, id := range sortedKeys(entries) {
			at := ensure(id, entries[id].MusicName)
			songs[at].Genre = genre
		}
	}
	for _, version := range sortedKeys(category.Version) {
		entries := category.Version[version]
		for _, id := range sortedKeys(entries) {
			at := ensure(id, entries[id].MusicName)
			songs[at].Version = version
		}
	}
	for _, level := range sortedKeys(category.Level) {
		entries := category.Level[level]
		for _, key := range sortedKeys(entries) {
			entry := entries[key]
			id, difficulty, ok := splitLevelKey(key, entry)
			if !ok {
				continue
			}
			at := ensure(id, entry.MusicName)
			// seed every scraped difficulty as an unresolved chart
			if _, exists := songs[at].Charts[difficulty]; !exists {
				songs[at].Charts[difficulty] = ChartConstant{}
			}
		}
	}

	slog.InfoContext(ctx, "built song skeleton", "songs", len(songs))
	return songs, index
}

func splitLevelKey(key string, entry CategoryEntry) (string, Difficulty, bool) {
	difficulty, ok := DifficultyFromCode(entry.Diff)
	if !ok {
		return "", 0, false
	}
	id := key
	if n := len(entry.Diff); len(key) > n+1 && key[len(key)-n-1] == ':' {
		id = key[:len(key)-n-1]
	}
	return id, difficulty, true
}

// overlayPrior recovers previously-finalized constants across runs by
// exact raw title match.
func overlayPrior(songs []SongRecord, index map[string]int, prior []SongRecord) {
	byTitle := map[string]SongRecord{}
	for _, p := range prior {
		byTitle[p.Title] = p
	}

	for i := range songs {
		p, ok := byTitle[songs[i].Title]
		if !ok {
			continue
		}
		for difficulty, chart := range songs[i].Charts {
			priorChart, ok := p.Charts[difficulty]
			if !ok || !priorChart.Resolved() {
				continue
			}
			chart.Constant = priorChart.Constant
			chart.Deferred = false
			songs[i].Charts[difficulty] = chart
		}
	}
}

// overlaySheet applies the community spreadsheet on top of whatever is
// there, it is the most current external source of truth.
func overlaySheet(ctx context.Context, songs []SongRecord, idx sheetIndex) {
	applied := 0
	for i := range songs {
		for difficulty, chart := range songs[i].Charts {
			value, ok := idx.lookup(songs[i].Title, difficulty)
			if !ok {
				continue
			}
			chart.Constant = value
			chart.Deferred = false
			songs[i].Charts[difficulty] = chart
			applied++
		}
	}
	slog.DebugContext(ctx, "applied sheet overlay", "charts", applied)
}

// fillLevels copies display levels off the level-browsing pass for any
// chart that still has none.
func fillLevels(category CategoryData, songs []SongRecord, index map[string]int) {
	for _, level := range sortedKeys(category.Level) {
		entries := category.Level[level]
		for _, key := range sortedKeys(entries) {
			entry := entries[key]
			id, difficulty, ok := splitLevelKey(key, entry)
			if !ok {
				continue
			}
			at, ok := index[id]
			if !ok {
				continue
			}
			chart, ok := songs[at].Charts[difficulty]
			if !ok || chart.Level != "" {
				continue
			}
			chart.Level = level
			songs[at].Charts[difficulty] = chart
		}
	}
}

// deriveConstants fills constants from display levels where that is
// safe (levels 1-10).
func deriveConstants(songs []SongRecord) {
	for i := range songs {
		for difficulty, chart := range songs[i].Charts {
			if chart.Resolved() || chart.Level == "" {
				continue
			}
			value, ok := ConstantForLevel(chart.Level)
			if !ok {
				continue
			}
			chart.Constant = value
			songs[i].Charts[difficulty] = chart
		}
	}
}

// reformatLevels recomputes every resolved chart's display level from
// its constant so the two stay consistent regardless of which source
// the constant came from.
func reformatLevels(songs []SongRecord) {
	for i := range songs {
		for difficulty, chart := range songs[i].Charts {
			if !chart.Resolved() {
				continue
			}
			chart.Level = FormatLevel(chart.Constant)
			songs[i].Charts[difficulty] = chart
		}
	}
}

// resolveRemaining hands every still-unresolved chart to the operator
// resolver. a deferral is recorded so the next run asks again.
func resolveRemaining(ctx context.Context, songs []SongRecord, resolver ConstantResolver) error {
	for i := range songs {
		for _, difficulty := range Difficulties {
			chart, ok := songs[i].Charts[difficulty]
			if !ok || chart.Resolved() {
				continue
			}

			value, resolved, err := resolver.Resolve(songs[i].Title, difficulty, chart.Level)
			if err != nil {
				return err
			}
			if !resolved {
				chart.Deferred = true
				songs[i].Charts[difficulty] = chart
				slog.DebugContext(
					ctx, "constant deferred",
					"title", songs[i].Title,
					"difficulty", difficulty.Code(),
				)
				continue
			}

			chart.Constant = value
			chart.Deferred = false
			chart.Level = FormatLevel(value)
			songs[i].Charts[difficulty] = chart
		}
	}
	return nil
}
