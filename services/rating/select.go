package rating

import (
	"sort"

	"chunidata-backend/services/songdb"
)

const (
	// all-time entries kept in the best frame
	BestFrameSize = 30
	// current-version entries kept in the new frame
	NewFrameSize = 20
)

// Performance is one scored attempt joined against the song database.
type Performance struct {
	SongId     string            `json:"id"`
	Title      string            `json:"title,omitempty"`
	Difficulty songdb.Difficulty `json:"difficulty"`
	Constant   float64           `json:"const"`
	Score      int               `json:"score"`
}

// Entry is a Performance plus its computed rating value.
type Entry struct {
	Performance
	Rating float64 `json:"rating"`
}

// Selection is the derived player rating: the top performances from
// the all-time catalogue and from current-version songs, averaged.
type Selection struct {
	Best   []Entry `json:"best"`
	New    []Entry `json:"new"`
	Rating float64 `json:"rating"`
}

// Select partitions performances into current-version and all other,
// then takes an independent top-K per partition. a performance never
// appears in both frames and a high entry in one frame never bumps
// anything out of the other.
func Select(perfs []Performance, isNewSong func(songId string) bool) Selection {
	var allTime, currentVersion []Entry
	for _, p := range perfs {
		entry := Entry{Performance: p, Rating: Value(p.Constant, p.Score)}
		if isNewSong != nil && isNewSong(p.SongId) {
			currentVersion = append(currentVersion, entry)
		} else {
			allTime = append(allTime, entry)
		}
	}

	out := Selection{
		Best: topBy(allTime, BestFrameSize),
		New:  topBy(currentVersion, NewFrameSize),
	}

	count := len(out.Best) + len(out.New)
	if count == 0 {
		return out
	}

	sum := 0.0
	for _, e := range out.Best {
		sum += e.Rating
	}
	for _, e := range out.New {
		sum += e.Rating
	}
	out.Rating = round2(sum / float64(count))
	return out
}

// topBy sorts descending by rating value and keeps the first k. the
// sort is stable so equal ratings keep capture order.
func topBy(entries []Entry, k int) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Rating > entries[j].Rating
	})
	if len(entries) > k {
		entries = entries[:k]
	}
	return entries
}
