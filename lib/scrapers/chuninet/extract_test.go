package chuninet

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func parseFixture(t *testing.T, html string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestParseNumber(t *testing.T) {
	testCases := []struct {
		input    string
		expected float64
	}{
		{"1,009,731", 1009731},
		{"SCORE: 997,216pts", 997216},
		{"14.3", 14.3},
		{"RATING 16.52 / 17.00", 16.52},
		{"", 0},
		{"no digits here", 0},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, ParseNumber(test.input), "input: %q", test.input)
	}
}

func TestParseDifficulty(t *testing.T) {
	require.Equal(t, DiffMaster, ParseDifficulty("musiclist_master_title"))
	require.Equal(t, DiffUltima, ParseDifficulty("https://example.net/img/musiclevel_ultima.png"))
	require.Equal(t, DiffBasic, ParseDifficulty("bg_basic"))
	require.Equal(t, DiffUnknown, ParseDifficulty("musiclist_box"))
	require.Equal(t, DiffUnknown, ParseDifficulty(""))
}

const musicListFixture = `
<form>
  <div class="musiclist_box bg_master">
    <input type="hidden" name="idx" value="428">
    <img class="music_jacket" src="https://example.net/jacket/428.jpg">
    <div class="music_title">Garakuta Doll Play</div>
    <div class="music_level">13+</div>
  </div>
  <div class="musiclist_box">
    <input type="hidden" name="idx" value="1085">
    <div class="music_title">World Vanquisher</div>
    <img src="/mobile/images/musiclevel_expert.png">
    <div class="music_level">13</div>
  </div>
  <div class="musiclist_box">
    <div class="music_title">No Id Song</div>
  </div>
</form>
`

func TestExtractMusicEntries(t *testing.T) {
	doc := parseFixture(t, musicListFixture)

	entries := ExtractMusicEntries(doc)
	expected := []MusicEntry{
		{Id: "428", Title: "Garakuta Doll Play", Level: "13+", Difficulty: DiffMaster, JacketUrl: "https://example.net/jacket/428.jpg"},
		{Id: "1085", Title: "World Vanquisher", Level: "13", Difficulty: DiffExpert},
		{Id: "", Title: "No Id Song", Level: "", Difficulty: DiffUnknown},
	}
	diff := cmp.Diff(expected, entries)
	if diff != "" {
		t.Fatal(diff)
	}
}

const playlogFixture = `
<div class="frame02 w400">
  <input type="hidden" name="idx" value="428">
  <div class="play_datalist_date">2024/08/01 21:03</div>
  <div class="play_musicdata_title">Garakuta Doll Play</div>
  <img src="/mobile/images/musiclevel_master.png">
  <div class="play_musicdata_score_text">1,007,416</div>
  <img src="/mobile/images/icon_newrecord.png">
  <div class="play_musicdata_icon">
    <img src="/mobile/images/icon_clear.png">
    <img src="/mobile/images/icon_fullcombo.png">
  </div>
</div>
<div class="frame02 w400">
  <div class="play_musicdata_title">Broken Record</div>
  <div class="play_musicdata_score_text"></div>
</div>
`

func TestExtractPlaylog(t *testing.T) {
	doc := parseFixture(t, playlogFixture)

	records := ExtractPlaylog(doc)
	require.Len(t, records, 2)

	first := records[0]
	require.Equal(t, "428", first.MusicId)
	require.Equal(t, "Garakuta Doll Play", first.Title)
	require.Equal(t, DiffMaster, first.Difficulty)
	require.Equal(t, 1007416, first.Score)
	require.True(t, first.IsNewRecord)
	require.Equal(t, 1, first.ClearLamp)
	require.Equal(t, ComboFullCombo, first.ComboLamp)
	require.Equal(t, ChainNone, first.ChainLamp)
	require.Equal(t, time.Date(2024, 8, 1, 21, 3, 0, 0, time.UTC), first.PlayedAt)

	// missing nodes degrade to defaults rather than dropping the record
	second := records[1]
	require.Equal(t, "", second.MusicId)
	require.Equal(t, "Broken Record", second.Title)
	require.Equal(t, DiffUnknown, second.Difficulty)
	require.Equal(t, 0, second.Score)
	require.False(t, second.IsNewRecord)
	require.True(t, second.PlayedAt.IsZero())
}

const ratingFixture = `
<div class="player_rating_num_block">
  <img src="/mobile/images/rating_gold_01.png">
  <img src="/mobile/images/rating_gold_06.png">
  <img src="/mobile/images/rating_gold_comma.png">
  <img src="/mobile/images/rating_gold_05.png">
  <img src="/mobile/images/rating_gold_02.png">
</div>
`

func TestExtractPlayerRating(t *testing.T) {
	doc := parseFixture(t, ratingFixture)
	require.Equal(t, 16.52, ExtractPlayerRating(doc))
}

func TestExtractPlayerRatingMissing(t *testing.T) {
	doc := parseFixture(t, `<div class="player_data"></div>`)
	require.Equal(t, float64(0), ExtractPlayerRating(doc))
}

const categorySelectFixture = `
<select name="genre">
  <option value="99">ALL</option>
  <option value="0">POPS &amp; ANIME</option>
  <option value="2">niconico</option>
</select>
`

func TestExtractCategoryOptions(t *testing.T) {
	doc := parseFixture(t, categorySelectFixture)

	options := ExtractCategoryOptions(doc, "genre")
	expected := []CategoryOption{
		{Value: "99", Label: "ALL"},
		{Value: "0", Label: "POPS & ANIME"},
		{Value: "2", Label: "niconico"},
	}
	diff := cmp.Diff(expected, options)
	if diff != "" {
		t.Fatal(diff)
	}
	require.Empty(t, ExtractCategoryOptions(doc, "version"))
}
