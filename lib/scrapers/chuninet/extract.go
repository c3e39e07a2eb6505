package chuninet

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"chunidata-backend/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
)

// difficulty tags in portal order. -1 means the page did not say.
const (
	DiffUnknown  = -1
	DiffBasic    = 0
	DiffAdvanced = 1
	DiffExpert   = 2
	DiffMaster   = 3
	DiffUltima   = 4
)

// combo lamps
const (
	ComboNone               = 0
	ComboFullCombo          = 1
	ComboAllJustice         = 2
	ComboAllJusticeCritical = 3
)

// chain lamps
const (
	ChainNone     = 0
	ChainGold     = 1
	ChainPlatinum = 2
)

var numberRegex = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)

// ParseNumber pulls the first digit/decimal run out of a string,
// strips grouping separators and parses it as a float. missing or
// empty text parses to 0, never an error.
func ParseNumber(s string) float64 {
	match := numberRegex.FindString(s)
	if match == "" {
		return 0
	}
	match = strings.ReplaceAll(match, ",", "")
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return value
}

var difficultyRegex = regexp.MustCompile(`(?:^|[_\s])(basic|advanced|expert|master|ultima)(?:[_.\s]|$)`)

// parses a difficulty tag out of a class list or an image filename,
// e.g. "musiclist_master_title" or "musiclevel_ultima.png".
func ParseDifficulty(s string) int {
	groups := difficultyRegex.FindStringSubmatch(strings.ToLower(s))
	if len(groups) < 2 {
		return DiffUnknown
	}
	switch groups[1] {
	case "basic":
		return DiffBasic
	case "advanced":
		return DiffAdvanced
	case "expert":
		return DiffExpert
	case "master":
		return DiffMaster
	case "ultima":
		return DiffUltima
	}
	return DiffUnknown
}

var iconRegex = regexp.MustCompile(`icon_([a-z0-9]+)\.png`)

type lamps struct {
	clear int
	combo int
	chain int
}

// folds the icon filenames attached to one play record into lamp tags.
// unknown icons are ignored rather than failing the record.
func parseLampIcons(srcs []string) lamps {
	var out lamps
	for _, src := range srcs {
		groups := iconRegex.FindStringSubmatch(src)
		if len(groups) < 2 {
			continue
		}
		switch groups[1] {
		case "clear":
			out.clear = 1
		case "fullcombo":
			out.combo = ComboFullCombo
		case "alljustice":
			out.combo = ComboAllJustice
		case "alljusticecritical":
			out.combo = ComboAllJusticeCritical
		case "fullchain":
			out.chain = ChainGold
		case "fullchain2":
			out.chain = ChainPlatinum
		}
	}
	return out
}

type MusicEntry struct {
	// opaque identifier from the hidden form input, "" when absent
	Id    string
	Title string
	// display level like "13+", "" when the listing does not show one
	Level string
	// DiffUnknown unless the listing marks entries per-difficulty
	// (the level-browsing pass does, the genre/version passes don't)
	Difficulty int
	// jacket art url, "" when the listing omits the thumbnail
	JacketUrl string
}

// ExtractMusicEntries pulls the repeating per-song rows out of a
// category listing page.
func ExtractMusicEntries(doc *goquery.Document) []MusicEntry {
	var entries []MusicEntry
	doc.Find("form div.musiclist_box").Each(func(_ int, box *goquery.Selection) {
		entry := MusicEntry{
			Id:         box.Find("input[name=idx]").AttrOr("value", ""),
			Difficulty: DiffUnknown,
		}

		title := box.Find("div.music_title")
		if len(title.Nodes) > 0 {
			entry.Title = htmlutil.CleanText(title.Nodes[0])
		}

		level := box.Find("div.play_musicdata_highscore span.musiclist_level, div.music_level")
		if len(level.Nodes) > 0 {
			entry.Level = strings.TrimSpace(level.First().Text())
		}

		entry.JacketUrl = box.Find("img.music_jacket").AttrOr("src", "")

		class := box.AttrOr("class", "")
		entry.Difficulty = ParseDifficulty(class)
		if entry.Difficulty == DiffUnknown {
			box.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
				entry.Difficulty = ParseDifficulty(img.AttrOr("src", ""))
				return entry.Difficulty == DiffUnknown
			})
		}

		entries = append(entries, entry)
	})
	return entries
}

type PlayRecord struct {
	MusicId     string
	Title       string
	Difficulty  int
	Score       int
	IsNewRecord bool
	ClearLamp   int
	ComboLamp   int
	ChainLamp   int
	PlayedAt    time.Time
}

const playlogTimeLayout = "2006/01/02 15:04"

// ExtractPlaylog pulls the play records off a playlog page, newest
// first in document order. malformed records degrade field-by-field
// instead of being dropped.
func ExtractPlaylog(doc *goquery.Document) []PlayRecord {
	var records []PlayRecord
	doc.Find("div.frame02.w400").Each(func(_ int, frame *goquery.Selection) {
		record := PlayRecord{
			MusicId:    frame.Find("input[name=idx]").AttrOr("value", ""),
			Difficulty: DiffUnknown,
		}

		title := frame.Find("div.play_musicdata_title")
		if len(title.Nodes) > 0 {
			record.Title = htmlutil.CleanText(title.Nodes[0])
		}

		record.Score = int(ParseNumber(frame.Find("div.play_musicdata_score_text").Text()))
		record.IsNewRecord = len(frame.Find("img[src*=newrecord]").Nodes) > 0

		frame.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
			record.Difficulty = ParseDifficulty(img.AttrOr("src", ""))
			return record.Difficulty == DiffUnknown
		})

		var icons []string
		frame.Find("div.play_musicdata_icon img").Each(func(_ int, img *goquery.Selection) {
			icons = append(icons, img.AttrOr("src", ""))
		})
		l := parseLampIcons(icons)
		record.ClearLamp = l.clear
		record.ComboLamp = l.combo
		record.ChainLamp = l.chain

		dateText := strings.TrimSpace(frame.Find("div.play_datalist_date").Text())
		playedAt, err := time.Parse(playlogTimeLayout, dateText)
		if err == nil {
			record.PlayedAt = playedAt
		}

		records = append(records, record)
	})
	return records
}

var ratingGlyphRegex = regexp.MustCompile(`rating_[a-z]+_([0-9]{2}|comma)\.png`)

// ExtractPlayerRating reconstructs the player rating from the digit
// glyph images on the home page: each digit is an image whose filename
// carries the glyph code, concatenated in document order with a
// decimal point where the comma glyph sits.
func ExtractPlayerRating(doc *goquery.Document) float64 {
	digits := strings.Builder{}
	doc.Find("div.player_rating_num_block img").Each(func(_ int, img *goquery.Selection) {
		groups := ratingGlyphRegex.FindStringSubmatch(img.AttrOr("src", ""))
		if len(groups) < 2 {
			return
		}
		if groups[1] == "comma" {
			digits.WriteByte('.')
			return
		}
		glyph, err := strconv.Atoi(groups[1])
		if err != nil {
			return
		}
		digits.WriteString(strconv.Itoa(glyph))
	})
	return ParseNumber(digits.String())
}

type CategoryOption struct {
	Value string
	Label string
}

// ExtractCategoryOptions lists the values of the same-page category
// <select> element, used to drive the option-select + form-submit
// navigation flow.
func ExtractCategoryOptions(doc *goquery.Document, selectName string) []CategoryOption {
	var options []CategoryOption
	doc.Find("select[name=" + selectName + "] option").Each(func(_ int, opt *goquery.Selection) {
		value, exists := opt.Attr("value")
		if !exists {
			return
		}
		options = append(options, CategoryOption{
			Value: value,
			Label: strings.TrimSpace(opt.Text()),
		})
	})
	return options
}
