package chuninet

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
)

// CategoryScrape is everything the live portal currently lists under
// its genre/version/level browsing pages, keyed by category label.
type CategoryScrape struct {
	Genre   map[string][]MusicEntry
	Version map[string][]MusicEntry
	Level   map[string][]MusicEntry
}

type categoryPage struct {
	kind       string
	path       string
	selectName string
}

var categoryPages = []categoryPage{
	{kind: "genre", path: "/mobile/record/musicGenre/", selectName: "genre"},
	{kind: "version", path: "/mobile/record/musicVersion/", selectName: "version"},
	{kind: "level", path: "/mobile/record/musicLevel/", selectName: "level"},
}

// FetchCategories walks the three category browsing pages. the portal
// exposes the category as a same-page <select>, so each category is an
// option-select + form-submit rather than a url.
func (c *Client) FetchCategories(ctx context.Context) (CategoryScrape, error) {
	ctx, span := tracer.Start(ctx, "client:FetchCategories")
	defer span.End()

	out := CategoryScrape{
		Genre:   map[string][]MusicEntry{},
		Version: map[string][]MusicEntry{},
		Level:   map[string][]MusicEntry{},
	}

	for _, page := range categoryPages {
		doc, err := c.GetDocument(ctx, page.path)
		if err != nil {
			return out, err
		}

		options := ExtractCategoryOptions(doc, page.selectName)
		slog.InfoContext(
			ctx, "scraping category listing",
			"kind", page.kind,
			"categories", len(options),
		)

		for _, option := range options {
			entries, err := c.fetchCategoryEntries(ctx, page, option)
			if err != nil {
				return out, err
			}

			switch page.kind {
			case "genre":
				out.Genre[option.Label] = entries
			case "version":
				out.Version[option.Label] = entries
			case "level":
				out.Level[option.Label] = entries
			}
		}
	}

	return out, nil
}

func (c *Client) fetchCategoryEntries(ctx context.Context, page categoryPage, option CategoryOption) ([]MusicEntry, error) {
	doc, err := c.PostForm(ctx, page.path+"send/", map[string]string{
		page.selectName: option.Value,
		"token":         c.pageToken(),
	})
	if err != nil {
		return nil, err
	}

	entries := ExtractMusicEntries(doc)
	slog.DebugContext(
		ctx, "category entries",
		"category", option.Label,
		"count", len(entries),
	)
	return entries, nil
}

// pageToken reads the anti-CSRF token off the last fetched page.
// tokens rotate per navigation so this re-reads rather than caching.
func (c *Client) pageToken() string {
	if len(c.lastBody) == 0 {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(c.lastBody))
	if err != nil {
		return ""
	}
	return doc.Find("input[name=token]").AttrOr("value", "")
}
