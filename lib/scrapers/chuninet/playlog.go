package chuninet

import (
	"context"
	"log/slog"
)

// FetchPlaylog scrapes the player's recent play records. the portal
// only keeps the last 50 plays so this is a single page.
func (c *Client) FetchPlaylog(ctx context.Context) ([]PlayRecord, error) {
	ctx, span := tracer.Start(ctx, "client:FetchPlaylog")
	defer span.End()

	doc, err := c.GetDocument(ctx, "/mobile/record/playlog/")
	if err != nil {
		return nil, err
	}

	records := ExtractPlaylog(doc)
	slog.InfoContext(ctx, "scraped playlog", "records", len(records))
	return records, nil
}

type PlayerInfo struct {
	Name   string
	Rating float64
}

// FetchPlayerInfo scrapes the name and the glyph-encoded rating off
// the portal home page.
func (c *Client) FetchPlayerInfo(ctx context.Context) (PlayerInfo, error) {
	ctx, span := tracer.Start(ctx, "client:FetchPlayerInfo")
	defer span.End()

	doc, err := c.GetDocument(ctx, "/mobile/home/")
	if err != nil {
		return PlayerInfo{}, err
	}

	info := PlayerInfo{
		Name:   doc.Find("div.player_name_in").Text(),
		Rating: ExtractPlayerRating(doc),
	}
	return info, nil
}
