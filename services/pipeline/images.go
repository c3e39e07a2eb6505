package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// fixed concurrency window for jacket downloads. all requests in a
// window run at once and the next window waits for the whole batch.
const downloadWindow = 5

// downloadJackets fetches jacket art into dir. individual failures are
// logged and skipped, a missing thumbnail is not worth aborting a run
// that already survived the scrape.
func downloadJackets(ctx context.Context, refs []jacketRef, dir string) error {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	client := resty.New()
	client.SetTimeout(time.Second * 30)

	for start := 0; start < len(refs); start += downloadWindow {
		end := start + downloadWindow
		if end > len(refs) {
			end = len(refs)
		}

		wg := sync.WaitGroup{}
		for _, ref := range refs[start:end] {
			wg.Add(1)
			go func(ref jacketRef) {
				defer wg.Done()
				downloadJacket(ctx, client, ref, dir)
			}(ref)
		}
		wg.Wait()
	}

	slog.InfoContext(ctx, "jacket downloads complete", "count", len(refs))
	return nil
}

func downloadJacket(ctx context.Context, client *resty.Client, ref jacketRef, dir string) {
	target := filepath.Join(dir, ref.Id+filepath.Ext(ref.JacketUrl))
	if _, err := os.Stat(target); err == nil {
		return
	}

	res, err := client.R().
		SetContext(ctx).
		Get(ref.JacketUrl)
	if err != nil {
		slog.WarnContext(ctx, "jacket download failed", "id", ref.Id, "err", err)
		return
	}
	if res.StatusCode() != 200 {
		slog.WarnContext(ctx, "jacket download failed", "id", ref.Id, "status", res.StatusCode())
		return
	}

	err = os.WriteFile(target, res.Body(), 0644)
	if err != nil {
		slog.WarnContext(ctx, "failed to write jacket", "id", ref.Id, "err", err)
	}
}
