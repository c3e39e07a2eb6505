package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"chunidata-backend/lib/scrapers/chuninet"
	"chunidata-backend/services/songdb"
)

// jacketRef is the intermediate music-data.json row stage 1 leaves for
// stage 3's image download pass.
type jacketRef struct {
	Id        string `json:"id"`
	Title     string `json:"title"`
	JacketUrl string `json:"jacket_url"`
}

// runScrape is stage 1: log into the portal and walk every category
// listing. slow and rate-limited, which is the whole reason the marker
// scheme exists.
func (p *Pipeline) runScrape(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "pipeline:runScrape")
	defer span.End()

	client, err := chuninet.NewClient(ctx, chuninet.ClientOptions{
		BaseUrl:  p.cfg.BaseUrl,
		SegaId:   p.cfg.SegaId,
		Password: p.cfg.Password,
		DelayMin: time.Duration(p.cfg.DelayMinMs) * time.Millisecond,
		DelayMax: time.Duration(p.cfg.DelayMaxMs) * time.Millisecond,
		DumpDir:  p.cfg.DumpDir,
	})
	if err != nil {
		return err
	}

	err = client.Login(ctx)
	if err != nil {
		return err
	}

	scrape, err := client.FetchCategories(ctx)
	if err != nil {
		// checkpoint whatever was fetched before the failure so the
		// operator can inspect it, then let the orchestrator abort
		saveErr := songdb.SaveCategoryData(
			p.workPath(categoryFile),
			songdb.CategoryDataFromScrape(scrape),
		)
		if saveErr != nil {
			slog.WarnContext(ctx, "failed to checkpoint partial scrape", "err", saveErr)
		}
		return err
	}

	err = songdb.SaveCategoryData(p.workPath(categoryFile), songdb.CategoryDataFromScrape(scrape))
	if err != nil {
		return err
	}
	return writeJacketRefs(p.workPath(musicFile), scrape)
}

func writeJacketRefs(path string, scrape chuninet.CategoryScrape) error {
	seen := map[string]bool{}
	var refs []jacketRef

	collect := func(entries map[string][]chuninet.MusicEntry) {
		for _, list := range entries {
			for _, e := range list {
				if e.Id == "" || e.JacketUrl == "" || seen[e.Id] {
					continue
				}
				seen[e.Id] = true
				refs = append(refs, jacketRef{
					Id:        e.Id,
					Title:     e.Title,
					JacketUrl: e.JacketUrl,
				})
			}
		}
	}
	collect(scrape.Genre)
	collect(scrape.Version)
	collect(scrape.Level)

	raw, err := json.MarshalIndent(refs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

// runReconcile is stage 2: merge the category scrape with the prior
// finalized dataset, the spreadsheet export and operator input into
// the canonical song database.
func (p *Pipeline) runReconcile(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "pipeline:runReconcile")
	defer span.End()

	category, err := songdb.LoadCategoryData(p.workPath(categoryFile))
	if err != nil {
		return err
	}
	prior, err := songdb.LoadSongDatabase(p.cfg.PriorPath)
	if err != nil {
		return err
	}
	sheet, err := songdb.LoadSheetData(p.cfg.SheetPath)
	if err != nil {
		return err
	}

	songs, err := songdb.Reconcile(ctx, category, sheet, prior, p.resolver)
	if err != nil {
		return err
	}

	return songdb.SaveSongDatabase(p.workPath(songdbFile), songs)
}

// runPostprocess is stage 3: pull down jacket art. requests here share
// no session state and ordering does not matter, so they run in small
// concurrent windows instead of the paced single file the scrape uses.
func (p *Pipeline) runPostprocess(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "pipeline:runPostprocess")
	defer span.End()

	raw, err := os.ReadFile(p.workPath(musicFile))
	if os.IsNotExist(err) {
		slog.WarnContext(ctx, "no music data to postprocess, skipping jacket downloads")
		return nil
	}
	if err != nil {
		return err
	}
	var refs []jacketRef
	err = json.Unmarshal(raw, &refs)
	if err != nil {
		return err
	}

	return downloadJackets(ctx, refs, p.workPath("jackets"))
}
