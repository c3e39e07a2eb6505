package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"chunidata-backend/services/songdb"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("services/pipeline")

// Config is the explicit pipeline configuration, passed in rather than
// read from ambient globals.
type Config struct {
	BaseUrl  string `json:"base_url"`
	SegaId   string `json:"sega_id"`
	Password string `json:"password"`
	// inter-request pacing window in milliseconds
	DelayMinMs int `json:"delay_min_ms"`
	DelayMaxMs int `json:"delay_max_ms"`

	// scratch directory for intermediate artifacts and stage markers
	WorkDir string `json:"work_dir"`
	// where finalized artifacts get copied on full success
	ResultsDir string `json:"results_dir"`
	// community spreadsheet export, required by stage 2
	SheetPath string `json:"sheet_path"`
	// previous run's finalized song database, required by stage 2.
	// the pipeline rotates its own output here on success.
	PriorPath string `json:"prior_path"`
	// where fatal-failure page dumps go, empty disables them
	DumpDir string `json:"dump_dir"`
}

const (
	categoryFile = "category-data.json"
	musicFile    = "music-data.json"
	songdbFile   = "chunithm-music-updated.json"
)

type Pipeline struct {
	cfg      Config
	store    Store
	resolver songdb.ConstantResolver

	stageFuncs map[Stage]func(context.Context) error
}

func New(cfg Config, store Store, resolver songdb.ConstantResolver) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		store:    store,
		resolver: resolver,
	}
	p.stageFuncs = map[Stage]func(context.Context) error{
		StageScrape:      p.runScrape,
		StageReconcile:   p.runReconcile,
		StagePostprocess: p.runPostprocess,
	}
	return p
}

func (p *Pipeline) workPath(name string) string {
	return filepath.Join(p.cfg.WorkDir, name)
}

// Run drives the stages in order from `start`, skipping any stage
// whose completion marker exists. a stage failure aborts the run
// without marking, so the next invocation resumes right there.
func (p *Pipeline) Run(ctx context.Context, start Stage) error {
	ctx, span := tracer.Start(ctx, "pipeline:Run")
	defer span.End()

	if start < StageScrape || start > StagePostprocess {
		start = StageScrape
	}

	for stage := start; stage <= StagePostprocess; stage++ {
		marker, err := p.store.GetMarker(stage)
		if err != nil {
			return err
		}
		if marker != nil {
			slog.InfoContext(
				ctx, "stage already complete, skipping",
				"stage", stage,
				"completed_at", marker.CompletedAt,
			)
			continue
		}

		slog.InfoContext(ctx, "running stage", "stage", stage)
		err = p.stageFuncs[stage](ctx)
		if err != nil {
			slog.ErrorContext(ctx, "stage failed", "stage", stage, "err", err)
			slog.InfoContext(ctx, "fix the error and rerun, the next invocation resumes at this stage automatically")
			return fmt.Errorf("%s: %w", stage, err)
		}

		err = p.store.PutMarker(stage, Marker{CompletedAt: time.Now()})
		if err != nil {
			return err
		}
	}

	return p.finalize(ctx)
}

// finalize publishes the finalized artifacts, clears the run state and
// rotates the fresh song database into the next run's prior-dataset
// slot. the rotation is the only history kept, one generation deep.
func (p *Pipeline) finalize(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "pipeline:finalize")
	defer span.End()

	err := os.MkdirAll(p.cfg.ResultsDir, 0755)
	if err != nil {
		return err
	}
	for _, name := range []string{songdbFile, categoryFile} {
		err = copyFile(p.workPath(name), filepath.Join(p.cfg.ResultsDir, name))
		if err != nil {
			return err
		}
	}

	err = p.store.ClearMarkers()
	if err != nil {
		return err
	}
	err = os.Remove(p.workPath(musicFile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	err = os.Remove(p.workPath(categoryFile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	err = os.Rename(p.workPath(songdbFile), p.cfg.PriorPath)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "pipeline finished", "results", p.cfg.ResultsDir)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	if err != nil {
		return err
	}
	return out.Close()
}
