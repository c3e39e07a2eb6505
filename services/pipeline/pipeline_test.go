package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chunidata-backend/lib/telemetry"
	"chunidata-backend/services/songdb"

	"github.com/stretchr/testify/require"
)

type memStore struct {
	markers map[Stage]Marker
}

func newMemStore() *memStore {
	return &memStore{markers: map[Stage]Marker{}}
}

func (s *memStore) GetMarker(stage Stage) (*Marker, error) {
	marker, ok := s.markers[stage]
	if !ok {
		return nil, nil
	}
	return &marker, nil
}

func (s *memStore) PutMarker(stage Stage, marker Marker) error {
	s.markers[stage] = marker
	return nil
}

func (s *memStore) ClearMarkers() error {
	s.markers = map[Stage]Marker{}
	return nil
}

func testPipeline(t *testing.T, store Store) (*Pipeline, Config) {
	work := t.TempDir()
	cfg := Config{
		WorkDir:    work,
		ResultsDir: filepath.Join(work, "results"),
		PriorPath:  filepath.Join(work, "prior.json"),
	}
	return New(cfg, store, songdb.DeferResolver{}), cfg
}

// fake stage that records itself and produces the artifacts finalize
// expects
func producingStage(t *testing.T, p *Pipeline, stage Stage, ran *[]Stage) func(context.Context) error {
	return func(context.Context) error {
		*ran = append(*ran, stage)
		for _, name := range []string{songdbFile, categoryFile} {
			err := os.WriteFile(p.workPath(name), []byte("[]"), 0644)
			if err != nil {
				return err
			}
		}
		return nil
	}
}

func TestRunResumesAtFailedStage(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.PutMarker(StageScrape, Marker{CompletedAt: time.Now()}))

	p, _ := testPipeline(t, store)

	var ran []Stage
	boom := errors.New("reconcile blew up")
	p.stageFuncs[StageScrape] = func(context.Context) error {
		t.Fatal("stage1 must not re-run when its marker exists")
		return nil
	}
	p.stageFuncs[StageReconcile] = func(context.Context) error {
		ran = append(ran, StageReconcile)
		return boom
	}
	p.stageFuncs[StagePostprocess] = func(context.Context) error {
		t.Fatal("stage3 must not run after stage2 failed")
		return nil
	}

	err := p.Run(context.Background(), StageScrape)
	require.ErrorIs(t, err, boom)
	require.Equal(t, []Stage{StageReconcile}, ran)

	// the failed stage is not marked complete
	marker, err := store.GetMarker(StageReconcile)
	require.NoError(t, err)
	require.Nil(t, marker)
}

func TestRunFullSuccess(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/pipeline")
	defer cleanup()

	store := newMemStore()
	p, cfg := testPipeline(t, store)

	var ran []Stage
	for _, stage := range stages {
		p.stageFuncs[stage] = producingStage(t, p, stage, &ran)
	}

	err := p.Run(context.Background(), StageScrape)
	require.NoError(t, err)
	require.Equal(t, []Stage{StageScrape, StageReconcile, StagePostprocess}, ran)

	// artifacts published to the results dir
	_, err = os.Stat(filepath.Join(cfg.ResultsDir, songdbFile))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.ResultsDir, categoryFile))
	require.NoError(t, err)

	// fresh output rotated into the next run's prior-dataset slot
	_, err = os.Stat(cfg.PriorPath)
	require.NoError(t, err)
	_, err = os.Stat(p.workPath(songdbFile))
	require.True(t, os.IsNotExist(err))

	// run state is transient, markers are gone after success
	for _, stage := range stages {
		marker, err := store.GetMarker(stage)
		require.NoError(t, err)
		require.Nil(t, marker)
	}
}

func TestRunStartStageOverride(t *testing.T) {
	store := newMemStore()
	p, _ := testPipeline(t, store)

	var ran []Stage
	for _, stage := range stages {
		p.stageFuncs[stage] = producingStage(t, p, stage, &ran)
	}

	err := p.Run(context.Background(), StagePostprocess)
	require.NoError(t, err)
	require.Equal(t, []Stage{StagePostprocess}, ran)
}

func TestFsStore(t *testing.T) {
	store, err := NewFsStore(t.TempDir())
	require.NoError(t, err)

	marker, err := store.GetMarker(StageScrape)
	require.NoError(t, err)
	require.Nil(t, marker)

	at := time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.PutMarker(StageScrape, Marker{CompletedAt: at}))

	marker, err = store.GetMarker(StageScrape)
	require.NoError(t, err)
	require.NotNil(t, marker)
	require.True(t, marker.CompletedAt.Equal(at))

	require.NoError(t, store.ClearMarkers())
	marker, err = store.GetMarker(StageScrape)
	require.NoError(t, err)
	require.Nil(t, marker)
}
