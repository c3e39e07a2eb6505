package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Stage identifies one of the three pipeline stages.
type Stage int

const (
	StageScrape      Stage = 1
	StageReconcile   Stage = 2
	StagePostprocess Stage = 3
)

func (s Stage) String() string {
	return fmt.Sprintf("stage%d", int(s))
}

var stages = []Stage{StageScrape, StageReconcile, StagePostprocess}

// Marker records that a stage finished. presence is the completion
// flag, the timestamp is informational.
type Marker struct {
	CompletedAt time.Time `json:"completedAt"`
}

// Store persists stage completion markers between invocations so a
// crashed run resumes at the failed stage instead of restarting.
type Store interface {
	GetMarker(stage Stage) (*Marker, error)
	PutMarker(stage Stage, marker Marker) error
	ClearMarkers() error
}

// FsStore keeps one marker file per stage in a directory.
type FsStore struct {
	dir string
}

func NewFsStore(dir string) (FsStore, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return FsStore{}, err
	}
	return FsStore{dir: dir}, nil
}

func (s FsStore) markerPath(stage Stage) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s.complete.json", stage))
}

func (s FsStore) GetMarker(stage Stage) (*Marker, error) {
	raw, err := os.ReadFile(s.markerPath(stage))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var marker Marker
	err = json.Unmarshal(raw, &marker)
	if err != nil {
		return nil, err
	}
	return &marker, nil
}

func (s FsStore) PutMarker(stage Stage, marker Marker) error {
	raw, err := json.MarshalIndent(marker, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.markerPath(stage), raw, 0644)
}

func (s FsStore) ClearMarkers() error {
	for _, stage := range stages {
		err := os.Remove(s.markerPath(stage))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
