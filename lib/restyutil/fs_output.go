package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
)

// FilesystemOutput writes diagnostic payloads (usually the body of the
// last failed page) somewhere an operator can look at after a crashed run.
type FilesystemOutput struct {
	directory string
}

func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(name string, contents []byte) {
	if o.directory == "" {
		return
	}
	err := os.WriteFile(filepath.Join(o.directory, name), contents, 0600)
	if err != nil {
		slog.Warn("failed to write diagnostic file", "name", name, "err", err)
	}
}
