package songdb

import (
	"encoding/json"
	"fmt"
	"os"
)

// MissingInputError marks a required pipeline input file that is not
// there. callers treat this as fatal rather than running on an empty
// dataset, downstream steps assume the file exists.
type MissingInputError struct {
	Path string
}

func (e MissingInputError) Error() string {
	return fmt.Sprintf("required input file '%s' does not exist", e.Path)
}

func writeJSON(path string, value any) error {
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

// SaveSongDatabase writes the finalized song database, an ordered
// array in first-seen skeleton order.
func SaveSongDatabase(path string, songs []SongRecord) error {
	return writeJSON(path, songs)
}

func LoadSongDatabase(path string) ([]SongRecord, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, MissingInputError{Path: path}
	}
	if err != nil {
		return nil, err
	}
	var out []SongRecord
	err = json.Unmarshal(raw, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func SaveCategoryData(path string, category CategoryData) error {
	return writeJSON(path, category)
}

func LoadCategoryData(path string) (CategoryData, error) {
	var out CategoryData
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return out, MissingInputError{Path: path}
	}
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	if err != nil {
		return out, err
	}
	return out, nil
}
