package songdb

import (
	"encoding/json"
	"os"

	"chunidata-backend/lib/textutil"
)

// SheetConstant is one spreadsheet row cell pair: the community sheet
// tracks a chart's constant for the previous and current game version.
type SheetConstant struct {
	OldVersion *float64 `json:"oldVersion"`
	NewVersion *float64 `json:"newVersion"`
}

// value prefers the current-version column when the sheet has it.
func (s SheetConstant) value() (float64, bool) {
	if s.NewVersion != nil {
		return *s.NewVersion, true
	}
	if s.OldVersion != nil {
		return *s.OldVersion, true
	}
	return 0, false
}

// SheetData is the sheetData.json artifact:
// title -> difficulty code -> constants.
type SheetData map[string]map[string]SheetConstant

func LoadSheetData(path string) (SheetData, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, MissingInputError{Path: path}
	}
	if err != nil {
		return nil, err
	}
	var out SheetData
	err = json.Unmarshal(raw, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

const sheetFuzzyThreshold = 0.95

// index of the sheet by normalized title, with a JaroWinkler fallback
// for titles the normalization alone cannot reconcile.
type sheetIndex struct {
	byNormalized map[string]map[string]SheetConstant
	normalized   []string
}

func newSheetIndex(sheet SheetData) sheetIndex {
	idx := sheetIndex{
		byNormalized: map[string]map[string]SheetConstant{},
	}
	for title, charts := range sheet {
		key := textutil.NormalizeTitle(title)
		idx.byNormalized[key] = charts
		idx.normalized = append(idx.normalized, key)
	}
	return idx
}

func (idx sheetIndex) lookup(title string, difficulty Difficulty) (float64, bool) {
	key := textutil.NormalizeTitle(title)
	charts, ok := idx.byNormalized[key]
	if !ok {
		closest := textutil.ClosestTitle(key, idx.normalized, sheetFuzzyThreshold)
		if closest == "" {
			return 0, false
		}
		charts = idx.byNormalized[closest]
	}

	cell, ok := charts[difficulty.Code()]
	if !ok {
		return 0, false
	}
	return cell.value()
}
