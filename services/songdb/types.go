package songdb

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Difficulty is the ordered chart tier enumeration.
type Difficulty int

const (
	Basic Difficulty = iota
	Advanced
	Expert
	Master
	Ultima
)

// Difficulties in ascending tier order.
var Difficulties = []Difficulty{Basic, Advanced, Expert, Master, Ultima}

var difficultyCodes = map[Difficulty]string{
	Basic:    "BAS",
	Advanced: "ADV",
	Expert:   "EXP",
	Master:   "MAS",
	Ultima:   "ULT",
}

func (d Difficulty) Code() string {
	code, ok := difficultyCodes[d]
	if !ok {
		return "UNK"
	}
	return code
}

func (d Difficulty) String() string {
	switch d {
	case Basic:
		return "BASIC"
	case Advanced:
		return "ADVANCED"
	case Expert:
		return "EXPERT"
	case Master:
		return "MASTER"
	case Ultima:
		return "ULTIMA"
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.Code()), nil
}

func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, ok := DifficultyFromCode(string(text))
	if !ok {
		return fmt.Errorf("unknown difficulty code '%s'", text)
	}
	*d = parsed
	return nil
}

func DifficultyFromCode(code string) (Difficulty, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for d, c := range difficultyCodes {
		if c == code {
			return d, true
		}
	}
	return 0, false
}

// DifficultyFromTag converts a scraper difficulty tag (portal order,
// 0-4) into a Difficulty.
func DifficultyFromTag(tag int) (Difficulty, bool) {
	if tag < int(Basic) || tag > int(Ultima) {
		return 0, false
	}
	return Difficulty(tag), true
}

// deferral marker appended to a constant an operator declined to
// resolve, so the next run asks again
const deferredConstant = "0?"

// ChartConstant is one difficulty's numeric rating and display level.
// Constant == 0 means unresolved; Deferred additionally records that
// an operator was asked and punted.
type ChartConstant struct {
	Level    string
	Constant float64
	Deferred bool
}

func (c ChartConstant) Resolved() bool {
	return c.Constant != 0
}

type chartConstantJSON struct {
	Level    string          `json:"level"`
	Constant json.RawMessage `json:"const"`
}

func (c ChartConstant) MarshalJSON() ([]byte, error) {
	out := chartConstantJSON{Level: c.Level}
	if c.Deferred {
		out.Constant, _ = json.Marshal(deferredConstant)
	} else {
		var err error
		out.Constant, err = json.Marshal(c.Constant)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

func (c *ChartConstant) UnmarshalJSON(data []byte) error {
	var aux chartConstantJSON
	err := json.Unmarshal(data, &aux)
	if err != nil {
		return err
	}

	c.Level = aux.Level
	c.Constant = 0
	c.Deferred = false
	if len(aux.Constant) == 0 {
		return nil
	}

	if aux.Constant[0] == '"' {
		var marked string
		err = json.Unmarshal(aux.Constant, &marked)
		if err != nil {
			return err
		}
		if strings.HasSuffix(marked, "?") {
			c.Deferred = true
			marked = strings.TrimSuffix(marked, "?")
		}
		var value float64
		fmt.Sscanf(marked, "%f", &value)
		c.Constant = value
		return nil
	}

	return json.Unmarshal(aux.Constant, &c.Constant)
}

// sentinel for categorical metadata that has not been filled from the
// category scrape yet
const MetadataUnknown = "N/A"

// SongRecord is one song's cross-difficulty metadata. every difficulty
// the category scrape lists for the song appears as a key in Charts,
// resolved or not.
type SongRecord struct {
	Id      string                       `json:"id"`
	Title   string                       `json:"title"`
	Genre   string                       `json:"genre"`
	Version string                       `json:"version"`
	Charts  map[Difficulty]ChartConstant `json:"charts"`
}
