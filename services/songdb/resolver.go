package songdb

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ConstantResolver supplies a constant for a chart every automatic
// source left unresolved. returning resolved == false defers the chart
// to a future run.
type ConstantResolver interface {
	Resolve(title string, difficulty Difficulty, level string) (value float64, resolved bool, err error)
}

// DeferResolver never resolves anything. the default for automated
// runs, where nobody is at the terminal.
type DeferResolver struct{}

func (DeferResolver) Resolve(string, Difficulty, string) (float64, bool, error) {
	return 0, false, nil
}

// PromptResolver asks the operator on the terminal. entering 0 defers
// the chart, anything else is stored and never asked again.
type PromptResolver struct {
	In  io.Reader
	Out io.Writer

	scanner *bufio.Scanner
}

func NewPromptResolver(in io.Reader, out io.Writer) *PromptResolver {
	return &PromptResolver{
		In:      in,
		Out:     out,
		scanner: bufio.NewScanner(in),
	}
}

func (r *PromptResolver) Resolve(title string, difficulty Difficulty, level string) (float64, bool, error) {
	fmt.Fprintf(
		r.Out,
		"constant for '%s' [%s] (level %s), 0 to skip: ",
		title, difficulty, level,
	)

	for r.scanner.Scan() {
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}

		value, err := strconv.ParseFloat(line, 64)
		if err != nil {
			fmt.Fprintf(r.Out, "not a number, try again: ")
			continue
		}
		if value == 0 {
			return 0, false, nil
		}
		return value, true, nil
	}

	if err := r.scanner.Err(); err != nil {
		return 0, false, err
	}
	// input closed, treat like a deferral
	return 0, false, nil
}
