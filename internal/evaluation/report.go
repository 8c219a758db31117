package evaluation

import (
	"encoding/json"
	"fmt"
	"io"
)

// Header is the first line of the console report.
const Header = "Problem Number/Num. Carts within Capacity/Num. Carts Overcapacity"

// Reporter receives the outcome of a run, one result per problem.
type Reporter interface {
	Begin() error
	Report(Result) error
	Diagnostics(message string) error
	End(Summary) error
}

// TextReporter writes the human-readable console report.
type TextReporter struct {
	w io.Writer
}

// NewTextReporter creates a TextReporter writing to w.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

func (r *TextReporter) Begin() error {
	_, err := fmt.Fprintln(r.w, Header)
	return err
}

func (r *TextReporter) Report(res Result) error {
	_, err := fmt.Fprintln(r.w, res.Line())
	return err
}

func (r *TextReporter) Diagnostics(message string) error {
	_, err := fmt.Fprint(r.w, "\n", message)
	return err
}

func (r *TextReporter) End(Summary) error {
	return nil
}

// JSONReporter writes one JSON object per line, for machine consumption.
type JSONReporter struct {
	enc *json.Encoder
}

// NewJSONReporter creates a JSONReporter writing to w.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{enc: json.NewEncoder(w)}
}

func (r *JSONReporter) Begin() error {
	return nil
}

func (r *JSONReporter) Report(res Result) error {
	return r.enc.Encode(res)
}

func (r *JSONReporter) Diagnostics(message string) error {
	return r.enc.Encode(struct {
		Diagnostics string `json:"diagnostics"`
	}{message})
}

func (r *JSONReporter) End(s Summary) error {
	return r.enc.Encode(struct {
		Summary Summary `json:"summary"`
	}{s})
}

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// NewReporter returns the reporter for format, writing to w.
func NewReporter(format string, w io.Writer) (Reporter, error) {
	switch format {
	case "", FormatText:
		return NewTextReporter(w), nil
	case FormatJSON:
		return NewJSONReporter(w), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}
