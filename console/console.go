// Package console reads one patient record at a time from an interactive
// prompt.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"vitalsfirst/triage"
)

var ErrInput = errors.New("input error")

type kind int

const (
	kindInt kind = iota
	kindFloat
	kindGender
)

type field struct {
	name   string
	prompt string
	kind   kind
}

var fields = []field{
	{triage.FieldAge, "Age", kindInt},
	{triage.FieldGender, "Gender (M/F)", kindGender},
	{triage.FieldBodyTemperature, "Body Temperature (°F)", kindFloat},
	{triage.FieldHeartRate, "Heart Rate (bpm)", kindInt},
	{triage.FieldRespiratoryRate, "Respiratory Rate", kindInt},
	{triage.FieldBloodPressureSystolic, "Systolic BP", kindInt},
	{triage.FieldBloodPressureDiastolic, "Diastolic BP", kindInt},
	{triage.FieldOxygenSaturation, "Oxygen Saturation (%)", kindInt},
	{triage.FieldSymptomScore, "Symptom Score (0-10)", kindInt},
}

type Prompter struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewPrompter prints prompts to out only when in is a terminal.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	interactive := false
	if file, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(file.Fd()))
	}
	return &Prompter{in: bufio.NewReader(in), out: out, interactive: interactive}
}

// SetInteractive overrides terminal detection.
func (p *Prompter) SetInteractive(interactive bool) {
	p.interactive = interactive
}

func (p *Prompter) Interactive() bool {
	return p.interactive
}

// ReadRecord prompts for every field in order. It returns io.EOF when the
// input ends before the first answer and ErrInput for an unparsable answer.
// Piped input carries one line per field, so after a bad answer the rest of
// that record is consumed and the next call starts on a record boundary.
// An interactive session stops prompting at the bad answer instead.
func (p *Prompter) ReadRecord() (triage.RawRecord, error) {
	record := make(triage.RawRecord, len(fields))
	for i, f := range fields {
		if p.interactive {
			fmt.Fprintf(p.out, "%s: ", f.prompt)
		}
		line, err := p.in.ReadString('\n')
		if errors.Is(err, io.EOF) && line == "" {
			if i == 0 {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("%w: input ended before %s", ErrInput, f.name)
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		value, err := parse(f, strings.TrimSpace(line))
		if err != nil {
			if !p.interactive {
				p.skip(len(fields) - i - 1)
			}
			return nil, err
		}
		record[f.name] = value
	}
	return record, nil
}

func parse(f field, answer string) (any, error) {
	switch f.kind {
	case kindGender:
		return triage.NormalizeGender(answer), nil
	case kindInt:
		value, err := strconv.Atoi(answer)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer, got %q", ErrInput, f.name, answer)
		}
		return value, nil
	default:
		value, err := strconv.ParseFloat(answer, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a number, got %q", ErrInput, f.name, answer)
		}
		return value, nil
	}
}

// skip discards up to n lines, stopping early at the end of input.
func (p *Prompter) skip(n int) {
	for ; n > 0; n-- {
		if _, err := p.in.ReadString('\n'); err != nil {
			return
		}
	}
}
