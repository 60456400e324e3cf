package prompt

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strings"

	"abcalc/internal/errors"
	"abcalc/internal/validation"
)

const retryMessage = "Sorry, I didn't understand that.\n"

// Prompter asks questions on out and reads one answer per line from in.
// Unparseable answers are reported and the question is asked again until a
// value parses or the input is exhausted.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a Prompter over the given streams.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Check rejects a parsed value; its error message is shown before re-asking.
type Check[T any] func(T) error

// Float asks until the answer parses as a float and passes every check.
func (p *Prompter) Float(question string, checks ...Check[float64]) (float64, error) {
	return ask(p, question, validation.ParseFloat, checks)
}

// Int asks until the answer parses as an integer and passes every check.
func (p *Prompter) Int(question string, checks ...Check[int]) (int, error) {
	return ask(p, question, validation.ParseInt, checks)
}

// Choice asks until the answer is one of choices.
func (p *Prompter) Choice(question string, choices []string) (string, error) {
	for {
		line, err := p.readAnswer(question)
		if err != nil {
			return "", err
		}
		choice, err := validation.ParseChoice(line, choices)
		if err == nil {
			return choice, nil
		}
		fmt.Fprintf(p.out, "Sorry, I didn't understand that. Please enter %s\n\n", orList(choices))
	}
}

func ask[T any](p *Prompter, question string, parse func(string) (T, error), checks []Check[T]) (T, error) {
	var zero T
	for {
		line, err := p.readAnswer(question)
		if err != nil {
			return zero, err
		}
		v, err := parse(line)
		if err != nil {
			fmt.Fprint(p.out, retryMessage+"\n")
			continue
		}
		if err := runChecks(v, checks); err != nil {
			fmt.Fprintf(p.out, "Sorry, %v\n\n", err)
			continue
		}
		return v, nil
	}
}

func runChecks[T any](v T, checks []Check[T]) error {
	for _, check := range checks {
		if err := check(v); err != nil {
			return err
		}
	}
	return nil
}

func (p *Prompter) readAnswer(question string) (string, error) {
	fmt.Fprintln(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil {
		// A final answer without a trailing newline still counts.
		if err == io.EOF && strings.TrimSpace(line) != "" {
			return line, nil
		}
		return "", errors.InputClosed(err)
	}
	return line, nil
}

func orList(choices []string) string {
	switch len(choices) {
	case 0:
		return ""
	case 1:
		return choices[0]
	default:
		return strings.Join(choices[:len(choices)-1], ", ") + " or " + choices[len(choices)-1]
	}
}

// Between accepts values in the open interval (lo, hi).
func Between(name string, lo, hi float64) Check[float64] {
	return func(v float64) error {
		if !(v > lo && v < hi) {
			return fmt.Errorf("%s must be between %g and %g", name, lo, hi)
		}
		return nil
	}
}

// Within accepts values in the closed interval [lo, hi].
func Within(name string, lo, hi float64) Check[float64] {
	return func(v float64) error {
		if !(v >= lo && v <= hi) {
			return fmt.Errorf("%s must be from %g to %g", name, lo, hi)
		}
		return nil
	}
}

// Positive accepts finite values greater than zero.
func Positive[T int | float64](name string) Check[T] {
	return func(v T) error {
		if !(v > 0) {
			return fmt.Errorf("%s must be greater than 0", name)
		}
		if math.IsInf(float64(v), 0) {
			return fmt.Errorf("%s must be a finite number", name)
		}
		return nil
	}
}

// NonNegative accepts zero and above.
func NonNegative[T int | float64](name string) Check[T] {
	return func(v T) error {
		if v < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
		return nil
	}
}

// NonZero accepts finite values other than zero.
func NonZero(name string) Check[float64] {
	return func(v float64) error {
		if v == 0 {
			return fmt.Errorf("%s must not be 0", name)
		}
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return fmt.Errorf("%s must be a finite number", name)
		}
		return nil
	}
}

// AtMost rejects values above limit.
func AtMost(name string, limit int) Check[int] {
	return func(v int) error {
		if v > limit {
			return fmt.Errorf("%s must not exceed %d", name, limit)
		}
		return nil
	}
}
