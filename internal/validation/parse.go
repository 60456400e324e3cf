package validation

import (
	"strconv"
	"strings"

	"abcalc/internal/errors"
)

// ParseFloat parses a user-typed decimal such as "0.05" or " 1e-3 ".
func ParseFloat(input string) (float64, error) {
	s := strings.TrimSpace(input)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.ParseError(s, err)
	}
	return v, nil
}

// ParseInt parses a user-typed base-10 integer.
func ParseInt(input string) (int, error) {
	s := strings.TrimSpace(input)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.ParseError(s, err)
	}
	return v, nil
}

// ParseChoice returns the trimmed input if it is one of choices.
func ParseChoice(input string, choices []string) (string, error) {
	s := strings.TrimSpace(input)
	for _, c := range choices {
		if s == c {
			return s, nil
		}
	}
	return "", errors.New(errors.CodeParseError, "expected one of "+strings.Join(choices, ", ")+", got "+strconv.Quote(s))
}
