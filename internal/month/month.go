// Package month implements the canonical month-code token used to key
// exposure buckets: a 3-letter month abbreviation plus a 2-digit year,
// e.g. "Mar-24". Codes are parsed once at the boundary; downstream code
// treats a Code as already validated.
package month

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"
)

// codeLayout matches the canonical form via time.Parse/Format.
const codeLayout = "Jan-06"

var (
	// ErrInvalidCode is returned when a month token is not one of the
	// twelve recognized 3-letter abbreviations. Unlike dirty trade data,
	// a bad month code indicates a programming or configuration error,
	// so it fails loudly.
	ErrInvalidCode = errors.New("month: invalid month code")
)

// variantRegex matches the accepted alternate encodings:
// "Mar-24", "Mar 24", and "Mar24".
var variantRegex = regexp.MustCompile(`^([A-Za-z]{3})[-\s]?(\d{2})$`)

// Code is a validated canonical month code such as "Mar-24".
type Code string

// Format derives the month code for a calendar date.
func Format(t time.Time) Code {
	return Code(t.Format(codeLayout))
}

// Parse validates a canonical month code.
func Parse(s string) (Code, error) {
	if _, err := time.Parse(codeLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidCode, s)
	}
	return Code(s), nil
}

// Standardize normalizes alternate encodings ("Mar 24", "Mar24") to the
// hyphenated canonical form. Unrecognized input is returned unchanged
// with a logged warning so one malformed record cannot abort a
// calculation run.
func Standardize(raw string) Code {
	m := variantRegex.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		slog.Warn("unrecognized month code format", "code", raw)
		return Code(raw)
	}

	tok := m[1]
	candidate := strings.ToUpper(tok[:1]) + strings.ToLower(tok[1:]) + "-" + m[2]
	code, err := Parse(candidate)
	if err != nil {
		slog.Warn("unrecognized month token", "code", raw)
		return Code(raw)
	}
	return code
}

// DateRange returns the first and last calendar day of the code's month.
func (c Code) DateRange() (start, end time.Time, err error) {
	t, err := time.Parse(codeLayout, string(c))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidCode, string(c))
	}
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end, nil
}

// String returns the raw token.
func (c Code) String() string { return string(c) }

// CodesBetween returns every month code touched by [start, end],
// inclusive, in chronological order.
func CodesBetween(start, end time.Time) []Code {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil
	}

	var codes []Code
	cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(last) {
		codes = append(codes, Format(cursor))
		cursor = cursor.AddDate(0, 1, 0)
	}
	return codes
}

// DateInRange reports whether d falls inside [start, end], inclusive.
// Time-of-day is ignored; all three arguments are compared at midnight.
func DateInRange(d, start, end time.Time) bool {
	day := truncateToDay(d)
	return !day.Before(truncateToDay(start)) && !day.After(truncateToDay(end))
}

// SortCodes orders codes chronologically in place. Codes that fail to
// parse sort last, preserving their relative order.
func SortCodes(codes []Code) {
	sort.SliceStable(codes, func(i, j int) bool {
		ti, erri := time.Parse(codeLayout, string(codes[i]))
		tj, errj := time.Parse(codeLayout, string(codes[j]))
		if erri != nil || errj != nil {
			return errj != nil && erri == nil
		}
		return ti.Before(tj)
	})
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
