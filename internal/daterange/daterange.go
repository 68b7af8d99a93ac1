package daterange

import (
	"fmt"
	"strings"
	"time"
)

// Open is the sentinel used for an open-ended (ongoing) range endpoint.
const Open = "*"

// timestampLayouts are tried in order when parsing a range endpoint
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Interval is an inclusive date range. When Ongoing is true the range has
// no concrete end and End holds whatever concrete value the source carried
// (it renders as Open regardless).
type Interval struct {
	Start   time.Time
	End     time.Time
	Ongoing bool
}

// Parse parses a bracketed range expression of the form
// "[START TO END]" where START is a timestamp and END is either a
// timestamp or the open-ended marker "*".
func Parse(expression string) (Interval, error) {
	expr := strings.TrimSpace(expression)
	if len(expr) < 2 || expr[0] != '[' || expr[len(expr)-1] != ']' {
		return Interval{}, fmt.Errorf("date range %q: expected bracketed [START TO END] form", expression)
	}

	parts := strings.Split(expr[1:len(expr)-1], " TO ")
	if len(parts) != 2 {
		return Interval{}, fmt.Errorf("date range %q: expected exactly two endpoints", expression)
	}

	start, err := parseEndpoint(strings.TrimSpace(parts[0]))
	if err != nil {
		return Interval{}, fmt.Errorf("date range %q: start: %w", expression, err)
	}

	iv := Interval{Start: start}

	endToken := strings.TrimSpace(parts[1])
	if endToken == Open {
		iv.Ongoing = true
		return iv, nil
	}

	end, err := parseEndpoint(endToken)
	if err != nil {
		return Interval{}, fmt.Errorf("date range %q: end: %w", expression, err)
	}
	iv.End = end

	return iv, nil
}

func parseEndpoint(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp %q", value)
}

// endsAfterOrAt reports whether a ends at or after b. An ongoing interval
// sorts after any concrete end; between two ongoing intervals it returns
// true so that later input order wins.
func endsAfterOrAt(a, b Interval) bool {
	if a.Ongoing {
		return true
	}
	if b.Ongoing {
		return false
	}
	return !a.End.Before(b.End)
}

// Fold reduces one interval per resource into the dataset-level interval:
// the earliest start, and the end (with its ongoing flag) of the interval
// ending last. Ties on the end resolve to the later interval in input
// order. The input order is therefore part of the contract.
func Fold(intervals []Interval) (Interval, error) {
	if len(intervals) == 0 {
		return Interval{}, fmt.Errorf("cannot fold empty interval list")
	}

	folded := intervals[0]
	for _, iv := range intervals[1:] {
		if iv.Start.Before(folded.Start) {
			folded.Start = iv.Start
		}
		if endsAfterOrAt(iv, folded) {
			folded.End = iv.End
			folded.Ongoing = iv.Ongoing
		}
	}

	return folded, nil
}

// String renders the interval in the same bracketed form Parse accepts,
// with "*" for an ongoing end.
func (iv Interval) String() string {
	end := Open
	if !iv.Ongoing {
		end = iv.End.Format("2006-01-02T15:04:05")
	}
	return fmt.Sprintf("[%s TO %s]", iv.Start.Format("2006-01-02T15:04:05"), end)
}

// MarshalJSON renders the interval as its bracketed string form.
func (iv Interval) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", iv.String())), nil
}
