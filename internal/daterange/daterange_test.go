package daterange

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		wantStart   time.Time
		wantEnd     time.Time
		wantOngoing bool
	}{
		{
			name:       "concrete range",
			expression: "[2020-05-29T00:00:00 TO 2021-05-29T00:00:00]",
			wantStart:  date(2020, 5, 29),
			wantEnd:    date(2021, 5, 29),
		},
		{
			name:        "open-ended range",
			expression:  "[2020-05-29T00:00:00 TO *]",
			wantStart:   date(2020, 5, 29),
			wantOngoing: true,
		},
		{
			name:       "date-only endpoints",
			expression: "[2019-10-22 TO 2019-10-23]",
			wantStart:  date(2019, 10, 22),
			wantEnd:    date(2019, 10, 23),
		},
		{
			name:       "surrounding whitespace",
			expression: "  [2020-01-01 TO 2020-01-02]  ",
			wantStart:  date(2020, 1, 1),
			wantEnd:    date(2020, 1, 2),
		},
		{
			name:       "missing brackets",
			expression: "2020-05-29 TO 2021-05-29",
			wantErr:    true,
		},
		{
			name:       "single endpoint",
			expression: "[2020-05-29T00:00:00]",
			wantErr:    true,
		},
		{
			name:       "three endpoints",
			expression: "[2020-01-01 TO 2020-02-01 TO 2020-03-01]",
			wantErr:    true,
		},
		{
			name:       "garbage start",
			expression: "[yesterday TO 2021-05-29T00:00:00]",
			wantErr:    true,
		},
		{
			name:       "garbage end",
			expression: "[2020-05-29T00:00:00 TO soon]",
			wantErr:    true,
		},
		{
			name:       "open start not allowed",
			expression: "[* TO 2021-05-29T00:00:00]",
			wantErr:    true,
		},
		{
			name:       "empty string",
			expression: "",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iv, err := Parse(tt.expression)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.expression, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !iv.Start.Equal(tt.wantStart) {
				t.Errorf("Start = %v, want %v", iv.Start, tt.wantStart)
			}
			if iv.Ongoing != tt.wantOngoing {
				t.Errorf("Ongoing = %v, want %v", iv.Ongoing, tt.wantOngoing)
			}
			if !tt.wantOngoing && !iv.End.Equal(tt.wantEnd) {
				t.Errorf("End = %v, want %v", iv.End, tt.wantEnd)
			}
		})
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		name        string
		intervals   []Interval
		wantErr     bool
		wantStart   time.Time
		wantEnd     time.Time
		wantOngoing bool
	}{
		{
			name:      "empty input",
			intervals: nil,
			wantErr:   true,
		},
		{
			name: "single interval",
			intervals: []Interval{
				{Start: date(2020, 1, 1), End: date(2020, 6, 1)},
			},
			wantStart: date(2020, 1, 1),
			wantEnd:   date(2020, 6, 1),
		},
		{
			name: "min start and max end come from different intervals",
			intervals: []Interval{
				{Start: date(2020, 1, 1), End: date(2020, 3, 1)},
				{Start: date(2019, 6, 1), End: date(2019, 12, 1)},
				{Start: date(2020, 2, 1), End: date(2021, 1, 1)},
			},
			wantStart: date(2019, 6, 1),
			wantEnd:   date(2021, 1, 1),
		},
		{
			name: "ongoing interval dominates later concrete end",
			intervals: []Interval{
				{Start: date(2020, 1, 1), Ongoing: true},
				{Start: date(2020, 1, 1), End: date(2030, 1, 1)},
			},
			wantStart:   date(2020, 1, 1),
			wantOngoing: true,
		},
		{
			name: "equal ends resolve to the later interval",
			intervals: []Interval{
				{Start: date(2020, 1, 1), End: date(2020, 6, 1)},
				{Start: date(2020, 1, 1), End: date(2020, 6, 1), Ongoing: true},
			},
			wantStart:   date(2020, 1, 1),
			wantEnd:     date(2020, 6, 1),
			wantOngoing: true,
		},
		{
			name: "two ongoing intervals keep the later one",
			intervals: []Interval{
				{Start: date(2020, 1, 1), End: date(2020, 2, 1), Ongoing: true},
				{Start: date(2020, 1, 5), End: date(2019, 1, 1), Ongoing: true},
			},
			wantStart:   date(2020, 1, 1),
			wantEnd:     date(2019, 1, 1),
			wantOngoing: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folded, err := Fold(tt.intervals)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Fold() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !folded.Start.Equal(tt.wantStart) {
				t.Errorf("Start = %v, want %v", folded.Start, tt.wantStart)
			}
			if folded.Ongoing != tt.wantOngoing {
				t.Errorf("Ongoing = %v, want %v", folded.Ongoing, tt.wantOngoing)
			}
			if !tt.wantOngoing && !folded.End.Equal(tt.wantEnd) {
				t.Errorf("End = %v, want %v", folded.End, tt.wantEnd)
			}
		})
	}
}

func TestIntervalString(t *testing.T) {
	concrete := Interval{Start: date(2020, 5, 29), End: date(2021, 5, 29)}
	if got, want := concrete.String(), "[2020-05-29T00:00:00 TO 2021-05-29T00:00:00]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	ongoing := Interval{Start: date(2020, 5, 29), End: date(2021, 5, 29), Ongoing: true}
	if got, want := ongoing.String(), "[2020-05-29T00:00:00 TO *]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseFoldRoundTrip(t *testing.T) {
	iv, err := Parse("[2020-05-29T00:00:00 TO *]")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	folded, err := Fold([]Interval{iv})
	if err != nil {
		t.Fatalf("Fold() error = %v", err)
	}
	if got, want := folded.String(), "[2020-05-29T00:00:00 TO *]"; got != want {
		t.Errorf("folded String() = %q, want %q", got, want)
	}
}
