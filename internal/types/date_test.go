package types

import (
	"testing"
	"time"
)

func TestNextOccurrenceDate_Monthly(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		period  int
		n       int
		want    time.Time
		wantErr bool
	}{
		{
			name:   "first day of month",
			start:  time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
			period: 1,
			n:      2,
			want:   time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "occurrence zero is the starting date",
			start:  time.Date(2021, time.January, 31, 0, 0, 0, 0, time.UTC),
			period: 1,
			n:      0,
			want:   time.Date(2021, time.January, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "clamps to end of February",
			start:  time.Date(2021, time.January, 31, 0, 0, 0, 0, time.UTC),
			period: 1,
			n:      1,
			want:   time.Date(2021, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "clamps to leap day",
			start:  time.Date(2020, time.January, 31, 0, 0, 0, 0, time.UTC),
			period: 1,
			n:      1,
			want:   time.Date(2020, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "clamping does not accumulate past February",
			start:  time.Date(2021, time.January, 31, 0, 0, 0, 0, time.UTC),
			period: 1,
			n:      2,
			want:   time.Date(2021, time.March, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "multi month period crosses year boundary",
			start:  time.Date(2021, time.November, 15, 0, 0, 0, 0, time.UTC),
			period: 2,
			n:      2,
			want:   time.Date(2022, time.March, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "zero period is invalid",
			start:   time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
			period:  0,
			n:       1,
			wantErr: true,
		},
		{
			name:    "negative occurrence is invalid",
			start:   time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC),
			period:  1,
			n:       -1,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrenceDate(tt.start, tt.period, PeriodTypeMonth, tt.n)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NextOccurrenceDate() expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Errorf("NextOccurrenceDate() unexpected error: %v", err)
				return
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrenceDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextOccurrenceDate_OtherPeriodTypes(t *testing.T) {
	start := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		periodType PeriodType
		period     int
		n          int
		want       time.Time
	}{
		{
			name:       "daily",
			periodType: PeriodTypeDay,
			period:     10,
			n:          3,
			want:       time.Date(2021, time.January, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "weekly",
			periodType: PeriodTypeWeek,
			period:     2,
			n:          1,
			want:       time.Date(2021, time.January, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "yearly from leap day clamps",
			periodType: PeriodTypeYear,
			period:     1,
			n:          1,
			want:       time.Date(2021, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := start
			if tt.name == "yearly from leap day clamps" {
				s = time.Date(2020, time.February, 29, 0, 0, 0, 0, time.UTC)
			}
			got, err := NextOccurrenceDate(s, tt.period, tt.periodType, tt.n)
			if err != nil {
				t.Fatalf("NextOccurrenceDate() unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrenceDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddClampedDate(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		years  int
		months int
		days   int
		want   time.Time
	}{
		{
			name:   "plain month addition",
			start:  time.Date(2021, time.April, 15, 0, 0, 0, 0, time.UTC),
			months: 1,
			want:   time.Date(2021, time.May, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "May 31 plus one month clamps to June 30",
			start:  time.Date(2021, time.May, 31, 0, 0, 0, 0, time.UTC),
			months: 1,
			want:   time.Date(2021, time.June, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "negative months wrap into previous year",
			start:  time.Date(2021, time.January, 15, 0, 0, 0, 0, time.UTC),
			months: -2,
			want:   time.Date(2020, time.November, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "day component applied after clamping",
			start: time.Date(2021, time.May, 31, 0, 0, 0, 0, time.UTC),
			days:  1,
			want:  time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddClampedDate(tt.start, tt.years, tt.months, tt.days)
			if !got.Equal(tt.want) {
				t.Errorf("AddClampedDate() = %v, want %v", got, tt.want)
			}
		})
	}
}
