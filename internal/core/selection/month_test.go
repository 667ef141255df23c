package selection

import (
	"testing"
	"time"
)

func TestShiftMonth(t *testing.T) {
	tests := []struct {
		name      string
		anchor    time.Time
		delta     int
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "previous month",
			anchor:    time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC),
			delta:     -1,
			wantStart: time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.February, 29, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "next month from the 31st does not skip February",
			anchor:    time.Date(2023, time.January, 31, 0, 0, 0, 0, time.UTC),
			delta:     1,
			wantStart: time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2023, time.February, 28, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "year boundary",
			anchor:    time.Date(2024, time.December, 10, 0, 0, 0, 0, time.UTC),
			delta:     1,
			wantStart: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2025, time.January, 31, 23, 59, 59, 999999999, time.UTC),
		},
		{
			name:      "this month",
			anchor:    time.Date(2024, time.April, 30, 23, 0, 0, 0, time.UTC),
			delta:     0,
			wantStart: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.April, 30, 23, 59, 59, 999999999, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := ShiftMonth(tt.anchor, tt.delta)
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}

func TestMonthNavigation_AnchorsOnRangeStart(t *testing.T) {
	s := windowed()
	custom := time.Date(2023, time.July, 20, 0, 0, 0, 0, time.UTC)
	s = mustReduce(t, s, SetDateRange{Start: &custom})

	prev := mustReduce(t, s, SetPrevMonth{Now: testNow})
	want := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	if !prev.DateRangeStart.Equal(want) {
		t.Errorf("DateRangeStart = %v, want %v", prev.DateRangeStart, want)
	}
	if prev.DateRangeEnd == nil {
		t.Fatal("DateRangeEnd = nil, want both bounds set")
	}

	current := mustReduce(t, prev, SetThisMonth{Now: testNow})
	wantThis := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	if !current.DateRangeStart.Equal(wantThis) {
		t.Errorf("DateRangeStart = %v, want %v", current.DateRangeStart, wantThis)
	}
}

func TestMonthNavigation_FallsBackToNow(t *testing.T) {
	s := windowed()
	s = mustReduce(t, s, SetDateRange{})

	next := mustReduce(t, s, SetNextMonth{Now: testNow})
	want := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)
	if !next.DateRangeStart.Equal(want) {
		t.Errorf("DateRangeStart = %v, want %v", next.DateRangeStart, want)
	}
}
