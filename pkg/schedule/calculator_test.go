package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAdvance(t *testing.T) {
	tests := []struct {
		name  string
		sched Schedule
		want  time.Time
	}{
		{
			name:  "weekly adds seven days",
			sched: Schedule{Frequency: FrequencyWeekly, Interval: 1, NextRun: date(2025, time.March, 3)},
			want:  date(2025, time.March, 10),
		},
		{
			name:  "biweekly adds fourteen days",
			sched: Schedule{Frequency: FrequencyWeekly, Interval: 2, NextRun: date(2025, time.March, 3)},
			want:  date(2025, time.March, 17),
		},
		{
			name:  "monthly mid-month keeps anchor day",
			sched: Schedule{Frequency: FrequencyMonthly, Interval: 1, AnchorDay: 15, NextRun: date(2025, time.April, 15)},
			want:  date(2025, time.May, 15),
		},
		{
			name:  "monthly jan 31 clamps to feb 28",
			sched: Schedule{Frequency: FrequencyMonthly, Interval: 1, AnchorDay: 31, NextRun: date(2025, time.January, 31)},
			want:  date(2025, time.February, 28),
		},
		{
			name:  "monthly jan 31 clamps to feb 29 on leap year",
			sched: Schedule{Frequency: FrequencyMonthly, Interval: 1, AnchorDay: 31, NextRun: date(2024, time.January, 31)},
			want:  date(2024, time.February, 29),
		},
		{
			name:  "monthly recovers anchor day after short month",
			sched: Schedule{Frequency: FrequencyMonthly, Interval: 1, AnchorDay: 31, NextRun: date(2025, time.February, 28)},
			want:  date(2025, time.March, 31),
		},
		{
			name:  "quarterly interval",
			sched: Schedule{Frequency: FrequencyMonthly, Interval: 3, AnchorDay: 10, NextRun: date(2025, time.November, 10)},
			want:  date(2026, time.February, 10),
		},
		{
			name:  "yearly adds a year",
			sched: Schedule{Frequency: FrequencyYearly, Interval: 1, AnchorDay: 1, NextRun: date(2025, time.June, 1)},
			want:  date(2026, time.June, 1),
		},
		{
			name:  "yearly feb 29 clamps on non-leap year",
			sched: Schedule{Frequency: FrequencyYearly, Interval: 1, AnchorDay: 29, NextRun: date(2024, time.February, 29)},
			want:  date(2025, time.February, 28),
		},
		{
			name:  "zero interval treated as one",
			sched: Schedule{Frequency: FrequencyWeekly, Interval: 0, NextRun: date(2025, time.March, 3)},
			want:  date(2025, time.March, 10),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Advance(tt.sched)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpired(t *testing.T) {
	end := date(2025, time.June, 30)

	assert.False(t, Expired(date(2025, time.June, 30), &end))
	assert.True(t, Expired(date(2025, time.July, 1), &end))
	assert.False(t, Expired(date(2099, time.January, 1), nil))
}
