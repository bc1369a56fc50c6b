package progression

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAdvanceStreak(t *testing.T) {
	tests := []struct {
		name          string
		cur           StreakState
		today         string
		wantCurrent   int
		wantLongest   int
		wantEligible  bool
		wantBonus     int
		wantLastDate  string
	}{
		{
			name:         "first ever activation",
			cur:          StreakState{},
			today:        "2026-08-24",
			wantCurrent:  1,
			wantLongest:  1,
			wantLastDate: "2026-08-24",
		},
		{
			name:         "consecutive day continues streak",
			cur:          StreakState{CurrentLength: 1, LongestLength: 1, LastActiveDate: "2026-08-23"},
			today:        "2026-08-24",
			wantCurrent:  2,
			wantLongest:  2,
			wantLastDate: "2026-08-24",
		},
		{
			name:         "same day is a no-op",
			cur:          StreakState{CurrentLength: 5, LongestLength: 8, LastActiveDate: "2026-08-24"},
			today:        "2026-08-24",
			wantCurrent:  5,
			wantLongest:  8,
			wantLastDate: "2026-08-24",
		},
		{
			name:         "five day gap resets, longest preserved",
			cur:          StreakState{CurrentLength: 6, LongestLength: 6, LastActiveDate: "2026-08-19"},
			today:        "2026-08-24",
			wantCurrent:  1,
			wantLongest:  6,
			wantLastDate: "2026-08-24",
		},
		{
			name:         "three day milestone pays small bonus",
			cur:          StreakState{CurrentLength: 2, LongestLength: 2, LastActiveDate: "2026-08-23"},
			today:        "2026-08-24",
			wantCurrent:  3,
			wantLongest:  3,
			wantEligible: true,
			wantBonus:    10,
			wantLastDate: "2026-08-24",
		},
		{
			name:         "day past milestone pays nothing",
			cur:          StreakState{CurrentLength: 3, LongestLength: 3, LastActiveDate: "2026-08-23"},
			today:        "2026-08-24",
			wantCurrent:  4,
			wantLongest:  4,
			wantLastDate: "2026-08-24",
		},
		{
			name:         "seven day milestone pays medium bonus",
			cur:          StreakState{CurrentLength: 6, LongestLength: 9, LastActiveDate: "2026-08-23"},
			today:        "2026-08-24",
			wantCurrent:  7,
			wantLongest:  9,
			wantEligible: true,
			wantBonus:    25,
			wantLastDate: "2026-08-24",
		},
		{
			name:         "fourteen day milestone pays large bonus",
			cur:          StreakState{CurrentLength: 13, LongestLength: 13, LastActiveDate: "2026-08-23"},
			today:        "2026-08-24",
			wantCurrent:  14,
			wantLongest:  14,
			wantEligible: true,
			wantBonus:    50,
			wantLastDate: "2026-08-24",
		},
		{
			name:         "month boundary counts as consecutive",
			cur:          StreakState{CurrentLength: 1, LongestLength: 1, LastActiveDate: "2026-07-31"},
			today:        "2026-08-01",
			wantCurrent:  2,
			wantLongest:  2,
			wantLastDate: "2026-08-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adv := AdvanceStreak(tt.cur, date(tt.today))

			if adv.Streak.CurrentLength != tt.wantCurrent {
				t.Errorf("CurrentLength = %d, expected %d", adv.Streak.CurrentLength, tt.wantCurrent)
			}
			if adv.Streak.LongestLength != tt.wantLongest {
				t.Errorf("LongestLength = %d, expected %d", adv.Streak.LongestLength, tt.wantLongest)
			}
			if adv.BonusEligible != tt.wantEligible {
				t.Errorf("BonusEligible = %v, expected %v", adv.BonusEligible, tt.wantEligible)
			}
			if adv.BonusAmount != tt.wantBonus {
				t.Errorf("BonusAmount = %d, expected %d", adv.BonusAmount, tt.wantBonus)
			}
			if adv.Streak.LastActiveDate != tt.wantLastDate {
				t.Errorf("LastActiveDate = %q, expected %q", adv.Streak.LastActiveDate, tt.wantLastDate)
			}
		})
	}
}

func TestAdvanceStreak_SameDayNoBonus(t *testing.T) {
	// A repeated same-day call at a milestone length must not re-pay the
	// milestone bonus.
	cur := StreakState{CurrentLength: 3, LongestLength: 3, LastActiveDate: "2026-08-24"}

	adv := AdvanceStreak(cur, date("2026-08-24"))

	if adv.BonusEligible {
		t.Error("same-day advance must not be bonus eligible")
	}
	if adv.Streak != cur {
		t.Errorf("same-day advance changed streak state: %+v", adv.Streak)
	}
}
