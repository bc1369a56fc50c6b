package progression

import "time"

// DateLayout is the calendar-date format used for streak bookkeeping.
// Comparing date strings instead of instants makes the day boundary
// explicit and timezone handling the caller's concern.
const DateLayout = "2006-01-02"

// streakMilestones maps an exact streak length to its bonus amount.
// The bonus is eligible only on the day the milestone is hit, not every
// day past it.
var streakMilestones = map[int]int{
	3:  10,
	7:  25,
	14: 50,
}

// StreakAdvance is the result of advancing a streak by one activity day.
type StreakAdvance struct {
	Streak        StreakState
	BonusEligible bool
	BonusAmount   int
}

// AdvanceStreak computes the next streak state for activity on today.
// Rules:
//   - never active before: streak starts at 1
//   - last active yesterday: streak continues
//   - last active today: no-op, already counted for this calendar day
//   - gap of two or more days: streak resets to 1, longest is preserved
//
// AdvanceStreak must be applied at most once per calendar day per user;
// the same-day no-op enforces that for repeated calls.
func AdvanceStreak(cur StreakState, today time.Time) StreakAdvance {
	day := today.Format(DateLayout)
	yesterday := today.AddDate(0, 0, -1).Format(DateLayout)

	next := cur

	switch cur.LastActiveDate {
	case day:
		// Already advanced today. No state change, no bonus.
		return StreakAdvance{Streak: next}
	case yesterday:
		next.CurrentLength++
	default:
		next.CurrentLength = 1
	}
	next.LastActiveDate = day

	if next.LongestLength < next.CurrentLength {
		next.LongestLength = next.CurrentLength
	}

	bonus, eligible := streakMilestones[next.CurrentLength]
	return StreakAdvance{
		Streak:        next,
		BonusEligible: eligible,
		BonusAmount:   bonus,
	}
}
