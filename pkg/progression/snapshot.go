package progression

import (
	"time"

	"github.com/sirupsen/logrus"
)

// ActionKind identifies the kind of user action that triggered a reward.
type ActionKind string

const (
	ActionQuestCreated   ActionKind = "quest_created"
	ActionQuestCompleted ActionKind = "quest_completed"
	ActionAppAdded       ActionKind = "app_added"
	ActionDailyLogin     ActionKind = "daily_login"
	// ActionStreakBonus is special: its amount comes from the streak
	// tracker and it does not increment activity counters.
	ActionStreakBonus ActionKind = "streak_bonus"
)

// CountedActionKinds lists the action kinds tracked in activity counters.
// Streak bonuses are excluded: they are derived from logins, not a
// user action of their own.
var CountedActionKinds = []ActionKind{
	ActionQuestCreated,
	ActionQuestCompleted,
	ActionAppAdded,
	ActionDailyLogin,
}

// StreakState tracks consecutive calendar days with qualifying activity.
// LastActiveDate is a "2006-01-02" date string; empty means never active.
type StreakState struct {
	CurrentLength  int    `json:"currentLength"`
	LongestLength  int    `json:"longestLength"`
	LastActiveDate string `json:"lastActiveDate,omitempty"`
}

// RewardRecord is one immutable entry in a user's reward history.
type RewardRecord struct {
	ID         string                 `json:"id"`
	Amount     int                    `json:"amount"`
	ActionKind ActionKind             `json:"actionKind"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// Snapshot is the complete progression state for one user. It is mutated
// exclusively through Engine.Award and persisted as a single document.
type Snapshot struct {
	Score              int                `json:"score"`
	Tier               int                `json:"tier"`
	Streak             StreakState        `json:"streak"`
	ActivityCounters   map[ActionKind]int `json:"activityCounters"`
	EarnedAchievements []string           `json:"earnedAchievements"`
	History            []RewardRecord     `json:"history"`
}

// NewSnapshot returns a default-initialized snapshot for a first-time user.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Score:              0,
		Tier:               1,
		ActivityCounters:   make(map[ActionKind]int),
		EarnedAchievements: []string{},
		History:            []RewardRecord{},
	}
}

// HasAchievement reports whether the achievement has already been earned.
func (s *Snapshot) HasAchievement(id string) bool {
	for _, earned := range s.EarnedAchievements {
		if earned == id {
			return true
		}
	}
	return false
}

// HistorySum returns the sum of all history entry amounts. After every
// successful award this must equal Score.
func (s *Snapshot) HistorySum() int {
	sum := 0
	for _, rec := range s.History {
		sum += rec.Amount
	}
	return sum
}

// Normalize repairs a snapshot loaded from storage so that downstream logic
// never sees missing sub-structures or broken derived state. Documents
// written by older schema versions may lack fields entirely; failing an
// award over that is worse than self-healing, so repairs are applied
// locally and reported via the returned flag.
func (s *Snapshot) Normalize(userID string) bool {
	repaired := false

	if s.ActivityCounters == nil {
		s.ActivityCounters = make(map[ActionKind]int)
		repaired = true
	}
	for kind, count := range s.ActivityCounters {
		if count < 0 {
			s.ActivityCounters[kind] = 0
			repaired = true
		}
	}
	if s.EarnedAchievements == nil {
		s.EarnedAchievements = []string{}
		repaired = true
	}
	if s.History == nil {
		s.History = []RewardRecord{}
		repaired = true
	}

	if s.Score < 0 {
		s.Score = 0
		repaired = true
	}
	if s.Streak.CurrentLength < 0 {
		s.Streak.CurrentLength = 0
		repaired = true
	}
	if s.Streak.LongestLength < s.Streak.CurrentLength {
		s.Streak.LongestLength = s.Streak.CurrentLength
		repaired = true
	}

	// Tier is derived state; recompute rather than trust the document.
	if tier := TierFor(s.Score); s.Tier != tier {
		s.Tier = tier
		repaired = true
	}

	if repaired {
		logrus.Warnf("repaired malformed progression snapshot for user %s", userID)
	}

	// Score stays authoritative when history disagrees: history entries are
	// immutable and fabricating a reconciliation entry would be worse than
	// reporting the drift.
	if len(s.History) > 0 && s.HistorySum() != s.Score {
		logrus.Warnf("progression history sum %d does not match score %d for user %s",
			s.HistorySum(), s.Score, userID)
	}

	return repaired
}

// Clone returns a deep copy of the snapshot. The award transaction mutates
// a copy so a failed conditional write never leaks partial state.
func (s *Snapshot) Clone() *Snapshot {
	out := &Snapshot{
		Score:              s.Score,
		Tier:               s.Tier,
		Streak:             s.Streak,
		ActivityCounters:   make(map[ActionKind]int, len(s.ActivityCounters)),
		EarnedAchievements: make([]string, len(s.EarnedAchievements)),
		History:            make([]RewardRecord, len(s.History)),
	}
	for kind, count := range s.ActivityCounters {
		out.ActivityCounters[kind] = count
	}
	copy(out.EarnedAchievements, s.EarnedAchievements)
	copy(out.History, s.History)
	return out
}
