package progression

import (
	"testing"
	"time"
)

func TestNewSnapshot_Defaults(t *testing.T) {
	snap := NewSnapshot()

	if snap.Score != 0 {
		t.Errorf("Score = %d, expected 0", snap.Score)
	}
	if snap.Tier != 1 {
		t.Errorf("Tier = %d, expected 1", snap.Tier)
	}
	if snap.ActivityCounters == nil || snap.EarnedAchievements == nil || snap.History == nil {
		t.Error("Expected all sub-structures initialized")
	}
}

func TestNormalize_RepairsMissingSubstructures(t *testing.T) {
	// Mimics a document written by an older schema with fields missing.
	snap := &Snapshot{Score: 120, Tier: 1}

	repaired := snap.Normalize("user-1")

	if !repaired {
		t.Error("Expected repair to be reported")
	}
	if snap.ActivityCounters == nil || snap.EarnedAchievements == nil || snap.History == nil {
		t.Error("Expected sub-structures initialized after repair")
	}
	if snap.Tier != TierFor(120) {
		t.Errorf("Tier = %d, expected %d (recomputed from score)", snap.Tier, TierFor(120))
	}
}

func TestNormalize_RepairsNegativeAndDerivedState(t *testing.T) {
	snap := &Snapshot{
		Score: -10,
		Tier:  7,
		Streak: StreakState{
			CurrentLength: 5,
			LongestLength: 2,
		},
		ActivityCounters:   map[ActionKind]int{ActionQuestCreated: -3},
		EarnedAchievements: []string{},
		History:            []RewardRecord{},
	}

	if !snap.Normalize("user-1") {
		t.Fatal("Expected repair to be reported")
	}

	if snap.Score != 0 {
		t.Errorf("Score = %d, expected 0 after clamping", snap.Score)
	}
	if snap.Tier != 1 {
		t.Errorf("Tier = %d, expected 1", snap.Tier)
	}
	if snap.Streak.LongestLength != 5 {
		t.Errorf("LongestLength = %d, expected 5 (raised to current)", snap.Streak.LongestLength)
	}
	if snap.ActivityCounters[ActionQuestCreated] != 0 {
		t.Errorf("Counter = %d, expected 0 after clamping", snap.ActivityCounters[ActionQuestCreated])
	}
}

func TestNormalize_CleanSnapshotUntouched(t *testing.T) {
	snap := NewSnapshot()
	snap.Score = 100
	snap.Tier = 2
	snap.History = []RewardRecord{{ID: "r1", Amount: 100, ActionKind: ActionQuestCompleted, Timestamp: time.Now()}}

	if snap.Normalize("user-1") {
		t.Error("Clean snapshot reported as repaired")
	}
}

func TestHistorySum(t *testing.T) {
	snap := NewSnapshot()
	snap.History = []RewardRecord{
		{ID: "a", Amount: 15},
		{ID: "b", Amount: 10},
		{ID: "c", Amount: 25},
	}

	if got := snap.HistorySum(); got != 50 {
		t.Errorf("HistorySum() = %d, expected 50", got)
	}
}

func TestClone_Isolated(t *testing.T) {
	snap := NewSnapshot()
	snap.Score = 40
	snap.ActivityCounters[ActionAppAdded] = 2
	snap.EarnedAchievements = []string{"first_quest"}
	snap.History = []RewardRecord{{ID: "a", Amount: 40}}

	clone := snap.Clone()
	clone.Score = 99
	clone.ActivityCounters[ActionAppAdded] = 7
	clone.EarnedAchievements[0] = "other"
	clone.History[0].Amount = 1

	if snap.Score != 40 {
		t.Errorf("Clone mutation leaked into Score: %d", snap.Score)
	}
	if snap.ActivityCounters[ActionAppAdded] != 2 {
		t.Errorf("Clone mutation leaked into counters: %d", snap.ActivityCounters[ActionAppAdded])
	}
	if snap.EarnedAchievements[0] != "first_quest" {
		t.Errorf("Clone mutation leaked into achievements: %v", snap.EarnedAchievements)
	}
	if snap.History[0].Amount != 40 {
		t.Errorf("Clone mutation leaked into history: %d", snap.History[0].Amount)
	}
}

func TestHasAchievement(t *testing.T) {
	snap := NewSnapshot()
	snap.EarnedAchievements = []string{"first_quest", "score_100"}

	if !snap.HasAchievement("first_quest") {
		t.Error("Expected first_quest to be earned")
	}
	if snap.HasAchievement("quest_master") {
		t.Error("Did not expect quest_master to be earned")
	}
}
