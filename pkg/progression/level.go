package progression

// tierThresholds maps tier (index+1) to the minimum score required for it.
// Tier 1 starts at 0. The last entry is the terminal tier: there is no
// further progression past it.
var tierThresholds = []int{
	0,     // tier 1
	100,   // tier 2
	250,   // tier 3
	500,   // tier 4
	1000,  // tier 5
	2000,  // tier 6
	3500,  // tier 7
	5500,  // tier 8
	8000,  // tier 9
	11000, // tier 10
}

// MaxTier returns the highest reachable tier.
func MaxTier() int {
	return len(tierThresholds)
}

// TierFor returns the highest tier whose threshold is at or below score.
// Negative scores clamp to tier 1.
func TierFor(score int) int {
	if score < 0 {
		return 1
	}

	tier := 1
	for i, threshold := range tierThresholds {
		if score < threshold {
			break
		}
		tier = i + 1
	}
	return tier
}

// ScoreToNextTier returns how many more points are needed to reach the next
// tier, or 0 when the score is already at or past the terminal tier.
func ScoreToNextTier(score int) int {
	if score < 0 {
		score = 0
	}

	tier := TierFor(score)
	if tier >= MaxTier() {
		return 0
	}
	return tierThresholds[tier] - score
}
