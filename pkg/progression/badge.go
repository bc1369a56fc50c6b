package progression

import "github.com/sirupsen/logrus"

// EvaluateBadges returns the achievements newly satisfied by the snapshot:
// enabled catalog entries whose requirements all hold and which are not in
// the snapshot's earned set. Evaluation is pure; callers must persist the
// union into EarnedAchievements before re-evaluating, which is what makes
// repeated evaluation converge to the empty set.
func (c *Catalog) EvaluateBadges(s *Snapshot) []Achievement {
	var earned []Achievement
	for _, a := range c.Achievements {
		if !a.Enabled || s.HasAchievement(a.ID) {
			continue
		}
		if requirementsMet(a.Requirements, s) {
			logrus.Debugf("achievement %s requirements met", a.ID)
			earned = append(earned, a)
		}
	}
	return earned
}

// requirementsMet tests all requirements conjunctively.
func requirementsMet(reqs []Requirement, s *Snapshot) bool {
	for _, r := range reqs {
		if !requirementMet(r, s) {
			return false
		}
	}
	return true
}

func requirementMet(r Requirement, s *Snapshot) bool {
	switch r.Type {
	case RequirementScore:
		return s.Score >= r.Threshold
	case RequirementCounter:
		return s.ActivityCounters[r.Action] >= r.Threshold
	case RequirementStreak:
		return s.Streak.CurrentLength >= r.Threshold
	default:
		// Unknown types are rejected by Catalog.Validate; treat any that
		// slip through as unsatisfiable rather than free badges.
		return false
	}
}
