package progression

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Requirement types supported by achievement definitions.
const (
	RequirementScore   = "score"
	RequirementCounter = "counter"
	RequirementStreak  = "streak"
)

// Requirement is one predicate over a snapshot. All requirements of an
// achievement must hold for it to be earned.
type Requirement struct {
	Type      string     `yaml:"type" json:"type"`
	Action    ActionKind `yaml:"action,omitempty" json:"action,omitempty"`
	Threshold int        `yaml:"threshold" json:"threshold"`
}

// Achievement is a static, immutable achievement definition.
type Achievement struct {
	ID           string        `yaml:"id" json:"id"`
	Name         string        `yaml:"name" json:"name"`
	Description  string        `yaml:"description" json:"description"`
	Category     string        `yaml:"category" json:"category"`
	Enabled      bool          `yaml:"enabled" json:"-"`
	Requirements []Requirement `yaml:"requirements" json:"requirements"`
}

// Catalog holds the achievement definitions and the action reward table.
// It is loaded once at process start and never mutated at runtime.
type Catalog struct {
	Version      int                `yaml:"version"`
	Rewards      map[ActionKind]int `yaml:"rewards"`
	Achievements []Achievement      `yaml:"achievements"`
}

// DefaultCatalog returns the compiled-in catalog, used when no catalog file
// is configured or the file is absent.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Version: 1,
		Rewards: map[ActionKind]int{
			ActionQuestCreated:   5,
			ActionQuestCompleted: 15,
			ActionAppAdded:       10,
			ActionDailyLogin:     2,
		},
		Achievements: []Achievement{
			{
				ID: "first_quest", Name: "First Quest", Category: "quests", Enabled: true,
				Description: "Create your first review quest.",
				Requirements: []Requirement{
					{Type: RequirementCounter, Action: ActionQuestCreated, Threshold: 1},
				},
			},
			{
				ID: "quest_novice", Name: "Quest Novice", Category: "quests", Enabled: true,
				Description: "Complete 10 review quests.",
				Requirements: []Requirement{
					{Type: RequirementCounter, Action: ActionQuestCompleted, Threshold: 10},
				},
			},
			{
				ID: "quest_master", Name: "Quest Master", Category: "quests", Enabled: true,
				Description: "Complete 50 review quests.",
				Requirements: []Requirement{
					{Type: RequirementCounter, Action: ActionQuestCompleted, Threshold: 50},
				},
			},
			{
				ID: "app_collector", Name: "App Collector", Category: "apps", Enabled: true,
				Description: "Track 5 apps on your dashboard.",
				Requirements: []Requirement{
					{Type: RequirementCounter, Action: ActionAppAdded, Threshold: 5},
				},
			},
			{
				ID: "week_streak", Name: "Dedicated", Category: "streaks", Enabled: true,
				Description: "Keep a 7-day login streak.",
				Requirements: []Requirement{
					{Type: RequirementStreak, Threshold: 7},
				},
			},
			{
				ID: "fortnight_streak", Name: "Unstoppable", Category: "streaks", Enabled: true,
				Description: "Keep a 14-day login streak.",
				Requirements: []Requirement{
					{Type: RequirementStreak, Threshold: 14},
				},
			},
			{
				ID: "score_100", Name: "Centurion", Category: "score", Enabled: true,
				Description: "Reach 100 XP.",
				Requirements: []Requirement{
					{Type: RequirementScore, Threshold: 100},
				},
			},
			{
				ID: "score_1000", Name: "High Roller", Category: "score", Enabled: true,
				Description: "Reach 1000 XP.",
				Requirements: []Requirement{
					{Type: RequirementScore, Threshold: 1000},
				},
			},
			{
				ID: "well_rounded", Name: "Well Rounded", Category: "mastery", Enabled: true,
				Description: "Complete 5 quests and keep a 3-day streak.",
				Requirements: []Requirement{
					{Type: RequirementCounter, Action: ActionQuestCompleted, Threshold: 5},
					{Type: RequirementStreak, Threshold: 3},
				},
			},
		},
	}
}

// LoadCatalog reads a catalog from a YAML file. Missing rewards fall back
// to the compiled-in reward table so a catalog file can define only
// achievements.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	catalog := &Catalog{}
	if err := yaml.Unmarshal(data, catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}

	if catalog.Rewards == nil {
		catalog.Rewards = DefaultCatalog().Rewards
	}

	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}

	logrus.Infof("loaded achievement catalog version %d with %d achievements from %s",
		catalog.Version, len(catalog.Achievements), path)
	return catalog, nil
}

// Validate checks catalog definitions for structural problems: duplicate
// IDs, unknown requirement types, missing counter actions, non-positive
// thresholds or reward amounts.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool)
	for _, a := range c.Achievements {
		if a.ID == "" {
			return fmt.Errorf("achievement with empty id")
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate achievement id %s", a.ID)
		}
		seen[a.ID] = true

		if len(a.Requirements) == 0 {
			return fmt.Errorf("achievement %s has no requirements", a.ID)
		}
		for _, r := range a.Requirements {
			switch r.Type {
			case RequirementScore, RequirementStreak:
				// No action needed.
			case RequirementCounter:
				if r.Action == "" {
					return fmt.Errorf("achievement %s: counter requirement missing action", a.ID)
				}
			default:
				return fmt.Errorf("achievement %s: unknown requirement type %q", a.ID, r.Type)
			}
			if r.Threshold <= 0 {
				return fmt.Errorf("achievement %s: requirement threshold must be positive, got %d", a.ID, r.Threshold)
			}
		}
	}

	for kind, amount := range c.Rewards {
		if amount <= 0 {
			return fmt.Errorf("reward amount for %s must be positive, got %d", kind, amount)
		}
		if kind == ActionStreakBonus {
			return fmt.Errorf("streak_bonus amount is computed from the streak, not configured")
		}
	}

	return nil
}

// RewardAmount returns the configured amount for an action kind. The second
// return is false for unknown kinds and for streak_bonus, whose amount is
// computed, not configured.
func (c *Catalog) RewardAmount(kind ActionKind) (int, bool) {
	amount, ok := c.Rewards[kind]
	return amount, ok
}

// Achievement returns the definition for an ID, or nil if absent.
func (c *Catalog) Achievement(id string) *Achievement {
	for i := range c.Achievements {
		if c.Achievements[i].ID == id {
			return &c.Achievements[i]
		}
	}
	return nil
}
