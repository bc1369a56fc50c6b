package progression

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalog_Valid(t *testing.T) {
	if err := DefaultCatalog().Validate(); err != nil {
		t.Errorf("DefaultCatalog().Validate() error = %v", err)
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "achievements.yaml")
	content := `
version: 3
rewards:
  quest_created: 5
  quest_completed: 15
achievements:
  - id: first_quest
    name: First Quest
    description: Create your first quest.
    category: quests
    enabled: true
    requirements:
      - type: counter
        action: quest_created
        threshold: 1
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write catalog file: %v", err)
	}

	catalog, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	if catalog.Version != 3 {
		t.Errorf("Version = %d, expected 3", catalog.Version)
	}
	if len(catalog.Achievements) != 1 {
		t.Fatalf("Expected 1 achievement, got %d", len(catalog.Achievements))
	}
	if amount, ok := catalog.RewardAmount(ActionQuestCompleted); !ok || amount != 15 {
		t.Errorf("RewardAmount(quest_completed) = %d, %v; expected 15, true", amount, ok)
	}
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing catalog file")
	}
}

func TestCatalogValidate(t *testing.T) {
	tests := []struct {
		name    string
		catalog Catalog
		wantErr bool
	}{
		{
			name: "duplicate achievement id",
			catalog: Catalog{
				Achievements: []Achievement{
					{ID: "a", Requirements: []Requirement{{Type: RequirementScore, Threshold: 1}}},
					{ID: "a", Requirements: []Requirement{{Type: RequirementScore, Threshold: 2}}},
				},
			},
			wantErr: true,
		},
		{
			name: "unknown requirement type",
			catalog: Catalog{
				Achievements: []Achievement{
					{ID: "a", Requirements: []Requirement{{Type: "magic", Threshold: 1}}},
				},
			},
			wantErr: true,
		},
		{
			name: "counter requirement without action",
			catalog: Catalog{
				Achievements: []Achievement{
					{ID: "a", Requirements: []Requirement{{Type: RequirementCounter, Threshold: 1}}},
				},
			},
			wantErr: true,
		},
		{
			name: "non-positive threshold",
			catalog: Catalog{
				Achievements: []Achievement{
					{ID: "a", Requirements: []Requirement{{Type: RequirementScore, Threshold: 0}}},
				},
			},
			wantErr: true,
		},
		{
			name: "achievement without requirements",
			catalog: Catalog{
				Achievements: []Achievement{{ID: "a"}},
			},
			wantErr: true,
		},
		{
			name: "configured streak bonus amount rejected",
			catalog: Catalog{
				Rewards: map[ActionKind]int{ActionStreakBonus: 10},
			},
			wantErr: true,
		},
		{
			name: "valid catalog",
			catalog: Catalog{
				Rewards: map[ActionKind]int{ActionQuestCreated: 5},
				Achievements: []Achievement{
					{ID: "a", Requirements: []Requirement{{Type: RequirementScore, Threshold: 1}}},
				},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.catalog.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
