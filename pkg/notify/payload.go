// Package notify aggregates award results into user-facing notification
// payloads. Bursts of rewards inside a short window collapse into one
// aggregated payload; tier changes and achievements are rarer and surface
// as their own payloads on every flush.
package notify

import "github.com/reviewquest/progression/pkg/progression"

// Kind discriminates notification payloads.
type Kind string

const (
	KindSingleReward      Kind = "single_reward"
	KindBatchedReward     Kind = "batched_reward"
	KindTierChange        Kind = "tier_change"
	KindAchievementEarned Kind = "achievement_earned"
)

// Contribution is one action's share of a batched reward.
type Contribution struct {
	ActionKind progression.ActionKind `json:"actionKind"`
	Amount     int                    `json:"amount"`
}

// Payload is one presentation event handed to the sink. The UI owns
// rendering, dismissal and preference filtering; this engine never renders
// text.
type Payload struct {
	Kind          Kind                     `json:"kind"`
	TotalAmount   int                      `json:"totalAmount,omitempty"`
	Contributions []Contribution           `json:"contributions,omitempty"`
	NewScore      int                      `json:"newScore,omitempty"`
	NewTier       int                      `json:"newTier,omitempty"`
	Achievement   *progression.Achievement `json:"achievement,omitempty"`
}

// Sink receives presentation payloads. Present is fire-and-forget from the
// coalescer's perspective and must not block for long: it runs on the
// coalescer's own goroutine.
type Sink interface {
	Present(payload Payload)
}
