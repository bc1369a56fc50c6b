package progression

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/reviewquest/progression/pkg/metrics"
)

// SnapshotStore is the persistence collaborator for progression snapshots.
// Implementations must provide compare-and-swap semantics: Write succeeds
// only if the stored document version still equals expectedVersion.
type SnapshotStore interface {
	// Load returns the snapshot and its current version, or ErrNotFound.
	Load(ctx context.Context, userID string) (*Snapshot, int64, error)

	// Write persists the snapshot if the stored version still equals
	// expectedVersion, returning the new version. expectedVersion 0 means
	// create-if-absent. Returns ErrConflict when a concurrent writer won.
	Write(ctx context.Context, userID string, expectedVersion int64, snap *Snapshot) (int64, error)
}

// AwardResult reports the outcome of one committed award.
type AwardResult struct {
	UserID             string        `json:"userId"`
	ActionKind         ActionKind    `json:"actionKind"`
	AmountAwarded      int           `json:"amountAwarded"`
	NewScore           int           `json:"newScore"`
	TierChanged        bool          `json:"tierChanged"`
	NewTier            int           `json:"newTier"`
	AchievementsEarned []Achievement `json:"achievementsEarned,omitempty"`
}

// EngineConfig tunes the award transaction retry behavior.
type EngineConfig struct {
	// MaxAttempts bounds the conditional-write retry loop. Total award
	// latency is bounded by MaxAttempts times the backoff schedule.
	MaxAttempts int

	// InitialBackoff is the first retry delay; subsequent delays grow
	// exponentially.
	InitialBackoff time.Duration

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

// Engine orchestrates award transactions: load, compute, evaluate badges,
// conditionally write, retry on conflict. It is the only writer of a user's
// progression snapshot; concurrent invocations for the same user serialize
// through the store's conditional write, not an in-process lock.
type Engine struct {
	store   SnapshotStore
	catalog *Catalog
	cfg     EngineConfig
	tracer  trace.Tracer
}

// NewEngine creates an award engine over the given store and catalog.
func NewEngine(store SnapshotStore, catalog *Catalog, cfg EngineConfig) *Engine {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 20 * time.Millisecond
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		store:   store,
		catalog: catalog,
		cfg:     cfg,
		tracer:  otel.Tracer("github.com/reviewquest/progression/pkg/progression"),
	}
}

// Catalog returns the achievement catalog the engine evaluates against.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Award applies one reward event for a user and returns the committed
// result. The snapshot is created lazily on the first award. Once accepted,
// an award either commits or fails loudly with ErrConflictExhausted; no
// partial state is ever persisted.
func (e *Engine) Award(ctx context.Context, userID string, kind ActionKind, metadata map[string]interface{}) (*AwardResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("award: %w", ErrNotFound)
	}
	if _, ok := e.catalog.RewardAmount(kind); !ok && kind != ActionStreakBonus {
		return nil, fmt.Errorf("award for user %s: %w: %s", userID, ErrUnknownAction, kind)
	}

	ctx, span := e.tracer.Start(ctx, "progression.Award",
		trace.WithAttributes(attribute.String("progression.action", string(kind))))
	defer span.End()

	start := time.Now()
	attempts := 0
	var result *AwardResult

	operation := func() error {
		attempts++
		metrics.AwardAttemptsTotal.WithLabelValues(string(kind)).Inc()

		res, err := e.attemptAward(ctx, userID, kind, metadata)
		if err != nil {
			if errors.Is(err, ErrConflict) {
				metrics.AwardConflictsTotal.Inc()
				logrus.Debugf("award conflict for user %s on attempt %d, retrying", userID, attempts)
				return err
			}
			return backoff.Permanent(err)
		}
		result = res
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.cfg.InitialBackoff
	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(bo, uint64(e.cfg.MaxAttempts-1)), ctx))

	span.SetAttributes(attribute.Int("progression.attempts", attempts))

	if err != nil {
		if errors.Is(err, ErrConflict) {
			metrics.AwardFailuresTotal.WithLabelValues("conflict_exhausted").Inc()
			logrus.Errorf("award for user %s failed after %d attempts: %v", userID, attempts, err)
			return nil, fmt.Errorf("award for user %s after %d attempts: %w", userID, attempts, ErrConflictExhausted)
		}
		metrics.AwardFailuresTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("award for user %s: %w", userID, err)
	}

	metrics.AwardDuration.Observe(time.Since(start).Seconds())
	if result.TierChanged {
		metrics.TierChangesTotal.Inc()
	}
	for _, a := range result.AchievementsEarned {
		metrics.BadgesEarnedTotal.WithLabelValues(a.ID).Inc()
	}

	logrus.Infof("awarded %d points to user %s for %s (score=%d tier=%d attempts=%d)",
		result.AmountAwarded, userID, kind, result.NewScore, result.NewTier, attempts)
	return result, nil
}

// attemptAward runs one load-compute-write cycle. A conflicting write
// returns ErrConflict so the caller can reload and recompute from fresh
// state; the snapshot built here is discarded in that case.
func (e *Engine) attemptAward(ctx context.Context, userID string, kind ActionKind, metadata map[string]interface{}) (*AwardResult, error) {
	snap, version, err := e.store.Load(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		snap = NewSnapshot()
		version = 0
		logrus.Infof("no progression state for user %s, initializing", userID)
	case err != nil:
		return nil, err
	default:
		if snap.Normalize(userID) {
			metrics.SnapshotRepairsTotal.Inc()
		}
	}

	next := snap.Clone()
	now := e.cfg.Now()

	amount := 0
	switch kind {
	case ActionStreakBonus:
		adv := AdvanceStreak(next.Streak, now)
		next.Streak = adv.Streak
		amount = adv.BonusAmount
	default:
		configured, ok := e.catalog.RewardAmount(kind)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAction, kind)
		}
		amount = configured
	}

	previousTier := TierFor(next.Score)
	next.Score += amount
	next.Tier = TierFor(next.Score)

	// A zero-amount streak advance still commits the streak state but adds
	// no history entry, keeping score == sum(history).
	if amount > 0 {
		next.History = append(next.History, RewardRecord{
			ID:         uuid.NewString(),
			Amount:     amount,
			ActionKind: kind,
			Timestamp:  now,
			Metadata:   metadata,
		})
	}

	// Streak bonuses are derived from logins, not counted as activity.
	if kind != ActionStreakBonus {
		next.ActivityCounters[kind]++
	}

	newlyEarned := e.catalog.EvaluateBadges(next)
	for _, a := range newlyEarned {
		next.EarnedAchievements = append(next.EarnedAchievements, a.ID)
	}
	sort.Strings(next.EarnedAchievements)

	if _, err := e.store.Write(ctx, userID, version, next); err != nil {
		return nil, err
	}

	return &AwardResult{
		UserID:             userID,
		ActionKind:         kind,
		AmountAwarded:      amount,
		NewScore:           next.Score,
		TierChanged:        next.Tier != previousTier,
		NewTier:            next.Tier,
		AchievementsEarned: newlyEarned,
	}, nil
}

// Get loads and normalizes the current snapshot for read-only use.
// Repairs are applied in memory only; the next award persists them.
func (e *Engine) Get(ctx context.Context, userID string) (*Snapshot, error) {
	if userID == "" {
		return nil, fmt.Errorf("get progression: %w", ErrNotFound)
	}

	snap, _, err := e.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snap.Normalize(userID) {
		metrics.SnapshotRepairsTotal.Inc()
	}
	return snap, nil
}
