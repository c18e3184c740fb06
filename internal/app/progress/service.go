// Package progress implements the Mentor progress engine: experience and
// levels, daily study streaks, the badge catalogue and its evaluator, mentor
// personalities, and the action recorder that ties them together.
//
// Every public operation of Service is a read-modify-write of a single
// profile record. They are serialized with one mutex, and the new state is
// only published by a successful Save, so a failed write leaves nothing
// half applied.
package progress

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"go.uber.org/zap"

	"github.com/mentor-ia/mentor/internal/domain"
	"github.com/mentor-ia/mentor/internal/infra/metrics"
)

// actionRule binds an action to the counter it bumps and its XP reward.
type actionRule struct {
	reward int64
	bump   func(*domain.UserProfile)
}

var actionRules = map[domain.ActionKind]actionRule{
	domain.ActionExplanation:  {10, func(p *domain.UserProfile) { p.TotalExplanations++ }},
	domain.ActionQuizComplete: {25, func(p *domain.UserProfile) { p.TotalQuizzes++ }},
	domain.ActionQuizPerfect:  {50, func(p *domain.UserProfile) { p.PerfectScores++ }},
	domain.ActionVoiceInput:   {8, func(p *domain.UserProfile) { p.VoiceCommands++ }},
	domain.ActionShare:        {12, func(p *domain.UserProfile) { p.Shares++ }},
	domain.ActionFavorite:     {5, func(p *domain.UserProfile) { p.Favorites++ }},
}

// RewardFor returns the fixed XP reward of an action kind.
func RewardFor(kind domain.ActionKind) (int64, error) {
	rule, ok := actionRules[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownAction, kind)
	}
	return rule.reward, nil
}

// Service is the entry point UI collaborators call.
type Service struct {
	mu    sync.Mutex
	store *Store
	log   *zap.Logger
	now   func() time.Time
	rng   *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock used by Touch and MotivationalMessage.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the service logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithRand sets the random source for motivational messages.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// NewService creates a service over a profile store.
func NewService(store *Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   zap.NewNop(),
		now:   time.Now,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetUserProfile returns the current profile, or the default one if none is
// stored yet or the stored value cannot be read.
func (s *Service) GetUserProfile(ctx context.Context) domain.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Load(ctx)
}

// RecordAction bumps the action's counter, awards its XP, runs the badge
// evaluator and persists the result. Unknown kinds are rejected before the
// store is touched. If the save fails nothing is recorded and the caller
// may retry.
func (s *Service) RecordAction(ctx context.Context, kind domain.ActionKind) (domain.ActionResult, error) {
	rule, ok := actionRules[kind]
	if !ok {
		metrics.ActionsRejected.WithLabelValues("unknown_action").Inc()
		return domain.ActionResult{}, fmt.Errorf("%w: %q", domain.ErrUnknownAction, kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.LoadForUpdate(ctx)
	if err != nil {
		s.log.Warn("action not recorded", zap.String("kind", string(kind)), zap.Error(err))
		return domain.ActionResult{}, err
	}
	p := current.Clone()
	rule.bump(&p)

	p, actionLevelUp, err := ApplyExperience(p, rule.reward)
	if err != nil {
		return domain.ActionResult{}, err
	}
	p, badges, badgeLevelUp := Evaluate(p)

	if err := s.store.Save(ctx, p); err != nil {
		s.log.Warn("action not recorded", zap.String("kind", string(kind)), zap.Error(err))
		return domain.ActionResult{}, err
	}

	leveledUp := actionLevelUp || badgeLevelUp
	s.observe(string(kind), rule.reward, p, badges, leveledUp)
	metrics.ActionsRecorded.WithLabelValues(string(kind)).Inc()
	s.log.Debug("action recorded",
		zap.String("kind", string(kind)),
		zap.Int64("xp", p.Experience),
		zap.Int("level", p.Level),
		zap.Int("new_badges", len(badges)))

	return domain.ActionResult{
		Action:           kind,
		ExperienceGained: rule.reward,
		TotalExperience:  p.Experience,
		Level:            p.Level,
		LeveledUp:        leveledUp,
		NextLevelXP:      NextLevelXP(p.Level),
		NewBadges:        badges,
	}, nil
}

// UpdateStreak registers a study day. Repeating the same day changes
// nothing. When the streak reaches a multiple of seven the daily streak
// bonus is awarded, then the badge evaluator runs so streak badges unlock
// on the day they qualify.
func (s *Service) UpdateStreak(ctx context.Context, today civil.Date) (domain.StreakResult, error) {
	if !today.IsValid() {
		return domain.StreakResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidDate, today)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.store.LoadForUpdate(ctx)
	if err != nil {
		s.log.Warn("streak not recorded", zap.String("today", today.String()), zap.Error(err))
		return domain.StreakResult{}, err
	}
	p, advanced := AdvanceStreak(current, today)
	if !advanced {
		return domain.StreakResult{Streak: p.Streak, Level: p.Level}, nil
	}

	var (
		bonus     int64
		leveledUp bool
	)
	if StreakBonusDue(p.Streak) {
		bonus = DailyStreakXP
		p, leveledUp, err = ApplyExperience(p, bonus)
		if err != nil {
			return domain.StreakResult{}, err
		}
	}
	p, badges, badgeLevelUp := Evaluate(p)
	leveledUp = leveledUp || badgeLevelUp

	if err := s.store.Save(ctx, p); err != nil {
		s.log.Warn("streak not recorded", zap.String("today", today.String()), zap.Error(err))
		return domain.StreakResult{}, err
	}

	s.observe("daily_streak", bonus, p, badges, leveledUp)
	metrics.CurrentStreak.Set(float64(p.Streak))

	return domain.StreakResult{
		Streak:    p.Streak,
		Advanced:  true,
		BonusXP:   bonus,
		Level:     p.Level,
		LeveledUp: leveledUp,
		NewBadges: badges,
	}, nil
}

// Touch is UpdateStreak for the service clock's current local date.
func (s *Service) Touch(ctx context.Context) (domain.StreakResult, error) {
	return s.UpdateStreak(ctx, civil.DateOf(s.now()))
}

// ResetProgress discards the profile. The next read yields the default.
func (s *Service) ResetProgress(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	metrics.CurrentLevel.Set(1)
	metrics.CurrentStreak.Set(0)
	s.log.Info("progress reset")
	return nil
}

// Personality returns the mentor tier for the current profile.
func (s *Service) Personality(ctx context.Context) domain.PersonalityTier {
	return PersonalityFor(s.GetUserProfile(ctx).Level)
}

// MotivationalMessage returns a random message for the current tier.
func (s *Service) MotivationalMessage(ctx context.Context) string {
	p := s.GetUserProfile(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	return MotivationalMessage(p.Level, s.rng)
}

// Badges returns the catalogue with each entry's unlocked state.
func (s *Service) Badges(ctx context.Context) []BadgeStatus {
	p := s.GetUserProfile(ctx)
	defs := Catalogue()
	out := make([]BadgeStatus, len(defs))
	for i, def := range defs {
		out[i] = BadgeStatus{BadgeDef: def, Unlocked: p.HasBadge(def.ID)}
	}
	return out
}

// Badge returns one catalogue entry with its unlocked state.
func (s *Service) Badge(ctx context.Context, id string) (BadgeStatus, error) {
	def, ok := BadgeByID(id)
	if !ok {
		return BadgeStatus{}, fmt.Errorf("%w: %q", domain.ErrBadgeNotFound, id)
	}
	return BadgeStatus{BadgeDef: def, Unlocked: s.GetUserProfile(ctx).HasBadge(id)}, nil
}

// BadgeStatus pairs a catalogue entry with whether it is unlocked.
type BadgeStatus struct {
	domain.BadgeDef
	Unlocked bool `json:"unlocked"`
}

// IsRejected reports whether err is a precondition violation the caller
// should not retry.
func IsRejected(err error) bool {
	return errors.Is(err, domain.ErrUnknownAction) ||
		errors.Is(err, domain.ErrNegativeExperience) ||
		errors.Is(err, domain.ErrInvalidDate)
}

func (s *Service) observe(source string, xp int64, p domain.UserProfile, badges []domain.BadgeDef, leveledUp bool) {
	if xp > 0 {
		metrics.ExperienceAwarded.WithLabelValues(source).Add(float64(xp))
	}
	for _, b := range badges {
		metrics.BadgesUnlocked.WithLabelValues(b.ID).Inc()
		if b.RewardXP > 0 {
			metrics.ExperienceAwarded.WithLabelValues("badge").Add(float64(b.RewardXP))
		}
		s.log.Info("badge unlocked", zap.String("badge", b.ID), zap.Int64("reward_xp", b.RewardXP))
	}
	if leveledUp {
		metrics.LevelUps.Inc()
		s.log.Info("level up", zap.Int("level", p.Level))
	}
	metrics.CurrentLevel.Set(float64(p.Level))
}
