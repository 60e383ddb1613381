package gamification

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

type (
	Repository interface {
		CreateGamification(ctx context.Context, game *Gamification, exec ...core.DBExecutor) error
		GetGamification(ctx context.Context, userID string, exec ...core.DBExecutor) (Gamification, error)
		UpdateGamification(ctx context.Context, game *Gamification, exec ...core.DBExecutor) error
		GetAchievements(ctx context.Context, exec ...core.DBExecutor) ([]Achievement, error)
		GetAchievement(ctx context.Context, id string, exec ...core.DBExecutor) (Achievement, error)
		CreateAchievement(ctx context.Context, ach *Achievement, exec ...core.DBExecutor) error
		GetUserAchievements(ctx context.Context, userID string, exec ...core.DBExecutor) ([]UserAchievement, error)
		HasUserAchievement(ctx context.Context, userID, achievementID string, exec ...core.DBExecutor) (bool, error)
		CreateUserAchievement(ctx context.Context, ua *UserAchievement, exec ...core.DBExecutor) error
		GetLeaderboard(ctx context.Context, limit int, exec ...core.DBExecutor) ([]LeaderboardEntry, error)
	}

	// LeaderboardCache is an optional read-through cache for the leaderboard.
	LeaderboardCache interface {
		GetTop(ctx context.Context, limit int) ([]LeaderboardEntry, error)
		Set(ctx context.Context, entries []LeaderboardEntry) error
		Invalidate(ctx context.Context) error
	}

	Service interface {
		InitStudent(ctx context.Context, userID string, exec ...core.DBExecutor) error
		EnsureCatalog(ctx context.Context) error
		Progress(ctx context.Context, userID string) (Gamification, error)
		AwardXP(ctx context.Context, userID string, points int, exec ...core.DBExecutor) (Gamification, error)
		ApplyStreak(ctx context.Context, userID string, current, longest, totalDays int, exec ...core.DBExecutor) (Gamification, error)
		Achievements(ctx context.Context) ([]Achievement, error)
		UserAchievements(ctx context.Context, userID string) ([]UserAchievement, error)
		Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	}

	service struct {
		repo   Repository
		cache  LeaderboardCache // nil when redis is not configured
		logger core.Logger
	}
)

var _ Service = (*service)(nil)

const DefaultLeaderboardSize = 10

func NewService(repo Repository, cache LeaderboardCache, logger core.Logger) Service {
	return &service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

func (svc *service) InitStudent(ctx context.Context, userID string, exec ...core.DBExecutor) error {
	game := Gamification{
		UserID:    userID,
		Level:     1,
		UpdatedAt: core.NowFunc(),
	}
	return errors.Wrap(svc.repo.CreateGamification(ctx, &game, exec...), "creating progress row")
}

// EnsureCatalog seeds the built-in achievement catalog, skipping entries that
// already exist.
func (svc *service) EnsureCatalog(ctx context.Context) error {
	for i := range DefaultAchievements {
		ach := DefaultAchievements[i]
		if _, err := svc.repo.GetAchievement(ctx, ach.ID); err == nil {
			continue
		} else if !errors.Is(err, ErrAchievementNotFound) {
			return errors.Wrap(err, "checking achievement")
		}
		if err := svc.repo.CreateAchievement(ctx, &ach); err != nil {
			return errors.Wrapf(err, "seeding achievement %q", ach.Name)
		}
	}
	return nil
}

func (svc *service) Progress(ctx context.Context, userID string) (Gamification, error) {
	return svc.repo.GetGamification(ctx, userID)
}

func (svc *service) AwardXP(ctx context.Context, userID string, points int, exec ...core.DBExecutor) (Gamification, error) {
	game, err := svc.repo.GetGamification(ctx, userID, exec...)
	if err != nil {
		return Gamification{}, errors.Wrap(err, "getting progress row")
	}
	game.XP += points
	game.Level = LevelForXP(game.XP)
	game.UpdatedAt = core.NowFunc()
	if err = svc.repo.UpdateGamification(ctx, &game, exec...); err != nil {
		return Gamification{}, errors.Wrap(err, "updating progress row")
	}
	svc.invalidateLeaderboard(ctx)
	return game, nil
}

// ApplyStreak persists freshly computed streak figures, then checks for newly
// unlocked streak achievements. Unlock checks only fire on every 10th
// consecutive day so a long streak is not re-evaluated on each check-in.
func (svc *service) ApplyStreak(ctx context.Context, userID string, current, longest, totalDays int, exec ...core.DBExecutor) (Gamification, error) {
	game, err := svc.repo.GetGamification(ctx, userID, exec...)
	if err != nil {
		return Gamification{}, errors.Wrap(err, "getting progress row")
	}
	game.CurrentStreak = current
	if longest > game.LongestStreak {
		game.LongestStreak = longest
	}
	game.TotalDaysAttended = totalDays
	game.UpdatedAt = core.NowFunc()
	if err = svc.repo.UpdateGamification(ctx, &game, exec...); err != nil {
		return Gamification{}, errors.Wrap(err, "updating progress row")
	}

	if current >= 10 && current%10 == 0 {
		if err = svc.unlockStreakAchievements(ctx, userID, current, exec...); err != nil {
			return Gamification{}, err
		}
		// reload; unlocks may have awarded XP
		game, err = svc.repo.GetGamification(ctx, userID, exec...)
		if err != nil {
			return Gamification{}, errors.Wrap(err, "reloading progress row")
		}
	}
	return game, nil
}

func (svc *service) unlockStreakAchievements(ctx context.Context, userID string, streak int, exec ...core.DBExecutor) error {
	achievements, err := svc.repo.GetAchievements(ctx, exec...)
	if err != nil {
		return errors.Wrap(err, "listing achievements")
	}
	for _, ach := range achievements {
		if ach.Type != AchievementTypeAttendance || ach.Condition.Streak == 0 || streak < ach.Condition.Streak {
			continue
		}
		unlocked, err := svc.repo.HasUserAchievement(ctx, userID, ach.ID, exec...)
		if err != nil {
			return errors.Wrap(err, "checking unlocked achievement")
		}
		if unlocked {
			continue
		}
		ua := UserAchievement{
			ID:            uuid.New().String(),
			UserID:        userID,
			AchievementID: ach.ID,
			UnlockedAt:    core.NowFunc(),
		}
		if err = svc.repo.CreateUserAchievement(ctx, &ua, exec...); err != nil {
			return errors.Wrap(err, "unlocking achievement")
		}
		if _, err = svc.AwardXP(ctx, userID, ach.XPReward, exec...); err != nil {
			return err
		}
		svc.logger.Info("achievement unlocked", "user", userID, "achievement", ach.Name)
	}
	return nil
}

func (svc *service) Achievements(ctx context.Context) ([]Achievement, error) {
	return svc.repo.GetAchievements(ctx)
}

func (svc *service) UserAchievements(ctx context.Context, userID string) ([]UserAchievement, error) {
	return svc.repo.GetUserAchievements(ctx, userID)
}

func (svc *service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}
	if svc.cache != nil {
		if entries, err := svc.cache.GetTop(ctx, limit); err != nil {
			svc.logger.Warn("leaderboard cache read failed", err)
		} else if len(entries) > 0 {
			rank(entries)
			return entries, nil
		}
	}
	entries, err := svc.repo.GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "getting leaderboard")
	}
	rank(entries)
	if svc.cache != nil {
		if err = svc.cache.Set(ctx, entries); err != nil {
			svc.logger.Warn("leaderboard cache write failed", err)
		}
	}
	return entries, nil
}

func (svc *service) invalidateLeaderboard(ctx context.Context) {
	if svc.cache == nil {
		return
	}
	if err := svc.cache.Invalidate(ctx); err != nil {
		svc.logger.Warn("leaderboard cache invalidation failed", err)
	}
}

func rank(entries []LeaderboardEntry) {
	for i := range entries {
		entries[i].Rank = i + 1
	}
}
