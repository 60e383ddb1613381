package inmem

import (
	"context"
	"sort"
	"sync"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/gamification"
	"github.com/trezcool/shule/core/user"
)

type gamificationRepo struct {
	mu               sync.RWMutex
	progress         map[string]gamification.Gamification // keyed by user ID
	achievements     map[string]gamification.Achievement
	userAchievements map[string]gamification.UserAchievement
	userRepo         user.Repository // for leaderboard display fields
}

var _ gamification.Repository = (*gamificationRepo)(nil)

func NewGamificationRepository(userRepo user.Repository) gamification.Repository {
	return &gamificationRepo{
		progress:         make(map[string]gamification.Gamification),
		achievements:     make(map[string]gamification.Achievement),
		userAchievements: make(map[string]gamification.UserAchievement),
		userRepo:         userRepo,
	}
}

func (repo *gamificationRepo) CreateGamification(_ context.Context, game *gamification.Gamification, _ ...core.DBExecutor) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.progress[game.UserID]; ok {
		return gamification.ErrAlreadyInitialized
	}
	repo.progress[game.UserID] = *game
	return nil
}

func (repo *gamificationRepo) GetGamification(_ context.Context, userID string, _ ...core.DBExecutor) (gamification.Gamification, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if game, ok := repo.progress[userID]; ok {
		return game, nil
	}
	return gamification.Gamification{}, gamification.ErrNotFound
}

func (repo *gamificationRepo) UpdateGamification(_ context.Context, game *gamification.Gamification, _ ...core.DBExecutor) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if _, ok := repo.progress[game.UserID]; !ok {
		return gamification.ErrNotFound
	}
	repo.progress[game.UserID] = *game
	return nil
}

func (repo *gamificationRepo) GetAchievements(_ context.Context, _ ...core.DBExecutor) ([]gamification.Achievement, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	achievements := make([]gamification.Achievement, 0, len(repo.achievements))
	for _, ach := range repo.achievements {
		achievements = append(achievements, ach)
	}
	sort.Slice(achievements, func(i, j int) bool { return achievements[i].ID < achievements[j].ID })
	return achievements, nil
}

func (repo *gamificationRepo) GetAchievement(_ context.Context, id string, _ ...core.DBExecutor) (gamification.Achievement, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if ach, ok := repo.achievements[id]; ok {
		return ach, nil
	}
	return gamification.Achievement{}, gamification.ErrAchievementNotFound
}

func (repo *gamificationRepo) CreateAchievement(_ context.Context, ach *gamification.Achievement, _ ...core.DBExecutor) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.achievements[ach.ID] = *ach
	return nil
}

func (repo *gamificationRepo) GetUserAchievements(_ context.Context, userID string, _ ...core.DBExecutor) ([]gamification.UserAchievement, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	var uas []gamification.UserAchievement
	for _, ua := range repo.userAchievements {
		if ua.UserID == userID {
			uas = append(uas, ua)
		}
	}
	sort.Slice(uas, func(i, j int) bool { return uas[i].UnlockedAt.Before(uas[j].UnlockedAt) })
	return uas, nil
}

func (repo *gamificationRepo) HasUserAchievement(_ context.Context, userID, achievementID string, _ ...core.DBExecutor) (bool, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, ua := range repo.userAchievements {
		if ua.UserID == userID && ua.AchievementID == achievementID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *gamificationRepo) CreateUserAchievement(_ context.Context, ua *gamification.UserAchievement, _ ...core.DBExecutor) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	repo.userAchievements[ua.ID] = *ua
	return nil
}

func (repo *gamificationRepo) GetLeaderboard(ctx context.Context, limit int, _ ...core.DBExecutor) ([]gamification.LeaderboardEntry, error) {
	repo.mu.RLock()
	games := make([]gamification.Gamification, 0, len(repo.progress))
	for _, game := range repo.progress {
		games = append(games, game)
	}
	repo.mu.RUnlock()

	sort.Slice(games, func(i, j int) bool { return games[i].XP > games[j].XP })
	if len(games) > limit {
		games = games[:limit]
	}

	entries := make([]gamification.LeaderboardEntry, 0, len(games))
	for _, game := range games {
		usr, err := repo.userRepo.GetUserByID(ctx, game.UserID)
		if err != nil || !usr.IsActive {
			continue
		}
		entries = append(entries, gamification.LeaderboardEntry{
			Gamification: game,
			Name:         usr.Name,
			StudentID:    usr.StudentID,
		})
	}
	return entries, nil
}
